package chat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_BeginFinish(t *testing.T) {
	s := NewSession()

	req, ok := s.Begin("what is yolo?", "yolo-models", "user-session-2")
	require.True(t, ok)
	assert.Equal(t, Request{ChatInput: "what is yolo?", Topic: "yolo-models", SessionID: "user-session-2"}, req)

	// user message lands before the reply exists
	assert.True(t, s.Busy())
	assert.Equal(t, []Message{{Role: RoleUser, Content: "what is yolo?"}}, s.Messages())

	require.True(t, s.Finish("a detector"))
	assert.False(t, s.Busy())
	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "what is yolo?"},
		{Role: RoleAssistant, Content: "a detector"},
	}, s.Messages())
}

func TestSession_BeginRejected(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *Session)
		text  string
	}{
		{name: "empty", text: ""},
		{name: "whitespace", text: "   \t"},
		{
			name: "busy",
			text: "second",
			setup: func(s *Session) {
				_, ok := s.Begin("first", "t", "sid")
				require.True(t, ok)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			if tt.setup != nil {
				tt.setup(s)
			}
			before := s.Messages()
			busy := s.Busy()

			_, ok := s.Begin(tt.text, "t", "sid")
			assert.False(t, ok)
			assert.Equal(t, before, s.Messages())
			assert.Equal(t, busy, s.Busy())
		})
	}
}

func TestSession_FinishWithoutBegin(t *testing.T) {
	s := NewSession()

	assert.False(t, s.Finish("orphan"))
	assert.Equal(t, 0, s.Len())
}

func TestSession_AlternatesRoles(t *testing.T) {
	s := NewSession()
	for _, q := range []string{"one", "two", "three"} {
		_, ok := s.Begin(q, "t", "sid")
		require.True(t, ok)
		require.True(t, s.Finish("answer to "+q))
	}

	msgs := s.Messages()
	require.Len(t, msgs, 6)
	for i, m := range msgs {
		if i%2 == 0 {
			assert.Equal(t, RoleUser, m.Role)
		} else {
			assert.Equal(t, RoleAssistant, m.Role)
		}
	}
}

func TestResolveReply(t *testing.T) {
	const (
		fallback  = "I couldn't find an answer."
		errorText = "backend unavailable"
	)

	tests := []struct {
		name   string
		answer string
		err    error
		want   string
	}{
		{name: "answer", answer: "YOLO is a detector", want: "YOLO is a detector"},
		{name: "empty answer", answer: "", want: fallback},
		{name: "blank answer", answer: "  \n", want: fallback},
		{name: "error", err: errors.New("connection refused"), want: errorText},
		{name: "error wins over answer", answer: "partial", err: errors.New("boom"), want: errorText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveReply(tt.answer, tt.err, fallback, errorText))
		})
	}
}
