// Package chat defines the chat transcript and the single in-flight request
// rule for a topic-scoped conversation with the research agent.
package chat

import (
	"context"
	"slices"
	"strings"

	"github.com/hay-kot/ragdesk/internal/core/validate"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single transcript entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is the payload sent to the backend for one chat turn.
type Request struct {
	ChatInput string `json:"chatInput"`
	Topic     string `json:"topic"`
	SessionID string `json:"sessionId"`
}

// Asker resolves one chat turn against the backend. It returns the answer
// text, which is empty when the backend produced none. Transport failures,
// non-2xx responses and undecodable bodies are returned as errors.
type Asker interface {
	Ask(ctx context.Context, req Request) (string, error)
}

// Session is the append-only transcript plus the awaiting-response flag.
// At most one request is outstanding; Begin while busy is rejected.
//
// Session is not safe for concurrent use.
type Session struct {
	messages []Message
	busy     bool
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// Begin appends the user message and marks the session busy. It returns the
// request to send and true, or false when text is blank or a request is
// already in flight. A rejected Begin changes nothing.
func (s *Session) Begin(text, topic, sessionID string) (Request, bool) {
	if s.busy || validate.ChatInput(text) != nil {
		return Request{}, false
	}

	s.messages = append(s.messages, Message{Role: RoleUser, Content: text})
	s.busy = true

	return Request{
		ChatInput: text,
		Topic:     topic,
		SessionID: sessionID,
	}, true
}

// Finish appends the assistant reply and clears the busy flag. It is a no-op
// when no request is in flight.
func (s *Session) Finish(reply string) bool {
	if !s.busy {
		return false
	}

	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: reply})
	s.busy = false
	return true
}

// Busy reports whether a request is in flight.
func (s *Session) Busy() bool {
	return s.busy
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	return slices.Clone(s.messages)
}

// Len returns the number of messages in the transcript.
func (s *Session) Len() int {
	return len(s.messages)
}

// ResolveReply maps the outcome of an Ask to the assistant text shown to the
// user: the error text on failure, the fallback for an empty answer, and the
// answer itself otherwise.
func ResolveReply(answer string, err error, fallback, errorText string) string {
	switch {
	case err != nil:
		return errorText
	case strings.TrimSpace(answer) == "":
		return fallback
	default:
		return answer
	}
}
