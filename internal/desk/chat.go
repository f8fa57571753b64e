package desk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hay-kot/ragdesk/internal/core/chat"
)

var (
	// ErrSendRejected is returned for blank input or while a turn is in flight.
	ErrSendRejected = errors.New("message not sent")
	// ErrTurnFailed marks a turn whose backend call failed. The error text
	// was appended as the assistant reply.
	ErrTurnFailed = errors.New("chat request failed")
)

// Messages returns a copy of the chat transcript.
func (s *Service) Messages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Messages()
}

// Busy reports whether a chat turn is in flight.
func (s *Service) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Busy()
}

// BeginTurn appends the user message and marks the session busy. The request
// carries the selected topic and the session identifier. It reports false
// for blank input or while another turn is in flight.
func (s *Service) BeginTurn(text string) (chat.Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.session.Begin(text, s.registry.Selected(), s.config.SessionID)
	if !ok {
		s.chatLog.Debug().Bool("busy", s.session.Busy()).Msg("send ignored")
		return chat.Request{}, false
	}
	return req, true
}

// ResolveTurn asks the backend and returns the assistant text to append:
// the answer, the fallback for an empty answer, or the error text on
// failure. The backend error is returned alongside the error text so callers
// can tell a failed turn from an answer. It does not touch session state.
func (s *Service) ResolveTurn(ctx context.Context, req chat.Request) (string, error) {
	start := time.Now()
	answer, err := s.asker.Ask(ctx, req)
	if err != nil {
		s.chatLog.Error().Err(err).Str("topic", req.Topic).Msg("chat request failed")
		return chat.ResolveReply(answer, err, s.config.Chat.FallbackAnswer, s.config.Chat.ErrorAnswer),
			fmt.Errorf("%w: %w", ErrTurnFailed, err)
	}

	s.chatLog.Debug().
		Str("topic", req.Topic).
		Int("answer_len", len(answer)).
		Dur("duration", time.Since(start)).
		Msg("chat answered")

	return chat.ResolveReply(answer, nil, s.config.Chat.FallbackAnswer, s.config.Chat.ErrorAnswer), nil
}

// FinishTurn appends the assistant reply and clears the busy flag.
func (s *Service) FinishTurn(reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Finish(reply)
}

// Send runs a full chat turn: BeginTurn, ResolveTurn and FinishTurn.
//
// A rejected send returns ErrSendRejected and changes nothing. A failed
// backend call still completes the turn with the error text, which is
// returned together with an error wrapping ErrTurnFailed.
func (s *Service) Send(ctx context.Context, text string) (string, error) {
	req, ok := s.BeginTurn(text)
	if !ok {
		return "", ErrSendRejected
	}

	reply, err := s.ResolveTurn(ctx, req)
	s.FinishTurn(reply)
	return reply, err
}
