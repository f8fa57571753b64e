package desk

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hay-kot/ragdesk/internal/core/topic"
)

// ErrSyncFailed marks a topic list that changed locally but could not be
// saved to the backend. The local change is kept.
var ErrSyncFailed = errors.New("topic list not saved to backend")

// ConfirmFunc asks the user to confirm removing a topic.
type ConfirmFunc func(name string) bool

// Confirmed is a ConfirmFunc for callers that already obtained confirmation.
func Confirmed(string) bool { return true }

// LoadResult describes how the registry was populated.
type LoadResult struct {
	Topics   []string
	Selected string
	// Fallback is true when the configured defaults were used because the
	// backend list could not be loaded. Err holds the reason.
	Fallback bool
	Err      error
}

// LoadTopics replaces the registry with the backend list, or with the
// configured defaults when the fetch fails for any reason. It never returns
// an error; failures are reported through LoadResult.
func (s *Service) LoadTopics(ctx context.Context) LoadResult {
	names, err := s.topics.List(ctx)

	var result LoadResult
	if err != nil {
		names = s.DefaultTopics()
		s.topicLog.Warn().Err(err).Strs("defaults", names).Msg("topic list unavailable, using defaults")
		result.Fallback = true
		result.Err = err
	}

	s.mu.Lock()
	s.registry.Reset(names)
	result.Topics = s.registry.Names()
	result.Selected = s.registry.Selected()
	s.mu.Unlock()

	s.topicLog.Debug().Int("count", len(result.Topics)).Bool("fallback", result.Fallback).Msg("topics loaded")
	return result
}

// Topics returns the topic names in order.
func (s *Service) Topics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Names()
}

// SelectedTopic returns the selected topic, or "" when there is none.
func (s *Service) SelectedTopic() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Selected()
}

// SelectTopic selects name. It reports false for an unknown topic.
func (s *Service) SelectTopic(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Select(name)
}

// AddTopic appends and selects name, returning the full list to persist with
// SyncTopics. Empty and duplicate names are ignored and report false.
func (s *Service) AddTopic(name string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registry.Add(name) {
		s.topicLog.Debug().Str("name", name).Msg("topic add ignored")
		return nil, false
	}

	s.topicLog.Info().Str("name", s.registry.Selected()).Msg("topic added")
	return s.registry.Names(), true
}

// RemoveTopic deletes name once confirm approves, returning the full list to
// persist with SyncTopics. It reports false when the topic is unknown or the
// removal was not confirmed; in both cases nothing changes.
func (s *Service) RemoveTopic(name string, confirm ConfirmFunc) ([]string, bool) {
	s.mu.Lock()
	known := s.registry.Contains(name)
	s.mu.Unlock()

	if !known || confirm == nil || !confirm(name) {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registry.Remove(name) {
		return nil, false
	}

	s.topicLog.Info().Str("name", name).Str("selected", s.registry.Selected()).Msg("topic removed")
	return s.registry.Names(), true
}

// SyncTopics saves a snapshot returned by AddTopic or RemoveTopic. A failure
// is wrapped in ErrSyncFailed; the local registry is never rolled back.
//
// Saves run one at a time. A snapshot that no longer matches the registry
// has been superseded by a later edit, whose own save carries the newer list,
// so it is skipped and reports nil.
func (s *Service) SyncTopics(ctx context.Context, snapshot []string) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if current := s.Topics(); !slices.Equal(current, snapshot) {
		s.topicLog.Debug().
			Int("count", len(snapshot)).
			Int("current", len(current)).
			Msg("topic snapshot superseded, skipping save")
		return nil
	}

	if err := s.topics.Save(ctx, slices.Clone(snapshot)); err != nil {
		s.topicLog.Error().Err(err).Int("count", len(snapshot)).Msg("failed to save topic list")
		return fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	s.topicLog.Debug().Int("count", len(snapshot)).Msg("topic list saved")
	return nil
}

// DefaultTopics returns the configured fallback topic list.
func (s *Service) DefaultTopics() []string {
	if s.config.Topics.Defaults == nil {
		return slices.Clone(topic.DefaultTopics)
	}
	return slices.Clone(s.config.Topics.Defaults)
}
