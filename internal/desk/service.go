// Package desk owns the client state: the topic registry, the chat session
// and the upload queue, and reconciles each with the backend.
package desk

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/ragdesk/internal/core/chat"
	"github.com/hay-kot/ragdesk/internal/core/config"
	"github.com/hay-kot/ragdesk/internal/core/topic"
	"github.com/hay-kot/ragdesk/internal/core/upload"
)

// Service orchestrates ragdesk operations. Local state changes apply
// synchronously under the service lock; backend calls run without it so a
// slow backend never blocks readers.
type Service struct {
	mu sync.Mutex
	// saveMu serializes topic list saves so they reach the backend in order.
	saveMu sync.Mutex

	registry *topic.Registry
	session  *chat.Session
	queue    upload.Queue

	topics   topic.Store
	asker    chat.Asker
	uploader upload.Uploader
	config   *config.Config

	topicLog  zerolog.Logger
	chatLog   zerolog.Logger
	uploadLog zerolog.Logger
}

// New creates a new Service with an empty registry. Call LoadTopics to
// populate it.
func New(
	topics topic.Store,
	asker chat.Asker,
	uploader upload.Uploader,
	cfg *config.Config,
	log zerolog.Logger,
) *Service {
	return &Service{
		registry:  topic.NewRegistry(),
		session:   chat.NewSession(),
		topics:    topics,
		asker:     asker,
		uploader:  uploader,
		config:    cfg,
		topicLog:  log.With().Str("component", "topics").Logger(),
		chatLog:   log.With().Str("component", "chat").Logger(),
		uploadLog: log.With().Str("component", "upload").Logger(),
	}
}

// SessionID returns the session identifier sent with every chat turn.
func (s *Service) SessionID() string {
	return s.config.SessionID
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.config
}
