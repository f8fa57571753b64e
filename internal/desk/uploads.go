package desk

import (
	"context"

	"github.com/hay-kot/ragdesk/internal/core/upload"
)

// Stage replaces the upload queue with files.
func (s *Service) Stage(files []upload.File) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue.Stage(files)
	s.uploadLog.Debug().Int("count", len(files)).Msg("files staged")
}

// Staged returns the files waiting to be committed.
func (s *Service) Staged() []upload.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Files()
}

// ClearStaged empties the upload queue without uploading.
func (s *Service) ClearStaged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Clear()
}

// Commit uploads the staged files to topic sequentially. Each file fails
// independently; progress is called after every file. When the batch ends
// the queue is cleared, unless it was restaged meanwhile, and the report is
// returned. Commit reports false and does nothing when the queue is empty or
// topic is blank.
func (s *Service) Commit(ctx context.Context, topic string, progress func(upload.Result)) (upload.Report, bool) {
	s.mu.Lock()
	files, gen := s.queue.Batch()
	s.mu.Unlock()

	if len(files) == 0 || topic == "" {
		s.uploadLog.Debug().Int("count", len(files)).Str("topic", topic).Msg("commit ignored")
		return upload.Report{Topic: topic}, false
	}

	s.uploadLog.Info().Int("count", len(files)).Str("topic", topic).Msg("uploading batch")

	report := upload.Send(ctx, s.uploader, topic, files, func(r upload.Result) {
		if r.Err != nil {
			s.uploadLog.Error().Err(r.Err).Str("file", r.Name).Str("topic", topic).Msg("upload failed")
		}
		if progress != nil {
			progress(r)
		}
	})

	s.mu.Lock()
	s.queue.ClearBatch(gen)
	s.mu.Unlock()

	s.uploadLog.Info().
		Str("topic", topic).
		Int("succeeded", report.Succeeded()).
		Int("failed", report.Failed()).
		Msg("batch complete")

	return report, true
}
