package tui

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/ragdesk/internal/core/chat"
	"github.com/hay-kot/ragdesk/internal/core/config"
	"github.com/hay-kot/ragdesk/internal/core/upload"
	"github.com/hay-kot/ragdesk/internal/desk"
)

type stubTopics struct {
	list    []string
	listErr error
	saveErr error
	saved   [][]string
}

func (s *stubTopics) List(context.Context) ([]string, error) { return s.list, s.listErr }

func (s *stubTopics) Save(_ context.Context, topics []string) error {
	s.saved = append(s.saved, topics)
	return s.saveErr
}

type stubAsker struct {
	answer string
	err    error
}

func (s *stubAsker) Ask(context.Context, chat.Request) (string, error) { return s.answer, s.err }

type stubUploader struct {
	fail map[string]bool
	gate chan struct{} // when set, every upload waits until it is closed

	mu   sync.Mutex
	sent []string
}

func (s *stubUploader) Upload(_ context.Context, _ string, f upload.File) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	s.sent = append(s.sent, f.Name)
	s.mu.Unlock()
	if s.fail[f.Name] {
		return errors.New("rejected")
	}
	return nil
}

func (s *stubUploader) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sent)
}

func newTestModel(t *testing.T, topics *stubTopics, asker *stubAsker) Model {
	t.Helper()
	return newTestModelWithUploader(t, topics, asker, &stubUploader{})
}

func newTestModelWithUploader(t *testing.T, topics *stubTopics, asker *stubAsker, uploader *stubUploader) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	svc := desk.New(topics, asker, uploader, &cfg, zerolog.Nop())

	m := New(context.Background(), svc)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return update(t, m, m.loadTopics()())
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestModel_LoadTopics(t *testing.T) {
	t.Run("uses backend list", func(t *testing.T) {
		m := newTestModel(t, &stubTopics{list: []string{"Legal", "HR"}}, &stubAsker{})

		assert.Equal(t, []string{"Legal", "HR"}, m.topics)
		assert.Equal(t, "Legal", m.selected)
		assert.Empty(t, m.notice)
		assert.Equal(t, "Ask about Legal...", m.input.Placeholder)
	})

	t.Run("falls back to defaults with notice", func(t *testing.T) {
		m := newTestModel(t, &stubTopics{listErr: errors.New("down")}, &stubAsker{})

		assert.Equal(t, m.service.DefaultTopics(), m.topics)
		assert.NotEmpty(t, m.notice)
	})
}

func TestModel_SelectTopic(t *testing.T) {
	m := newTestModel(t, &stubTopics{list: []string{"Legal", "HR"}}, &stubAsker{})

	m, _ = press(t, m, "down")
	assert.Equal(t, 1, m.cursor)

	m, cmd := press(t, m, "enter")
	assert.NotNil(t, cmd)
	assert.Equal(t, "HR", m.selected)
	assert.Equal(t, "HR", m.service.SelectedTopic())
	assert.Equal(t, focusChat, m.focus)
	assert.Equal(t, "Ask about HR...", m.input.Placeholder)
}

func TestModel_ChatTurn(t *testing.T) {
	m := newTestModel(t, &stubTopics{list: []string{"Legal"}}, &stubAsker{answer: "Clause 4."})
	m, _ = press(t, m, "tab")
	require.Equal(t, focusChat, m.focus)

	m.input.SetValue("What does clause 4 say?")
	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)

	assert.Empty(t, m.input.Value())
	assert.True(t, m.service.Busy())
	require.Len(t, m.service.Messages(), 1)

	// A second send while busy is ignored.
	m.input.SetValue("again")
	m, second := press(t, m, "enter")
	assert.Nil(t, second)
	assert.Equal(t, "again", m.input.Value())

	m = update(t, m, cmd())
	assert.False(t, m.service.Busy())

	msgs := m.service.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Clause 4.", msgs[1].Content)
}

func TestModel_ChatTurnError(t *testing.T) {
	m := newTestModel(t, &stubTopics{list: []string{"Legal"}}, &stubAsker{err: errors.New("boom")})
	m, _ = press(t, m, "tab")

	m.input.SetValue("hello")
	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	msgs := m.service.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, m.cfg.Chat.ErrorAnswer, msgs[1].Content)
}

func TestModel_RemoveTopic(t *testing.T) {
	t.Run("cancel is the default", func(t *testing.T) {
		store := &stubTopics{list: []string{"Legal", "HR"}}
		m := newTestModel(t, store, &stubAsker{})

		m, _ = press(t, m, "d")
		require.Equal(t, stateConfirming, m.state)

		m, cmd := press(t, m, "enter")
		assert.Nil(t, cmd)
		assert.Equal(t, stateNormal, m.state)
		assert.Equal(t, []string{"Legal", "HR"}, m.topics)
		assert.Empty(t, store.saved)
	})

	t.Run("confirmed removal saves the full list", func(t *testing.T) {
		store := &stubTopics{list: []string{"Legal", "HR"}}
		m := newTestModel(t, store, &stubAsker{})

		m, _ = press(t, m, "d")
		m, _ = press(t, m, "right")
		require.True(t, m.modal.ConfirmSelected())

		m, cmd := press(t, m, "enter")
		require.NotNil(t, cmd)
		assert.Equal(t, []string{"HR"}, m.topics)
		assert.Equal(t, "HR", m.selected)

		m = update(t, m, cmd())
		assert.Equal(t, stateNormal, m.state)
		require.Len(t, store.saved, 1)
		assert.Equal(t, []string{"HR"}, store.saved[0])
	})

	t.Run("save failure shows alert and keeps local change", func(t *testing.T) {
		store := &stubTopics{list: []string{"Legal", "HR"}, saveErr: errors.New("503")}
		m := newTestModel(t, store, &stubAsker{})

		m, _ = press(t, m, "d")
		m, _ = press(t, m, "right")
		m, cmd := press(t, m, "enter")
		require.NotNil(t, cmd)

		m = update(t, m, cmd())
		assert.Equal(t, stateAlert, m.state)
		assert.Equal(t, []string{"HR"}, m.topics)

		m, _ = press(t, m, "esc")
		assert.Equal(t, stateNormal, m.state)
	})
}

func TestModel_UploadRequiresTopic(t *testing.T) {
	m := newTestModel(t, &stubTopics{list: []string{}}, &stubAsker{})
	require.Empty(t, m.selected)

	m, _ = press(t, m, "u")
	assert.Equal(t, stateAlert, m.state)
}

func TestModel_UploadFlow(t *testing.T) {
	m := newTestModel(t, &stubTopics{list: []string{"Legal"}}, &stubAsker{})

	files := []upload.File{
		upload.FromBytes("a.pdf", []byte("a")),
		upload.FromBytes("b.pdf", []byte("b")),
	}
	m.service.Stage(files)
	m.uploadModal = NewUploadModal("Legal", m.service.Staged(), m.cfg.Upload.CompleteMessage)
	m.state = stateUploadReview

	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	assert.Equal(t, stateUploading, m.state)
	assert.True(t, m.uploadModal.IsRunning())

	m = update(t, m, cmd())
	require.NotNil(t, m.uploadEvents)

	// Drain progress until the batch completes.
	deadline := time.After(5 * time.Second)
	for m.uploadModal.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("upload did not finish")
		default:
		}
		m = update(t, m, listenForUpload(m.uploadEvents, m.uploadDone)())
	}

	assert.Equal(t, "Upload complete: 2/2 file(s) sent to Legal", m.uploadModal.Summary())
	assert.Empty(t, m.service.Staged())

	m, _ = press(t, m, "enter")
	assert.Equal(t, stateNormal, m.state)
}

// startStagedUpload stages files for Legal and confirms the review dialog,
// returning the model after the batch has started streaming.
func startStagedUpload(t *testing.T, m Model, names ...string) Model {
	t.Helper()
	files := make([]upload.File, 0, len(names))
	for _, name := range names {
		files = append(files, upload.FromBytes(name, []byte(name)))
	}
	m.service.Stage(files)
	m.uploadModal = NewUploadModal("Legal", m.service.Staged(), m.cfg.Upload.CompleteMessage)
	m.state = stateUploadReview

	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	require.NotNil(t, m.uploadEvents)
	return m
}

// drainUpload feeds progress messages until the batch completes.
func drainUpload(t *testing.T, m Model) Model {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for m.uploadModal.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("upload did not finish")
		default:
		}
		m = update(t, m, listenForUpload(m.uploadEvents, m.uploadDone)())
	}
	return m
}

func TestModel_UploadIgnoresEscWhileRunning(t *testing.T) {
	uploader := &stubUploader{gate: make(chan struct{})}
	m := newTestModelWithUploader(t, &stubTopics{list: []string{"Legal"}}, &stubAsker{}, uploader)

	m = startStagedUpload(t, m, "a.pdf", "b.pdf", "c.pdf")

	m, cmd := press(t, m, "esc")
	assert.Nil(t, cmd)
	assert.Equal(t, stateUploading, m.state)
	assert.True(t, m.uploadModal.IsRunning())

	close(uploader.gate)
	m = drainUpload(t, m)

	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, uploader.Sent())
	assert.Equal(t, "Upload complete: 3/3 file(s) sent to Legal", m.uploadModal.Summary())
	assert.Equal(t, stateUploading, m.state, "summary stays up until dismissed")

	m, _ = press(t, m, "esc")
	assert.Equal(t, stateNormal, m.state)
}

func TestModel_SaveFailureWaitsForUpload(t *testing.T) {
	uploader := &stubUploader{gate: make(chan struct{})}
	m := newTestModelWithUploader(t, &stubTopics{list: []string{"Legal"}}, &stubAsker{}, uploader)

	m = startStagedUpload(t, m, "a.pdf", "b.pdf")

	m = update(t, m, topicsSyncedMsg{err: errors.New("503")})
	assert.Equal(t, stateUploading, m.state)
	require.NotNil(t, m.pendingAlert)

	m, _ = press(t, m, "enter")
	assert.Equal(t, stateUploading, m.state)

	close(uploader.gate)
	m = drainUpload(t, m)
	assert.Equal(t, stateUploading, m.state)
	assert.Equal(t, "Upload complete: 2/2 file(s) sent to Legal", m.uploadModal.Summary())

	m, _ = press(t, m, "enter")
	assert.Equal(t, stateAlert, m.state)
	assert.Contains(t, m.modal.Render(), "Topics not saved")
	assert.Nil(t, m.pendingAlert)

	m, _ = press(t, m, "esc")
	assert.Equal(t, stateNormal, m.state)
}

func TestModel_SaveFailureKeepsOpenDialog(t *testing.T) {
	t.Run("delete confirmation", func(t *testing.T) {
		store := &stubTopics{list: []string{"Legal", "HR"}}
		m := newTestModel(t, store, &stubAsker{})

		m, _ = press(t, m, "d")
		require.Equal(t, stateConfirming, m.state)

		m = update(t, m, topicsSyncedMsg{err: errors.New("503")})
		assert.Equal(t, stateConfirming, m.state)
		assert.Equal(t, "Legal", m.pendingRemove)

		m, _ = press(t, m, "right")
		m, cmd := press(t, m, "enter")
		require.NotNil(t, cmd)
		assert.Equal(t, []string{"HR"}, m.topics)
		assert.Equal(t, stateAlert, m.state, "queued alert shows after the dialog closes")
	})

	t.Run("new topic form", func(t *testing.T) {
		m := newTestModel(t, &stubTopics{list: []string{"Legal"}}, &stubAsker{})

		m, _ = press(t, m, "a")
		require.Equal(t, stateAddingTopic, m.state)
		form := m.topicForm

		m = update(t, m, topicsSyncedMsg{err: errors.New("503")})
		assert.Equal(t, stateAddingTopic, m.state)
		assert.Same(t, form, m.topicForm)

		m, _ = press(t, m, "esc")
		assert.Equal(t, stateAlert, m.state)
	})
}

func TestModel_UploadReviewDiscard(t *testing.T) {
	m := newTestModel(t, &stubTopics{list: []string{"Legal"}}, &stubAsker{})

	m.service.Stage([]upload.File{upload.FromBytes("a.pdf", []byte("a"))})
	m.uploadModal = NewUploadModal("Legal", m.service.Staged(), m.cfg.Upload.CompleteMessage)
	m.state = stateUploadReview

	m, _ = press(t, m, "esc")
	assert.Equal(t, stateNormal, m.state)
	assert.Empty(t, m.service.Staged())
}

func TestListenForUpload(t *testing.T) {
	events := make(chan upload.Result, 1)
	done := make(chan upload.Report, 1)

	events <- upload.Result{Name: "a.pdf"}
	msg := listenForUpload(events, done)()
	progress, ok := msg.(uploadProgressMsg)
	require.True(t, ok)
	assert.Equal(t, "a.pdf", progress.result.Name)

	close(events)
	done <- upload.Report{Topic: "Legal"}
	msg = listenForUpload(events, done)()
	finished, ok := msg.(uploadDoneMsg)
	require.True(t, ok)
	assert.Equal(t, "Legal", finished.report.Topic)
}

func TestModal(t *testing.T) {
	confirm := NewModal("Delete topic", "sure?")
	assert.True(t, confirm.Visible())
	assert.False(t, confirm.ConfirmSelected())
	confirm.ToggleSelection()
	assert.True(t, confirm.ConfirmSelected())

	alert := NewAlert("Oops", "failed")
	alert.ToggleSelection()
	assert.False(t, alert.ConfirmSelected())
	assert.Contains(t, alert.Render(), "Oops")
}

func TestUploadModal_Summary(t *testing.T) {
	m := NewUploadModal("Legal", []upload.File{upload.FromBytes("a.pdf", nil)}, "{{ .Failed }} failed of {{ .Total }}")
	assert.True(t, m.IsReviewing())

	m.Start()
	assert.True(t, m.IsRunning())

	m.SetComplete(upload.Report{Topic: "Legal", Results: []upload.Result{{Name: "a.pdf", Err: errors.New("x")}}})
	assert.False(t, m.IsRunning())
	assert.Equal(t, "1 failed of 1", m.Summary())
}

func TestUploadModal_ListsFileSizes(t *testing.T) {
	m := NewUploadModal("Legal", []upload.File{
		upload.FromBytes("small.pdf", make([]byte, 512)),
		upload.FromBytes("large.pdf", make([]byte, 2048)),
	}, "done")

	lines := strings.Join(m.lines(80), "\n")
	assert.Contains(t, lines, "512 B")
	assert.Contains(t, lines, "2.0 KiB")
}
