package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/hay-kot/ragdesk/internal/core/chat"
	"github.com/hay-kot/ragdesk/internal/core/config"
	"github.com/hay-kot/ragdesk/internal/core/upload"
	"github.com/hay-kot/ragdesk/internal/desk"
	"github.com/hay-kot/ragdesk/pkg/tmpl"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	stateNormal UIState = iota
	stateConfirming
	stateAlert
	stateAddingTopic
	stateStagingUpload
	stateUploadReview
	stateUploading
)

// Pane identifies which pane receives key presses in stateNormal.
type Pane int

const (
	focusTopics Pane = iota
	focusChat
)

// Key constants for event handling.
const (
	keyEnter = "enter"
	keyEsc   = "esc"
	keyCtrlC = "ctrl+c"
)

// Form and layout sizes.
const (
	formWidth    = 56
	sidebarWidth = 26
)

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctx     context.Context
	service *desk.Service
	cfg     *config.Config

	state    UIState
	focus    Pane
	width    int
	height   int
	quitting bool

	// Topics
	topics   []string
	cursor   int
	selected string
	loaded   bool
	notice   string // shown under the topic list, e.g. default topics in use

	// Chat
	input      textinput.Model
	transcript *Transcript
	spinner    spinner.Model

	// Dialogs
	modal         Modal
	pendingRemove string
	pendingAlert  *Modal // shown once the active dialog closes
	topicForm     *TopicForm
	uploadForm    *UploadForm

	// Upload streaming state
	uploadModal  UploadModal
	uploadEvents <-chan upload.Result
	uploadDone   <-chan upload.Report
	uploadCancel context.CancelFunc
}

// topicsLoadedMsg is sent when the topic list has been fetched.
type topicsLoadedMsg struct {
	result desk.LoadResult
}

// topicsSyncedMsg is sent when a topic list save finishes.
type topicsSyncedMsg struct {
	err error
}

// chatReplyMsg carries the assistant reply for the in-flight turn.
type chatReplyMsg struct {
	reply string
}

// uploadStartedMsg is sent when a batch begins streaming results.
type uploadStartedMsg struct {
	events <-chan upload.Result
	done   <-chan upload.Report
	cancel context.CancelFunc
}

// uploadProgressMsg is sent after each file in the batch.
type uploadProgressMsg struct {
	result upload.Result
}

// uploadDoneMsg is sent when the batch finishes.
type uploadDoneMsg struct {
	report upload.Report
}

// New creates a new TUI model. ctx bounds every backend call made by the TUI.
func New(ctx context.Context, service *desk.Service) Model {
	input := textinput.New()
	input.CharLimit = 4000
	input.Prompt = "› "

	m := Model{
		ctx:        ctx,
		service:    service,
		cfg:        service.Config(),
		input:      input,
		transcript: NewTranscript(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
	}
	m.updatePlaceholder()
	m.refreshTranscript()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadTopics(), m.spinner.Tick, textinput.Blink)
}

func (m Model) loadTopics() tea.Cmd {
	return func() tea.Msg {
		return topicsLoadedMsg{result: m.service.LoadTopics(m.ctx)}
	}
}

func (m Model) syncTopics(snapshot []string) tea.Cmd {
	return func() tea.Msg {
		return topicsSyncedMsg{err: m.service.SyncTopics(m.ctx, snapshot)}
	}
}

func (m Model) ask(req chat.Request) tea.Cmd {
	return func() tea.Msg {
		// Failures are logged by the service and answered with the error text.
		reply, _ := m.service.ResolveTurn(m.ctx, req)
		return chatReplyMsg{reply: reply}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case topicsLoadedMsg:
		m.loaded = true
		m.notice = ""
		if msg.result.Fallback {
			m.notice = "Backend unavailable, showing default topics"
		}
		m.syncTopicState()
		return m, nil

	case topicsSyncedMsg:
		if msg.err != nil {
			alert := NewAlert("Topics not saved", "The change was kept locally but could not be\nsaved to the backend:\n\n"+outputErrorStyle.Render(msg.err.Error()))
			m.showAlert(alert)
		}
		return m, nil

	case chatReplyMsg:
		m.service.FinishTurn(msg.reply)
		m.refreshTranscript()
		return m, nil

	case uploadStartedMsg:
		m.uploadEvents = msg.events
		m.uploadDone = msg.done
		m.uploadCancel = msg.cancel
		return m, listenForUpload(msg.events, msg.done)

	case uploadProgressMsg:
		m.uploadModal.AddResult(msg.result)
		return m, listenForUpload(m.uploadEvents, m.uploadDone)

	case uploadDoneMsg:
		if m.uploadCancel != nil {
			m.uploadCancel()
		}
		m.uploadModal.SetComplete(msg.report)
		m.uploadEvents, m.uploadDone, m.uploadCancel = nil, nil, nil
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.uploadModal.SetSpinner(m.spinner)
		if m.service.Busy() {
			m.refreshTranscript()
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Route all other messages to the active form.
	switch m.state {
	case stateAddingTopic:
		return m.updateTopicForm(msg)
	case stateStagingUpload:
		return m.updateUploadForm(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	if keyStr == keyCtrlC {
		return m.quit()
	}

	switch m.state {
	case stateAddingTopic:
		if keyStr == keyEsc {
			m.closeDialog()
			m.topicForm = nil
			return m, nil
		}
		return m.updateTopicForm(msg)
	case stateStagingUpload:
		if keyStr == keyEsc {
			m.closeDialog()
			m.uploadForm = nil
			return m, nil
		}
		return m.updateUploadForm(msg)
	case stateConfirming:
		return m.handleConfirmModalKey(keyStr)
	case stateAlert:
		if keyStr == keyEnter || keyStr == keyEsc {
			m.closeDialog()
		}
		return m, nil
	case stateUploadReview:
		return m.handleUploadReviewKey(keyStr)
	case stateUploading:
		return m.handleUploadingKey(keyStr)
	}

	if m.focus == focusChat {
		return m.handleChatKey(msg)
	}
	return m.handleTopicKey(msg)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.uploadCancel != nil {
		m.uploadCancel()
	}
	m.quitting = true
	return m, tea.Quit
}

// handleTopicKey handles keys while the topic pane has focus.
func (m Model) handleTopicKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.topics)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Select):
		if name, ok := m.cursorTopic(); ok {
			m.service.SelectTopic(name)
			m.syncTopicState()
		}
		cmd := m.focusChat()
		return m, cmd
	case key.Matches(msg, keys.Focus):
		cmd := m.focusChat()
		return m, cmd
	case key.Matches(msg, keys.Reload):
		return m, m.loadTopics()
	case key.Matches(msg, keys.Add):
		m.topicForm = NewTopicForm(m.topics)
		m.topicForm.Form().WithWidth(formWidth)
		m.state = stateAddingTopic
		return m, m.topicForm.Form().Init()
	case key.Matches(msg, keys.Remove):
		name, ok := m.cursorTopic()
		if !ok {
			return m, nil
		}
		m.pendingRemove = name
		m.modal = NewModal("Delete topic", fmt.Sprintf("Delete %q from the topic list?", name))
		m.state = stateConfirming
	case key.Matches(msg, keys.Upload):
		if m.selected == "" {
			m.showAlert(NewAlert("No topic selected", "Select a topic before uploading documents."))
			return m, nil
		}
		m.uploadForm = NewUploadForm(m.selected)
		m.uploadForm.Form().WithWidth(formWidth)
		m.state = stateStagingUpload
		return m, m.uploadForm.Form().Init()
	}
	return m, nil
}

// handleChatKey handles keys while the chat pane has focus.
func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Send):
		req, ok := m.service.BeginTurn(m.input.Value())
		if !ok {
			return m, nil
		}
		m.input.Reset()
		m.refreshTranscript()
		return m, m.ask(req)
	case key.Matches(msg, keys.Back):
		m.focus = focusTopics
		m.input.Blur()
		return m, nil
	case key.Matches(msg, keys.PageUp):
		m.transcript.ScrollUp()
		return m, nil
	case key.Matches(msg, keys.PageDown):
		m.transcript.ScrollDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleConfirmModalKey handles keys when the delete confirmation is shown.
func (m Model) handleConfirmModalKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEnter:
		confirmed := m.modal.ConfirmSelected()
		name := m.pendingRemove
		m.pendingRemove = ""
		m.closeDialog()
		if !confirmed {
			return m, nil
		}
		snapshot, ok := m.service.RemoveTopic(name, desk.Confirmed)
		if !ok {
			return m, nil
		}
		m.syncTopicState()
		return m, m.syncTopics(snapshot)
	case keyEsc, "q":
		m.closeDialog()
		m.pendingRemove = ""
	case "left", "right", "h", "l", "tab", "y", "n":
		m.modal.ToggleSelection()
	}
	return m, nil
}

// handleUploadReviewKey handles keys while a staged batch awaits confirmation.
func (m Model) handleUploadReviewKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyEnter:
		m.state = stateUploading
		m.uploadModal.Start()
		return m, m.startUpload(m.uploadModal.topic)
	case keyEsc, "q":
		m.service.ClearStaged()
		m.closeDialog()
	}
	return m, nil
}

// handleUploadingKey handles keys while a batch is sending or finished. A
// running batch cannot be dismissed; only ctrl+c stops it.
func (m Model) handleUploadingKey(keyStr string) (tea.Model, tea.Cmd) {
	if m.uploadModal.IsRunning() {
		return m, nil
	}
	switch keyStr {
	case keyEnter, keyEsc:
		m.closeDialog()
	}
	return m, nil
}

// updateTopicForm routes any message to the topic form and handles completion.
func (m Model) updateTopicForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.topicForm.Form().Update(msg)
	f, ok := form.(*huh.Form)
	if !ok {
		return m, cmd
	}
	m.topicForm.form = f

	switch f.State {
	case huh.StateAborted:
		m.closeDialog()
		m.topicForm = nil
		return m, nil
	case huh.StateCompleted:
		name := m.topicForm.Name()
		m.closeDialog()
		m.topicForm = nil

		snapshot, added := m.service.AddTopic(name)
		if !added {
			return m, nil
		}
		m.syncTopicState()
		return m, m.syncTopics(snapshot)
	}
	return m, cmd
}

// updateUploadForm routes any message to the upload form and stages the
// matched files on submit.
func (m Model) updateUploadForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.uploadForm.Form().Update(msg)
	f, ok := form.(*huh.Form)
	if !ok {
		return m, cmd
	}
	m.uploadForm.form = f

	switch f.State {
	case huh.StateAborted:
		m.closeDialog()
		m.uploadForm = nil
		return m, nil
	case huh.StateCompleted:
		files := m.uploadForm.Files()
		m.uploadForm = nil

		m.service.Stage(files)
		m.uploadModal = NewUploadModal(m.selected, m.service.Staged(), m.cfg.Upload.CompleteMessage)
		m.uploadModal.SetSpinner(m.spinner)
		m.state = stateUploadReview
		return m, nil
	}
	return m, cmd
}

// startUpload returns a command that commits the staged batch with
// streaming progress.
func (m Model) startUpload(topic string) tea.Cmd {
	return func() tea.Msg {
		events := make(chan upload.Result, 16)
		done := make(chan upload.Report, 1)

		ctx, cancel := context.WithCancel(m.ctx)

		go func() {
			defer close(done)

			report, _ := m.service.Commit(ctx, topic, func(r upload.Result) {
				select {
				case events <- r:
				case <-ctx.Done():
				}
			})
			close(events)
			done <- report
		}()

		return uploadStartedMsg{
			events: events,
			done:   done,
			cancel: cancel,
		}
	}
}

// listenForUpload returns a command that waits for the next result or the
// final report.
func listenForUpload(events <-chan upload.Result, done <-chan upload.Report) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-events
		if !ok {
			return uploadDoneMsg{report: <-done}
		}
		return uploadProgressMsg{result: r}
	}
}

// showAlert displays alert now, or once the active dialog closes so that a
// background failure never replaces a form or a running upload.
func (m *Model) showAlert(alert Modal) {
	if m.state != stateNormal {
		m.pendingAlert = &alert
		return
	}
	m.modal = alert
	m.state = stateAlert
}

// closeDialog returns to the main view, showing any queued alert.
func (m *Model) closeDialog() {
	m.state = stateNormal
	if m.pendingAlert != nil {
		m.modal = *m.pendingAlert
		m.pendingAlert = nil
		m.state = stateAlert
	}
}

func (m *Model) focusChat() tea.Cmd {
	m.focus = focusChat
	return m.input.Focus()
}

func (m Model) cursorTopic() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.topics) {
		return "", false
	}
	return m.topics[m.cursor], true
}

// syncTopicState copies the registry into the model, keeping the cursor on
// the selected topic.
func (m *Model) syncTopicState() {
	m.topics = m.service.Topics()
	m.selected = m.service.SelectedTopic()

	m.cursor = 0
	for i, name := range m.topics {
		if name == m.selected {
			m.cursor = i
			break
		}
	}
	m.updatePlaceholder()
}

func (m *Model) updatePlaceholder() {
	if m.selected == "" {
		m.input.Placeholder = "Select a topic to start asking questions"
		return
	}
	m.input.Placeholder = tmpl.MustRender(m.cfg.Chat.Placeholder, config.PlaceholderData{Topic: m.selected})
}

func (m *Model) refreshTranscript() {
	m.transcript.SetMessages(m.service.Messages(), m.service.Busy(), m.spinner.View()+mutedStyle.Render("Thinking…"))
}

// layout sizes the panes for the current window.
func (m *Model) layout() {
	chatWidth := max(m.width-sidebarWidth-4, 10)
	// header + help + borders + pane title + input row and divider
	transcriptHeight := max(m.height-8, 3)

	m.input.Width = chatWidth - 4
	m.transcript.SetSize(chatWidth, transcriptHeight)
	m.refreshTranscript()
}
