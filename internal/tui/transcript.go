package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/hay-kot/ragdesk/internal/core/chat"
	"github.com/hay-kot/ragdesk/internal/styles"
)

// Transcript renders chat messages into a scrollable viewport. Assistant
// replies are rendered as markdown.
type Transcript struct {
	viewport viewport.Model
	renderer *glamour.TermRenderer
	wrap     int
	count    int
	busy     bool
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{viewport: viewport.New(0, 0)}
}

// SetSize resizes the viewport. The markdown renderer is rebuilt lazily when
// the wrap width changes.
func (t *Transcript) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
	if width != t.wrap {
		t.wrap = width
		t.renderer = nil
	}
}

// SetMessages replaces the rendered content. The view follows the newest
// message when the transcript grows or the busy marker toggles.
func (t *Transcript) SetMessages(msgs []chat.Message, busy bool, thinking string) {
	grew := len(msgs) != t.count || busy != t.busy
	t.count = len(msgs)
	t.busy = busy

	if len(msgs) == 0 && !busy {
		t.viewport.SetContent(mutedStyle.Render("No messages yet. Pick a topic and ask a question."))
		return
	}

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t.renderMessage(msg))
	}
	if busy {
		b.WriteString("\n" + assistantLabelStyle.Render("Assistant") + "\n  " + thinking)
	}

	t.viewport.SetContent(b.String())
	if grew {
		t.viewport.GotoBottom()
	}
}

func (t *Transcript) renderMessage(msg chat.Message) string {
	if msg.Role == chat.RoleUser {
		return userLabelStyle.Render("You") + "\n" + userTextStyle.Render(msg.Content) + "\n"
	}
	return assistantLabelStyle.Render("Assistant") + "\n" + t.markdown(msg.Content)
}

// markdown renders s, falling back to the plain text when glamour fails.
func (t *Transcript) markdown(s string) string {
	if t.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(styles.MarkdownStyle),
			glamour.WithWordWrap(max(t.wrap-4, 20)),
		)
		if err != nil {
			return s
		}
		t.renderer = r
	}

	out, err := t.renderer.Render(s)
	if err != nil {
		return s
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// ScrollUp moves the view up one page.
func (t *Transcript) ScrollUp() {
	t.viewport.PageUp()
}

// ScrollDown moves the view down one page.
func (t *Transcript) ScrollDown() {
	t.viewport.PageDown()
}

// View renders the viewport.
func (t *Transcript) View() string {
	return t.viewport.View()
}
