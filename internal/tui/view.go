package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	switch m.state {
	case stateConfirming, stateAlert:
		return m.modal.Overlay(m.mainView(), m.width, m.height)
	case stateAddingTopic:
		return m.formOverlay(m.topicForm.View())
	case stateStagingUpload:
		return m.formOverlay(m.uploadForm.View())
	case stateUploadReview, stateUploading:
		return m.uploadModal.Overlay(m.width, m.height)
	}

	return m.mainView()
}

// formOverlay renders a huh form in a modal box without confirm buttons.
func (m Model) formOverlay(form string) string {
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		form,
		modalHelpStyle.Render("enter submit  esc cancel"),
	)
	return place(modalStyle.Render(content), m.width, m.height)
}

func (m Model) mainView() string {
	header := titleStyle.Render("ragdesk") + mutedStyle.Render("  session "+m.service.SessionID())

	paneHeight := max(m.height-4, 5)
	sidebar := m.sidebarView(paneHeight)
	chat := m.chatView(paneHeight)
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, chat)

	help := keys.topicHelp()
	if m.focus == focusChat {
		help = keys.chatHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, renderHelp(help))
}

// sidebarView renders the topic list with the cursor and active marker.
func (m Model) sidebarView(height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Topics") + "\n\n")

	switch {
	case !m.loaded:
		b.WriteString(mutedStyle.Render(" " + m.spinner.View() + "loading..."))
	case len(m.topics) == 0:
		b.WriteString(mutedStyle.Render(" No topics. Press n to add one."))
	default:
		for i, name := range m.topics {
			label := truncateLine(name, sidebarWidth-6)
			prefix := "  "
			style := normalStyle
			if i == m.cursor && m.focus == focusTopics {
				prefix = iconCursor + " "
				style = cursorStyle
			}
			if name == m.selected {
				label += " " + activeTopicStyle.Render(iconActive)
			}
			b.WriteString(prefix + style.Render(label) + "\n")
		}
	}

	if m.notice != "" {
		b.WriteString("\n" + noticeStyle.Width(sidebarWidth-2).Render(m.notice))
	}

	pane := blurredPaneStyle
	if m.focus == focusTopics {
		pane = focusedPaneStyle
	}
	return pane.Width(sidebarWidth).Height(height).Render(b.String())
}

// chatView renders the transcript above the input line.
func (m Model) chatView(height int) string {
	width := max(m.width-sidebarWidth-4, 10)

	title := "Chat"
	if m.selected != "" {
		title += mutedStyle.Render(" · " + m.selected)
	}

	divider := mutedStyle.Render(strings.Repeat("─", max(width-2, 1)))
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(title),
		m.transcript.View(),
		divider,
		m.input.View(),
	)

	pane := blurredPaneStyle
	if m.focus == focusChat {
		pane = focusedPaneStyle
	}
	return pane.Width(width).Height(height).Render(content)
}
