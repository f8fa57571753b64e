package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Modal represents a confirmation or alert dialog.
type Modal struct {
	title           string
	message         string
	visible         bool
	alert           bool // single dismiss button, no choice
	confirmSelected bool // true = confirm button selected, false = cancel button selected
}

// NewModal creates a confirmation modal with the given title and message.
func NewModal(title, message string) Modal {
	return Modal{
		title:           title,
		message:         message,
		visible:         true,
		confirmSelected: false, // destructive prompts default to cancel
	}
}

// NewAlert creates a modal that only needs to be dismissed.
func NewAlert(title, message string) Modal {
	return Modal{
		title:   title,
		message: message,
		visible: true,
		alert:   true,
	}
}

// ToggleSelection switches the selected button.
func (m *Modal) ToggleSelection() {
	if m.alert {
		return
	}
	m.confirmSelected = !m.confirmSelected
}

// ConfirmSelected returns true if the confirm button is selected.
func (m Modal) ConfirmSelected() bool {
	return m.confirmSelected
}

// Visible returns whether the modal should be displayed.
func (m Modal) Visible() bool {
	return m.visible
}

// Render returns the modal box without positioning it.
func (m Modal) Render() string {
	var buttons, help string
	if m.alert {
		buttons = modalButtonSelectedStyle.Render("OK")
		help = "enter/esc dismiss"
	} else {
		confirmBtn := modalButtonStyle.Render("Delete")
		cancelBtn := modalButtonSelectedStyle.Render("Cancel")
		if m.confirmSelected {
			confirmBtn = modalButtonSelectedStyle.Render("Delete")
			cancelBtn = modalButtonStyle.Render("Cancel")
		}
		buttons = lipgloss.JoinHorizontal(lipgloss.Center, confirmBtn, "  ", cancelBtn)
		help = "←/→ select  enter confirm  esc cancel"
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		modalTitleStyle.Render(m.title),
		"",
		m.message,
		lipgloss.NewStyle().MarginTop(1).Render(buttons),
		modalHelpStyle.Render(help),
	)

	return modalStyle.Render(content)
}

// Overlay renders the modal centered in a width x height area.
func (m Modal) Overlay(background string, width, height int) string {
	if !m.visible {
		return background
	}
	return place(m.Render(), width, height)
}

// place centers box on an otherwise blank screen of the given size.
func place(box string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "))
}
