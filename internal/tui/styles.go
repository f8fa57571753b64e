// Package tui implements the Bubble Tea TUI for ragdesk.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/ragdesk/internal/styles"
)

// Styles used for rendering the TUI.
var (
	// Title style for pane headers.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorBlue).
			PaddingLeft(1)

	// Pane border when the pane has focus.
	focusedPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(styles.ColorBlue)

	// Pane border when the pane is idle.
	blurredPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(styles.ColorMuted)

	// Topic under the cursor.
	cursorStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue).
			Bold(true)

	// Selected (active) topic marker.
	activeTopicStyle = lipgloss.NewStyle().
				Foreground(styles.ColorGreen)

	// Normal item style (no color, uses terminal default).
	normalStyle = lipgloss.NewStyle()

	// Muted text for hints and empty states.
	mutedStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	// Warning notice (e.g. default topics in use).
	noticeStyle = lipgloss.NewStyle().
			Foreground(styles.ColorYellow)

	// Chat author labels.
	userLabelStyle = lipgloss.NewStyle().
			Foreground(styles.ColorPurple).
			Bold(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(styles.ColorBlue).
				Bold(true)

	// User message body.
	userTextStyle = lipgloss.NewStyle().
			Foreground(styles.ColorWhite).
			PaddingLeft(2)

	// Help bar at the bottom of the screen.
	helpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			PaddingLeft(1)

	// Spinner style.
	spinnerStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue)
)

// Modal styles.
var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorBlue).
			Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorWhite)

	modalHelpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			MarginTop(1)

	modalButtonStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(styles.ColorMuted).
				Foreground(lipgloss.Color("#a9b1d6"))

	modalButtonSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(styles.ColorBlue).
					Foreground(styles.ColorBg).
					Bold(true)

	outputErrorStyle = lipgloss.NewStyle().
				Foreground(styles.ColorRed)

	outputSuccessStyle = lipgloss.NewStyle().
				Foreground(styles.ColorGreen)
)

// Icons and symbols.
const (
	iconCursor = "›"
	iconActive = "●"
	iconOK     = "✓"
	iconFail   = "✗"
)
