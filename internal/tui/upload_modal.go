package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/hay-kot/ragdesk/internal/core/config"
	"github.com/hay-kot/ragdesk/internal/core/upload"
	"github.com/hay-kot/ragdesk/pkg/tmpl"
)

// Upload modal layout constants.
const (
	uploadModalMaxWidth  = 90 // maximum modal width in columns
	uploadModalMaxHeight = 20 // maximum modal height in rows
	uploadModalMargin    = 4  // margin from screen edges
	uploadModalChrome    = 6  // rows for title, status, help, and spacing
	uploadModalPadding   = 4  // padding inside content area
)

type uploadPhase int

const (
	phaseReview uploadPhase = iota
	phaseSending
	phaseDone
)

// UploadModal shows the staged batch, then per-file progress while it is
// committed, then the completion summary.
type UploadModal struct {
	topic    string
	files    []upload.File
	results  []upload.Result
	phase    uploadPhase
	spinner  spinner.Model
	template string
	summary  string
}

// NewUploadModal creates a modal reviewing files staged for topic.
// completeTmpl renders the summary line once the batch finishes.
func NewUploadModal(topic string, files []upload.File, completeTmpl string) UploadModal {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))

	return UploadModal{
		topic:    topic,
		files:    files,
		spinner:  s,
		template: completeTmpl,
	}
}

// Start switches the modal to the sending phase.
func (m *UploadModal) Start() {
	m.phase = phaseSending
}

// AddResult records the outcome of one file.
func (m *UploadModal) AddResult(r upload.Result) {
	m.results = append(m.results, r)
}

// SetComplete records the final report and renders the summary.
func (m *UploadModal) SetComplete(report upload.Report) {
	m.phase = phaseDone
	m.results = report.Results
	m.summary = tmpl.MustRender(m.template, config.CompleteData{
		Topic:     report.Topic,
		Total:     report.Total(),
		Succeeded: report.Succeeded(),
		Failed:    report.Failed(),
	})
}

// IsReviewing returns true while the batch waits for confirmation.
func (m UploadModal) IsReviewing() bool {
	return m.phase == phaseReview
}

// IsRunning returns true while files are being sent.
func (m UploadModal) IsRunning() bool {
	return m.phase == phaseSending
}

// Summary returns the rendered completion message, empty until done.
func (m UploadModal) Summary() string {
	return m.summary
}

// Spinner returns the spinner model for tick updates.
func (m *UploadModal) Spinner() spinner.Model {
	return m.spinner
}

// SetSpinner updates the spinner model.
func (m *UploadModal) SetSpinner(s spinner.Model) {
	m.spinner = s
}

// lines returns one row per staged file, annotated with its result once known.
func (m UploadModal) lines(width int) []string {
	out := make([]string, 0, len(m.files))
	for i, f := range m.files {
		name := truncateLine(f.Name, width-16)
		size := mutedStyle.Render(humanize.IBytes(uint64(f.Size)))

		switch {
		case i < len(m.results) && m.results[i].OK():
			out = append(out, outputSuccessStyle.Render(iconOK)+" "+name+" "+size)
		case i < len(m.results):
			out = append(out, outputErrorStyle.Render(iconFail+" "+name+": "+m.results[i].Err.Error()))
		case m.phase == phaseSending && i == len(m.results):
			out = append(out, m.spinner.View()+name+" "+size)
		default:
			out = append(out, "  "+name+" "+size)
		}
	}
	return out
}

// Overlay renders the upload modal centered in a width x height area.
func (m UploadModal) Overlay(width, height int) string {
	modalWidth := min(width-uploadModalMargin, uploadModalMaxWidth)
	modalHeight := min(height-uploadModalMargin, uploadModalMaxHeight)
	contentHeight := max(modalHeight-uploadModalChrome, 1)

	lines := m.lines(modalWidth - uploadModalPadding)

	// Keep the in-flight file in view.
	start := 0
	if len(lines) > contentHeight {
		start = min(len(m.results), len(lines)-contentHeight)
		start = max(start-contentHeight/2, 0)
		start = min(start, len(lines)-contentHeight)
	}
	end := min(start+contentHeight, len(lines))
	content := strings.Join(lines[start:end], "\n")

	var status, help string
	switch m.phase {
	case phaseReview:
		status = tmpl.MustRender(`{{ .N }} {{ plural .N "file" }} ready for {{ .Topic }}`, map[string]any{"N": len(m.files), "Topic": m.topic})
		help = "[enter] upload  [esc] discard"
	case phaseSending:
		status = m.spinner.View() + fmt.Sprintf("Uploading %d/%d...", len(m.results)+1, len(m.files))
		help = "uploading, please wait"
	default:
		if failedCount(m.results) > 0 {
			status = outputErrorStyle.Render(m.summary)
		} else {
			status = outputSuccessStyle.Render(m.summary)
		}
		help = "[enter/esc] close"
	}

	body := lipgloss.JoinVertical(
		lipgloss.Left,
		modalTitleStyle.Render("Upload to "+m.topic),
		"",
		lipgloss.NewStyle().Width(modalWidth-uploadModalPadding).Render(content),
		"",
		status,
		modalHelpStyle.Render(help),
	)

	return place(modalStyle.Render(body), width, height)
}

func failedCount(results []upload.Result) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}

func truncateLine(s string, width int) string {
	if width <= 3 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
