package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/hay-kot/ragdesk/internal/core/upload"
	"github.com/hay-kot/ragdesk/internal/core/validate"
	"github.com/hay-kot/ragdesk/internal/styles"
)

// TopicForm wraps a huh.Form for adding a topic.
type TopicForm struct {
	form *huh.Form
	name string
}

// NewTopicForm creates a topic form. existing is used to reject duplicates.
func NewTopicForm(existing []string) *TopicForm {
	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[name] = true
	}

	f := &TopicForm{}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("New topic").
				Placeholder("e.g. Finance").
				Value(&f.name).
				Validate(func(s string) error {
					if err := validate.TopicName(s); err != nil {
						return err
					}
					if taken[strings.TrimSpace(s)] {
						return errors.New("topic already exists")
					}
					return nil
				}),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)

	return f
}

// Form returns the underlying huh.Form for tea.Model integration.
func (f *TopicForm) Form() *huh.Form {
	return f.form
}

// Name returns the entered topic name, trimmed.
func (f *TopicForm) Name() string {
	return strings.TrimSpace(f.name)
}

// View renders the form.
func (f *TopicForm) View() string {
	return f.form.View()
}

// UploadForm wraps a huh.Form for staging documents.
type UploadForm struct {
	form     *huh.Form
	patterns string
	files    []upload.File
}

// NewUploadForm creates a form that stages the files matching the entered
// paths or glob patterns for topic.
func NewUploadForm(topic string) *UploadForm {
	f := &UploadForm{}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Upload to "+topic).
				Description("Space separated paths or globs, e.g. docs/**/*.pdf").
				Value(&f.patterns).
				Validate(func(s string) error {
					files, err := upload.Collect(strings.Fields(s))
					if err != nil {
						return err
					}
					if len(files) == 0 {
						return errors.New("no files matched")
					}
					f.files = files
					return nil
				}),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)

	return f
}

// Form returns the underlying huh.Form for tea.Model integration.
func (f *UploadForm) Form() *huh.Form {
	return f.form
}

// Files returns the files matched on submit.
func (f *UploadForm) Files() []upload.File {
	return f.files
}

// View renders the form.
func (f *UploadForm) View() string {
	return f.form.View()
}
