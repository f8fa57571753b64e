package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/ragdesk/internal/core/validate"
	"github.com/hay-kot/ragdesk/internal/printer"
	"github.com/hay-kot/ragdesk/internal/styles"
)

type TopicsCmd struct {
	flags  *Flags
	format string
	yes    bool
}

// NewTopicsCmd creates a new topics command
func NewTopicsCmd(flags *Flags) *TopicsCmd {
	return &TopicsCmd{flags: flags}
}

// Register adds the topics command to the application
func (cmd *TopicsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "topics",
		Usage: "List and edit the topic registry",
		Commands: []*cli.Command{
			{
				Name:        "ls",
				Usage:       "List topics",
				UsageText:   "ragdesk topics ls [--format text|json]",
				Description: "Prints the backend topic list, one per line. When the backend cannot be reached the configured defaults are printed and a warning is shown.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:        "add",
				Usage:       "Add a topic",
				UsageText:   "ragdesk topics add <name>",
				Description: "Appends a topic and saves the full list to the backend.",
				Action:      cmd.runAdd,
			},
			{
				Name:        "rm",
				Usage:       "Remove a topic",
				UsageText:   "ragdesk topics rm <name> [--yes]",
				Description: "Removes a topic after confirmation and saves the full list to the backend.",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "yes",
						Aliases:     []string{"y"},
						Usage:       "skip the confirmation prompt",
						Destination: &cmd.yes,
					},
				},
				Action: cmd.runRemove,
			},
		},
	})

	return app
}

func (cmd *TopicsCmd) runList(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	result := cmd.flags.Service.LoadTopics(ctx)

	if cmd.format == "json" {
		out := struct {
			Topics   []string `json:"topics"`
			Fallback bool     `json:"fallback"`
			Error    string   `json:"error,omitempty"`
		}{
			Topics:   result.Topics,
			Fallback: result.Fallback,
		}
		if result.Err != nil {
			out.Error = result.Err.Error()
		}
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if result.Fallback {
		p.Warnf("Backend unavailable, showing default topics: %v", result.Err)
	}

	if len(result.Topics) == 0 {
		p.Infof("No topics found")
		return nil
	}

	for _, name := range result.Topics {
		_, _ = fmt.Fprintln(c.Root().Writer, name)
	}
	return nil
}

func (cmd *TopicsCmd) runAdd(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	name := c.Args().First()
	if err := validate.TopicName(name); err != nil {
		return fmt.Errorf("topic name: %w", err)
	}

	if err := cmd.loadForEdit(ctx); err != nil {
		return err
	}

	snapshot, ok := cmd.flags.Service.AddTopic(name)
	if !ok {
		return fmt.Errorf("topic %q already exists", name)
	}

	if err := cmd.flags.Service.SyncTopics(ctx, snapshot); err != nil {
		return err
	}

	p.Successf("Added topic %q (%d total)", cmd.flags.Service.SelectedTopic(), len(snapshot))
	return nil
}

func (cmd *TopicsCmd) runRemove(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("topic name: %w", validate.ErrTopicRequired)
	}

	if err := cmd.loadForEdit(ctx); err != nil {
		return err
	}

	var (
		asked     bool
		promptErr error
	)
	confirm := func(name string) bool {
		asked = true
		if cmd.yes {
			return true
		}
		ok, err := confirmRemove(ctx, name)
		promptErr = err
		return ok
	}

	snapshot, removed := cmd.flags.Service.RemoveTopic(name, confirm)
	switch {
	case !asked:
		return fmt.Errorf("unknown topic %q", name)
	case promptErr != nil:
		return promptErr
	case !removed:
		p.Infof("Cancelled")
		return nil
	}

	if err := cmd.flags.Service.SyncTopics(ctx, snapshot); err != nil {
		return err
	}

	p.Successf("Removed topic %q (%d left)", name, len(snapshot))
	return nil
}

// loadForEdit loads the backend list. Saving after a fallback load would
// replace the backend list with the defaults, so a failed load is an error.
func (cmd *TopicsCmd) loadForEdit(ctx context.Context) error {
	result := cmd.flags.Service.LoadTopics(ctx)
	if result.Fallback {
		return fmt.Errorf("load topics from backend: %w", result.Err)
	}
	return nil
}

// confirmRemove asks on the terminal. Without one it refuses, so scripts
// must pass --yes.
func confirmRemove(ctx context.Context, name string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("stdin is not a terminal; pass --yes to remove without confirmation")
	}

	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete topic %q?", name)).
				Description("Documents already uploaded to it stay in the knowledge base.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&ok),
		),
	).WithTheme(styles.FormTheme()).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
