package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/ragdesk/internal/core/validate"
	"github.com/hay-kot/ragdesk/internal/desk"
	"github.com/hay-kot/ragdesk/internal/printer"
	"github.com/hay-kot/ragdesk/internal/styles"
)

// defaultWrap is the markdown wrap width when stdout is not a terminal.
const defaultWrap = 80

type AskCmd struct {
	flags *Flags
	topic string
	raw   bool
}

// NewAskCmd creates a new ask command
func NewAskCmd(flags *Flags) *AskCmd {
	return &AskCmd{flags: flags}
}

// Register adds the ask command to the application
func (cmd *AskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "ask",
		Usage: "Ask a single question",
		UsageText: `ragdesk ask [options] <question>

Ask about a topic:
  ragdesk ask -t Legal "What is the notice period?"

Read the question from stdin:
  cat question.md | ragdesk ask -t Legal`,
		Description: `Sends one chat turn to the research agent and prints the answer as
rendered markdown. The question is scoped to --topic, or to the first topic
in the registry when omitted.

Exits non-zero when the backend could not be reached.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "topic",
				Aliases:     []string{"t"},
				Usage:       "topic to scope the question to",
				Destination: &cmd.topic,
			},
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print the answer without markdown rendering",
				Destination: &cmd.raw,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AskCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	question, err := cmd.readQuestion(c)
	if err != nil {
		return err
	}

	result := cmd.flags.Service.LoadTopics(ctx)
	if result.Fallback {
		p.Warnf("Backend unavailable, using default topics")
	}

	if cmd.topic != "" && !cmd.flags.Service.SelectTopic(cmd.topic) {
		return fmt.Errorf("unknown topic %q; run 'ragdesk topics ls' to list topics", cmd.topic)
	}

	reply, err := cmd.flags.Service.Send(ctx, question)
	if errors.Is(err, desk.ErrSendRejected) {
		return err
	}

	out := c.Root().Writer
	if cmd.raw {
		_, _ = fmt.Fprintln(out, reply)
	} else {
		_, _ = fmt.Fprint(out, renderMarkdown(reply, terminalWidth()))
	}

	if err != nil {
		return cli.Exit("", 1)
	}
	return nil
}

// readQuestion joins the arguments, or reads stdin when there are none and
// stdin is piped.
func (cmd *AskCmd) readQuestion(c *cli.Command) (string, error) {
	question := strings.Join(c.Args().Slice(), " ")

	if question == "" && !term.IsTerminal(int(os.Stdin.Fd())) {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		question = string(data)
	}

	question = strings.TrimSpace(question)
	if err := validate.ChatInput(question); err != nil {
		return "", fmt.Errorf("question: %w", err)
	}
	return question, nil
}

// renderMarkdown renders s for the terminal, returning s unchanged when
// rendering fails.
func renderMarkdown(s string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.MarkdownStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return s + "\n"
	}

	out, err := r.Render(s)
	if err != nil {
		return s + "\n"
	}
	return out
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWrap
	}
	return min(w, 120)
}
