package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/ragdesk/internal/core/config"
	"github.com/hay-kot/ragdesk/pkg/tmpl"
)

type DocCmd struct {
	flags *Flags
	raw   bool
}

func NewDocCmd(flags *Flags) *DocCmd {
	return &DocCmd{flags: flags}
}

func (cmd *DocCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "doc",
		Usage: "Reference documentation",
		Description: `Access reference documentation for ragdesk.

Use 'ragdesk doc backend' to see the webhook contract the workflow backend
must implement, filled in with your configured URLs.`,
		Commands: []*cli.Command{
			cmd.backendCmd(),
		},
	})
	return app
}

func (cmd *DocCmd) backendCmd() *cli.Command {
	return &cli.Command{
		Name:  "backend",
		Usage: "Show the webhook contract",
		Description: `Outputs the request and response shapes of every webhook ragdesk calls.

The guide is rendered as markdown on a terminal. Use --raw for plain text.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print markdown source without rendering",
				Destination: &cmd.raw,
			},
		},
		Action: cmd.runBackend,
	}
}

func (cmd *DocCmd) runBackend(_ context.Context, c *cli.Command) error {
	guide, err := backendGuide(cmd.flags.Config)
	if err != nil {
		return err
	}

	w := c.Root().Writer
	if cmd.raw || !term.IsTerminal(int(os.Stdout.Fd())) {
		_, _ = fmt.Fprintln(w, guide)
		return nil
	}

	_, _ = io.WriteString(w, renderMarkdown(guide, terminalWidth()))
	return nil
}

// backendGuideData feeds the backend guide template.
type backendGuideData struct {
	ListURL     string
	SaveURL     string
	ChatURL     string
	UploadURL   string
	TopicsField string
	SessionID   string
	Fallback    string
}

func backendGuide(cfg *config.Config) (string, error) {
	base := strings.TrimSuffix(cfg.Backend.URL, "/")
	join := func(ep string) string { return base + "/" + strings.TrimPrefix(ep, "/") }

	data := backendGuideData{
		ListURL:     join(cfg.Backend.Endpoints.ListTopics),
		SaveURL:     join(cfg.Backend.Endpoints.SaveTopics),
		ChatURL:     join(cfg.Backend.Endpoints.Chat),
		UploadURL:   join(cfg.Backend.Endpoints.Upload),
		TopicsField: cfg.Backend.TopicsField,
		SessionID:   cfg.SessionID,
		Fallback:    cfg.Chat.FallbackAnswer,
	}

	out, err := tmpl.Render(backendGuideTmpl, data)
	if err != nil {
		return "", fmt.Errorf("render backend guide: %w", err)
	}
	return out, nil
}

const backendGuideTmpl = "# ragdesk Backend Contract\n\n" +
	"All calls go to the workflow webhooks. Non-2xx responses are errors.\n\n" +
	"## List topics\n\n" +
	"`GET {{ .ListURL }}`\n\n" +
	"Respond with a JSON array of names, or an object holding the array under `{{ .TopicsField }}`:\n\n" +
	"```json\n[\"Legal\", \"HR\"]\n{\"{{ .TopicsField }}\": [\"Legal\", \"HR\"]}\n```\n\n" +
	"Any other shape is treated as a failure and the configured default topics are shown.\n\n" +
	"## Save topics\n\n" +
	"`POST {{ .SaveURL }}`\n\n" +
	"The full list is sent after every add or remove:\n\n" +
	"```json\n{\"topics\": [\"Legal\", \"HR\"]}\n```\n\n" +
	"A failed save is reported but the local change is kept.\n\n" +
	"## Chat\n\n" +
	"`POST {{ .ChatURL }}`\n\n" +
	"```json\n{\"chatInput\": \"What is the notice period?\", \"topic\": \"Legal\", \"sessionId\": \"{{ .SessionID }}\"}\n```\n\n" +
	"Respond with an object carrying the answer in `output`:\n\n" +
	"```json\n{\"output\": \"Thirty days, see clause 4.\"}\n```\n\n" +
	"A missing or empty `output` is shown as \"{{ .Fallback }}\".\n\n" +
	"## Upload\n\n" +
	"`POST {{ .UploadURL }}`\n\n" +
	"One `multipart/form-data` request per file with two parts:\n\n" +
	"| Part | Content |\n|------|---------|\n" +
	"| `data` | the document, with its file name |\n" +
	"| `topic` | the selected topic name |\n\n" +
	"Files are sent one at a time and are never retried.\n"
