package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/ragdesk/internal/core/config"
	"github.com/hay-kot/ragdesk/internal/core/upload"
	"github.com/hay-kot/ragdesk/internal/core/validate"
	"github.com/hay-kot/ragdesk/internal/printer"
	"github.com/hay-kot/ragdesk/pkg/randid"
	"github.com/hay-kot/ragdesk/pkg/tmpl"
)

const (
	// StatusUploaded indicates the file was accepted by the backend.
	StatusUploaded = "uploaded"
	// StatusFailed indicates the file upload failed.
	StatusFailed = "failed"
)

// UploadInput is the validated command input.
type UploadInput struct {
	Topic    string
	Patterns []string
}

// Validate checks the upload input for errors using criterio.
func (in UploadInput) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if err := validate.TopicName(in.Topic); err != nil {
		errs = errs.Append("topic", err)
	}

	if len(in.Patterns) == 0 {
		errs = errs.Append("files", fmt.Errorf("at least one path or glob is required"))
	}
	for i, pattern := range in.Patterns {
		if strings.TrimSpace(pattern) == "" {
			errs = errs.Append(fmt.Sprintf("files[%d]", i), fmt.Errorf("cannot be blank"))
		}
	}

	return errs.ToError()
}

// UploadResult is the output for a single file.
type UploadResult struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// UploadOutput is the JSON output schema.
type UploadOutput struct {
	BatchID   string         `json:"batch_id"`
	Topic     string         `json:"topic"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Results   []UploadResult `json:"results"`
}

// newUploadOutput converts a batch report into the JSON output schema.
func newUploadOutput(batchID string, report upload.Report) UploadOutput {
	out := UploadOutput{
		BatchID:   batchID,
		Topic:     report.Topic,
		Succeeded: report.Succeeded(),
		Failed:    report.Failed(),
		Results:   make([]UploadResult, 0, len(report.Results)),
	}

	for _, r := range report.Results {
		res := UploadResult{
			Name:       r.Name,
			Size:       r.Size,
			Status:     StatusUploaded,
			DurationMS: r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			res.Status = StatusFailed
			res.Error = r.Err.Error()
		}
		out.Results = append(out.Results, res)
	}

	return out
}

type UploadCmd struct {
	flags  *Flags
	topic  string
	format string
}

func NewUploadCmd(flags *Flags) *UploadCmd {
	return &UploadCmd{flags: flags}
}

func (cmd *UploadCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "upload",
		Usage: "Upload documents to a topic",
		UsageText: `ragdesk upload --topic <name> [options] <path|glob>...

Upload a single file:
  ragdesk upload -t Legal contract.pdf

Upload a tree of PDFs:
  ragdesk upload -t Legal 'docs/**/*.pdf'`,
		Description: `Stages every file matching the given paths and globs, then uploads them
to the ingestion webhook one at a time. Each file is sent as a multipart
form with the document in "data" and the topic in "topic".

A failed file does not stop the batch and is not retried. The command exits
non-zero when any file failed.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "topic",
				Aliases:     []string{"t"},
				Usage:       "topic the documents belong to",
				Required:    true,
				Destination: &cmd.topic,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *UploadCmd) run(ctx context.Context, c *cli.Command) error {
	batchID := randid.Batch()
	logger := log.With().Str("batch_id", batchID).Logger()

	input := UploadInput{Topic: strings.TrimSpace(cmd.topic), Patterns: c.Args().Slice()}
	if err := input.Validate(); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	files, err := upload.Collect(input.Patterns)
	if err != nil {
		return fmt.Errorf("collect files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no files matched %s", strings.Join(input.Patterns, " "))
	}

	logger.Info().Int("count", len(files)).Str("topic", input.Topic).Msg("starting upload batch")

	svc := cmd.flags.Service
	svc.Stage(files)

	p := printer.Ctx(ctx)
	text := cmd.format != "json"
	if text {
		p.Section(fmt.Sprintf("Uploading %d file(s) to %s", len(files), input.Topic))
	}

	report, _ := svc.Commit(ctx, input.Topic, func(r upload.Result) {
		if !text {
			return
		}
		detail := fmt.Sprintf("%s, %s", humanize.IBytes(uint64(r.Size)), r.Duration.Round(time.Millisecond))
		if r.OK() {
			p.CheckItem(r.Name, detail)
		} else {
			p.FailItem(r.Name, r.Err.Error())
		}
	})

	logger.Info().
		Int("succeeded", report.Succeeded()).
		Int("failed", report.Failed()).
		Msg("upload batch complete")

	if text {
		cmd.writeSummary(p, report)
	} else if err := writeUploadJSON(c.Root().Writer, newUploadOutput(batchID, report)); err != nil {
		return err
	}

	if report.Failed() > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *UploadCmd) writeSummary(p *printer.Printer, report upload.Report) {
	summary := tmpl.MustRender(cmd.flags.Config.Upload.CompleteMessage, config.CompleteData{
		Topic:     report.Topic,
		Total:     report.Total(),
		Succeeded: report.Succeeded(),
		Failed:    report.Failed(),
	})

	p.Printf("")
	if report.Failed() > 0 {
		p.Errorf("%s (%d failed)", summary, report.Failed())
		return
	}
	p.Successf("%s", summary)
}

func writeUploadJSON(w io.Writer, out UploadOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
