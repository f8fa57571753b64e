package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/ragdesk/internal/core/config"
	"github.com/hay-kot/ragdesk/internal/printer"
)

// ConfigCmd groups commands that inspect the loaded configuration.
type ConfigCmd struct {
	flags  *Flags
	format string
}

func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Inspect the ragdesk configuration",
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Check the configuration for errors",
				UsageText: "ragdesk config validate [--format text|json]",
				Description: `Checks backend and proxy URLs, webhook endpoints, the default topic list and
the chat and upload message templates. Exits non-zero when any check fails;
warnings alone do not fail.`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.runValidate,
			},
			{
				Name:        "show",
				Usage:       "Print the effective configuration",
				UsageText:   "ragdesk config show",
				Description: "Prints the configuration after defaults, environment variables, and flags are applied, as YAML.",
				Action:      cmd.runShow,
			},
		},
	})

	return app
}

// configIssue is one failed field in a validation report.
type configIssue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// configReport is the outcome of validating the loaded configuration.
type configReport struct {
	Path     string                     `json:"path"`
	Valid    bool                       `json:"valid"`
	Errors   []configIssue              `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func newConfigReport(cfg *config.Config, path string) configReport {
	report := configReport{
		Path:     path,
		Warnings: cfg.Warnings(),
	}

	err := cfg.ValidateDeep(path)
	report.Valid = err == nil
	if err == nil {
		return report
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		report.Errors = []configIssue{{Message: err.Error()}}
		return report
	}
	for _, fe := range fieldErrs {
		report.Errors = append(report.Errors, configIssue{Field: fe.Field, Message: fe.Err.Error()})
	}
	return report
}

func (cmd *ConfigCmd) runValidate(ctx context.Context, c *cli.Command) error {
	if cmd.flags.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	report := newConfigReport(cmd.flags.Config, cmd.flags.ConfigPath)

	if cmd.format == "json" {
		if err := writeConfigReportJSON(c.Root().Writer, report); err != nil {
			return err
		}
	} else {
		printConfigReport(printer.Ctx(ctx), report)
	}

	if !report.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func writeConfigReportJSON(w io.Writer, report configReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func printConfigReport(p *printer.Printer, report configReport) {
	source := report.Path
	if source == "" {
		source = "built-in defaults"
	}
	p.Section("Config: " + source)

	for _, issue := range report.Errors {
		label := issue.Field
		if label == "" {
			label = "config"
		}
		p.FailItem(label, issue.Message)
	}

	for _, w := range report.Warnings {
		label := w.Category
		if w.Item != "" {
			label += " " + w.Item
		}
		p.WarnItem(label, w.Message)
	}

	p.Printf("")
	switch {
	case !report.Valid:
		p.Errorf("Invalid configuration: %d error(s), %d warning(s)", len(report.Errors), len(report.Warnings))
	case len(report.Warnings) > 0:
		p.Successf("Configuration is valid with %d warning(s)", len(report.Warnings))
	default:
		p.Successf("Configuration is valid")
	}
}

func (cmd *ConfigCmd) runShow(ctx context.Context, c *cli.Command) error {
	if cmd.flags.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	printer.Ctx(ctx).Infof("config file: %s", cmd.flags.ConfigPath)

	enc := yaml.NewEncoder(c.Root().Writer)
	enc.SetIndent(2)
	if err := enc.Encode(cmd.flags.Config); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
