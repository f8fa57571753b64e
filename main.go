package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/ragdesk/internal/commands"
	"github.com/hay-kot/ragdesk/internal/core/config"
	"github.com/hay-kot/ragdesk/internal/desk"
	"github.com/hay-kot/ragdesk/internal/printer"
	"github.com/hay-kot/ragdesk/internal/store/webhook"
	"github.com/hay-kot/ragdesk/pkg/utils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	if err := setupLogger("info", "", nil); err != nil {
		panic(err)
	}

	var (
		p     = printer.New(os.Stderr)
		ctx   = printer.NewContext(context.Background(), p)
		flags = &commands.Flags{}
	)

	var deferredLogs *utils.DeferredWriter

	app := &cli.Command{
		Name:      "ragdesk",
		Usage:     "Chat with a topic-scoped research agent",
		UsageText: "ragdesk [global options] command [command options]",
		Description: `ragdesk is a terminal client for a retrieval-augmented research agent.

Questions are scoped to a topic. Documents are uploaded into a topic and the
agent answers from them. Topics, chat and ingestion are served by workflow
webhooks; see 'ragdesk doc backend' for the contract.

Run 'ragdesk' with no arguments to open the interactive chat desk.
Run 'ragdesk serve' to start the development proxy.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("RAGDESK_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (optional)",
				Sources:     cli.EnvVars("RAGDESK_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("RAGDESK_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "backend-url",
				Usage:       "workflow webhook base URL (overrides backend.url)",
				Sources:     cli.EnvVars("RAGDESK_BACKEND_URL"),
				Destination: &flags.BackendURL,
			},
			&cli.StringFlag{
				Name:        "session-id",
				Usage:       "chat session identifier, or \"auto\" for a random one (overrides session_id)",
				Sources:     cli.EnvVars("RAGDESK_SESSION_ID"),
				Destination: &flags.SessionID,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Detect TUI mode: no subcommand or the explicit tui command
			args := c.Args().Slice()
			isTUI := len(args) == 0 || args[0] == "tui"

			// In TUI mode, buffer logs to display after exit
			var deferred io.Writer
			if isTUI {
				deferredLogs = &utils.DeferredWriter{}
				deferred = deferredLogs
			}

			if err := setupLogger(flags.LogLevel, flags.LogFile, deferred); err != nil {
				return ctx, err
			}

			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			if flags.BackendURL != "" {
				cfg.Backend.URL = flags.BackendURL
			}
			if flags.SessionID != "" {
				cfg.SessionID = flags.SessionID
			}
			cfg.ResolveSessionID(uuid.NewString)

			if err := cfg.Validate(); err != nil {
				return ctx, fmt.Errorf("invalid config: %w", err)
			}
			flags.Config = cfg

			client, err := webhook.New(webhook.Config{
				BaseURL: cfg.Backend.URL,
				Endpoints: webhook.Endpoints{
					ListTopics: cfg.Backend.Endpoints.ListTopics,
					SaveTopics: cfg.Backend.Endpoints.SaveTopics,
					Chat:       cfg.Backend.Endpoints.Chat,
					Upload:     cfg.Backend.Endpoints.Upload,
				},
				TopicsField: cfg.Backend.TopicsField,
				Timeout:     cfg.Backend.Timeout,
			}, log.With().Str("component", "webhook").Logger())
			if err != nil {
				return ctx, fmt.Errorf("create backend client: %w", err)
			}
			flags.Client = client

			log.Debug().
				Str("backend", client.BaseURL()).
				Str("session_id", cfg.SessionID).
				Msg("configuration loaded")

			flags.Service = desk.New(client, client, client, cfg, log.Logger)
			return ctx, nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags)

	app = tuiCmd.Register(app)
	app = commands.NewTopicsCmd(flags).Register(app)
	app = commands.NewAskCmd(flags).Register(app)
	app = commands.NewUploadCmd(flags).Register(app)
	app = commands.NewServeCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags).Register(app)
	app = commands.NewConfigCmd(flags).Register(app)
	app = commands.NewDocCmd(flags).Register(app)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'ragdesk --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		printer.Ctx(ctx).FatalError(err)
		exitCode = 1
	}

	// Flush deferred logs to console after TUI exits
	if deferredLogs != nil {
		if err := deferredLogs.Flush(zerolog.ConsoleWriter{Out: os.Stderr}); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
		}
	}

	os.Exit(exitCode)
}

func setupLogger(level string, logFile string, deferred io.Writer) error {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}

	if logFile != "" {
		// Create log directory if it doesn't exist
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		// Open log file
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		if deferred != nil {
			// TUI mode with explicit log file - write to both file and deferred buffer
			output = io.MultiWriter(file, deferred)
		} else {
			// Write to both console and file
			output = io.MultiWriter(
				zerolog.ConsoleWriter{Out: os.Stderr},
				file,
			)
		}
	} else if deferred != nil {
		// TUI mode without log file - buffer for display after exit
		output = deferred
	}

	log.Logger = log.Output(output).Level(parsedLevel)

	return nil
}
