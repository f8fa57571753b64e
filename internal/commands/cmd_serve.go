package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/ragdesk/internal/devproxy"
	"github.com/hay-kot/ragdesk/internal/printer"
)

type ServeCmd struct {
	flags     *Flags
	listen    string
	staticDir string
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the development proxy",
		UsageText: "ragdesk serve [--listen :5173] [--static-dir ./dist]",
		Description: `Serves a local endpoint that forwards the proxy prefix (default /api/n8n)
to the workflow backend (default http://localhost:5678), replacing the
prefix with the rewrite path (default /webhook). A browser front end can
then call the backend from the same origin.

When a static directory is given it is served at /.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "listen",
				Usage:       "listen address (overrides proxy.listen)",
				Destination: &cmd.listen,
			},
			&cli.StringFlag{
				Name:        "static-dir",
				Usage:       "directory to serve at / (overrides proxy.static_dir)",
				Destination: &cmd.staticDir,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, _ *cli.Command) error {
	opts := cmd.options()

	srv, err := devproxy.New(opts, log.With().Str("component", "devproxy").Logger())
	if err != nil {
		return fmt.Errorf("create dev server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer.Ctx(ctx).Infof("Forwarding %s%s -> %s%s", opts.Listen, opts.Prefix, opts.Target, opts.Rewrite)

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("dev server: %w", err)
	}
	return nil
}

// options merges command flags over the proxy config.
func (cmd *ServeCmd) options() devproxy.Options {
	pc := cmd.flags.Config.Proxy

	opts := devproxy.Options{
		Listen:    pc.Listen,
		Prefix:    pc.Prefix,
		Target:    pc.Target,
		Rewrite:   pc.Rewrite,
		StaticDir: pc.StaticDir,
	}
	if cmd.listen != "" {
		opts.Listen = cmd.listen
	}
	if cmd.staticDir != "" {
		opts.StaticDir = cmd.staticDir
	}
	return opts
}
