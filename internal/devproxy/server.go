// Package devproxy serves the local development endpoint that forwards a
// path prefix to the workflow backend, rewriting the prefix on the way.
package devproxy

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"github.com/rs/zerolog"
)

// bodyLimit caps request bodies; document uploads pass through this server.
const bodyLimit = 64 * 1024 * 1024

// Options configures the development server.
type Options struct {
	Listen    string // e.g. ":5173"
	Prefix    string // forwarded path prefix, e.g. "/api/n8n"
	Target    string // backend origin, e.g. "http://localhost:5678"
	Rewrite   string // replacement for Prefix, e.g. "/webhook"
	StaticDir string // optional directory served at "/"
}

// Server forwards Prefix requests to Target and optionally serves a built
// front end.
type Server struct {
	app    *fiber.App
	opts   Options
	target string
	log    zerolog.Logger
}

// New creates the development server.
func New(opts Options, log zerolog.Logger) (*Server, error) {
	if !strings.HasPrefix(opts.Prefix, "/") {
		return nil, fmt.Errorf("prefix %q must start with /", opts.Prefix)
	}

	u, err := url.Parse(opts.Target)
	if err != nil {
		return nil, fmt.Errorf("parse target: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("target %q must be an absolute http(s) url", opts.Target)
	}

	s := &Server{
		opts:   opts,
		target: strings.TrimSuffix(u.Scheme+"://"+u.Host, "/"),
		log:    log,
	}

	app := fiber.New(fiber.Config{
		AppName:               "ragdesk",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(s.logRequests)

	prefix := strings.TrimSuffix(opts.Prefix, "/")
	app.All(prefix, s.forward)
	app.All(prefix+"/*", s.forward)

	if opts.StaticDir != "" {
		app.Static("/", opts.StaticDir, fiber.Static{Index: "index.html"})
	}

	s.app = app
	return s, nil
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().
			Str("listen", s.opts.Listen).
			Str("prefix", s.opts.Prefix).
			Str("target", s.target+s.opts.Rewrite).
			Msg("dev server running")
		errCh <- s.app.Listen(s.opts.Listen)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.app.ShutdownWithContext(shutdownCtx)
	}
}

// TargetURL maps a request path and raw query onto the backend, replacing
// prefix with rewrite. Paths outside prefix are returned unchanged apart
// from the origin.
func TargetURL(origin, prefix, rewrite, path, query string) string {
	prefix = strings.TrimSuffix(prefix, "/")

	rest := path
	if path == prefix || strings.HasPrefix(path, prefix+"/") {
		rest = rewrite + strings.TrimPrefix(path, prefix)
	}
	if rest == "" {
		rest = "/"
	}

	out := strings.TrimSuffix(origin, "/") + rest
	if query != "" {
		out += "?" + query
	}
	return out
}

func (s *Server) forward(c *fiber.Ctx) error {
	dest := TargetURL(s.target, s.opts.Prefix, s.opts.Rewrite, c.Path(), string(c.Request().URI().QueryString()))

	if err := proxy.Do(c, dest); err != nil {
		s.log.Error().Err(err).Str("dest", dest).Msg("backend unreachable")
		return fiber.NewError(fiber.StatusBadGateway, "backend unreachable")
	}
	return nil
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}

	s.log.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("duration", time.Since(start)).
		Msg("request")

	return err
}
