package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/ragdesk/internal/core/validate"
	"github.com/hay-kot/ragdesk/pkg/tmpl"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// PlaceholderData defines available fields for the chat placeholder template.
type PlaceholderData struct {
	Topic string
}

// CompleteData defines available fields for the upload completion template.
type CompleteData struct {
	Topic     string
	Total     int
	Succeeded int
	Failed    int
}

// Validate checks that the configuration is usable. All failures are
// collected into a single criterio.FieldErrors.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder
	return c.validate(errs).ToError()
}

func (c *Config) validate(errs criterio.FieldErrorsBuilder) criterio.FieldErrorsBuilder {
	if err := validateHTTPURL(c.Backend.URL); err != nil {
		errs = errs.Append("backend.url", err)
	}
	if c.Backend.Timeout < 0 {
		errs = errs.Append("backend.timeout", fmt.Errorf("cannot be negative"))
	}

	endpoints := []struct{ field, value string }{
		{"backend.endpoints.list_topics", c.Backend.Endpoints.ListTopics},
		{"backend.endpoints.save_topics", c.Backend.Endpoints.SaveTopics},
		{"backend.endpoints.chat", c.Backend.Endpoints.Chat},
		{"backend.endpoints.upload", c.Backend.Endpoints.Upload},
	}
	for _, ep := range endpoints {
		if strings.TrimSpace(ep.value) == "" {
			errs = errs.Append(ep.field, fmt.Errorf("cannot be empty"))
		}
	}

	if strings.TrimSpace(c.SessionID) == "" {
		errs = errs.Append("session_id", fmt.Errorf("cannot be empty"))
	}

	seen := make(map[string]bool, len(c.Topics.Defaults))
	for i, name := range c.Topics.Defaults {
		field := fmt.Sprintf("topics.defaults[%d]", i)
		if err := validate.TopicName(name); err != nil {
			errs = errs.Append(field, err)
			continue
		}
		if seen[name] {
			errs = errs.Append(field, fmt.Errorf("duplicate topic %q", name))
			continue
		}
		seen[name] = true
	}

	if !strings.HasPrefix(c.Proxy.Prefix, "/") {
		errs = errs.Append("proxy.prefix", fmt.Errorf("must start with /"))
	}
	if c.Proxy.Rewrite != "" && !strings.HasPrefix(c.Proxy.Rewrite, "/") {
		errs = errs.Append("proxy.rewrite", fmt.Errorf("must start with /"))
	}
	if err := validateHTTPURL(c.Proxy.Target); err != nil {
		errs = errs.Append("proxy.target", err)
	}

	return errs
}

// ValidateDeep performs comprehensive validation of the configuration.
// Unlike Validate(), this also checks template syntax and file access.
func (c *Config) ValidateDeep(configPath string) error {
	var errs criterio.FieldErrorsBuilder
	errs = c.validate(errs)

	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil && info.IsDir() {
			errs = errs.Append("config", fmt.Errorf("%s is a directory, not a file", configPath))
		} else if err != nil && !os.IsNotExist(err) {
			errs = errs.Append("config", fmt.Errorf("cannot access %s: %w", configPath, err))
		}
	}

	if err := validateTemplate(c.Chat.Placeholder, PlaceholderData{}); err != nil {
		errs = errs.Append("chat.placeholder", fmt.Errorf("template error: %w", err))
	}
	if err := validateTemplate(c.Upload.CompleteMessage, CompleteData{}); err != nil {
		errs = errs.Append("upload.complete_message", fmt.Errorf("template error: %w", err))
	}

	if c.Proxy.StaticDir != "" {
		if info, err := os.Stat(c.Proxy.StaticDir); err != nil {
			errs = errs.Append("proxy.static_dir", fmt.Errorf("cannot access %s: %w", c.Proxy.StaticDir, err))
		} else if !info.IsDir() {
			errs = errs.Append("proxy.static_dir", fmt.Errorf("%s is not a directory", c.Proxy.StaticDir))
		}
	}

	return errs.ToError()
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.SessionID == DefaultSessionID {
		warnings = append(warnings, ValidationWarning{
			Category: "Session",
			Item:     "session_id",
			Message:  fmt.Sprintf("using the shared default %q; chat memory is shared with every client using it (set \"auto\" for a private session)", DefaultSessionID),
		})
	}

	if c.Backend.Timeout == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Backend",
			Item:     "timeout",
			Message:  "no request timeout; a hung backend keeps a chat turn in flight until restart",
		})
	}

	if len(c.Topics.Defaults) == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Topics",
			Item:     "defaults",
			Message:  "no default topics; the sidebar starts empty when the backend is down",
		})
	}

	return warnings
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) url, got %q", raw)
	}
	return nil
}

// validateTemplate checks if a template string is valid.
func validateTemplate(tmplStr string, data any) error {
	// Dry-run with zero data so unknown fields are caught
	_, err := tmpl.Render(tmplStr, data)
	return err
}
