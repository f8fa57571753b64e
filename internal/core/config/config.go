// Package config handles configuration loading and validation for ragdesk.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hay-kot/ragdesk/internal/core/topic"
)

// SessionIDAuto asks for a random session identifier generated at startup.
const SessionIDAuto = "auto"

// DefaultSessionID is the session identifier shared by every client unless
// configured otherwise.
const DefaultSessionID = "user-session-2"

// Config holds the application configuration.
type Config struct {
	Backend   BackendConfig `yaml:"backend"`
	SessionID string        `yaml:"session_id"`
	Topics    TopicsConfig  `yaml:"topics"`
	Chat      ChatConfig    `yaml:"chat"`
	Upload    UploadConfig  `yaml:"upload"`
	Proxy     ProxyConfig   `yaml:"proxy"`
}

// BackendConfig locates the workflow webhooks.
type BackendConfig struct {
	URL         string        `yaml:"url"`
	Timeout     time.Duration `yaml:"timeout"`      // 0 = no timeout
	TopicsField string        `yaml:"topics_field"` // wrapper key accepted when listing topics
	Endpoints   Endpoints     `yaml:"endpoints"`
}

// Endpoints names each webhook relative to BackendConfig.URL.
type Endpoints struct {
	ListTopics string `yaml:"list_topics"`
	SaveTopics string `yaml:"save_topics"`
	Chat       string `yaml:"chat"`
	Upload     string `yaml:"upload"`
}

// TopicsConfig configures the topic registry.
type TopicsConfig struct {
	// Defaults is used when the backend topic list cannot be loaded.
	Defaults []string `yaml:"defaults"`
}

// ChatConfig configures chat replies and the input prompt.
type ChatConfig struct {
	FallbackAnswer string `yaml:"fallback_answer"`
	ErrorAnswer    string `yaml:"error_answer"`
	Placeholder    string `yaml:"placeholder"` // template, see PlaceholderData
}

// UploadConfig configures upload reporting.
type UploadConfig struct {
	CompleteMessage string `yaml:"complete_message"` // template, see CompleteData
}

// ProxyConfig configures the local development server.
type ProxyConfig struct {
	Listen    string `yaml:"listen"`
	Prefix    string `yaml:"prefix"`
	Target    string `yaml:"target"`
	Rewrite   string `yaml:"rewrite"`
	StaticDir string `yaml:"static_dir"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			URL:         "http://localhost:5678/webhook",
			TopicsField: "topics",
			Endpoints: Endpoints{
				ListTopics: "topics",
				SaveTopics: "topics",
				Chat:       "chat-agent",
				Upload:     "upload-pdf",
			},
		},
		SessionID: DefaultSessionID,
		Topics: TopicsConfig{
			Defaults: append([]string(nil), topic.DefaultTopics...),
		},
		Chat: ChatConfig{
			FallbackAnswer: "I couldn't find an answer.",
			ErrorAnswer:    "Sorry, I couldn't reach the research agent. Please try again.",
			Placeholder:    "Ask about {{ .Topic }}...",
		},
		Upload: UploadConfig{
			CompleteMessage: "Upload complete: {{ .Succeeded }}/{{ .Total }} file(s) sent to {{ .Topic }}",
		},
		Proxy: ProxyConfig{
			Listen:  ":5173",
			Prefix:  "/api/n8n",
			Target:  "http://localhost:5678",
			Rewrite: "/webhook",
		},
	}
}

// Load reads configuration from the given path.
// If configPath is empty or doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Backend.URL == "" {
		c.Backend.URL = defaults.Backend.URL
	}
	if c.Backend.TopicsField == "" {
		c.Backend.TopicsField = defaults.Backend.TopicsField
	}
	if c.Backend.Endpoints.ListTopics == "" {
		c.Backend.Endpoints.ListTopics = defaults.Backend.Endpoints.ListTopics
	}
	if c.Backend.Endpoints.SaveTopics == "" {
		c.Backend.Endpoints.SaveTopics = defaults.Backend.Endpoints.SaveTopics
	}
	if c.Backend.Endpoints.Chat == "" {
		c.Backend.Endpoints.Chat = defaults.Backend.Endpoints.Chat
	}
	if c.Backend.Endpoints.Upload == "" {
		c.Backend.Endpoints.Upload = defaults.Backend.Endpoints.Upload
	}
	if c.SessionID == "" {
		c.SessionID = defaults.SessionID
	}
	if c.Topics.Defaults == nil {
		c.Topics.Defaults = defaults.Topics.Defaults
	}
	if c.Chat.FallbackAnswer == "" {
		c.Chat.FallbackAnswer = defaults.Chat.FallbackAnswer
	}
	if c.Chat.ErrorAnswer == "" {
		c.Chat.ErrorAnswer = defaults.Chat.ErrorAnswer
	}
	if c.Chat.Placeholder == "" {
		c.Chat.Placeholder = defaults.Chat.Placeholder
	}
	if c.Upload.CompleteMessage == "" {
		c.Upload.CompleteMessage = defaults.Upload.CompleteMessage
	}
	if c.Proxy.Listen == "" {
		c.Proxy.Listen = defaults.Proxy.Listen
	}
	if c.Proxy.Prefix == "" {
		c.Proxy.Prefix = defaults.Proxy.Prefix
	}
	if c.Proxy.Target == "" {
		c.Proxy.Target = defaults.Proxy.Target
	}
	if c.Proxy.Rewrite == "" {
		c.Proxy.Rewrite = defaults.Proxy.Rewrite
	}
}

// ResolveSessionID replaces the "auto" session identifier with one from gen.
// It is a no-op for any other value.
func (c *Config) ResolveSessionID(gen func() string) {
	if c.SessionID == SessionIDAuto {
		c.SessionID = gen()
	}
}
