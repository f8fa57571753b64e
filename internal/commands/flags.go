package commands

import (
	"os"
	"path/filepath"

	"github.com/hay-kot/ragdesk/internal/core/config"
	"github.com/hay-kot/ragdesk/internal/desk"
	"github.com/hay-kot/ragdesk/internal/store/webhook"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	// Overrides applied on top of the loaded config
	BackendURL string
	SessionID  string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Client talks to the backend webhooks
	Client *webhook.Client

	// Service owns topic, chat and upload state
	Service *desk.Service
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "ragdesk", "config.yaml")
}
