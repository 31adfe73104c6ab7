// Package config handles user configuration for pulse.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// Runner is the model runner executable, either a name on PATH or a path.
	Runner string `json:"runner"`
	// DefaultModel is preselected when the runner reports it as installed.
	DefaultModel string `json:"default_model,omitempty"`
	// TimeoutSeconds bounds each runner invocation. Zero disables the timeout.
	TimeoutSeconds int `json:"timeout_seconds"`
	// RenderMarkdown renders responses through glamour instead of plain text.
	RenderMarkdown  bool           `json:"render_markdown"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	Verbose         bool           `json:"verbose"`
	LogFile         string         `json:"log_file,omitempty"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
	// Env is added to the runner's environment, e.g. {"OLLAMA_HOST": "10.0.0.5:11434"}.
	Env map[string]string `json:"env,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	cfg := Config{
		Runner:          "ollama",
		TimeoutSeconds:  0,
		RenderMarkdown:  false,
		CopyToClipboard: true,
		Verbose:         false,
		TUITheme:        "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
	}
	if dir, err := GetConfigDir(); err == nil {
		cfg.LogFile = filepath.Join(dir, "pulse.log")
	}
	return cfg
}

// Timeout returns the runner timeout as a duration
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RunnerEnv returns Env as KEY=VALUE pairs sorted by key.
func (c Config) RunnerEnv() []string {
	if len(c.Env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+c.Env[k])
	}
	return env
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".pulse"), nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Runner == "" {
		cfg.Runner = "ollama"
	}

	return cfg, nil
}
