// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clixconfig is the host-CLI configuration layer: a TOML-backed
// settings file with defaults, environment overrides, and a thread-safe
// global singleton, independent of the engine in the root package.
package clixconfig

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/morganforge/clix/internal/fsutil"
)

// Config is the persisted configuration for a host application built on
// this framework.
type Config struct {
	Version        string       `toml:"version"`
	DefaultCommand string       `toml:"default_command"`
	CommandsDir    string       `toml:"commands_dir"`
	Logging        LoggingConfig `toml:"logging"`
	UI             UIConfig      `toml:"ui"`
}

// LoggingConfig controls the built-in logger plugin's defaults.
type LoggingConfig struct {
	Enabled  bool   `toml:"enabled"`
	Level    string `toml:"level"`
	FilePath string `toml:"file_path"`
}

// UIConfig controls prompt/help rendering defaults.
type UIConfig struct {
	Theme    string `toml:"theme"`
	WordWrap int    `toml:"word_wrap"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Version:        "1.0.0",
		DefaultCommand: "",
		CommandsDir:    "commands",
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
		UI: UIConfig{
			Theme:    "auto",
			WordWrap: 80,
		},
	}
}

// Dir returns the host application's configuration directory,
// ~/.config/<appName> on most platforms.
func Dir(appName string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// Path returns the path to appName's config.toml.
func Path(appName string) (string, error) {
	dir, err := Dir(appName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads appName's config.toml, falling back to defaults for any file
// or field that is absent, then applies environment overrides.
func Load(appName string) (*Config, error) {
	cfg := Default()

	path, err := Path(appName)
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if _, decErr := toml.DecodeFile(path, cfg); decErr != nil {
				return nil, fmt.Errorf("failed to decode config: %w", decErr)
			}
		}
	}

	cfg.applyEnvOverrides(appName)
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	defaults := Default()
	if c.CommandsDir == "" {
		c.CommandsDir = defaults.CommandsDir
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.WordWrap == 0 {
		c.UI.WordWrap = defaults.UI.WordWrap
	}
}

// applyEnvOverrides applies <APPNAME>_* environment variable overrides,
// where appName is upper-cased with non-alphanumerics collapsed to
// underscores.
func (c *Config) applyEnvOverrides(appName string) {
	prefix := envPrefix(appName)

	if v := os.Getenv(prefix + "_DEFAULT_COMMAND"); v != "" {
		c.DefaultCommand = v
	}
	if v := os.Getenv(prefix + "_COMMANDS_DIR"); v != "" {
		c.CommandsDir = v
	}
	if v := os.Getenv(prefix + "_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(prefix + "_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
	if v := os.Getenv(prefix + "_THEME"); v != "" {
		c.UI.Theme = v
	}
}

func envPrefix(appName string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(appName) {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Save writes cfg to appName's config.toml with owner-only permissions.
// The write is atomic (temp file + fsync + rename) so a crash mid-save
// never leaves a truncated config file behind.
func Save(appName string, cfg *Config) error {
	path, err := Path(appName)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("# generated config file, edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := fsutil.WriteFileAtomic(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var (
	globalMu   sync.RWMutex
	globalCfg  *Config
	globalOnce sync.Once
	globalApp  string
)

// Global lazily loads and returns the process-wide Config for appName.
// Only the first call's appName takes effect; subsequent calls return the
// same instance regardless of the appName argument.
func Global(appName string) *Config {
	globalOnce.Do(func() {
		globalApp = appName
		cfg, err := Load(appName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalCfg = cfg
	})

	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalCfg
}

// ReloadGlobal reloads the global config from disk.
func ReloadGlobal() error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalApp == "" {
		return fmt.Errorf("clixconfig: Global has not been called yet")
	}
	cfg, err := Load(globalApp)
	if err != nil {
		return err
	}
	globalCfg = cfg
	return nil
}

// resetGlobalForTesting clears the process-wide singleton so a later
// Global call re-derives it from disk. Test-only.
func resetGlobalForTesting() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalCfg = nil
	globalApp = ""
	globalOnce = sync.Once{}
}
