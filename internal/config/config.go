// Package config loads and saves datarails configuration. Values are kept
// in a TOML file; environment variables take precedence so collaborators
// can inject credentials without touching the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Environment overrides recognized alongside the config file.
const (
	EnvDatabasePath = "DATARAILS_DB"
	EnvAPIKey       = "DATARAILS_OPEN_API_KEY"
	EnvAPIBase      = "DATARAILS_OPEN_API_BASE"
	EnvModel        = "DATARAILS_OPEN_MODEL"
	EnvAPIMode      = "DATARAILS_OPEN_API_MODE"
	EnvBridgeToken  = "DATARAILS_OPEN_BRIDGE_TOKEN"
)

// Defaults applied when neither env nor config provide a value.
const (
	DefaultDatabasePath = "financials.db"
	DefaultBridgeAddr   = "127.0.0.1:8787"
	DefaultAPIBase      = "https://api.openai.com/v1"
	DefaultModel        = "gpt-4o-mini"
	DefaultAPIMode      = "chat-completions"
)

// Config holds all datarails configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Bridge  BridgeConfig  `toml:"bridge"`
	AI      AIConfig      `toml:"ai"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DatabasePath string `toml:"database_path,omitempty"`
}

// BridgeConfig holds HTTP bridge settings.
type BridgeConfig struct {
	Addr  string `toml:"addr,omitempty"`
	Token string `toml:"token,omitempty"`
}

// AIConfig holds settings for the insights client.
type AIConfig struct {
	APIKey  string `toml:"api_key,omitempty"`
	APIBase string `toml:"api_base,omitempty"`
	Model   string `toml:"model,omitempty"`
	Mode    string `toml:"mode,omitempty"`
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "datarails")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "datarails")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	var cfg Config

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk. The file may hold credentials, so it is
// created owner-readable only.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// DatabasePath returns the warehouse path from env, config, or default,
// in that order.
func DatabasePath(cfg Config) string {
	if p := os.Getenv(EnvDatabasePath); p != "" {
		return p
	}
	if cfg.General.DatabasePath != "" {
		return cfg.General.DatabasePath
	}
	return DefaultDatabasePath
}

// BridgeAddr returns the bridge listen address from config or default.
func BridgeAddr(cfg Config) string {
	if cfg.Bridge.Addr != "" {
		return cfg.Bridge.Addr
	}
	return DefaultBridgeAddr
}

// BridgeToken returns the bearer token from env or config. Empty means
// the bridge runs unauthenticated.
func BridgeToken(cfg Config) string {
	if t := os.Getenv(EnvBridgeToken); t != "" {
		return t
	}
	return cfg.Bridge.Token
}

// APIKey returns the insights API key from env or config, in that order.
func APIKey(cfg Config) string {
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key
	}
	return cfg.AI.APIKey
}

// APIBase returns the insights API base URL from env, config, or default.
func APIBase(cfg Config) string {
	if base := os.Getenv(EnvAPIBase); base != "" {
		return base
	}
	if cfg.AI.APIBase != "" {
		return cfg.AI.APIBase
	}
	return DefaultAPIBase
}

// Model returns the insights model from env, config, or default.
func Model(cfg Config) string {
	if m := os.Getenv(EnvModel); m != "" {
		return m
	}
	if cfg.AI.Model != "" {
		return cfg.AI.Model
	}
	return DefaultModel
}

// APIMode returns the insights request mode from env, config, or default.
func APIMode(cfg Config) string {
	if m := os.Getenv(EnvAPIMode); m != "" {
		return m
	}
	if cfg.AI.Mode != "" {
		return cfg.AI.Mode
	}
	return DefaultAPIMode
}
