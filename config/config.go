// Package config loads and saves thm's TOML configuration file, following
// the teacher's config layout: a typed struct with nested per-concern
// sections, defaults filled in by DefaultConfig, and an OS-appropriate
// config path under the user's home directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every user-tunable setting for the thm assembler, VM, API
// server, and debugger.
type Config struct {
	Machine struct {
		RAMSize       uint32 `toml:"ram_size"`
		RegisterCount int    `toml:"register_count"`
		ClockInterval string `toml:"clock_interval"` // parsed with time.ParseDuration
	} `toml:"machine"`

	API struct {
		Enabled bool   `toml:"enabled"`
		Address string `toml:"address"`
	} `toml:"api"`

	Debugger struct {
		ShowSource    bool `toml:"show_source"`
		ShowRegisters bool `toml:"show_registers"`
		HistorySize   int  `toml:"history_size"`
	} `toml:"debugger"`

	Assembler struct {
		Verbose bool `toml:"verbose"`
	} `toml:"assembler"`
}

// DefaultConfig returns a Config with thm's built-in defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Machine.RAMSize = 1024 * 1024
	cfg.Machine.RegisterCount = 32
	cfg.Machine.ClockInterval = "1us"

	cfg.API.Enabled = false
	cfg.API.Address = "127.0.0.1:7878"

	cfg.Debugger.ShowSource = true
	cfg.Debugger.ShowRegisters = true
	cfg.Debugger.HistorySize = 1000

	cfg.Assembler.Verbose = false

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "thm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "thm")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file, falling back to
// defaults if the file does not exist.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the given path, falling back to
// defaults if the file does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the given path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
