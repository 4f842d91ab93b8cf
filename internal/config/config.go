// Package config handles configuration loading, validation, and
// management for keydyn.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config holds the complete keydyn configuration.
type Config struct {
	// Capture configuration for the live pipeline.
	Capture CaptureConfig `toml:"capture" json:"capture" yaml:"capture"`

	// Output configuration for artifact persistence.
	Output OutputConfig `toml:"output" json:"output" yaml:"output"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// CaptureConfig holds windowing parameters for live capture.
type CaptureConfig struct {
	// WidthSec is the trailing window length in seconds.
	WidthSec int `toml:"width_sec" json:"width_sec" yaml:"width_sec"`

	// HopSec is the interval between window evaluations in seconds.
	HopSec int `toml:"hop_sec" json:"hop_sec" yaml:"hop_sec"`

	// Pairing selects dwell pairing: "sequential" (reference
	// behavior, default) or "per_key" (rollover-safe alternative).
	Pairing string `toml:"pairing" json:"pairing" yaml:"pairing"`
}

// OutputConfig holds artifact persistence configuration.
type OutputConfig struct {
	// Dir is the directory artifacts are written to.
	Dir string `toml:"dir" json:"dir" yaml:"dir"`

	// Sink is the artifact backend: "csv" or "sqlite".
	Sink string `toml:"sink" json:"sink" yaml:"sink"`

	// SQLitePath is the database path when Sink is "sqlite".
	SQLitePath string `toml:"sqlite_path" json:"sqlite_path" yaml:"sqlite_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is "stdout", "stderr", "file", or "both".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file path when Output includes "file".
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// DefaultConfig returns the reference defaults: 5-second window,
// 1-second hop, CSV artifacts in the working directory.
func DefaultConfig() *Config {
	return &Config{
		Capture: CaptureConfig{
			WidthSec: 5,
			HopSec:   1,
			Pairing:  "sequential",
		},
		Output: OutputConfig{
			Dir:        ".",
			Sink:       "csv",
			SQLitePath: filepath.Join(PlatformDataDir(), "keydyn.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// PlatformDataDir returns the platform-specific data directory.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/keydyn/
//   - Linux:   ~/.local/share/keydyn/ (or $XDG_DATA_HOME)
//   - Windows: %APPDATA%\keydyn\
//
// Falls back to ~/.keydyn if platform detection fails.
func PlatformDataDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "keydyn")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "keydyn")
		}
		return filepath.Join(home, "keydyn")
	case "linux":
		if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
			return filepath.Join(dataHome, "keydyn")
		}
		return filepath.Join(home, ".local", "share", "keydyn")
	default:
		return filepath.Join(home, ".keydyn")
	}
}

// PlatformConfigDir returns the platform-specific config directory.
func PlatformConfigDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "keydyn")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "keydyn")
		}
		return filepath.Join(home, "keydyn")
	default:
		if cfgHome := os.Getenv("XDG_CONFIG_HOME"); cfgHome != "" {
			return filepath.Join(cfgHome, "keydyn")
		}
		return filepath.Join(home, ".config", "keydyn")
	}
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(PlatformConfigDir(), "keydyn.toml")
}
