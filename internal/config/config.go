package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/1broseidon/vega/internal/daemon"
)

// Config is the effective configuration after defaults are applied.
type Config struct {
	// CycleHotkey and PromoteHotkey use xgbutil keybind syntax, e.g.
	// "Control-Mod1-t".
	CycleHotkey   string `yaml:"cycle_hotkey"`
	PromoteHotkey string `yaml:"promote_hotkey"`

	// ExcludedApps lists WM_CLASS class names that are never tiled.
	ExcludedApps []string `yaml:"excluded_apps"`

	LogLevel string `yaml:"log_level"`

	// StatePath overrides the session state file. Empty means the per-user
	// runtime directory.
	StatePath string `yaml:"state_path,omitempty"`

	// PollIntervalMs is how often `vega daemon` drains its hotkey queue.
	PollIntervalMs int `yaml:"poll_interval_ms"`
}

func DefaultConfig() *Config {
	return &Config{
		CycleHotkey:    "Control-Mod1-t",
		PromoteHotkey:  "Control-Mod1-Return",
		ExcludedApps:   defaultExcludedApps(),
		LogLevel:       "info",
		PollIntervalMs: int(daemon.DefaultInterval / time.Millisecond),
	}
}

// defaultExcludedApps are desktop shells and panels that own full-screen or
// docked windows.
func defaultExcludedApps() []string {
	return []string{
		"Finder",
		"Dock",
		"Desktop",
		"Xfdesktop",
		"Plasmashell",
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CycleHotkey) == "" {
		return &ValidationError{Path: "cycle_hotkey", Err: fmt.Errorf("cycle_hotkey is required")}
	}
	if strings.TrimSpace(c.PromoteHotkey) == "" {
		return &ValidationError{Path: "promote_hotkey", Err: fmt.Errorf("promote_hotkey is required")}
	}
	if strings.EqualFold(strings.TrimSpace(c.CycleHotkey), strings.TrimSpace(c.PromoteHotkey)) {
		return &ValidationError{Path: "promote_hotkey", Err: fmt.Errorf("promote_hotkey must differ from cycle_hotkey")}
	}
	for i, app := range c.ExcludedApps {
		if strings.TrimSpace(app) == "" {
			return &ValidationError{Path: fmt.Sprintf("excluded_apps[%d]", i), Err: fmt.Errorf("application name must not be empty")}
		}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	if c.PollIntervalMs <= 0 {
		return &ValidationError{Path: "poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be > 0")}
	}
	return nil
}

// ParseLogLevel maps a log_level value to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be one of: debug, info, warning, error")
	}
}

// SlogLevel returns the configured level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	level, _ := ParseLogLevel(c.LogLevel)
	return level
}

// PollInterval returns PollIntervalMs as a duration.
func (c *Config) PollInterval() time.Duration {
	if c == nil || c.PollIntervalMs <= 0 {
		return daemon.DefaultInterval
	}
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}
