package config

import "strings"

// RawConfig mirrors the YAML file. Nil fields fall back to defaults.
type RawConfig struct {
	CycleHotkey    *string   `yaml:"cycle_hotkey"`
	PromoteHotkey  *string   `yaml:"promote_hotkey"`
	ExcludedApps   *[]string `yaml:"excluded_apps"`
	LogLevel       *string   `yaml:"log_level"`
	StatePath      *string   `yaml:"state_path"`
	PollIntervalMs *int      `yaml:"poll_interval_ms"`
}

// BuildEffectiveConfig overlays raw onto DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.CycleHotkey != nil {
		cfg.CycleHotkey = strings.TrimSpace(*raw.CycleHotkey)
	}
	if raw.PromoteHotkey != nil {
		cfg.PromoteHotkey = strings.TrimSpace(*raw.PromoteHotkey)
	}
	if raw.ExcludedApps != nil {
		cfg.ExcludedApps = append([]string{}, (*raw.ExcludedApps)...)
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.TrimSpace(*raw.LogLevel)
	}
	if raw.StatePath != nil {
		cfg.StatePath = strings.TrimSpace(*raw.StatePath)
	}
	if raw.PollIntervalMs != nil {
		cfg.PollIntervalMs = *raw.PollIntervalMs
	}

	return cfg
}
