// Package config loads duet configuration from TOML files and environment
// variables, persists edits with rotating backups and supports hot reload.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/teranos/duet/syncctl"
	"github.com/teranos/duet/timing"
	"github.com/teranos/duet/typehint"
)

// Default file permissions for created config directories
const DefaultDirPermissions = 0750

// Config is the duet configuration
type Config struct {
	Sync  SyncConfig  `mapstructure:"sync" toml:"sync"`
	Hints HintsConfig `mapstructure:"hints" toml:"hints"`
	Log   LogConfig   `mapstructure:"log" toml:"log"`
}

// SyncConfig tunes the synchronization engine
type SyncConfig struct {
	DebounceMs   int `mapstructure:"debounce_ms" toml:"debounce_ms"`     // quiet period before a sync fires
	TimeoutMs    int `mapstructure:"timeout_ms" toml:"timeout_ms"`       // in-flight sync deadline
	PendingLimit int `mapstructure:"pending_limit" toml:"pending_limit"` // edits queued during a sync
	MaxRetries   int `mapstructure:"max_retries" toml:"max_retries"`     // retries for unclassified failures
	HistoryLimit int `mapstructure:"history_limit" toml:"history_limit"` // snapshot versions kept for rollback
}

// HintsConfig tunes type-hint inference for variable blocks
type HintsConfig struct {
	Enabled         bool     `mapstructure:"enabled" toml:"enabled"`
	BooleanPrefixes []string `mapstructure:"boolean_prefixes" toml:"boolean_prefixes,omitempty"`
	NumberAffixes   []string `mapstructure:"number_affixes" toml:"number_affixes,omitempty"`
	StringAffixes   []string `mapstructure:"string_affixes" toml:"string_affixes,omitempty"`
}

// LogConfig tunes process logging
type LogConfig struct {
	JSON      bool `mapstructure:"json" toml:"json"`
	Verbosity int  `mapstructure:"verbosity" toml:"verbosity"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("sync.debounce_ms", 300)
	v.SetDefault("sync.timeout_ms", 5000)
	v.SetDefault("sync.pending_limit", 32)
	v.SetDefault("sync.max_retries", 1)
	v.SetDefault("sync.history_limit", 32)

	v.SetDefault("hints.enabled", true)

	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)
}

// DebounceConfig returns the edit-coalescing tuning for the orchestrator
func (c *Config) DebounceConfig() timing.Config {
	delay := time.Duration(c.Sync.DebounceMs) * time.Millisecond
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	return timing.Config{Delay: delay, Trailing: true}
}

// HintPolicy returns the configured type-hint policy. Custom affix lists
// replace the built-in ones; disabling hints yields an unknown-only policy.
func (c *Config) HintPolicy() typehint.Policy {
	if !c.Hints.Enabled {
		return typehint.Fixed(typehint.HintUnknown)
	}
	if len(c.Hints.BooleanPrefixes) == 0 &&
		len(c.Hints.NumberAffixes) == 0 &&
		len(c.Hints.StringAffixes) == 0 {
		return typehint.Default()
	}
	return &typehint.NamePolicy{
		BooleanPrefixes: c.Hints.BooleanPrefixes,
		NumberAffixes:   c.Hints.NumberAffixes,
		StringAffixes:   c.Hints.StringAffixes,
	}
}

// ControllerConfig returns the state machine tuning
func (c *Config) ControllerConfig() syncctl.Config {
	cfg := syncctl.DefaultConfig()
	if c.Sync.TimeoutMs > 0 {
		cfg.Timeout = time.Duration(c.Sync.TimeoutMs) * time.Millisecond
	}
	if c.Sync.PendingLimit > 0 {
		cfg.PendingLimit = c.Sync.PendingLimit
	}
	if c.Sync.MaxRetries >= 0 {
		cfg.MaxRetries = c.Sync.MaxRetries
	}
	return cfg
}
