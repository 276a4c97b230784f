// Package config loads, validates and watches the HabitReminder
// configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jbw9/HabitReminder/internal/habit"
)

// HabitOverride is one habit's block in the config file. Every field is
// optional; set fields override the built-in calibration, the rest keep
// their defaults. The machine kind is structural and cannot be configured.
type HabitOverride struct {
	Enabled         *bool    `json:"enabled,omitempty"`
	Threshold       *float64 `json:"threshold,omitempty" validate:"omitempty,gt=0"`
	DebounceFrames  *int     `json:"debounce_frames,omitempty" validate:"omitempty,min=1"`
	EventFrames     *int     `json:"event_frames,omitempty" validate:"omitempty,min=1"`
	WindowSeconds   *int     `json:"window_seconds,omitempty" validate:"omitempty,min=1"`
	MaxEvents       *int     `json:"max_events,omitempty" validate:"omitempty,min=1"`
	MinEvents       *int     `json:"min_events,omitempty" validate:"omitempty,min=1"`
	IntervalMinutes *int     `json:"interval_minutes,omitempty" validate:"omitempty,min=1"`
	OvalRX          *float64 `json:"oval_rx,omitempty" validate:"omitempty,gt=0"`
	OvalRY          *float64 `json:"oval_ry,omitempty" validate:"omitempty,gt=0"`
	PostureWidth    *float64 `json:"posture_width,omitempty" validate:"omitempty,gt=0"`
	PostureTilt     *float64 `json:"posture_tilt,omitempty" validate:"omitempty,gt=0"`
	CooldownSeconds *int     `json:"cooldown_seconds,omitempty" validate:"omitempty,min=1"`
	Severity        *string  `json:"severity,omitempty" validate:"omitempty,oneof=normal high"`
	Message         *string  `json:"message,omitempty"`
}

// AlertConfig configures the dispatch side: the external notifier command
// and history retention.
type AlertConfig struct {
	NotifierCommand        string   `json:"notifier_command,omitempty"`
	NotifierArgs           []string `json:"notifier_args,omitempty"`
	NotifierTimeoutSeconds int      `json:"notifier_timeout_seconds" validate:"min=1,max=60"`
	RetentionDays          int      `json:"retention_days" validate:"min=1"`
}

// ServerConfig configures the HTTP control surface.
type ServerConfig struct {
	Addr string `json:"addr" validate:"required,hostname_port"`
}

// DatabaseConfig locates the alert history database.
type DatabaseConfig struct {
	Path string `json:"path" validate:"required"`
}

// SourceConfig selects the snapshot source: an external landmark service
// command, or a recorded JSONL file to replay. At most one may be set; with
// neither the daemon runs without a source (control surface only).
type SourceConfig struct {
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
	Replay  string   `json:"replay,omitempty"`
}

// Config is the full configuration tree.
type Config struct {
	TickHz   int                      `json:"tick_hz" validate:"min=1,max=120"`
	Habits   map[string]HabitOverride `json:"habits" validate:"dive"`
	Alerts   AlertConfig              `json:"alerts"`
	Server   ServerConfig             `json:"server"`
	Database DatabaseConfig           `json:"database"`
	Source   SourceConfig             `json:"source"`
}

// DefaultPath returns the user config file location,
// ~/.habitreminder/habits.json.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".habitreminder", "habits.json")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TickHz: 30,
		Habits: map[string]HabitOverride{},
		Alerts: AlertConfig{
			NotifierTimeoutSeconds: 5,
			RetentionDays:          30,
		},
		Server: ServerConfig{Addr: "127.0.0.1:8750"},
		Database: DatabaseConfig{
			Path: filepath.Join(os.Getenv("HOME"), ".habitreminder", "habitreminder.db"),
		},
	}
}

// Load reads the config file at path, layering it over the defaults and the
// HABITREMINDER_* environment on top. A missing file is not an error; the
// defaults apply. The returned config is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the loaded file. The daemon
// loads .env into the environment before this runs.
func applyEnv(c *Config) {
	if v := os.Getenv("HABITREMINDER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("HABITREMINDER_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("HABITREMINDER_NOTIFIER"); v != "" {
		c.Alerts.NotifierCommand = v
	}
	if v := os.Getenv("HABITREMINDER_SOURCE_CMD"); v != "" {
		c.Source.Command = v
	}
	if v := os.Getenv("HABITREMINDER_REPLAY"); v != "" {
		c.Source.Replay = v
	}
	if v := os.Getenv("HABITREMINDER_TICK_HZ"); v != "" {
		if hz, err := strconv.Atoi(v); err == nil {
			c.TickHz = hz
		}
	}
}

// Validate checks the config for validity.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Habit blocks must address built-in habits
	known := make(map[string]bool)
	for _, cfg := range habit.Defaults() {
		known[string(cfg.ID)] = true
	}
	for id := range c.Habits {
		if !known[id] {
			return fmt.Errorf("invalid config: unknown habit %q", id)
		}
	}

	if c.Source.Command != "" && c.Source.Replay != "" {
		return fmt.Errorf("invalid config: source command and replay are mutually exclusive")
	}

	return nil
}

// HabitConfigs merges the file's overrides onto the built-in habit set.
func (c *Config) HabitConfigs() []habit.Config {
	cfgs := habit.Defaults()
	for i := range cfgs {
		if ov, ok := c.Habits[string(cfgs[i].ID)]; ok {
			applyOverride(&cfgs[i], ov)
		}
	}
	return cfgs
}

// TickInterval converts the configured rate into the tick period.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickHz)
}

func applyOverride(cfg *habit.Config, ov HabitOverride) {
	if ov.Enabled != nil {
		cfg.Enabled = *ov.Enabled
	}
	if ov.Threshold != nil {
		cfg.Threshold = *ov.Threshold
	}
	if ov.DebounceFrames != nil {
		cfg.DebounceFrames = *ov.DebounceFrames
	}
	if ov.EventFrames != nil {
		cfg.EventFrames = *ov.EventFrames
	}
	if ov.WindowSeconds != nil {
		cfg.Window = time.Duration(*ov.WindowSeconds) * time.Second
	}
	if ov.MaxEvents != nil {
		cfg.MaxEvents = *ov.MaxEvents
	}
	if ov.MinEvents != nil {
		cfg.MinEvents = *ov.MinEvents
	}
	if ov.IntervalMinutes != nil {
		cfg.Interval = time.Duration(*ov.IntervalMinutes) * time.Minute
	}
	if ov.OvalRX != nil {
		cfg.OvalRX = *ov.OvalRX
	}
	if ov.OvalRY != nil {
		cfg.OvalRY = *ov.OvalRY
	}
	if ov.PostureWidth != nil {
		cfg.PostureWidth = *ov.PostureWidth
	}
	if ov.PostureTilt != nil {
		cfg.PostureTilt = *ov.PostureTilt
	}
	if ov.CooldownSeconds != nil {
		cfg.Cooldown = time.Duration(*ov.CooldownSeconds) * time.Second
	}
	if ov.Severity != nil {
		cfg.Severity = habit.Severity(*ov.Severity)
	}
	if ov.Message != nil {
		cfg.Message = *ov.Message
	}
}
