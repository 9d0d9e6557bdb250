// Package config loads the standalone host configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/audioversary/vstmommy/pkg/framework/debug"
	"github.com/audioversary/vstmommy/pkg/vstmommy"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Environment variables that override file values.
const (
	EnvSampleRate = "VSTMOMMY_SAMPLE_RATE"
	EnvPeriodMs   = "VSTMOMMY_PERIOD_MS"
	EnvLogLevel   = "VSTMOMMY_LOG_LEVEL"
	EnvLogFile    = "VSTMOMMY_LOG_FILE"
	EnvDisplay    = "VSTMOMMY_DISPLAY"
	EnvStateFile  = "VSTMOMMY_STATE_FILE"
)

type Config struct {
	Host    HostConfig    `yaml:"host"`
	Meter   MeterConfig   `yaml:"meter"`
	Display DisplayConfig `yaml:"display"`
	Logging LoggingConfig `yaml:"logging"`
	State   StateConfig   `yaml:"state"`
}

type HostConfig struct {
	SampleRate int `yaml:"sample_rate"`
	PeriodMs   int `yaml:"period_ms"`
}

type MeterConfig struct {
	PeakDecayMs           int     `yaml:"peak_decay_ms"`
	PeakHoldMs            int     `yaml:"peak_hold_ms"`
	LoudnessThresholdLUFS float64 `yaml:"loudness_threshold_lufs"`
	HistoryLen            int     `yaml:"history_len"`
}

// DisplayConfig controls the terminal meter. A nil Enabled leaves the
// choice to the saved editor state.
type DisplayConfig struct {
	Enabled   *bool `yaml:"enabled"`
	RefreshMs int   `yaml:"refresh_ms"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// StateConfig names the file parameters and editor state are restored
// from at startup and saved to on exit. Empty disables persistence.
type StateConfig struct {
	File string `yaml:"file"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	meter := vstmommy.DefaultConfig()
	return &Config{
		Host: HostConfig{
			SampleRate: 48000,
			PeriodMs:   10,
		},
		Meter: MeterConfig{
			PeakDecayMs:           int(meter.PeakDecay / time.Millisecond),
			PeakHoldMs:            int(meter.PeakHold / time.Millisecond),
			LoudnessThresholdLUFS: meter.LoudnessThreshold,
			HistoryLen:            meter.HistoryLen,
		},
		Display: DisplayConfig{
			RefreshMs: 50,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadDotEnv reads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads path on top of the defaults, applies environment overrides
// and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the variables lookup reports as set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSampleRate); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvSampleRate, err)
		}
		c.Host.SampleRate = n
	}
	if v, ok := lookup(EnvPeriodMs); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvPeriodMs, err)
		}
		c.Host.PeriodMs = n
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		c.Logging.File = v
	}
	if v, ok := lookup(EnvStateFile); ok {
		c.State.File = v
	}
	if v, ok := lookup(EnvDisplay); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvDisplay, err)
		}
		c.Display.Enabled = &b
	}
	return nil
}

// Validate checks ranges and the log level.
func (c *Config) Validate() error {
	switch {
	case c.Host.SampleRate < 8000 || c.Host.SampleRate > 384000:
		return fmt.Errorf("%w: host.sample_rate %d out of range [8000, 384000]", ErrInvalid, c.Host.SampleRate)
	case c.Host.PeriodMs <= 0 || c.Host.PeriodMs > 1000:
		return fmt.Errorf("%w: host.period_ms %d out of range (0, 1000]", ErrInvalid, c.Host.PeriodMs)
	case c.Meter.PeakDecayMs < vstmommy.MinPeakDecayMs || c.Meter.PeakDecayMs > vstmommy.MaxPeakDecayMs:
		return fmt.Errorf("%w: meter.peak_decay_ms %d out of range [%d, %d]", ErrInvalid,
			c.Meter.PeakDecayMs, vstmommy.MinPeakDecayMs, vstmommy.MaxPeakDecayMs)
	case c.Meter.PeakHoldMs < vstmommy.MinPeakHoldMs || c.Meter.PeakHoldMs > vstmommy.MaxPeakHoldMs:
		return fmt.Errorf("%w: meter.peak_hold_ms %d out of range [%d, %d]", ErrInvalid,
			c.Meter.PeakHoldMs, vstmommy.MinPeakHoldMs, vstmommy.MaxPeakHoldMs)
	case !(c.Meter.LoudnessThresholdLUFS >= vstmommy.MinTargetLUFS && c.Meter.LoudnessThresholdLUFS <= vstmommy.MaxTargetLUFS):
		return fmt.Errorf("%w: meter.loudness_threshold_lufs %g out of range [%d, %d]", ErrInvalid,
			c.Meter.LoudnessThresholdLUFS, vstmommy.MinTargetLUFS, vstmommy.MaxTargetLUFS)
	case c.Meter.HistoryLen < 1:
		return fmt.Errorf("%w: meter.history_len must be at least 1", ErrInvalid)
	case !c.Display.Disabled() && c.Display.RefreshMs <= 0:
		return fmt.Errorf("%w: display.refresh_ms must be positive", ErrInvalid)
	}
	if _, err := debug.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalid, err)
	}
	return nil
}

// Period returns the device period.
func (h HostConfig) Period() time.Duration {
	return time.Duration(h.PeriodMs) * time.Millisecond
}

// PeriodFrames returns the number of frames in one device period.
func (h HostConfig) PeriodFrames() int {
	return h.SampleRate * h.PeriodMs / 1000
}

// Disabled reports whether the display was explicitly turned off.
func (d DisplayConfig) Disabled() bool {
	return d.Enabled != nil && !*d.Enabled
}

// ShouldOpen decides whether the editor starts open. An explicit setting
// wins over the restored editor state.
func (d DisplayConfig) ShouldOpen(restored bool) bool {
	if d.Enabled != nil {
		return *d.Enabled
	}
	return restored
}

// RefreshInterval returns the editor refresh period.
func (d DisplayConfig) RefreshInterval() time.Duration {
	return time.Duration(d.RefreshMs) * time.Millisecond
}

// PluginConfig converts the meter section into plugin settings.
func (m MeterConfig) PluginConfig() vstmommy.Config {
	return vstmommy.Config{
		PeakDecay:         time.Duration(m.PeakDecayMs) * time.Millisecond,
		PeakHold:          time.Duration(m.PeakHoldMs) * time.Millisecond,
		LoudnessThreshold: m.LoudnessThresholdLUFS,
		HistoryLen:        m.HistoryLen,
	}
}
