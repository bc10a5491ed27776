package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// CompositingMode controls when windows are redirected offscreen.
type CompositingMode string

const (
	// CompositingAuto unredirects a fullscreen topmost window when allowed.
	CompositingAuto CompositingMode = "auto"
	// CompositingAlways keeps every window redirected.
	CompositingAlways CompositingMode = "always"
)

// AnimationConfig tunes the transition driver. Durations apply to windows
// created after a reload.
type AnimationConfig struct {
	DurationMS int `yaml:"duration_ms"`
	FrameMS    int `yaml:"frame_ms"`
}

// HotkeysConfig binds compositor actions to key combinations in xgbutil
// keybind syntax (e.g. "Mod4-Shift-m"). An empty binding is disabled.
type HotkeysConfig struct {
	Iconify string `yaml:"iconify"`
	Close   string `yaml:"close"`
}

// Config is the effective daemon configuration.
type Config struct {
	LogLevel             string          `yaml:"log_level"`
	Display              string          `yaml:"display"`
	Compositing          CompositingMode `yaml:"compositing"`
	UnredirectFullscreen bool            `yaml:"unredirect_fullscreen"`
	Animation            AnimationConfig `yaml:"animation"`
	// DecoratorClasses lists WM_CLASS class names treated as decoration
	// chrome drawn on behalf of another window.
	DecoratorClasses         []string      `yaml:"decorator_classes"`
	Hotkeys                  HotkeysConfig `yaml:"hotkeys"`
	MetricsAddr              string        `yaml:"metrics_addr"`
	ReconcileIntervalSeconds int           `yaml:"reconcile_interval_seconds"`
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "compwm", "config.yaml"), nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:             "info",
		Compositing:          CompositingAuto,
		UnredirectFullscreen: true,
		Animation: AnimationConfig{
			DurationMS: 250,
			FrameMS:    16,
		},
		DecoratorClasses: []string{"compwm-decorator"},
		Hotkeys: HotkeysConfig{
			Iconify: "Mod4-Shift-m",
			Close:   "Mod4-Shift-q",
		},
		ReconcileIntervalSeconds: 10,
	}
}

// AnimationDuration is the length of one iconify/restore transition.
func (c *Config) AnimationDuration() time.Duration {
	return time.Duration(c.Animation.DurationMS) * time.Millisecond
}

// FrameInterval is the animation tick.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.Animation.FrameMS) * time.Millisecond
}

// ReconcileInterval is the period of the vanished-window sweep.
func (c *Config) ReconcileInterval() time.Duration {
	return time.Duration(c.ReconcileIntervalSeconds) * time.Second
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	switch c.Compositing {
	case CompositingAuto, CompositingAlways:
	default:
		return &ValidationError{Path: "compositing", Err: fmt.Errorf("compositing must be one of: auto, always")}
	}
	if c.Animation.DurationMS <= 0 {
		return &ValidationError{Path: "animation.duration_ms", Err: fmt.Errorf("duration_ms must be > 0")}
	}
	if c.Animation.FrameMS <= 0 {
		return &ValidationError{Path: "animation.frame_ms", Err: fmt.Errorf("frame_ms must be > 0")}
	}
	if c.Animation.FrameMS > c.Animation.DurationMS {
		return &ValidationError{Path: "animation.frame_ms", Err: fmt.Errorf("frame_ms must not exceed duration_ms")}
	}
	for i, class := range c.DecoratorClasses {
		if strings.TrimSpace(class) == "" {
			return &ValidationError{Path: "decorator_classes", Err: fmt.Errorf("entry %d is empty", i)}
		}
	}
	if c.ReconcileIntervalSeconds <= 0 {
		return &ValidationError{Path: "reconcile_interval_seconds", Err: fmt.Errorf("reconcile_interval_seconds must be > 0")}
	}
	if addr := strings.TrimSpace(c.MetricsAddr); addr != "" && !strings.Contains(addr, ":") {
		return &ValidationError{Path: "metrics_addr", Err: fmt.Errorf("metrics_addr must be host:port")}
	}
	return nil
}
