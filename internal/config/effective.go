package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is makes every ValidationError match ErrInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// BuildEffectiveConfig layers raw over the defaults.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.Compositing != nil {
		cfg.Compositing = *raw.Compositing
	}
	if raw.UnredirectFullscreen != nil {
		cfg.UnredirectFullscreen = *raw.UnredirectFullscreen
	}
	if raw.Animation != nil {
		cfg.Animation.DurationMS = derefInt(raw.Animation.DurationMS, cfg.Animation.DurationMS)
		cfg.Animation.FrameMS = derefInt(raw.Animation.FrameMS, cfg.Animation.FrameMS)
	}
	if raw.DecoratorClasses != nil {
		cfg.DecoratorClasses = append([]string(nil), raw.DecoratorClasses...)
	}
	if raw.Hotkeys != nil {
		if raw.Hotkeys.Iconify != nil {
			cfg.Hotkeys.Iconify = *raw.Hotkeys.Iconify
		}
		if raw.Hotkeys.Close != nil {
			cfg.Hotkeys.Close = *raw.Hotkeys.Close
		}
	}
	if raw.MetricsAddr != nil {
		cfg.MetricsAddr = *raw.MetricsAddr
	}
	cfg.ReconcileIntervalSeconds = derefInt(raw.ReconcileIntervalSeconds, cfg.ReconcileIntervalSeconds)

	return cfg, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
