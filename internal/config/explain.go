package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	log_level
//	display
//	compositing
//	unredirect_fullscreen
//	animation.duration_ms
//	animation.frame_ms
//	decorator_classes
//	hotkeys.iconify
//	hotkeys.close
//	metrics_addr
//	reconcile_interval_seconds
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch strings.TrimSpace(path) {
	case "log_level":
		return cfg.LogLevel, nil
	case "display":
		return cfg.Display, nil
	case "compositing":
		return string(cfg.Compositing), nil
	case "unredirect_fullscreen":
		return cfg.UnredirectFullscreen, nil
	case "animation.duration_ms":
		return cfg.Animation.DurationMS, nil
	case "animation.frame_ms":
		return cfg.Animation.FrameMS, nil
	case "decorator_classes":
		return cfg.DecoratorClasses, nil
	case "hotkeys.iconify":
		return cfg.Hotkeys.Iconify, nil
	case "hotkeys.close":
		return cfg.Hotkeys.Close, nil
	case "metrics_addr":
		return cfg.MetricsAddr, nil
	case "reconcile_interval_seconds":
		return cfg.ReconcileIntervalSeconds, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
