package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawAnimation struct {
	DurationMS *int `yaml:"duration_ms"`
	FrameMS    *int `yaml:"frame_ms"`
}

type RawHotkeys struct {
	Iconify *string `yaml:"iconify"`
	Close   *string `yaml:"close"`
}

// RawConfig is one YAML file as written: unset fields stay nil so that
// includes and the including file can be layered.
type RawConfig struct {
	Include                  IncludeList      `yaml:"include"`
	LogLevel                 *string          `yaml:"log_level"`
	Display                  *string          `yaml:"display"`
	Compositing              *CompositingMode `yaml:"compositing"`
	UnredirectFullscreen     *bool            `yaml:"unredirect_fullscreen"`
	Animation                *RawAnimation    `yaml:"animation"`
	DecoratorClasses         []string         `yaml:"decorator_classes"`
	Hotkeys                  *RawHotkeys      `yaml:"hotkeys"`
	MetricsAddr              *string          `yaml:"metrics_addr"`
	ReconcileIntervalSeconds *int             `yaml:"reconcile_interval_seconds"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.Compositing != nil {
		out.Compositing = overlay.Compositing
	}
	if overlay.UnredirectFullscreen != nil {
		out.UnredirectFullscreen = overlay.UnredirectFullscreen
	}
	if overlay.Animation != nil {
		base := RawAnimation{}
		if out.Animation != nil {
			base = *out.Animation
		}
		merged := mergeRawAnimation(base, *overlay.Animation)
		out.Animation = &merged
	}
	if overlay.DecoratorClasses != nil {
		// Lists replace rather than append.
		out.DecoratorClasses = append([]string(nil), overlay.DecoratorClasses...)
	}
	if overlay.Hotkeys != nil {
		base := RawHotkeys{}
		if out.Hotkeys != nil {
			base = *out.Hotkeys
		}
		merged := mergeRawHotkeys(base, *overlay.Hotkeys)
		out.Hotkeys = &merged
	}
	if overlay.MetricsAddr != nil {
		out.MetricsAddr = overlay.MetricsAddr
	}
	if overlay.ReconcileIntervalSeconds != nil {
		out.ReconcileIntervalSeconds = overlay.ReconcileIntervalSeconds
	}
	return out
}

func mergeRawAnimation(base RawAnimation, overlay RawAnimation) RawAnimation {
	if overlay.DurationMS != nil {
		base.DurationMS = overlay.DurationMS
	}
	if overlay.FrameMS != nil {
		base.FrameMS = overlay.FrameMS
	}
	return base
}

func mergeRawHotkeys(base RawHotkeys, overlay RawHotkeys) RawHotkeys {
	if overlay.Iconify != nil {
		base.Iconify = overlay.Iconify
	}
	if overlay.Close != nil {
		base.Close = overlay.Close
	}
	return base
}
