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

type RawDock struct {
	Direction   *string    `yaml:"direction"`
	Style       *DockStyle `yaml:"style"`
	EdgeMargins *int       `yaml:"edge_margins"`
}

type RawSession struct {
	Service   *string `yaml:"service"`
	Path      *string `yaml:"path"`
	Interface *string `yaml:"interface"`
	Method    *string `yaml:"method"`
}

type RawWatch struct {
	ReconcileInterval *string `yaml:"reconcile_interval"`
	SeedExisting      *bool   `yaml:"seed_existing"`
}

type RawDesktopFiles struct {
	ExtraDirs []string `yaml:"extra_dirs"`
}

// RawConfig mirrors Config with every field optional so that files can be
// layered on top of each other and on top of the defaults.
type RawConfig struct {
	Include      IncludeList      `yaml:"include"`
	Display      *string          `yaml:"display"`
	XAuthority   *string          `yaml:"xauthority"`
	LogLevel     *string          `yaml:"log_level"`
	Dock         *RawDock         `yaml:"dock"`
	Session      *RawSession      `yaml:"session"`
	Watch        *RawWatch        `yaml:"watch"`
	DesktopFiles *RawDesktopFiles `yaml:"desktop_files"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil

	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.XAuthority != nil {
		out.XAuthority = overlay.XAuthority
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}

	if overlay.Dock != nil {
		merged := RawDock{}
		if out.Dock != nil {
			merged = *out.Dock
		}
		if overlay.Dock.Direction != nil {
			merged.Direction = overlay.Dock.Direction
		}
		if overlay.Dock.Style != nil {
			merged.Style = overlay.Dock.Style
		}
		if overlay.Dock.EdgeMargins != nil {
			merged.EdgeMargins = overlay.Dock.EdgeMargins
		}
		out.Dock = &merged
	}

	if overlay.Session != nil {
		merged := RawSession{}
		if out.Session != nil {
			merged = *out.Session
		}
		if overlay.Session.Service != nil {
			merged.Service = overlay.Session.Service
		}
		if overlay.Session.Path != nil {
			merged.Path = overlay.Session.Path
		}
		if overlay.Session.Interface != nil {
			merged.Interface = overlay.Session.Interface
		}
		if overlay.Session.Method != nil {
			merged.Method = overlay.Session.Method
		}
		out.Session = &merged
	}

	if overlay.Watch != nil {
		merged := RawWatch{}
		if out.Watch != nil {
			merged = *out.Watch
		}
		if overlay.Watch.ReconcileInterval != nil {
			merged.ReconcileInterval = overlay.Watch.ReconcileInterval
		}
		if overlay.Watch.SeedExisting != nil {
			merged.SeedExisting = overlay.Watch.SeedExisting
		}
		out.Watch = &merged
	}

	// Extra dirs accumulate across files; earlier files keep priority.
	if overlay.DesktopFiles != nil {
		merged := RawDesktopFiles{}
		if out.DesktopFiles != nil {
			merged.ExtraDirs = append(merged.ExtraDirs, out.DesktopFiles.ExtraDirs...)
		}
		merged.ExtraDirs = append(merged.ExtraDirs, overlay.DesktopFiles.ExtraDirs...)
		out.DesktopFiles = &merged
	}

	return out
}
