package config

import (
	"fmt"
	"strings"
	"time"
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
	if e.Source.Kind == SourceEnv && e.Source.Name != "" {
		return fmt.Sprintf("%s (from $%s): %v", e.Path, e.Source.Name, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = *raw.XAuthority
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
		if cfg.LogLevel == "warn" {
			cfg.LogLevel = "warning"
		}
	}

	if raw.Dock != nil {
		if raw.Dock.Direction != nil {
			cfg.Dock.Direction = strings.ToLower(strings.TrimSpace(*raw.Dock.Direction))
		}
		if raw.Dock.Style != nil {
			cfg.Dock.Style = DockStyle(strings.ToLower(strings.TrimSpace(string(*raw.Dock.Style))))
		}
		if raw.Dock.EdgeMargins != nil {
			cfg.Dock.EdgeMargins = *raw.Dock.EdgeMargins
		}
	}

	if raw.Session != nil {
		if raw.Session.Service != nil {
			cfg.Session.Service = strings.TrimSpace(*raw.Session.Service)
		}
		if raw.Session.Path != nil {
			cfg.Session.Path = strings.TrimSpace(*raw.Session.Path)
		}
		if raw.Session.Interface != nil {
			cfg.Session.Interface = strings.TrimSpace(*raw.Session.Interface)
		}
		if raw.Session.Method != nil {
			cfg.Session.Method = strings.TrimSpace(*raw.Session.Method)
		}
	}

	if raw.Watch != nil {
		if raw.Watch.ReconcileInterval != nil {
			d, err := time.ParseDuration(strings.TrimSpace(*raw.Watch.ReconcileInterval))
			if err != nil {
				return nil, &ValidationError{Path: "watch.reconcile_interval", Err: fmt.Errorf("invalid duration %q: %w", *raw.Watch.ReconcileInterval, err)}
			}
			cfg.Watch.ReconcileInterval = d
		}
		if raw.Watch.SeedExisting != nil {
			cfg.Watch.SeedExisting = *raw.Watch.SeedExisting
		}
	}

	if raw.DesktopFiles != nil {
		cfg.DesktopFiles.ExtraDirs = append([]string(nil), raw.DesktopFiles.ExtraDirs...)
	}

	return cfg, nil
}
