package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "dockbridge"

// envOverrides lists the settings that can be overridden from the
// environment, e.g. DOCKBRIDGE_DOCK_EDGE_MARGINS=4.
type envOverrides struct {
	Display           *string `split_words:"true"`
	Xauthority        *string
	LogLevel          *string `split_words:"true"`
	DockDirection     *string `split_words:"true"`
	DockStyle         *string `split_words:"true"`
	DockEdgeMargins   *int    `split_words:"true"`
	SessionService    *string `split_words:"true"`
	ReconcileInterval *string `split_words:"true"`
}

func rawFromEnv() (RawConfig, map[string]Source, error) {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return RawConfig{}, nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}

	raw := RawConfig{}
	sources := map[string]Source{}
	mark := func(path, name string) {
		sources[path] = Source{Kind: SourceEnv, Name: name}
	}

	if env.Display != nil {
		raw.Display = env.Display
		mark("display", "DOCKBRIDGE_DISPLAY")
	}
	if env.Xauthority != nil {
		raw.XAuthority = env.Xauthority
		mark("xauthority", "DOCKBRIDGE_XAUTHORITY")
	}
	if env.LogLevel != nil {
		raw.LogLevel = env.LogLevel
		mark("log_level", "DOCKBRIDGE_LOG_LEVEL")
	}
	if env.DockDirection != nil || env.DockStyle != nil || env.DockEdgeMargins != nil {
		raw.Dock = &RawDock{Direction: env.DockDirection, EdgeMargins: env.DockEdgeMargins}
		if env.DockStyle != nil {
			style := DockStyle(*env.DockStyle)
			raw.Dock.Style = &style
			mark("dock.style", "DOCKBRIDGE_DOCK_STYLE")
		}
		if env.DockDirection != nil {
			mark("dock.direction", "DOCKBRIDGE_DOCK_DIRECTION")
		}
		if env.DockEdgeMargins != nil {
			mark("dock.edge_margins", "DOCKBRIDGE_DOCK_EDGE_MARGINS")
		}
	}
	if env.SessionService != nil {
		raw.Session = &RawSession{Service: env.SessionService}
		mark("session.service", "DOCKBRIDGE_SESSION_SERVICE")
	}
	if env.ReconcileInterval != nil {
		raw.Watch = &RawWatch{ReconcileInterval: env.ReconcileInterval}
		mark("watch.reconcile_interval", "DOCKBRIDGE_RECONCILE_INTERVAL")
	}

	return raw, sources, nil
}
