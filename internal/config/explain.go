package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	display
//	xauthority
//	log_level
//	dock.direction
//	dock.style
//	dock.edge_margins
//	session.service
//	session.path
//	session.interface
//	session.method
//	watch.reconcile_interval
//	watch.seed_existing
//	desktop_files.extra_dirs
//
// A section name alone (dock, session, watch, desktop_files) returns the
// whole section.
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
	parts := strings.Split(path, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	leaf := ""
	if len(parts) == 2 {
		leaf = parts[1]
	}

	switch parts[0] {
	case "display", "xauthority", "log_level":
		if leaf != "" {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[0] {
		case "display":
			return cfg.Display, nil
		case "xauthority":
			return cfg.XAuthority, nil
		default:
			return cfg.LogLevel, nil
		}
	case "dock":
		switch leaf {
		case "":
			return cfg.Dock, nil
		case "direction":
			return cfg.Dock.Direction, nil
		case "style":
			return cfg.Dock.Style, nil
		case "edge_margins":
			return cfg.Dock.EdgeMargins, nil
		}
	case "session":
		switch leaf {
		case "":
			return cfg.Session, nil
		case "service":
			return cfg.Session.Service, nil
		case "path":
			return cfg.Session.Path, nil
		case "interface":
			return cfg.Session.Interface, nil
		case "method":
			return cfg.Session.Method, nil
		}
	case "watch":
		switch leaf {
		case "":
			return cfg.Watch, nil
		case "reconcile_interval":
			return cfg.Watch.ReconcileInterval.String(), nil
		case "seed_existing":
			return cfg.Watch.SeedExisting, nil
		}
	case "desktop_files":
		switch leaf {
		case "", "extra_dirs":
			return cfg.DesktopFiles.ExtraDirs, nil
		}
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}
