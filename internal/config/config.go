package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DockStyle selects how the dock is drawn. Round docks float away from the
// screen edge by the configured edge margins when a compositor is running.
type DockStyle string

const (
	DockStyleEfficient DockStyle = "efficient"
	DockStyleRound     DockStyle = "round"
)

const (
	DefaultSessionService   = "com.lingmo.Session"
	DefaultSessionPath      = "/Session"
	DefaultSessionInterface = "com.lingmo.Session"
	DefaultSessionMethod    = "launch"

	DefaultReconcileInterval = 10 * time.Second
)

// Dock holds the settings that influence strut reservation.
type Dock struct {
	Direction   string    `yaml:"direction"`
	Style       DockStyle `yaml:"style"`
	EdgeMargins int       `yaml:"edge_margins"`
}

// Session names the session-manager D-Bus service used as the launch fallback.
type Session struct {
	Service   string `yaml:"service"`
	Path      string `yaml:"path"`
	Interface string `yaml:"interface"`
	Method    string `yaml:"method"`
}

// Watch configures window tracking.
type Watch struct {
	// ReconcileInterval is how often the client list is re-read to catch
	// notifications the window manager never sent.
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
	// SeedExisting replays already-mapped windows as additions on start.
	SeedExisting bool `yaml:"seed_existing"`
}

// MarshalYAML writes the interval in time.Duration notation so the output
// loads back.
func (w Watch) MarshalYAML() (interface{}, error) {
	return struct {
		ReconcileInterval string `yaml:"reconcile_interval"`
		SeedExisting      bool   `yaml:"seed_existing"`
	}{w.ReconcileInterval.String(), w.SeedExisting}, nil
}

// DesktopFiles configures desktop-entry lookup.
type DesktopFiles struct {
	ExtraDirs []string `yaml:"extra_dirs,omitempty"`
}

// Config holds the application configuration.
type Config struct {
	Display      string       `yaml:"display,omitempty"`
	XAuthority   string       `yaml:"xauthority,omitempty"`
	LogLevel     string       `yaml:"log_level"`
	Dock         Dock         `yaml:"dock"`
	Session      Session      `yaml:"session"`
	Watch        Watch        `yaml:"watch"`
	DesktopFiles DesktopFiles `yaml:"desktop_files,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Dock: Dock{
			Direction:   "bottom",
			Style:       DockStyleRound,
			EdgeMargins: 10,
		},
		Session: Session{
			Service:   DefaultSessionService,
			Path:      DefaultSessionPath,
			Interface: DefaultSessionInterface,
			Method:    DefaultSessionMethod,
		},
		Watch: Watch{
			ReconcileInterval: DefaultReconcileInterval,
			SeedExisting:      true,
		},
	}
}

// Save writes the configuration to the default config path.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration as YAML to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}

	switch strings.ToLower(c.Dock.Direction) {
	case "left", "bottom", "right", "top":
	default:
		return &ValidationError{Path: "dock.direction", Err: fmt.Errorf("direction must be one of: left, bottom, right, top")}
	}
	switch c.Dock.Style {
	case DockStyleEfficient, DockStyleRound:
	default:
		return &ValidationError{Path: "dock.style", Err: fmt.Errorf("style must be one of: efficient, round")}
	}
	if c.Dock.EdgeMargins < 0 {
		return &ValidationError{Path: "dock.edge_margins", Err: fmt.Errorf("edge_margins must be >= 0")}
	}

	if strings.TrimSpace(c.Session.Service) == "" {
		return &ValidationError{Path: "session.service", Err: fmt.Errorf("service is required")}
	}
	if !strings.HasPrefix(c.Session.Path, "/") {
		return &ValidationError{Path: "session.path", Err: fmt.Errorf("path must be an absolute object path")}
	}
	if strings.TrimSpace(c.Session.Interface) == "" {
		return &ValidationError{Path: "session.interface", Err: fmt.Errorf("interface is required")}
	}
	if strings.TrimSpace(c.Session.Method) == "" {
		return &ValidationError{Path: "session.method", Err: fmt.Errorf("method is required")}
	}

	if c.Watch.ReconcileInterval < 0 {
		return &ValidationError{Path: "watch.reconcile_interval", Err: fmt.Errorf("reconcile_interval must be >= 0")}
	}

	for i, dir := range c.DesktopFiles.ExtraDirs {
		if strings.TrimSpace(dir) == "" {
			return &ValidationError{Path: "desktop_files.extra_dirs", Err: fmt.Errorf("entry %d is empty", i)}
		}
	}

	return nil
}

// EdgeMarginsFor returns the margin a strut grows by for the current style.
// Only round docks on a compositing screen float off the edge.
func (d Dock) EdgeMarginsFor(compositing bool) int {
	if compositing && d.Style == DockStyleRound {
		return d.EdgeMargins
	}
	return 0
}
