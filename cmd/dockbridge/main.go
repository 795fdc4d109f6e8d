package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/1broseidon/dockbridge/internal/config"
	"github.com/1broseidon/dockbridge/internal/desktopfile"
	"github.com/1broseidon/dockbridge/internal/platform"
	"github.com/1broseidon/dockbridge/internal/windowbridge"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "launch":
		os.Exit(runLaunch(os.Args[2:]))
	case "watch":
		os.Exit(runWatch(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "active":
		os.Exit(runActive(os.Args[2:]))
	case "info":
		os.Exit(runInfo(os.Args[2:]))
	case "class":
		os.Exit(runClass(os.Args[2:]))
	case "acceptable":
		os.Exit(runAcceptable(os.Args[2:]))
	case "minimize", "activate", "close":
		os.Exit(runWindowAction(os.Args[1], os.Args[2:]))
	case "struts":
		os.Exit(runStruts(os.Args[2:]))
	case "icon-geometry":
		os.Exit(runIconGeometry(os.Args[2:]))
	case "blur":
		os.Exit(runBlur(os.Args[2:]))
	case "desktop-file":
		os.Exit(runDesktopFile(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dockbridge <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  launch              Start an application (session manager fallback)")
	fmt.Fprintln(w, "  watch               Print window added/removed/active events")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  list                Print the windows that belong in the dock")
	fmt.Fprintln(w, "  active              Print the active window id")
	fmt.Fprintln(w, "  info                Print dock info for a window (JSON)")
	fmt.Fprintln(w, "  class               Print the WM_CLASS class of a window")
	fmt.Fprintln(w, "  acceptable          Report whether a window belongs in the dock")
	fmt.Fprintln(w, "  desktop-file        Print the .desktop file of a window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  minimize            Minimize a window")
	fmt.Fprintln(w, "  activate            Force-activate a window")
	fmt.Fprintln(w, "  close               Ask the window manager to close a window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  struts set          Reserve a screen edge for a dock window")
	fmt.Fprintln(w, "  struts clear        Release a dock window's reserved edge")
	fmt.Fprintln(w, "  struts get          Print a window's reserved edges")
	fmt.Fprintln(w, "  struts available    Print the work area other docks leave free")
	fmt.Fprintln(w, "  icon-geometry       Set a window's minimize target rectangle")
	fmt.Fprintln(w, "  blur                Enable or disable blur behind a window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config init         Write the default configuration")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Window ids accept decimal or 0x-prefixed hex.")
	fmt.Fprintln(w, "Run 'dockbridge <command> --help' for command-specific options.")
}

// commonFlags are accepted by every command that talks to the display.
type commonFlags struct {
	configPath string
	display    string
	// noSeed is only registered by watch.
	noSeed bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.configPath, "config", "", "Config file path (default: ~/.config/dockbridge/config.yaml)")
	fs.StringVar(&c.display, "display", "", "X display to use (default: config or $DISPLAY)")
	return c
}

func (c *commonFlags) load() (*config.Config, error) {
	var (
		res *config.LoadResult
		err error
	)
	if c.configPath == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(c.configPath)
	}
	if err != nil {
		return nil, err
	}
	cfg := res.Config
	if c.display != "" {
		cfg.Display = c.display
	}
	return cfg, nil
}

// session bundles what a display command needs.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend *platform.LinuxBackend
	bridge  *windowbridge.Bridge
}

func openSession(c *commonFlags) (*session, error) {
	cfg, err := c.load()
	if err != nil {
		return nil, err
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	if cfg.XAuthority != "" && os.Getenv("XAUTHORITY") == "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		return nil, err
	}

	resolver := desktopfile.NewResolver(desktopfile.Options{
		ExtraDirs: cfg.DesktopFiles.ExtraDirs,
		Logger:    logger,
	})
	bridge := windowbridge.New(backend, windowbridge.Options{
		Dock:              cfg.Dock,
		Resolver:          resolver,
		Logger:            logger,
		ReconcileInterval: cfg.Watch.ReconcileInterval,
		SeedExisting:      cfg.Watch.SeedExisting && !c.noSeed,
	})
	return &session{cfg: cfg, logger: logger, backend: backend, bridge: bridge}, nil
}

func (s *session) Close() {
	s.backend.Disconnect()
}

// signalContext returns a context cancelled on SIGINT, SIGTERM or SIGHUP.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// parseFlags parses args and maps the outcome to an exit code; ok is false
// when the caller should return code.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func parseWindowID(s string) (platform.WindowID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return platform.WindowID(v), nil
}

// parseRect parses "x,y,width,height".
func parseRect(s string) (platform.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return platform.Rect{}, fmt.Errorf("invalid rect %q (want x,y,width,height)", s)
	}
	var vals [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return platform.Rect{}, fmt.Errorf("invalid rect %q: %w", s, err)
		}
		vals[i] = v
	}
	if vals[2] < 0 || vals[3] < 0 {
		return platform.Rect{}, fmt.Errorf("invalid rect %q: negative size", s)
	}
	return platform.Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// rectList collects repeated -region flags.
type rectList []platform.Rect

func (r *rectList) String() string {
	parts := make([]string, 0, len(*r))
	for _, rect := range *r {
		parts = append(parts, fmt.Sprintf("%d,%d,%d,%d", rect.X, rect.Y, rect.Width, rect.Height))
	}
	return strings.Join(parts, " ")
}

func (r *rectList) Set(s string) error {
	rect, err := parseRect(s)
	if err != nil {
		return err
	}
	*r = append(*r, rect)
	return nil
}

// parseCompositing resolves "auto", "true" or "false"; auto asks the display.
func parseCompositing(s string, detect func() bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return detect(), nil
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid compositing %q (want auto, true or false)", s)
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceEnv:
		if src.Name != "" {
			return "env:" + src.Name
		}
		return "env"
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
