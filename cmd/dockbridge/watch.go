package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/1broseidon/dockbridge/internal/platform"
	"github.com/1broseidon/dockbridge/internal/windowbridge"
	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	addedColor   = color.New(color.FgGreen, color.Bold)
	removedColor = color.New(color.FgRed)
	activeColor  = color.New(color.FgCyan)
)

func runWatch(args []string) int {
	fs := newFlagSet("watch", "watch [options]")
	common := addCommonFlags(fs)
	fs.BoolVar(&common.noSeed, "no-seed", false, "Do not report windows that already exist")
	colorMode := fs.String("color", "auto", "Colorize output: auto, always or never")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	useColor, err := resolveColor(*colorMode, func() bool { return term.IsTerminal(int(os.Stdout.Fd())) })
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	color.NoColor = !useColor

	s, err := openSession(common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()

	printer := &eventPrinter{out: os.Stdout, bridge: s.bridge}
	unsubscribe := s.bridge.Subscribe(windowbridge.Handlers{
		WindowAdded:   printer.added,
		WindowRemoved: printer.removed,
		ActiveChanged: printer.active,
	})
	defer unsubscribe()

	s.logger.Info("watching windows", "display", s.cfg.Display, "reconcile_interval", s.cfg.Watch.ReconcileInterval)
	if err := s.bridge.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// resolveColor decides whether to colorize; auto colors only terminals.
func resolveColor(mode string, isTerminal func() bool) (bool, error) {
	switch mode {
	case "auto", "":
		return isTerminal(), nil
	case "always":
		return true, nil
	case "never":
		return false, nil
	default:
		return false, fmt.Errorf("invalid color mode %q (want auto, always or never)", mode)
	}
}

// eventPrinter writes one line per window event.
type eventPrinter struct {
	mu     sync.Mutex
	out    io.Writer
	bridge *windowbridge.Bridge
}

func (p *eventPrinter) added(id platform.WindowID) {
	line := fmt.Sprintf("0x%08x", uint64(id))
	if info, err := p.bridge.QueryInfo(id); err == nil {
		line = fmt.Sprintf("%s  %-20s %s", line, info.ClassID, info.VisibleName)
	}
	p.print(addedColor, "+ ", line)
}

func (p *eventPrinter) removed(id platform.WindowID) {
	p.print(removedColor, "- ", fmt.Sprintf("0x%08x", uint64(id)))
}

func (p *eventPrinter) active(id platform.WindowID) {
	line := fmt.Sprintf("0x%08x", uint64(id))
	if class := p.bridge.QueryClass(id); class != "" {
		line += "  " + class
	}
	p.print(activeColor, "* ", line)
}

func (p *eventPrinter) print(c *color.Color, marker, line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c.Fprint(p.out, marker)
	fmt.Fprintln(p.out, line)
}
