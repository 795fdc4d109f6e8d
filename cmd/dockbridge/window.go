package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/dockbridge/internal/desktopfile"
	"github.com/1broseidon/dockbridge/internal/platform"
	"github.com/1broseidon/dockbridge/internal/windowbridge"
)

func newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockbridge "+usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Options:")
		fs.PrintDefaults()
	}
	return fs
}

// windowArg reads the single window id positional argument.
func windowArg(fs *flag.FlagSet) (platform.WindowID, bool) {
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one window id")
		fs.Usage()
		return 0, false
	}
	id, err := parseWindowID(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 0, false
	}
	return id, true
}

func runList(args []string) int {
	fs := newFlagSet("list", "list [options]")
	common := addCommonFlags(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	s, err := openSession(common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	unsubscribe := s.bridge.Subscribe(windowbridge.Handlers{
		WindowAdded: func(id platform.WindowID) {
			fmt.Printf("0x%08x  %s\n", uint64(id), s.bridge.QueryClass(id))
		},
	})
	defer unsubscribe()

	if err := s.bridge.EnumerateExisting(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runActive(args []string) int {
	fs := newFlagSet("active", "active [options]")
	common := addCommonFlags(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	s, err := openSession(common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	fmt.Printf("0x%x\n", uint64(s.bridge.ActiveWindow()))
	return 0
}

func runInfo(args []string) int {
	fs := newFlagSet("info", "info [options] <window-id>")
	common := addCommonFlags(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	id, ok := windowArg(fs)
	if !ok {
		return 2
	}

	s, err := openSession(common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	info, err := s.bridge.QueryInfo(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(info); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runClass(args []string) int {
	fs := newFlagSet("class", "class [options] <window-id>")
	common := addCommonFlags(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	id, ok := windowArg(fs)
	if !ok {
		return 2
	}

	s, err := openSession(common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	fmt.Println(s.bridge.QueryClass(id))
	return 0
}

func runAcceptable(args []string) int {
	fs := newFlagSet("acceptable", "acceptable [options] <window-id>")
	common := addCommonFlags(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	id, ok := windowArg(fs)
	if !ok {
		return 2
	}

	s, err := openSession(common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	fmt.Println(s.bridge.IsAcceptable(id))
	return 0
}

func runWindowAction(action string, args []string) int {
	fs := newFlagSet(action, action+" [options] <window-id>")
	common := addCommonFlags(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	id, ok := windowArg(fs)
	if !ok {
		return 2
	}

	s, err := openSession(common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	switch action {
	case "minimize":
		err = s.bridge.Minimize(id)
	case "activate":
		err = s.bridge.ForceActivate(id)
	case "close":
		err = s.bridge.Close(id)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s 0x%x: %v\n", action, uint64(id), err)
		return 1
	}
	return 0
}

func printStrutsUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  dockbridge struts set [--direction DIR] --rect x,y,w,h [--compositing auto|true|false] <window-id>")
	fmt.Fprintln(os.Stderr, "  dockbridge struts clear <window-id>")
	fmt.Fprintln(os.Stderr, "  dockbridge struts get <window-id>")
	fmt.Fprintln(os.Stderr, "  dockbridge struts available --rect x,y,w,h <window-id>")
}

func runStruts(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printStrutsUsage()
		return 2
	}

	switch args[0] {
	case "set":
		fs := newFlagSet("struts set", "struts set [options] <window-id>")
		common := addCommonFlags(fs)
		direction := fs.String("direction", "", "Dock edge: left, bottom, right or top (default: dock.direction)")
		rectFlag := fs.String("rect", "", "Dock geometry as x,y,width,height")
		compositing := fs.String("compositing", "auto", "Whether a compositor is running: auto, true or false")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		id, ok := windowArg(fs)
		if !ok {
			return 2
		}
		rect, err := parseRect(*rectFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}

		s, err := openSession(common)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer s.Close()

		dirName := *direction
		if dirName == "" {
			dirName = s.cfg.Dock.Direction
		}
		dir, err := platform.ParseDirection(dirName)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		composited, err := parseCompositing(*compositing, s.bridge.CompositingActive)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		if err := s.bridge.SetStruts(id, dir, rect, composited); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "available":
		fs := newFlagSet("struts available", "struts available --rect x,y,w,h [options] <window-id>")
		common := addCommonFlags(fs)
		rectFlag := fs.String("rect", "", "Dock geometry as x,y,width,height")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		id, ok := windowArg(fs)
		if !ok {
			return 2
		}
		rect, err := parseRect(*rectFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}

		s, err := openSession(common)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer s.Close()

		display, area, err := s.bridge.AvailableArea(id, rect)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("display: %s\n", display.Name)
		fmt.Printf("bounds:  %d,%d %dx%d\n", display.Bounds.X, display.Bounds.Y, display.Bounds.Width, display.Bounds.Height)
		fmt.Printf("free:    %d,%d %dx%d\n", area.X, area.Y, area.Width, area.Height)
		return 0

	case "clear", "get":
		fs := newFlagSet("struts "+args[0], "struts "+args[0]+" [options] <window-id>")
		common := addCommonFlags(fs)
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		id, ok := windowArg(fs)
		if !ok {
			return 2
		}

		s, err := openSession(common)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer s.Close()

		if args[0] == "clear" {
			if err := s.bridge.ClearStruts(id); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			return 0
		}

		strut, err := s.bridge.Struts(id)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		printStrut(strut)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown struts subcommand: %s\n\n", args[0])
		printStrutsUsage()
		return 2
	}
}

func printStrut(s platform.Strut) {
	edges := []struct {
		name string
		edge platform.StrutEdge
	}{
		{"left", s.Left},
		{"right", s.Right},
		{"top", s.Top},
		{"bottom", s.Bottom},
	}
	for _, e := range edges {
		fmt.Printf("%-7s width=%d start=%d end=%d\n", e.name+":", e.edge.Width, e.edge.Start, e.edge.End)
	}
}

func runIconGeometry(args []string) int {
	fs := newFlagSet("icon-geometry", "icon-geometry --rect x,y,w,h [options] <window-id>")
	common := addCommonFlags(fs)
	rectFlag := fs.String("rect", "", "Icon rectangle as x,y,width,height")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	id, ok := windowArg(fs)
	if !ok {
		return 2
	}
	rect, err := parseRect(*rectFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	s, err := openSession(common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	if err := s.bridge.SetIconGeometry(id, rect); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runBlur(args []string) int {
	fs := newFlagSet("blur", "blur [--disable] [--region x,y,w,h ...] [options] <window-id>")
	common := addCommonFlags(fs)
	disable := fs.Bool("disable", false, "Remove blur instead of enabling it")
	var regions rectList
	fs.Var(&regions, "region", "Blurred region as x,y,width,height (repeatable; default: whole window)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	id, ok := windowArg(fs)
	if !ok {
		return 2
	}

	s, err := openSession(common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	if err := s.bridge.EnableBlurBehind(id, !*disable, regions); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runDesktopFile(args []string) int {
	fs := newFlagSet("desktop-file", "desktop-file [options] <window-id>\n       dockbridge desktop-file --class CLASS [--instance NAME] [--pid PID]")
	common := addCommonFlags(fs)
	class := fs.String("class", "", "Resolve this WM_CLASS class without a window")
	instance := fs.String("instance", "", "WM_CLASS instance to resolve with --class")
	pid := fs.Int("pid", 0, "Process id to resolve with --class")
	listDirs := fs.Bool("list-dirs", false, "Print the directories searched for desktop files")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	if *listDirs {
		cfg, err := common.load()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		resolver := desktopfile.NewResolver(desktopfile.Options{
			ExtraDirs: cfg.DesktopFiles.ExtraDirs,
			Logger:    cfg.NewLogger(os.Stderr),
		})
		for _, dir := range resolver.Dirs() {
			fmt.Println(dir)
		}
		return 0
	}

	if *class != "" || *pid > 0 {
		if fs.NArg() != 0 {
			fmt.Fprintln(os.Stderr, "window id and --class/--pid are mutually exclusive")
			return 2
		}
		cfg, err := common.load()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		resolver := desktopfile.NewResolver(desktopfile.Options{
			ExtraDirs: cfg.DesktopFiles.ExtraDirs,
			Logger:    cfg.NewLogger(os.Stderr),
		})
		path := resolver.Resolve(*class, *pid, *instance)
		if path == "" {
			return 1
		}
		fmt.Println(path)
		return 0
	}

	id, ok := windowArg(fs)
	if !ok {
		return 2
	}
	s, err := openSession(common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	path := s.bridge.ResolveDesktopFile(id)
	if path == "" {
		return 1
	}
	fmt.Println(path)
	return 0
}
