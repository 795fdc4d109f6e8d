package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/dockbridge/internal/launcher"
)

func runLaunch(args []string) int {
	fs := flag.NewFlagSet("launch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	common := addCommonFlags(fs)
	noFallback := fs.Bool("no-fallback", false, "Do not ask the session manager when spawning fails")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockbridge launch [options] [--] <command> [args...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start command detached. If it cannot be started directly, ask the")
		fmt.Fprintln(os.Stderr, "session manager over the D-Bus session bus to launch it.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Options:")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}

	cfg, err := common.load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := cfg.NewLogger(os.Stderr)

	opts := launcher.Options{
		Session: cfg.Session,
		Spawner: launcher.ExecSpawner{Display: cfg.Display, XAuthority: cfg.XAuthority},
		Logger:  logger,
	}
	if !*noFallback {
		bus := launcher.NewDBusSession()
		defer bus.Close()
		opts.Bus = bus
	}

	ctx, cancel := signalContext()
	defer cancel()

	if !launcher.New(opts).Launch(ctx, fs.Arg(0), fs.Args()[1:]) {
		return 1
	}
	return 0
}
