// Package desktopfile maps windows to the desktop entries that launched them.
package desktopfile

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/hashicorp/go-multierror"
	"github.com/shirou/gopsutil/process"
)

// Environment variables launchers leave behind in the processes they start.
var launchHintVars = []string{"GIO_LAUNCHED_DESKTOP_FILE", "BAMF_DESKTOP_FILE_HINT"}

// ProcessInspector reads details of a running process.
type ProcessInspector interface {
	Exe(pid int) (string, error)
	Environ(pid int) ([]string, error)
}

// Options configures a Resolver.
type Options struct {
	// ExtraDirs are searched after the XDG application dirs.
	ExtraDirs []string
	Inspector ProcessInspector
	Logger    *slog.Logger
}

// Resolver finds the desktop file for a window class or process.
type Resolver struct {
	dirs      []string
	inspector ProcessInspector
	logger    *slog.Logger

	mu      sync.Mutex
	entries []Entry
	byID    map[string]Entry
	loaded  bool
}

// NewResolver builds a resolver over the XDG application dirs.
func NewResolver(opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	inspector := opts.Inspector
	if inspector == nil {
		inspector = SystemProcesses{}
	}
	return &Resolver{
		dirs:      ApplicationDirs(opts.ExtraDirs),
		inspector: inspector,
		logger:    logger,
	}
}

// ApplicationDirs returns the directories searched for desktop files in
// priority order: $XDG_DATA_HOME, then each of $XDG_DATA_DIRS, then extra.
func ApplicationDirs(extra []string) []string {
	xdg.Reload()
	bases := append([]string{xdg.DataHome}, xdg.DataDirs...)

	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	for _, base := range bases {
		if base != "" {
			add(filepath.Join(base, "applications"))
		}
	}
	for _, dir := range extra {
		if strings.TrimSpace(dir) != "" {
			add(dir)
		}
	}
	return dirs
}

// Dirs returns the directories this resolver searches.
func (r *Resolver) Dirs() []string {
	return append([]string(nil), r.dirs...)
}

// Resolve returns the desktop file path for a window, or "" when nothing
// matches. Launch hints in the process environment win over class matches,
// which win over StartupWMClass, which wins over matching the executable.
func (r *Resolver) Resolve(class string, pid int, instance string) string {
	if path := r.fromLaunchHint(pid); path != "" {
		return path
	}

	entries, byID := r.index()
	candidates := classCandidates(class, instance)

	for _, cand := range candidates {
		if e, ok := byID[cand+".desktop"]; ok {
			return e.Path
		}
	}
	for _, cand := range candidates {
		suffix := "." + strings.ToLower(cand) + ".desktop"
		for _, e := range entries {
			if strings.HasSuffix(strings.ToLower(e.ID), suffix) {
				return e.Path
			}
		}
	}

	for _, e := range entries {
		if e.StartupWMClass == "" {
			continue
		}
		if strings.EqualFold(e.StartupWMClass, class) || (instance != "" && strings.EqualFold(e.StartupWMClass, instance)) {
			return e.Path
		}
	}

	if pid > 0 {
		exe, err := r.inspector.Exe(pid)
		if err != nil || exe == "" {
			r.logger.Debug("cannot read process executable", "pid", pid, "error", err)
			return ""
		}
		program := filepath.Base(exe)
		for _, e := range entries {
			if p := e.Program(); p != "" && p == program {
				return e.Path
			}
		}
	}
	return ""
}

func (r *Resolver) fromLaunchHint(pid int) string {
	if pid <= 0 {
		return ""
	}
	env, err := r.inspector.Environ(pid)
	if err != nil {
		r.logger.Debug("cannot read process environment", "pid", pid, "error", err)
		return ""
	}
	for _, name := range launchHintVars {
		for _, kv := range env {
			key, value, ok := strings.Cut(kv, "=")
			if !ok || key != name || value == "" {
				continue
			}
			if info, err := os.Stat(value); err == nil && !info.IsDir() {
				return value
			}
		}
	}
	return ""
}

func classCandidates(class, instance string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range []string{class, instance, strings.ToLower(class), strings.ToLower(instance)} {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func (r *Resolver) index() ([]Entry, map[string]Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return r.entries, r.byID
	}

	entries, err := scanDirs(r.dirs)
	if err != nil {
		r.logger.Warn("some desktop files could not be read", "error", err)
	}
	r.entries = entries
	r.byID = make(map[string]Entry, len(entries))
	for _, e := range entries {
		if _, exists := r.byID[e.ID]; !exists {
			r.byID[e.ID] = e
		}
	}
	r.loaded = true
	return r.entries, r.byID
}

// scanDirs reads every desktop file below dirs in priority order. Missing
// dirs are skipped; other failures are collected and returned alongside
// whatever could be read.
func scanDirs(dirs []string) ([]Entry, error) {
	var (
		entries []Entry
		errs    *multierror.Error
	)
	for _, dir := range dirs {
		found, err := scanDir(dir)
		if err != nil {
			errs = multierror.Append(errs, err)
		}
		entries = append(entries, found...)
	}
	return entries, errs.ErrorOrNil()
}

func scanDir(dir string) ([]Entry, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var (
		entries []Entry
		errs    *multierror.Error
	)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
			if d != nil && d.IsDir() && path != dir {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".desktop") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		entry, err := loadEntry(path)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
			return nil
		}
		entry.ID = strings.ReplaceAll(filepath.ToSlash(rel), "/", "-")
		entry.Path = path
		entries = append(entries, entry)
		return nil
	})
	if walkErr != nil {
		errs = multierror.Append(errs, walkErr)
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, errs.ErrorOrNil()
}

// SystemProcesses inspects processes of the local machine.
type SystemProcesses struct{}

// Exe returns the executable path of pid.
func (SystemProcesses) Exe(pid int) (string, error) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", err
	}
	exe, err := proc.Exe()
	if err != nil || exe == "" {
		// Fall back to argv[0] for processes whose exe link is unreadable.
		args, argErr := proc.CmdlineSlice()
		if argErr != nil || len(args) == 0 {
			if err == nil {
				err = argErr
			}
			return "", err
		}
		return args[0], nil
	}
	return exe, nil
}

// Environ returns the environment pid was started with.
func (SystemProcesses) Environ(pid int) ([]string, error) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, err
	}
	return proc.Environ()
}
