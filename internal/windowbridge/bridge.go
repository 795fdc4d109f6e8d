// Package windowbridge exposes window introspection and decoration to the
// dock: which windows belong in it, what they are called, and how the dock
// reserves its screen edge.
package windowbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/dockbridge/internal/config"
	"github.com/1broseidon/dockbridge/internal/daemon"
	"github.com/1broseidon/dockbridge/internal/platform"
)

// DesktopResolver maps a window's class and process to a .desktop file path.
type DesktopResolver interface {
	Resolve(class string, pid int, instance string) string
}

// Options configures a Bridge.
type Options struct {
	Dock              config.Dock
	Resolver          DesktopResolver
	Logger            *slog.Logger
	ReconcileInterval time.Duration
	// SeedExisting makes Run report the windows already mapped when it
	// starts, taken from the same list the reconciler is primed with.
	SeedExisting bool
}

// Handlers receives window notifications. Nil funcs are skipped.
type Handlers struct {
	WindowAdded   func(id platform.WindowID)
	WindowRemoved func(id platform.WindowID)
	ActiveChanged func(id platform.WindowID)
}

// Bridge is the dock's view of the window system.
type Bridge struct {
	backend  platform.Backend
	dock     config.Dock
	resolver DesktopResolver
	logger   *slog.Logger
	interval time.Duration
	seed     bool

	mu       sync.Mutex
	nextID   int
	handlers map[int]Handlers

	// dispatchMu serialises handler calls between the event loop and the
	// periodic reconciler.
	dispatchMu sync.Mutex
}

// New builds a bridge over backend.
func New(backend platform.Backend, opts Options) *Bridge {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := opts.ReconcileInterval
	if interval <= 0 {
		interval = config.DefaultReconcileInterval
	}
	return &Bridge{
		backend:  backend,
		dock:     opts.Dock,
		resolver: opts.Resolver,
		logger:   logger,
		interval: interval,
		seed:     opts.SeedExisting,
		handlers: make(map[int]Handlers),
	}
}

// Subscribe registers h and returns a func that removes it again.
func (b *Bridge) Subscribe(h Handlers) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

// Run follows the backend's notifications until ctx ends or the backend
// stops watching. Client-list changes are diffed into added and removed
// windows; added windows only reach subscribers when IsAcceptable. With
// SeedExisting set, windows present at startup are reported first.
func (b *Bridge) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := b.backend.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch windows: %w", err)
	}

	rec := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: b.interval,
		Logger:   b.logger,
	}, b.backend.Windows, bridgeSink{b})
	primed, err := rec.Prime()
	if err != nil {
		b.logger.Warn("failed to read initial client list", "error", err)
	} else if b.seed {
		b.seedWindows(primed)
	}
	go rec.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			b.handleEvent(ev, rec)
		}
	}
}

func (b *Bridge) handleEvent(ev platform.Event, rec *daemon.Reconciler) {
	switch ev.Kind {
	case platform.EventClientListChanged:
		rec.ReconcileNow()
	case platform.EventWindowAdded:
		b.windowAdded(ev.Window)
	case platform.EventWindowRemoved:
		b.windowRemoved(ev.Window)
	case platform.EventActiveWindowChanged:
		b.dispatch(func(h Handlers) {
			if h.ActiveChanged != nil {
				h.ActiveChanged(ev.Window)
			}
		})
	default:
		b.logger.Debug("ignoring window event", "kind", ev.Kind.String())
	}
}

// EnumerateExisting runs every window already in the client list through the
// added path, filtering included.
func (b *Bridge) EnumerateExisting() error {
	windows, err := b.backend.Windows()
	if err != nil {
		return fmt.Errorf("list windows: %w", err)
	}
	b.seedWindows(windows)
	return nil
}

func (b *Bridge) seedWindows(windows []platform.WindowID) {
	for _, id := range windows {
		b.windowAdded(id)
	}
}

func (b *Bridge) windowAdded(id platform.WindowID) {
	if !b.IsAcceptable(id) {
		b.logger.Debug("window filtered", "window_id", uint64(id))
		return
	}
	b.dispatch(func(h Handlers) {
		if h.WindowAdded != nil {
			h.WindowAdded(id)
		}
	})
}

func (b *Bridge) windowRemoved(id platform.WindowID) {
	b.dispatch(func(h Handlers) {
		if h.WindowRemoved != nil {
			h.WindowRemoved(id)
		}
	})
}

// dispatch calls fn for each subscriber in subscription order.
func (b *Bridge) dispatch(fn func(Handlers)) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	snapshot := make([]Handlers, 0, len(ids))
	for _, id := range ids {
		snapshot = append(snapshot, b.handlers[id])
	}
	b.mu.Unlock()

	b.dispatchMu.Lock()
	defer b.dispatchMu.Unlock()
	for _, h := range snapshot {
		fn(h)
	}
}

type bridgeSink struct{ b *Bridge }

func (s bridgeSink) WindowAdded(id platform.WindowID)   { s.b.windowAdded(id) }
func (s bridgeSink) WindowRemoved(id platform.WindowID) { s.b.windowRemoved(id) }

// ActiveWindow returns the focused window, or 0 when it cannot be read.
func (b *Bridge) ActiveWindow() platform.WindowID {
	id, err := b.backend.ActiveWindow()
	if err != nil {
		return 0
	}
	return id
}

// Minimize iconifies id.
func (b *Bridge) Minimize(id platform.WindowID) error {
	return b.backend.Minimize(id)
}

// ForceActivate raises and focuses id even if focus stealing prevention
// would refuse a normal request.
func (b *Bridge) ForceActivate(id platform.WindowID) error {
	return b.backend.ForceActivate(id)
}

// Close asks the window manager to close id. Without a display connection
// this does nothing.
func (b *Bridge) Close(id platform.WindowID) error {
	if err := b.backend.Close(id); err != nil && !errors.Is(err, platform.ErrNoConnection) {
		return err
	}
	return nil
}

// SetIconGeometry tells the window manager where id minimizes to. Without a
// display connection this does nothing.
func (b *Bridge) SetIconGeometry(id platform.WindowID, rect platform.Rect) error {
	if err := b.backend.SetIconGeometry(id, rect); err != nil && !errors.Is(err, platform.ErrNoConnection) {
		return err
	}
	return nil
}

// EnableBlurBehind asks the compositor to blur behind region of id. An empty
// region covers the whole window.
func (b *Bridge) EnableBlurBehind(id platform.WindowID, enable bool, region []platform.Rect) error {
	return b.backend.SetBlurBehind(id, enable, region)
}

// CompositingActive reports whether a compositing manager is running.
func (b *Bridge) CompositingActive() bool {
	return b.backend.CompositingActive()
}
