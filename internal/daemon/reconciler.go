package daemon

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/dockbridge/internal/platform"
)

// WindowLister returns the current client windows in mapping order.
type WindowLister func() ([]platform.WindowID, error)

// Sink receives the differences found by a reconciliation pass.
type Sink interface {
	WindowAdded(id platform.WindowID)
	WindowRemoved(id platform.WindowID)
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler tracks the set of known client windows and reports windows
// that appeared or vanished since the last pass.
type Reconciler struct {
	interval    time.Duration
	listWindows WindowLister
	sink        Sink
	logger      *slog.Logger

	// passMu keeps a whole pass, sink calls included, from interleaving
	// with another.
	passMu sync.Mutex
	mu     sync.Mutex
	known  map[platform.WindowID]struct{}
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, listWindows WindowLister, sink Sink) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:    interval,
		listWindows: listWindows,
		sink:        sink,
		logger:      logger,
		known:       make(map[platform.WindowID]struct{}),
	}
}

// Prime records the current client list as known without reporting it and
// returns the recorded windows in client-list order.
func (r *Reconciler) Prime() ([]platform.WindowID, error) {
	r.passMu.Lock()
	defer r.passMu.Unlock()

	windows, err := r.listWindows()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.known = make(map[platform.WindowID]struct{}, len(windows))
	primed := make([]platform.WindowID, 0, len(windows))
	for _, id := range windows {
		if _, dup := r.known[id]; dup {
			continue
		}
		r.known[id] = struct{}{}
		primed = append(primed, id)
	}
	return primed, nil
}

// Run starts the periodic reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Debug("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}

func (r *Reconciler) reconcile() {
	r.passMu.Lock()
	defer r.passMu.Unlock()

	// A misbehaving sink must not take the watcher down.
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	windows, err := r.listWindows()
	if err != nil {
		r.logger.Warn("reconciler: failed to list windows", "error", err)
		return
	}

	added, removed := r.diff(windows)
	for _, id := range removed {
		r.logger.Debug("reconciler: window removed", "window_id", uint64(id))
		r.sink.WindowRemoved(id)
	}
	for _, id := range added {
		r.logger.Debug("reconciler: window added", "window_id", uint64(id))
		r.sink.WindowAdded(id)
	}
}

// diff swaps in the new client set and returns what changed. Added windows
// keep client-list order; removed windows are sorted by id for stable output.
func (r *Reconciler) diff(windows []platform.WindowID) (added, removed []platform.WindowID) {
	next := make(map[platform.WindowID]struct{}, len(windows))

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range windows {
		if _, dup := next[id]; dup {
			continue
		}
		next[id] = struct{}{}
		if _, ok := r.known[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range r.known {
		if _, ok := next[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })

	r.known = next
	return added, removed
}
