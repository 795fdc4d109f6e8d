package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/dockbridge/internal/platform"
)

type recordingSink struct {
	mu      sync.Mutex
	added   []platform.WindowID
	removed []platform.WindowID
	panicOn platform.WindowID
}

func (s *recordingSink) WindowAdded(id platform.WindowID) {
	if id == s.panicOn {
		panic("sink exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.added = append(s.added, id)
}

func (s *recordingSink) WindowRemoved(id platform.WindowID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, id)
}

func (s *recordingSink) snapshot() (added, removed []platform.WindowID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]platform.WindowID(nil), s.added...), append([]platform.WindowID(nil), s.removed...)
}

type staticLister struct {
	mu      sync.Mutex
	windows []platform.WindowID
	err     error
}

func (l *staticLister) set(windows ...platform.WindowID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = windows
	l.err = nil
}

func (l *staticLister) list() ([]platform.WindowID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]platform.WindowID(nil), l.windows...), l.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReconciler_PrimeSuppressesExistingWindows(t *testing.T) {
	lister := &staticLister{}
	lister.set(1, 2, 3)
	sink := &recordingSink{}
	r := NewReconciler(ReconcilerConfig{Logger: quietLogger()}, lister.list, sink)

	primed, err := r.Prime()
	if err != nil {
		t.Fatalf("Prime: %v", err)
	}
	if want := []platform.WindowID{1, 2, 3}; !reflect.DeepEqual(primed, want) {
		t.Fatalf("primed = %v, want %v", primed, want)
	}
	r.ReconcileNow()

	added, removed := sink.snapshot()
	if len(added) != 0 || len(removed) != 0 {
		t.Fatalf("expected no changes after prime, got added=%v removed=%v", added, removed)
	}
}

func TestReconciler_PrimeDropsDuplicates(t *testing.T) {
	lister := &staticLister{}
	lister.set(4, 4, 2)
	r := NewReconciler(ReconcilerConfig{Logger: quietLogger()}, lister.list, &recordingSink{})

	primed, err := r.Prime()
	if err != nil {
		t.Fatalf("Prime: %v", err)
	}
	if want := []platform.WindowID{4, 2}; !reflect.DeepEqual(primed, want) {
		t.Fatalf("primed = %v, want %v", primed, want)
	}
}

func TestReconciler_ReportsAddedAndRemoved(t *testing.T) {
	lister := &staticLister{}
	lister.set(10, 20, 30)
	sink := &recordingSink{}
	r := NewReconciler(ReconcilerConfig{Logger: quietLogger()}, lister.list, sink)
	if _, err := r.Prime(); err != nil {
		t.Fatalf("Prime: %v", err)
	}

	lister.set(40, 20, 5, 40)
	r.ReconcileNow()

	added, removed := sink.snapshot()
	if want := []platform.WindowID{40, 5}; !reflect.DeepEqual(added, want) {
		t.Fatalf("added = %v, want %v", added, want)
	}
	if want := []platform.WindowID{10, 30}; !reflect.DeepEqual(removed, want) {
		t.Fatalf("removed = %v, want %v", removed, want)
	}
}

func TestReconciler_ListErrorKeepsKnownSet(t *testing.T) {
	lister := &staticLister{}
	lister.set(1)
	sink := &recordingSink{}
	r := NewReconciler(ReconcilerConfig{Logger: quietLogger()}, lister.list, sink)
	if _, err := r.Prime(); err != nil {
		t.Fatalf("Prime: %v", err)
	}

	lister.mu.Lock()
	lister.err = errors.New("connection lost")
	lister.mu.Unlock()
	r.ReconcileNow()

	added, removed := sink.snapshot()
	if len(added) != 0 || len(removed) != 0 {
		t.Fatalf("failed pass should report nothing")
	}

	// The known set survived, so the recovered list is not news.
	lister.set(1)
	r.ReconcileNow()
	added, removed = sink.snapshot()
	if len(added) != 0 || len(removed) != 0 {
		t.Fatalf("known set lost after failed pass: added=%v removed=%v", added, removed)
	}
}

func TestReconciler_RecoversSinkPanic(t *testing.T) {
	lister := &staticLister{}
	sink := &recordingSink{panicOn: 7}
	r := NewReconciler(ReconcilerConfig{Logger: quietLogger()}, lister.list, sink)

	lister.set(7)
	r.ReconcileNow()

	lister.set(7, 8)
	r.ReconcileNow()

	added, _ := sink.snapshot()
	if want := []platform.WindowID{8}; !reflect.DeepEqual(added, want) {
		t.Fatalf("added = %v, want %v", added, want)
	}
}

func TestReconciler_PrimeError(t *testing.T) {
	lister := &staticLister{err: errors.New("no display")}
	r := NewReconciler(ReconcilerConfig{Logger: quietLogger()}, lister.list, &recordingSink{})
	if _, err := r.Prime(); err == nil {
		t.Fatalf("expected Prime to surface lister error")
	}
}

func TestReconciler_RunStopsOnCancel(t *testing.T) {
	lister := &staticLister{}
	sink := &recordingSink{}
	r := NewReconciler(ReconcilerConfig{Interval: 5 * time.Millisecond, Logger: quietLogger()}, lister.list, sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	lister.set(99)
	deadline := time.After(2 * time.Second)
	for {
		added, _ := sink.snapshot()
		if len(added) == 1 && added[0] == 99 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("reconciler never reported window 99")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestNewReconciler_DefaultInterval(t *testing.T) {
	r := NewReconciler(ReconcilerConfig{}, (&staticLister{}).list, &recordingSink{})
	if r.interval != 10*time.Second {
		t.Fatalf("interval = %v, want 10s", r.interval)
	}
}

// blockingSink parks the first WindowAdded until released so a second pass
// can be started while the first is still dispatching.
type blockingSink struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	events  []string
	eventMu sync.Mutex
}

func (s *blockingSink) WindowAdded(id platform.WindowID) {
	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
	s.eventMu.Lock()
	s.events = append(s.events, "add")
	s.eventMu.Unlock()
}

func (s *blockingSink) WindowRemoved(id platform.WindowID) {
	s.eventMu.Lock()
	s.events = append(s.events, "remove")
	s.eventMu.Unlock()
}

func TestReconciler_PassesDoNotInterleave(t *testing.T) {
	lister := &staticLister{}
	sink := &blockingSink{entered: make(chan struct{}), release: make(chan struct{})}
	r := NewReconciler(ReconcilerConfig{Logger: quietLogger()}, lister.list, sink)

	lister.set(1)
	first := make(chan struct{})
	go func() {
		r.ReconcileNow()
		close(first)
	}()
	<-sink.entered

	lister.set()
	second := make(chan struct{})
	go func() {
		r.ReconcileNow()
		close(second)
	}()

	select {
	case <-second:
		t.Fatalf("second pass finished while the first was still dispatching")
	case <-time.After(20 * time.Millisecond):
	}
	close(sink.release)
	<-first
	<-second

	sink.eventMu.Lock()
	defer sink.eventMu.Unlock()
	if want := []string{"add", "remove"}; !reflect.DeepEqual(sink.events, want) {
		t.Fatalf("events = %v, want %v", sink.events, want)
	}
}
