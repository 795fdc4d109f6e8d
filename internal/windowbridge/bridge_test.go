package windowbridge

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/dockbridge/internal/config"
	"github.com/1broseidon/dockbridge/internal/platform"
)

func typed(types ...platform.WindowType) platform.WindowProperties {
	return platform.WindowProperties{Types: types}
}

func TestIsAcceptable(t *testing.T) {
	fb := newFakeBackend()
	fb.addWindow(10, typed(platform.WindowTypeNormal))
	fb.addWindow(11, typed(platform.WindowTypeDialog))
	fb.addWindow(12, typed(platform.WindowTypeDock))
	fb.addWindow(13, platform.WindowProperties{})

	tests := []struct {
		name  string
		props platform.WindowProperties
		want  bool
	}{
		{"untyped without owner", platform.WindowProperties{}, true},
		{"normal without owner", typed(platform.WindowTypeNormal), true},
		{"dock", typed(platform.WindowTypeDock), false},
		{"dock transient for dock", platform.WindowProperties{Types: []platform.WindowType{platform.WindowTypeDock}, TransientFor: 12}, false},
		{"desktop", typed(platform.WindowTypeDesktop), false},
		{"splash", typed(platform.WindowTypeSplash), false},
		{"toolbar", typed(platform.WindowTypeToolbar), false},
		{"menu", typed(platform.WindowTypeMenu), false},
		{"popup menu", typed(platform.WindowTypePopupMenu), false},
		{"notification", typed(platform.WindowTypeNotification), false},
		{"utility stays", typed(platform.WindowTypeUtility), true},
		{"primary type wins", typed(platform.WindowTypeNormal, platform.WindowTypeDock), true},
		{"skip taskbar", platform.WindowProperties{States: []string{platform.StateSkipTaskbar}}, false},
		{"skip pager", platform.WindowProperties{States: []string{platform.StateSkipPager}}, false},
		{"transient for normal", platform.WindowProperties{TransientFor: 10}, false},
		{"transient for dialog", platform.WindowProperties{TransientFor: 11}, false},
		{"transient for dock", platform.WindowProperties{TransientFor: 12}, true},
		{"transient for untyped", platform.WindowProperties{TransientFor: 13}, true},
		{"transient for vanished", platform.WindowProperties{TransientFor: 99}, true},
		{"transient for root", platform.WindowProperties{TransientFor: fakeRoot}, true},
		{"transient for self", platform.WindowProperties{TransientFor: 50}, true},
	}

	b := New(fb, Options{Logger: quietLogger()})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb.props[50] = tt.props
			if got := b.IsAcceptable(50); got != tt.want {
				t.Fatalf("IsAcceptable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAcceptable_InvalidWindow(t *testing.T) {
	b := New(newFakeBackend(), Options{Logger: quietLogger()})
	if b.IsAcceptable(404) {
		t.Fatalf("unreadable window should not be acceptable")
	}
}

func TestQueryInfo(t *testing.T) {
	fb := newFakeBackend()
	fb.addWindow(20, platform.WindowProperties{Class: "Firefox", Name: "Mozilla Firefox", VisibleName: "Mozilla Firefox (2)"})
	fb.addWindow(21, platform.WindowProperties{Class: "XTerm", Name: "xterm"})
	fb.active = 20
	b := New(fb, Options{Logger: quietLogger()})

	got, err := b.QueryInfo(20)
	if err != nil {
		t.Fatalf("QueryInfo: %v", err)
	}
	want := WindowInfo{IconName: "firefox", Active: true, VisibleName: "Mozilla Firefox (2)", ClassID: "Firefox"}
	if got != want {
		t.Fatalf("QueryInfo = %+v, want %+v", got, want)
	}

	got, err = b.QueryInfo(21)
	if err != nil {
		t.Fatalf("QueryInfo: %v", err)
	}
	if got.Active || got.VisibleName != "xterm" || got.IconName != "xterm" {
		t.Fatalf("QueryInfo(21) = %+v", got)
	}

	if _, err := b.QueryInfo(404); err == nil {
		t.Fatalf("expected error for missing window")
	}
	if b.QueryClass(404) != "" || b.QueryClass(21) != "XTerm" {
		t.Fatalf("QueryClass mismatch")
	}
}

func TestActiveWindow_ZeroWithoutConnection(t *testing.T) {
	fb := newFakeBackend()
	fb.noConn = true
	b := New(fb, Options{Logger: quietLogger()})
	if got := b.ActiveWindow(); got != 0 {
		t.Fatalf("ActiveWindow = %d, want 0", got)
	}
}

func TestCloseAndIconGeometry_NoConnectionIsNoop(t *testing.T) {
	fb := newFakeBackend()
	fb.noConn = true
	b := New(fb, Options{Logger: quietLogger()})

	if err := b.Close(30); err != nil {
		t.Fatalf("Close without connection = %v, want nil", err)
	}
	if err := b.SetIconGeometry(30, platform.Rect{Width: 48, Height: 48}); err != nil {
		t.Fatalf("SetIconGeometry without connection = %v, want nil", err)
	}
	if err := b.EnableBlurBehind(30, true, nil); err == nil {
		t.Fatalf("EnableBlurBehind without connection should fail")
	}
}

func TestCloseAndIconGeometry_Delegate(t *testing.T) {
	fb := newFakeBackend()
	b := New(fb, Options{Logger: quietLogger()})

	if err := b.Close(30); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !reflect.DeepEqual(fb.closed, []platform.WindowID{30}) {
		t.Fatalf("closed = %v", fb.closed)
	}
	geom := platform.Rect{X: 100, Y: 1000, Width: 48, Height: 48}
	if err := b.SetIconGeometry(30, geom); err != nil {
		t.Fatalf("SetIconGeometry: %v", err)
	}
	if fb.iconGeom[30] != geom {
		t.Fatalf("icon geometry = %+v", fb.iconGeom[30])
	}
	if err := b.EnableBlurBehind(30, true, nil); err != nil || !fb.blur[30] {
		t.Fatalf("EnableBlurBehind: err=%v blur=%v", err, fb.blur[30])
	}
}

type stubResolver struct {
	class, instance string
	pid             int
}

func (s *stubResolver) Resolve(class string, pid int, instance string) string {
	s.class, s.pid, s.instance = class, pid, instance
	return "/usr/share/applications/" + instance + ".desktop"
}

func TestResolveDesktopFile(t *testing.T) {
	fb := newFakeBackend()
	fb.addWindow(40, platform.WindowProperties{Class: "Code", Instance: "code", PID: 4242})
	res := &stubResolver{}
	b := New(fb, Options{Resolver: res, Logger: quietLogger()})

	if got := b.ResolveDesktopFile(40); got != "/usr/share/applications/code.desktop" {
		t.Fatalf("ResolveDesktopFile = %q", got)
	}
	if res.class != "Code" || res.pid != 4242 || res.instance != "code" {
		t.Fatalf("resolver saw %+v", res)
	}
	if got := b.ResolveDesktopFile(404); got != "" {
		t.Fatalf("missing window resolved to %q", got)
	}
	if got := New(fb, Options{Logger: quietLogger()}).ResolveDesktopFile(40); got != "" {
		t.Fatalf("nil resolver should resolve nothing, got %q", got)
	}
}

type recorder struct {
	mu      sync.Mutex
	added   []platform.WindowID
	removed []platform.WindowID
	active  []platform.WindowID
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		WindowAdded: func(id platform.WindowID) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.added = append(r.added, id)
		},
		WindowRemoved: func(id platform.WindowID) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.removed = append(r.removed, id)
		},
		ActiveChanged: func(id platform.WindowID) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.active = append(r.active, id)
		},
	}
}

func (r *recorder) wait(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		ok := cond()
		r.mu.Unlock()
		if ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t.Fatalf("condition not met in time: added=%v removed=%v active=%v", r.added, r.removed, r.active)
}

func TestEnumerateExisting_Filters(t *testing.T) {
	fb := newFakeBackend()
	fb.addWindow(10, typed(platform.WindowTypeNormal))
	fb.addWindow(11, typed(platform.WindowTypeDock))
	fb.addWindow(12, platform.WindowProperties{TransientFor: 10})
	fb.addWindow(13, platform.WindowProperties{})

	b := New(fb, Options{Logger: quietLogger()})
	rec := &recorder{}
	b.Subscribe(rec.handlers())

	if err := b.EnumerateExisting(); err != nil {
		t.Fatalf("EnumerateExisting: %v", err)
	}
	if want := []platform.WindowID{10, 13}; !reflect.DeepEqual(rec.added, want) {
		t.Fatalf("added = %v, want %v", rec.added, want)
	}
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	fb := newFakeBackend()
	fb.addWindow(10, platform.WindowProperties{})
	b := New(fb, Options{Logger: quietLogger()})

	first, second := &recorder{}, &recorder{}
	unsubscribe := b.Subscribe(first.handlers())
	b.Subscribe(second.handlers())
	unsubscribe()
	unsubscribe()

	if err := b.EnumerateExisting(); err != nil {
		t.Fatalf("EnumerateExisting: %v", err)
	}
	if len(first.added) != 0 || len(second.added) != 1 {
		t.Fatalf("first=%v second=%v", first.added, second.added)
	}
}

func TestRun_DispatchesFilteredEvents(t *testing.T) {
	fb := newFakeBackend()
	fb.addWindow(10, platform.WindowProperties{})

	b := New(fb, Options{Logger: quietLogger(), ReconcileInterval: time.Hour})
	rec := &recorder{}
	b.Subscribe(rec.handlers())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	// Events are only read once the client list is primed.
	fb.events <- platform.Event{Kind: platform.EventActiveWindowChanged, Window: 10}
	rec.wait(t, func() bool { return len(rec.active) == 1 })

	fb.addWindow(20, platform.WindowProperties{})
	fb.addWindow(21, typed(platform.WindowTypeDock))
	fb.events <- platform.Event{Kind: platform.EventClientListChanged}
	rec.wait(t, func() bool { return len(rec.added) == 1 && rec.added[0] == 20 })

	fb.removeWindow(10)
	fb.events <- platform.Event{Kind: platform.EventClientListChanged}
	rec.wait(t, func() bool { return len(rec.removed) == 1 && rec.removed[0] == 10 })

	fb.events <- platform.Event{Kind: platform.EventActiveWindowChanged, Window: 20}
	rec.wait(t, func() bool { return len(rec.active) == 2 && rec.active[1] == 20 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.added) != 1 {
		t.Fatalf("dock window leaked through the filter: %v", rec.added)
	}
}

func TestRun_SeedsWindowsPresentAtStart(t *testing.T) {
	fb := newFakeBackend()
	fb.addWindow(10, platform.WindowProperties{})
	fb.addWindow(11, typed(platform.WindowTypeDock))
	// Mapped between any earlier enumeration and Run.
	fb.addWindow(30, platform.WindowProperties{})

	b := New(fb, Options{Logger: quietLogger(), ReconcileInterval: time.Hour, SeedExisting: true})
	rec := &recorder{}
	b.Subscribe(rec.handlers())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	fb.events <- platform.Event{Kind: platform.EventActiveWindowChanged, Window: 10}
	rec.wait(t, func() bool { return len(rec.active) == 1 })

	fb.addWindow(40, platform.WindowProperties{})
	fb.events <- platform.Event{Kind: platform.EventClientListChanged}
	rec.wait(t, func() bool { return len(rec.added) == 3 })

	cancel()
	<-done

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if want := []platform.WindowID{10, 30, 40}; !reflect.DeepEqual(rec.added, want) {
		t.Fatalf("added = %v, want %v", rec.added, want)
	}
}

func TestRun_NoConnection(t *testing.T) {
	fb := newFakeBackend()
	fb.noConn = true
	b := New(fb, Options{Logger: quietLogger()})
	if err := b.Run(context.Background()); err == nil {
		t.Fatalf("expected Run to fail without a connection")
	}
}

func TestNew_Defaults(t *testing.T) {
	b := New(newFakeBackend(), Options{})
	if b.interval != config.DefaultReconcileInterval || b.logger == nil {
		t.Fatalf("defaults not applied: interval=%v logger=%v", b.interval, b.logger)
	}
}
