package windowbridge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/1broseidon/dockbridge/internal/platform"
)

const fakeRoot platform.WindowID = 1

type fakeBackend struct {
	mu          sync.Mutex
	noConn      bool
	active      platform.WindowID
	windows     []platform.WindowID
	props       map[platform.WindowID]platform.WindowProperties
	struts      map[platform.WindowID]platform.Strut
	strutWrites int
	displays    []platform.Display
	iconGeom    map[platform.WindowID]platform.Rect
	blur        map[platform.WindowID]bool
	closed      []platform.WindowID
	compositing bool
	events      chan platform.Event
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		props:    make(map[platform.WindowID]platform.WindowProperties),
		struts:   make(map[platform.WindowID]platform.Strut),
		iconGeom: make(map[platform.WindowID]platform.Rect),
		blur:     make(map[platform.WindowID]bool),
		displays: []platform.Display{
			{ID: 0, Bounds: platform.Rect{Width: 1920, Height: 1080}},
		},
		events: make(chan platform.Event, 16),
	}
}

func (f *fakeBackend) addWindow(id platform.WindowID, p platform.WindowProperties) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.props[id] = p
	f.windows = append(f.windows, id)
}

func (f *fakeBackend) removeWindow(id platform.WindowID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.props, id)
	kept := f.windows[:0]
	for _, w := range f.windows {
		if w != id {
			kept = append(kept, w)
		}
	}
	f.windows = kept
}

func (f *fakeBackend) RootWindow() platform.WindowID { return fakeRoot }

func (f *fakeBackend) Displays() ([]platform.Display, error) {
	if f.noConn {
		return nil, platform.ErrNoConnection
	}
	return f.displays, nil
}

// WorkArea takes bottom struts of other windows off the display bounds.
func (f *fakeBackend) WorkArea(d platform.Display, skip platform.WindowID) (platform.Rect, error) {
	if f.noConn {
		return platform.Rect{}, platform.ErrNoConnection
	}
	area := d.Bounds
	reserved := 0
	for id, s := range f.struts {
		if id != skip && s.Bottom.Width > reserved {
			reserved = s.Bottom.Width
		}
	}
	area.Height -= reserved
	return area, nil
}

func (f *fakeBackend) ActiveWindow() (platform.WindowID, error) {
	if f.noConn {
		return 0, platform.ErrNoConnection
	}
	return f.active, nil
}

func (f *fakeBackend) Windows() ([]platform.WindowID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.noConn {
		return nil, platform.ErrNoConnection
	}
	return append([]platform.WindowID(nil), f.windows...), nil
}

func (f *fakeBackend) Properties(id platform.WindowID) (platform.WindowProperties, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.noConn {
		return platform.WindowProperties{}, platform.ErrNoConnection
	}
	p, ok := f.props[id]
	if !ok {
		return platform.WindowProperties{}, fmt.Errorf("window 0x%x does not exist", uint64(id))
	}
	return p, nil
}

func (f *fakeBackend) Minimize(platform.WindowID) error      { return nil }
func (f *fakeBackend) ForceActivate(platform.WindowID) error { return nil }

func (f *fakeBackend) Close(id platform.WindowID) error {
	if f.noConn {
		return platform.ErrNoConnection
	}
	f.closed = append(f.closed, id)
	return nil
}

func (f *fakeBackend) SetStrut(id platform.WindowID, s platform.Strut) error {
	if f.noConn {
		return platform.ErrNoConnection
	}
	f.strutWrites++
	f.struts[id] = s
	return nil
}

func (f *fakeBackend) Strut(id platform.WindowID) (platform.Strut, error) {
	if f.noConn {
		return platform.Strut{}, platform.ErrNoConnection
	}
	return f.struts[id], nil
}

func (f *fakeBackend) SetIconGeometry(id platform.WindowID, r platform.Rect) error {
	if f.noConn {
		return platform.ErrNoConnection
	}
	f.iconGeom[id] = r
	return nil
}

func (f *fakeBackend) SetBlurBehind(id platform.WindowID, enable bool, _ []platform.Rect) error {
	if f.noConn {
		return platform.ErrNoConnection
	}
	f.blur[id] = enable
	return nil
}

func (f *fakeBackend) CompositingActive() bool { return f.compositing }

func (f *fakeBackend) Watch(ctx context.Context) (<-chan platform.Event, error) {
	if f.noConn {
		return nil, platform.ErrNoConnection
	}
	out := make(chan platform.Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-f.events:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
