//go:build linux

package platform

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/1broseidon/dockbridge/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection

	watchMu sync.Mutex
	watched bool
}

// ErrAlreadyWatched is returned by a second Watch on the same LinuxBackend.
// The X event loop cannot be restarted once it has been told to quit.
var ErrAlreadyWatched = errors.New("x11 backend has already been watched")

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh
// X11 connection to display ("" means $DISPLAY).
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() WindowID {
	if b == nil || b.conn == nil {
		return 0
	}
	return WindowID(b.conn.Root)
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: rectFromMonitor(m),
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})
	return displays, nil
}

// WorkArea returns the part of display not reserved by docks other than skip.
func (b *LinuxBackend) WorkArea(display Display, skip WindowID) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}

	m := x11.Monitor{
		ID:     display.ID,
		Name:   display.Name,
		X:      display.Bounds.X,
		Y:      display.Bounds.Y,
		Width:  display.Bounds.Width,
		Height: display.Bounds.Height,
	}
	skipWin := xproto.Window(xproto.WindowNone)
	if skip > 0 && skip <= math.MaxUint32 {
		skipWin = xproto.Window(skip)
	}
	return rectFromMonitor(m.Shrink(conn.ReservedEdges(m, skipWin))), nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// Windows returns the managed client windows.
func (b *LinuxBackend) Windows() ([]WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.GetClientList()
	if err != nil {
		return nil, err
	}
	out := make([]WindowID, 0, len(clients))
	for _, c := range clients {
		out = append(out, WindowID(c))
	}
	return out, nil
}

// Properties reads the classification and naming properties of a window.
func (b *LinuxBackend) Properties(windowID WindowID) (WindowProperties, error) {
	conn, win, err := b.target(windowID)
	if err != nil {
		return WindowProperties{}, err
	}

	raw, err := conn.GetWindowProps(win)
	if err != nil {
		return WindowProperties{}, err
	}
	return WindowProperties{
		Types:        ParseWindowTypes(raw.Types),
		States:       raw.States,
		TransientFor: WindowID(raw.TransientFor),
		Class:        raw.Class,
		Instance:     raw.Instance,
		Name:         raw.Name,
		VisibleName:  raw.VisibleName,
		PID:          int(raw.PID),
	}, nil
}

// Minimize minimizes a window via WM_CHANGE_STATE.
func (b *LinuxBackend) Minimize(windowID WindowID) error {
	conn, win, err := b.target(windowID)
	if err != nil {
		return err
	}
	return conn.MinimizeWindow(win)
}

// ForceActivate activates a window as a pager would, bypassing focus
// stealing prevention.
func (b *LinuxBackend) ForceActivate(windowID WindowID) error {
	conn, win, err := b.target(windowID)
	if err != nil {
		return err
	}
	return conn.ActivateWindow(win)
}

// Close requests a window close via _NET_CLOSE_WINDOW.
func (b *LinuxBackend) Close(windowID WindowID) error {
	conn, win, err := b.target(windowID)
	if err != nil {
		return err
	}
	return conn.CloseWindow(win)
}

// SetStrut reserves screen edges for windowID.
func (b *LinuxBackend) SetStrut(windowID WindowID, strut Strut) error {
	conn, win, err := b.target(windowID)
	if err != nil {
		return err
	}
	return conn.SetStrutPartial(win, strutToEWMH(strut))
}

// Strut reads back the edges windowID reserves.
func (b *LinuxBackend) Strut(windowID WindowID) (Strut, error) {
	conn, win, err := b.target(windowID)
	if err != nil {
		return Strut{}, err
	}
	sp, err := conn.GetStrutPartial(win)
	if err != nil {
		return Strut{}, err
	}
	return strutFromEWMH(sp), nil
}

// SetIconGeometry writes the minimize target rectangle of windowID.
func (b *LinuxBackend) SetIconGeometry(windowID WindowID, geometry Rect) error {
	conn, win, err := b.target(windowID)
	if err != nil {
		return err
	}
	return conn.SetIconGeometry(win, geometry.X, geometry.Y, nonNegative(geometry.Width), nonNegative(geometry.Height))
}

// SetBlurBehind toggles compositor blur behind windowID.
func (b *LinuxBackend) SetBlurBehind(windowID WindowID, enable bool, region []Rect) error {
	conn, win, err := b.target(windowID)
	if err != nil {
		return err
	}
	regions := make([]x11.Region, 0, len(region))
	for _, r := range region {
		regions = append(regions, x11.Region{X: r.X, Y: r.Y, Width: nonNegative(r.Width), Height: nonNegative(r.Height)})
	}
	return conn.SetBlurBehind(win, enable, regions)
}

// CompositingActive reports whether a compositing manager is running.
func (b *LinuxBackend) CompositingActive() bool {
	conn, err := b.connection()
	if err != nil {
		return false
	}
	return conn.CompositingActive()
}

// Watch runs the X event loop until ctx is done and streams client-list and
// active-window changes. A backend can be watched once; later calls return
// ErrAlreadyWatched.
func (b *LinuxBackend) Watch(ctx context.Context) (<-chan Event, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	b.watchMu.Lock()
	if b.watched {
		b.watchMu.Unlock()
		return nil, ErrAlreadyWatched
	}
	b.watched = true
	b.watchMu.Unlock()

	events := make(chan Event, 16)
	var (
		mu         sync.Mutex
		closed     bool
		lastActive xproto.Window
	)
	if active, err := conn.GetActiveWindow(); err == nil {
		lastActive = active
	}

	emit := func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	detach, err := conn.WatchRoot(func(change x11.RootChange) {
		switch change {
		case x11.ClientListChanged:
			emit(Event{Kind: EventClientListChanged})
		case x11.ActiveWindowChanged:
			active, err := conn.GetActiveWindow()
			if err != nil || active == lastActive {
				return
			}
			lastActive = active
			emit(Event{Kind: EventActiveWindowChanged, Window: WindowID(active)})
		}
	})
	if err != nil {
		// The loop never started, so a retry is safe.
		b.watchMu.Lock()
		b.watched = false
		b.watchMu.Unlock()
		return nil, err
	}

	go conn.EventLoop()
	go func() {
		<-ctx.Done()
		detach()
		conn.Quit()

		mu.Lock()
		closed = true
		close(events)
		mu.Unlock()
	}()

	return events, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, ErrNoConnection
	}
	return b.conn, nil
}

// target validates windowID and returns it as an X11 window.
func (b *LinuxBackend) target(windowID WindowID) (*x11.Connection, xproto.Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, 0, err
	}
	if windowID == 0 || windowID > math.MaxUint32 {
		return nil, 0, fmt.Errorf("invalid X11 window id 0x%x", uint64(windowID))
	}
	return conn, xproto.Window(windowID), nil
}

func rectFromMonitor(m x11.Monitor) Rect {
	return Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

func strutToEWMH(s Strut) ewmh.WmStrutPartial {
	return ewmh.WmStrutPartial{
		Left:         nonNegative(s.Left.Width),
		Right:        nonNegative(s.Right.Width),
		Top:          nonNegative(s.Top.Width),
		Bottom:       nonNegative(s.Bottom.Width),
		LeftStartY:   nonNegative(s.Left.Start),
		LeftEndY:     nonNegative(s.Left.End),
		RightStartY:  nonNegative(s.Right.Start),
		RightEndY:    nonNegative(s.Right.End),
		TopStartX:    nonNegative(s.Top.Start),
		TopEndX:      nonNegative(s.Top.End),
		BottomStartX: nonNegative(s.Bottom.Start),
		BottomEndX:   nonNegative(s.Bottom.End),
	}
}

func strutFromEWMH(sp ewmh.WmStrutPartial) Strut {
	return Strut{
		Left:   StrutEdge{Width: int(sp.Left), Start: int(sp.LeftStartY), End: int(sp.LeftEndY)},
		Right:  StrutEdge{Width: int(sp.Right), Start: int(sp.RightStartY), End: int(sp.RightEndY)},
		Top:    StrutEdge{Width: int(sp.Top), Start: int(sp.TopStartX), End: int(sp.TopEndX)},
		Bottom: StrutEdge{Width: int(sp.Bottom), Start: int(sp.BottomStartX), End: int(sp.BottomEndX)},
	}
}

func nonNegative(v int) uint {
	if v < 0 {
		return 0
	}
	return uint(v)
}
