package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// GetMonitors retrieves all active monitors using XRandR. Servers without
// RandR are reported as one monitor covering the root window.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return c.rootMonitor()
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}

	if len(monitors) == 0 {
		return c.rootMonitor()
	}
	return monitors, nil
}

func (c *Connection) rootMonitor() ([]Monitor, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get root geometry: %w", err)
	}
	return []Monitor{{
		ID:     0,
		Name:   "screen",
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}}, nil
}

// Edges is the space reserved on each side of a monitor.
type Edges struct {
	Left, Right, Top, Bottom int
}

// ReservedEdges sums the struts other dock windows reserve on monitor. The
// window in skip is ignored so a dock can compute its own usable area
// without counting itself.
func (c *Connection) ReservedEdges(monitor Monitor, skip xproto.Window) Edges {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return Edges{}
	}
	rootW, rootH := int(rootGeom.Width), int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return Edges{}
	}

	var edges Edges
	for _, win := range clients {
		if win == skip || !c.isDock(win) {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
			edges = edges.union(strutEdgesOnMonitor(monitor, rootW, rootH, *sp))
			continue
		}
		// Some docks only set _NET_WM_STRUT, which spans the whole edge.
		if s, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
			edges = edges.union(strutEdgesOnMonitor(monitor, rootW, rootH, ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftEndY: uint(rootH - 1), RightEndY: uint(rootH - 1),
				TopEndX: uint(rootW - 1), BottomEndX: uint(rootW - 1),
			}))
		}
	}
	return edges
}

func (c *Connection) isDock(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// Shrink returns m reduced by e, never below 1x1.
func (m Monitor) Shrink(e Edges) Monitor {
	m.X += e.Left
	m.Y += e.Top
	m.Width = maxInt(1, m.Width-e.Left-e.Right)
	m.Height = maxInt(1, m.Height-e.Top-e.Bottom)
	return m
}

func (e Edges) union(o Edges) Edges {
	return Edges{
		Left:   maxInt(e.Left, o.Left),
		Right:  maxInt(e.Right, o.Right),
		Top:    maxInt(e.Top, o.Top),
		Bottom: maxInt(e.Bottom, o.Bottom),
	}
}

// strutEdgesOnMonitor converts root-relative strut ranges into the depth each
// one cuts into monitor.
func strutEdgesOnMonitor(m Monitor, rootW, rootH int, sp ewmh.WmStrutPartial) Edges {
	mx1, my1, mx2, my2 := m.X, m.Y, m.X+m.Width, m.Y+m.Height
	var e Edges

	if sp.Top > 0 {
		_, h := overlap(mx1, my1, mx2, my2, int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top))
		e.Top = h
	}
	if sp.Bottom > 0 {
		_, h := overlap(mx1, my1, mx2, my2, int(sp.BottomStartX), rootH-int(sp.Bottom), int(sp.BottomEndX)+1, rootH)
		e.Bottom = h
	}
	if sp.Left > 0 {
		w, _ := overlap(mx1, my1, mx2, my2, 0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1)
		e.Left = w
	}
	if sp.Right > 0 {
		w, _ := overlap(mx1, my1, mx2, my2, rootW-int(sp.Right), int(sp.RightStartY), rootW, int(sp.RightEndY)+1)
		e.Right = w
	}
	return e
}

// overlap returns the size of the intersection of two rectangles given as
// corner coordinates, or 0x0 when they do not intersect.
func overlap(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) (int, int) {
	x1, y1 := maxInt(ax1, bx1), maxInt(ay1, by1)
	x2, y2 := minInt(ax2, bx2), minInt(ay2, by2)
	if x2 <= x1 || y2 <= y1 {
		return 0, 0
	}
	return x2 - x1, y2 - y1
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
