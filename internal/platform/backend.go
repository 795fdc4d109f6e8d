package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoConnection is returned by backends that have no window-system
// connection to talk to.
var ErrNoConnection = errors.New("window system connection is not available")

// WindowID is a platform-neutral window identifier.
type WindowID uint64

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Center returns the midpoint of r.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Display describes a physical display.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
}

// Direction is the screen edge a dock is attached to.
type Direction int

const (
	DirectionLeft Direction = iota
	DirectionBottom
	DirectionRight
	DirectionTop
)

func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "left"
	case DirectionBottom:
		return "bottom"
	case DirectionRight:
		return "right"
	case DirectionTop:
		return "top"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection parses a case-insensitive edge name.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return DirectionLeft, nil
	case "bottom":
		return DirectionBottom, nil
	case "right":
		return DirectionRight, nil
	case "top":
		return DirectionTop, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (want left, bottom, right or top)", s)
	}
}

// StrutEdge reserves Width pixels along one screen edge between Start and End.
type StrutEdge struct {
	Width int
	Start int
	End   int
}

// Strut is the space a window reserves on each screen edge.
type Strut struct {
	Left   StrutEdge
	Right  StrutEdge
	Top    StrutEdge
	Bottom StrutEdge
}

// IsZero reports whether no edge reserves any space.
func (s Strut) IsZero() bool {
	return s == Strut{}
}

// WindowType is an EWMH _NET_WM_WINDOW_TYPE value.
type WindowType int

const (
	WindowTypeUnknown WindowType = iota
	WindowTypeNormal
	WindowTypeDesktop
	WindowTypeDock
	WindowTypeToolbar
	WindowTypeMenu
	WindowTypeUtility
	WindowTypeSplash
	WindowTypeDialog
	WindowTypeDropdownMenu
	WindowTypePopupMenu
	WindowTypeTooltip
	WindowTypeNotification
	WindowTypeCombo
	WindowTypeDND
)

var windowTypeAtoms = map[string]WindowType{
	"_NET_WM_WINDOW_TYPE_NORMAL":        WindowTypeNormal,
	"_NET_WM_WINDOW_TYPE_DESKTOP":       WindowTypeDesktop,
	"_NET_WM_WINDOW_TYPE_DOCK":          WindowTypeDock,
	"_NET_WM_WINDOW_TYPE_TOOLBAR":       WindowTypeToolbar,
	"_NET_WM_WINDOW_TYPE_MENU":          WindowTypeMenu,
	"_NET_WM_WINDOW_TYPE_UTILITY":       WindowTypeUtility,
	"_NET_WM_WINDOW_TYPE_SPLASH":        WindowTypeSplash,
	"_NET_WM_WINDOW_TYPE_DIALOG":        WindowTypeDialog,
	"_NET_WM_WINDOW_TYPE_DROPDOWN_MENU": WindowTypeDropdownMenu,
	"_NET_WM_WINDOW_TYPE_POPUP_MENU":    WindowTypePopupMenu,
	"_NET_WM_WINDOW_TYPE_TOOLTIP":       WindowTypeTooltip,
	"_NET_WM_WINDOW_TYPE_NOTIFICATION":  WindowTypeNotification,
	"_NET_WM_WINDOW_TYPE_COMBO":         WindowTypeCombo,
	"_NET_WM_WINDOW_TYPE_DND":           WindowTypeDND,
}

// ParseWindowTypes maps _NET_WM_WINDOW_TYPE atom names to WindowTypes,
// dropping names it does not know. Order is preserved.
func ParseWindowTypes(names []string) []WindowType {
	out := make([]WindowType, 0, len(names))
	for _, name := range names {
		if t, ok := windowTypeAtoms[name]; ok {
			out = append(out, t)
		}
	}
	return out
}

func (t WindowType) String() string {
	for name, v := range windowTypeAtoms {
		if v == t {
			return strings.ToLower(strings.TrimPrefix(name, "_NET_WM_WINDOW_TYPE_"))
		}
	}
	return "unknown"
}

// EWMH state names read by the window filter.
const (
	StateSkipTaskbar = "_NET_WM_STATE_SKIP_TASKBAR"
	StateSkipPager   = "_NET_WM_STATE_SKIP_PAGER"
)

// WindowProperties is a snapshot of the properties of one top-level window.
type WindowProperties struct {
	// Types holds the recognised window types in preference order.
	Types        []WindowType
	States       []string
	TransientFor WindowID
	Class        string
	Instance     string
	Name         string
	VisibleName  string
	PID          int
}

// PrimaryType returns the most preferred recognised type, or
// WindowTypeUnknown when the window declares none.
func (p WindowProperties) PrimaryType() WindowType {
	if len(p.Types) == 0 {
		return WindowTypeUnknown
	}
	return p.Types[0]
}

// HasState reports whether the window carries the given _NET_WM_STATE atom.
func (p WindowProperties) HasState(state string) bool {
	for _, s := range p.States {
		if s == state {
			return true
		}
	}
	return false
}

// DisplayName returns the visible name, falling back to the plain name.
func (p WindowProperties) DisplayName() string {
	if p.VisibleName != "" {
		return p.VisibleName
	}
	return p.Name
}

// EventKind identifies a window-system notification.
type EventKind int

const (
	EventWindowAdded EventKind = iota
	EventWindowRemoved
	EventActiveWindowChanged
	// EventClientListChanged carries no window; listeners re-read the list.
	EventClientListChanged
)

func (k EventKind) String() string {
	switch k {
	case EventWindowAdded:
		return "window-added"
	case EventWindowRemoved:
		return "window-removed"
	case EventActiveWindowChanged:
		return "active-changed"
	case EventClientListChanged:
		return "client-list-changed"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a single window-system notification.
type Event struct {
	Kind   EventKind
	Window WindowID
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	RootWindow() WindowID
	Displays() ([]Display, error)
	// WorkArea returns display's bounds minus the edges reserved by every
	// dock other than skip.
	WorkArea(display Display, skip WindowID) (Rect, error)
	ActiveWindow() (WindowID, error)
	// Windows returns the managed client windows in stacking-independent
	// mapping order.
	Windows() ([]WindowID, error)
	Properties(windowID WindowID) (WindowProperties, error)
	Minimize(windowID WindowID) error
	ForceActivate(windowID WindowID) error
	Close(windowID WindowID) error
	SetStrut(windowID WindowID, strut Strut) error
	Strut(windowID WindowID) (Strut, error)
	SetIconGeometry(windowID WindowID, geometry Rect) error
	SetBlurBehind(windowID WindowID, enable bool, region []Rect) error
	CompositingActive() bool
	// Watch streams client-list and active-window notifications until ctx
	// is done. The channel is closed when watching stops.
	Watch(ctx context.Context) (<-chan Event, error)
}
