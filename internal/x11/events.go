package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// RootChange identifies which root-window property changed.
type RootChange int

const (
	ClientListChanged RootChange = iota
	ActiveWindowChanged
)

// rootChangeForAtom maps a root property name to the change it signals.
func rootChangeForAtom(name string) (RootChange, bool) {
	switch name {
	case "_NET_CLIENT_LIST":
		return ClientListChanged, true
	case "_NET_ACTIVE_WINDOW":
		return ActiveWindowChanged, true
	default:
		return 0, false
	}
}

// WatchRoot selects property-change events on the root window and calls fn
// for every change to the client list or the active window. Events are only
// delivered while EventLoop runs. The returned func detaches the handler.
func (c *Connection) WatchRoot(fn func(RootChange)) (func(), error) {
	if err := xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return nil, fmt.Errorf("failed to select root property events: %w", err)
	}

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		if change, ok := rootChangeForAtom(name); ok {
			fn(change)
		}
	}).Connect(c.XUtil, c.Root)

	return func() {
		xevent.Detach(c.XUtil, c.Root)
	}, nil
}
