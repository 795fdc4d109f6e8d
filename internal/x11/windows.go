package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// sourcePager marks EWMH requests as coming from a pager or taskbar, which
// window managers honour without focus-stealing prevention.
const sourcePager = 2

// iconicState is the ICCCM IconicState value for WM_CHANGE_STATE.
const iconicState = 3

// WindowProps holds the raw X11 properties of a client window.
type WindowProps struct {
	Types        []string
	States       []string
	TransientFor xproto.Window
	Class        string
	Instance     string
	Name         string
	VisibleName  string
	PID          uint
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// GetClientList returns _NET_CLIENT_LIST in mapping order.
func (c *Connection) GetClientList() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	return clients, nil
}

// WindowExists reports whether the server still knows about windowID.
func (c *Connection) WindowExists(windowID xproto.Window) bool {
	_, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	return err == nil
}

// GetWindowProps reads the properties used to classify and describe a
// window. Only a vanished window is an error; missing properties are left
// empty.
func (c *Connection) GetWindowProps(windowID xproto.Window) (WindowProps, error) {
	if !c.WindowExists(windowID) {
		return WindowProps{}, fmt.Errorf("window 0x%x does not exist", uint32(windowID))
	}

	var props WindowProps
	if types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID); err == nil {
		props.Types = types
	}
	if states, err := ewmh.WmStateGet(c.XUtil, windowID); err == nil {
		props.States = states
	}
	if owner, err := icccm.WmTransientForGet(c.XUtil, windowID); err == nil {
		props.TransientFor = owner
	}
	if wmClass, err := icccm.WmClassGet(c.XUtil, windowID); err == nil && wmClass != nil {
		props.Class = strings.TrimSpace(wmClass.Class)
		props.Instance = strings.TrimSpace(wmClass.Instance)
	}
	props.Name = c.windowTitle(windowID)
	if visible, err := ewmh.WmVisibleNameGet(c.XUtil, windowID); err == nil {
		props.VisibleName = strings.TrimSpace(visible)
	}
	if pid, err := ewmh.WmPidGet(c.XUtil, windowID); err == nil {
		props.PID = pid
	}
	return props, nil
}

func (c *Connection) windowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// MinimizeWindow iconifies a window via WM_CHANGE_STATE.
func (c *Connection) MinimizeWindow(windowID xproto.Window) error {
	return c.sendRootMessage(windowID, "WM_CHANGE_STATE", iconicState)
}

// ActivateWindow activates and raises a window using _NET_ACTIVE_WINDOW with
// pager source indication, so the window manager does not refuse it.
func (c *Connection) ActivateWindow(windowID xproto.Window) error {
	return c.sendRootMessage(windowID, "_NET_ACTIVE_WINDOW", sourcePager, 0, 0)
}

// CloseWindow asks the window manager to close a window via _NET_CLOSE_WINDOW.
func (c *Connection) CloseWindow(windowID xproto.Window) error {
	return c.sendRootMessage(windowID, "_NET_CLOSE_WINDOW", 0, sourcePager)
}
