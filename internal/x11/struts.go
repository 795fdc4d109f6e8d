package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// SetStrutPartial writes _NET_WM_STRUT_PARTIAL and the legacy _NET_WM_STRUT
// for window managers that only read the latter.
func (c *Connection) SetStrutPartial(windowID xproto.Window, strut ewmh.WmStrutPartial) error {
	if err := ewmh.WmStrutPartialSet(c.XUtil, windowID, &strut); err != nil {
		return fmt.Errorf("failed to set _NET_WM_STRUT_PARTIAL: %w", err)
	}
	legacy := ewmh.WmStrut{
		Left:   strut.Left,
		Right:  strut.Right,
		Top:    strut.Top,
		Bottom: strut.Bottom,
	}
	if err := ewmh.WmStrutSet(c.XUtil, windowID, &legacy); err != nil {
		return fmt.Errorf("failed to set _NET_WM_STRUT: %w", err)
	}
	return nil
}

// GetStrutPartial reads _NET_WM_STRUT_PARTIAL. A window without the property
// reserves nothing.
func (c *Connection) GetStrutPartial(windowID xproto.Window) (ewmh.WmStrutPartial, error) {
	strut, err := ewmh.WmStrutPartialGet(c.XUtil, windowID)
	if err != nil {
		if !c.WindowExists(windowID) {
			return ewmh.WmStrutPartial{}, fmt.Errorf("window 0x%x does not exist", uint32(windowID))
		}
		return ewmh.WmStrutPartial{}, nil
	}
	return *strut, nil
}
