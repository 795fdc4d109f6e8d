package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
)

const blurBehindRegion = "_KDE_NET_WM_BLUR_BEHIND_REGION"

// Region is a rectangle in window-relative coordinates.
type Region struct {
	X, Y          int
	Width, Height uint
}

// SetBlurBehind asks the compositor to blur what is behind windowID. An
// empty region blurs the whole window. Disabling removes the hint.
func (c *Connection) SetBlurBehind(windowID xproto.Window, enable bool, region []Region) error {
	if !enable {
		atom, err := xprop.Atm(c.XUtil, blurBehindRegion)
		if err != nil {
			return fmt.Errorf("failed to intern %s: %w", blurBehindRegion, err)
		}
		return xproto.DeletePropertyChecked(c.XUtil.Conn(), windowID, atom).Check()
	}

	data := make([]uint, 0, len(region)*4)
	for _, r := range region {
		data = append(data, uint(uint32(int32(r.X))), uint(uint32(int32(r.Y))), r.Width, r.Height)
	}
	if err := xprop.ChangeProp32(c.XUtil, windowID, blurBehindRegion, "CARDINAL", data...); err != nil {
		return fmt.Errorf("failed to set %s: %w", blurBehindRegion, err)
	}
	return nil
}

// SetIconGeometry writes _NET_WM_ICON_GEOMETRY, the rectangle a window
// minimizes into (the dock icon).
func (c *Connection) SetIconGeometry(windowID xproto.Window, x, y int, width, height uint) error {
	return ewmh.WmIconGeometrySet(c.XUtil, windowID, &ewmh.WmIconGeometry{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	})
}

// CompositingActive reports whether a compositing manager owns the
// _NET_WM_CM_S<screen> selection for the default screen.
func (c *Connection) CompositingActive() bool {
	name := fmt.Sprintf("_NET_WM_CM_S%d", c.XUtil.Conn().DefaultScreen)
	atom, err := c.atom(name)
	if err != nil {
		return false
	}
	owner, err := xproto.GetSelectionOwner(c.XUtil.Conn(), atom).Reply()
	if err != nil {
		return false
	}
	return owner.Owner != xproto.WindowNone
}
