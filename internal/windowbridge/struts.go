package windowbridge

import (
	"fmt"

	"github.com/1broseidon/dockbridge/internal/config"
	"github.com/1broseidon/dockbridge/internal/platform"
)

// ComputeStrut returns the strut a dock occupying rect on the given edge of
// screen should reserve. ok is false for edges the dock cannot sit on.
func ComputeStrut(screen platform.Rect, dir platform.Direction, rect platform.Rect, compositing bool, dock config.Dock) (platform.Strut, bool) {
	margin := dock.EdgeMarginsFor(compositing)

	var strut platform.Strut
	switch dir {
	case platform.DirectionLeft:
		strut.Left = platform.StrutEdge{
			Width: rect.Width + screen.X + margin,
			Start: rect.Y,
			End:   rect.Y + rect.Height - 1,
		}
	case platform.DirectionBottom:
		strut.Bottom = platform.StrutEdge{
			Width: rect.Height + margin,
			Start: rect.X,
			End:   rect.X + rect.Width,
		}
	case platform.DirectionRight:
		strut.Right = platform.StrutEdge{
			Width: rect.Width + margin,
			Start: rect.Y,
			End:   rect.Y + rect.Height - 1,
		}
	default:
		return platform.Strut{}, false
	}
	return strut, true
}

// DisplayFor returns the display containing the centre of rect, or the first
// display when none does. ok is false when there are no displays.
func DisplayFor(displays []platform.Display, rect platform.Rect) (platform.Display, bool) {
	if len(displays) == 0 {
		return platform.Display{}, false
	}
	cx, cy := rect.Center()
	for _, d := range displays {
		if d.Bounds.Contains(cx, cy) {
			return d, true
		}
	}
	return displays[0], true
}

// ScreenFor returns the bounds of DisplayFor, or the zero rect with no
// displays.
func ScreenFor(displays []platform.Display, rect platform.Rect) platform.Rect {
	d, _ := DisplayFor(displays, rect)
	return d.Bounds
}

// SetStruts reserves the screen edge under surface for a dock at rect.
// A top dock reserves nothing.
func (b *Bridge) SetStruts(surface platform.WindowID, dir platform.Direction, rect platform.Rect, compositing bool) error {
	if dir == platform.DirectionTop {
		b.logger.Debug("top docks do not reserve a strut", "window_id", uint64(surface))
		return nil
	}

	displays, err := b.backend.Displays()
	if err != nil {
		return fmt.Errorf("read displays: %w", err)
	}
	strut, ok := ComputeStrut(ScreenFor(displays, rect), dir, rect, compositing, b.dock)
	if !ok {
		return nil
	}

	if err := b.backend.SetStrut(surface, strut); err != nil {
		return fmt.Errorf("set strut on 0x%x: %w", uint64(surface), err)
	}
	b.logger.Debug("strut set", "window_id", uint64(surface), "direction", dir.String(), "strut", strut)
	return nil
}

// ClearStruts releases any edge reserved by surface.
func (b *Bridge) ClearStruts(surface platform.WindowID) error {
	if err := b.backend.SetStrut(surface, platform.Strut{}); err != nil {
		return fmt.Errorf("clear strut on 0x%x: %w", uint64(surface), err)
	}
	return nil
}

// Struts reads back the edges reserved by surface.
func (b *Bridge) Struts(surface platform.WindowID) (platform.Strut, error) {
	strut, err := b.backend.Strut(surface)
	if err != nil {
		return platform.Strut{}, fmt.Errorf("read strut on 0x%x: %w", uint64(surface), err)
	}
	return strut, nil
}

// AvailableArea returns the work area other docks leave on the display under
// rect. Edges reserved by surface itself are not subtracted.
func (b *Bridge) AvailableArea(surface platform.WindowID, rect platform.Rect) (platform.Display, platform.Rect, error) {
	displays, err := b.backend.Displays()
	if err != nil {
		return platform.Display{}, platform.Rect{}, fmt.Errorf("read displays: %w", err)
	}
	display, ok := DisplayFor(displays, rect)
	if !ok {
		return platform.Display{}, platform.Rect{}, fmt.Errorf("no displays to place %+v on", rect)
	}
	area, err := b.backend.WorkArea(display, surface)
	if err != nil {
		return display, platform.Rect{}, fmt.Errorf("read work area of %q: %w", display.Name, err)
	}
	return display, area, nil
}
