package windowbridge

import (
	"fmt"
	"strings"

	"github.com/1broseidon/dockbridge/internal/platform"
)

// WindowInfo describes a window for a dock entry. It is built fresh on every
// query.
type WindowInfo struct {
	IconName    string `json:"iconName"`
	Active      bool   `json:"active"`
	VisibleName string `json:"visibleName"`
	ClassID     string `json:"id"`
}

// QueryInfo reads the dock-facing description of id.
func (b *Bridge) QueryInfo(id platform.WindowID) (WindowInfo, error) {
	props, err := b.backend.Properties(id)
	if err != nil {
		return WindowInfo{}, fmt.Errorf("query window 0x%x: %w", uint64(id), err)
	}
	return WindowInfo{
		IconName:    strings.ToLower(props.Class),
		Active:      id == b.ActiveWindow(),
		VisibleName: props.DisplayName(),
		ClassID:     props.Class,
	}, nil
}

// QueryClass returns the WM_CLASS class of id, or "" when it cannot be read.
func (b *Bridge) QueryClass(id platform.WindowID) string {
	props, err := b.backend.Properties(id)
	if err != nil {
		return ""
	}
	return props.Class
}

// ResolveDesktopFile returns the .desktop file that launched id, or "".
func (b *Bridge) ResolveDesktopFile(id platform.WindowID) string {
	if b.resolver == nil {
		return ""
	}
	props, err := b.backend.Properties(id)
	if err != nil {
		b.logger.Debug("cannot read window for desktop file lookup", "window_id", uint64(id), "error", err)
		return ""
	}
	return b.resolver.Resolve(props.Class, props.PID, props.Instance)
}
