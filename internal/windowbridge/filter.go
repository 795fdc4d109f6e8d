package windowbridge

import "github.com/1broseidon/dockbridge/internal/platform"

// ignoredTypes never get a dock entry.
var ignoredTypes = map[platform.WindowType]bool{
	platform.WindowTypeDesktop:      true,
	platform.WindowTypeDock:         true,
	platform.WindowTypeSplash:       true,
	platform.WindowTypeToolbar:      true,
	platform.WindowTypeMenu:         true,
	platform.WindowTypePopupMenu:    true,
	platform.WindowTypeNotification: true,
}

// ownerTypes mark an owner that already has its own dock entry.
var ownerTypes = map[platform.WindowType]bool{
	platform.WindowTypeNormal:  true,
	platform.WindowTypeDialog:  true,
	platform.WindowTypeUtility: true,
}

// IsAcceptable reports whether id should appear in the dock.
//
// A window is rejected when it cannot be read, when its primary type is a
// shell surface (dock, desktop, menu and the like), or when it asks to be
// skipped by taskbars or pagers. Transient windows are rejected when their
// owner is an ordinary application window, since the owner already
// represents them.
func (b *Bridge) IsAcceptable(id platform.WindowID) bool {
	props, err := b.backend.Properties(id)
	if err != nil {
		return false
	}
	if ignoredTypes[props.PrimaryType()] {
		return false
	}
	if props.HasState(platform.StateSkipTaskbar) || props.HasState(platform.StateSkipPager) {
		return false
	}

	owner := props.TransientFor
	if owner == 0 || owner == id || owner == b.backend.RootWindow() {
		return true
	}

	ownerType := platform.WindowTypeUnknown
	if ownerProps, err := b.backend.Properties(owner); err == nil {
		ownerType = ownerProps.PrimaryType()
	}
	return !ownerTypes[ownerType]
}
