package runtimepath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoRuntimeDir is returned when the user has no runtime directory.
var ErrNoRuntimeDir = errors.New("no user runtime directory")

var statFn = os.Stat

// Dir returns the user's runtime directory. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	runUserDir := fmt.Sprintf("/run/user/%d", os.Getuid())
	if info, err := statFn(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}
	return "", ErrNoRuntimeDir
}

// SessionBusAddress returns the D-Bus address of the per-user bus socket in
// the runtime directory, or "" when there is none. An explicit
// DBUS_SESSION_BUS_ADDRESS always wins.
func SessionBusAddress() string {
	if addr := os.Getenv("DBUS_SESSION_BUS_ADDRESS"); addr != "" {
		return addr
	}
	dir, err := Dir()
	if err != nil {
		return ""
	}
	socket := filepath.Join(dir, "bus")
	info, err := statFn(socket)
	if err != nil || info.Mode()&os.ModeSocket == 0 {
		return ""
	}
	return "unix:path=" + socket
}
