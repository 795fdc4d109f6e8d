package runtimepath

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallsBackToRunUser(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())

	stubStat(t, func(name string) (os.FileInfo, error) {
		if name == wantRun {
			return fakeInfo{dir: true}, nil
		}
		return nil, fs.ErrNotExist
	})
	got, err := Dir()
	if err != nil || got != wantRun {
		t.Fatalf("Dir() = %q, %v, want %q", got, err, wantRun)
	}
}

func TestDir_NoRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	stubStat(t, func(string) (os.FileInfo, error) { return nil, fs.ErrNotExist })

	if _, err := Dir(); !errors.Is(err, ErrNoRuntimeDir) {
		t.Fatalf("Dir() error = %v, want ErrNoRuntimeDir", err)
	}
}

func TestSessionBusAddress_ExplicitWins(t *testing.T) {
	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "unix:path=/custom/bus")
	if got := SessionBusAddress(); got != "unix:path=/custom/bus" {
		t.Fatalf("SessionBusAddress() = %q", got)
	}
}

func TestSessionBusAddress_FromRuntimeSocket(t *testing.T) {
	// Unix socket paths are length-limited, so keep the directory short.
	td, err := os.MkdirTemp("", "rt")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(td) })
	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "")
	t.Setenv("XDG_RUNTIME_DIR", td)

	if got := SessionBusAddress(); got != "" {
		t.Fatalf("SessionBusAddress() without socket = %q, want empty", got)
	}

	socket := filepath.Join(td, "bus")
	ln, err := net.Listen("unix", socket)
	if err != nil {
		t.Skipf("cannot create unix socket: %v", err)
	}
	defer ln.Close()

	if got := SessionBusAddress(); got != "unix:path="+socket {
		t.Fatalf("SessionBusAddress() = %q, want unix:path=%s", got, socket)
	}
}

func stubStat(t *testing.T, fn func(string) (os.FileInfo, error)) {
	t.Helper()
	prev := statFn
	statFn = fn
	t.Cleanup(func() { statFn = prev })
}

type fakeInfo struct{ dir bool }

func (f fakeInfo) Name() string       { return "fake" }
func (f fakeInfo) Size() int64        { return 0 }
func (f fakeInfo) Mode() os.FileMode  { return 0 }
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return f.dir }
func (f fakeInfo) Sys() any           { return nil }
