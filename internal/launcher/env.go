package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/1broseidon/dockbridge/internal/runtimepath"
)

var readDirFn = os.ReadDir

// x11SocketDir holds the local X server sockets (X0, X1, ...).
const x11SocketDir = "/tmp/.X11-unix"

// childEnv returns env with XDG_RUNTIME_DIR, DISPLAY and XAUTHORITY filled
// in for a GUI child. Values already present in env win over display and
// xauthority; with neither, the highest local X socket is used.
func childEnv(env []string, display, xauthority string) []string {
	env = append([]string(nil), env...)

	if strings.TrimSpace(envLookup(env, "XDG_RUNTIME_DIR")) == "" {
		if rd, err := runtimepath.Dir(); err == nil {
			env = upsertEnv(env, "XDG_RUNTIME_DIR", rd)
		}
	}

	if d := strings.TrimSpace(envLookup(env, "DISPLAY")); d != "" {
		display = d
	}
	if x := strings.TrimSpace(envLookup(env, "XAUTHORITY")); x != "" {
		xauthority = x
	}
	display = strings.TrimSpace(display)
	if display == "" {
		display = detectDisplayFromSockets(x11SocketDir)
	}
	if display != "" {
		env = upsertEnv(env, "DISPLAY", display)
	}

	xauthority = strings.TrimSpace(xauthority)
	if xauthority == "" {
		if home := strings.TrimSpace(envLookup(env, "HOME")); home != "" {
			candidate := filepath.Join(home, ".Xauthority")
			if _, err := os.Stat(candidate); err == nil {
				xauthority = candidate
			}
		}
	}
	if xauthority != "" {
		env = upsertEnv(env, "XAUTHORITY", xauthority)
	}
	return env
}

func detectDisplayFromSockets(dir string) string {
	entries, err := readDirFn(dir)
	if err != nil {
		return ""
	}

	var displays []int
	for _, entry := range entries {
		name := entry.Name()
		if len(name) < 2 || name[0] != 'X' {
			continue
		}
		n, err := strconv.Atoi(name[1:])
		if err != nil {
			continue
		}
		displays = append(displays, n)
	}

	if len(displays) == 0 {
		return ""
	}
	sort.Ints(displays)
	return fmt.Sprintf(":%d", displays[len(displays)-1])
}

func envLookup(env []string, key string) string {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return strings.TrimPrefix(e, prefix)
		}
	}
	return ""
}

func upsertEnv(env []string, key string, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
