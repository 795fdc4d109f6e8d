// Package launcher starts applications for the dock, handing them to the
// session manager when they cannot be spawned directly.
package launcher

import (
	"context"
	"log/slog"
	"strings"

	"github.com/1broseidon/dockbridge/internal/config"
)

// Spawner starts a process detached from the caller.
type Spawner interface {
	Spawn(command string, args []string) error
}

// SessionBus is the part of the session bus the launcher talks to.
type SessionBus interface {
	// HasOwner reports whether a connection owns the well-known name.
	HasOwner(ctx context.Context, name string) (bool, error)
	// Call invokes method (interface-qualified) on the object at path of
	// service and waits for the reply.
	Call(ctx context.Context, service, path, method string, args ...interface{}) error
}

// Options configures a Launcher.
type Options struct {
	Session config.Session
	Spawner Spawner
	// Bus may be nil, in which case there is no fallback.
	Bus    SessionBus
	Logger *slog.Logger
}

// Launcher starts applications.
type Launcher struct {
	session config.Session
	spawner Spawner
	bus     SessionBus
	logger  *slog.Logger
}

// New creates a launcher. Empty session fields take the package defaults.
func New(opts Options) *Launcher {
	session := opts.Session
	if session.Service == "" {
		session.Service = config.DefaultSessionService
	}
	if session.Path == "" {
		session.Path = config.DefaultSessionPath
	}
	if session.Interface == "" {
		session.Interface = config.DefaultSessionInterface
	}
	if session.Method == "" {
		session.Method = config.DefaultSessionMethod
	}

	spawner := opts.Spawner
	if spawner == nil {
		spawner = ExecSpawner{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Launcher{
		session: session,
		spawner: spawner,
		bus:     opts.Bus,
		logger:  logger,
	}
}

// Launch starts command with args. It first spawns the process itself; if
// that fails and the session manager is on the bus, it asks the session
// manager to launch it instead. It reports whether either path succeeded.
func (l *Launcher) Launch(ctx context.Context, command string, args []string) bool {
	if strings.TrimSpace(command) == "" {
		l.logger.Warn("launch: empty command")
		return false
	}

	err := l.spawner.Spawn(command, args)
	if err == nil {
		l.logger.Debug("launched", "command", command, "args", args)
		return true
	}
	l.logger.Debug("direct spawn failed, trying session manager", "command", command, "error", err)

	if l.launchViaSession(ctx, command, args) {
		return true
	}

	l.logger.Warn("launch failed", "command", command, "args", args)
	return false
}

func (l *Launcher) launchViaSession(ctx context.Context, command string, args []string) bool {
	if l.bus == nil {
		return false
	}

	owned, err := l.bus.HasOwner(ctx, l.session.Service)
	if err != nil {
		l.logger.Warn("cannot query session bus", "service", l.session.Service, "error", err)
		return false
	}
	if !owned {
		l.logger.Debug("session manager not on bus", "service", l.session.Service)
		return false
	}

	if args == nil {
		args = []string{}
	}
	method := l.session.Interface + "." + l.session.Method
	if err := l.bus.Call(ctx, l.session.Service, l.session.Path, method, command, args); err != nil {
		l.logger.Warn("session manager launch failed", "method", method, "error", err)
		return false
	}
	return true
}
