package launcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/1broseidon/dockbridge/internal/runtimepath"
	"github.com/godbus/dbus/v5"
)

// DBusSession is a SessionBus backed by the user's D-Bus session bus. It
// connects on first use.
type DBusSession struct {
	mu   sync.Mutex
	conn *dbus.Conn
}

var _ SessionBus = (*DBusSession)(nil)

// NewDBusSession returns an unconnected session bus client.
func NewDBusSession() *DBusSession {
	return &DBusSession{}
}

func (s *DBusSession) connection() (*dbus.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil && s.conn.Connected() {
		return s.conn, nil
	}
	var (
		conn *dbus.Conn
		err  error
	)
	if addr := runtimepath.SessionBusAddress(); addr != "" {
		conn, err = dbus.Connect(addr)
	} else {
		conn, err = dbus.ConnectSessionBus()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn
	return conn, nil
}

// HasOwner asks the bus daemon whether name is owned.
func (s *DBusSession) HasOwner(ctx context.Context, name string) (bool, error) {
	conn, err := s.connection()
	if err != nil {
		return false, err
	}
	var owned bool
	if err := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, name).Store(&owned); err != nil {
		return false, fmt.Errorf("NameHasOwner(%s): %w", name, err)
	}
	return owned, nil
}

// Call sends method asynchronously and blocks until the reply arrives or
// ctx is done.
func (s *DBusSession) Call(ctx context.Context, service, path, method string, args ...interface{}) error {
	conn, err := s.connection()
	if err != nil {
		return err
	}
	obj := conn.Object(service, dbus.ObjectPath(path))
	call := obj.GoWithContext(ctx, method, 0, make(chan *dbus.Call, 1), args...)

	select {
	case <-call.Done:
		if call.Err != nil {
			return fmt.Errorf("%s: %w", method, call.Err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drops the bus connection, if any.
func (s *DBusSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
