package ipc

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// DBusService exposes Dispatch(message string) on the session bus. The
// well-known name doubles as the interface name; the object path is the name
// with dots turned into slashes.
type DBusService struct {
	name     string
	dispatch DispatchFunc
	sched    Scheduler
	logger   *log.Logger

	mu      sync.Mutex
	conn    *dbus.Conn
	running bool
}

func NewDBusService(name string, dispatch DispatchFunc, sched Scheduler, logger *log.Logger) *DBusService {
	return &DBusService{
		name:     name,
		dispatch: dispatch,
		sched:    sched,
		logger:   logger,
	}
}

func (s *DBusService) ObjectPath() dbus.ObjectPath {
	return dbus.ObjectPath("/" + strings.ReplaceAll(s.name, ".", "/"))
}

// dbusObject is the exported object; only its methods are visible on the bus.
type dbusObject struct {
	svc *DBusService
}

// Dispatch queues message for the bridge dispatcher. Invalid JSON is
// rejected so callers get an error instead of silence.
func (o dbusObject) Dispatch(message string) *dbus.Error {
	if !json.Valid([]byte(message)) {
		return dbus.MakeFailedError(fmt.Errorf("message is not valid JSON"))
	}
	o.svc.enqueue([]byte(message))
	return nil
}

func (s *DBusService) enqueue(msg []byte) {
	s.logger.Debug("received D-Bus message", "message", string(msg))
	s.sched.Defer(func() {
		s.dispatch(msg)
	})
}

func (s *DBusService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("D-Bus service already running")
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := s.export(conn); err != nil {
		conn.Close()
		return fmt.Errorf("failed to export interface: %w", err)
	}

	reply, err := conn.RequestName(s.name, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to request name: %w", err)
	}

	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return fmt.Errorf("name %s already owned by another process", s.name)
	}

	s.conn = conn
	s.running = true
	s.logger.Info("D-Bus service started", "name", s.name, "path", s.ObjectPath())
	return nil
}

func (s *DBusService) export(conn *dbus.Conn) error {
	obj := dbusObject{svc: s}
	path := s.ObjectPath()
	if err := conn.Export(obj, path, s.name); err != nil {
		return err
	}

	node := &introspect.Node{
		Name: string(path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    s.name,
				Methods: introspect.Methods(obj),
			},
		},
	}
	return conn.Export(introspect.NewIntrospectable(node), path, "org.freedesktop.DBus.Introspectable")
}

func (s *DBusService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		s.conn.ReleaseName(s.name)
		s.conn.Close()
		s.conn = nil
	}

	s.logger.Info("D-Bus service stopped")
	return nil
}
