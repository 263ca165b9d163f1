// Package ipc lets other processes drive the desktop through the same bridge
// messages the page sends, over a unix socket or the session bus.
package ipc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// maxMessageSize bounds a single newline-delimited message.
const maxMessageSize = 64 * 1024

// DispatchFunc handles one raw bridge message. It always runs on the UI loop.
type DispatchFunc func(raw []byte)

// Scheduler runs work on a later iteration of the UI main loop.
type Scheduler interface {
	Defer(fn func())
}

// SocketServer accepts newline-delimited bridge messages on a unix socket.
type SocketServer struct {
	path     string
	dispatch DispatchFunc
	sched    Scheduler
	logger   *log.Logger

	mu       sync.Mutex
	listener net.Listener
	running  bool
	wg       sync.WaitGroup
}

func NewSocketServer(path string, dispatch DispatchFunc, sched Scheduler, logger *log.Logger) *SocketServer {
	return &SocketServer{
		path:     path,
		dispatch: dispatch,
		sched:    sched,
		logger:   logger,
	}
}

func (s *SocketServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("IPC server already running")
	}

	// A socket left behind by a crashed instance blocks Listen.
	removeSocket(s.path)

	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("failed to create socket listener: %w", err)
	}

	s.listener = listener
	s.running = true
	s.logger.Info("IPC server listening", "socket", s.path)

	s.wg.Add(1)
	go s.acceptConnections(listener)
	return nil
}

func (s *SocketServer) acceptConnections(listener net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Debug("error accepting connection", "err", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *SocketServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxMessageSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		msg := append([]byte(nil), line...)
		s.logger.Debug("received IPC message", "message", string(msg))
		s.sched.Defer(func() {
			s.dispatch(msg)
		})
	}

	if err := scanner.Err(); err != nil {
		s.logger.Debug("error reading from connection", "err", err)
	}
}

func (s *SocketServer) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()

	err := listener.Close()
	s.wg.Wait()

	removeSocket(s.path)
	s.logger.Info("IPC server stopped")
	return err
}

func removeSocket(path string) {
	if _, err := os.Stat(path); err == nil {
		os.Remove(path)
	}
}

// Send writes each message, newline-terminated, to the shell listening on
// socketPath.
func Send(socketPath string, messages ...[]byte) error {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to webdesk at %s: %w", socketPath, err)
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	for _, msg := range messages {
		if bytes.ContainsRune(msg, '\n') {
			return fmt.Errorf("message must be a single line")
		}
		if _, err := w.Write(msg); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
