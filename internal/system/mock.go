package system

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// Mock implements Runner for tests. Commands are keyed as "name arg1 arg2".
type Mock struct {
	// Paths maps executable names to their resolved path. Missing names fail LookPath.
	Paths map[string]string

	// Outputs maps a command key to its canned result.
	Outputs map[string]ExecResult

	// StartErr makes Start fail with this error (if not nil).
	StartErr error

	// Started records every command passed to Start.
	Started []string

	// Ran records every command passed to Output.
	Ran []string

	mu sync.Mutex
}

// ExecResult is the canned result of an Output call.
type ExecResult struct {
	Output string
	Err    error
}

func NewMock() *Mock {
	return &Mock{
		Paths:   make(map[string]string),
		Outputs: make(map[string]ExecResult),
	}
}

// AddPath marks name as resolvable.
func (m *Mock) AddPath(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Paths[name] = "/usr/bin/" + name
}

func (m *Mock) LookPath(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if path, ok := m.Paths[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("exec: %q: %w", name, exec.ErrNotFound)
}

func (m *Mock) Start(name string, args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Started = append(m.Started, key(name, args))
	return m.StartErr
}

func (m *Mock) Output(_ context.Context, name string, args ...string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(name, args)
	m.Ran = append(m.Ran, k)
	if result, ok := m.Outputs[k]; ok {
		return result.Output, result.Err
	}
	return "", nil
}

// StartedCommands returns a copy of the Start log.
func (m *Mock) StartedCommands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Started...)
}

func key(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
