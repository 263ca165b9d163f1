// Package system is the process boundary of the shell: resolving executables,
// spawning detached children and capturing command output.
package system

import (
	"context"
	"os/exec"
	"strings"
	"syscall"
)

// Runner abstracts the OS calls the shell makes so handlers can be tested
// without spawning anything.
type Runner interface {
	// LookPath resolves an executable on PATH.
	LookPath(name string) (string, error)
	// Start spawns a detached process and returns without waiting for it.
	Start(name string, args ...string) error
	// Output runs a command to completion and returns its trimmed stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// Real implements Runner with real OS calls.
type Real struct{}

func NewReal() *Real {
	return &Real{}
}

func (r *Real) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r *Real) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	// New session so children survive the shell and don't get its signals.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return err
	}

	// Reap in the background so finished children don't linger as zombies.
	go cmd.Wait()
	return nil
}

func (r *Real) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	return strings.TrimSpace(string(out)), err
}
