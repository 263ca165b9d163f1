// Package wm tracks which applications have open windows and focuses them on
// request. The window manager itself is reached through a Backend.
package wm

import "context"

// Window is one top-level window as reported by a backend.
type Window struct {
	ID     string
	Class  string
	Title  string
	Normal bool // false for panels, docks and the desktop itself
}

// Backend is a window-manager connection.
type Backend interface {
	Name() string
	// Windows lists the current top-level windows.
	Windows(ctx context.Context) ([]Window, error)
	// Activate focuses w.
	Activate(ctx context.Context, w Window) error
	// Watch calls notify whenever the window list may have changed, until ctx
	// is cancelled. notify may be called from any goroutine.
	Watch(ctx context.Context, notify func()) error
}

// Scheduler runs work on a later iteration of the UI main loop.
type Scheduler interface {
	Defer(fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(fn func())

func (f SchedulerFunc) Defer(fn func()) {
	f(fn)
}
