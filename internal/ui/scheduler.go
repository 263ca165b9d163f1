package ui

import "github.com/gotk3/gotk3/glib"

// IdleScheduler defers work to an idle iteration of the GTK main loop.
type IdleScheduler struct{}

func (IdleScheduler) Defer(fn func()) {
	glib.IdleAdd(func() {
		fn()
	})
}
