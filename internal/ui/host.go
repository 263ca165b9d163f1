// Package ui hosts the desktop page: a GTK window carrying a web view, plus
// the GTK-side capabilities the handlers need.
package ui

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/charmbracelet/log"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	webview "github.com/webview/webview_go"

	"github.com/chess10kp/webdesk/internal/config"
	"github.com/chess10kp/webdesk/internal/layer"
)

// Host owns the desktop window and its web view.
type Host struct {
	view   webview.WebView
	window *gtk.Window
	cfg    *config.Config
	logger *log.Logger
}

// NewHost creates the web view and turns its window into the desktop
// background. It must run on the thread that will run the main loop.
func NewHost(cfg *config.Config, logger *log.Logger) (*Host, error) {
	view := webview.New(cfg.Web.Debug)
	if view == nil {
		return nil, fmt.Errorf("failed to create webview")
	}

	window, err := wrapWindow(view.Window())
	if err != nil {
		view.Destroy()
		return nil, err
	}

	h := &Host{
		view:   view,
		window: window,
		cfg:    cfg,
		logger: logger,
	}
	h.setupWindow()
	return h, nil
}

// wrapWindow adopts the web view's native GtkWindow as a gotk3 window.
func wrapWindow(ptr unsafe.Pointer) (*gtk.Window, error) {
	if ptr == nil {
		return nil, fmt.Errorf("webview has no native window")
	}
	obj := glib.Take(ptr)
	return &gtk.Window{Bin: gtk.Bin{Container: gtk.Container{Widget: gtk.Widget{
		InitiallyUnowned: glib.InitiallyUnowned{Object: obj},
	}}}}, nil
}

func (h *Host) setupWindow() {
	w := h.window
	wc := h.cfg.Window

	// webview shows its window straight away; layer shell and type hints only
	// apply to a window that has not been realized yet.
	w.Hide()
	w.Unrealize()

	w.SetTitle(wc.Title)
	w.SetName("webdesk-window")
	w.SetDecorated(wc.Decorated)
	w.SetKeepBelow(wc.KeepBelow)
	w.SetSkipTaskbarHint(true)
	w.SetSkipPagerHint(true)

	if wc.LayerShell && layer.IsSupported() {
		layer.Init(unsafe.Pointer(w.GObject)).Background(h.cfg.AppName)
		h.logger.Debug("using layer shell background surface")
	} else {
		w.SetTypeHint(gdk.WINDOW_TYPE_HINT_DESKTOP)
		if wc.Fullscreen {
			w.Fullscreen()
		}
	}

	w.ShowAll()
}

func (h *Host) Window() *gtk.Window {
	return h.window
}

// Eval runs js in the page on the UI loop. Safe from any goroutine.
func (h *Host) Eval(js string) {
	h.view.Dispatch(func() {
		h.view.Eval(js)
	})
}

// Load navigates to the configured desktop page. A missing page leaves the
// desktop blank.
func (h *Host) Load() {
	path := h.cfg.Web.HTMLPath
	if _, err := os.Stat(path); err != nil {
		h.logger.Warn("desktop page not found, showing blank desktop", "path", path, "err", err)
		h.view.SetHtml(blankPage)
		return
	}
	h.logger.Info("loading desktop page", "path", path)
	h.view.Navigate("file://" + path)
}

const blankPage = `<!DOCTYPE html><html><body style="margin:0;background:#000"></body></html>`

// Run blocks in the GTK main loop until Terminate.
func (h *Host) Run() {
	h.view.Run()
}

// Terminate stops the main loop. Safe from any goroutine.
func (h *Host) Terminate() {
	h.view.Dispatch(func() {
		h.view.Terminate()
	})
}

func (h *Host) Destroy() {
	h.view.Destroy()
}
