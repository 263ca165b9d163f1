package ui

import (
	"github.com/charmbracelet/log"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
)

// The page paints everything; GTK must not draw a background behind it.
const defaultStyles = `
#webdesk-window, #webdesk-window > * {
    background-color: transparent;
    border: none;
    margin: 0;
    padding: 0;
}
`

func SetupStyles(logger *log.Logger) {
	screen, err := gdk.ScreenGetDefault()
	if err != nil || screen == nil {
		logger.Warn("failed to get default screen", "err", err)
		return
	}

	provider, err := gtk.CssProviderNew()
	if err != nil {
		logger.Warn("failed to create CSS provider", "err", err)
		return
	}
	if err := provider.LoadFromData(defaultStyles); err != nil {
		logger.Warn("failed to load default styles", "err", err)
		return
	}

	gtk.AddProviderForScreen(screen, provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
}
