package ui

import (
	"fmt"

	"github.com/gotk3/gotk3/gtk"

	"github.com/chess10kp/webdesk/internal/icons"
)

// IconLookup resolves themed icon names to files through the default GTK
// icon theme.
func IconLookup() (icons.LookupFunc, error) {
	theme, err := gtk.IconThemeGetDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to get default icon theme: %w", err)
	}

	return func(name string, size int) (string, bool) {
		if !theme.HasIcon(name) {
			return "", false
		}
		info, err := theme.LookupIcon(name, size, gtk.IconLookupFlags(0))
		if err != nil || info == nil {
			return "", false
		}
		path := info.GetFilename()
		return path, path != ""
	}, nil
}
