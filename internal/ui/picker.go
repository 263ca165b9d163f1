package ui

import (
	"github.com/charmbracelet/log"
	"github.com/gotk3/gotk3/gtk"
)

// Picker shows a GTK file chooser restricted to images.
type Picker struct {
	parent *gtk.Window
	logger *log.Logger
}

func NewPicker(parent *gtk.Window, logger *log.Logger) *Picker {
	return &Picker{parent: parent, logger: logger}
}

// PickImage blocks in a modal dialog. ok is false when the user cancels.
func (p *Picker) PickImage() (string, bool) {
	dialog, err := gtk.FileChooserDialogNewWith2Buttons(
		"Select Background",
		p.parent,
		gtk.FILE_CHOOSER_ACTION_OPEN,
		"Cancel", gtk.RESPONSE_CANCEL,
		"Open", gtk.RESPONSE_ACCEPT,
	)
	if err != nil {
		p.logger.Error("failed to create file chooser", "err", err)
		return "", false
	}
	defer dialog.Destroy()

	filter, err := gtk.FileFilterNew()
	if err == nil {
		filter.SetName("Images")
		filter.AddPixbufFormats()
		filter.AddMimeType("image/*")
		dialog.AddFilter(filter)
	}

	if dialog.Run() != gtk.RESPONSE_ACCEPT {
		return "", false
	}

	path := dialog.GetFilename()
	return path, path != ""
}
