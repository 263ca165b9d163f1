// Package layer places GTK windows on wlr-layer-shell surfaces.
package layer

/*
#cgo pkg-config: gtk-layer-shell-0
#include <stdlib.h>
#include <gtk-layer-shell.h>
*/
import "C"
import "unsafe"

// Layer is a layer-shell stacking layer.
type Layer int

const (
	LayerBackground Layer = 0
	LayerBottom     Layer = 1
	LayerTop        Layer = 2
	LayerOverlay    Layer = 3
)

type Edge int

const (
	EdgeLeft   Edge = 0
	EdgeRight  Edge = 1
	EdgeTop    Edge = 2
	EdgeBottom Edge = 3
)

var allEdges = []Edge{EdgeLeft, EdgeRight, EdgeTop, EdgeBottom}

type KeyboardMode int

const (
	KeyboardModeNone      KeyboardMode = 0
	KeyboardModeExclusive KeyboardMode = 1
	KeyboardModeOnDemand  KeyboardMode = 2
)

// IsSupported reports whether the compositor speaks layer-shell. False on X11.
func IsSupported() bool {
	return C.gtk_layer_is_supported() != 0
}

// Surface configures one unrealized GtkWindow.
type Surface struct {
	window *C.GtkWindow
}

// Init turns window into a layer surface. window must not be realized yet.
func Init(window unsafe.Pointer) *Surface {
	s := &Surface{window: (*C.GtkWindow)(window)}
	C.gtk_layer_init_for_window(s.window)
	return s
}

func (s *Surface) SetNamespace(namespace string) {
	cs := C.CString(namespace)
	defer C.free(unsafe.Pointer(cs))
	C.gtk_layer_set_namespace(s.window, cs)
}

func (s *Surface) SetLayer(l Layer) {
	C.gtk_layer_set_layer(s.window, C.GtkLayerShellLayer(l))
}

func (s *Surface) SetAnchor(edge Edge, anchored bool) {
	var anchor C.gboolean
	if anchored {
		anchor = 1
	}
	C.gtk_layer_set_anchor(s.window, C.GtkLayerShellEdge(edge), anchor)
}

// SetExclusiveZone reserves space; -1 ignores other surfaces' zones too.
func (s *Surface) SetExclusiveZone(zone int) {
	C.gtk_layer_set_exclusive_zone(s.window, C.int(zone))
}

func (s *Surface) SetKeyboardMode(mode KeyboardMode) {
	C.gtk_layer_set_keyboard_mode(s.window, C.GtkLayerShellKeyboardMode(mode))
}

// Background stretches the surface over the whole output beneath every
// other window, the way a desktop sits.
func (s *Surface) Background(namespace string) {
	s.SetNamespace(namespace)
	s.SetLayer(LayerBackground)
	for _, edge := range allEdges {
		s.SetAnchor(edge, true)
	}
	s.SetExclusiveZone(-1)
	s.SetKeyboardMode(KeyboardModeOnDemand)
}
