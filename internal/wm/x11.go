package wm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/charmbracelet/log"
)

// maxPropertyLength bounds property reads, in 32-bit units.
const maxPropertyLength = 1 << 16

var x11AtomNames = []string{
	"_NET_CLIENT_LIST",
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_NORMAL",
	"_NET_WM_WINDOW_TYPE_DIALOG",
	"WM_CLASS",
	"WM_NAME",
}

// X11 reads the EWMH client list of the root window and activates windows
// with _NET_ACTIVE_WINDOW client messages.
type X11 struct {
	conn   *xgb.Conn
	root   xproto.Window
	atoms  map[string]xproto.Atom
	logger *log.Logger
}

// NewX11 connects to the display named by $DISPLAY.
func NewX11(logger *log.Logger) (*X11, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	atoms, err := internAtoms(conn, x11AtomNames)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &X11{
		conn:   conn,
		root:   xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms:  atoms,
		logger: logger,
	}, nil
}

func internAtoms(conn *xgb.Conn, names []string) (map[string]xproto.Atom, error) {
	atoms := make(map[string]xproto.Atom, len(names))
	for _, name := range names {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return nil, fmt.Errorf("failed to intern %s: %w", name, err)
		}
		atoms[name] = reply.Atom
	}
	return atoms, nil
}

func (x *X11) Name() string {
	return "x11"
}

func (x *X11) property(win xproto.Window, name string) ([]byte, error) {
	reply, err := xproto.GetProperty(x.conn, false, win, x.atoms[name], xproto.GetPropertyTypeAny, 0, maxPropertyLength).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (x *X11) Windows(ctx context.Context) ([]Window, error) {
	value, err := x.property(x.root, "_NET_CLIENT_LIST")
	if err != nil {
		return nil, fmt.Errorf("failed to read _NET_CLIENT_LIST: %w", err)
	}

	var windows []Window
	for _, win := range windowList(value) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		class, err := x.property(win, "WM_CLASS")
		if err != nil {
			// the window went away between the list and this read
			x.logger.Debug("skipping window", "window", formatWindowID(win), "err", err)
			continue
		}

		title, _ := x.property(win, "_NET_WM_NAME")
		if len(title) == 0 {
			title, _ = x.property(win, "WM_NAME")
		}
		types, _ := x.property(win, "_NET_WM_WINDOW_TYPE")

		windows = append(windows, Window{
			ID:     formatWindowID(win),
			Class:  wmClassName(class),
			Title:  string(title),
			Normal: normalType(atomList(types), x.atoms["_NET_WM_WINDOW_TYPE_NORMAL"], x.atoms["_NET_WM_WINDOW_TYPE_DIALOG"]),
		})
	}
	return windows, nil
}

func (x *X11) Activate(ctx context.Context, w Window) error {
	win, err := parseWindowID(w.ID)
	if err != nil {
		return err
	}

	event := activateEvent(win, x.atoms["_NET_ACTIVE_WINDOW"])
	mask := uint32(xproto.EventMaskSubstructureNotify | xproto.EventMaskSubstructureRedirect)
	if err := xproto.SendEventChecked(x.conn, false, x.root, mask, string(event.Bytes())).Check(); err != nil {
		return fmt.Errorf("failed to activate window %s: %w", w.ID, err)
	}
	return nil
}

// activateEvent asks the window manager to focus win. Source indication 2
// marks a pager request.
func activateEvent(win xproto.Window, activeAtom xproto.Atom) xproto.ClientMessageEvent {
	return xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   activeAtom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{2, xproto.TimeCurrentTime, 0, 0, 0}),
	}
}

// Watch listens for PropertyNotify on the root window over a second
// connection, which is closed to unblock the event loop once ctx ends.
func (x *X11) Watch(ctx context.Context, notify func()) error {
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("failed to open X event connection: %w", err)
	}

	root := xproto.Setup(conn).DefaultScreen(conn).Root
	err = xproto.ChangeWindowAttributesChecked(conn, root, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to select root window events: %w", err)
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	clientList := x.atoms["_NET_CLIENT_LIST"]
	activeWindow := x.atoms["_NET_ACTIVE_WINDOW"]
	for {
		ev, err := conn.WaitForEvent()
		if ev == nil && err == nil {
			// connection closed
			return nil
		}
		if err != nil {
			x.logger.Debug("X error", "err", err)
			continue
		}

		if e, ok := ev.(xproto.PropertyNotifyEvent); ok {
			if e.Atom == clientList || e.Atom == activeWindow {
				notify()
			}
		}
	}
}

// windowList decodes a list of 32-bit window ids.
func windowList(value []byte) []xproto.Window {
	windows := make([]xproto.Window, 0, len(value)/4)
	for i := 0; i+4 <= len(value); i += 4 {
		windows = append(windows, xproto.Window(xgb.Get32(value[i:])))
	}
	return windows
}

func atomList(value []byte) []xproto.Atom {
	atoms := make([]xproto.Atom, 0, len(value)/4)
	for i := 0; i+4 <= len(value); i += 4 {
		atoms = append(atoms, xproto.Atom(xgb.Get32(value[i:])))
	}
	return atoms
}

// wmClassName returns the class half of WM_CLASS, which holds two
// NUL-terminated strings: instance then class.
func wmClassName(value []byte) string {
	parts := strings.Split(string(value), "\x00")
	if len(parts) >= 2 && parts[1] != "" {
		return parts[1]
	}
	return parts[0]
}

// normalType reports whether a window with the given _NET_WM_WINDOW_TYPE
// list is an application window. The first entry is the preferred type; a
// window without one is treated as normal.
func normalType(types []xproto.Atom, normal, dialog xproto.Atom) bool {
	if len(types) == 0 {
		return true
	}
	return types[0] == normal || types[0] == dialog
}

func formatWindowID(win xproto.Window) string {
	return fmt.Sprintf("0x%08x", uint32(win))
}

func parseWindowID(id string) (xproto.Window, error) {
	n, err := strconv.ParseUint(id, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q: %w", id, err)
	}
	return xproto.Window(n), nil
}
