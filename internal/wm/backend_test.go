package wm

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/joshuarubin/go-sway"

	"github.com/chess10kp/webdesk/internal/config"
	"github.com/chess10kp/webdesk/internal/logging"
)

const swayTree = `{
  "id": 1, "type": "root", "name": "root",
  "nodes": [{
    "id": 2, "type": "output", "name": "eDP-1",
    "nodes": [{
      "id": 3, "type": "workspace", "name": "1",
      "nodes": [
        {"id": 10, "type": "con", "name": "Firefox", "app_id": "firefox", "nodes": [], "floating_nodes": []},
        {"id": 11, "type": "con", "name": "", "nodes": [
          {"id": 12, "type": "con", "name": "xterm", "window_properties": {"class": "XTerm", "instance": "xterm", "title": "xterm"}, "nodes": [], "floating_nodes": []}
        ], "floating_nodes": []}
      ],
      "floating_nodes": [
        {"id": 20, "type": "floating_con", "name": "pavucontrol", "app_id": "pavucontrol", "nodes": [], "floating_nodes": []}
      ]
    }],
    "floating_nodes": []
  }],
  "floating_nodes": []
}`

func TestSwayWindows(t *testing.T) {
	var root sway.Node
	if err := json.Unmarshal([]byte(swayTree), &root); err != nil {
		t.Fatalf("Failed to decode tree: %v", err)
	}

	windows := swayWindows(&root)
	want := []Window{
		{ID: "10", Class: "firefox", Title: "Firefox", Normal: true},
		{ID: "12", Class: "XTerm", Title: "xterm", Normal: true},
		{ID: "20", Class: "pavucontrol", Title: "pavucontrol", Normal: true},
	}
	if !reflect.DeepEqual(windows, want) {
		t.Errorf("Expected %+v, got %+v", want, windows)
	}
}

func TestSwayWindowEventFilter(t *testing.T) {
	calls := 0
	h := &windowEvents{EventHandler: sway.NoOpEventHandler(), notify: func() { calls++ }}

	var e sway.WindowEvent
	for _, change := range []string{"new", "title", "focus", "move", "close"} {
		if err := json.Unmarshal([]byte(`{"change": "`+change+`"}`), &e); err != nil {
			t.Fatalf("Failed to decode event: %v", err)
		}
		h.Window(context.Background(), e)
	}

	if calls != 3 {
		t.Errorf("Expected 3 notifications, got %d", calls)
	}
}

// x11Value encodes 32-bit property items the way the X server sends them.
func x11Value(items ...uint32) []byte {
	b := make([]byte, 4*len(items))
	for i, v := range items {
		xgb.Put32(b[4*i:], v)
	}
	return b
}

func TestWindowList(t *testing.T) {
	got := windowList(append(x11Value(0x03c00003, 0x02a00004), 0x01))
	want := []xproto.Window{0x03c00003, 0x02a00004}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if got := windowList(nil); len(got) != 0 {
		t.Errorf("Expected no windows, got %v", got)
	}
}

func TestWMClassName(t *testing.T) {
	testCases := []struct {
		value string
		want  string
	}{
		{"Navigator\x00firefox\x00", "firefox"},
		{"org.gnome.Nautilus\x00Org.gnome.Nautilus\x00", "Org.gnome.Nautilus"},
		{"xterm\x00XTerm\x00", "XTerm"},
		{"lonely\x00", "lonely"},
		{"", ""},
	}

	for _, tc := range testCases {
		if got := wmClassName([]byte(tc.value)); got != tc.want {
			t.Errorf("wmClassName(%q): expected %q, got %q", tc.value, tc.want, got)
		}
	}
}

func TestNormalType(t *testing.T) {
	const normal, dialog, dock, desktop = xproto.Atom(10), xproto.Atom(11), xproto.Atom(12), xproto.Atom(13)

	testCases := []struct {
		name  string
		types []xproto.Atom
		want  bool
	}{
		{"untyped", nil, true},
		{"normal", []xproto.Atom{normal}, true},
		{"dialog", []xproto.Atom{dialog}, true},
		{"dock", []xproto.Atom{dock}, false},
		{"desktop", []xproto.Atom{desktop}, false},
		{"preferred type wins", []xproto.Atom{dock, normal}, false},
	}

	for _, tc := range testCases {
		if got := normalType(tc.types, normal, dialog); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}

	if got := atomList(x11Value(12, 10)); !reflect.DeepEqual(got, []xproto.Atom{dock, normal}) {
		t.Errorf("Unexpected atom list: %v", got)
	}
}

func TestWindowIDRoundTrip(t *testing.T) {
	id := formatWindowID(0x2a00004)
	if id != "0x02a00004" {
		t.Errorf("Expected 0x02a00004, got %s", id)
	}

	win, err := parseWindowID(id)
	if err != nil || win != 0x2a00004 {
		t.Errorf("Expected 0x2a00004, got %#x (%v)", win, err)
	}

	if _, err := parseWindowID("firefox"); err == nil {
		t.Error("Expected error for non-numeric id")
	}
}

func TestActivateEvent(t *testing.T) {
	ev := activateEvent(0x03c00003, 42)
	raw := ev.Bytes()

	if len(raw) != 32 {
		t.Fatalf("Expected 32-byte event, got %d", len(raw))
	}
	if raw[0] != xproto.ClientMessage || raw[1] != 32 {
		t.Errorf("Expected ClientMessage with format 32, got code %d format %d", raw[0], raw[1])
	}
	if got := xgb.Get32(raw[4:]); got != 0x03c00003 {
		t.Errorf("Expected target window, got %#x", got)
	}
	if got := xgb.Get32(raw[8:]); got != 42 {
		t.Errorf("Expected _NET_ACTIVE_WINDOW atom, got %d", got)
	}
	if got := xgb.Get32(raw[12:]); got != 2 {
		t.Errorf("Expected pager source indication, got %d", got)
	}
}

func TestRunningNamesFromX11Classes(t *testing.T) {
	windows := []Window{
		{ID: "0x01200003", Class: wmClassName([]byte("xfce4-panel\x00Xfce4-panel\x00")), Normal: false},
		{ID: "0x02a00004", Class: wmClassName([]byte("org.gnome.Nautilus\x00Org.gnome.Nautilus\x00")), Normal: true},
		{ID: "0x03c00003", Class: wmClassName([]byte("Navigator\x00firefox\x00")), Normal: true},
	}

	want := []string{"firefox", "org.gnome.nautilus"}
	if got := runningNames(windows); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

type stubBackend struct{ Backend }

func (stubBackend) Name() string { return "stub" }

type x11Stub struct{ Backend }

func (x11Stub) Name() string { return "x11" }

func TestDetect(t *testing.T) {
	swayOK := func(context.Context) (Backend, error) { return stubBackend{}, nil }
	swayDown := func(context.Context) (Backend, error) { return nil, errors.New("no socket") }

	x11OK := func() (Backend, error) { return x11Stub{}, nil }
	x11Down := func() (Backend, error) { return nil, errors.New("cannot open display") }

	testCases := []struct {
		name    string
		backend string
		env     map[string]string
		sway    func(context.Context) (Backend, error)
		x11     func() (Backend, error)
		want    string
	}{
		{"auto prefers sway", "auto", map[string]string{"SWAYSOCK": "/run/sway.sock", "DISPLAY": ":0"}, swayOK, x11OK, "stub"},
		{"auto falls back to x11", "auto", map[string]string{"SWAYSOCK": "/run/sway.sock", "DISPLAY": ":0"}, swayDown, x11OK, "x11"},
		{"auto x11 needs a server", "auto", map[string]string{"DISPLAY": ":0"}, swayOK, x11Down, "none"},
		{"auto without session", "auto", nil, swayOK, x11OK, "none"},
		{"forced none", "none", map[string]string{"SWAYSOCK": "/run/sway.sock"}, swayOK, x11OK, "none"},
		{"forced sway", "sway", nil, swayOK, x11OK, "stub"},
		{"forced x11", "x11", map[string]string{"DISPLAY": ":1"}, swayOK, x11OK, "x11"},
		{"forced x11 without display", "x11", nil, swayOK, x11OK, "none"},
	}

	for _, tc := range testCases {
		env := environment{
			getenv:      func(k string) string { return tc.env[k] },
			connectSway: tc.sway,
			connectX11:  tc.x11,
		}

		backend := detect(context.Background(), config.TrackerConfig{Backend: tc.backend}, env, logging.Discard())
		got := "none"
		if backend != nil {
			got = backend.Name()
		}
		if got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}
