package wm

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joshuarubin/go-sway"
)

// Sway talks to sway over its IPC socket.
type Sway struct {
	client sway.Client
	logger *log.Logger
}

// NewSway connects to the socket named by $SWAYSOCK.
func NewSway(ctx context.Context, logger *log.Logger) (*Sway, error) {
	client, err := sway.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sway: %w", err)
	}
	return &Sway{client: client, logger: logger}, nil
}

func (s *Sway) Name() string {
	return "sway"
}

func (s *Sway) Windows(ctx context.Context) ([]Window, error) {
	tree, err := s.client.GetTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sway tree: %w", err)
	}
	return swayWindows(tree), nil
}

func (s *Sway) Activate(ctx context.Context, w Window) error {
	if _, err := s.client.RunCommand(ctx, fmt.Sprintf("[con_id=%s] focus", w.ID)); err != nil {
		return fmt.Errorf("sway focus failed: %w", err)
	}
	return nil
}

// Watch blocks on a window-event subscription.
func (s *Sway) Watch(ctx context.Context, notify func()) error {
	handler := &windowEvents{
		EventHandler: sway.NoOpEventHandler(),
		notify:       notify,
	}
	err := sway.Subscribe(ctx, handler, sway.EventTypeWindow)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

type windowEvents struct {
	sway.EventHandler
	notify func()
}

func (h *windowEvents) Window(_ context.Context, e sway.WindowEvent) {
	switch string(e.Change) {
	case "new", "close", "focus":
		h.notify()
	}
}

// swayWindows flattens the layout tree into its leaf windows.
func swayWindows(root *sway.Node) []Window {
	var windows []Window

	var walk func(n *sway.Node)
	walk = func(n *sway.Node) {
		if n == nil {
			return
		}

		if w, ok := swayWindow(n); ok {
			windows = append(windows, w)
		}
		for _, child := range n.Nodes {
			walk(child)
		}
		for _, child := range n.FloatingNodes {
			walk(child)
		}
	}
	walk(root)

	return windows
}

func swayWindow(n *sway.Node) (Window, bool) {
	nodeType := string(n.Type)
	if nodeType != "con" && nodeType != "floating_con" {
		return Window{}, false
	}

	class := ""
	switch {
	case n.AppID != nil && *n.AppID != "":
		class = *n.AppID
	case n.WindowProperties != nil:
		class = n.WindowProperties.Class
	default:
		// split containers carry neither
		return Window{}, false
	}

	return Window{
		ID:     strconv.FormatInt(n.ID, 10),
		Class:  class,
		Title:  n.Name,
		Normal: true,
	}, true
}
