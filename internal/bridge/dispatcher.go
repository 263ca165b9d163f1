package bridge

import (
	"errors"

	"github.com/charmbracelet/log"
)

// Handler performs the host side of each action. Implementations return an
// error wrapping ErrUnsupported when a capability is missing.
type Handler interface {
	GetDockApps() error
	GetPowerIcons() error
	OpenBackgroundPicker() error
	GetSavedBackground() error
	LaunchApp(command string) error
	FocusApp(token string) error
	PowerCommand(command string) error
	SearchApps(query string) error
	GetRunningApps() error
}

// Dispatcher routes inbound bridge messages to a Handler. It is
// fire-and-forget: nothing it does is reported back to the page.
type Dispatcher struct {
	handler Handler
	logger  *log.Logger
}

func NewDispatcher(handler Handler, logger *log.Logger) *Dispatcher {
	return &Dispatcher{handler: handler, logger: logger}
}

// Dispatch decodes raw and runs the matching handler. Failures of any kind
// are logged and swallowed.
func (d *Dispatcher) Dispatch(raw []byte) {
	msg, err := ParseMessage(raw)
	if err != nil {
		d.logger.Debug("bridge message error", "err", err)
		return
	}

	action, ok := ParseAction(msg.Action)
	if !ok {
		d.logger.Debug("ignoring unknown action", "action", msg.Action)
		return
	}

	d.run(action, msg)
}

func (d *Dispatcher) run(action Action, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked", "action", action, "panic", r)
		}
	}()

	var err error
	switch action {
	case ActionGetDockApps:
		err = d.handler.GetDockApps()
	case ActionGetPowerIcons:
		err = d.handler.GetPowerIcons()
	case ActionOpenBackgroundPicker:
		err = d.handler.OpenBackgroundPicker()
	case ActionGetSavedBackground:
		err = d.handler.GetSavedBackground()
	case ActionLaunchApp:
		err = d.handler.LaunchApp(msg.CommandValue())
	case ActionFocusApp:
		err = d.handler.FocusApp(msg.CommandValue())
	case ActionPowerCommand:
		err = d.handler.PowerCommand(msg.CommandValue())
	case ActionSearchApps:
		err = d.handler.SearchApps(msg.CommandValue())
	case ActionGetRunningApps:
		err = d.handler.GetRunningApps()
	case ActionUnknown:
		return
	}

	d.report(action, err)
}

func (d *Dispatcher) report(action Action, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrUnsupported) {
		d.logger.Warn("action unsupported", "action", action, "err", err)
		return
	}
	d.logger.Error("action failed", "action", action, "err", err)
}
