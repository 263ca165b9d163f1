package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnsupported marks an operation the current platform cannot perform, as
// opposed to one that was attempted and failed.
var ErrUnsupported = errors.New("operation unsupported on this platform")

// Action is the closed set of requests the web layer may send.
type Action int

const (
	ActionUnknown Action = iota
	ActionGetDockApps
	ActionGetPowerIcons
	ActionOpenBackgroundPicker
	ActionGetSavedBackground
	ActionLaunchApp
	ActionFocusApp
	ActionPowerCommand
	ActionSearchApps
	ActionGetRunningApps
)

var actionNames = map[Action]string{
	ActionGetDockApps:          "get_dock_apps",
	ActionGetPowerIcons:        "get_power_icons",
	ActionOpenBackgroundPicker: "open_bg_picker",
	ActionGetSavedBackground:   "get_saved_background",
	ActionLaunchApp:            "launch_app",
	ActionFocusApp:             "focus_app",
	ActionPowerCommand:         "power_command",
	ActionSearchApps:           "search_apps",
	ActionGetRunningApps:       "get_running_apps",
}

var actionsByName = func() map[string]Action {
	m := make(map[string]Action, len(actionNames))
	for a, name := range actionNames {
		m[name] = a
	}
	return m
}()

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAction resolves a wire name by exact match.
func ParseAction(name string) (Action, bool) {
	a, ok := actionsByName[name]
	return a, ok
}

// Actions lists every dispatchable action.
func Actions() []Action {
	return []Action{
		ActionGetDockApps,
		ActionGetPowerIcons,
		ActionOpenBackgroundPicker,
		ActionGetSavedBackground,
		ActionLaunchApp,
		ActionFocusApp,
		ActionPowerCommand,
		ActionSearchApps,
		ActionGetRunningApps,
	}
}

// Message is the inbound JSON envelope: {"action": ..., "command"?: ...}.
type Message struct {
	Action  string  `json:"action"`
	Command *string `json:"command,omitempty"`
}

// CommandValue returns the command argument or "" when absent.
func (m Message) CommandValue() string {
	if m.Command == nil {
		return ""
	}
	return *m.Command
}

// ParseMessage decodes an inbound bridge payload.
func ParseMessage(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("failed to unmarshal bridge message: %w", err)
	}
	return msg, nil
}

// NewMessage builds a message for the given action, used by the IPC client.
func NewMessage(a Action, command string) Message {
	msg := Message{Action: a.String()}
	if command != "" {
		msg.Command = &command
	}
	return msg
}

func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
