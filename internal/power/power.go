package power

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/chess10kp/webdesk/internal/bridge"
	"github.com/chess10kp/webdesk/internal/system"
)

// Command is a power action the desktop may request.
type Command int

const (
	Shutdown Command = iota + 1
	Restart
	Sleep
)

var commandNames = map[string]Command{
	"shutdown": Shutdown,
	"restart":  Restart,
	"sleep":    Sleep,
}

func ParseCommand(name string) (Command, bool) {
	c, ok := commandNames[name]
	return c, ok
}

func (c Command) String() string {
	switch c {
	case Shutdown:
		return "shutdown"
	case Restart:
		return "restart"
	case Sleep:
		return "sleep"
	}
	return "unknown"
}

// Verb is the service-control verb for c.
func (c Command) Verb() string {
	switch c {
	case Shutdown:
		return "poweroff"
	case Restart:
		return "reboot"
	case Sleep:
		return "suspend"
	}
	return ""
}

// IconName is the themed icon shown for c in the power menu.
func (c Command) IconName() string {
	switch c {
	case Shutdown:
		return "system-shutdown"
	case Restart:
		return "view-refresh"
	case Sleep:
		return "system-suspend"
	}
	return ""
}

// Commands lists every power command in menu order.
func Commands() []Command {
	return []Command{Shutdown, Restart, Sleep}
}

// Controller runs power commands through the service-control binary.
type Controller struct {
	runner system.Runner
	binary string
	logger *log.Logger
}

func NewController(runner system.Runner, binary string, logger *log.Logger) *Controller {
	if binary == "" {
		binary = "systemctl"
	}
	return &Controller{runner: runner, binary: binary, logger: logger}
}

// Execute spawns the two-token command for name without waiting for it.
// Unknown names are a no-op.
func (c *Controller) Execute(name string) error {
	cmd, ok := ParseCommand(name)
	if !ok {
		c.logger.Debug("ignoring unknown power command", "command", name)
		return nil
	}

	if _, err := c.runner.LookPath(c.binary); err != nil {
		c.logger.Warn("service control not available", "binary", c.binary)
		return fmt.Errorf("%s %s: %w", c.binary, cmd.Verb(), bridge.ErrUnsupported)
	}

	c.logger.Info("running power command", "command", cmd, "binary", c.binary)
	if err := c.runner.Start(c.binary, cmd.Verb()); err != nil {
		return fmt.Errorf("power command %s failed: %w", cmd, err)
	}
	return nil
}
