package power

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/chess10kp/webdesk/internal/bridge"
	"github.com/chess10kp/webdesk/internal/system"
)

func TestCommandMapping(t *testing.T) {
	testCases := []struct {
		name string
		verb string
		icon string
	}{
		{"shutdown", "poweroff", "system-shutdown"},
		{"restart", "reboot", "view-refresh"},
		{"sleep", "suspend", "system-suspend"},
	}

	for _, tc := range testCases {
		cmd, ok := ParseCommand(tc.name)
		if !ok {
			t.Fatalf("Expected '%s' to parse", tc.name)
		}
		if cmd.Verb() != tc.verb {
			t.Errorf("%s: expected verb '%s', got '%s'", tc.name, tc.verb, cmd.Verb())
		}
		if cmd.IconName() != tc.icon {
			t.Errorf("%s: expected icon '%s', got '%s'", tc.name, tc.icon, cmd.IconName())
		}
		if cmd.String() != tc.name {
			t.Errorf("Expected String() '%s', got '%s'", tc.name, cmd.String())
		}
	}

	if _, ok := ParseCommand("hibernate"); ok {
		t.Error("Expected 'hibernate' to be unmapped")
	}
}

func TestExecuteWithoutServiceControl(t *testing.T) {
	runner := system.NewMock()
	var buf bytes.Buffer
	c := NewController(runner, "systemctl", log.New(&buf))

	err := c.Execute("shutdown")
	if !errors.Is(err, bridge.ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported, got %v", err)
	}
	if len(runner.StartedCommands()) != 0 {
		t.Errorf("Expected no spawn, got %v", runner.StartedCommands())
	}
	if !strings.Contains(buf.String(), "WARN") {
		t.Errorf("Expected a warning to be logged, got %q", buf.String())
	}
}

func TestExecuteSpawnsTwoTokenCommand(t *testing.T) {
	testCases := map[string]string{
		"shutdown": "systemctl poweroff",
		"restart":  "systemctl reboot",
		"sleep":    "systemctl suspend",
	}

	for name, want := range testCases {
		runner := system.NewMock()
		runner.AddPath("systemctl")
		c := NewController(runner, "systemctl", log.New(&bytes.Buffer{}))

		if err := c.Execute(name); err != nil {
			t.Fatalf("%s: Execute failed: %v", name, err)
		}

		started := runner.StartedCommands()
		if len(started) != 1 || started[0] != want {
			t.Errorf("%s: expected exactly [%s], got %v", name, want, started)
		}
	}
}

func TestExecuteUnknownIsNoop(t *testing.T) {
	runner := system.NewMock()
	runner.AddPath("systemctl")
	c := NewController(runner, "", log.New(&bytes.Buffer{}))

	if err := c.Execute("logout"); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
	if len(runner.StartedCommands()) != 0 {
		t.Errorf("Expected no spawn, got %v", runner.StartedCommands())
	}
}

func TestExecuteReportsSpawnFailure(t *testing.T) {
	runner := system.NewMock()
	runner.AddPath("systemctl")
	runner.StartErr = errors.New("fork failed")
	c := NewController(runner, "systemctl", log.New(&bytes.Buffer{}))

	err := c.Execute("restart")
	if err == nil || errors.Is(err, bridge.ErrUnsupported) {
		t.Errorf("Expected a plain failure, got %v", err)
	}
}
