package system

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

func TestMockLookPath(t *testing.T) {
	m := NewMock()
	m.AddPath("systemctl")

	if path, err := m.LookPath("systemctl"); err != nil || path != "/usr/bin/systemctl" {
		t.Errorf("Expected /usr/bin/systemctl, got '%s' (%v)", path, err)
	}

	_, err := m.LookPath("missing")
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("Expected exec.ErrNotFound, got %v", err)
	}
}

func TestMockRecordsCommands(t *testing.T) {
	m := NewMock()
	m.Outputs["pgrep -x foot"] = ExecResult{Output: "listing"}

	if err := m.Start("sh", "-c", "firefox --new-window"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	out, err := m.Output(context.Background(), "pgrep", "-x", "foot")
	if err != nil || out != "listing" {
		t.Errorf("Expected canned output, got '%s' (%v)", out, err)
	}

	started := m.StartedCommands()
	if len(started) != 1 || started[0] != "sh -c firefox --new-window" {
		t.Errorf("Unexpected start log: %v", started)
	}
	if len(m.Ran) != 1 || m.Ran[0] != "pgrep -x foot" {
		t.Errorf("Unexpected output log: %v", m.Ran)
	}
}
