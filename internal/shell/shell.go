// Package shell implements the host side of every bridge action.
package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/chess10kp/webdesk/internal/apps"
	"github.com/chess10kp/webdesk/internal/bridge"
	"github.com/chess10kp/webdesk/internal/icons"
	"github.com/chess10kp/webdesk/internal/power"
	"github.com/chess10kp/webdesk/internal/system"
	"github.com/chess10kp/webdesk/internal/wallpaper"
)

// Emitter delivers a callback to the page.
type Emitter interface {
	Emit(cb bridge.Callback, payload any)
}

// Picker asks the user for an image file. ok is false when cancelled.
type Picker interface {
	PickImage() (path string, ok bool)
}

// Tracker is the running-application tracker.
type Tracker interface {
	Refresh()
	Focus(token string) error
}

// Shell wires the bridge actions to the components that carry them out.
type Shell struct {
	emitter    Emitter
	power      *power.Controller
	wallpaper  *wallpaper.Store
	picker     Picker
	dock       *apps.Dock
	icons      icons.Resolver
	tracker    Tracker
	runner     system.Runner
	maxResults int
	logger     *log.Logger
}

// Deps lists the collaborators a Shell is built from. Picker, Tracker and
// Icons may be nil.
type Deps struct {
	Emitter    Emitter
	Power      *power.Controller
	Wallpaper  *wallpaper.Store
	Picker     Picker
	Dock       *apps.Dock
	Icons      icons.Resolver
	Tracker    Tracker
	Runner     system.Runner
	MaxResults int
	Logger     *log.Logger
}

func New(deps Deps) *Shell {
	return &Shell{
		emitter:    deps.Emitter,
		power:      deps.Power,
		wallpaper:  deps.Wallpaper,
		picker:     deps.Picker,
		dock:       deps.Dock,
		icons:      deps.Icons,
		tracker:    deps.Tracker,
		runner:     deps.Runner,
		maxResults: deps.MaxResults,
		logger:     deps.Logger,
	}
}

var _ bridge.Handler = (*Shell)(nil)

func (s *Shell) GetDockApps() error {
	entries, source := s.dock.Entries()
	s.logger.Debug("dock listing", "source", source, "count", len(entries))
	s.emitter.Emit(bridge.CallbackDockData, entries)
	return nil
}

// PushDock re-sends the dock listing without a page request, e.g. after the
// application directories changed.
func (s *Shell) PushDock() {
	if err := s.GetDockApps(); err != nil {
		s.logger.Error("failed to push dock listing", "err", err)
	}
}

func (s *Shell) GetPowerIcons() error {
	paths := make(map[string]string, len(power.Commands()))
	for _, cmd := range power.Commands() {
		uri := ""
		if s.icons != nil {
			uri = s.icons.Resolve(cmd.IconName())
		}
		paths[cmd.String()] = uri
	}
	s.emitter.Emit(bridge.CallbackPowerIcons, paths)
	return nil
}

func (s *Shell) OpenBackgroundPicker() error {
	if s.picker == nil {
		return fmt.Errorf("file chooser: %w", bridge.ErrUnsupported)
	}

	path, ok := s.picker.PickImage()
	if !ok || path == "" {
		return nil
	}

	if err := s.wallpaper.Save(path); err != nil {
		return fmt.Errorf("failed to save wallpaper: %w", err)
	}

	s.logger.Info("wallpaper changed", "path", path)
	s.emitter.Emit(bridge.CallbackApplyBackground, wallpaper.URI(path))
	return nil
}

func (s *Shell) GetSavedBackground() error {
	path, ok := s.wallpaper.Load()
	if !ok {
		s.emitter.Emit(bridge.CallbackSavedBackground, nil)
		return nil
	}
	s.emitter.Emit(bridge.CallbackSavedBackground, wallpaper.URI(path))
	return nil
}

// LaunchApp runs command through the shell, detached.
func (s *Shell) LaunchApp(command string) error {
	if strings.TrimSpace(command) == "" {
		return nil
	}

	s.logger.Info("launching", "command", command)
	if err := s.runner.Start("sh", "-c", command); err != nil {
		return fmt.Errorf("failed to launch %q: %w", command, err)
	}
	return nil
}

func (s *Shell) FocusApp(token string) error {
	if token == "" || s.tracker == nil {
		return nil
	}
	return s.tracker.Focus(token)
}

func (s *Shell) PowerCommand(command string) error {
	return s.power.Execute(command)
}

func (s *Shell) SearchApps(query string) error {
	entries, _ := s.dock.Entries()
	s.emitter.Emit(bridge.CallbackSearchResults, apps.Search(entries, query, s.maxResults))
	return nil
}

func (s *Shell) GetRunningApps() error {
	if s.tracker == nil {
		return nil
	}
	s.tracker.Refresh()
	return nil
}
