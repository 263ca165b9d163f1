package core

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gotk3/gotk3/glib"

	"github.com/chess10kp/webdesk/internal/apps"
	"github.com/chess10kp/webdesk/internal/bridge"
	"github.com/chess10kp/webdesk/internal/config"
	"github.com/chess10kp/webdesk/internal/icons"
	"github.com/chess10kp/webdesk/internal/ipc"
	"github.com/chess10kp/webdesk/internal/power"
	"github.com/chess10kp/webdesk/internal/shell"
	"github.com/chess10kp/webdesk/internal/system"
	"github.com/chess10kp/webdesk/internal/ui"
	"github.com/chess10kp/webdesk/internal/wallpaper"
	"github.com/chess10kp/webdesk/internal/wm"
)

// App is the desktop shell process.
type App struct {
	config   *config.Config
	logger   *log.Logger
	quitOnce sync.Once
	sigChan  chan os.Signal

	ctx    context.Context
	cancel context.CancelFunc

	host       *ui.Host
	dispatcher *bridge.Dispatcher
	shell      *shell.Shell
	tracker    *wm.Tracker
	watcher    *apps.Watcher
	socket     *ipc.SocketServer
	dbus       *ipc.DBusService
}

func NewApp(cfg *config.Config, logger *log.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		config:  cfg,
		logger:  logger,
		sigChan: make(chan os.Signal, 1),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Run builds every component and blocks in the main loop until Quit.
func (a *App) Run() error {
	signal.Notify(a.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig, ok := <-a.sigChan
		if !ok {
			return
		}
		a.logger.Info("received signal", "signal", sig)
		a.Quit()
	}()

	a.logger.Info("webdesk starting")

	if err := a.initialize(); err != nil {
		a.cancel()
		return err
	}

	a.host.Run()

	a.shutdown()
	a.host.Destroy()
	return nil
}

func (a *App) initialize() error {
	a.logger.Debug("initializing components")
	cfg := a.config

	host, err := ui.NewHost(cfg, a.logger.WithPrefix("[UI]"))
	if err != nil {
		return fmt.Errorf("failed to create desktop window: %w", err)
	}
	a.host = host
	ui.SetupStyles(a.logger)

	go a.monitorGTKMainLoop()

	sched := ui.IdleScheduler{}
	runner := system.NewReal()
	emitter := bridge.NewEmitter(host, a.logger.WithPrefix("[BRIDGE]"))

	lookup, err := ui.IconLookup()
	if err != nil {
		a.logger.Warn("icon theme unavailable", "err", err)
		lookup = func(string, int) (string, bool) { return "", false }
	}
	dockIcons, err := icons.NewCache(lookup, cfg.Dock.IconSize, cfg.Dock.IconCacheSize)
	if err != nil {
		return err
	}
	powerIcons, err := icons.NewCache(lookup, cfg.Power.IconSize, len(power.Commands()))
	if err != nil {
		return err
	}

	dirs := apps.DefaultDirs(cfg.Dock.UseXDGDirs, cfg.Dock.ExtraDirs)
	appsLogger := a.logger.WithPrefix("[APPS]")
	loader := apps.NewLoader(dirs, runner.LookPath, cfg.Dock.ParseWorkers, appsLogger)
	dock := apps.NewDock(cfg.Dock.CuratedFile, loader, dockIcons, appsLogger)

	trackerLogger := a.logger.WithPrefix("[TRACKER]")
	backend := wm.Detect(a.ctx, cfg.Tracker, trackerLogger)
	a.tracker = wm.NewTracker(backend, sched, func(names []string) {
		emitter.Emit(bridge.CallbackRunningIndicators, names)
	}, trackerLogger)

	a.shell = shell.New(shell.Deps{
		Emitter:    emitter,
		Power:      power.NewController(runner, cfg.Power.ServiceControl, a.logger.WithPrefix("[POWER]")),
		Wallpaper:  wallpaper.NewStore(cfg.Wallpaper.ConfigFile),
		Picker:     ui.NewPicker(host.Window(), a.logger.WithPrefix("[PICKER]")),
		Dock:       dock,
		Icons:      powerIcons,
		Tracker:    a.tracker,
		Runner:     runner,
		MaxResults: cfg.Search.MaxResults,
		Logger:     a.logger.WithPrefix("[SHELL]"),
	})
	a.dispatcher = bridge.NewDispatcher(a.shell, a.logger.WithPrefix("[BRIDGE]"))

	if err := host.BindBridge(a.dispatcher.Dispatch); err != nil {
		return err
	}
	host.Load()

	a.tracker.Start(a.ctx)

	if cfg.Dock.Watch {
		a.watcher = apps.NewWatcher(dock.CuratedPath(), loader.Dirs(), func() {
			sched.Defer(a.shell.PushDock)
		}, appsLogger)
		go func() {
			if err := a.watcher.Run(a.ctx); err != nil {
				appsLogger.Warn("dock watcher stopped", "err", err)
			}
		}()
	}

	ipcLogger := a.logger.WithPrefix("[IPC]")
	if cfg.IPC.Socket {
		socket := ipc.NewSocketServer(cfg.SocketPath, a.dispatcher.Dispatch, sched, ipcLogger)
		if err := socket.Start(); err != nil {
			ipcLogger.Error("failed to start IPC server", "err", err)
		} else {
			a.socket = socket
		}
	}
	if cfg.IPC.DBus {
		service := ipc.NewDBusService(cfg.AppID, a.dispatcher.Dispatch, sched, ipcLogger)
		if err := service.Start(); err != nil {
			ipcLogger.Error("failed to start D-Bus service", "err", err)
		} else {
			a.dbus = service
		}
	}

	a.logger.Info("initialization complete", "tracker", a.tracker.BackendName())
	return nil
}

// Quit stops the main loop. Safe from any goroutine; only the first call
// has an effect.
func (a *App) Quit() {
	a.quitOnce.Do(func() {
		a.logger.Info("shutting down")
		if a.host != nil {
			a.host.Terminate()
		}
	})
}

func (a *App) shutdown() {
	signal.Stop(a.sigChan)
	a.cancel()

	if a.dbus != nil {
		a.dbus.Stop()
	}
	if a.socket != nil {
		a.socket.Stop()
	}
}

// monitorGTKMainLoop warns when the main loop stops servicing idle callbacks.
func (a *App) monitorGTKMainLoop() {
	monitor := a.logger.WithPrefix("[MONITOR]")
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		monitor.Debug("runtime", "goroutines", runtime.NumGoroutine(), "alloc_mb", m.Alloc/1024/1024, "heap_objects", m.HeapObjects)

		done := make(chan bool, 1)
		glib.IdleAdd(func() {
			done <- true
		})

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			monitor.Warn("GTK main loop appears to be blocked (idle callback not run in 2s)")
		}
	}
}
