package wm

import (
	"context"
	"os"

	"github.com/charmbracelet/log"

	"github.com/chess10kp/webdesk/internal/config"
)

type environment struct {
	getenv      func(string) string
	connectSway func(ctx context.Context) (Backend, error)
	connectX11  func() (Backend, error)
}

// Detect picks the backend named by cfg. "auto" prefers sway, then an EWMH
// window manager on $DISPLAY. A nil result means tracking is unavailable.
func Detect(ctx context.Context, cfg config.TrackerConfig, logger *log.Logger) Backend {
	env := environment{
		getenv: os.Getenv,
		connectSway: func(ctx context.Context) (Backend, error) {
			return NewSway(ctx, logger)
		},
		connectX11: func() (Backend, error) {
			return NewX11(logger)
		},
	}
	return detect(ctx, cfg, env, logger)
}

func detect(ctx context.Context, cfg config.TrackerConfig, env environment, logger *log.Logger) Backend {
	trySway := func() Backend {
		backend, err := env.connectSway(ctx)
		if err != nil {
			logger.Debug("sway unavailable", "err", err)
			return nil
		}
		return backend
	}
	tryX11 := func() Backend {
		if env.getenv("DISPLAY") == "" {
			logger.Debug("no X display")
			return nil
		}
		backend, err := env.connectX11()
		if err != nil {
			logger.Debug("X11 unavailable", "err", err)
			return nil
		}
		return backend
	}

	switch cfg.Backend {
	case "none":
		return nil
	case "sway":
		return trySway()
	case "x11":
		return tryX11()
	}

	if env.getenv("SWAYSOCK") != "" {
		if backend := trySway(); backend != nil {
			return backend
		}
	}
	return tryX11()
}
