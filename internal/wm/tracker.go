package wm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const refreshTimeout = 2 * time.Second

// Tracker keeps the page's running-app indicators current. Built without a
// backend it is disabled and every operation is a no-op.
type Tracker struct {
	backend Backend
	sched   Scheduler
	emit    func(names []string)
	logger  *log.Logger

	mu      sync.Mutex
	pending bool

	disabledOnce sync.Once
}

func NewTracker(backend Backend, sched Scheduler, emit func(names []string), logger *log.Logger) *Tracker {
	return &Tracker{
		backend: backend,
		sched:   sched,
		emit:    emit,
		logger:  logger,
	}
}

func (t *Tracker) Enabled() bool {
	return t.backend != nil
}

// BackendName reports the active backend, or "none".
func (t *Tracker) BackendName() string {
	if t.backend == nil {
		return "none"
	}
	return t.backend.Name()
}

// Start subscribes to window changes and schedules the first refresh.
func (t *Tracker) Start(ctx context.Context) {
	if !t.Enabled() {
		t.disabledOnce.Do(func() {
			t.logger.Info("no window manager backend, running-app tracking disabled")
		})
		return
	}

	t.logger.Info("tracking running applications", "backend", t.backend.Name())

	go func() {
		if err := t.backend.Watch(ctx, t.schedule); err != nil && ctx.Err() == nil {
			t.logger.Warn("window watch stopped", "backend", t.backend.Name(), "err", err)
		}
	}()

	t.schedule()
}

// schedule queues a refresh on the UI loop. Events arriving while one is
// already queued are folded into it.
func (t *Tracker) schedule() {
	t.mu.Lock()
	if t.pending {
		t.mu.Unlock()
		return
	}
	t.pending = true
	t.mu.Unlock()

	t.sched.Defer(func() {
		t.mu.Lock()
		t.pending = false
		t.mu.Unlock()

		t.Refresh()
	})
}

// Refresh pushes the current running-app list to the page.
func (t *Tracker) Refresh() {
	if !t.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	names, err := t.Running(ctx)
	if err != nil {
		t.logger.Debug("failed to list windows", "err", err)
		return
	}
	t.emit(names)
}

// Running returns the sorted, lowercased, de-duplicated class names of all
// normal windows. It never returns nil on success.
func (t *Tracker) Running(ctx context.Context) ([]string, error) {
	if !t.Enabled() {
		return []string{}, nil
	}

	windows, err := t.backend.Windows(ctx)
	if err != nil {
		return nil, err
	}
	return runningNames(windows), nil
}

func runningNames(windows []Window) []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, w := range windows {
		if !w.Normal {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(w.Class))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Focus activates the first window whose class contains token, ignoring case.
// No match is not an error.
func (t *Tracker) Focus(token string) error {
	token = strings.ToLower(strings.TrimSpace(token))
	if !t.Enabled() || token == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	windows, err := t.backend.Windows(ctx)
	if err != nil {
		return fmt.Errorf("failed to list windows: %w", err)
	}

	for _, w := range windows {
		if w.Class == "" || !strings.Contains(strings.ToLower(w.Class), token) {
			continue
		}
		if err := t.backend.Activate(ctx, w); err != nil {
			return fmt.Errorf("failed to activate %s: %w", w.Class, err)
		}
		return nil
	}

	t.logger.Debug("no window to focus", "token", token)
	return nil
}
