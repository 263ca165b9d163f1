package wm

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/chess10kp/webdesk/internal/logging"
)

type fakeBackend struct {
	mu        sync.Mutex
	windows   []Window
	err       error
	activated []string
	listed    int
	watching  chan func()
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Windows(context.Context) ([]Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed++
	return append([]Window(nil), f.windows...), f.err
}

func (f *fakeBackend) Activate(_ context.Context, w Window) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activated = append(f.activated, w.ID)
	return nil
}

func (f *fakeBackend) Watch(ctx context.Context, notify func()) error {
	if f.watching != nil {
		f.watching <- notify
	}
	<-ctx.Done()
	return nil
}

// queueScheduler holds deferred work until the test runs it.
type queueScheduler struct {
	mu    sync.Mutex
	queue []func()
}

func (q *queueScheduler) Defer(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue = append(q.queue, fn)
}

func (q *queueScheduler) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

func (q *queueScheduler) RunAll() {
	q.mu.Lock()
	queue := q.queue
	q.queue = nil
	q.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
}

type emitted struct {
	calls [][]string
}

func (e *emitted) emit(names []string) {
	e.calls = append(e.calls, names)
}

func TestRefreshNormalisesNames(t *testing.T) {
	backend := &fakeBackend{windows: []Window{
		{ID: "1", Class: "Firefox", Normal: true},
		{ID: "2", Class: "firefox", Normal: true},
		{ID: "3", Class: "Alacritty", Normal: true},
		{ID: "4", Class: "Waybar", Normal: false},
		{ID: "5", Class: "", Normal: true},
	}}
	out := &emitted{}
	tr := NewTracker(backend, &queueScheduler{}, out.emit, logging.Discard())

	tr.Refresh()

	if len(out.calls) != 1 {
		t.Fatalf("Expected 1 emit, got %d", len(out.calls))
	}
	want := []string{"alacritty", "firefox"}
	if !reflect.DeepEqual(out.calls[0], want) {
		t.Errorf("Expected %v, got %v", want, out.calls[0])
	}
}

func TestRefreshEmptyListIsNotNil(t *testing.T) {
	out := &emitted{}
	tr := NewTracker(&fakeBackend{}, &queueScheduler{}, out.emit, logging.Discard())

	tr.Refresh()

	if len(out.calls) != 1 || out.calls[0] == nil {
		t.Errorf("Expected one empty non-nil list, got %#v", out.calls)
	}
}

func TestRefreshErrorEmitsNothing(t *testing.T) {
	out := &emitted{}
	tr := NewTracker(&fakeBackend{err: errors.New("socket closed")}, &queueScheduler{}, out.emit, logging.Discard())

	tr.Refresh()

	if len(out.calls) != 0 {
		t.Errorf("Expected no emit, got %v", out.calls)
	}
}

func TestScheduleCoalesces(t *testing.T) {
	backend := &fakeBackend{windows: []Window{{ID: "1", Class: "foot", Normal: true}}}
	sched := &queueScheduler{}
	out := &emitted{}
	tr := NewTracker(backend, sched, out.emit, logging.Discard())

	for i := 0; i < 5; i++ {
		tr.schedule()
	}
	if sched.Len() != 1 {
		t.Fatalf("Expected 1 queued refresh, got %d", sched.Len())
	}
	if len(out.calls) != 0 {
		t.Fatal("Expected refresh to wait for the main loop")
	}

	sched.RunAll()
	if len(out.calls) != 1 {
		t.Errorf("Expected 1 emit, got %d", len(out.calls))
	}

	tr.schedule()
	if sched.Len() != 1 {
		t.Errorf("Expected a new refresh after the first ran, got %d queued", sched.Len())
	}
}

func TestStartWatchesAndSchedules(t *testing.T) {
	backend := &fakeBackend{watching: make(chan func(), 1)}
	sched := &queueScheduler{}
	out := &emitted{}
	tr := NewTracker(backend, sched, out.emit, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr.Start(ctx)

	if sched.Len() != 1 {
		t.Fatalf("Expected initial refresh to be queued, got %d", sched.Len())
	}

	notify := <-backend.watching
	notify()
	notify()
	if sched.Len() != 1 {
		t.Errorf("Expected events to fold into the pending refresh, got %d", sched.Len())
	}

	sched.RunAll()
	if len(out.calls) != 1 {
		t.Errorf("Expected 1 emit, got %d", len(out.calls))
	}
}

func TestDisabledTracker(t *testing.T) {
	sched := &queueScheduler{}
	out := &emitted{}
	tr := NewTracker(nil, sched, out.emit, logging.Discard())

	tr.Start(context.Background())
	tr.Refresh()
	if err := tr.Focus("firefox"); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}

	if tr.Enabled() || tr.BackendName() != "none" {
		t.Error("Expected tracker to be disabled")
	}
	if sched.Len() != 0 || len(out.calls) != 0 {
		t.Errorf("Expected no work, got %d queued and %d emits", sched.Len(), len(out.calls))
	}
}

func TestFocusFirstMatchOnly(t *testing.T) {
	backend := &fakeBackend{windows: []Window{
		{ID: "1", Class: "Alacritty", Normal: true},
		{ID: "2", Class: "org.mozilla.Firefox", Normal: true},
		{ID: "3", Class: "firefox", Normal: true},
	}}
	tr := NewTracker(backend, &queueScheduler{}, func([]string) {}, logging.Discard())

	if err := tr.Focus("FireFox"); err != nil {
		t.Fatalf("Focus failed: %v", err)
	}
	if !reflect.DeepEqual(backend.activated, []string{"2"}) {
		t.Errorf("Expected only window 2 activated, got %v", backend.activated)
	}
}

func TestFocusNoMatchOrEmpty(t *testing.T) {
	backend := &fakeBackend{windows: []Window{{ID: "1", Class: "foot", Normal: true}}}
	tr := NewTracker(backend, &queueScheduler{}, func([]string) {}, logging.Discard())

	if err := tr.Focus("gimp"); err != nil {
		t.Errorf("Expected no error for no match, got %v", err)
	}
	if err := tr.Focus("   "); err != nil {
		t.Errorf("Expected no error for empty token, got %v", err)
	}
	if len(backend.activated) != 0 {
		t.Errorf("Expected nothing activated, got %v", backend.activated)
	}
	if backend.listed != 1 {
		t.Errorf("Expected empty token to skip listing, got %d listings", backend.listed)
	}
}

func TestFocusSubstringStopsAtFirstMatch(t *testing.T) {
	backend := &fakeBackend{windows: []Window{
		{ID: "a", Class: "firefox", Normal: true},
		{ID: "b", Class: "firefox", Normal: true},
	}}
	tr := NewTracker(backend, &queueScheduler{}, func([]string) {}, logging.Discard())

	if err := tr.Focus("fire"); err != nil {
		t.Fatalf("Focus failed: %v", err)
	}
	if !reflect.DeepEqual(backend.activated, []string{"a"}) {
		t.Errorf("Expected only the first firefox window, got %v", backend.activated)
	}
}
