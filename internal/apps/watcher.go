package apps

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reports changes to the curated dock file or to any .desktop file in
// the discovery directories. Bursts of events collapse into one callback.
type Watcher struct {
	curatedPath string
	dirs        []string
	debounce    time.Duration
	onChange    func()
	logger      *log.Logger

	mu    sync.Mutex
	timer *time.Timer
}

func NewWatcher(curatedPath string, dirs []string, onChange func(), logger *log.Logger) *Watcher {
	return &Watcher{
		curatedPath: curatedPath,
		dirs:        dirs,
		debounce:    defaultDebounce,
		onChange:    onChange,
		logger:      logger,
	}
}

// Run watches until ctx is cancelled. Discovery directories are watched with
// all their subdirectories; those that don't exist are skipped. When the
// curated file's directory is missing its closest existing ancestor is
// watched instead, so creating it later is noticed.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	watched := 0
	for _, dir := range w.watchDirs() {
		watched += w.addTree(watcher, dir)
	}
	if w.watchCurated(watcher) {
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("no dock directories could be watched")
	}

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				w.created(watcher, event.Name)
			}
			if w.relevant(event.Name) {
				w.trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Debug("watch error", "err", err)
		}
	}
}

// addTree watches root and every directory below it, returning how many
// were added.
func (w *Watcher) addTree(watcher *fsnotify.Watcher, root string) int {
	added := 0
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("not watching directory", "dir", path, "err", err)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			w.logger.Debug("not watching directory", "dir", path, "err", err)
			return nil
		}
		added++
		return nil
	})
	return added
}

func (w *Watcher) watchCurated(watcher *fsnotify.Watcher) bool {
	if w.curatedPath == "" {
		return false
	}

	want := filepath.Dir(w.curatedPath)
	dir := existingAncestor(want)
	if dir == "" {
		return false
	}
	if err := watcher.Add(dir); err != nil {
		w.logger.Debug("not watching directory", "dir", dir, "err", err)
		return false
	}
	if dir != want {
		w.logger.Debug("curated directory missing, watching ancestor", "want", want, "dir", dir)
	}
	return true
}

// created follows new directories: a discovery subdirectory is added with
// its contents, and a directory on the way to the curated file moves the
// curated watch closer to it.
func (w *Watcher) created(watcher *fsnotify.Watcher, name string) {
	info, err := os.Stat(name)
	if err != nil || !info.IsDir() {
		return
	}

	if w.curatedPath != "" && within(filepath.Dir(w.curatedPath), name) {
		w.watchCurated(watcher)
		if _, err := os.Stat(w.curatedPath); err == nil {
			w.trigger()
		}
	}

	for _, dir := range w.dirs {
		if dir != "" && within(name, dir) {
			w.addTree(watcher, name)
			w.trigger()
			return
		}
	}
}

func (w *Watcher) watchDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, dir := range w.dirs {
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

// existingAncestor returns dir or the closest parent of it that exists.
func existingAncestor(dir string) string {
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// within reports whether path is root or lies below it.
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *Watcher) relevant(name string) bool {
	if w.curatedPath != "" && filepath.Clean(name) == filepath.Clean(w.curatedPath) {
		return true
	}
	return strings.HasSuffix(name, desktopSuffix)
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
