package icons

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheResolvesAndMemoises(t *testing.T) {
	calls := 0
	lookup := func(name string, size int) (string, bool) {
		calls++
		if name == "firefox" {
			return "/usr/share/icons/hicolor/48x48/apps/firefox.png", true
		}
		return "", false
	}

	c, err := NewCache(lookup, 48, 16)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}

	want := "file:///usr/share/icons/hicolor/48x48/apps/firefox.png"
	for i := 0; i < 3; i++ {
		if got := c.Resolve("firefox"); got != want {
			t.Errorf("Expected %s, got %s", want, got)
		}
	}
	for i := 0; i < 2; i++ {
		if got := c.Resolve("no-such-icon"); got != "" {
			t.Errorf("Expected empty URI for missing icon, got %s", got)
		}
	}

	if calls != 2 {
		t.Errorf("Expected 2 lookups, got %d", calls)
	}

	hits, misses := c.Stats()
	if hits != 3 || misses != 2 {
		t.Errorf("Expected 3 hits / 2 misses, got %d / %d", hits, misses)
	}
}

func TestCacheEmptyName(t *testing.T) {
	c, _ := NewCache(func(string, int) (string, bool) {
		t.Error("lookup should not run for empty name")
		return "", false
	}, 48, 16)

	if got := c.Resolve(""); got != "" {
		t.Errorf("Expected empty URI, got %s", got)
	}
}

func TestCachePurge(t *testing.T) {
	calls := 0
	c, _ := NewCache(func(string, int) (string, bool) {
		calls++
		return "/x.svg", true
	}, 32, 16)

	c.Resolve("a")
	c.Purge()
	c.Resolve("a")

	if calls != 2 {
		t.Errorf("Expected lookup after purge, got %d calls", calls)
	}
}

func TestCacheAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	icon := filepath.Join(dir, "app.png")
	if err := os.WriteFile(icon, []byte("png"), 0644); err != nil {
		t.Fatalf("Failed to write icon: %v", err)
	}

	c, _ := NewCache(func(string, int) (string, bool) {
		t.Error("theme lookup should not run for absolute paths")
		return "", false
	}, 48, 16)

	if got := c.Resolve(icon); got != "file://"+icon {
		t.Errorf("Expected file://%s, got %s", icon, got)
	}
	if got := c.Resolve(filepath.Join(dir, "missing.png")); got != "" {
		t.Errorf("Expected empty URI for missing file, got %s", got)
	}
}
