package icons

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Resolver maps a themed icon name to a file URI, or "" when none exists.
type Resolver interface {
	Resolve(name string) string
}

// LookupFunc finds the file for an icon name at a pixel size.
type LookupFunc func(name string, size int) (string, bool)

// Cache memoises lookups, including misses.
type Cache struct {
	lookup LookupFunc
	size   int
	cache  *lru.Cache[string, string]

	mu     sync.Mutex
	hits   int64
	misses int64
}

// NewCache creates a cache holding up to maxEntries lookups at the given icon size.
func NewCache(lookup LookupFunc, size, maxEntries int) (*Cache, error) {
	if maxEntries <= 0 {
		maxEntries = 200
	}

	cache, err := lru.New[string, string](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon cache: %w", err)
	}

	return &Cache{
		lookup: lookup,
		size:   size,
		cache:  cache,
	}, nil
}

func (c *Cache) Resolve(name string) string {
	if name == "" {
		return ""
	}

	key := fmt.Sprintf("%s@%d", name, c.size)

	c.mu.Lock()
	defer c.mu.Unlock()

	if uri, ok := c.cache.Get(key); ok {
		c.hits++
		return uri
	}
	c.misses++

	uri := ""
	if filepath.IsAbs(name) {
		// Icon= may name a file directly
		if _, err := os.Stat(name); err == nil {
			uri = "file://" + name
		}
	} else if path, ok := c.lookup(name, c.size); ok && path != "" {
		uri = "file://" + path
	}
	c.cache.Add(key, uri)
	return uri
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
}

// Static is a Resolver backed by a fixed map; used when no icon theme is available.
type Static map[string]string

func (s Static) Resolve(name string) string {
	return s[name]
}
