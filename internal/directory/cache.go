package directory

import (
	"context"
	"strings"
	"sync"

	"outreach/internal"
	"outreach/internal/util"
)

// Cache memoizes successful searches for the lifetime of a run. Errors are
// not cached.
type Cache struct {
	inner Directory

	mu      sync.Mutex
	entries map[string][]internal.DirectoryCandidate
}

func NewCache(inner Directory) *Cache {
	return &Cache{inner: inner, entries: map[string][]internal.DirectoryCandidate{}}
}

func (c *Cache) Search(ctx context.Context, name string) ([]internal.DirectoryCandidate, error) {
	key := strings.Join(util.Tokenize(name), " ")

	c.mu.Lock()
	hit, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return hit, nil
	}

	found, err := c.inner.Search(ctx, name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = found
	c.mu.Unlock()
	return found, nil
}

func (c *Cache) Close() {
	Close(c.inner)
}
