package policy

import (
	"sync"

	"modatlas/internal/logging"
)

// AliasCache holds a loaded alias table behind an explicit cache object.
// The original design kept a single package-level cache variable; making the
// cache a value owned by whoever constructs the resolver keeps multi-tenant
// and test usage safe and gives hot-reload an explicit invalidation point.
type AliasCache struct {
	mu    sync.RWMutex
	path  string
	table *AliasTable
}

// NewAliasCache creates an empty cache bound to the given alias file path.
func NewAliasCache(path string) *AliasCache {
	return &AliasCache{path: path}
}

// Load returns the cached table, loading it from disk on first use or after
// Clear. Concurrent callers share one load.
func (c *AliasCache) Load() (*AliasTable, error) {
	c.mu.RLock()
	if c.table != nil {
		t := c.table
		c.mu.RUnlock()
		return t, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check: another goroutine may have loaded while we waited.
	if c.table != nil {
		return c.table, nil
	}

	t, err := LoadAliasTable(c.path)
	if err != nil {
		return nil, err
	}
	c.table = t
	logging.PolicyDebug("Alias cache populated from %s (%d entries)", c.path, len(t.Aliases))
	return t, nil
}

// Get returns the cached table without loading. Nil when the cache is cold.
func (c *AliasCache) Get() *AliasTable {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table
}

// Clear invalidates the cache so the next Load re-reads from disk.
// Must be called on policy reload so a stale alias table is never served
// against a newer policy snapshot.
func (c *AliasCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = nil
	logging.PolicyDebug("Alias cache cleared (%s)", c.path)
}
