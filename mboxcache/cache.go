package mboxcache

import (
	"maps"
	"sync"

	"github.com/kbukum/deliverykit/jsonvalue"
	"github.com/kbukum/deliverykit/logger"
)

// LoadedFields lists the members of a record kept in the loaded tier.
var LoadedFields = []string{"name", "metrics"}

// Tier identifies where a lookup was answered from.
type Tier int

const (
	TierNone Tier = iota
	TierPrefetched
	TierLoaded
)

func (t Tier) String() string {
	switch t {
	case TierPrefetched:
		return "prefetched"
	case TierLoaded:
		return "loaded"
	default:
		return "none"
	}
}

// Cache is the two-tier content cache. It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	prefetched map[string]jsonvalue.Value
	loaded     map[string]jsonvalue.Value
	log        *logger.Logger
}

// New creates an empty Cache. A nil logger uses the global logger.
func New(log *logger.Logger) *Cache {
	return &Cache{
		prefetched: make(map[string]jsonvalue.Value),
		loaded:     make(map[string]jsonvalue.Value),
		log:        logger.OrGlobal(log, "mboxcache"),
	}
}

// MergePrefetched stores entries in the prefetched tier, replacing records
// with the same name, and drops those names from the loaded tier.
func (c *Cache) MergePrefetched(entries map[string]jsonvalue.Value) {
	if len(entries) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, record := range entries {
		if name == "" {
			continue
		}
		c.prefetched[name] = record
		delete(c.loaded, name)
	}
	c.log.Debug("prefetched content merged", logger.Fields(logger.FieldCount, len(entries)))
}

// SaveLoaded stores a reduced copy of each entry in the loaded tier. Entries
// with an empty name or a name already prefetched are skipped.
func (c *Cache) SaveLoaded(entries map[string]jsonvalue.Value) {
	if len(entries) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, record := range entries {
		if name == "" {
			continue
		}
		if _, ok := c.prefetched[name]; ok {
			continue
		}
		c.loaded[name] = record.Pick(LoadedFields...)
	}
}

// Lookup returns the record for name, preferring the prefetched tier.
func (c *Cache) Lookup(name string) (jsonvalue.Value, bool) {
	v, tier := c.LookupTier(name)
	return v, tier != TierNone
}

// LookupTier is Lookup reporting which tier answered.
func (c *Cache) LookupTier(name string) (jsonvalue.Value, Tier) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if v, ok := c.prefetched[name]; ok {
		return v, TierPrefetched
	}
	if v, ok := c.loaded[name]; ok {
		return v, TierLoaded
	}
	return jsonvalue.Null(), TierNone
}

// Prefetched returns the prefetched record for name.
func (c *Cache) Prefetched(name string) (jsonvalue.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.prefetched[name]
	return v, ok
}

// Loaded returns the loaded record for name.
func (c *Cache) Loaded(name string) (jsonvalue.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.loaded[name]
	return v, ok
}

// ClearPrefetched empties the prefetched tier.
func (c *Cache) ClearPrefetched() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.prefetched)
}

// RemoveLoaded drops name from the loaded tier.
func (c *Cache) RemoveLoaded(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.loaded, name)
}

// ClearAll empties both tiers.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.prefetched)
	clear(c.loaded)
}

// Stats reports the number of records per tier.
func (c *Cache) Stats() (prefetched, loaded int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.prefetched), len(c.loaded)
}

// Export returns copies of both tiers.
func (c *Cache) Export() (prefetched, loaded map[string]jsonvalue.Value) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.prefetched), maps.Clone(c.loaded)
}
