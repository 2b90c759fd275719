// Package cache gives each simulated client its own read-your-writes view
// over a shared store.Store, carrying the revision bookkeeping a CAS write
// needs.
package cache

import "mc2/internal/store"

type observation struct {
	rev     store.Rev
	value   store.Value
	present bool
}

// Cache memoizes, per key, either "observed absent" or the last rev/value
// this Cache saw for that key — either from a Store read or from a write it
// committed itself. A failed write evicts the memoized entry so the next
// read refreshes from the Store's committed truth.
type Cache struct {
	store *store.Store
	seen  map[string]observation
}

// New returns a Cache backed by s.
func New(s *store.Store) *Cache {
	return &Cache{store: s, seen: make(map[string]observation)}
}

// Read returns the value at key, memoizing the observation on first touch.
// Subsequent reads of the same key return the memoized value without
// consulting the Store again, until a write through this Cache evicts it.
func (c *Cache) Read(key string) (store.Value, bool) {
	if obs, ok := c.seen[key]; ok {
		return obs.value, obs.present
	}

	rev, value, ok := c.store.ReadRev(key)
	if !ok {
		c.seen[key] = observation{present: false}
		return nil, false
	}
	c.seen[key] = observation{rev: rev, value: value, present: true}
	return value, true
}

// Write attempts a CAS write using the last revision this Cache observed
// for key (or the zero revision if key was never observed present). On
// success the new revision and value are memoized and true is returned. On
// failure the memoized entry for key is evicted — forcing the next Read to
// refresh from the Store — and false is returned.
func (c *Cache) Write(key string, value store.Value) bool {
	var expected *store.Rev
	if obs, ok := c.seen[key]; ok && obs.present {
		r := obs.rev
		expected = &r
	}

	newRev, ok := c.store.Write(key, expected, value)
	if !ok {
		delete(c.seen, key)
		return false
	}
	c.seen[key] = observation{rev: newRev, value: value, present: true}
	return true
}

// Remove attempts a CAS tombstone write, following the same pattern as
// Write: success memoizes "observed absent", failure evicts the entry.
func (c *Cache) Remove(key string) bool {
	var expected *store.Rev
	if obs, ok := c.seen[key]; ok && obs.present {
		r := obs.rev
		expected = &r
	}

	if _, ok := c.store.Remove(key, expected); !ok {
		delete(c.seen, key)
		return false
	}
	c.seen[key] = observation{present: false}
	return true
}
