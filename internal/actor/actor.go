// Package actor implements the single-client state machine that executes
// the primitive Acts (Get/Put/Rm/List/Link/Unlink) a Planner emits, against
// one client's private cache.Cache over a shared store.Store.
package actor

import (
	"mc2/internal/cache"
	"mc2/internal/path"
	"mc2/internal/store"
)

// UpdateFn computes a document's new content from its current content (nil
// if the document does not exist). Returning nil means "write nothing".
type UpdateFn func(current *string) *string

// Actor runs one simulated client against a store.Store. Once any cache
// operation fails its compare-and-swap, the Actor is permanently crashed:
// every further Act is a no-op, matching a real client that has lost its
// session and must restart from scratch.
type Actor struct {
	cache   *cache.Cache
	crashed bool
	unlinks map[string]struct{}
}

// New returns an Actor with a fresh cache over s.
func New(s *store.Store) *Actor {
	return &Actor{cache: cache.New(s), unlinks: make(map[string]struct{})}
}

// Crashed reports whether this Actor has hit a failed write and is now
// inert.
func (a *Actor) Crashed() bool {
	return a.crashed
}

// Unlinks returns the set of directories this Actor has decided, via Rm,
// that it may unlink an entry from. It is read-only: callers must not
// mutate the returned map.
func (a *Actor) Unlinks() map[string]struct{} {
	return a.unlinks
}

// Get returns the document at path, or nil if it is crashed, absent, or a
// directory.
func (a *Actor) Get(p string) *string {
	if a.crashed {
		return nil
	}
	v, ok := a.cache.Read(p)
	if !ok {
		return nil
	}
	doc, ok := v.(store.Doc)
	if !ok {
		return nil
	}
	data := doc.Data
	return &data
}

// Put reads the current document at path, passes it through update, and
// writes the result back if update returns non-nil.
func (a *Actor) Put(p string, update UpdateFn) {
	if a.crashed {
		return
	}
	if value := update(a.Get(p)); value != nil {
		a.write(p, store.Doc{Data: *value})
	}
}

// Rm tombstones the document at path, then walks its ancestor directory
// links from leaf to root, recording each as a candidate for Unlink and
// stopping as soon as a directory's listing is not exactly the single
// entry being removed — a directory that still holds other entries is not
// itself made a candidate for unlinking from its parent.
func (a *Actor) Rm(p string) {
	if a.crashed || a.Get(p) == nil {
		return
	}
	if !a.cache.Remove(p) {
		a.crashed = true
		return
	}

	a.unlinks = make(map[string]struct{})
	links := path.New(p).Links()
	for i := len(links) - 1; i >= 0; i-- {
		link := links[i]
		a.unlinks[link.Dir] = struct{}{}

		entries, ok := a.List(link.Dir)
		if !ok || len(entries) != 1 {
			break
		}
		if _, onlyEntry := entries[link.Name]; !onlyEntry {
			break
		}
	}
}

// List returns the entry set of the directory at path, or (nil, false) if
// it is crashed, absent, or a document.
func (a *Actor) List(p string) (map[string]struct{}, bool) {
	if a.crashed {
		return nil, false
	}
	v, ok := a.cache.Read(p)
	if !ok {
		return nil, false
	}
	dir, ok := v.(store.Dir)
	if !ok {
		return nil, false
	}
	return dir.Entries, true
}

// Link adds entry to the directory listing at path, creating the listing
// if it did not already exist.
func (a *Actor) Link(p, entry string) {
	if a.crashed {
		return
	}
	entries := a.copyOrEmptyListing(p)
	entries[entry] = struct{}{}
	a.write(p, store.Dir{Entries: entries})
}

// Unlink removes entry from the directory listing at path, but only if Rm
// previously decided path is a candidate for unlinking; otherwise it is a
// no-op, matching a client that never chose to clean up that directory.
func (a *Actor) Unlink(p, entry string) {
	if a.crashed {
		return
	}
	if _, candidate := a.unlinks[p]; !candidate {
		return
	}
	entries := a.copyOrEmptyListing(p)
	delete(entries, entry)
	a.write(p, store.Dir{Entries: entries})
}

func (a *Actor) copyOrEmptyListing(p string) map[string]struct{} {
	entries, ok := a.List(p)
	if !ok {
		return make(map[string]struct{})
	}
	return store.CloneDir(entries)
}

func (a *Actor) write(p string, value store.Value) {
	if !a.cache.Write(p, value) {
		a.crashed = true
	}
}
