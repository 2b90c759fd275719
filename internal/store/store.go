// Package store implements the versioned, compare-and-swap key-value store
// that backs the document model checker.
//
// Every key carries a monotonically increasing revision. A write only
// succeeds if the caller's expected revision matches the key's current
// revision (optimistic concurrency) — there is no locking, and a mismatch
// is the only failure mode: it is signalled by returning ok=false, never by
// an error value or a panic.
package store

import (
	"maps"
	"sort"
	"sync"
)

// Rev is a per-key revision counter. It starts at 0 for a key that has
// never been written and is bumped by one on every successful mutation of
// that key.
type Rev uint64

// Value is the tagged union stored under a key: either an application
// document or a directory listing.
type Value interface {
	isValue()
}

// Doc is an opaque application payload.
type Doc struct {
	Data string
}

func (Doc) isValue() {}

// Dir is the set of direct child names of a directory key. Sub-directory
// names carry a trailing "/".
type Dir struct {
	Entries map[string]struct{}
}

func (Dir) isValue() {}

// CloneDir returns a deep copy of entries, for callers that need to hand
// out an independent set (Actor.Link/Unlink never mutate a Dir's entries
// in place for this reason).
func CloneDir(entries map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(entries))
	maps.Copy(out, entries)
	return out
}

type record struct {
	rev     Rev
	present bool
	value   Value
}

// Store is a versioned, in-memory key-value map.
type Store struct {
	mu   sync.RWMutex
	data map[string]record
	seq  uint64
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: make(map[string]record)}
}

// Read returns the current value of key and true if key is present (has
// been written and is not tombstoned). A never-seen or tombstoned key
// returns (nil, false).
func (s *Store) Read(key string) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[key]
	if !ok || !r.present {
		return nil, false
	}
	return r.value, true
}

// ReadRev returns the current revision and value of key, and true if key
// is present. It is the same lookup as Read but also exposes the
// revision, for callers (Cache) that need it to build a CAS request.
func (s *Store) ReadRev(key string) (Rev, Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[key]
	if !ok || !r.present {
		return 0, nil, false
	}
	return r.rev, r.value, true
}

// Write performs a compare-and-swap write. expectedRev is the revision the
// caller last observed (nil means "never observed", equivalent to 0). If
// the key's current revision does not match, the write fails and ok is
// false; otherwise the key's revision is incremented, its value replaced,
// and ok is true.
func (s *Store) Write(key string, expectedRev *Rev, value Value) (Rev, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cas(key, expectedRev, true, value)
}

// Remove performs a compare-and-swap tombstone write: same CAS rule as
// Write, but the key is marked absent rather than given a new value. The
// key's revision still increments, so a later write to the same key must
// present the tombstone's revision — there is no "undelete" shortcut.
func (s *Store) Remove(key string, expectedRev *Rev) (Rev, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cas(key, expectedRev, false, nil)
}

func (s *Store) cas(key string, expectedRev *Rev, present bool, value Value) (Rev, bool) {
	expected := Rev(0)
	if expectedRev != nil {
		expected = *expectedRev
	}

	cur := s.data[key] // zero value (0, false, nil) for a never-seen key
	if cur.rev != expected {
		return 0, false
	}

	newRev := cur.rev + 1
	s.data[key] = record{rev: newRev, present: present, value: value}
	s.seq++
	return newRev, true
}

// Keys returns every key ever touched (present or tombstoned), in
// ascending lexicographic order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Seq returns the total number of successful mutations (Write or Remove
// calls that returned ok=true) observed by this Store.
func (s *Store) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Clone returns a deep, independent copy of the Store: a fresh map of
// records, with any Dir value's entry set copied too so that mutating the
// clone's directories can never reach back into the original. The model
// checker calls this once per enumerated ordering so that orderings never
// observe one another's writes.
func (s *Store) Clone() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := make(map[string]record, len(s.data))
	for k, r := range s.data {
		if dir, ok := r.value.(Dir); ok {
			r.value = Dir{Entries: CloneDir(dir.Entries)}
		}
		data[k] = r
	}
	return &Store{data: data, seq: s.seq}
}
