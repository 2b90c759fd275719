package cache

import (
	"testing"

	"mc2/internal/store"
)

func TestReadMemoizesAnAbsentKey(t *testing.T) {
	s := store.New()
	c := New(s)

	if _, ok := c.Read("/x"); ok {
		t.Fatal("expected Read of unknown key to return ok=false")
	}

	s.Write("/x", nil, store.Doc{Data: "late"})

	// Already memoized as absent: a write through another path must not
	// change what this Cache sees until it tries (and fails) a write.
	if _, ok := c.Read("/x"); ok {
		t.Fatal("expected cached observation to still report absent")
	}
}

func TestWriteThenReadIsReadYourWrites(t *testing.T) {
	s := store.New()
	c := New(s)

	if ok := c.Write("/x", store.Doc{Data: "a"}); !ok {
		t.Fatal("expected first write to succeed")
	}
	v, ok := c.Read("/x")
	if !ok || v.(store.Doc).Data != "a" {
		t.Fatalf("Read = (%v, %v), want (Doc{a}, true)", v, ok)
	}
}

func TestWriteFailsAndEvictsOnConflict(t *testing.T) {
	s := store.New()
	c := New(s)

	c.Read("/x") // memoize absent

	s.Write("/x", nil, store.Doc{Data: "other"}) // conflicting write behind the cache's back

	if ok := c.Write("/x", store.Doc{Data: "mine"}); ok {
		t.Fatal("expected conflicting write to fail")
	}

	// Eviction means the next read refreshes from the store.
	v, ok := c.Read("/x")
	if !ok || v.(store.Doc).Data != "other" {
		t.Fatalf("Read after failed write = (%v, %v), want (Doc{other}, true)", v, ok)
	}
}

func TestRemoveEvictsOnConflict(t *testing.T) {
	s := store.New()
	c := New(s)

	c.Write("/x", store.Doc{Data: "a"})
	rev := store.Rev(1)
	s.Write("/x", &rev, store.Doc{Data: "b"}) // bypasses the cache, bumping the rev

	if ok := c.Remove("/x"); ok {
		t.Fatal("expected remove against a stale rev to fail")
	}
	v, ok := c.Read("/x")
	if !ok || v.(store.Doc).Data != "b" {
		t.Fatalf("Read after failed remove = (%v, %v), want (Doc{b}, true)", v, ok)
	}
}
