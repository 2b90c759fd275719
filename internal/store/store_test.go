package store

import "testing"

func TestReadReturnsFalseForUnknownKey(t *testing.T) {
	s := New()
	if s.Seq() != 0 {
		t.Fatalf("seq = %d, want 0", s.Seq())
	}
	if _, ok := s.Read("/x"); ok {
		t.Fatal("expected Read of unknown key to return ok=false")
	}
}

func TestWriteStoresANewValue(t *testing.T) {
	s := New()
	rev, ok := s.Write("/x", nil, Doc{Data: "51"})
	if !ok || rev != 1 {
		t.Fatalf("Write = (%d, %v), want (1, true)", rev, ok)
	}
	if s.Seq() != 1 {
		t.Fatalf("seq = %d, want 1", s.Seq())
	}
	v, ok := s.Read("/x")
	if !ok || v.(Doc).Data != "51" {
		t.Fatalf("Read = (%v, %v), want (Doc{51}, true)", v, ok)
	}
}

func TestWriteWithoutARevDoesNotUpdate(t *testing.T) {
	s := New()
	s.Write("/x", nil, Doc{Data: "51"})

	if _, ok := s.Write("/x", nil, Doc{Data: "52"}); ok {
		t.Fatal("expected second write with nil rev to fail CAS")
	}
	if s.Seq() != 1 {
		t.Fatalf("seq = %d, want 1", s.Seq())
	}
	v, _ := s.Read("/x")
	if v.(Doc).Data != "51" {
		t.Fatalf("Read = %v, want Doc{51}", v)
	}
}

func TestWriteWithABadRevDoesNotUpdate(t *testing.T) {
	s := New()
	rev, _ := s.Write("/x", nil, Doc{Data: "51"})

	bad := rev + 1
	if _, ok := s.Write("/x", &bad, Doc{Data: "52"}); ok {
		t.Fatal("expected write with stale-ahead rev to fail CAS")
	}
}

func TestWriteWithAMatchingRevSucceeds(t *testing.T) {
	s := New()
	rev, _ := s.Write("/x", nil, Doc{Data: "51"})

	rev2, ok := s.Write("/x", &rev, Doc{Data: "52"})
	if !ok || rev2 != 2 {
		t.Fatalf("Write = (%d, %v), want (2, true)", rev2, ok)
	}
	if s.Seq() != 2 {
		t.Fatalf("seq = %d, want 2", s.Seq())
	}
}

func TestRemoveTombstonesAKey(t *testing.T) {
	s := New()
	rev, _ := s.Write("/x", nil, Doc{Data: "51"})

	if _, ok := s.Remove("/x", &rev); !ok {
		t.Fatal("expected remove with matching rev to succeed")
	}
	if _, ok := s.Read("/x"); ok {
		t.Fatal("expected Read of tombstoned key to return ok=false")
	}
}

func TestWriteAfterRemoveFollowsTheSameCASRule(t *testing.T) {
	s := New()
	rev, _ := s.Write("/x", nil, Doc{Data: "51"})
	tombRev, _ := s.Remove("/x", &rev)

	if _, ok := s.Write("/x", &rev, Doc{Data: "52"}); ok {
		t.Fatal("expected write against the stale pre-tombstone rev to fail")
	}
	if _, ok := s.Write("/x", &tombRev, Doc{Data: "52"}); !ok {
		t.Fatal("expected write against the tombstone's rev to succeed")
	}
}

func TestKeysAreSortedAndIncludeTombstones(t *testing.T) {
	s := New()
	s.Write("/", nil, Dir{Entries: map[string]struct{}{}})
	s.Write("/z/doc.json", nil, Doc{Data: "53"})
	s.Write("/path/", nil, Dir{Entries: map[string]struct{}{}})

	rev, _ := s.Write("/t", nil, Doc{Data: "x"})
	s.Remove("/t", &rev)

	got := s.Keys()
	want := []string{"/", "/path/", "/t", "/z/doc.json"}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", got, want)
		}
	}
}

func TestCloneIsIndependentOfTheOriginal(t *testing.T) {
	s := New()
	s.Write("/path/", nil, Dir{Entries: map[string]struct{}{"x.json": {}}})

	clone := s.Clone()
	rev, _, _ := clone.ReadRev("/path/")
	clone.Write("/path/", &rev, Dir{Entries: map[string]struct{}{"x.json": {}, "y.json": {}}})

	orig, _ := s.Read("/path/")
	if len(orig.(Dir).Entries) != 1 {
		t.Fatalf("mutating the clone's directory leaked into the original: %v", orig)
	}
}
