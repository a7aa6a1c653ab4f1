package store

import (
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	now := time.Now()

	if err := s.Append(testPoint("a", now)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Append(testPoint("b", now.Add(time.Minute))); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "b" {
		t.Fatalf("List() = %+v, want [b a]", entries)
	}

	got, err := s.Get("a")
	if err != nil || got == nil || got.ID != "a" {
		t.Errorf("Get(a) = %v, %v", got, err)
	}
	if got, _ := s.Get("missing"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}

	if err := s.Remove("b"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	entries, _ = s.List()
	if len(entries) != 1 || entries[0].ID != "a" {
		t.Errorf("after Remove: %+v", entries)
	}
}
