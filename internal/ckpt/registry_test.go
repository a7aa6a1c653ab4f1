package ckpt_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ckpt-go/internal/ckpt"
	"ckpt-go/internal/store"
	"ckpt-go/internal/testutil"
)

// makePoint creates a restore point with a real artifact directory under
// root so existence checks and artifact deletion operate on actual files.
func makePoint(t *testing.T, root, id string, ts time.Time) *ckpt.RestorePoint {
	t.Helper()
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	archive := filepath.Join(dir, id+".tar.gz")
	if err := os.WriteFile(archive, []byte("archive"), 0644); err != nil {
		t.Fatal(err)
	}
	return &ckpt.RestorePoint{
		ID:          id,
		Label:       id,
		Timestamp:   ts,
		Status:      ckpt.StatusComplete,
		BackupDir:   dir,
		ArchivePath: archive,
	}
}

func TestRegistry_Append(t *testing.T) {
	t.Run("keeps entries newest first within capacity", func(t *testing.T) {
		t.Parallel()
		clock := testutil.FixedClock()
		reg := ckpt.NewRegistry(store.NewMemoryStore(), 3, clock, ckpt.NewNopLogger())
		root := t.TempDir()

		for i, id := range []string{"a", "b", "c"} {
			rp := makePoint(t, root, id, clock.Now().Add(time.Duration(i)*time.Minute))
			if err := reg.Append(rp); err != nil {
				t.Fatalf("Append(%s) error = %v", id, err)
			}
		}

		infos, err := reg.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(infos) != 3 {
			t.Fatalf("List() = %d entries, want 3", len(infos))
		}
		if infos[0].ID != "c" || infos[2].ID != "a" {
			t.Errorf("order = [%s %s %s], want [c b a]", infos[0].ID, infos[1].ID, infos[2].ID)
		}
	})

	t.Run("truncation deletes the oldest entry and its artifacts", func(t *testing.T) {
		t.Parallel()
		clock := testutil.FixedClock()
		reg := ckpt.NewRegistry(store.NewMemoryStore(), 2, clock, ckpt.NewNopLogger())
		root := t.TempDir()

		oldest := makePoint(t, root, "oldest", clock.Now())
		for i, id := range []string{"oldest", "mid", "new"} {
			var rp *ckpt.RestorePoint
			if id == "oldest" {
				rp = oldest
			} else {
				rp = makePoint(t, root, id, clock.Now().Add(time.Duration(i)*time.Minute))
			}
			if err := reg.Append(rp); err != nil {
				t.Fatalf("Append(%s) error = %v", id, err)
			}
		}

		infos, _ := reg.List()
		if len(infos) != 2 {
			t.Fatalf("List() = %d entries, want 2", len(infos))
		}
		for _, info := range infos {
			if info.ID == "oldest" {
				t.Error("oldest entry survived truncation")
			}
		}
		if _, err := os.Stat(oldest.BackupDir); !os.IsNotExist(err) {
			t.Error("artifacts of the truncated entry still exist")
		}
	})

	t.Run("protected entries survive truncation", func(t *testing.T) {
		t.Parallel()
		clock := testutil.FixedClock()
		reg := ckpt.NewRegistry(store.NewMemoryStore(), 2, clock, ckpt.NewNopLogger())
		root := t.TempDir()

		oldest := makePoint(t, root, "oldest", clock.Now())
		mid := makePoint(t, root, "mid", clock.Now().Add(time.Minute))
		for _, rp := range []*ckpt.RestorePoint{oldest, mid} {
			if err := reg.Append(rp); err != nil {
				t.Fatalf("Append(%s) error = %v", rp.ID, err)
			}
		}

		safety := makePoint(t, root, "safety", clock.Now().Add(2*time.Minute))
		if err := reg.Append(safety, "oldest"); err != nil {
			t.Fatalf("Append(safety) error = %v", err)
		}

		infos, err := reg.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(infos) != 3 {
			t.Fatalf("List() = %d entries, want 3 (protected entry kept)", len(infos))
		}
		if _, err := os.Stat(oldest.BackupDir); err != nil {
			t.Errorf("artifacts of the protected entry were deleted: %v", err)
		}

		// The next unprotected append truncates normally.
		if err := reg.Append(makePoint(t, root, "new", clock.Now().Add(3*time.Minute))); err != nil {
			t.Fatalf("Append(new) error = %v", err)
		}
		infos, _ = reg.List()
		if len(infos) != 2 {
			t.Errorf("List() = %d entries after unprotected append, want 2", len(infos))
		}
		if _, err := os.Stat(oldest.BackupDir); !os.IsNotExist(err) {
			t.Error("formerly protected entry survived an unprotected append")
		}
	})
}

func TestRegistry_Get(t *testing.T) {
	t.Parallel()
	clock := testutil.FixedClock()
	reg := ckpt.NewRegistry(store.NewMemoryStore(), 0, clock, ckpt.NewNopLogger())
	rp := makePoint(t, t.TempDir(), "present", clock.Now())
	if err := reg.Append(rp); err != nil {
		t.Fatal(err)
	}

	got, err := reg.Get("present")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || got.ID != "present" {
		t.Errorf("Get(present) = %v", got)
	}

	got, err = reg.Get("absent")
	if err != nil {
		t.Fatalf("Get(absent) error = %v", err)
	}
	if got != nil {
		t.Errorf("Get(absent) = %v, want nil", got)
	}
}

func TestRegistry_List_StaleAnnotation(t *testing.T) {
	t.Parallel()
	clock := testutil.FixedClock()
	reg := ckpt.NewRegistry(store.NewMemoryStore(), 0, clock, ckpt.NewNopLogger())
	root := t.TempDir()

	healthy := makePoint(t, root, "healthy", clock.Now())
	broken := makePoint(t, root, "broken", clock.Now().Add(time.Minute))
	for _, rp := range []*ckpt.RestorePoint{healthy, broken} {
		if err := reg.Append(rp); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Remove(broken.ArchivePath); err != nil {
		t.Fatal(err)
	}

	infos, err := reg.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, info := range infos {
		switch info.ID {
		case "healthy":
			if info.Stale {
				t.Errorf("healthy entry marked stale: %v", info.Missing)
			}
		case "broken":
			if !info.Stale {
				t.Error("broken entry not marked stale")
			}
		}
	}
}

func TestRegistry_Purge(t *testing.T) {
	t.Parallel()
	clock := testutil.FixedClock()
	reg := ckpt.NewRegistry(store.NewMemoryStore(), 0, clock, ckpt.NewNopLogger())
	root := t.TempDir()

	old := makePoint(t, root, "old", clock.Now().Add(-10*24*time.Hour))
	fresh := makePoint(t, root, "fresh", clock.Now().Add(-time.Hour))
	for _, rp := range []*ckpt.RestorePoint{old, fresh} {
		if err := reg.Append(rp); err != nil {
			t.Fatal(err)
		}
	}

	purged, err := reg.Purge(7)
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if len(purged) != 1 || purged[0] != "old" {
		t.Fatalf("Purge() = %v, want [old]", purged)
	}
	if _, err := os.Stat(old.BackupDir); !os.IsNotExist(err) {
		t.Error("artifacts of the purged entry still exist")
	}
	if _, err := os.Stat(fresh.BackupDir); err != nil {
		t.Errorf("artifacts of the retained entry were touched: %v", err)
	}
}

func TestRegistry_StoreErrors(t *testing.T) {
	t.Parallel()
	// A corrupt ledger surfaces as RegistryError.
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	if err := os.WriteFile(statePath, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	reg := ckpt.NewRegistry(store.NewFileStore(statePath), 0, testutil.FixedClock(), ckpt.NewNopLogger())
	_, err := reg.List()
	var regErr *ckpt.RegistryError
	if !errors.As(err, &regErr) {
		t.Fatalf("List() error = %v, want RegistryError", err)
	}
}
