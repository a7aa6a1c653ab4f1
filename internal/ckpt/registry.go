package ckpt

import (
	"fmt"
	"os"
	"time"
)

// DefaultCapacity is the number of restore points kept before the oldest
// are dropped.
const DefaultCapacity = 10

// Registry is the capacity-capped, retention-prunable ledger of completed
// restore points. It owns the lifecycle of a point's on-disk artifacts:
// whenever an entry leaves the ledger, its backup directory is deleted too.
type Registry struct {
	store    RestorePointStore
	capacity int
	clock    Clock
	logger   Logger
}

// NewRegistry creates a Registry over the given store. capacity <= 0 selects
// DefaultCapacity.
func NewRegistry(store RestorePointStore, capacity int, clock Clock, logger Logger) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		store:    store,
		capacity: capacity,
		clock:    clock,
		logger:   logger,
	}
}

// Append registers a completed restore point and truncates the ledger to
// the configured capacity, deleting the artifacts of dropped entries.
// Entries named in protectedIDs survive truncation, so the ledger may hold
// one extra point until the next append. The restore flow protects its
// in-flight target this way: the safety-net backup must never evict the
// very point about to be restored.
func (r *Registry) Append(rp *RestorePoint, protectedIDs ...string) error {
	if err := r.store.Append(rp); err != nil {
		return &RegistryError{Op: "append", Err: err}
	}

	entries, err := r.store.List()
	if err != nil {
		return &RegistryError{Op: "list", Err: err}
	}

	protected := make(map[string]bool, len(protectedIDs))
	for _, id := range protectedIDs {
		protected[id] = true
	}

	for _, old := range entries[min(r.capacity, len(entries)):] {
		if protected[old.ID] {
			r.logger.Info("keeping restore point past capacity, restore in progress", "id", old.ID)
			continue
		}
		r.logger.Info("dropping restore point past capacity", "id", old.ID)
		if err := r.remove(old); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the restore point with the given id, or nil if absent.
func (r *Registry) Get(id string) (*RestorePoint, error) {
	rp, err := r.store.Get(id)
	if err != nil {
		return nil, &RegistryError{Op: "get", Err: err}
	}
	return rp, nil
}

// List returns all restore points newest-first, each annotated with a live
// existence check over its referenced artifact paths. A registered entry
// whose artifacts were externally deleted shows up as stale instead of
// being silently assumed valid.
func (r *Registry) List() ([]*RestorePointInfo, error) {
	entries, err := r.store.List()
	if err != nil {
		return nil, &RegistryError{Op: "list", Err: err}
	}

	infos := make([]*RestorePointInfo, 0, len(entries))
	for _, rp := range entries {
		info := &RestorePointInfo{RestorePoint: rp}
		for _, p := range rp.ArtifactPaths() {
			if _, err := os.Stat(p); err != nil {
				info.Stale = true
				info.Missing = append(info.Missing, p)
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Purge removes every restore point older than the retention window and
// deletes its artifacts. Returns the ids of the purged entries.
func (r *Registry) Purge(olderThanDays int) ([]string, error) {
	entries, err := r.store.List()
	if err != nil {
		return nil, &RegistryError{Op: "list", Err: err}
	}

	cutoff := r.clock.Now().Add(-time.Duration(olderThanDays) * 24 * time.Hour)

	var purged []string
	for _, rp := range entries {
		if !rp.Timestamp.Before(cutoff) {
			continue
		}
		if err := r.remove(rp); err != nil {
			return purged, err
		}
		purged = append(purged, rp.ID)
	}
	return purged, nil
}

// remove drops an entry from the store and destroys its artifacts. The
// ledger entry goes first so a half-failed removal can never leave a
// registered entry pointing at deleted artifacts without showing stale.
func (r *Registry) remove(rp *RestorePoint) error {
	if err := r.store.Remove(rp.ID); err != nil {
		return &RegistryError{Op: "remove", Err: err}
	}
	if rp.BackupDir != "" {
		if err := os.RemoveAll(rp.BackupDir); err != nil {
			return &RegistryError{Op: "remove", Err: fmt.Errorf("deleting artifacts for %s: %w", rp.ID, err)}
		}
	}
	r.logger.Info("restore point purged", "id", rp.ID)
	return nil
}
