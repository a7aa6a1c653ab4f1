package ckpt

// RestorePointStore persists the ordered list of registered restore points.
// Implementations keep entries newest-first. The file-backed implementation
// embeds the list inside the shared project-state document; an in-memory
// implementation backs tests.
type RestorePointStore interface {
	// List returns all entries, newest first.
	List() ([]*RestorePoint, error)

	// Get returns the entry with the given id, or nil if absent.
	Get(id string) (*RestorePoint, error)

	// Append inserts a new entry at the head of the list.
	Append(rp *RestorePoint) error

	// Remove deletes the entry with the given id. Removing an unknown id is
	// a no-op.
	Remove(id string) error
}
