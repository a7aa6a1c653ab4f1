package ckpt

import "fmt"

// SnapshotError reports that a mandatory backup facet failed.
// A backup attempt that produces a SnapshotError is never registered.
type SnapshotError struct {
	Facet string // "repository", "database", "config", "archive"
	Err   error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot facet %q failed: %v", e.Facet, e.Err)
}

func (e *SnapshotError) Unwrap() error { return e.Err }

// RegistryError reports that the restore-point ledger could not be read or
// written, or that its contents are corrupt.
type RegistryError struct {
	Op  string // "list", "get", "append", "remove"
	Err error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry %s: %v", e.Op, e.Err)
}

func (e *RegistryError) Unwrap() error { return e.Err }

// RestoreNotFoundError reports a restore request for an id that is not in
// the registry. No filesystem changes happen before this is returned.
type RestoreNotFoundError struct {
	ID string
}

func (e *RestoreNotFoundError) Error() string {
	return fmt.Sprintf("restore point not found: %s", e.ID)
}

// RestoreStepError reports that one selected restore facet failed. Facets
// restored earlier in the same call stay applied.
type RestoreStepError struct {
	Facet string
	Err   error
}

func (e *RestoreStepError) Error() string {
	return fmt.Sprintf("restore facet %q failed: %v", e.Facet, e.Err)
}

func (e *RestoreStepError) Unwrap() error { return e.Err }
