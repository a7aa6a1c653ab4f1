package ckpt

import "context"

// RepositorySnapshotter captures and restores version-controlled source
// history. Snapshot writes a full-history bundle into destDir; Restore
// hard-resets the working tree to the recorded commit, discarding any
// uncommitted changes, so callers must arrange a safety-net backup first.
type RepositorySnapshotter interface {
	Snapshot(ctx context.Context, destDir string) (*RepositorySnapshot, error)
	Restore(ctx context.Context, snap *RepositorySnapshot) error
}

// DatabaseSnapshotter captures and restores embedded database files by raw
// copy. The raw copy is authoritative; the logical dump written alongside is
// best-effort. Restore skips (with a warning) entries whose backup file has
// gone missing rather than aborting.
type DatabaseSnapshotter interface {
	Snapshot(ctx context.Context, destDir string) (*DatabaseSnapshot, error)
	Restore(ctx context.Context, snap *DatabaseSnapshot) error
}

// ConfigSnapshotter captures and restores an enumerated list of
// configuration and project-metadata files. Same manifest-copy contract as
// DatabaseSnapshotter, without the logical dump.
type ConfigSnapshotter interface {
	Snapshot(ctx context.Context, destDir string) (*ConfigSnapshot, error)
	Restore(ctx context.Context, snap *ConfigSnapshot) error
}

// SystemStateSnapshotter captures read-only diagnostic telemetry. There is
// no restore operation; the record is informational only.
type SystemStateSnapshotter interface {
	Snapshot(ctx context.Context, destDir string) (*SystemStateSnapshot, error)
}

// ArchiveBuilder produces one compressed archive of the whole working tree.
// Returns the compressed size in bytes.
type ArchiveBuilder interface {
	Build(ctx context.Context, destPath string) (int64, error)
}
