package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ckpt-go/internal/ckpt"
)

// Database captures and restores embedded database files by raw copy, with
// a best-effort logical dump alongside each copy. The raw copy is the
// authoritative artifact; a failed dump is logged and skipped.
type Database struct {
	candidates []string
	dumpTool   string
	runner     ckpt.ProcessRunner
	logger     ckpt.Logger
	clock      ckpt.Clock
}

// NewDatabase creates a Database snapshotter over the configured candidate
// paths. dumpTool is the logical-dump executable (normally "sqlite3");
// empty disables dumps entirely.
func NewDatabase(candidates []string, dumpTool string, runner ckpt.ProcessRunner, logger ckpt.Logger, clock ckpt.Clock) *Database {
	return &Database{
		candidates: candidates,
		dumpTool:   dumpTool,
		runner:     runner,
		logger:     logger,
		clock:      clock,
	}
}

// Snapshot copies each candidate path that exists into destDir and attempts
// a logical dump next to it. Paths absent at capture time are left out of
// the manifest; a copy failure of a present file is an error.
func (d *Database) Snapshot(ctx context.Context, destDir string) (*ckpt.DatabaseSnapshot, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("creating database backup directory: %w", err)
	}

	snap := &ckpt.DatabaseSnapshot{CapturedAt: d.clock.Now()}
	used := make(map[string]int)
	for _, src := range d.candidates {
		if !fileExists(src) {
			d.logger.Debug("database path absent, skipping", "path", src)
			continue
		}

		backupPath := filepath.Join(destDir, backupName(used, src))
		if err := copyFile(src, backupPath); err != nil {
			return nil, fmt.Errorf("backing up database %s: %w", src, err)
		}

		entry := ckpt.FileBackup{OriginalPath: src, BackupPath: backupPath}
		if dumpPath, err := d.dump(ctx, src, backupPath+".dump.sql"); err != nil {
			d.logger.Warn("logical dump failed, raw copy is authoritative", "path", src, "error", err)
		} else if dumpPath != "" {
			entry.DumpPath = dumpPath
		}

		snap.Files = append(snap.Files, entry)
		d.logger.Info("database captured", "path", src)
	}
	return snap, nil
}

// dump writes a plain-text logical dump of the database at src to dumpPath.
// Returns "" without error when dumping is disabled.
func (d *Database) dump(ctx context.Context, src, dumpPath string) (string, error) {
	if d.dumpTool == "" {
		return "", nil
	}
	if _, err := d.runner.LookPath(d.dumpTool); err != nil {
		return "", fmt.Errorf("%s not available: %w", d.dumpTool, err)
	}

	res, err := d.runner.Run(ctx, d.dumpTool, src, ".dump")
	if err != nil {
		return "", fmt.Errorf("running %s .dump: %w", d.dumpTool, err)
	}
	if err := os.WriteFile(dumpPath, []byte(res.Stdout), 0644); err != nil {
		return "", fmt.Errorf("writing dump: %w", err)
	}
	return dumpPath, nil
}

// Restore copies each backed-up file back over its original location. An
// entry whose backup file has gone missing is skipped with a warning rather
// than aborting the whole restore.
func (d *Database) Restore(ctx context.Context, snap *ckpt.DatabaseSnapshot) error {
	for _, f := range snap.Files {
		if !fileExists(f.BackupPath) {
			d.logger.Warn("database backup missing, skipping", "path", f.BackupPath)
			continue
		}
		if err := copyFile(f.BackupPath, f.OriginalPath); err != nil {
			return fmt.Errorf("restoring database %s: %w", f.OriginalPath, err)
		}
		d.logger.Info("database restored", "path", f.OriginalPath)
	}
	return nil
}

var _ ckpt.DatabaseSnapshotter = (*Database)(nil)
