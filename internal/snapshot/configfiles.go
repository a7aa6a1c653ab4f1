package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ckpt-go/internal/ckpt"
)

// ConfigFiles captures and restores the enumerated list of configuration
// and project-metadata files (environment settings, package manifests,
// phase-tracking state). Same manifest-copy contract as Database, without
// the logical dump.
type ConfigFiles struct {
	root   string
	files  []string
	logger ckpt.Logger
	clock  ckpt.Clock
}

// NewConfigFiles creates a ConfigFiles snapshotter. files are interpreted
// relative to root unless absolute.
func NewConfigFiles(root string, files []string, logger ckpt.Logger, clock ckpt.Clock) *ConfigFiles {
	return &ConfigFiles{root: root, files: files, logger: logger, clock: clock}
}

// Snapshot copies each configured file that exists into destDir. Files
// absent at capture time are left out of the manifest.
func (c *ConfigFiles) Snapshot(ctx context.Context, destDir string) (*ckpt.ConfigSnapshot, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("creating config backup directory: %w", err)
	}

	snap := &ckpt.ConfigSnapshot{CapturedAt: c.clock.Now()}
	used := make(map[string]int)
	for _, rel := range c.files {
		src := rel
		if !filepath.IsAbs(src) {
			src = filepath.Join(c.root, rel)
		}
		if !fileExists(src) {
			c.logger.Debug("config file absent, skipping", "path", src)
			continue
		}

		backupPath := filepath.Join(destDir, backupName(used, src))
		if err := copyFile(src, backupPath); err != nil {
			return nil, fmt.Errorf("backing up config %s: %w", src, err)
		}
		snap.Files = append(snap.Files, ckpt.FileBackup{OriginalPath: src, BackupPath: backupPath})
		c.logger.Info("config file captured", "path", src)
	}
	return snap, nil
}

// Restore copies each backed-up file back over its original location,
// skipping entries whose backup file has gone missing.
func (c *ConfigFiles) Restore(ctx context.Context, snap *ckpt.ConfigSnapshot) error {
	for _, f := range snap.Files {
		if !fileExists(f.BackupPath) {
			c.logger.Warn("config backup missing, skipping", "path", f.BackupPath)
			continue
		}
		if err := copyFile(f.BackupPath, f.OriginalPath); err != nil {
			return fmt.Errorf("restoring config %s: %w", f.OriginalPath, err)
		}
		c.logger.Info("config file restored", "path", f.OriginalPath)
	}
	return nil
}

var _ ckpt.ConfigSnapshotter = (*ConfigFiles)(nil)
