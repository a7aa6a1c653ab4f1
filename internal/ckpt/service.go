package ckpt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// Service is the orchestration layer that coordinates the per-facet
// snapshotters, the registry, and the restore flow. All operations are
// synchronous; the design assumes a single invoking process.
type Service struct {
	repo     RepositorySnapshotter
	db       DatabaseSnapshotter
	configs  ConfigSnapshotter
	sysstate SystemStateSnapshotter
	archive  ArchiveBuilder
	registry *Registry
	logger   Logger
	clock    Clock

	backupRoot string
}

// NewService creates a Service with the provided dependencies. backupRoot
// is the directory under which each restore point gets its own
// subdirectory.
func NewService(
	repo RepositorySnapshotter,
	db DatabaseSnapshotter,
	configs ConfigSnapshotter,
	sysstate SystemStateSnapshotter,
	archive ArchiveBuilder,
	registry *Registry,
	logger Logger,
	clock Clock,
	backupRoot string,
) *Service {
	return &Service{
		repo:       repo,
		db:         db,
		configs:    configs,
		sysstate:   sysstate,
		archive:    archive,
		registry:   registry,
		logger:     logger,
		clock:      clock,
		backupRoot: backupRoot,
	}
}

// stepPolicy tags how the orchestrator loop treats a step failure.
type stepPolicy int

const (
	mandatory stepPolicy = iota
	bestEffort
)

// backupStep is one facet capture in the ordered backup sequence.
type backupStep struct {
	name   string
	policy stepPolicy
	run    func(ctx context.Context, rp *RestorePoint) error
}

// CreateFullBackup captures all facets under a single restore point and
// registers it. Mandatory facet failures abort the attempt, delete the
// artifacts written so far for this attempt, and leave the registry
// untouched, so a failed backup never becomes selectable for restore.
// Best-effort facets (system state) only log their failure.
func (s *Service) CreateFullBackup(ctx context.Context, label, phase, week string) (*RestorePoint, error) {
	return s.createBackup(ctx, label, phase, week)
}

// createBackup is CreateFullBackup with registry truncation exemptions.
// The restore flow passes the id of its in-flight target so the safety-net
// backup cannot evict it at capacity.
func (s *Service) createBackup(ctx context.Context, label, phase, week string, protectedIDs ...string) (*RestorePoint, error) {
	now := s.clock.Now()
	id := fmt.Sprintf("%s-%s", label, now.UTC().Format("20060102-150405"))
	backupDir := filepath.Join(s.backupRoot, id)

	rp := &RestorePoint{
		ID:        id,
		Label:     label,
		Timestamp: now,
		Phase:     phase,
		Week:      week,
		BackupDir: backupDir,
	}

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return nil, &SnapshotError{Facet: "backup-dir", Err: err}
	}

	s.logger.Info("backup started", "id", id, "dir", backupDir)

	steps := []backupStep{
		{name: "repository", policy: mandatory, run: s.snapshotRepository},
		{name: "database", policy: mandatory, run: s.snapshotDatabases},
		{name: "config", policy: mandatory, run: s.snapshotConfigs},
		{name: "system-state", policy: bestEffort, run: s.snapshotSystemState},
		{name: "archive", policy: mandatory, run: s.buildArchive},
	}

	for _, step := range steps {
		err := step.run(ctx, rp)
		if err == nil {
			s.logger.Info("backup step complete", "id", id, "step", step.name)
			continue
		}
		if step.policy == bestEffort {
			s.logger.Warn("best-effort backup step failed", "id", id, "step", step.name, "error", err)
			continue
		}
		s.abortAttempt(rp)
		return nil, &SnapshotError{Facet: step.name, Err: err}
	}

	rp.Status = StatusComplete
	if err := s.registry.Append(rp, protectedIDs...); err != nil {
		s.abortAttempt(rp)
		return nil, err
	}

	s.logger.Info("backup registered", "id", id)
	return rp, nil
}

// abortAttempt deletes the artifacts written by a failed backup attempt.
// Scope is strictly this attempt's own directory; previously registered
// restore points are never touched.
func (s *Service) abortAttempt(rp *RestorePoint) {
	if err := os.RemoveAll(rp.BackupDir); err != nil {
		s.logger.Error("cleaning up aborted backup", "id", rp.ID, "error", err)
		return
	}
	s.logger.Info("aborted backup cleaned up", "id", rp.ID)
}

func (s *Service) snapshotRepository(ctx context.Context, rp *RestorePoint) error {
	destDir := filepath.Join(rp.BackupDir, "git")
	snap, err := s.repo.Snapshot(ctx, destDir)
	if err != nil {
		return err
	}
	if snap.HasUncommitted {
		s.logger.Warn("working tree has uncommitted changes", "id", rp.ID, "status", snap.StatusText)
	}
	rp.Repository = snap
	return nil
}

func (s *Service) snapshotDatabases(ctx context.Context, rp *RestorePoint) error {
	destDir := filepath.Join(rp.BackupDir, "databases")
	snap, err := s.db.Snapshot(ctx, destDir)
	if err != nil {
		return err
	}
	rp.Databases = snap
	return nil
}

func (s *Service) snapshotConfigs(ctx context.Context, rp *RestorePoint) error {
	destDir := filepath.Join(rp.BackupDir, "config")
	snap, err := s.configs.Snapshot(ctx, destDir)
	if err != nil {
		return err
	}
	rp.Configs = snap
	return nil
}

func (s *Service) snapshotSystemState(ctx context.Context, rp *RestorePoint) error {
	destDir := filepath.Join(rp.BackupDir, "state")
	snap, err := s.sysstate.Snapshot(ctx, destDir)
	if err != nil {
		return err
	}
	rp.StatePath = snap.Path
	return nil
}

func (s *Service) buildArchive(ctx context.Context, rp *RestorePoint) error {
	destPath := filepath.Join(rp.BackupDir, rp.ID+".tar.gz")
	size, err := s.archive.Build(ctx, destPath)
	if err != nil {
		return err
	}
	rp.ArchivePath = destPath
	s.logger.Info("archive built", "id", rp.ID, "size", humanize.Bytes(uint64(size)))
	return nil
}

// ListBackups returns the registered restore points, newest first, with
// per-artifact existence annotations.
func (s *Service) ListBackups(ctx context.Context) ([]*RestorePointInfo, error) {
	return s.registry.List()
}

// Cleanup removes every restore point older than retentionDays and deletes
// its artifacts. Returns the purged ids.
func (s *Service) Cleanup(ctx context.Context, retentionDays int) ([]string, error) {
	purged, err := s.registry.Purge(retentionDays)
	if err != nil {
		return purged, err
	}
	s.logger.Info("cleanup complete", "purged", len(purged), "retention_days", retentionDays)
	return purged, nil
}
