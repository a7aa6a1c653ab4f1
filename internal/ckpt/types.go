package ckpt

import "time"

// Restore point lifecycle status values. A point only ever enters the
// registry as StatusComplete; StatusStale is computed at list time when a
// referenced artifact has gone missing.
const (
	StatusComplete = "complete"
	StatusStale    = "stale"
)

// RepositorySnapshot records the version-control state captured for one
// restore point. The bundle contains the full history of all refs, not just
// the branch that was checked out.
type RepositorySnapshot struct {
	Branch         string `json:"branch"`
	Commit         string `json:"commit"`
	HasUncommitted bool   `json:"has_uncommitted"`
	StatusText     string `json:"status_text,omitempty"`
	BundlePath     string `json:"bundle_path"`
}

// FileBackup is one entry of a copy-based manifest: where a file lived and
// where its backup copy landed. DumpPath is only set for database entries
// whose logical dump succeeded.
type FileBackup struct {
	OriginalPath string `json:"original_path"`
	BackupPath   string `json:"backup_path"`
	DumpPath     string `json:"dump_path,omitempty"`
}

// DatabaseSnapshot is the manifest of database files captured for one
// restore point. Only paths that existed at capture time are listed.
type DatabaseSnapshot struct {
	Files      []FileBackup `json:"files"`
	CapturedAt time.Time    `json:"captured_at"`
}

// ConfigSnapshot is the manifest of configuration and project-metadata
// files captured for one restore point.
type ConfigSnapshot struct {
	Files      []FileBackup `json:"files"`
	CapturedAt time.Time    `json:"captured_at"`
}

// SystemStateSnapshot is a write-only diagnostic record. It is kept for
// operator debugging and never read back during restore.
type SystemStateSnapshot struct {
	CapturedAt  time.Time         `json:"captured_at"`
	GoVersion   string            `json:"go_version"`
	OS          string            `json:"os"`
	Arch        string            `json:"arch"`
	Hostname    string            `json:"hostname"`
	PID         int               `json:"pid"`
	Environment map[string]string `json:"environment,omitempty"`
	Processes   string            `json:"processes"`
	Ports       string            `json:"ports"`
	Accelerator string            `json:"accelerator"`
	Path        string            `json:"-"`
}

// RestorePoint is one completed, registered backup. All artifact paths are
// inside BackupDir, so removing that directory destroys the whole point.
type RestorePoint struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
	Phase     string    `json:"phase,omitempty"`
	Week      string    `json:"week,omitempty"`
	Status    string    `json:"status"`

	BackupDir   string              `json:"backup_dir"`
	Repository  *RepositorySnapshot `json:"repository,omitempty"`
	Databases   *DatabaseSnapshot   `json:"databases,omitempty"`
	Configs     *ConfigSnapshot     `json:"configs,omitempty"`
	StatePath   string              `json:"state_path,omitempty"`
	ArchivePath string              `json:"archive_path,omitempty"`
}

// ArtifactPaths returns every on-disk path this restore point references.
// Used by the registry's existence checks.
func (rp *RestorePoint) ArtifactPaths() []string {
	var paths []string
	if rp.Repository != nil && rp.Repository.BundlePath != "" {
		paths = append(paths, rp.Repository.BundlePath)
	}
	if rp.Databases != nil {
		for _, f := range rp.Databases.Files {
			paths = append(paths, f.BackupPath)
		}
	}
	if rp.Configs != nil {
		for _, f := range rp.Configs.Files {
			paths = append(paths, f.BackupPath)
		}
	}
	if rp.ArchivePath != "" {
		paths = append(paths, rp.ArchivePath)
	}
	return paths
}

// RestorePointInfo is a registry entry annotated with the result of a live
// artifact existence check. Stale entries remain listed so the operator can
// see what was lost; they are not silently assumed valid.
type RestorePointInfo struct {
	*RestorePoint
	Stale   bool
	Missing []string
}
