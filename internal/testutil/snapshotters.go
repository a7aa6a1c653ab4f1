package testutil

import (
	"context"
	"os"
	"path/filepath"

	"ckpt-go/internal/ckpt"
)

// StubRepository is a scripted RepositorySnapshotter. Snapshot writes a
// placeholder bundle file so artifact existence checks pass.
type StubRepository struct {
	Branch      string
	Commit      string
	Dirty       bool
	SnapshotErr error
	RestoreErr  error

	SnapshotCalls int
	RestoreCalls  []*ckpt.RepositorySnapshot
}

func NewStubRepository(branch, commit string) *StubRepository {
	return &StubRepository{Branch: branch, Commit: commit}
}

func (s *StubRepository) Snapshot(_ context.Context, destDir string) (*ckpt.RepositorySnapshot, error) {
	s.SnapshotCalls++
	if s.SnapshotErr != nil {
		return nil, s.SnapshotErr
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, err
	}
	bundle := filepath.Join(destDir, "repo.bundle")
	if err := os.WriteFile(bundle, []byte("bundle"), 0644); err != nil {
		return nil, err
	}
	return &ckpt.RepositorySnapshot{
		Branch:         s.Branch,
		Commit:         s.Commit,
		HasUncommitted: s.Dirty,
		BundlePath:     bundle,
	}, nil
}

func (s *StubRepository) Restore(_ context.Context, snap *ckpt.RepositorySnapshot) error {
	s.RestoreCalls = append(s.RestoreCalls, snap)
	if s.RestoreErr != nil {
		return s.RestoreErr
	}
	// Simulate checkout of the recorded commit.
	s.Commit = snap.Commit
	s.Branch = snap.Branch
	return nil
}

// StubDatabase is a scripted DatabaseSnapshotter.
type StubDatabase struct {
	SnapshotErr error
	RestoreErr  error

	SnapshotCalls int
	RestoreCalls  []*ckpt.DatabaseSnapshot
}

func NewStubDatabase() *StubDatabase { return &StubDatabase{} }

func (s *StubDatabase) Snapshot(_ context.Context, destDir string) (*ckpt.DatabaseSnapshot, error) {
	s.SnapshotCalls++
	if s.SnapshotErr != nil {
		return nil, s.SnapshotErr
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, err
	}
	return &ckpt.DatabaseSnapshot{}, nil
}

func (s *StubDatabase) Restore(_ context.Context, snap *ckpt.DatabaseSnapshot) error {
	s.RestoreCalls = append(s.RestoreCalls, snap)
	return s.RestoreErr
}

// StubConfigFiles is a scripted ConfigSnapshotter.
type StubConfigFiles struct {
	SnapshotErr error
	RestoreErr  error

	SnapshotCalls int
	RestoreCalls  []*ckpt.ConfigSnapshot
}

func NewStubConfigFiles() *StubConfigFiles { return &StubConfigFiles{} }

func (s *StubConfigFiles) Snapshot(_ context.Context, destDir string) (*ckpt.ConfigSnapshot, error) {
	s.SnapshotCalls++
	if s.SnapshotErr != nil {
		return nil, s.SnapshotErr
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, err
	}
	return &ckpt.ConfigSnapshot{}, nil
}

func (s *StubConfigFiles) Restore(_ context.Context, snap *ckpt.ConfigSnapshot) error {
	s.RestoreCalls = append(s.RestoreCalls, snap)
	return s.RestoreErr
}

// StubSystemState is a scripted SystemStateSnapshotter.
type StubSystemState struct {
	SnapshotErr   error
	SnapshotCalls int
}

func NewStubSystemState() *StubSystemState { return &StubSystemState{} }

func (s *StubSystemState) Snapshot(_ context.Context, destDir string) (*ckpt.SystemStateSnapshot, error) {
	s.SnapshotCalls++
	if s.SnapshotErr != nil {
		return nil, s.SnapshotErr
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, err
	}
	path := filepath.Join(destDir, "system_state.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		return nil, err
	}
	return &ckpt.SystemStateSnapshot{Path: path}, nil
}

// StubArchive is a scripted ArchiveBuilder. Build writes a placeholder
// archive file so artifact existence checks pass.
type StubArchive struct {
	BuildErr   error
	BuildCalls []string
}

func NewStubArchive() *StubArchive { return &StubArchive{} }

func (s *StubArchive) Build(_ context.Context, destPath string) (int64, error) {
	s.BuildCalls = append(s.BuildCalls, destPath)
	if s.BuildErr != nil {
		return 0, s.BuildErr
	}
	content := []byte("archive")
	if err := os.WriteFile(destPath, content, 0644); err != nil {
		return 0, err
	}
	return int64(len(content)), nil
}

var (
	_ ckpt.RepositorySnapshotter  = (*StubRepository)(nil)
	_ ckpt.DatabaseSnapshotter    = (*StubDatabase)(nil)
	_ ckpt.ConfigSnapshotter      = (*StubConfigFiles)(nil)
	_ ckpt.SystemStateSnapshotter = (*StubSystemState)(nil)
	_ ckpt.ArchiveBuilder         = (*StubArchive)(nil)
)
