package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ckpt-go/internal/ckpt"
)

// BundleName is the file name of the full-history bundle inside a restore
// point's git directory.
const BundleName = "repo.bundle"

// Repository captures and restores git state for a project working tree.
// All git invocations go through the injected ProcessRunner with argv
// arrays; nothing is passed through a shell.
type Repository struct {
	root   string
	runner ckpt.ProcessRunner
	logger ckpt.Logger
}

// NewRepository creates a Repository snapshotter for the given working
// tree root.
func NewRepository(root string, runner ckpt.ProcessRunner, logger ckpt.Logger) *Repository {
	return &Repository{root: root, runner: runner, logger: logger}
}

// Snapshot writes a bundle with the complete history of all refs into
// destDir and records branch, HEAD commit, and working tree dirtiness.
// Fails when git is unavailable or the root is not a work tree.
func (r *Repository) Snapshot(ctx context.Context, destDir string) (*ckpt.RepositorySnapshot, error) {
	if _, err := r.runner.LookPath("git"); err != nil {
		return nil, fmt.Errorf("git not available: %w", err)
	}

	if _, err := r.git(ctx, "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("not a git repository: %s: %w", r.root, err)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("creating bundle directory: %w", err)
	}

	bundlePath := filepath.Join(destDir, BundleName)
	// --all puts every ref into the bundle, not just the current branch.
	if _, err := r.git(ctx, "bundle", "create", bundlePath, "--all"); err != nil {
		return nil, fmt.Errorf("creating bundle: %w", err)
	}

	branch, err := r.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("reading current branch: %w", err)
	}

	commit, err := r.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("reading HEAD commit: %w", err)
	}

	status, err := r.git(ctx, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}

	snap := &ckpt.RepositorySnapshot{
		Branch:         branch,
		Commit:         commit,
		HasUncommitted: status != "",
		StatusText:     status,
		BundlePath:     bundlePath,
	}
	r.logger.Info("repository captured", "branch", branch, "commit", commit, "dirty", snap.HasUncommitted)
	return snap, nil
}

// Restore hard-resets the working tree to the recorded commit and checks
// out the recorded branch when it differs from the current one. Any
// uncommitted changes present at restore time are discarded.
func (r *Repository) Restore(ctx context.Context, snap *ckpt.RepositorySnapshot) error {
	if _, err := r.git(ctx, "reset", "--hard", snap.Commit); err != nil {
		return fmt.Errorf("resetting to %s: %w", snap.Commit, err)
	}

	current, err := r.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return fmt.Errorf("reading current branch: %w", err)
	}
	if snap.Branch != "" && snap.Branch != "HEAD" && snap.Branch != current {
		if _, err := r.git(ctx, "checkout", snap.Branch); err != nil {
			return fmt.Errorf("checking out %s: %w", snap.Branch, err)
		}
	}

	r.logger.Info("repository restored", "commit", snap.Commit, "branch", snap.Branch)
	return nil
}

// git runs a git subcommand against the repository root and returns trimmed
// stdout.
func (r *Repository) git(ctx context.Context, args ...string) (string, error) {
	argv := append([]string{"-C", r.root}, args...)
	res, err := r.runner.Run(ctx, "git", argv...)
	if err != nil {
		if res != nil && res.Stderr != "" {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(res.Stderr))
		}
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

var _ ckpt.RepositorySnapshotter = (*Repository)(nil)
