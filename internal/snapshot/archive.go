package snapshot

import (
	"context"
	"fmt"
	"os"
	"strings"

	"ckpt-go/internal/ckpt"
)

// DefaultExcludes are the directories left out of the full archive:
// dependency caches, build output, version-control metadata, prior backups,
// and logs. They are all regenerable or captured elsewhere.
var DefaultExcludes = []string{
	".git",
	"node_modules",
	"__pycache__",
	".venv",
	"venv",
	"dist",
	"build",
	"backups",
	"logs",
	"*.log",
}

// Archive builds one compressed tarball of the whole working tree via the
// system tar executable.
type Archive struct {
	root     string
	excludes []string
	runner   ckpt.ProcessRunner
	logger   ckpt.Logger
}

// NewArchive creates an Archive builder for the given working tree root.
// nil excludes selects DefaultExcludes.
func NewArchive(root string, excludes []string, runner ckpt.ProcessRunner, logger ckpt.Logger) *Archive {
	if excludes == nil {
		excludes = DefaultExcludes
	}
	return &Archive{root: root, excludes: excludes, runner: runner, logger: logger}
}

// Build writes the archive to destPath and returns its compressed size.
func (a *Archive) Build(ctx context.Context, destPath string) (int64, error) {
	if _, err := a.runner.LookPath("tar"); err != nil {
		return 0, fmt.Errorf("tar not available: %w", err)
	}

	args := []string{"-czf", destPath, "-C", a.root}
	for _, pattern := range a.excludes {
		args = append(args, "--exclude="+pattern)
	}
	args = append(args, ".")

	res, err := a.runner.Run(ctx, "tar", args...)
	if err != nil {
		if res != nil && res.Stderr != "" {
			return 0, fmt.Errorf("tar failed: %w: %s", err, strings.TrimSpace(res.Stderr))
		}
		return 0, fmt.Errorf("tar failed: %w", err)
	}

	info, err := os.Stat(destPath)
	if err != nil {
		return 0, fmt.Errorf("stat archive: %w", err)
	}

	a.logger.Info("archive written", "path", destPath, "bytes", info.Size())
	return info.Size(), nil
}

var _ ckpt.ArchiveBuilder = (*Archive)(nil)
