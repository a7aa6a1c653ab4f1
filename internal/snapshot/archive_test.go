package snapshot_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ckpt-go/internal/ckpt"
	"ckpt-go/internal/snapshot"
	"ckpt-go/internal/testutil"
)

func TestArchive_Build(t *testing.T) {
	t.Run("invokes tar with every exclude and returns the size", func(t *testing.T) {
		t.Parallel()
		payload := []byte("compressed payload")
		runner := testutil.NewStubRunner()
		runner.ScriptHook("tar -czf", func(call testutil.Call) error {
			return os.WriteFile(call.Args[1], payload, 0644)
		})

		root := t.TempDir()
		dest := filepath.Join(t.TempDir(), "full_backup.tar.gz")
		archive := snapshot.NewArchive(root, nil, runner, ckpt.NewNopLogger())

		size, err := archive.Build(context.Background(), dest)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if size != int64(len(payload)) {
			t.Errorf("size = %d, want %d", size, len(payload))
		}

		line := runner.CommandLines()[0]
		if !strings.HasPrefix(line, "tar -czf "+dest+" -C "+root) {
			t.Errorf("command line = %q", line)
		}
		for _, pattern := range snapshot.DefaultExcludes {
			if !strings.Contains(line, "--exclude="+pattern) {
				t.Errorf("command line missing exclude %q: %s", pattern, line)
			}
		}
		if !strings.HasSuffix(line, " .") {
			t.Errorf("command line does not end with the tree root: %q", line)
		}
	})

	t.Run("custom excludes replace the defaults", func(t *testing.T) {
		t.Parallel()
		runner := testutil.NewStubRunner()
		runner.ScriptHook("tar -czf", func(call testutil.Call) error {
			return os.WriteFile(call.Args[1], []byte("x"), 0644)
		})

		dest := filepath.Join(t.TempDir(), "out.tar.gz")
		archive := snapshot.NewArchive(t.TempDir(), []string{"tmp"}, runner, ckpt.NewNopLogger())
		if _, err := archive.Build(context.Background(), dest); err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		line := runner.CommandLines()[0]
		if !strings.Contains(line, "--exclude=tmp") {
			t.Errorf("command line = %q, want --exclude=tmp", line)
		}
		if strings.Contains(line, "--exclude=.git") {
			t.Errorf("command line = %q, default excludes should be replaced", line)
		}
	})

	t.Run("missing tar fails before anything runs", func(t *testing.T) {
		t.Parallel()
		runner := testutil.NewStubRunner()
		runner.MissingTools = []string{"tar"}

		archive := snapshot.NewArchive(t.TempDir(), nil, runner, ckpt.NewNopLogger())
		if _, err := archive.Build(context.Background(), filepath.Join(t.TempDir(), "out.tar.gz")); err == nil {
			t.Fatal("Build() error = nil, want tar not available")
		}
		if len(runner.Calls) != 0 {
			t.Errorf("recorded %d calls, want none", len(runner.Calls))
		}
	})

	t.Run("tar failure surfaces its stderr", func(t *testing.T) {
		t.Parallel()
		runner := testutil.NewStubRunner()
		runner.Script("tar -czf", ckpt.RunResult{Stderr: "tar: /proj: Cannot open\n", ExitCode: 2}, os.ErrPermission)

		archive := snapshot.NewArchive(t.TempDir(), nil, runner, ckpt.NewNopLogger())
		_, err := archive.Build(context.Background(), filepath.Join(t.TempDir(), "out.tar.gz"))
		if err == nil {
			t.Fatal("Build() error = nil, want failure")
		}
		if !strings.Contains(err.Error(), "Cannot open") {
			t.Errorf("error = %v, want stderr detail", err)
		}
	})
}
