package run_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"ckpt-go/internal/run"
)

func TestExecRunner_Run(t *testing.T) {
	t.Run("captures stdout of a successful command", func(t *testing.T) {
		t.Parallel()
		runner := run.NewExecRunner()
		res, err := runner.Run(context.Background(), "echo", "hello world")
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if got := strings.TrimSpace(res.Stdout); got != "hello world" {
			t.Errorf("Stdout = %q, want %q", got, "hello world")
		}
		if res.ExitCode != 0 {
			t.Errorf("ExitCode = %d, want 0", res.ExitCode)
		}
	})

	t.Run("argv arguments are not shell-interpreted", func(t *testing.T) {
		t.Parallel()
		runner := run.NewExecRunner()
		res, err := runner.Run(context.Background(), "echo", "$HOME; rm -rf /")
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if got := strings.TrimSpace(res.Stdout); got != "$HOME; rm -rf /" {
			t.Errorf("Stdout = %q, argument was expanded", got)
		}
	})

	t.Run("non-zero exit returns the populated result and an error", func(t *testing.T) {
		t.Parallel()
		runner := run.NewExecRunner()
		res, err := runner.Run(context.Background(), "sh", "-c", "echo oops >&2; exit 3")
		if err == nil {
			t.Fatal("Run() error = nil, want exit error")
		}
		if res == nil {
			t.Fatal("Run() result = nil, want populated result")
		}
		if res.ExitCode != 3 {
			t.Errorf("ExitCode = %d, want 3", res.ExitCode)
		}
		if got := strings.TrimSpace(res.Stderr); got != "oops" {
			t.Errorf("Stderr = %q, want %q", got, "oops")
		}
	})

	t.Run("missing executable is an error", func(t *testing.T) {
		t.Parallel()
		runner := run.NewExecRunner()
		if _, err := runner.Run(context.Background(), "definitely-not-a-real-tool-xyz"); err == nil {
			t.Fatal("Run() error = nil, want not-found error")
		}
	})

	t.Run("a cancelled context stops the command", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		runner := run.NewExecRunner()
		start := time.Now()
		if _, err := runner.Run(ctx, "sleep", "10"); err == nil {
			t.Fatal("Run() error = nil, want cancellation")
		}
		if time.Since(start) > 5*time.Second {
			t.Error("command was not interrupted by context cancellation")
		}
	})
}

func TestExecRunner_LookPath(t *testing.T) {
	t.Parallel()
	runner := run.NewExecRunner()
	if _, err := runner.LookPath("sh"); err != nil {
		t.Errorf("LookPath(sh) error = %v", err)
	}
	if _, err := runner.LookPath("definitely-not-a-real-tool-xyz"); err == nil {
		t.Error("LookPath of a missing tool succeeded")
	}
}
