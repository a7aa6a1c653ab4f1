package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"ckpt-go/internal/ckpt"
)

// ExecRunner executes external tools via os/exec. Arguments are always
// passed as an argv array; no shell is involved, so paths with spaces or
// metacharacters are safe.
type ExecRunner struct{}

// NewExecRunner creates an ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes name with args and waits for completion. A non-zero exit is
// returned as an error alongside the populated result, so callers can
// surface stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (*ckpt.RunResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &ckpt.RunResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, fmt.Errorf("%s exited with code %d", name, res.ExitCode)
		}
		return res, fmt.Errorf("running %s: %w", name, err)
	}
	return res, nil
}

// LookPath reports whether the named tool is on PATH.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

var _ ckpt.ProcessRunner = (*ExecRunner)(nil)
