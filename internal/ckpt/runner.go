package ckpt

import "context"

// RunResult holds the outcome of one external process invocation.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ProcessRunner abstracts external tool invocation (git, tar, sqlite3,
// nvidia-smi, ...). Commands are always argv arrays; nothing is ever passed
// through a shell. A non-zero exit is reported as an error with the result
// still populated, so callers can include stderr in their messages.
type ProcessRunner interface {
	// Run executes name with args and waits for completion.
	Run(ctx context.Context, name string, args ...string) (*RunResult, error)

	// LookPath reports whether the named tool is available.
	LookPath(name string) (string, error)
}
