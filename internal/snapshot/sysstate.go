package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"ckpt-go/internal/ckpt"
)

// StateFileName is the telemetry record written inside a restore point's
// state directory.
const StateFileName = "system_state.json"

// captureEnv lists the environment variables worth recording for later
// debugging of a captured state.
var captureEnv = []string{
	"HOME",
	"USER",
	"SHELL",
	"VIRTUAL_ENV",
	"CONDA_DEFAULT_ENV",
	"CUDA_VISIBLE_DEVICES",
}

// SystemState captures read-only diagnostic telemetry: process list,
// listening ports, accelerator status. Every sub-capture is independently
// guarded so a missing tool degrades that one field to an explanatory
// placeholder instead of failing the step. There is no restore operation.
type SystemState struct {
	runner ckpt.ProcessRunner
	logger ckpt.Logger
	clock  ckpt.Clock
}

// NewSystemState creates a SystemState snapshotter.
func NewSystemState(runner ckpt.ProcessRunner, logger ckpt.Logger, clock ckpt.Clock) *SystemState {
	return &SystemState{runner: runner, logger: logger, clock: clock}
}

// Snapshot writes the telemetry record into destDir and returns it.
func (s *SystemState) Snapshot(ctx context.Context, destDir string) (*ckpt.SystemStateSnapshot, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = fmt.Sprintf("unavailable: %v", err)
	}

	env := make(map[string]string)
	for _, key := range captureEnv {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}

	snap := &ckpt.SystemStateSnapshot{
		CapturedAt:  s.clock.Now(),
		GoVersion:   runtime.Version(),
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		Hostname:    hostname,
		PID:         os.Getpid(),
		Environment: env,
		Processes:   s.capture(ctx, "ps", "aux"),
		Ports:       s.capture(ctx, "ss", "-tlnp"),
		Accelerator: s.capture(ctx, "nvidia-smi"),
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding state snapshot: %w", err)
	}

	snap.Path = filepath.Join(destDir, StateFileName)
	if err := os.WriteFile(snap.Path, data, 0644); err != nil {
		return nil, fmt.Errorf("writing state snapshot: %w", err)
	}

	s.logger.Info("system state captured", "path", snap.Path)
	return snap, nil
}

// capture runs one telemetry tool and returns its stdout, or an
// explanatory placeholder when the tool is missing or fails.
func (s *SystemState) capture(ctx context.Context, name string, args ...string) string {
	if _, err := s.runner.LookPath(name); err != nil {
		return fmt.Sprintf("unavailable: %s not found", name)
	}
	res, err := s.runner.Run(ctx, name, args...)
	if err != nil {
		s.logger.Debug("telemetry capture failed", "tool", name, "error", err)
		return fmt.Sprintf("unavailable: %v", err)
	}
	return res.Stdout
}

var _ ckpt.SystemStateSnapshotter = (*SystemState)(nil)
