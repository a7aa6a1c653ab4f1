package app

import (
	"context"
	"fmt"
	"os"

	"ckpt-go/internal/ckpt"
	"ckpt-go/internal/config"
	"ckpt-go/internal/history"
	"ckpt-go/internal/run"
	"ckpt-go/internal/snapshot"
	"ckpt-go/internal/store"
)

// App is the application layer between the CLI and the ckpt Service.
// It constructs all dependencies from config, exposes high-level
// operations, and manages the history ledger and log file on Close.
type App struct {
	cfg     *config.Config
	service *ckpt.Service
	hist    *history.Log
	clock   ckpt.Clock
	logger  ckpt.Logger
	op      *Operation
	logFile *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "CreateBackup").
// parameters is the free-form argument summary recorded in the history
// ledger. The caller must call Close when done.
func NewApp(cfg *config.Config, operation, parameters string) (*App, error) {
	clock := ckpt.RealClock{}

	opID := clock.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	st, err := store.NewStoreFromConfig(cfg.Registry)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating restore point store: %w", err)
	}
	registry := ckpt.NewRegistry(st, cfg.Registry.Capacity, clock, logger)

	runner := run.NewExecRunner()
	svc := ckpt.NewService(
		snapshot.NewRepository(cfg.ProjectRoot, runner, logger),
		snapshot.NewDatabase(cfg.Database.Paths, cfg.Database.DumpTool, runner, logger, clock),
		snapshot.NewConfigFiles(cfg.ProjectRoot, cfg.Configs.Paths, logger, clock),
		snapshot.NewSystemState(runner, logger, clock),
		snapshot.NewArchive(cfg.ProjectRoot, archiveExcludes(cfg), runner, logger),
		registry,
		logger,
		clock,
		cfg.BackupDir,
	)

	// The history ledger is diagnostic only; failing to open it must not
	// block backup or restore work.
	hist, err := history.Open(cfg.HistoryDB)
	if err != nil {
		logger.Warn("history ledger unavailable", "path", cfg.HistoryDB, "error", err)
		hist = nil
	}

	return &App{
		cfg:     cfg,
		service: svc,
		hist:    hist,
		clock:   clock,
		logger:  logger,
		op:      NewOperation(operation, parameters),
		logFile: logFile,
	}, nil
}

// archiveExcludes returns the configured exclusion list, or nil to select
// the snapshotter's defaults.
func archiveExcludes(cfg *config.Config) []string {
	if len(cfg.Archive.Excludes) == 0 {
		return nil
	}
	return cfg.Archive.Excludes
}

// persistOperation saves the operation to the history ledger, giving it an
// auto-increment ID. Only mutating commands call this.
func (a *App) persistOperation() {
	if a.hist == nil || a.op.Persisted() {
		return
	}
	id, err := a.hist.Begin(a.op.Operation, a.op.Parameters, a.clock.Now())
	if err != nil {
		a.logger.Warn("recording operation start", "error", err)
		return
	}
	a.op.ID = id
}

// MarkFailed records that the current operation ended in error.
func (a *App) MarkFailed() {
	a.op.Status = history.StatusError
}

// CreateBackup captures a full restore point under the given label.
func (a *App) CreateBackup(ctx context.Context, label, phase, week string) (*ckpt.RestorePoint, error) {
	a.persistOperation()
	return a.service.CreateFullBackup(ctx, label, phase, week)
}

// ListBackups returns registered restore points, newest first, with
// artifact existence annotations.
func (a *App) ListBackups(ctx context.Context) ([]*ckpt.RestorePointInfo, error) {
	return a.service.ListBackups(ctx)
}

// Restore rolls the project back to the named restore point.
func (a *App) Restore(ctx context.Context, id string, opts ckpt.RestoreOptions) (*ckpt.RestoreResult, error) {
	a.persistOperation()
	return a.service.RestoreFromBackup(ctx, id, opts)
}

// Cleanup purges restore points older than retentionDays.
func (a *App) Cleanup(ctx context.Context, retentionDays int) ([]string, error) {
	a.persistOperation()
	return a.service.Cleanup(ctx, retentionDays)
}

// History returns the most recent recorded operations.
func (a *App) History(limit int) ([]*history.Operation, error) {
	if a.hist == nil {
		return nil, fmt.Errorf("history ledger unavailable")
	}
	return a.hist.Recent(limit)
}

// Close finalizes the operation record and closes all resources.
func (a *App) Close() error {
	var firstErr error

	if a.hist != nil {
		if a.op.Persisted() {
			if err := a.hist.Finish(a.op.ID, a.op.Status, a.clock.Now()); err != nil {
				firstErr = fmt.Errorf("finishing operation record: %w", err)
			}
		}
		if err := a.hist.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing history ledger: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
