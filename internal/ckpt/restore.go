package ckpt

import (
	"context"
	"errors"
)

// SafetyNetLabel is the label given to the automatic backup taken before a
// destructive restore.
const SafetyNetLabel = "pre-restore"

// RestoreOptions selects which facets a restore replays and whether the
// safety-net backup is skipped. The zero value restores nothing; use
// DefaultRestoreOptions for the standard full restore.
type RestoreOptions struct {
	SkipSafetyBackup bool
	Code             bool
	Database         bool
	Config           bool
}

// DefaultRestoreOptions restores all facets and takes the safety-net
// backup first.
func DefaultRestoreOptions() RestoreOptions {
	return RestoreOptions{Code: true, Database: true, Config: true}
}

// FacetResult is the outcome of one selected restore facet.
type FacetResult struct {
	Facet string
	Err   error
}

// RestoreResult reports per-facet outcomes of one restore call. Facets that
// succeeded before a later facet failed stay applied; the result never
// collapses to a single pass/fail.
type RestoreResult struct {
	RestorePoint *RestorePoint
	SafetyNet    *RestorePoint
	Facets       []FacetResult
}

// Failed reports whether any selected facet failed.
func (r *RestoreResult) Failed() bool {
	for _, f := range r.Facets {
		if f.Err != nil {
			return true
		}
	}
	return false
}

// Err returns the per-facet failures joined into one error, or nil.
func (r *RestoreResult) Err() error {
	var errs []error
	for _, f := range r.Facets {
		if f.Err != nil {
			errs = append(errs, &RestoreStepError{Facet: f.Facet, Err: f.Err})
		}
	}
	return errors.Join(errs...)
}

// RestoreFromBackup rolls the project back to the named restore point.
// Unknown ids fail with RestoreNotFoundError before anything is touched.
// Unless opts.SkipSafetyBackup is set, a full backup labeled
// SafetyNetLabel is created first so the restore is itself reversible; its
// failure aborts the restore. Facet failures are collected in the result,
// not returned as the call error.
func (s *Service) RestoreFromBackup(ctx context.Context, id string, opts RestoreOptions) (*RestoreResult, error) {
	rp, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if rp == nil {
		return nil, &RestoreNotFoundError{ID: id}
	}

	result := &RestoreResult{RestorePoint: rp}

	if !opts.SkipSafetyBackup {
		// The target id is exempted from capacity truncation: at capacity
		// the safety-net append would otherwise evict the oldest entry,
		// which may be the very point being restored.
		safety, err := s.createBackup(ctx, SafetyNetLabel, rp.Phase, rp.Week, rp.ID)
		if err != nil {
			return nil, &RestoreStepError{Facet: "safety-net", Err: err}
		}
		result.SafetyNet = safety
		s.logger.Info("safety-net backup created", "id", safety.ID)
	}

	if opts.Code && rp.Repository != nil {
		err := s.repo.Restore(ctx, rp.Repository)
		result.Facets = append(result.Facets, FacetResult{Facet: "repository", Err: err})
		s.logFacet("repository", err)
	}
	if opts.Database && rp.Databases != nil {
		err := s.db.Restore(ctx, rp.Databases)
		result.Facets = append(result.Facets, FacetResult{Facet: "database", Err: err})
		s.logFacet("database", err)
	}
	if opts.Config && rp.Configs != nil {
		err := s.configs.Restore(ctx, rp.Configs)
		result.Facets = append(result.Facets, FacetResult{Facet: "config", Err: err})
		s.logFacet("config", err)
	}

	return result, nil
}

func (s *Service) logFacet(facet string, err error) {
	if err != nil {
		s.logger.Error("restore facet failed", "facet", facet, "error", err)
		return
	}
	s.logger.Info("restore facet complete", "facet", facet)
}
