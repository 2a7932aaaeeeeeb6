package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"phylosensi/domain/core"
	"phylosensi/domain/model"
	"phylosensi/domain/phylo"
	"phylosensi/internal/analysis/influence"
	"phylosensi/internal/analysis/treesim"
	"phylosensi/ports"
)

// ultrametricTol is the relative tolerance used when rejecting trend fits
// on ultrametric trees.
const ultrametricTol = 1e-8

// SensitivityService orchestrates the two sensitivity analyses: data/tree
// alignment, the reference fit, the resampling loop, and bundle assembly.
type SensitivityService struct {
	matcher  ports.DataTreeMatcher
	fitter   ports.ModelFitter
	rng      ports.RNG
	observer ports.ProgressObserver
	workers  int
}

// NewSensitivityService creates the orchestration service. A nil observer
// disables progress reporting.
func NewSensitivityService(matcher ports.DataTreeMatcher, fitter ports.ModelFitter, rng ports.RNG, observer ports.ProgressObserver) *SensitivityService {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &SensitivityService{
		matcher:  matcher,
		fitter:   fitter,
		rng:      rng,
		observer: observer,
		workers:  1,
	}
}

// SetWorkers bounds concurrent refits in the deletion loop.
func (s *SensitivityService) SetWorkers(n int) {
	if n > 0 {
		s.workers = n
	}
}

// InfluenceRequest describes one leave-one-species-out analysis.
type InfluenceRequest struct {
	Spec   model.RegressionSpec
	Traits *model.TraitTable
	Tree   *phylo.Tree
	Cutoff float64 // standardized-difference cutoff, default 2.0
}

// TreeUncertaintyRequest describes one repeated-refit analysis over a
// candidate-tree collection.
type TreeUncertaintyRequest struct {
	Spec   model.RegressionSpec
	Traits *model.TraitTable
	Trees  phylo.Multi
	NTree  int
	Seed   int64
}

// RunInfluence aligns the inputs, fits the reference model on the full
// dataset, runs the deletion loop, and ranks influential species.
func (s *SensitivityService) RunInfluence(ctx context.Context, req InfluenceRequest) (*influence.Result, error) {
	start := time.Now()
	if req.Spec.Model.IsLogistic() {
		return nil, core.NewConstructionError("influence analysis expects a linear evolutionary model")
	}
	cutoff := req.Cutoff
	if cutoff == 0 {
		cutoff = 2.0
	}
	if cutoff < 0 {
		return nil, core.NewConstructionError("cutoff must be positive")
	}

	ds, err := s.matcher.Match(req.Spec, req.Traits, req.Tree)
	if err != nil {
		return nil, err
	}
	if req.Spec.Model == model.Trend && ds.Tree.IsUltrametric(ultrametricTol) {
		return nil, core.ErrTrendUltrametric
	}

	full, err := s.fitter.Fit(ctx, req.Spec, ds)
	if err != nil {
		return nil, fmt.Errorf("reference fit on the full dataset: %w", err)
	}

	engine := influence.NewEngine(s.fitter,
		influence.WithObserver(s.observer),
		influence.WithWorkers(s.workers))
	table, errlog, err := engine.Run(ctx, req.Spec, ds, full)
	if err != nil {
		return nil, err
	}

	influential := influence.Score(table, cutoff)
	result := influence.NewResult(req.Spec, cutoff, full, table, influential, ds, errlog)
	log.Printf("[Sensitivity] influence analysis %s: %d/%d fits ok in %s",
		result.AnalysisID, len(table.Rows), ds.Len(), time.Since(start).Round(time.Millisecond))
	return result, nil
}

// RunTreeUncertainty aligns the inputs against the tree collection, draws
// the requested sample, refits per tree, and aggregates summary statistics.
func (s *SensitivityService) RunTreeUncertainty(ctx context.Context, req TreeUncertaintyRequest) (*treesim.Result, error) {
	start := time.Now()
	if !req.Spec.Model.IsLogistic() {
		return nil, core.NewConstructionError("tree-uncertainty analysis expects a logistic-link model")
	}
	spec := req.Spec
	if spec.Options.SearchBound == 0 {
		// Default linear-predictor search bound for the logistic fitter.
		spec.Options.SearchBound = 50
	}

	ds, trees, err := s.matcher.MatchMulti(spec, req.Traits, req.Trees)
	if err != nil {
		return nil, err
	}

	engine := treesim.NewEngine(s.fitter, s.rng, treesim.WithObserver(s.observer))
	table, errlog, indices, err := engine.Run(ctx, spec, ds, trees, req.NTree, req.Seed)
	if err != nil {
		return nil, err
	}

	statsRows, warnings, err := treesim.Aggregate(table)
	if err != nil {
		return nil, err
	}
	for _, warn := range warnings {
		log.Printf("[Sensitivity] warning: %s", warn)
	}

	result := treesim.NewResult(spec, req.NTree, indices, table, statsRows, warnings, ds, errlog)
	log.Printf("[Sensitivity] tree-uncertainty analysis %s: %d/%d fits ok in %s",
		result.AnalysisID, len(table.Rows), req.NTree, time.Since(start).Round(time.Millisecond))
	return result, nil
}
