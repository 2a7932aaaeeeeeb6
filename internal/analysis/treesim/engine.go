package treesim

import (
	"context"
	"fmt"
	"strconv"

	"phylosensi/domain/core"
	"phylosensi/domain/model"
	"phylosensi/domain/phylo"
	"phylosensi/ports"
)

// Row is one successful refit over a substitute tree, keyed by the drawn
// tree's index in the candidate collection.
type Row struct {
	TreeIndex   int             `json:"tree_index"`
	Intercept   float64         `json:"intercept"`
	InterceptSE float64         `json:"intercept_se"`
	InterceptP  float64         `json:"intercept_p"`
	Estimate    float64         `json:"estimate"`
	EstimateSE  float64         `json:"estimate_se"`
	EstimateP   float64         `json:"estimate_p"`
	AIC         float64         `json:"aic"`
	OptPar      model.NullFloat `json:"optpar"`
	N           int             `json:"n"`
}

// Table is the tree-substitution estimates table, rows in draw order.
type Table struct {
	Rows []Row `json:"rows"`
}

// Engine runs the repeated-refit-over-alternate-trees loop with the same
// failure isolation as the deletion engine: one bad tree never aborts the
// batch.
type Engine struct {
	fitter   ports.ModelFitter
	rng      ports.RNG
	observer ports.ProgressObserver
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver injects a progress observer.
func WithObserver(obs ports.ProgressObserver) Option {
	return func(e *Engine) { e.observer = obs }
}

// NewEngine creates a tree-substitution resampling engine.
func NewEngine(fitter ports.ModelFitter, rng ports.RNG, opts ...Option) *Engine {
	e := &Engine{
		fitter:   fitter,
		rng:      rng,
		observer: ports.NopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run draws nTree distinct tree indices uniformly without replacement,
// reorders the trait rows to each drawn tree's tip order, and refits. It
// returns the table, the error log of skipped draws, and the drawn indices.
func (e *Engine) Run(ctx context.Context, spec model.RegressionSpec, ds *model.AlignedDataset, trees phylo.Multi, nTree int, seed int64) (*Table, *model.ErrorLog, []int, error) {
	if nTree < 1 {
		return nil, nil, nil, core.NewConstructionError("n.tree must be at least 1")
	}
	if nTree > len(trees) {
		return nil, nil, nil, fmt.Errorf("%w: n.tree=%d, have %d", core.ErrTooManyTrees, nTree, len(trees))
	}

	r := e.rng.Stream("tree-sample", seed)
	indices := r.Perm(len(trees))[:nTree]

	table := &Table{Rows: make([]Row, 0, nTree)}
	errlog := &model.ErrorLog{}

	e.observer.Start(nTree)
	for _, idx := range indices {
		key := strconv.Itoa(idx)
		row, err := e.fitOne(ctx, spec, ds, trees[idx], idx)
		e.observer.Step(key, err)
		if err != nil {
			errlog.Add(key, err)
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	e.observer.Finish()

	if len(table.Rows) == 0 {
		return nil, errlog, indices, fmt.Errorf("%w: all %d tree fits", core.ErrAllFitsFailed, nTree)
	}
	return table, errlog, indices, nil
}

func (e *Engine) fitOne(ctx context.Context, spec model.RegressionSpec, ds *model.AlignedDataset, tree *phylo.Tree, idx int) (Row, error) {
	// Topology, not just labels, determines the row order the fitter needs.
	reordered, err := ds.ReorderTo(tree)
	if err != nil {
		return Row{}, err
	}
	fit, err := e.fitter.Fit(ctx, spec, reordered)
	if err != nil {
		return Row{}, err
	}
	return Row{
		TreeIndex:   idx,
		Intercept:   fit.Intercept,
		InterceptSE: fit.InterceptSE,
		InterceptP:  fit.InterceptP,
		Estimate:    fit.Estimate,
		EstimateSE:  fit.EstimateSE,
		EstimateP:   fit.EstimateP,
		AIC:         fit.AIC,
		OptPar:      fit.OptPar,
		N:           fit.N,
	}, nil
}

// Headers names the serialized table columns.
func (t *Table) Headers() []string {
	return []string{
		"tree", "intercept", "se.intercept", "pval.intercept",
		"estimate", "se.estimate", "pval.estimate", "AIC", "optpar", "n",
	}
}

// Records renders the rows for the tabular-report writer.
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = []string{
			strconv.Itoa(r.TreeIndex),
			formatFloat(r.Intercept), formatFloat(r.InterceptSE), formatFloat(r.InterceptP),
			formatFloat(r.Estimate), formatFloat(r.EstimateSE), formatFloat(r.EstimateP),
			formatFloat(r.AIC), r.OptPar.String(), strconv.Itoa(r.N),
		}
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
