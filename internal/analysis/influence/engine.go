package influence

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/semaphore"

	"phylosensi/domain/core"
	"phylosensi/domain/model"
	"phylosensi/ports"
)

// Row is one successful leave-one-out refit, with its deviations from the
// reference fit. SDIF columns are filled after the loop, once the sample
// standard deviation of each raw-difference column is known.
type Row struct {
	Species       string          `json:"species"`
	Intercept     float64         `json:"intercept"`
	DIFIntercept  float64         `json:"dif_intercept"`
	SDIFIntercept float64         `json:"sdif_intercept"`
	PercIntercept float64         `json:"perc_intercept"`
	InterceptP    float64         `json:"intercept_p"`
	Estimate      float64         `json:"estimate"`
	DIFEstimate   float64         `json:"dif_estimate"`
	SDIFEstimate  float64         `json:"sdif_estimate"`
	PercEstimate  float64         `json:"perc_estimate"`
	EstimateP     float64         `json:"estimate_p"`
	AIC           float64         `json:"aic"`
	OptPar        model.NullFloat `json:"optpar"`
	N             int             `json:"n"`
}

// Table is the deletion-mode estimates table: one row per successful
// iteration, in tree tip order. Frozen once the loop exits.
type Table struct {
	Rows []Row `json:"rows"`
}

// Engine runs the leave-one-species-out resampling loop. Each iteration
// refits the model on a reduced dataset; fitter failures are absorbed into
// the error log and never abort the batch.
type Engine struct {
	fitter   ports.ModelFitter
	observer ports.ProgressObserver
	workers  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver injects a progress observer.
func WithObserver(obs ports.ProgressObserver) Option {
	return func(e *Engine) { e.observer = obs }
}

// WithWorkers bounds concurrent refits. Results stay in tip order because
// each iteration writes its own pre-sized slot; the default of 1 keeps the
// loop strictly sequential.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine creates a deletion-mode resampling engine.
func NewEngine(fitter ports.ModelFitter, opts ...Option) *Engine {
	e := &Engine{
		fitter:   fitter,
		observer: ports.NopObserver{},
		workers:  1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// outcome is one iteration's slot: a finished row or the failure that
// replaced it.
type outcome struct {
	row Row
	err error
}

// Run refits the model once per species and derives the influence columns
// against the reference fit. It returns the frozen table, the error log of
// skipped iterations, and a hard error only for construction-class or
// empty-result conditions.
func (e *Engine) Run(ctx context.Context, spec model.RegressionSpec, ds *model.AlignedDataset, ref model.FitResult) (*Table, *model.ErrorLog, error) {
	if ds.Len() < 3 {
		return nil, nil, core.NewConstructionError(
			fmt.Sprintf("need at least 3 species for deletion analysis, have %d", ds.Len()))
	}

	species := ds.Tree.Tips()
	slots := make([]outcome, len(species))

	e.observer.Start(len(species))
	if e.workers > 1 {
		e.runParallel(ctx, spec, ds, ref, species, slots)
	} else {
		for i, sp := range species {
			slots[i] = e.fitOne(ctx, spec, ds, ref, sp)
		}
	}

	// Compact successful slots in iteration order.
	table := &Table{Rows: make([]Row, 0, len(species))}
	errlog := &model.ErrorLog{}
	for i, slot := range slots {
		e.observer.Step(species[i], slot.err)
		if slot.err != nil {
			errlog.Add(species[i], slot.err)
			continue
		}
		table.Rows = append(table.Rows, slot.row)
	}
	e.observer.Finish()

	if len(table.Rows) == 0 {
		return nil, errlog, fmt.Errorf("%w: all %d deletions", core.ErrAllFitsFailed, len(species))
	}
	if err := standardize(table); err != nil {
		return nil, errlog, err
	}
	return table, errlog, nil
}

func (e *Engine) runParallel(ctx context.Context, spec model.RegressionSpec, ds *model.AlignedDataset, ref model.FitResult, species []string, slots []outcome) {
	sem := semaphore.NewWeighted(int64(e.workers))
	var wg sync.WaitGroup
	for i, sp := range species {
		if err := sem.Acquire(ctx, 1); err != nil {
			slots[i] = outcome{err: err}
			continue
		}
		wg.Add(1)
		go func(i int, sp string) {
			defer wg.Done()
			defer sem.Release(1)
			slots[i] = e.fitOne(ctx, spec, ds, ref, sp)
		}(i, sp)
	}
	wg.Wait()
}

func (e *Engine) fitOne(ctx context.Context, spec model.RegressionSpec, ds *model.AlignedDataset, ref model.FitResult, sp string) outcome {
	reduced, err := ds.WithoutSpecies(sp)
	if err != nil {
		return outcome{err: err}
	}
	fit, err := e.fitter.Fit(ctx, spec, reduced)
	if err != nil {
		return outcome{err: err}
	}
	return outcome{row: deriveRow(sp, fit, ref)}
}

func deriveRow(sp string, fit, ref model.FitResult) Row {
	difIntercept := fit.Intercept - ref.Intercept
	difEstimate := fit.Estimate - ref.Estimate
	return Row{
		Species:       sp,
		Intercept:     fit.Intercept,
		DIFIntercept:  difIntercept,
		PercIntercept: percentChange(difIntercept, ref.Intercept),
		InterceptP:    fit.InterceptP,
		Estimate:      fit.Estimate,
		DIFEstimate:   difEstimate,
		PercEstimate:  percentChange(difEstimate, ref.Estimate),
		EstimateP:     fit.EstimateP,
		AIC:           fit.AIC,
		OptPar:        fit.OptPar,
		N:             fit.N,
	}
}

// percentChange is the magnitude of the shift relative to the reference
// value, in percent, rounded to one decimal.
func percentChange(dif, ref float64) float64 {
	return math.Round(math.Abs(dif/ref)*100*10) / 10
}

// standardize divides each raw-difference column by its own sample standard
// deviation across all successful rows. Undefined deviations (fewer than
// two rows, or a zero-variance column) fail loudly instead of yielding NaN.
func standardize(table *Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("%w: %d successful fits", core.ErrTooFewFits, len(table.Rows))
	}
	difIntercept := make([]float64, len(table.Rows))
	difEstimate := make([]float64, len(table.Rows))
	for i, row := range table.Rows {
		difIntercept[i] = row.DIFIntercept
		difEstimate[i] = row.DIFEstimate
	}
	sdIntercept, err := stats.StandardDeviationSample(difIntercept)
	if err != nil {
		return fmt.Errorf("standardizing intercept differences: %w", err)
	}
	sdEstimate, err := stats.StandardDeviationSample(difEstimate)
	if err != nil {
		return fmt.Errorf("standardizing estimate differences: %w", err)
	}
	if sdIntercept == 0 || sdEstimate == 0 {
		return fmt.Errorf("%w: cannot standardize differences", core.ErrZeroVariance)
	}
	for i := range table.Rows {
		table.Rows[i].SDIFIntercept = table.Rows[i].DIFIntercept / sdIntercept
		table.Rows[i].SDIFEstimate = table.Rows[i].DIFEstimate / sdEstimate
	}
	return nil
}

// Headers names the serialized table columns.
func (t *Table) Headers() []string {
	return []string{
		"species", "intercept", "DIF.intercept", "sDIF.intercept", "perc.intercept", "pval.intercept",
		"estimate", "DIF.estimate", "sDIF.estimate", "perc.estimate", "pval.estimate",
		"AIC", "optpar", "n",
	}
}

// Records renders the rows for the tabular-report writer.
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = []string{
			r.Species,
			formatFloat(r.Intercept), formatFloat(r.DIFIntercept), formatFloat(r.SDIFIntercept),
			formatFloat(r.PercIntercept), formatFloat(r.InterceptP),
			formatFloat(r.Estimate), formatFloat(r.DIFEstimate), formatFloat(r.SDIFEstimate),
			formatFloat(r.PercEstimate), formatFloat(r.EstimateP),
			formatFloat(r.AIC), r.OptPar.String(), strconv.Itoa(r.N),
		}
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
