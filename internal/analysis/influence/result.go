package influence

import (
	"phylosensi/domain/core"
	"phylosensi/domain/model"
)

// Result is the immutable bundle handed to reporting and plotting
// collaborators after a deletion analysis.
type Result struct {
	AnalysisID   core.AnalysisID          `json:"analysis_id"`
	Spec         model.RegressionSpec     `json:"spec"`
	Cutoff       float64                  `json:"cutoff"`
	FullModel    model.FitResult          `json:"full_model"`
	Estimates    *Table                   `json:"estimates"`
	Influential  model.InfluentialSpecies `json:"influential_species"`
	Dataset      *model.AlignedDataset    `json:"dataset"`
	Errors       model.ErrorLog           `json:"errors"`
	ErrorSummary string                   `json:"error_summary"`
}

// NewResult assembles the bundle. The error summary is always non-empty:
// either the real failure account or the explicit no-errors sentinel.
func NewResult(spec model.RegressionSpec, cutoff float64, full model.FitResult, table *Table, influential model.InfluentialSpecies, ds *model.AlignedDataset, errlog *model.ErrorLog) *Result {
	return &Result{
		AnalysisID:   core.AnalysisID(core.NewID()),
		Spec:         spec,
		Cutoff:       cutoff,
		FullModel:    full,
		Estimates:    table,
		Influential:  influential,
		Dataset:      ds,
		Errors:       *errlog,
		ErrorSummary: errlog.Summary(),
	}
}
