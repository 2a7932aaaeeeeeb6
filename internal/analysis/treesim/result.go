package treesim

import (
	"phylosensi/domain/core"
	"phylosensi/domain/model"
)

// Result is the immutable bundle for a tree-uncertainty analysis.
type Result struct {
	AnalysisID   core.AnalysisID          `json:"analysis_id"`
	Spec         model.RegressionSpec     `json:"spec"`
	NTree        int                      `json:"n_tree"`
	Indices      []int                    `json:"tree_indices"`
	Estimates    *Table                   `json:"estimates"`
	Stats        []model.UncertaintyStats `json:"stats"`
	Warnings     []string                 `json:"warnings,omitempty"`
	Dataset      *model.AlignedDataset    `json:"dataset"`
	Errors       model.ErrorLog           `json:"errors"`
	ErrorSummary string                   `json:"error_summary"`
}

// NewResult assembles the bundle with a non-empty error summary, so callers
// can tell "zero errors" from "didn't check".
func NewResult(spec model.RegressionSpec, nTree int, indices []int, table *Table, statsRows []model.UncertaintyStats, warnings []string, ds *model.AlignedDataset, errlog *model.ErrorLog) *Result {
	return &Result{
		AnalysisID:   core.AnalysisID(core.NewID()),
		Spec:         spec,
		NTree:        nTree,
		Indices:      indices,
		Estimates:    table,
		Stats:        statsRows,
		Warnings:     warnings,
		Dataset:      ds,
		Errors:       *errlog,
		ErrorSummary: errlog.Summary(),
	}
}
