package ports

import (
	"context"

	"phylosensi/domain/model"
)

// ModelFitter is the external regression collaborator. Given a spec and an
// aligned dataset it returns fitted coefficients and diagnostics, or a
// distinguishable error on numerical non-convergence - never a silent
// default fit.
type ModelFitter interface {
	Fit(ctx context.Context, spec model.RegressionSpec, data *model.AlignedDataset) (model.FitResult, error)
}
