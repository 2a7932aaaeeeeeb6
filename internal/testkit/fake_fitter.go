package testkit

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"phylosensi/domain/core"
	"phylosensi/domain/model"
	"phylosensi/ports"
)

// FakeFitter is a deterministic stand-in for the external regression
// service. It computes a closed-form least-squares line over the dataset
// plus a tiny perturbation derived from the species order, so fits react to
// both deletions and tree reorderings without any real optimization.
type FakeFitter struct {
	// FailWhenMissing lists species whose removal makes the fit fail,
	// simulating non-convergence on particular reduced datasets.
	FailWhenMissing []string

	// Hook, when set, can veto any fit before it is computed.
	Hook func(spec model.RegressionSpec, data *model.AlignedDataset) error

	// OptPar reported for models that optimize a signal parameter.
	OptPar float64

	// Calls counts Fit invocations.
	Calls int
}

var _ ports.ModelFitter = (*FakeFitter)(nil)

// NewFakeFitter creates a fake fitter with a fixed optimized parameter.
func NewFakeFitter() *FakeFitter {
	return &FakeFitter{OptPar: 0.5}
}

// Fit returns a deterministic fit or a tagged fitting error.
func (f *FakeFitter) Fit(ctx context.Context, spec model.RegressionSpec, data *model.AlignedDataset) (model.FitResult, error) {
	f.Calls++
	if f.Hook != nil {
		if err := f.Hook(spec, data); err != nil {
			return model.FitResult{}, core.NewFitError(spec.Formula(), err)
		}
	}
	present := make(map[string]bool, data.Len())
	for _, sp := range data.Species {
		present[sp] = true
	}
	for _, sp := range f.FailWhenMissing {
		if !present[sp] {
			return model.FitResult{}, core.NewFitError(spec.Formula(),
				fmt.Errorf("optimizer did not converge without %s", sp))
		}
	}

	n := data.Len()
	if n < 3 {
		return model.FitResult{}, core.NewFitError(spec.Formula(), fmt.Errorf("only %d observations", n))
	}

	x, y := data.Predictor, data.Response
	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
	}
	meanX, meanY := sumX/float64(n), sumY/float64(n)

	var sxx, sxy, syy float64
	for i := 0; i < n; i++ {
		dx, dy := x[i]-meanX, y[i]-meanY
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		return model.FitResult{}, core.NewFitError(spec.Formula(), fmt.Errorf("predictor has zero variance"))
	}

	slope := sxy / sxx
	intercept := meanY - slope*meanX

	// Order-sensitive nudge: a stand-in for the covariance structure the
	// real fitter derives from tree topology.
	nudge := orderNudge(data.Species)
	intercept += nudge
	slope += nudge / 2

	rss := syy - slope*sxy
	if rss < 1e-12 {
		rss = 1e-12
	}
	se := math.Sqrt(rss / float64(n-2) / sxx)
	tStat := math.Abs(slope) / se
	pSlope := 1 / (1 + tStat)
	pIntercept := 1 / (1 + math.Abs(intercept)/(se+1e-12))

	result := model.FitResult{
		Intercept:  intercept,
		InterceptP: pIntercept,
		Estimate:   slope,
		EstimateP:  pSlope,
		AIC:        float64(n)*math.Log(rss/float64(n)) + 4,
		N:          n,
	}
	if spec.Model.HasOptPar() {
		result.OptPar = model.SomeFloat(f.OptPar + nudge)
	}
	if spec.Model.IsLogistic() {
		result.InterceptSE = se * 2
		result.EstimateSE = se
	}
	return result, nil
}

// orderNudge maps the species ordering to a small deterministic value.
func orderNudge(species []string) float64 {
	h := fnv.New64a()
	h.Write([]byte(strings.Join(species, "|")))
	return float64(h.Sum64()%1000) / 1e4
}
