package model

import (
	"fmt"
	"strings"

	"phylosensi/domain/core"
)

// Evolution tags the trait-evolution model handed to the fitter.
type Evolution string

const (
	BM           Evolution = "BM"
	OUFixedRoot  Evolution = "OUfixedRoot"
	OURandomRoot Evolution = "OUrandomRoot"
	Lambda       Evolution = "lambda"
	Kappa        Evolution = "kappa"
	Delta        Evolution = "delta"
	EB           Evolution = "EB"
	Trend        Evolution = "trend"

	// Logistic-link variants used by the tree-uncertainty analysis.
	LogisticMPLE Evolution = "logistic_MPLE"
	LogisticIG10 Evolution = "logistic_IG10"
)

var linearModels = []Evolution{BM, OUFixedRoot, OURandomRoot, Lambda, Kappa, Delta, EB, Trend}

// Valid reports whether the tag belongs to the supported enumeration.
func (e Evolution) Valid() bool {
	if e.IsLogistic() {
		return true
	}
	for _, m := range linearModels {
		if e == m {
			return true
		}
	}
	return false
}

// IsLogistic reports whether the tag is a logistic-link variant.
func (e Evolution) IsLogistic() bool {
	return e == LogisticMPLE || e == LogisticIG10
}

// HasOptPar reports whether fits under this model optimize a phylogenetic
// signal parameter. BM and trend fix the covariance structure outright.
func (e Evolution) HasOptPar() bool {
	return e != BM && e != Trend
}

// OptParName names the optimized parameter for reporting.
func (e Evolution) OptParName() string {
	switch e {
	case OUFixedRoot, OURandomRoot, LogisticMPLE, LogisticIG10:
		return "alpha"
	case Lambda:
		return "lambda"
	case Kappa:
		return "kappa"
	case Delta:
		return "delta"
	case EB:
		return "rate"
	default:
		return ""
	}
}

// FitOptions carries fitter tuning that the engine forwards untouched.
type FitOptions struct {
	// SearchBound bounds the logistic linear-predictor search space (btol).
	SearchBound float64 `json:"search_bound,omitempty"`
	// Raw holds opaque extra options as a JSON object for the fitter.
	Raw string `json:"raw,omitempty"`
}

// RegressionSpec describes one single-predictor phylogenetic regression.
// Immutable once constructed.
type RegressionSpec struct {
	Response  string     `json:"response"`
	Predictor string     `json:"predictor"`
	Model     Evolution  `json:"model"`
	Options   FitOptions `json:"options"`
}

// NewRegressionSpec validates and builds a regression spec.
func NewRegressionSpec(response, predictor string, evo Evolution, opts FitOptions) (RegressionSpec, error) {
	if strings.TrimSpace(response) == "" || strings.TrimSpace(predictor) == "" {
		return RegressionSpec{}, core.NewConstructionError("formula needs a response and a predictor")
	}
	if strings.ContainsAny(predictor, "+*") || len(strings.Fields(predictor)) > 1 {
		return RegressionSpec{}, fmt.Errorf("%w: got %q", core.ErrMultiPredictor, predictor)
	}
	if response == predictor {
		return RegressionSpec{}, core.NewConstructionError("response and predictor must differ")
	}
	if !evo.Valid() {
		return RegressionSpec{}, fmt.Errorf("%w: %q", core.ErrUnknownModel, evo)
	}
	return RegressionSpec{
		Response:  response,
		Predictor: predictor,
		Model:     evo,
		Options:   opts,
	}, nil
}

// Formula renders the spec in y ~ x notation for reports.
func (s RegressionSpec) Formula() string {
	return s.Response + " ~ " + s.Predictor
}
