package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Construction errors - raised before any iteration runs
	ErrConstruction    = errors.New("analysis construction failed")
	ErrUnknownModel    = fmt.Errorf("%w: unknown evolutionary model", ErrConstruction)
	ErrMultiPredictor  = fmt.Errorf("%w: only single-predictor formulas are supported", ErrConstruction)
	ErrTrendUltrametric = fmt.Errorf("%w: trend model is unidentifiable on an ultrametric tree", ErrConstruction)
	ErrTooManyTrees    = fmt.Errorf("%w: requested sample exceeds candidate tree count", ErrConstruction)
	ErrTipSetMismatch  = fmt.Errorf("%w: candidate trees do not share one tip set", ErrConstruction)
	ErrDataTreeMismatch = fmt.Errorf("%w: trait rows and tree tips do not align", ErrConstruction)

	// Resampling errors
	ErrAllFitsFailed = errors.New("every resampling fit failed")
	ErrTooFewFits    = errors.New("too few successful fits to standardize")
	ErrZeroVariance  = errors.New("zero variance across successful fits")

	// Input errors
	ErrNoOverlap      = errors.New("no species shared between trait table and tree")
	ErrColumnNotFound = errors.New("trait column not found")
	ErrSpeciesNotFound = errors.New("species not found")

	// Fitting errors
	ErrFitFailed = errors.New("model fit failed")
)

// NewConstructionError wraps a reason into the construction error class.
func NewConstructionError(reason string) error {
	return fmt.Errorf("%w: %s", ErrConstruction, reason)
}

// NewFitError tags a collaborator failure as a fitting error.
func NewFitError(key string, cause error) error {
	return fmt.Errorf("%w for %s: %v", ErrFitFailed, key, cause)
}

// IsConstructionError reports whether err is fatal before iteration.
func IsConstructionError(err error) bool {
	return errors.Is(err, ErrConstruction)
}

// IsEmptyResultError reports whether err means zero usable rows survived.
func IsEmptyResultError(err error) bool {
	return errors.Is(err, ErrAllFitsFailed) || errors.Is(err, ErrTooFewFits)
}
