package model

import (
	"encoding/json"
	"strconv"
)

// NullFloat is a float that may be absent. The optimized phylogenetic
// parameter has no value under BM or trend fits and must stay an explicit
// "not applicable" marker, never a coerced zero.
type NullFloat struct {
	Value float64
	Valid bool
}

// SomeFloat wraps a present value.
func SomeFloat(v float64) NullFloat {
	return NullFloat{Value: v, Valid: true}
}

// String renders the value, or NA when absent.
func (n NullFloat) String() string {
	if !n.Valid {
		return "NA"
	}
	return strconv.FormatFloat(n.Value, 'g', 6, 64)
}

// MarshalJSON emits null for absent values.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON accepts null or a number.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = SomeFloat(v)
	return nil
}

// FitResult is the read-only outcome of one model fit, produced by the
// ModelFitter collaborator. Standard errors are populated by logistic fits.
type FitResult struct {
	Intercept   float64   `json:"intercept"`
	InterceptSE float64   `json:"intercept_se,omitempty"`
	InterceptP  float64   `json:"intercept_p"`
	Estimate    float64   `json:"estimate"`
	EstimateSE  float64   `json:"estimate_se,omitempty"`
	EstimateP   float64   `json:"estimate_p"`
	AIC         float64   `json:"aic"`
	OptPar      NullFloat `json:"optpar"`
	N           int       `json:"n"`
}
