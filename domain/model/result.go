package model

// InfluentialSpecies holds the two independently ranked influence lists.
// Each list is filtered to species whose absolute standardized difference
// exceeds the cutoff, most influential first; membership and order of the
// two lists carry no cross-constraint.
type InfluentialSpecies struct {
	Cutoff      float64  `json:"cutoff"`
	ByIntercept []string `json:"by_intercept"`
	ByEstimate  []string `json:"by_estimate"`
}

// UncertaintyStats summarizes one parameter across the tree-substitution
// fits. SD and the confidence bounds are absent when fewer than two fits
// succeeded rather than computed as NaN.
type UncertaintyStats struct {
	Parameter string    `json:"parameter"`
	N         int       `json:"n"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
	Mean      float64   `json:"mean"`
	SD        NullFloat `json:"sd"`
	CILow     NullFloat `json:"ci_low"`
	CIHigh    NullFloat `json:"ci_high"`
}
