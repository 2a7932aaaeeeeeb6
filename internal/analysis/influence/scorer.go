package influence

import (
	"math"
	"sort"

	"phylosensi/domain/model"
)

// Score ranks species by absolute standardized difference and filters to
// those exceeding the cutoff, independently for intercept and estimate.
// The two lists may differ in membership and order.
func Score(table *Table, cutoff float64) model.InfluentialSpecies {
	return model.InfluentialSpecies{
		Cutoff:      cutoff,
		ByIntercept: rank(table.Rows, cutoff, func(r Row) float64 { return r.SDIFIntercept }),
		ByEstimate:  rank(table.Rows, cutoff, func(r Row) float64 { return r.SDIFEstimate }),
	}
}

func rank(rows []Row, cutoff float64, score func(Row) float64) []string {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(score(sorted[i])) > math.Abs(score(sorted[j]))
	})
	var out []string
	for _, r := range sorted {
		if math.Abs(score(r)) <= cutoff {
			break
		}
		out = append(out, r.Species)
	}
	return out
}
