package treesim

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"phylosensi/domain/core"
	"phylosensi/domain/model"
)

// Aggregate summarizes each numeric parameter column across the successful
// tree fits: min, max, mean, sample sd, and a Student-t 95% confidence
// interval on the mean. With fewer than two rows the sd and interval are
// left explicitly undefined and a warning is returned instead of NaN.
func Aggregate(table *Table) ([]model.UncertaintyStats, []string, error) {
	if len(table.Rows) == 0 {
		return nil, nil, core.ErrAllFitsFailed
	}

	columns := []struct {
		name  string
		value func(Row) model.NullFloat
	}{
		{"intercept", func(r Row) model.NullFloat { return model.SomeFloat(r.Intercept) }},
		{"se.intercept", func(r Row) model.NullFloat { return model.SomeFloat(r.InterceptSE) }},
		{"pval.intercept", func(r Row) model.NullFloat { return model.SomeFloat(r.InterceptP) }},
		{"estimate", func(r Row) model.NullFloat { return model.SomeFloat(r.Estimate) }},
		{"se.estimate", func(r Row) model.NullFloat { return model.SomeFloat(r.EstimateSE) }},
		{"pval.estimate", func(r Row) model.NullFloat { return model.SomeFloat(r.EstimateP) }},
		{"aic", func(r Row) model.NullFloat { return model.SomeFloat(r.AIC) }},
		{"optpar", func(r Row) model.NullFloat { return r.OptPar }},
	}

	var out []model.UncertaintyStats
	var warnings []string
	for _, col := range columns {
		var values []float64
		for _, row := range table.Rows {
			if v := col.value(row); v.Valid {
				values = append(values, v.Value)
			}
		}
		if len(values) == 0 {
			// Parameter absent from every fit (e.g. no optimized parameter).
			continue
		}
		row, warn, err := summarize(col.name, values)
		if err != nil {
			return nil, nil, err
		}
		if warn != "" {
			warnings = append(warnings, warn)
		}
		out = append(out, row)
	}
	return out, warnings, nil
}

func summarize(name string, values []float64) (model.UncertaintyStats, string, error) {
	min, err := stats.Min(values)
	if err != nil {
		return model.UncertaintyStats{}, "", fmt.Errorf("aggregating %s: %w", name, err)
	}
	max, _ := stats.Max(values)
	mean, _ := stats.Mean(values)

	row := model.UncertaintyStats{
		Parameter: name,
		N:         len(values),
		Min:       min,
		Max:       max,
		Mean:      mean,
	}
	if len(values) < 2 {
		warn := fmt.Sprintf("parameter %s: only %d successful fit, sd and CI undefined", name, len(values))
		return row, warn, nil
	}

	sd, err := stats.StandardDeviationSample(values)
	if err != nil {
		return model.UncertaintyStats{}, "", fmt.Errorf("aggregating %s: %w", name, err)
	}
	df := float64(len(values) - 1)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(0.975)
	half := t * sd / math.Sqrt(float64(len(values)))

	row.SD = model.SomeFloat(sd)
	row.CILow = model.SomeFloat(mean - half)
	row.CIHigh = model.SomeFloat(mean + half)
	return row, "", nil
}
