package report

import (
	"fmt"
	"strings"

	"phylosensi/internal/analysis/influence"
	"phylosensi/internal/analysis/treesim"
)

// InfluenceText renders a plain-text summary of a deletion analysis for
// terminal output.
func InfluenceText(res *influence.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Leave-one-species-out sensitivity analysis\n")
	fmt.Fprintf(&b, "Formula: %s\n", res.Spec.Formula())
	fmt.Fprintf(&b, "Model: %s\n", res.Spec.Model)
	fmt.Fprintf(&b, "Species: %d   Successful fits: %d   Cutoff: %g\n\n",
		res.Dataset.Len(), len(res.Estimates.Rows), res.Cutoff)

	fmt.Fprintf(&b, "Full model estimates:\n")
	fmt.Fprintf(&b, "  intercept = %.6g (p = %.4g)\n", res.FullModel.Intercept, res.FullModel.InterceptP)
	fmt.Fprintf(&b, "  estimate  = %.6g (p = %.4g)\n", res.FullModel.Estimate, res.FullModel.EstimateP)
	fmt.Fprintf(&b, "  AIC = %.6g   optpar = %s   n = %d\n\n",
		res.FullModel.AIC, res.FullModel.OptPar, res.FullModel.N)

	fmt.Fprintf(&b, "Influential species (|sDIF| > %g):\n", res.Cutoff)
	fmt.Fprintf(&b, "  by intercept: %s\n", speciesList(res.Influential.ByIntercept))
	fmt.Fprintf(&b, "  by estimate:  %s\n\n", speciesList(res.Influential.ByEstimate))

	fmt.Fprintf(&b, "Errors: %s\n", res.ErrorSummary)
	return b.String()
}

// InfluenceMarkdown renders the deletion analysis as a markdown document,
// estimates table included.
func InfluenceMarkdown(res *influence.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Leave-one-species-out sensitivity analysis\n\n")
	fmt.Fprintf(&b, "- **Formula**: `%s`\n", res.Spec.Formula())
	fmt.Fprintf(&b, "- **Model**: %s\n", res.Spec.Model)
	fmt.Fprintf(&b, "- **Cutoff**: %g\n", res.Cutoff)
	fmt.Fprintf(&b, "- **Species**: %d, successful fits: %d\n", res.Dataset.Len(), len(res.Estimates.Rows))
	fmt.Fprintf(&b, "- **Influential by intercept**: %s\n", speciesList(res.Influential.ByIntercept))
	fmt.Fprintf(&b, "- **Influential by estimate**: %s\n", speciesList(res.Influential.ByEstimate))
	fmt.Fprintf(&b, "- **Errors**: %s\n\n", res.ErrorSummary)
	writeMarkdownTable(&b, res.Estimates.Headers(), res.Estimates.Records())
	return b.String()
}

// TreeText renders a plain-text summary of a tree-uncertainty analysis.
func TreeText(res *treesim.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tree-uncertainty sensitivity analysis\n")
	fmt.Fprintf(&b, "Formula: %s\n", res.Spec.Formula())
	fmt.Fprintf(&b, "Model: %s\n", res.Spec.Model)
	fmt.Fprintf(&b, "Trees drawn: %d   Successful fits: %d\n\n", res.NTree, len(res.Estimates.Rows))

	fmt.Fprintf(&b, "%-16s %8s %12s %12s %12s %12s %12s %12s\n",
		"parameter", "n", "min", "max", "mean", "sd", "CI.low", "CI.high")
	for _, s := range res.Stats {
		fmt.Fprintf(&b, "%-16s %8d %12.5g %12.5g %12.5g %12s %12s %12s\n",
			s.Parameter, s.N, s.Min, s.Max, s.Mean, s.SD, s.CILow, s.CIHigh)
	}
	b.WriteString("\n")
	for _, warn := range res.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", warn)
	}
	fmt.Fprintf(&b, "Errors: %s\n", res.ErrorSummary)
	return b.String()
}

// TreeMarkdown renders the tree-uncertainty analysis as markdown.
func TreeMarkdown(res *treesim.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Tree-uncertainty sensitivity analysis\n\n")
	fmt.Fprintf(&b, "- **Formula**: `%s`\n", res.Spec.Formula())
	fmt.Fprintf(&b, "- **Model**: %s\n", res.Spec.Model)
	fmt.Fprintf(&b, "- **Trees drawn**: %d, successful fits: %d\n", res.NTree, len(res.Estimates.Rows))
	fmt.Fprintf(&b, "- **Errors**: %s\n\n", res.ErrorSummary)

	headers := []string{"parameter", "n", "min", "max", "mean", "sd", "CI.low", "CI.high"}
	rows := make([][]string, len(res.Stats))
	for i, s := range res.Stats {
		rows[i] = []string{
			s.Parameter, fmt.Sprintf("%d", s.N),
			fmt.Sprintf("%.5g", s.Min), fmt.Sprintf("%.5g", s.Max), fmt.Sprintf("%.5g", s.Mean),
			s.SD.String(), s.CILow.String(), s.CIHigh.String(),
		}
	}
	writeMarkdownTable(&b, headers, rows)

	if len(res.Warnings) > 0 {
		b.WriteString("\n")
		for _, warn := range res.Warnings {
			fmt.Fprintf(&b, "> Warning: %s\n", warn)
		}
	}
	return b.String()
}

func speciesList(species []string) string {
	if len(species) == 0 {
		return "none"
	}
	return strings.Join(species, ", ")
}

func writeMarkdownTable(b *strings.Builder, headers []string, rows [][]string) {
	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
	for _, row := range rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
}
