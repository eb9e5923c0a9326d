package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Omori Aftershock Analysis Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Data summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Candidate mainshocks | %d |\n", r.Summary.TotalCandidates))
	sb.WriteString(fmt.Sprintf("| Sequences with sufficient data | %d |\n", r.Summary.Sufficient))
	sb.WriteString(fmt.Sprintf("| Successful fits (R² > threshold) | %d |\n", r.Summary.SuccessfulFits))
	sb.WriteString("\n")

	if r.Summary.SuccessfulFits > 0 {
		// Parameter statistics
		sb.WriteString("## Omori-Utsu Parameters\n\n")
		sb.WriteString(fmt.Sprintf("Decay exponent p over %d sequences:\n\n", r.Summary.SuccessfulFits))
		sb.WriteString("| Statistic | p | R² |\n")
		sb.WriteString("|-----------|---|----|\n")
		sb.WriteString(fmt.Sprintf("| Mean | %.2f | %.3f |\n", r.Summary.PMean, r.Summary.R2Mean))
		sb.WriteString(fmt.Sprintf("| Std dev | %.2f | %.3f |\n", r.Summary.PStdDev, r.Summary.R2StdDev))
		sb.WriteString(fmt.Sprintf("| Min | %.2f | %.3f |\n", r.Summary.PMin, r.Summary.R2Min))
		sb.WriteString(fmt.Sprintf("| Max | %.2f | %.3f |\n", r.Summary.PMax, r.Summary.R2Max))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Literature reference: p ≈ 1.0–1.3 for typical aftershock sequences; observed mean p = %.2f.\n\n", r.Summary.PMean))

		// Classical comparison
		sb.WriteString("## Classical vs Modified Omori Law\n\n")
		sb.WriteString("| Model | Mean R² |\n")
		sb.WriteString("|-------|--------|\n")
		sb.WriteString(fmt.Sprintf("| Classical (p = 1 fixed) | %.3f |\n", r.Summary.ClassicalR2Mean))
		sb.WriteString(fmt.Sprintf("| Modified (p fitted) | %.3f |\n", r.Summary.R2Mean))
		sb.WriteString("\n")
	} else {
		sb.WriteString("No sequence produced a successful fit.\n\n")
	}

	// Per-sequence table
	sb.WriteString("## Sequences\n\n")
	sb.WriteString("| Mainshock | M | Aftershocks | K | c | p | R² | Status |\n")
	sb.WriteString("|-----------|---|-------------|---|---|---|----|--------|\n")
	for _, res := range r.Results {
		status := "ok"
		switch {
		case !res.Sufficient:
			status = "insufficient data"
		case !res.Modified.Success:
			status = res.Modified.FailureReason
		}

		if res.Modified.Fitted() {
			sb.WriteString(fmt.Sprintf("| %s | %.1f | %d | %.2f | %.3f | %.2f | %.3f | %s |\n",
				res.Mainshock.ID, res.Mainshock.Magnitude, res.AftershockCount,
				res.Modified.K, res.Modified.C, res.Modified.P, res.Modified.RSquared, status))
		} else {
			sb.WriteString(fmt.Sprintf("| %s | %.1f | %d | – | – | – | – | %s |\n",
				res.Mainshock.ID, res.Mainshock.Magnitude, res.AftershockCount, status))
		}
	}
	sb.WriteString("\n")

	return sb.String()
}
