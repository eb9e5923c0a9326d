package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"omori-lab/internal/domain"
)

// Summarize computes aggregate statistics over a result set. Only results
// whose modified fit cleared the success threshold contribute to the p and
// R² distributions; insufficient and failed sequences are counted but
// excluded, matching their exclusion from the reported conclusion.
func Summarize(results []domain.SequenceResult, cfg domain.AnalysisConfig) domain.SequenceSummary {
	summary := domain.SequenceSummary{
		TotalCandidates: len(results),
	}

	var pValues, r2Values, classicalR2 []float64
	for i := range results {
		r := &results[i]
		if r.Sufficient {
			summary.Sufficient++
		}
		if !r.Modified.Success {
			continue
		}
		pValues = append(pValues, r.Modified.P)
		r2Values = append(r2Values, r.Modified.RSquared)
		if r.Classical.Fitted() {
			classicalR2 = append(classicalR2, r.Classical.RSquared)
		}
	}

	summary.SuccessfulFits = len(pValues)
	if summary.SuccessfulFits == 0 {
		return summary
	}

	summary.PMean = stat.Mean(pValues, nil)
	summary.PMin = floats.Min(pValues)
	summary.PMax = floats.Max(pValues)

	summary.R2Mean = stat.Mean(r2Values, nil)
	summary.R2Min = floats.Min(r2Values)
	summary.R2Max = floats.Max(r2Values)

	// Sample standard deviation (n-1); zero for a single fit.
	if summary.SuccessfulFits > 1 {
		summary.PStdDev = stat.StdDev(pValues, nil)
		summary.R2StdDev = stat.StdDev(r2Values, nil)
	}

	if len(classicalR2) > 0 {
		summary.ClassicalR2Mean = stat.Mean(classicalR2, nil)
	}

	return summary
}
