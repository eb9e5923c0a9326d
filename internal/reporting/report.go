// Package reporting renders analysis results as CSV tables and a Markdown
// summary report.
package reporting

import (
	"time"

	"omori-lab/internal/domain"
)

// Report is the assembled input for the renderers.
type Report struct {
	GeneratedAt time.Time
	Results     []*domain.SequenceResult
	Summary     domain.SequenceSummary
}

// NewReport assembles a report from analysis output.
func NewReport(results []*domain.SequenceResult, summary domain.SequenceSummary) *Report {
	return &Report{
		GeneratedAt: time.Now().UTC(),
		Results:     results,
		Summary:     summary,
	}
}
