package reporting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"omori-lab/internal/analysis"
	"omori-lab/internal/domain"
	"omori-lab/internal/storage"
)

// Output file names.
const (
	ReportFile  = "REPORT.md"
	ResultsFile = "sequence_results.csv"
)

// Generator loads stored results and writes the report files.
type Generator struct {
	results storage.SequenceResultStore
	cfg     domain.AnalysisConfig
}

// NewGenerator creates a Generator over a result store.
func NewGenerator(results storage.SequenceResultStore, cfg domain.AnalysisConfig) *Generator {
	return &Generator{results: results, cfg: cfg}
}

// Generate writes REPORT.md and sequence_results.csv into outputDir,
// creating it if needed. The summary is recomputed from the stored results
// so the report never drifts from the data.
func (g *Generator) Generate(ctx context.Context, outputDir string) (*Report, error) {
	results, err := g.results.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sequence results: %w", err)
	}

	values := make([]domain.SequenceResult, len(results))
	for i, r := range results {
		values[i] = *r
	}
	summary := analysis.Summarize(values, g.cfg)

	report := NewReport(results, summary)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	mdPath := filepath.Join(outputDir, ReportFile)
	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(report)), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", ReportFile, err)
	}

	csvPath := filepath.Join(outputDir, ResultsFile)
	if err := os.WriteFile(csvPath, []byte(RenderCSV(results)), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", ResultsFile, err)
	}

	return report, nil
}
