// Package analysis orchestrates the per-mainshock pipeline:
// sequence building → rate binning → Omori fitting → aggregation.
package analysis

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"omori-lab/internal/binning"
	"omori-lab/internal/domain"
	"omori-lab/internal/observability"
	"omori-lab/internal/omori"
	"omori-lab/internal/sequence"
)

// Options for creating an Analyzer.
type Options struct {
	Config domain.AnalysisConfig

	// Workers sets the number of concurrent sequence pipelines. Sequences
	// are independent, so any value >= 1 yields identical output; <= 1 runs
	// strictly sequentially.
	Workers int

	Verbose bool
	Metrics *observability.Metrics // optional
}

// Analyzer runs the full analysis across all candidate mainshocks.
type Analyzer struct {
	cfg     domain.AnalysisConfig
	fitter  *omori.Fitter
	workers int
	verbose bool
	metrics *observability.Metrics
}

// New creates an Analyzer. Returns an error when the configuration is
// invalid: a misconfigured run must abort rather than produce misleading
// results on silent defaults.
func New(opts Options) (*Analyzer, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("analysis config: %w", err)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Analyzer{
		cfg:     opts.Config,
		fitter:  omori.NewFitter(opts.Config),
		workers: workers,
		verbose: opts.Verbose,
		metrics: opts.Metrics,
	}, nil
}

// Analyze selects candidate mainshocks from events and runs the pipeline for
// each. Results are ordered by mainshock time ascending, ties by ID, so
// repeated runs over the same catalog are byte-identical.
func (a *Analyzer) Analyze(ctx context.Context, events []domain.Event) ([]domain.SequenceResult, domain.SequenceSummary, error) {
	mainshocks := sequence.SelectMainshocks(events, a.cfg)
	return a.AnalyzeMainshocks(ctx, mainshocks, events)
}

// AnalyzeMainshocks runs the per-mainshock pipeline over an explicit
// candidate list. Every candidate produces exactly one SequenceResult,
// including those with insufficient data.
func (a *Analyzer) AnalyzeMainshocks(ctx context.Context, mainshocks, allEvents []domain.Event) ([]domain.SequenceResult, domain.SequenceSummary, error) {
	a.log("Analyzing %d candidate mainshocks (%d catalog events)", len(mainshocks), len(allEvents))

	results := make([]domain.SequenceResult, len(mainshocks))

	if a.workers == 1 {
		for i := range mainshocks {
			if err := ctx.Err(); err != nil {
				return nil, domain.SequenceSummary{}, err
			}
			results[i] = a.analyzeOne(mainshocks[i], allEvents)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < a.workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					results[i] = a.analyzeOne(mainshocks[i], allEvents)
				}
			}()
		}
		for i := range mainshocks {
			select {
			case jobs <- i:
			case <-ctx.Done():
				close(jobs)
				wg.Wait()
				return nil, domain.SequenceSummary{}, ctx.Err()
			}
		}
		close(jobs)
		wg.Wait()
	}

	// Results must come out in mainshock time order regardless of worker
	// scheduling or the caller's candidate ordering.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Mainshock.Time != results[j].Mainshock.Time {
			return results[i].Mainshock.Time < results[j].Mainshock.Time
		}
		return results[i].Mainshock.ID < results[j].Mainshock.ID
	})

	summary := Summarize(results, a.cfg)

	if a.metrics != nil {
		a.metrics.AnalysisRuns.Inc()
		a.metrics.LastSuccessfulAnalysis.SetToCurrentTime()
	}
	a.log("Done: %d/%d sequences sufficient, %d successful fits",
		summary.Sufficient, summary.TotalCandidates, summary.SuccessfulFits)

	return results, summary, nil
}

// analyzeOne runs build → bin → fit for a single mainshock. Pure except for
// metric counters; failures are recorded in the result, never returned.
func (a *Analyzer) analyzeOne(mainshock domain.Event, allEvents []domain.Event) domain.SequenceResult {
	result := domain.SequenceResult{
		Mainshock: mainshock,
		Modified:  domain.UnfitOmori(domain.FitFailInsufficientBins, false),
		Classical: domain.UnfitOmori(domain.FitFailInsufficientBins, true),
	}

	seq := sequence.Build(mainshock, allEvents, a.cfg)
	if seq == nil {
		a.log("  M%.1f %s: insufficient aftershocks", mainshock.Magnitude, mainshock.ID)
		if a.metrics != nil {
			a.metrics.SequencesInsufficient.Inc()
		}
		return result
	}

	result.Sufficient = true
	result.AftershockCount = seq.Count()
	result.DurationHours = seq.DurationHours()
	if a.metrics != nil {
		a.metrics.SequencesBuilt.Inc()
	}

	series := binning.Bin(seq, a.cfg.NumBins)

	start := time.Now()
	result.Modified = a.fitter.FitModified(series)
	result.Classical = a.fitter.FitClassical(series)
	if a.metrics != nil {
		a.metrics.FitDuration.Observe(time.Since(start).Seconds())
		a.metrics.FitsAttempted.Add(2)
		for _, f := range []domain.OmoriFit{result.Modified, result.Classical} {
			if !f.Success {
				a.metrics.FitFailures.WithLabelValues(f.FailureReason).Inc()
			}
		}
	}

	if result.Modified.Success {
		a.log("  M%.1f %s: K=%.2f c=%.3f p=%.2f R²=%.3f",
			mainshock.Magnitude, mainshock.ID,
			result.Modified.K, result.Modified.C, result.Modified.P, result.Modified.RSquared)
	} else {
		a.log("  M%.1f %s: fit failed (%s)", mainshock.Magnitude, mainshock.ID, result.Modified.FailureReason)
	}

	return result
}

func (a *Analyzer) log(format string, args ...any) {
	if a.verbose {
		log.Printf(format, args...)
	}
}
