// Package main runs the full analysis pipeline over an ingested catalog:
// sequence extraction → rate binning → Omori fitting → summary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"omori-lab/internal/analysis"
	"omori-lab/internal/catalog"
	"omori-lab/internal/domain"
	"omori-lab/internal/reporting"
	"omori-lab/internal/storage"
	"omori-lab/internal/storage/memory"
	"omori-lab/internal/storage/migrations"
	pgstore "omori-lab/internal/storage/postgres"
)

func main() {
	postgresDSN := flag.String("postgres", "", "PostgreSQL DSN for events and results (memory store when empty)")
	snapshot := flag.String("snapshot", "", "JSON catalog snapshot to analyze instead of the event store")
	outputDir := flag.String("output-dir", "docs", "Output directory for generated report files")
	minMag := flag.Float64("min-mag", 6.0, "Minimum mainshock magnitude")
	nBins := flag.Int("bins", 20, "Maximum number of logarithmic rate bins")
	workers := flag.Int("workers", runtime.NumCPU(), "Concurrent sequence pipelines")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling analysis...\n", sig)
		cancel()
	}()

	cfg := domain.DefaultConfig()
	cfg.MinMainshockMagnitude = *minMag
	cfg.NumBins = *nBins
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	var eventStore storage.EventStore = memory.NewEventStore()
	var resultStore storage.SequenceResultStore = memory.NewSequenceResultStore()
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Postgres: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			fmt.Fprintf(os.Stderr, "Postgres migrations: %v\n", err)
			os.Exit(1)
		}
		eventStore = pgstore.NewEventStore(pool)
		resultStore = pgstore.NewSequenceResultStore(pool)
	}

	var events []domain.Event
	if *snapshot != "" {
		var err error
		events, err = catalog.LoadEvents(*snapshot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Load snapshot: %v\n", err)
			os.Exit(1)
		}
	} else {
		all, err := eventStore.GetAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Load catalog: %v\n", err)
			os.Exit(1)
		}
		for _, e := range all {
			events = append(events, *e)
		}
	}

	if len(events) == 0 {
		fmt.Fprintln(os.Stderr, "No events to analyze; run ingest first or pass -snapshot")
		os.Exit(1)
	}

	analyzer, err := analysis.New(analysis.Options{
		Config:  cfg,
		Workers: *workers,
		Verbose: *verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analyzer setup: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Omori Analysis ===\n")
	fmt.Printf("Catalog: %d events\n", len(events))

	results, summary, err := analyzer.Analyze(ctx, events)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis: %v\n", err)
		os.Exit(1)
	}

	// Replace the previous run wholesale.
	if err := resultStore.DeleteAll(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Clear previous results: %v\n", err)
		os.Exit(1)
	}
	for i := range results {
		err := resultStore.Insert(ctx, &results[i])
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			fmt.Fprintf(os.Stderr, "Store result %s: %v\n", results[i].Mainshock.ID, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Candidates: %d | sufficient: %d | successful fits: %d\n",
		summary.TotalCandidates, summary.Sufficient, summary.SuccessfulFits)
	if summary.SuccessfulFits > 0 {
		fmt.Printf("p = %.2f ± %.2f (range [%.2f, %.2f])\n",
			summary.PMean, summary.PStdDev, summary.PMin, summary.PMax)
		fmt.Printf("Mean R²: modified %.3f vs classical %.3f\n",
			summary.R2Mean, summary.ClassicalR2Mean)
	}

	generator := reporting.NewGenerator(resultStore, cfg)
	if _, err := generator.Generate(ctx, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "Report generation: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Report written to %s\n", *outputDir)
}
