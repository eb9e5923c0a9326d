// Package main regenerates the report files from stored analysis results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"omori-lab/internal/domain"
	"omori-lab/internal/reporting"
	"omori-lab/internal/storage/migrations"
	pgstore "omori-lab/internal/storage/postgres"
)

func main() {
	postgresDSN := flag.String("postgres", "", "PostgreSQL DSN holding sequence results (required)")
	outputDir := flag.String("output-dir", "docs", "Output directory for generated report files")
	flag.Parse()

	if *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "-postgres is required: reports are generated from stored results")
		os.Exit(1)
	}

	ctx := context.Background()

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

	generator := reporting.NewGenerator(pgstore.NewSequenceResultStore(pool), domain.DefaultConfig())
	report, err := generator.Generate(ctx, *outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Report generation: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Report written to %s (%d sequences, %d successful fits)\n",
		*outputDir, report.Summary.TotalCandidates, report.Summary.SuccessfulFits)
}
