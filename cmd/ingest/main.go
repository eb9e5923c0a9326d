// Package main ingests the earthquake catalog: a year-by-year scan for
// mainshock candidates, then the spatiotemporal aftershock window of each.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"omori-lab/internal/catalog"
	"omori-lab/internal/domain"
	"omori-lab/internal/ingestion"
	"omori-lab/internal/storage"
	"omori-lab/internal/storage/memory"
	"omori-lab/internal/storage/migrations"
	pgstore "omori-lab/internal/storage/postgres"

	chstore "omori-lab/internal/storage/clickhouse"
)

func main() {
	startYear := flag.Int("start-year", time.Now().UTC().Year()-5, "First year of the mainshock scan")
	endYear := flag.Int("end-year", time.Now().UTC().Year(), "Last year of the mainshock scan")
	minMag := flag.Float64("min-mag", 6.0, "Minimum mainshock magnitude")
	postgresDSN := flag.String("postgres", "", "PostgreSQL DSN for the working event store (memory store when empty)")
	clickhouseDSN := flag.String("clickhouse", "", "Optional ClickHouse DSN for the raw catalog archive")
	catalogURL := flag.String("catalog-url", catalog.DefaultBaseURL, "Catalog query endpoint")
	snapshot := flag.String("snapshot", "", "Optional path to write a JSON catalog snapshot")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling ingestion...\n", sig)
		cancel()
	}()

	cfg := domain.DefaultConfig()
	cfg.MinMainshockMagnitude = *minMag
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	var eventStore storage.EventStore
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
	} else {
		eventStore = memory.NewEventStore()
	}

	var archive ingestion.Archive
	var catalogArchive *chstore.CatalogStore
	if *clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ClickHouse: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()
		catalogArchive = chstore.NewCatalogStore(conn)
		archive = catalogArchive
	}

	runner, err := ingestion.NewRunner(ingestion.Options{
		Client:     catalog.NewHTTPClient(catalog.WithBaseURL(*catalogURL)),
		EventStore: eventStore,
		Archive:    archive,
		Config:     cfg,
		Verbose:    *verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingestion setup: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Catalog Ingestion ===\n")
	fmt.Printf("Scanning M%.1f+ mainshocks, %d-%d\n", *minMag, *startYear, *endYear)

	mainshocks, msStats, err := runner.IngestMainshocks(ctx, *startYear, *endYear)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Mainshock ingestion: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Mainshock candidates: %d stored, %d duplicates skipped\n", msStats.Stored, msStats.Duplicates)

	asStats, err := runner.IngestAftershockWindows(ctx, mainshocks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Aftershock ingestion: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Aftershock windows: %d requests, %d events stored, %d duplicates skipped\n",
		asStats.Requests, asStats.Stored, asStats.Duplicates)

	if catalogArchive != nil {
		total, err := catalogArchive.Count(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Archive count: %v\n", err)
			os.Exit(1)
		}
		lo, hi, err := catalogArchive.TimeRange(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Archive time range: %v\n", err)
			os.Exit(1)
		}
		if total == 0 {
			fmt.Printf("Archive: empty\n")
		} else {
			fmt.Printf("Archive: %d events, %s to %s\n", total,
				time.UnixMilli(lo).UTC().Format(time.RFC3339),
				time.UnixMilli(hi).UTC().Format(time.RFC3339))
		}
	}

	if *snapshot != "" {
		all, err := eventStore.GetAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Load catalog for snapshot: %v\n", err)
			os.Exit(1)
		}
		events := make([]domain.Event, len(all))
		for i, e := range all {
			events[i] = *e
		}
		if err := catalog.SaveEvents(*snapshot, events); err != nil {
			fmt.Fprintf(os.Stderr, "Write snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Snapshot written: %s (%d events)\n", *snapshot, len(events))
	}
}
