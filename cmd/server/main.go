// Package main serves analysis results over HTTP and re-runs the analysis
// pipeline on a schedule:
// - /api/results, /api/summary: JSON result surface
// - /metrics: Prometheus metrics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"omori-lab/internal/analysis"
	"omori-lab/internal/domain"
	"omori-lab/internal/observability"
	"omori-lab/internal/storage"
	"omori-lab/internal/storage/memory"
	"omori-lab/internal/storage/migrations"
	pgstore "omori-lab/internal/storage/postgres"
)

// Server holds the stores, the analyzer and the latest results.
type Server struct {
	events   storage.EventStore
	results  storage.SequenceResultStore
	analyzer *analysis.Analyzer
	logger   *log.Logger

	mu          sync.RWMutex
	lastRun     time.Time
	lastSummary domain.SequenceSummary
}

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	postgresDSN := flag.String("postgres", "", "PostgreSQL DSN for events and results (memory store when empty)")
	interval := flag.Duration("analyze-interval", time.Hour, "Interval between analysis runs")
	minMag := flag.Float64("min-mag", 6.0, "Minimum mainshock magnitude")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, shutting down...\n", sig)
		cancel()
	}()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags)

	cfg := domain.DefaultConfig()
	cfg.MinMainshockMagnitude = *minMag
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	var eventStore storage.EventStore = memory.NewEventStore()
	var resultStore storage.SequenceResultStore = memory.NewSequenceResultStore()
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("postgres migrations: %v", err)
		}
		eventStore = pgstore.NewEventStore(pool)
		resultStore = pgstore.NewSequenceResultStore(pool)
	}

	metrics := observability.NewMetrics("")
	analyzer, err := analysis.New(analysis.Options{
		Config:  cfg,
		Workers: runtime.NumCPU(),
		Verbose: *verbose,
		Metrics: metrics,
	})
	if err != nil {
		logger.Fatalf("analyzer setup: %v", err)
	}

	srv := &Server{
		events:   eventStore,
		results:  resultStore,
		analyzer: analyzer,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/api/results", srv.handleResults)
	mux.HandleFunc("/api/summary", srv.handleSummary)
	mux.Handle("/metrics", observability.Handler())

	httpServer := &http.Server{Addr: *addr, Handler: mux}

	go srv.analysisLoop(ctx, *interval)

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Printf("listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("http server: %v", err)
	}
}

// analysisLoop re-runs the pipeline immediately and then on every tick.
func (s *Server) analysisLoop(ctx context.Context, interval time.Duration) {
	s.runAnalysis(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runAnalysis(ctx)
		}
	}
}

func (s *Server) runAnalysis(ctx context.Context) {
	all, err := s.events.GetAll(ctx)
	if err != nil {
		s.logger.Printf("analysis: load catalog: %v", err)
		return
	}
	if len(all) == 0 {
		s.logger.Printf("analysis: catalog empty, skipping run")
		return
	}

	events := make([]domain.Event, len(all))
	for i, e := range all {
		events[i] = *e
	}

	results, summary, err := s.analyzer.Analyze(ctx, events)
	if err != nil {
		s.logger.Printf("analysis: %v", err)
		return
	}

	if err := s.results.DeleteAll(ctx); err != nil {
		s.logger.Printf("analysis: clear results: %v", err)
		return
	}
	for i := range results {
		if err := s.results.Insert(ctx, &results[i]); err != nil {
			s.logger.Printf("analysis: store result %s: %v", results[i].Mainshock.ID, err)
			return
		}
	}

	s.mu.Lock()
	s.lastRun = time.Now().UTC()
	s.lastSummary = summary
	s.mu.Unlock()

	s.logger.Printf("analysis: %d candidates, %d successful fits", summary.TotalCandidates, summary.SuccessfulFits)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	lastRun := s.lastRun
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"last_run": lastRun,
	})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.results.GetAll(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"last_run": s.lastRun,
		"summary":  s.lastSummary,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
