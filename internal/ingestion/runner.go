// Package ingestion drives catalog retrieval into the event stores.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"omori-lab/internal/catalog"
	"omori-lab/internal/domain"
	"omori-lab/internal/observability"
	"omori-lab/internal/storage"
)

// Archive receives the raw catalog alongside the working store. Optional.
type Archive interface {
	InsertBulk(ctx context.Context, events []*domain.Event) error
}

// Options for creating a Runner.
type Options struct {
	Client     catalog.Client
	EventStore storage.EventStore
	Archive    Archive // optional ClickHouse archive
	Config     domain.AnalysisConfig
	Verbose    bool
	Metrics    *observability.Metrics // optional
}

// Runner ingests mainshock candidates and their aftershock windows.
type Runner struct {
	client  catalog.Client
	events  storage.EventStore
	archive Archive
	cfg     domain.AnalysisConfig
	verbose bool
	metrics *observability.Metrics
}

// Stats summarizes one ingestion run.
type Stats struct {
	Requests   int
	Fetched    int
	Stored     int
	Duplicates int
}

// NewRunner creates a Runner. The configuration must be valid.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Client == nil || opts.EventStore == nil {
		return nil, fmt.Errorf("ingestion requires a catalog client and an event store")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("ingestion config: %w", err)
	}
	return &Runner{
		client:  opts.Client,
		events:  opts.EventStore,
		archive: opts.Archive,
		cfg:     opts.Config,
		verbose: opts.Verbose,
		metrics: opts.Metrics,
	}, nil
}

// IngestMainshocks fetches all events at or above the mainshock threshold
// between startYear and endYear inclusive, one query per calendar year, and
// stores them. Returns the stored mainshock candidates in time order.
func (r *Runner) IngestMainshocks(ctx context.Context, startYear, endYear int) ([]domain.Event, Stats, error) {
	var stats Stats
	var mainshocks []domain.Event

	for year := startYear; year <= endYear; year++ {
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

		events, err := r.fetch(ctx, catalog.Query{
			Start:        start,
			End:          end,
			MinMagnitude: r.cfg.MinMainshockMagnitude,
		}, &stats)
		if err != nil {
			return nil, stats, fmt.Errorf("fetch mainshocks for %d: %w", year, err)
		}

		r.log("  %d: %d mainshock candidates", year, len(events))
		stored, err := r.store(ctx, events, &stats)
		if err != nil {
			return nil, stats, err
		}
		mainshocks = append(mainshocks, stored...)
	}

	return mainshocks, stats, nil
}

// IngestAftershockWindows fetches the spatiotemporal aftershock window of
// each mainshock and stores every returned event. Candidate association and
// magnitude screening happen later in the analysis; ingestion keeps the
// window raw so reruns with different thresholds need no refetch.
func (r *Runner) IngestAftershockWindows(ctx context.Context, mainshocks []domain.Event) (Stats, error) {
	var stats Stats

	for i := range mainshocks {
		m := &mainshocks[i]
		start := m.TimeUTC().Add(time.Duration(r.cfg.MinDelayMinutes * float64(time.Minute)))
		end := m.TimeUTC().Add(time.Duration(r.cfg.TemporalWindowDays * 24 * float64(time.Hour)))

		events, err := r.fetch(ctx, catalog.Query{
			Start:        start,
			End:          end,
			MinMagnitude: r.cfg.DetectionThreshold,
			Circle: &catalog.Circle{
				Latitude:  m.Latitude,
				Longitude: m.Longitude,
				RadiusKm:  r.cfg.SpatialRadiusKm,
			},
		}, &stats)
		if err != nil {
			return stats, fmt.Errorf("fetch aftershock window for %s: %w", m.ID, err)
		}

		r.log("  [%d/%d] M%.1f %s: %d events in window", i+1, len(mainshocks), m.Magnitude, m.ID, len(events))
		if _, err := r.store(ctx, events, &stats); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

func (r *Runner) fetch(ctx context.Context, q catalog.Query, stats *Stats) ([]domain.Event, error) {
	stats.Requests++
	events, err := r.client.FetchEvents(ctx, q)
	if r.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		r.metrics.CatalogRequests.WithLabelValues(outcome).Inc()
	}
	if err != nil {
		if r.metrics != nil {
			r.metrics.IngestionErrors.Inc()
		}
		return nil, err
	}
	stats.Fetched += len(events)
	return events, nil
}

// store inserts events one by one, skipping duplicates: overlapping
// aftershock windows legitimately return the same events. Returns the
// subset actually stored.
func (r *Runner) store(ctx context.Context, events []domain.Event, stats *Stats) ([]domain.Event, error) {
	var stored []domain.Event
	for i := range events {
		e := events[i]
		err := r.events.Insert(ctx, &e)
		if errors.Is(err, storage.ErrDuplicateKey) {
			stats.Duplicates++
			if r.metrics != nil {
				r.metrics.DuplicateEventsSkipped.Inc()
			}
			continue
		}
		if err != nil {
			if r.metrics != nil {
				r.metrics.DBQueryErrors.WithLabelValues("events").Inc()
			}
			return nil, fmt.Errorf("store event %s: %w", e.ID, err)
		}
		stats.Stored++
		if r.metrics != nil {
			r.metrics.EventsIngested.Inc()
		}
		stored = append(stored, e)
	}

	if r.archive != nil && len(stored) > 0 {
		ptrs := make([]*domain.Event, len(stored))
		for i := range stored {
			ptrs[i] = &stored[i]
		}
		if err := r.archive.InsertBulk(ctx, ptrs); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			if r.metrics != nil {
				r.metrics.DBQueryErrors.WithLabelValues("catalog_archive").Inc()
			}
			return nil, fmt.Errorf("archive events: %w", err)
		}
	}
	return stored, nil
}

func (r *Runner) log(format string, args ...any) {
	if r.verbose {
		log.Printf(format, args...)
	}
}
