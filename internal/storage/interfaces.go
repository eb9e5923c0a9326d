package storage

import (
	"context"

	"omori-lab/internal/domain"
)

// EventStore provides access to the earthquake catalog.
type EventStore interface {
	// Insert adds a new event. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, e *domain.Event) error

	// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, events []*domain.Event) error

	// GetByID retrieves an event by its catalog ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Event, error)

	// GetByTimeRange retrieves events within [start, end] milliseconds (inclusive),
	// ordered by time ASC, ties by ID.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Event, error)

	// GetByMinMagnitude retrieves events with magnitude >= min, ordered by time ASC.
	GetByMinMagnitude(ctx context.Context, min float64) ([]*domain.Event, error)

	// GetAll retrieves the full catalog, ordered by time ASC, ties by ID.
	GetAll(ctx context.Context) ([]*domain.Event, error)
}

// SequenceResultStore provides access to per-mainshock analysis results.
type SequenceResultStore interface {
	// Insert adds a result. Returns ErrDuplicateKey if a result for the
	// mainshock ID exists; re-analysis runs delete before inserting.
	Insert(ctx context.Context, r *domain.SequenceResult) error

	// GetByMainshockID retrieves a result. Returns ErrNotFound if not exists.
	GetByMainshockID(ctx context.Context, mainshockID string) (*domain.SequenceResult, error)

	// GetAll retrieves all results ordered by mainshock time ASC, ties by ID.
	GetAll(ctx context.Context) ([]*domain.SequenceResult, error)

	// DeleteAll removes every stored result, so a fresh analysis run can
	// replace the previous one wholesale.
	DeleteAll(ctx context.Context) error
}
