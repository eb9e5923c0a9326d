package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"omori-lab/internal/domain"
	"omori-lab/internal/storage"
)

// EventStore implements storage.EventStore using PostgreSQL.
type EventStore struct {
	pool *Pool
}

// NewEventStore creates a new EventStore.
func NewEventStore(pool *Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

const eventColumns = "id, time_ms, latitude, longitude, depth_km, magnitude, mag_type, place, created_at"

// Insert adds a new event. Returns ErrDuplicateKey if the ID exists.
func (s *EventStore) Insert(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (
			id, time_ms, latitude, longitude, depth_km, magnitude, mag_type, place
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		e.ID,
		e.Time,
		e.Latitude,
		e.Longitude,
		e.DepthKm,
		e.Magnitude,
		e.MagType,
		e.Place,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *EventStore) InsertBulk(ctx context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO events (
			id, time_ms, latitude, longitude, depth_km, magnitude, mag_type, place
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, e := range events {
		_, err := tx.Exec(ctx, query,
			e.ID, e.Time, e.Latitude, e.Longitude,
			e.DepthKm, e.Magnitude, e.MagType, e.Place,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert event in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID retrieves an event by catalog ID. Returns ErrNotFound if not exists.
func (s *EventStore) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	row := s.pool.QueryRow(ctx, query, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get event by id: %w", err)
	}
	return e, nil
}

// GetByTimeRange retrieves events within [start, end] inclusive, time ASC.
func (s *EventStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE time_ms >= $1 AND time_ms <= $2
		ORDER BY time_ms ASC, id ASC
	`
	return s.queryEvents(ctx, query, start, end)
}

// GetByMinMagnitude retrieves events with magnitude >= min, time ASC.
func (s *EventStore) GetByMinMagnitude(ctx context.Context, min float64) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE magnitude >= $1
		ORDER BY time_ms ASC, id ASC
	`
	return s.queryEvents(ctx, query, min)
}

// GetAll retrieves the full catalog, time ASC.
func (s *EventStore) GetAll(ctx context.Context) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY time_ms ASC, id ASC`
	return s.queryEvents(ctx, query)
}

func (s *EventStore) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var result []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return result, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.Time,
		&e.Latitude,
		&e.Longitude,
		&e.DepthKm,
		&e.Magnitude,
		&e.MagType,
		&e.Place,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
