package clickhouse

import (
	"context"
	"fmt"

	"omori-lab/internal/domain"
	"omori-lab/internal/storage"
)

// CatalogStore archives the raw earthquake catalog in ClickHouse. The hot
// relational store keeps the working set in PostgreSQL; the archive keeps
// the full multi-year catalog for time-range scans. MergeTree does not
// enforce uniqueness, so duplicates are screened before insert.
type CatalogStore struct {
	conn *Conn
}

// NewCatalogStore creates a new CatalogStore.
func NewCatalogStore(conn *Conn) *CatalogStore {
	return &CatalogStore{conn: conn}
}

// InsertBulk appends events to the archive. Fails the batch when any event
// ID is already archived or repeats within the batch.
func (s *CatalogStore) InsertBulk(ctx context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if e == nil || e.ID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[e.ID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[e.ID] = struct{}{}

		exists, err := s.exists(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO catalog_events (
			id, time_ms, latitude, longitude, depth_km, magnitude, mag_type, place
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		err = batch.Append(
			e.ID, uint64(e.Time), e.Latitude, e.Longitude,
			e.DepthKm, e.Magnitude, e.MagType, e.Place,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByTimeRange retrieves archived events within [start, end] milliseconds
// inclusive, ordered by time ASC, ties by ID.
func (s *CatalogStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Event, error) {
	query := `
		SELECT id, time_ms, latitude, longitude, depth_km, magnitude, mag_type, place
		FROM catalog_events
		WHERE time_ms >= ? AND time_ms <= ?
		ORDER BY time_ms ASC, id ASC
	`

	rows, err := s.conn.Query(ctx, query, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query catalog events: %w", err)
	}
	defer rows.Close()

	var result []*domain.Event
	for rows.Next() {
		var e domain.Event
		var timeMs uint64
		err := rows.Scan(&e.ID, &timeMs, &e.Latitude, &e.Longitude,
			&e.DepthKm, &e.Magnitude, &e.MagType, &e.Place)
		if err != nil {
			return nil, fmt.Errorf("scan catalog event: %w", err)
		}
		e.Time = int64(timeMs)
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog events: %w", err)
	}
	return result, nil
}

// Count returns the total number of archived events.
func (s *CatalogStore) Count(ctx context.Context) (uint64, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count() FROM catalog_events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count catalog events: %w", err)
	}
	return count, nil
}

// TimeRange returns the min and max archived event times in milliseconds.
// Returns (0, 0) for an empty archive.
func (s *CatalogStore) TimeRange(ctx context.Context) (min, max int64, err error) {
	var lo, hi uint64
	err = s.conn.QueryRow(ctx, `
		SELECT coalesce(min(time_ms), 0), coalesce(max(time_ms), 0)
		FROM catalog_events
	`).Scan(&lo, &hi)
	if err != nil {
		return 0, 0, fmt.Errorf("catalog time range: %w", err)
	}
	return int64(lo), int64(hi), nil
}

func (s *CatalogStore) exists(ctx context.Context, id string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count() FROM catalog_events WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
