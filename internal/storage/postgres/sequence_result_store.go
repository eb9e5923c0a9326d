package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"omori-lab/internal/domain"
	"omori-lab/internal/storage"
)

// SequenceResultStore implements storage.SequenceResultStore using PostgreSQL.
// Fit parameters are stored as DOUBLE PRECISION; the unfit sentinel state
// round-trips as NaN.
type SequenceResultStore struct {
	pool *Pool
}

// NewSequenceResultStore creates a new SequenceResultStore.
func NewSequenceResultStore(pool *Pool) *SequenceResultStore {
	return &SequenceResultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SequenceResultStore = (*SequenceResultStore)(nil)

const resultColumns = `
	mainshock_id, mainshock_time_ms, mainshock_latitude, mainshock_longitude,
	mainshock_depth_km, mainshock_magnitude, mainshock_mag_type, mainshock_place,
	aftershock_count, sufficient, duration_hours,
	mod_k, mod_c, mod_p, mod_r_squared, mod_rmse, mod_success, mod_failure_reason,
	cls_k, cls_c, cls_r_squared, cls_rmse, cls_success, cls_failure_reason
`

// Insert adds a result. Returns ErrDuplicateKey if one exists for the mainshock.
func (s *SequenceResultStore) Insert(ctx context.Context, r *domain.SequenceResult) error {
	query := `
		INSERT INTO sequence_results (` + resultColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		        $12, $13, $14, $15, $16, $17, $18,
		        $19, $20, $21, $22, $23, $24)
	`

	_, err := s.pool.Exec(ctx, query,
		r.Mainshock.ID, r.Mainshock.Time, r.Mainshock.Latitude, r.Mainshock.Longitude,
		r.Mainshock.DepthKm, r.Mainshock.Magnitude, r.Mainshock.MagType, r.Mainshock.Place,
		r.AftershockCount, r.Sufficient, r.DurationHours,
		r.Modified.K, r.Modified.C, r.Modified.P, r.Modified.RSquared, r.Modified.RMSE,
		r.Modified.Success, r.Modified.FailureReason,
		r.Classical.K, r.Classical.C, r.Classical.RSquared, r.Classical.RMSE,
		r.Classical.Success, r.Classical.FailureReason,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert sequence result: %w", err)
	}
	return nil
}

// GetByMainshockID retrieves a result. Returns ErrNotFound if not exists.
func (s *SequenceResultStore) GetByMainshockID(ctx context.Context, mainshockID string) (*domain.SequenceResult, error) {
	query := `SELECT ` + resultColumns + ` FROM sequence_results WHERE mainshock_id = $1`

	row := s.pool.QueryRow(ctx, query, mainshockID)
	r, err := scanResult(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get sequence result: %w", err)
	}
	return r, nil
}

// GetAll retrieves all results ordered by mainshock time ASC, ties by ID.
func (s *SequenceResultStore) GetAll(ctx context.Context) ([]*domain.SequenceResult, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM sequence_results
		ORDER BY mainshock_time_ms ASC, mainshock_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query sequence results: %w", err)
	}
	defer rows.Close()

	var result []*domain.SequenceResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sequence result: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sequence results: %w", err)
	}
	return result, nil
}

// DeleteAll removes every stored result.
func (s *SequenceResultStore) DeleteAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sequence_results`); err != nil {
		return fmt.Errorf("delete sequence results: %w", err)
	}
	return nil
}

func scanResult(row pgx.Row) (*domain.SequenceResult, error) {
	var r domain.SequenceResult
	r.Modified.PFixed = false
	r.Classical.PFixed = true
	r.Classical.P = 1.0

	err := row.Scan(
		&r.Mainshock.ID, &r.Mainshock.Time, &r.Mainshock.Latitude, &r.Mainshock.Longitude,
		&r.Mainshock.DepthKm, &r.Mainshock.Magnitude, &r.Mainshock.MagType, &r.Mainshock.Place,
		&r.AftershockCount, &r.Sufficient, &r.DurationHours,
		&r.Modified.K, &r.Modified.C, &r.Modified.P, &r.Modified.RSquared, &r.Modified.RMSE,
		&r.Modified.Success, &r.Modified.FailureReason,
		&r.Classical.K, &r.Classical.C, &r.Classical.RSquared, &r.Classical.RMSE,
		&r.Classical.Success, &r.Classical.FailureReason,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
