package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omori-lab/internal/domain"
	"omori-lab/internal/storage"
)

func archiveEvent(id string, timeMs int64, mag float64) *domain.Event {
	return &domain.Event{
		ID:        id,
		Time:      timeMs,
		Latitude:  38.3,
		Longitude: 142.4,
		DepthKm:   29.0,
		Magnitude: mag,
		MagType:   "mww",
		Place:     "off the east coast of Honshu, Japan",
	}
}

func TestCatalogStore_InsertBulkAndGetByTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCatalogStore(conn)
	ctx := context.Background()

	events := []*domain.Event{
		archiveEvent("ev-3", 3000, 4.1),
		archiveEvent("ev-1", 1000, 9.1),
		archiveEvent("ev-2", 2000, 5.6),
		archiveEvent("ev-2b", 2000, 4.8),
	}
	require.NoError(t, store.InsertBulk(ctx, events))

	// Full range, ordered by time with ID breaking the tie at 2000.
	got, err := store.GetByTimeRange(ctx, 0, 5000)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "ev-1", got[0].ID)
	assert.Equal(t, "ev-2", got[1].ID)
	assert.Equal(t, "ev-2b", got[2].ID)
	assert.Equal(t, "ev-3", got[3].ID)

	// Fields survive the round trip.
	assert.Equal(t, int64(1000), got[0].Time)
	assert.InDelta(t, 9.1, got[0].Magnitude, 1e-9)
	assert.Equal(t, "mww", got[0].MagType)
	assert.Equal(t, "off the east coast of Honshu, Japan", got[0].Place)

	// Bounds are inclusive on both ends.
	got, err = store.GetByTimeRange(ctx, 2000, 3000)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "ev-2", got[0].ID)
	assert.Equal(t, "ev-3", got[2].ID)

	got, err = store.GetByTimeRange(ctx, 1000, 1000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ev-1", got[0].ID)

	// Empty range.
	got, err = store.GetByTimeRange(ctx, 4000, 5000)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatalogStore_InsertBulk_RejectsDuplicates(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCatalogStore(conn)
	ctx := context.Background()

	// Duplicate ID within a single batch.
	err := store.InsertBulk(ctx, []*domain.Event{
		archiveEvent("ev-1", 1000, 5.0),
		archiveEvent("ev-1", 2000, 5.1),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Already archived ID fails the whole batch.
	require.NoError(t, store.InsertBulk(ctx, []*domain.Event{archiveEvent("ev-1", 1000, 5.0)}))
	err = store.InsertBulk(ctx, []*domain.Event{
		archiveEvent("ev-2", 2000, 5.1),
		archiveEvent("ev-1", 1000, 5.0),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestCatalogStore_InsertBulk_RejectsInvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCatalogStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.Event{nil})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.InsertBulk(ctx, []*domain.Event{archiveEvent("", 1000, 5.0)})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	// Empty batch is a no-op.
	assert.NoError(t, store.InsertBulk(ctx, nil))
}

func TestCatalogStore_CountAndTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCatalogStore(conn)
	ctx := context.Background()

	// Empty archive.
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	lo, hi, err := store.TimeRange(ctx)
	require.NoError(t, err)
	assert.Zero(t, lo)
	assert.Zero(t, hi)

	require.NoError(t, store.InsertBulk(ctx, []*domain.Event{
		archiveEvent("ev-1", 1500, 5.0),
		archiveEvent("ev-2", 9000, 5.5),
		archiveEvent("ev-3", 4200, 6.0),
	}))

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	lo, hi, err = store.TimeRange(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), lo)
	assert.Equal(t, int64(9000), hi)
}
