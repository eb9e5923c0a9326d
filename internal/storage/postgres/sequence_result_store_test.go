package postgres

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omori-lab/internal/domain"
	"omori-lab/internal/storage"
)

func testResult(mainshockID string, timeMs int64) *domain.SequenceResult {
	return &domain.SequenceResult{
		Mainshock: domain.Event{
			ID:        mainshockID,
			Time:      timeMs,
			Latitude:  37.73,
			Longitude: 141.75,
			DepthKm:   54.0,
			Magnitude: 7.1,
			MagType:   "mww",
			Place:     "off the coast of Honshu, Japan",
		},
		Sufficient:      true,
		AftershockCount: 87,
		DurationHours:   640.5,
		Modified:        domain.OmoriFit{K: 132.4, C: 0.085, P: 1.12, RSquared: 0.93, RMSE: 0.41, Success: true},
		Classical:       domain.OmoriFit{K: 110.2, C: 0.21, P: 1.0, PFixed: true, RSquared: 0.84, RMSE: 0.66, Success: true},
	}
}

func TestSequenceResultStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSequenceResultStore(pool)

	r := testResult("us7000aaaa", 1614556800000)
	require.NoError(t, store.Insert(ctx, r))

	got, err := store.GetByMainshockID(ctx, "us7000aaaa")
	require.NoError(t, err)

	assert.Equal(t, r.Mainshock.ID, got.Mainshock.ID)
	assert.Equal(t, r.Mainshock.Place, got.Mainshock.Place)
	assert.Equal(t, r.AftershockCount, got.AftershockCount)
	assert.Equal(t, r.DurationHours, got.DurationHours)

	assert.Equal(t, r.Modified.K, got.Modified.K)
	assert.Equal(t, r.Modified.P, got.Modified.P)
	assert.Equal(t, r.Modified.RSquared, got.Modified.RSquared)
	assert.True(t, got.Modified.Success)
	assert.False(t, got.Modified.PFixed)

	assert.Equal(t, r.Classical.K, got.Classical.K)
	assert.Equal(t, 1.0, got.Classical.P)
	assert.True(t, got.Classical.PFixed)
}

func TestSequenceResultStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSequenceResultStore(pool)

	require.NoError(t, store.Insert(ctx, testResult("dup", 1000)))
	err := store.Insert(ctx, testResult("dup", 2000))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestSequenceResultStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSequenceResultStore(pool)
	_, err := store.GetByMainshockID(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSequenceResultStore_UnfitSentinelRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSequenceResultStore(pool)

	r := &domain.SequenceResult{
		Mainshock: domain.Event{ID: "thin", Time: 1000, Magnitude: 6.1},
		Modified:  domain.UnfitOmori(domain.FitFailInsufficientBins, false),
		Classical: domain.UnfitOmori(domain.FitFailInsufficientBins, true),
	}
	require.NoError(t, store.Insert(ctx, r))

	got, err := store.GetByMainshockID(ctx, "thin")
	require.NoError(t, err)

	assert.False(t, got.Sufficient)
	assert.True(t, math.IsNaN(got.Modified.K), "NaN must survive the round trip")
	assert.True(t, math.IsNaN(got.Modified.P))
	assert.False(t, got.Modified.Success)
	assert.Equal(t, domain.FitFailInsufficientBins, got.Modified.FailureReason)
	assert.Equal(t, domain.FitFailInsufficientBins, got.Classical.FailureReason)
}

func TestSequenceResultStore_GetAllAndDeleteAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSequenceResultStore(pool)

	require.NoError(t, store.Insert(ctx, testResult("later", 3000)))
	require.NoError(t, store.Insert(ctx, testResult("early", 1000)))

	results, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "early", results[0].Mainshock.ID)
	assert.Equal(t, "later", results[1].Mainshock.ID)

	require.NoError(t, store.DeleteAll(ctx))

	results, err = store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, results)
}
