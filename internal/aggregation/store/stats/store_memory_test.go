package stats

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklens/internal/aggregation/models"
)

func stat(state, specialty, role string, periodStart time.Time, contributors int) *models.PublishedStatistic {
	return &models.PublishedStatistic{
		CountryCode:       "DEU",
		StateCode:         state,
		Specialty:         specialty,
		RoleLevel:         role,
		PeriodStart:       periodStart,
		PeriodEnd:         periodStart.AddDate(0, 0, 6),
		Contributors:      contributors,
		AvgPlannedNoised:  40.1,
		AvgActualNoised:   45.2,
		AvgOvertimeNoised: 5.1,
		KMinThreshold:     11,
		Epsilon:           1.0,
		ComputedAt:        time.Date(2025, time.December, 8, 2, 0, 0, 0, time.UTC),
	}
}

var week49 = time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)

func TestInMemoryStoreUpsert(t *testing.T) {
	ctx := context.Background()

	t.Run("first write creates", func(t *testing.T) {
		store := NewMemory()
		created, err := store.Upsert(ctx, stat("BY", "surgery", "specialist", week49, 12))
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("second write updates in place", func(t *testing.T) {
		store := NewMemory()
		first := stat("BY", "surgery", "specialist", week49, 12)
		_, err := store.Upsert(ctx, first)
		require.NoError(t, err)

		second := stat("BY", "surgery", "specialist", week49, 13)
		second.AvgActualNoised = 47.7
		created, err := store.Upsert(ctx, second)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)

		found, err := store.FindByKey(ctx, second.Key(), week49)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, 13, found.Contributors)
		assert.Equal(t, 47.7, found.AvgActualNoised)

		listed, err := store.List(ctx, models.StatFilter{})
		require.NoError(t, err)
		assert.Len(t, listed, 1, "re-running must never duplicate a key")
	})

	t.Run("different period starts are distinct rows", func(t *testing.T) {
		store := NewMemory()
		_, err := store.Upsert(ctx, stat("BY", "surgery", "specialist", week49, 12))
		require.NoError(t, err)
		created, err := store.Upsert(ctx, stat("BY", "surgery", "specialist", week49.AddDate(0, 0, 7), 12))
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("assigns an id on create", func(t *testing.T) {
		store := NewMemory()
		s := stat("BE", "surgery", "specialist", week49, 15)
		_, err := store.Upsert(ctx, s)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, s.ID)
	})
}

func TestInMemoryStoreConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	const writers = 32
	var created atomic.Int64
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			wasCreated, err := store.Upsert(ctx, stat("BY", "surgery", "specialist", week49, 12+n%3))
			assert.NoError(t, err)
			if wasCreated {
				created.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), created.Load(), "exactly one writer creates the row")

	listed, err := store.List(ctx, models.StatFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1, "concurrent runs on one key converge to one row")
	assert.NotEqual(t, uuid.Nil, listed[0].ID)
}

func TestInMemoryStoreFindByKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	found, err := store.FindByKey(ctx, models.CohortKey{CountryCode: "DEU", StateCode: "BY"}, week49)
	require.NoError(t, err)
	assert.Nil(t, found, "missing key returns nil, not an error")
}

func TestInMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	week48 := week49.AddDate(0, 0, -7)

	_, err := store.Upsert(ctx, stat("BY", "surgery", "specialist", week49, 12))
	require.NoError(t, err)
	_, err = store.Upsert(ctx, stat("BE", "pediatrics", "resident", week49, 14))
	require.NoError(t, err)
	_, err = store.Upsert(ctx, stat("BY", "surgery", "specialist", week48, 11))
	require.NoError(t, err)

	t.Run("newest period first", func(t *testing.T) {
		listed, err := store.List(ctx, models.StatFilter{})
		require.NoError(t, err)
		require.Len(t, listed, 3)
		assert.Equal(t, week49, listed[0].PeriodStart)
		assert.Equal(t, week48, listed[2].PeriodStart)
	})

	t.Run("filters by dimensions", func(t *testing.T) {
		listed, err := store.List(ctx, models.StatFilter{StateCode: "BE"})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "pediatrics", listed[0].Specialty)
	})

	t.Run("filters by period start", func(t *testing.T) {
		listed, err := store.List(ctx, models.StatFilter{PeriodStart: &week48})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, 11, listed[0].Contributors)
	})

	t.Run("limit and offset paginate", func(t *testing.T) {
		page, err := store.List(ctx, models.StatFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, page, 2)

		rest, err := store.List(ctx, models.StatFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, rest, 1)
	})
}

func TestInMemoryStoreSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		summary, err := NewMemory().Summary(ctx, "DEU")
		require.NoError(t, err)
		assert.Zero(t, summary.TotalRecords)
		assert.Nil(t, summary.EarliestPeriod)
		assert.Empty(t, summary.States)
	})

	t.Run("aggregates dimension values and counts", func(t *testing.T) {
		store := NewMemory()
		week48 := week49.AddDate(0, 0, -7)
		_, err := store.Upsert(ctx, stat("BY", "surgery", "specialist", week49, 12))
		require.NoError(t, err)
		_, err = store.Upsert(ctx, stat("BE", "pediatrics", "resident", week48, 14))
		require.NoError(t, err)

		summary, err := store.Summary(ctx, "DEU")
		require.NoError(t, err)
		assert.Equal(t, 2, summary.TotalRecords)
		assert.Equal(t, 26, summary.TotalContributorsInSets)
		assert.Equal(t, []string{"BE", "BY"}, summary.States)
		assert.Equal(t, []string{"pediatrics", "surgery"}, summary.Specialties)
		assert.Equal(t, []string{"resident", "specialist"}, summary.Roles)
		require.NotNil(t, summary.EarliestPeriod)
		assert.Equal(t, week48, *summary.EarliestPeriod)
		require.NotNil(t, summary.LatestPeriod)
		assert.Equal(t, week49, *summary.LatestPeriod)
	})

	t.Run("latest period tracks the newest row", func(t *testing.T) {
		store := NewMemory()
		_, err := store.Upsert(ctx, stat("BY", "surgery", "specialist", week49, 12))
		require.NoError(t, err)

		latest, err := store.LatestPeriod(ctx, "DEU")
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, week49, *latest)

		missing, err := store.LatestPeriod(ctx, "FRA")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}
