//go:build integration

package stats_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"worklens/internal/aggregation/models"
	"worklens/internal/aggregation/store/stats"
	"worklens/pkg/platform/tx"
	"worklens/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *stats.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = stats.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "stats_by_state_specialty")
	s.Require().NoError(err)
}

func newStat(state string, periodStart time.Time) *models.PublishedStatistic {
	return &models.PublishedStatistic{
		CountryCode:       "DEU",
		StateCode:         state,
		Specialty:         "cardiology",
		RoleLevel:         "resident",
		PeriodStart:       periodStart,
		PeriodEnd:         periodStart.AddDate(0, 0, 6),
		Contributors:      15,
		AvgPlannedNoised:  40.12,
		AvgActualNoised:   44.5,
		AvgOvertimeNoised: 4.38,
		KMinThreshold:     11,
		Epsilon:           1.0,
		ComputedAt:        time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestUpsertCreatesThenUpdates() {
	ctx := context.Background()
	week := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	stat := newStat("BY", week)
	created, err := s.store.Upsert(ctx, stat)
	s.Require().NoError(err)
	s.True(created)
	s.NotEqual(uuid.Nil, stat.ID)
	firstID := stat.ID

	// Same natural key again: the row is updated in place.
	again := newStat("BY", week)
	again.AvgActualNoised = 50.25
	again.Contributors = 18
	created, err = s.store.Upsert(ctx, again)
	s.Require().NoError(err)
	s.False(created)
	s.Equal(firstID, again.ID)

	found, err := s.store.FindByKey(ctx, again.Key(), week)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(firstID, found.ID)
	s.InDelta(50.25, found.AvgActualNoised, 1e-9)
	s.Equal(18, found.Contributors)
}

func (s *PostgresStoreSuite) TestFindByKeyMissingReturnsNil() {
	found, err := s.store.FindByKey(context.Background(), models.CohortKey{
		CountryCode: "DEU", StateCode: "HH", Specialty: "surgery", RoleLevel: "senior",
	}, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Nil(found)
}

func (s *PostgresStoreSuite) TestListFiltersAndOrders() {
	ctx := context.Background()
	older := time.Date(2025, 11, 24, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.store.Upsert(ctx, newStat("BY", older))
	s.Require().NoError(err)
	_, err = s.store.Upsert(ctx, newStat("BY", newer))
	s.Require().NoError(err)
	_, err = s.store.Upsert(ctx, newStat("BE", newer))
	s.Require().NoError(err)

	rows, err := s.store.List(ctx, models.StatFilter{CountryCode: "DEU"})
	s.Require().NoError(err)
	s.Require().Len(rows, 3)
	// Newest period first.
	s.True(rows[0].PeriodStart.After(rows[2].PeriodStart))

	byState, err := s.store.List(ctx, models.StatFilter{StateCode: "BE"})
	s.Require().NoError(err)
	s.Require().Len(byState, 1)
	s.Equal("BE", byState[0].StateCode)

	byPeriod, err := s.store.List(ctx, models.StatFilter{PeriodStart: &older})
	s.Require().NoError(err)
	s.Require().Len(byPeriod, 1)
}

func (s *PostgresStoreSuite) TestUpsertJoinsContextTransaction() {
	ctx := context.Background()
	week := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	// A rolled-back transaction must leave no row behind.
	rollback := fmt.Errorf("boom")
	err := tx.Within(ctx, s.postgres.DB, func(ctx context.Context) error {
		if _, err := s.store.Upsert(ctx, newStat("BY", week)); err != nil {
			return err
		}
		return rollback
	})
	s.Require().ErrorIs(err, rollback)

	found, err := s.store.FindByKey(ctx, newStat("BY", week).Key(), week)
	s.Require().NoError(err)
	s.Nil(found)

	// A committed transaction publishes both rows atomically.
	err = tx.Within(ctx, s.postgres.DB, func(ctx context.Context) error {
		if _, err := s.store.Upsert(ctx, newStat("BY", week)); err != nil {
			return err
		}
		_, err := s.store.Upsert(ctx, newStat("BE", week))
		return err
	})
	s.Require().NoError(err)

	rows, err := s.store.List(ctx, models.StatFilter{CountryCode: "DEU"})
	s.Require().NoError(err)
	s.Len(rows, 2)
}

func (s *PostgresStoreSuite) TestConcurrentUpsertsConvergeToOneRow() {
	ctx := context.Background()
	week := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	const writers = 16
	var created atomic.Int64
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			stat := newStat("BY", week)
			stat.Contributors = 15 + n
			wasCreated, err := s.store.Upsert(ctx, stat)
			s.NoError(err)
			if wasCreated {
				created.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int64(1), created.Load(), "exactly one writer inserts")

	rows, err := s.store.List(ctx, models.StatFilter{StateCode: "BY"})
	s.Require().NoError(err)
	s.Require().Len(rows, 1, "concurrent runs on one natural key leave one row")
	s.NotEqual(uuid.Nil, rows[0].ID)
}

func (s *PostgresStoreSuite) TestLatestPeriodAndSummary() {
	ctx := context.Background()

	latest, err := s.store.LatestPeriod(ctx, "DEU")
	s.Require().NoError(err)
	s.Nil(latest)

	older := time.Date(2025, 11, 24, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.store.Upsert(ctx, newStat("BY", older))
	s.Require().NoError(err)
	_, err = s.store.Upsert(ctx, newStat("BE", newer))
	s.Require().NoError(err)

	latest, err = s.store.LatestPeriod(ctx, "DEU")
	s.Require().NoError(err)
	s.Require().NotNil(latest)
	s.True(latest.Equal(newer))

	summary, err := s.store.Summary(ctx, "DEU")
	s.Require().NoError(err)
	s.Equal(2, summary.TotalRecords)
	s.Equal(30, summary.TotalContributorsInSets)
	s.Equal([]string{"BE", "BY"}, summary.States)
	s.Require().NotNil(summary.EarliestPeriod)
	s.True(summary.EarliestPeriod.Equal(older))
}
