package stats

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"worklens/internal/aggregation/models"
	statstore "worklens/internal/aggregation/store/stats"
)

// =============================================================================
// Stats Read Service Test Suite
// =============================================================================

type StatsServiceSuite struct {
	suite.Suite
	store   *statstore.InMemoryStore
	service *Service
}

func TestStatsServiceSuite(t *testing.T) {
	suite.Run(t, new(StatsServiceSuite))
}

func (s *StatsServiceSuite) SetupTest() {
	s.store = statstore.NewMemory()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var err error
	s.service, err = New(s.store, nil, logger)
	s.Require().NoError(err)
}

// seedStat publishes one row directly into the backing store.
func (s *StatsServiceSuite) seedStat(state string, periodStart time.Time) models.PublishedStatistic {
	stat := models.PublishedStatistic{
		ID:                uuid.New(),
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
		ComputedAt:        time.Now().UTC(),
	}
	_, err := s.store.Upsert(context.Background(), &stat)
	s.Require().NoError(err)
	return stat
}

func (s *StatsServiceSuite) TestNew() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.Run("nil store returns error", func() {
		_, err := New(nil, nil, logger)
		s.Error(err)
	})

	s.Run("nil logger returns error", func() {
		_, err := New(s.store, nil, nil)
		s.Error(err)
	})

	s.Run("nil cache is allowed", func() {
		svc, err := New(s.store, nil, logger)
		s.NoError(err)
		s.NotNil(svc)
	})
}

func (s *StatsServiceSuite) TestList() {
	ctx := context.Background()
	week := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	s.Run("empty store returns an empty slice, not nil", func() {
		rows, err := s.service.List(ctx, models.StatFilter{})
		s.Require().NoError(err)
		s.NotNil(rows)
		s.Empty(rows)
	})

	s.Run("zero limit falls back to the default", func() {
		s.seedStat("BY", week)
		rows, err := s.service.List(ctx, models.StatFilter{Limit: 0})
		s.Require().NoError(err)
		s.Len(rows, 1)
	})

	s.Run("filter narrows by state", func() {
		s.seedStat("BE", week)
		rows, err := s.service.List(ctx, models.StatFilter{StateCode: "BE"})
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal("BE", rows[0].StateCode)
	})
}

func (s *StatsServiceSuite) TestLatest() {
	ctx := context.Background()

	s.Run("empty store returns an empty slice", func() {
		rows, err := s.service.Latest(ctx, "DEU", 50)
		s.Require().NoError(err)
		s.NotNil(rows)
		s.Empty(rows)
	})

	s.Run("only the most recent period is returned", func() {
		older := time.Date(2025, 11, 24, 0, 0, 0, 0, time.UTC)
		newer := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
		s.seedStat("BY", older)
		s.seedStat("BE", newer)

		rows, err := s.service.Latest(ctx, "DEU", 50)
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal("BE", rows[0].StateCode)
		s.True(rows[0].PeriodStart.Equal(newer))
	})
}

func (s *StatsServiceSuite) TestSummary() {
	ctx := context.Background()
	week := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	s.Run("empty dataset yields a zero summary", func() {
		summary, err := s.service.Summary(ctx, "DEU")
		s.Require().NoError(err)
		s.Equal(0, summary.TotalRecords)
		s.Nil(summary.EarliestPeriod)
		s.Nil(summary.LatestPeriod)
	})

	s.Run("summary reflects published rows", func() {
		s.seedStat("BY", week)
		s.seedStat("BE", week)

		summary, err := s.service.Summary(ctx, "DEU")
		s.Require().NoError(err)
		s.Equal(2, summary.TotalRecords)
		s.ElementsMatch([]string{"BE", "BY"}, summary.States)
		s.Equal(30, summary.TotalContributorsInSets)
		s.Require().NotNil(summary.LatestPeriod)
		s.True(summary.LatestPeriod.Equal(week))
	})
}
