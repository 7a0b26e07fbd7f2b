//go:build integration

package records_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"worklens/internal/aggregation/store/records"
	"worklens/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *records.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = records.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "work_records")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) insertRecord(contributor, state string, day time.Time, planned, actual float64) {
	_, err := s.postgres.DB.ExecContext(context.Background(),
		`INSERT INTO work_records
		   (contributor_id, country_code, state_code, specialty, role_level, work_date, planned_hours, actual_hours)
		 VALUES ($1, 'DEU', $2, 'cardiology', 'resident', $3, $4, $5)`,
		contributor, state, day, planned, actual)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestCohortAggregates() {
	ctx := context.Background()
	monday := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	sunday := monday.AddDate(0, 0, 6)

	// Same contributor twice plus a second one: distinct count must be 2.
	s.insertRecord("alice", "BY", monday, 8, 9)
	s.insertRecord("alice", "BY", monday.AddDate(0, 0, 1), 8, 10)
	s.insertRecord("bob", "BY", monday, 8, 8)

	// Different cohort.
	s.insertRecord("carol", "BE", monday, 6, 7)

	// Outside the window: must not contribute.
	s.insertRecord("dave", "BY", monday.AddDate(0, 0, -1), 8, 8)

	aggs, err := s.store.CohortAggregates(ctx, monday, sunday)
	s.Require().NoError(err)
	s.Require().Len(aggs, 2)

	// Ordered by dimensions, so BE comes first.
	s.Equal("BE", aggs[0].Key.StateCode)
	s.Equal(1, aggs[0].Contributors)

	s.Equal("BY", aggs[1].Key.StateCode)
	s.Equal(2, aggs[1].Contributors)
	s.InDelta(9.0, aggs[1].AvgActual, 1e-9)
	s.InDelta(8.0, aggs[1].AvgPlanned, 1e-9)
}

func (s *PostgresStoreSuite) TestEmptyWindow() {
	aggs, err := s.store.CohortAggregates(context.Background(),
		time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 7, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Empty(aggs)
}
