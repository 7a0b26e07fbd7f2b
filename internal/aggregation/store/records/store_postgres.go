package records

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"worklens/internal/aggregation/models"
	"worklens/pkg/platform/tx"
)

// PostgresStore reads raw work records from PostgreSQL. The grouping happens
// in SQL so only aggregate rows cross the wire.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed record reader.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const cohortAggregatesQuery = `
SELECT country_code,
       state_code,
       specialty,
       role_level,
       COUNT(DISTINCT contributor_id) AS contributors,
       AVG(planned_hours)             AS avg_planned,
       AVG(actual_hours)              AS avg_actual
FROM work_records
WHERE work_date >= $1 AND work_date <= $2
GROUP BY country_code, state_code, specialty, role_level
ORDER BY country_code, state_code, specialty, role_level`

// CohortAggregates groups records in [start, end] by cohort key. The read is
// a pure snapshot; records ingested mid-run may or may not appear.
func (s *PostgresStore) CohortAggregates(ctx context.Context, start, end time.Time) ([]models.CohortAggregate, error) {
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, cohortAggregatesQuery, start, end)
	if err != nil {
		return nil, fmt.Errorf("query cohort aggregates: %w", err)
	}
	defer rows.Close()

	var out []models.CohortAggregate
	for rows.Next() {
		var agg models.CohortAggregate
		var avgPlanned, avgActual sql.NullFloat64
		if err := rows.Scan(
			&agg.Key.CountryCode,
			&agg.Key.StateCode,
			&agg.Key.Specialty,
			&agg.Key.RoleLevel,
			&agg.Contributors,
			&avgPlanned,
			&avgActual,
		); err != nil {
			return nil, fmt.Errorf("scan cohort aggregate: %w", err)
		}
		agg.AvgPlanned = avgPlanned.Float64
		agg.AvgActual = avgActual.Float64
		out = append(out, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cohort aggregates: %w", err)
	}
	return out, nil
}
