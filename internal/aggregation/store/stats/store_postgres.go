package stats

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"worklens/internal/aggregation/models"
	"worklens/pkg/platform/tx"
)

// PostgresStore persists published statistics in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed statistics store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const statColumns = `id, country_code, state_code, specialty, role_level,
	period_start, period_end, n_contributors,
	avg_planned_hours_noised, avg_actual_hours_noised, avg_overtime_hours_noised,
	k_min_threshold, noise_epsilon, computed_at`

// FindByKey returns the row for a cohort key and period start, or nil.
func (s *PostgresStore) FindByKey(ctx context.Context, key models.CohortKey, periodStart time.Time) (*models.PublishedStatistic, error) {
	query := fmt.Sprintf(`SELECT %s FROM stats_by_state_specialty
		WHERE country_code = $1 AND state_code = $2 AND specialty = $3
		  AND role_level = $4 AND period_start = $5`, statColumns)
	row := tx.Resolve(ctx, s.db).QueryRowContext(ctx, query,
		key.CountryCode, key.StateCode, key.Specialty, key.RoleLevel, periodStart)

	stat, err := scanStat(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find statistic: %w", err)
	}
	return stat, nil
}

// Upsert writes stat under its natural key in a single atomic statement, so
// two runs racing on the same cohort and period converge on one row instead
// of a duplicate-key conflict. Returns true when a new row was inserted.
func (s *PostgresStore) Upsert(ctx context.Context, stat *models.PublishedStatistic) (bool, error) {
	if stat.ID == uuid.Nil {
		stat.ID = uuid.New()
	}
	// xmax = 0 distinguishes a fresh insert from a conflict-update.
	query := `INSERT INTO stats_by_state_specialty (` + statColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (country_code, state_code, specialty, role_level, period_start)
		DO UPDATE SET
			n_contributors            = EXCLUDED.n_contributors,
			period_end                = EXCLUDED.period_end,
			avg_planned_hours_noised  = EXCLUDED.avg_planned_hours_noised,
			avg_actual_hours_noised   = EXCLUDED.avg_actual_hours_noised,
			avg_overtime_hours_noised = EXCLUDED.avg_overtime_hours_noised,
			k_min_threshold           = EXCLUDED.k_min_threshold,
			noise_epsilon             = EXCLUDED.noise_epsilon,
			computed_at               = EXCLUDED.computed_at
		RETURNING id, (xmax = 0) AS inserted`

	var id uuid.UUID
	var inserted bool
	err := tx.Resolve(ctx, s.db).QueryRowContext(ctx, query,
		stat.ID,
		stat.CountryCode, stat.StateCode, stat.Specialty, stat.RoleLevel,
		stat.PeriodStart, stat.PeriodEnd,
		stat.Contributors,
		stat.AvgPlannedNoised, stat.AvgActualNoised, stat.AvgOvertimeNoised,
		stat.KMinThreshold, stat.Epsilon, stat.ComputedAt,
	).Scan(&id, &inserted)
	if err != nil {
		return false, fmt.Errorf("upsert statistic: %w", err)
	}
	stat.ID = id
	return inserted, nil
}

// List returns rows matching the filter, newest period first.
func (s *PostgresStore) List(ctx context.Context, filter models.StatFilter) ([]models.PublishedStatistic, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := fmt.Sprintf(`SELECT %s FROM stats_by_state_specialty
		WHERE ($1 = '' OR country_code = $1)
		  AND ($2 = '' OR state_code = $2)
		  AND ($3 = '' OR specialty = $3)
		  AND ($4 = '' OR role_level = $4)
		  AND ($5::date IS NULL OR period_start = $5)
		ORDER BY period_start DESC, state_code, specialty, role_level
		LIMIT $6 OFFSET $7`, statColumns)

	var periodStart pq.NullTime
	if filter.PeriodStart != nil {
		periodStart = pq.NullTime{Time: *filter.PeriodStart, Valid: true}
	}
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, query,
		filter.CountryCode, filter.StateCode, filter.Specialty, filter.RoleLevel,
		periodStart, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list statistics: %w", err)
	}
	defer rows.Close()

	var out []models.PublishedStatistic
	for rows.Next() {
		stat, err := scanStat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan statistic: %w", err)
		}
		out = append(out, *stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statistics: %w", err)
	}
	return out, nil
}

// LatestPeriod returns the most recent published period start for a country.
func (s *PostgresStore) LatestPeriod(ctx context.Context, countryCode string) (*time.Time, error) {
	row := tx.Resolve(ctx, s.db).QueryRowContext(ctx,
		`SELECT period_start FROM stats_by_state_specialty
		 WHERE country_code = $1 ORDER BY period_start DESC LIMIT 1`, countryCode)
	var latest time.Time
	if err := row.Scan(&latest); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("latest period: %w", err)
	}
	return &latest, nil
}

// Summary describes the published dataset for a country.
func (s *PostgresStore) Summary(ctx context.Context, countryCode string) (models.StatsSummary, error) {
	q := tx.Resolve(ctx, s.db)
	summary := models.StatsSummary{States: []string{}, Specialties: []string{}, Roles: []string{}}

	row := q.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(n_contributors), 0),
		        MIN(period_start), MAX(period_start)
		 FROM stats_by_state_specialty WHERE country_code = $1`, countryCode)
	var earliest, latest sql.NullTime
	if err := row.Scan(&summary.TotalRecords, &summary.TotalContributorsInSets, &earliest, &latest); err != nil {
		return models.StatsSummary{}, fmt.Errorf("summary counts: %w", err)
	}
	if summary.TotalRecords == 0 {
		return summary, nil
	}
	if earliest.Valid {
		summary.EarliestPeriod = &earliest.Time
	}
	if latest.Valid {
		summary.LatestPeriod = &latest.Time
	}

	var err error
	if summary.States, err = s.distinct(ctx, "state_code", countryCode); err != nil {
		return models.StatsSummary{}, err
	}
	if summary.Specialties, err = s.distinct(ctx, "specialty", countryCode); err != nil {
		return models.StatsSummary{}, err
	}
	if summary.Roles, err = s.distinct(ctx, "role_level", countryCode); err != nil {
		return models.StatsSummary{}, err
	}
	return summary, nil
}

func (s *PostgresStore) distinct(ctx context.Context, column, countryCode string) ([]string, error) {
	// column is one of three fixed identifiers, never caller input.
	query := fmt.Sprintf(`SELECT DISTINCT %s FROM stats_by_state_specialty
		WHERE country_code = $1 ORDER BY %s`, column, column)
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, query, countryCode)
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", column, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", column, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStat(row scanner) (*models.PublishedStatistic, error) {
	var stat models.PublishedStatistic
	err := row.Scan(
		&stat.ID,
		&stat.CountryCode, &stat.StateCode, &stat.Specialty, &stat.RoleLevel,
		&stat.PeriodStart, &stat.PeriodEnd,
		&stat.Contributors,
		&stat.AvgPlannedNoised, &stat.AvgActualNoised, &stat.AvgOvertimeNoised,
		&stat.KMinThreshold, &stat.Epsilon, &stat.ComputedAt,
	)
	if err != nil {
		return nil, err
	}
	return &stat, nil
}
