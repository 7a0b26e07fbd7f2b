package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"worklens/pkg/platform/tx"
)

// PostgresReportStore reads legacy reports from PostgreSQL. Sample lists come
// back as arrays so resampling needs no second round trip.
type PostgresReportStore struct {
	db *sql.DB
}

// NewPostgresReports constructs a PostgreSQL-backed report source.
func NewPostgresReports(db *sql.DB) *PostgresReportStore {
	return &PostgresReportStore{db: db}
}

const hospitalMonthlyQuery = `
SELECT hospital_domain,
       staff_group,
       date_trunc('month', shift_date)::date AS month_start,
       COUNT(id)                             AS report_count,
       COALESCE(SUM(actual_hours_worked), 0) AS total_actual,
       COALESCE(SUM(overtime_hours), 0)      AS total_overtime,
       ARRAY_AGG(actual_hours_worked)        AS actual_samples,
       ARRAY_AGG(overtime_hours)             AS overtime_samples
FROM reports
WHERE shift_date >= $1
  AND ($2 = '' OR staff_group = $2)
GROUP BY hospital_domain, staff_group, month_start
ORDER BY month_start DESC, hospital_domain ASC, staff_group ASC`

const staffGroupMonthlyQuery = `
SELECT '' AS hospital_domain,
       staff_group,
       date_trunc('month', shift_date)::date AS month_start,
       COUNT(id)                             AS report_count,
       COALESCE(SUM(actual_hours_worked), 0) AS total_actual,
       COALESCE(SUM(overtime_hours), 0)      AS total_overtime,
       ARRAY_AGG(actual_hours_worked)        AS actual_samples,
       ARRAY_AGG(overtime_hours)             AS overtime_samples
FROM reports
WHERE shift_date >= $1
  AND ($2 = '' OR staff_group = $2)
GROUP BY staff_group, month_start
ORDER BY month_start DESC, staff_group ASC`

// HospitalMonthly groups reports by (hospital domain, staff group, month).
func (s *PostgresReportStore) HospitalMonthly(ctx context.Context, cutoff time.Time, staffGroup StaffGroup) ([]ReportGroup, error) {
	return s.query(ctx, hospitalMonthlyQuery, cutoff, staffGroup)
}

// StaffGroupMonthly groups reports by (staff group, month) across hospitals.
func (s *PostgresReportStore) StaffGroupMonthly(ctx context.Context, cutoff time.Time, staffGroup StaffGroup) ([]ReportGroup, error) {
	return s.query(ctx, staffGroupMonthlyQuery, cutoff, staffGroup)
}

func (s *PostgresReportStore) query(ctx context.Context, query string, cutoff time.Time, staffGroup StaffGroup) ([]ReportGroup, error) {
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, query, cutoff, string(staffGroup))
	if err != nil {
		return nil, fmt.Errorf("query report groups: %w", err)
	}
	defer rows.Close()

	var out []ReportGroup
	for rows.Next() {
		var g ReportGroup
		var actualSamples, overtimeSamples pq.Float64Array
		if err := rows.Scan(
			&g.HospitalDomain,
			&g.StaffGroup,
			&g.MonthStart,
			&g.ReportCount,
			&g.TotalActual,
			&g.TotalOvertime,
			&actualSamples,
			&overtimeSamples,
		); err != nil {
			return nil, fmt.Errorf("scan report group: %w", err)
		}
		g.ActualSamples = actualSamples
		g.OvertimeSamples = overtimeSamples
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report groups: %w", err)
	}
	return out, nil
}
