//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Package service orchestrates one aggregation run: resolve the week, group
// raw records into cohorts, suppress small cohorts, perturb the survivors,
// and upsert the published rows.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"worklens/internal/aggregation/metrics"
	"worklens/internal/aggregation/models"
	"worklens/internal/aggregation/period"
	"worklens/internal/platform/config"
	"worklens/internal/privacy"
	"worklens/pkg/pii"
	"worklens/pkg/requestcontext"
)

// RecordReader is the capability the engine needs over raw records: a
// consistent snapshot of cohort aggregates for a window. Any storage engine
// satisfying it is substitutable.
type RecordReader interface {
	CohortAggregates(ctx context.Context, start, end time.Time) ([]models.CohortAggregate, error)
}

// StatStore is the engine's only write surface.
type StatStore interface {
	FindByKey(ctx context.Context, key models.CohortKey, periodStart time.Time) (*models.PublishedStatistic, error)
	Upsert(ctx context.Context, stat *models.PublishedStatistic) (created bool, err error)
}

// Notifier receives the run summary after a completed run. Implementations
// must treat delivery as best effort; the run result stands regardless.
type Notifier interface {
	RunCompleted(ctx context.Context, summary models.RunSummary) error
}

// Service runs privacy-preserving aggregation over one ISO week.
type Service struct {
	records  RecordReader
	stats    StatStore
	notifier Notifier
	privacy  config.Privacy
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// New constructs the aggregation service. The notifier may be nil.
func New(records RecordReader, stats StatStore, notifier Notifier, privacyCfg config.Privacy, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	if records == nil {
		return nil, fmt.Errorf("record reader is required")
	}
	if stats == nil {
		return nil, fmt.Errorf("stat store is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if m == nil {
		return nil, fmt.Errorf("metrics are required")
	}
	if err := privacyCfg.Validate(); err != nil {
		return nil, fmt.Errorf("privacy config: %w", err)
	}
	return &Service{
		records:  records,
		stats:    stats,
		notifier: notifier,
		privacy:  privacyCfg,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer("worklens/aggregation"),
	}, nil
}

// Run aggregates the ISO week containing ref. A per-cohort upsert failure is
// logged and skipped so the rest of the period still publishes; the run only
// errors when the record snapshot cannot be read or every upsert failed.
func (s *Service) Run(ctx context.Context, ref time.Time) (models.RunSummary, error) {
	start := time.Now()
	defer func() { s.metrics.RunDuration.Observe(time.Since(start).Seconds()) }()

	week := period.Resolve(ref)
	ctx, span := s.tracer.Start(ctx, "aggregation.run",
		trace.WithAttributes(
			attribute.Int("iso.year", week.Year),
			attribute.Int("iso.week", week.Num),
		))
	defer span.End()

	summary := models.RunSummary{
		ISOYear:     week.Year,
		ISOWeek:     week.Num,
		PeriodStart: week.Start(),
		PeriodEnd:   week.End(),
	}

	s.logger.InfoContext(ctx, "aggregation run started",
		"iso_year", week.Year,
		"iso_week", week.Num,
		"period_start", week.Start().Format(time.DateOnly),
		"period_end", week.End().Format(time.DateOnly),
	)

	aggregates, err := s.records.CohortAggregates(ctx, week.Start(), week.End())
	if err != nil {
		return summary, fmt.Errorf("read cohort aggregates: %w", err)
	}

	// One clock for the whole run: every published row and the summary carry
	// the same computed_at, and tests pin it through the context.
	now := requestcontext.Now(ctx)

	for _, agg := range aggregates {
		if agg.Contributors < s.privacy.KMin {
			summary.Suppressed++
			s.metrics.CohortsSuppressed.Inc()
			s.logger.InfoContext(ctx, "cohort suppressed",
				"cohort", pii.Scrub(agg.Key.Label()),
				"contributors", agg.Contributors,
				"k_min", s.privacy.KMin,
				"reason", "size below threshold",
			)
			continue
		}

		stat := s.publish(agg, week, now)
		created, err := s.stats.Upsert(ctx, stat)
		if err != nil {
			summary.Failed++
			s.metrics.CohortsFailed.Inc()
			s.logger.ErrorContext(ctx, "cohort upsert failed",
				"cohort", pii.Scrub(agg.Key.Label()),
				"error", err,
			)
			continue
		}
		s.metrics.CohortsPublished.Inc()
		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	summary.ComputedAt = now

	if summary.Failed > 0 && summary.Created+summary.Updated == 0 {
		return summary, fmt.Errorf("all %d cohort upserts failed", summary.Failed)
	}

	s.logger.InfoContext(ctx, "aggregation run finished",
		"created", summary.Created,
		"updated", summary.Updated,
		"suppressed", summary.Suppressed,
		"failed", summary.Failed,
	)

	if s.notifier != nil {
		if err := s.notifier.RunCompleted(ctx, summary); err != nil {
			s.logger.WarnContext(ctx, "run notification failed", "error", err)
		}
	}
	return summary, nil
}

// publish turns a raw cohort aggregate into a publishable row: sensitivity is
// calibrated to this cohort's size, then each statistic gets an independent
// Laplace draw. Contributors stays the raw count; it is the anonymity-set
// size and must never be derived from noised values.
func (s *Service) publish(agg models.CohortAggregate, week period.Week, now time.Time) *models.PublishedStatistic {
	sensitivity := privacy.MeanSensitivity(s.privacy.HoursCeiling, agg.Contributors)
	avgOvertime := agg.AvgActual - agg.AvgPlanned

	plannedNoised := privacy.ClampNonNegative(agg.AvgPlanned + privacy.LaplaceNoise(sensitivity, s.privacy.Epsilon))
	actualNoised := privacy.ClampNonNegative(agg.AvgActual + privacy.LaplaceNoise(sensitivity, s.privacy.Epsilon))
	overtimeNoised := avgOvertime + privacy.LaplaceNoise(sensitivity, s.privacy.Epsilon)

	return &models.PublishedStatistic{
		CountryCode:       agg.Key.CountryCode,
		StateCode:         agg.Key.StateCode,
		Specialty:         agg.Key.Specialty,
		RoleLevel:         agg.Key.RoleLevel,
		PeriodStart:       week.Start(),
		PeriodEnd:         week.End(),
		Contributors:      agg.Contributors,
		AvgPlannedNoised:  round2(plannedNoised),
		AvgActualNoised:   round2(actualNoised),
		AvgOvertimeNoised: round2(overtimeNoised),
		KMinThreshold:     s.privacy.KMin,
		Epsilon:           s.privacy.Epsilon,
		ComputedAt:        now,
	}
}

// round2 keeps the persisted columns at publication precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
