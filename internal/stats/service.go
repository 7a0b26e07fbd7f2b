// Package stats exposes read-only queries over published statistics. Every
// row it returns has already been through the k-anonymity filter and the
// Laplace mechanism; nothing here touches raw records.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"worklens/internal/aggregation/models"
)

const (
	maxListLimit   = 1000
	maxLatestLimit = 100
)

// StatReader is the read capability over the published-statistics store.
type StatReader interface {
	List(ctx context.Context, filter models.StatFilter) ([]models.PublishedStatistic, error)
	LatestPeriod(ctx context.Context, countryCode string) (*time.Time, error)
	Summary(ctx context.Context, countryCode string) (models.StatsSummary, error)
}

// Service answers published-statistics queries, with an optional cache in
// front of the summary aggregate.
type Service struct {
	store  StatReader
	cache  *SummaryCache
	logger *slog.Logger
}

// New constructs the stats read service. cache may be nil.
func New(store StatReader, cache *SummaryCache, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("stat reader is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{store: store, cache: cache, logger: logger}, nil
}

// List returns published rows matching the filter, newest period first.
func (s *Service) List(ctx context.Context, filter models.StatFilter) ([]models.PublishedStatistic, error) {
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = 100
	}
	rows, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list statistics: %w", err)
	}
	if rows == nil {
		rows = []models.PublishedStatistic{}
	}
	return rows, nil
}

// Latest returns all rows of the most recent published period for a country,
// for dashboard-style overviews.
func (s *Service) Latest(ctx context.Context, countryCode string, limit int) ([]models.PublishedStatistic, error) {
	if limit <= 0 || limit > maxLatestLimit {
		limit = 50
	}
	latest, err := s.store.LatestPeriod(ctx, countryCode)
	if err != nil {
		return nil, fmt.Errorf("latest period: %w", err)
	}
	if latest == nil {
		return []models.PublishedStatistic{}, nil
	}
	return s.List(ctx, models.StatFilter{
		CountryCode: countryCode,
		PeriodStart: latest,
		Limit:       limit,
	})
}

// Summary returns dataset metadata for a country, served from cache when
// possible. Cache failures degrade to the store; they are logged, not
// surfaced.
func (s *Service) Summary(ctx context.Context, countryCode string) (models.StatsSummary, error) {
	if s.cache != nil {
		if summary, ok := s.cache.Get(ctx, countryCode); ok {
			return *summary, nil
		}
	}

	summary, err := s.store.Summary(ctx, countryCode)
	if err != nil {
		return models.StatsSummary{}, fmt.Errorf("summary: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, countryCode, summary); err != nil {
			s.logger.WarnContext(ctx, "summary cache write failed", "error", err)
		}
	}
	return summary, nil
}
