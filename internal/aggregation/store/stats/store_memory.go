// Package stats persists published cohort statistics, keyed by the cohort
// dimensions plus period start. The engine only ever upserts; retention and
// deletion are external policy concerns.
package stats

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"worklens/internal/aggregation/models"
)

const defaultListLimit = 100

type memoryKey struct {
	models.CohortKey
	periodStart time.Time
}

// InMemoryStore keeps published statistics in memory for unit tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	stats map[memoryKey]*models.PublishedStatistic
}

// NewMemory constructs an empty in-memory statistics store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{stats: make(map[memoryKey]*models.PublishedStatistic)}
}

// FindByKey returns the row for a cohort key and period start, or nil.
func (s *InMemoryStore) FindByKey(_ context.Context, key models.CohortKey, periodStart time.Time) (*models.PublishedStatistic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if stat, ok := s.stats[memoryKey{key, periodStart}]; ok {
		copied := *stat
		return &copied, nil
	}
	return nil, nil
}

// Upsert writes stat under its natural key. The whole lookup-then-write runs
// under the store lock so concurrent runs converge on one row per key.
func (s *InMemoryStore) Upsert(_ context.Context, stat *models.PublishedStatistic) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := memoryKey{stat.Key(), stat.PeriodStart}
	existing, ok := s.stats[k]
	if ok {
		stat.ID = existing.ID
		copied := *stat
		s.stats[k] = &copied
		return false, nil
	}
	if stat.ID == uuid.Nil {
		stat.ID = uuid.New()
	}
	copied := *stat
	s.stats[k] = &copied
	return true, nil
}

// List returns rows matching the filter, newest period first.
func (s *InMemoryStore) List(_ context.Context, filter models.StatFilter) ([]models.PublishedStatistic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.PublishedStatistic
	for _, stat := range s.stats {
		if !matches(stat, filter) {
			continue
		}
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PeriodStart.Equal(out[j].PeriodStart) {
			return out[i].PeriodStart.After(out[j].PeriodStart)
		}
		return out[i].Key().Label() < out[j].Key().Label()
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LatestPeriod returns the most recent period start for a country, or nil
// when nothing has been published.
func (s *InMemoryStore) LatestPeriod(_ context.Context, countryCode string) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *time.Time
	for _, stat := range s.stats {
		if stat.CountryCode != countryCode {
			continue
		}
		if latest == nil || stat.PeriodStart.After(*latest) {
			t := stat.PeriodStart
			latest = &t
		}
	}
	return latest, nil
}

// Summary describes the published dataset for a country.
func (s *InMemoryStore) Summary(_ context.Context, countryCode string) (models.StatsSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := models.StatsSummary{States: []string{}, Specialties: []string{}, Roles: []string{}}
	states := make(map[string]struct{})
	specialties := make(map[string]struct{})
	roles := make(map[string]struct{})

	for _, stat := range s.stats {
		if stat.CountryCode != countryCode {
			continue
		}
		summary.TotalRecords++
		summary.TotalContributorsInSets += stat.Contributors
		states[stat.StateCode] = struct{}{}
		specialties[stat.Specialty] = struct{}{}
		roles[stat.RoleLevel] = struct{}{}
		start := stat.PeriodStart
		if summary.EarliestPeriod == nil || start.Before(*summary.EarliestPeriod) {
			t := start
			summary.EarliestPeriod = &t
		}
		if summary.LatestPeriod == nil || start.After(*summary.LatestPeriod) {
			t := start
			summary.LatestPeriod = &t
		}
	}

	summary.States = sortedKeys(states)
	summary.Specialties = sortedKeys(specialties)
	summary.Roles = sortedKeys(roles)
	return summary, nil
}

func matches(stat *models.PublishedStatistic, filter models.StatFilter) bool {
	if filter.CountryCode != "" && stat.CountryCode != filter.CountryCode {
		return false
	}
	if filter.StateCode != "" && stat.StateCode != filter.StateCode {
		return false
	}
	if filter.Specialty != "" && stat.Specialty != filter.Specialty {
		return false
	}
	if filter.RoleLevel != "" && stat.RoleLevel != filter.RoleLevel {
		return false
	}
	if filter.PeriodStart != nil && !stat.PeriodStart.Equal(*filter.PeriodStart) {
		return false
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
