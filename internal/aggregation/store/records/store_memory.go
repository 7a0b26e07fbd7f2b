// Package records reads raw per-contributor work records. The engine never
// mutates or deletes them; ingestion owns that data.
package records

import (
	"context"
	"sort"
	"sync"
	"time"

	"worklens/internal/aggregation/models"
)

// InMemoryStore keeps raw records in memory for unit tests and local runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []models.RawRecord
}

// NewMemory constructs an empty in-memory record store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{}
}

// Add appends records. Test fixtures only; production data arrives through
// the ingestion subsystem.
func (s *InMemoryStore) Add(recs ...models.RawRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, recs...)
}

// CohortAggregates groups records whose date falls in [start, end] by cohort
// key and computes the distinct contributor count and raw means. Output is
// sorted by cohort label so results are invariant to insertion order.
func (s *InMemoryStore) CohortAggregates(_ context.Context, start, end time.Time) ([]models.CohortAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type group struct {
		contributors map[string]struct{}
		sumPlanned   float64
		sumActual    float64
		n            int
	}
	groups := make(map[models.CohortKey]*group)

	for _, rec := range s.records {
		if rec.Date.Before(start) || rec.Date.After(end) {
			continue
		}
		key := rec.Key()
		g, ok := groups[key]
		if !ok {
			g = &group{contributors: make(map[string]struct{})}
			groups[key] = g
		}
		g.contributors[rec.ContributorID] = struct{}{}
		g.sumPlanned += rec.PlannedHours
		g.sumActual += rec.ActualHours
		g.n++
	}

	out := make([]models.CohortAggregate, 0, len(groups))
	for key, g := range groups {
		out = append(out, models.CohortAggregate{
			Key:          key,
			Contributors: len(g.contributors),
			AvgPlanned:   g.sumPlanned / float64(g.n),
			AvgActual:    g.sumActual / float64(g.n),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.Label() < out[j].Key.Label()
	})
	return out, nil
}
