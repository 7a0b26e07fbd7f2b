package analytics

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"worklens/pkg/pii"
)

// Report is one legacy shift report. Notes are free-form text; the store
// scrubs them on the way in, so stored notes carry no contact details.
type Report struct {
	ID             uuid.UUID
	HospitalDomain string
	StaffGroup     StaffGroup
	ShiftDate      time.Time
	ActualHours    float64
	OvertimeHours  float64
	Notes          string
	CreatedAt      time.Time
}

// InMemoryReportStore keeps legacy reports in memory for unit tests.
type InMemoryReportStore struct {
	mu      sync.RWMutex
	reports []Report
}

// NewMemoryReports constructs an empty in-memory report store.
func NewMemoryReports() *InMemoryReportStore {
	return &InMemoryReportStore{}
}

// Add appends reports. Notes are scrubbed before they are stored and
// CreatedAt defaults to now when unset.
func (s *InMemoryReportStore) Add(reports ...Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range reports {
		r.Notes = pii.Scrub(r.Notes)
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now().UTC()
		}
		s.reports = append(s.reports, r)
	}
}

// HospitalMonthly groups reports by (hospital domain, staff group, month).
func (s *InMemoryReportStore) HospitalMonthly(_ context.Context, cutoff time.Time, staffGroup StaffGroup) ([]ReportGroup, error) {
	return s.group(cutoff, staffGroup, true), nil
}

// StaffGroupMonthly groups reports by (staff group, month) across hospitals.
func (s *InMemoryReportStore) StaffGroupMonthly(_ context.Context, cutoff time.Time, staffGroup StaffGroup) ([]ReportGroup, error) {
	return s.group(cutoff, staffGroup, false), nil
}

func (s *InMemoryReportStore) group(cutoff time.Time, staffGroup StaffGroup, byHospital bool) []ReportGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct {
		hospital string
		group    StaffGroup
		month    time.Time
	}
	groups := make(map[key]*ReportGroup)

	for _, r := range s.reports {
		if r.ShiftDate.Before(cutoff) {
			continue
		}
		if staffGroup != "" && r.StaffGroup != staffGroup {
			continue
		}
		k := key{
			group: r.StaffGroup,
			month: time.Date(r.ShiftDate.Year(), r.ShiftDate.Month(), 1, 0, 0, 0, 0, time.UTC),
		}
		if byHospital {
			k.hospital = r.HospitalDomain
		}
		g, ok := groups[k]
		if !ok {
			g = &ReportGroup{HospitalDomain: k.hospital, StaffGroup: k.group, MonthStart: k.month}
			groups[k] = g
		}
		g.ReportCount++
		g.TotalActual += r.ActualHours
		g.TotalOvertime += r.OvertimeHours
		g.ActualSamples = append(g.ActualSamples, r.ActualHours)
		g.OvertimeSamples = append(g.OvertimeSamples, r.OvertimeHours)
	}

	out := make([]ReportGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MonthStart.Equal(out[j].MonthStart) {
			return out[i].MonthStart.After(out[j].MonthStart)
		}
		if out[i].HospitalDomain != out[j].HospitalDomain {
			return out[i].HospitalDomain < out[j].HospitalDomain
		}
		return out[i].StaffGroup < out[j].StaffGroup
	})
	return out
}
