package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"worklens/internal/platform/config"
	"worklens/pkg/pii"
	"worklens/pkg/requestcontext"
)

// ReportSource is the read capability over legacy reports. Both queries group
// by calendar month over reports no older than the cutoff.
type ReportSource interface {
	HospitalMonthly(ctx context.Context, cutoff time.Time, staffGroup StaffGroup) ([]ReportGroup, error)
	StaffGroupMonthly(ctx context.Context, cutoff time.Time, staffGroup StaffGroup) ([]ReportGroup, error)
}

// Service computes privacy-processed analytics summaries at query time.
type Service struct {
	source  ReportSource
	privacy config.Privacy
	logger  *slog.Logger
}

// New constructs the analytics service.
func New(source ReportSource, privacyCfg config.Privacy, logger *slog.Logger) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("report source is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := privacyCfg.Validate(); err != nil {
		return nil, fmt.Errorf("privacy config: %w", err)
	}
	return &Service{source: source, privacy: privacyCfg, logger: logger}, nil
}

// Overview returns hospital-level and staff-group-level monthly summaries
// covering the last months calendar months. staffGroup narrows both lists
// when non-empty. The window is anchored on the request clock, so the
// middleware-stamped time decides which months are in scope.
func (s *Service) Overview(ctx context.Context, months int, staffGroup StaffGroup) (Overview, error) {
	cutoff := monthsBackStart(requestcontext.Now(ctx), months)

	hospital, err := s.source.HospitalMonthly(ctx, cutoff, staffGroup)
	if err != nil {
		return Overview{}, fmt.Errorf("hospital monthly groups: %w", err)
	}
	staff, err := s.source.StaffGroupMonthly(ctx, cutoff, staffGroup)
	if err != nil {
		return Overview{}, fmt.Errorf("staff group monthly groups: %w", err)
	}

	overview := Overview{
		HospitalMonthly:   make([]GroupSummary, len(hospital)),
		StaffGroupMonthly: make([]GroupSummary, len(staff)),
	}
	for i, g := range hospital {
		overview.HospitalMonthly[i] = s.summarize(ctx, g)
	}
	for i, g := range staff {
		overview.StaffGroupMonthly[i] = s.summarize(ctx, g)
	}
	return overview, nil
}

// summarize applies the suppression rule and, for surviving groups, computes
// averages, totals, and noised bootstrap intervals. The two metrics get their
// intervals concurrently; each interval's resamples run on one goroutine so
// the whole call stays within interactive latency.
func (s *Service) summarize(ctx context.Context, g ReportGroup) GroupSummary {
	summary := GroupSummary{
		HospitalDomain: g.HospitalDomain,
		StaffGroup:     g.StaffGroup,
		MonthStart:     g.MonthStart,
		ReportCount:    g.ReportCount,
	}

	if g.ReportCount < s.privacy.SuppressionThreshold || g.ReportCount == 0 {
		summary.Suppressed = true
		s.logger.DebugContext(ctx, "analytics group suppressed",
			"group", pii.Scrub(g.HospitalDomain),
			"staff_group", string(g.StaffGroup),
			"reports", g.ReportCount,
			"threshold", s.privacy.SuppressionThreshold,
		)
		return summary
	}

	summary.AvgActual = round2p(g.TotalActual / float64(g.ReportCount))
	summary.AvgOvertime = round2p(g.TotalOvertime / float64(g.ReportCount))
	summary.TotalActual = round2p(g.TotalActual)
	summary.TotalOvertime = round2p(g.TotalOvertime)

	var actualLo, actualHi, overtimeLo, overtimeHi *float64
	eg, _ := errgroup.WithContext(ctx)
	eg.Go(func() error {
		lo, hi := BootstrapCI(g.ActualSamples, s.privacy.BootstrapIterations, 0.05)
		actualLo, actualHi = noiseBounds(lo, hi, s.privacy.CINoiseScale)
		return nil
	})
	eg.Go(func() error {
		lo, hi := BootstrapCI(g.OvertimeSamples, s.privacy.BootstrapIterations, 0.05)
		overtimeLo, overtimeHi = noiseBounds(lo, hi, s.privacy.CINoiseScale)
		return nil
	})
	_ = eg.Wait() // the closures only compute, they cannot fail

	summary.CIActualLow = roundPtr(actualLo)
	summary.CIActualHigh = roundPtr(actualHi)
	summary.CIOvertimeLow = roundPtr(overtimeLo)
	summary.CIOvertimeHigh = roundPtr(overtimeHi)
	return summary
}

func round2p(v float64) *float64 {
	r := math.Round(v*100) / 100
	return &r
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return round2p(*v)
}

// monthsBackStart returns the first day of the month months-1 months before
// now, so months=1 means the current month.
func monthsBackStart(now time.Time, months int) time.Time {
	year, month := now.Year(), int(now.Month())
	month -= months - 1
	for month <= 0 {
		month += 12
		year--
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}
