// Package models holds the aggregation engine's domain types. Raw records are
// owned by the ingestion subsystem; this engine only ever reads them.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CohortKey is the fixed tuple of categorical dimensions a cohort is grouped
// by. It exists only in memory during a run; the period start completes the
// natural key of a published row.
type CohortKey struct {
	CountryCode string
	StateCode   string
	Specialty   string
	RoleLevel   string
}

// Label renders the key for logs. Dimension values come from controlled
// vocabularies, so the label carries no contributor-identifying data.
func (k CohortKey) Label() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.CountryCode, k.StateCode, k.Specialty, k.RoleLevel)
}

// RawRecord is one contributor's work hours for one calendar day.
type RawRecord struct {
	ID            uuid.UUID
	ContributorID string // opaque, stable pseudonym assigned at ingestion
	CountryCode   string
	StateCode     string
	Specialty     string
	RoleLevel     string
	Date          time.Time
	PlannedHours  float64
	ActualHours   float64
}

// Key returns the cohort dimensions of the record.
func (r RawRecord) Key() CohortKey {
	return CohortKey{
		CountryCode: r.CountryCode,
		StateCode:   r.StateCode,
		Specialty:   r.Specialty,
		RoleLevel:   r.RoleLevel,
	}
}

// CohortAggregate is the raw, un-noised summary of one cohort for one window.
// Contributors is always counted over the raw record set, never derived from
// noised output.
type CohortAggregate struct {
	Key          CohortKey
	Contributors int
	AvgPlanned   float64
	AvgActual    float64
}

// PublishedStatistic is one persisted row per cohort key and period. Noised
// fields are refreshed on every re-run; Contributors stays a raw count.
type PublishedStatistic struct {
	ID                uuid.UUID
	CountryCode       string
	StateCode         string
	Specialty         string
	RoleLevel         string
	PeriodStart       time.Time
	PeriodEnd         time.Time
	Contributors      int
	AvgPlannedNoised  float64
	AvgActualNoised   float64
	AvgOvertimeNoised float64
	KMinThreshold     int
	Epsilon           float64
	ComputedAt        time.Time
}

// Key returns the cohort dimensions of the published row.
func (s PublishedStatistic) Key() CohortKey {
	return CohortKey{
		CountryCode: s.CountryCode,
		StateCode:   s.StateCode,
		Specialty:   s.Specialty,
		RoleLevel:   s.RoleLevel,
	}
}

// StatFilter narrows published-statistic queries. Zero-value fields match
// everything; Limit of 0 means the store default.
type StatFilter struct {
	CountryCode string
	StateCode   string
	Specialty   string
	RoleLevel   string
	PeriodStart *time.Time
	Limit       int
	Offset      int
}

// StatsSummary describes the published dataset for one country: how much data
// exists and which dimension values appear. TotalContributorsInSets sums the
// anonymity-set sizes and can count the same contributor across weeks.
type StatsSummary struct {
	TotalRecords            int        `json:"total_records"`
	EarliestPeriod          *time.Time `json:"earliest_period"`
	LatestPeriod            *time.Time `json:"latest_period"`
	States                  []string   `json:"states"`
	Specialties             []string   `json:"specialties"`
	Roles                   []string   `json:"roles"`
	TotalContributorsInSets int        `json:"total_users_in_sets"`
}

// RunSummary is the externally observable result of one aggregation run.
type RunSummary struct {
	ISOYear     int       `json:"iso_year"`
	ISOWeek     int       `json:"iso_week"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Created     int       `json:"created"`
	Updated     int       `json:"updated"`
	Suppressed  int       `json:"suppressed"`
	Failed      int       `json:"failed"`
	ComputedAt  time.Time `json:"computed_at"`
}
