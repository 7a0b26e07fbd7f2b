package analytics

import "time"

// StaffGroup is the coarse occupational banding used by legacy reports.
type StaffGroup string

const (
	StaffGroupA StaffGroup = "group_a" // junior and attending physicians
	StaffGroupB StaffGroup = "group_b" // senior and chief physicians
	StaffGroupC StaffGroup = "group_c" // nursing staff
)

// Valid reports whether g is a known staff group.
func (g StaffGroup) Valid() bool {
	switch g {
	case StaffGroupA, StaffGroupB, StaffGroupC:
		return true
	}
	return false
}

// ReportGroup is one raw grouping of legacy reports: a month of reports for
// a hospital domain (or all hospitals) and staff group, with the sample
// lists needed for bootstrap resampling.
type ReportGroup struct {
	HospitalDomain  string
	StaffGroup      StaffGroup
	MonthStart      time.Time
	ReportCount     int
	TotalActual     float64
	TotalOvertime   float64
	ActualSamples   []float64
	OvertimeSamples []float64
}

// GroupSummary is the privacy-processed output for one report group. All
// metric pointers are nil when the group is suppressed.
type GroupSummary struct {
	HospitalDomain  string     `json:"hospital_domain,omitempty"`
	StaffGroup      StaffGroup `json:"staff_group"`
	MonthStart      time.Time  `json:"month_start"`
	ReportCount     int        `json:"report_count"`
	AvgActual       *float64   `json:"average_actual_hours"`
	AvgOvertime     *float64   `json:"average_overtime_hours"`
	TotalActual     *float64   `json:"total_actual_hours"`
	TotalOvertime   *float64   `json:"total_overtime_hours"`
	CIActualLow     *float64   `json:"ci_actual_low"`
	CIActualHigh    *float64   `json:"ci_actual_high"`
	CIOvertimeLow   *float64   `json:"ci_overtime_low"`
	CIOvertimeHigh  *float64   `json:"ci_overtime_high"`
	Suppressed      bool       `json:"suppressed"`
}

// Overview is the full analytics response.
type Overview struct {
	HospitalMonthly   []GroupSummary `json:"hospital_monthly"`
	StaffGroupMonthly []GroupSummary `json:"staff_group_monthly"`
}
