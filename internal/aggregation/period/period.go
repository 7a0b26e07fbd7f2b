// Package period resolves reference dates into canonical ISO-week windows.
// Windows run Monday through Sunday; week 1 is the week containing January 4,
// so boundaries are reproducible from (ISO year, ISO week) alone.
package period

import "time"

// Week identifies one ISO week.
type Week struct {
	Year int
	Num  int
}

// Resolve returns the ISO week containing the reference date.
func Resolve(ref time.Time) Week {
	year, week := ref.ISOWeek()
	return Week{Year: year, Num: week}
}

// DefaultReference is the day before the invocation time, so a nightly run
// aggregates the week that just produced data.
func DefaultReference(now time.Time) time.Time {
	return now.AddDate(0, 0, -1)
}

// Start returns the Monday of the week at midnight UTC.
func (w Week) Start() time.Time {
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	weekOneMonday := jan4.AddDate(0, 0, -(weekday - 1))
	return weekOneMonday.AddDate(0, 0, (w.Num-1)*7)
}

// End returns the Sunday of the week at midnight UTC.
func (w Week) End() time.Time {
	return w.Start().AddDate(0, 0, 6)
}

// Contains reports whether the calendar date of t falls inside the window.
func (w Week) Contains(t time.Time) bool {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(w.Start()) && !d.After(w.End())
}
