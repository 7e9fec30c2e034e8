// Package timeframe provides the UTC period windows analytics queries filter
// on, plus the DateStat shape daily histograms are returned in.
package timeframe

import (
	"fmt"
	"time"
)

// DateStat is one daily histogram bucket. Date is the calendar date in
// YYYY-MM-DD form; days without clicks are absent, so consumers must treat
// missing dates as zero.
type DateStat struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Period is a half-open UTC window [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Validate checks that the window is well-formed.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return fmt.Errorf("period end %s before start %s", p.End, p.Start)
	}
	return nil
}

// LastNDays returns the window from midnight UTC n-1 days ago through now,
// so n=1 covers today only.
func LastNDays(n int) Period {
	now := time.Now().UTC()
	start := midnight(now).AddDate(0, 0, -(n - 1))
	return Period{Start: start, End: now}
}

// Today returns the current UTC calendar day.
func Today() Period {
	now := time.Now().UTC()
	start := midnight(now)
	return Period{Start: start, End: start.AddDate(0, 0, 1)}
}

// ThisISOWeek returns the current Monday-based week.
func ThisISOWeek() Period {
	now := time.Now().UTC()
	weekday := int(now.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	start := midnight(now).AddDate(0, 0, -(weekday - 1))
	return Period{Start: start, End: start.AddDate(0, 0, 7)}
}

// ThisMonth returns the current calendar month.
func ThisMonth() Period {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
