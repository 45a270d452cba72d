// Package retention implements tiered grandfather-father-son selection over
// a chronologically ordered snapshot set. Five windows - hourly, daily,
// weekly, monthly, yearly - are measured backward from the newest snapshot's
// timestamp, never from wall-clock time, and each keeps at most one snapshot
// per bucket of its granularity.
package retention

import (
	"fmt"
	"time"
)

// Policy holds the window span for each tier, counted in that tier's own
// unit back from the anchor timestamp. A zero span keeps nothing beyond what
// earlier tiers already kept.
type Policy struct {
	Hours  int
	Days   int
	Weeks  int
	Months int
	Years  int
}

// DefaultPolicy keeps a day of hourlies, a week of dailies, a month of
// weeklies, a year of monthlies and a decade of yearlies.
func DefaultPolicy() Policy {
	return Policy{Hours: 24, Days: 7, Weeks: 4, Months: 12, Years: 10}
}

// Normalize clamps negative spans to zero.
func (p Policy) Normalize() Policy {
	if p.Hours < 0 {
		p.Hours = 0
	}
	if p.Days < 0 {
		p.Days = 0
	}
	if p.Weeks < 0 {
		p.Weeks = 0
	}
	if p.Months < 0 {
		p.Months = 0
	}
	if p.Years < 0 {
		p.Years = 0
	}
	return p
}

// tier is one retention granularity: a window span accessor, a cutoff
// computed from the anchor, and a bucket key coarsening a timestamp to the
// tier's granularity.
type tier struct {
	name   string
	span   func(Policy) int
	cutoff func(anchor time.Time, span int) time.Time
	bucket func(time.Time) string
}

// Month and year steps use calendar arithmetic (AddDate), so a window
// boundary always lands on a valid prior calendar date rather than a fixed
// 30-day approximation.
var tiers = []tier{
	{
		name:   "hourly",
		span:   func(p Policy) int { return p.Hours },
		cutoff: func(a time.Time, n int) time.Time { return a.Add(-time.Duration(n) * time.Hour) },
		bucket: func(t time.Time) string { return t.Format("2006-01-02T15") },
	},
	{
		name:   "daily",
		span:   func(p Policy) int { return p.Days },
		cutoff: func(a time.Time, n int) time.Time { return a.AddDate(0, 0, -n) },
		bucket: func(t time.Time) string { return t.Format("2006-01-02") },
	},
	{
		name:   "weekly",
		span:   func(p Policy) int { return p.Weeks },
		cutoff: func(a time.Time, n int) time.Time { return a.AddDate(0, 0, -7*n) },
		bucket: func(t time.Time) string {
			y, w := t.ISOWeek()
			return fmt.Sprintf("%04d-W%02d", y, w)
		},
	},
	{
		name:   "monthly",
		span:   func(p Policy) int { return p.Months },
		cutoff: func(a time.Time, n int) time.Time { return a.AddDate(0, -n, 0) },
		bucket: func(t time.Time) string { return t.Format("2006-01") },
	},
	{
		name:   "yearly",
		span:   func(p Policy) int { return p.Years },
		cutoff: func(a time.Time, n int) time.Time { return a.AddDate(-n, 0, 0) },
		bucket: func(t time.Time) string { return t.Format("2006") },
	},
}
