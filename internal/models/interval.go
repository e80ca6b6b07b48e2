// Package models defines the absence request entity and its canonical date interval.
package models

import (
	"strings"
	"time"
)

// Interval is the canonical, timezone-normalized absence period. Start never
// follows End.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

const (
	dayFormat      = "January 2, 2006"
	dateTimeFormat = "January 2, 2006 at 3:04 PM"
)

// NewInterval sorts the endpoint pair ascending and re-tags each endpoint's
// zone-neutral wall clock into loc. The wall clock is preserved; only the zone
// changes. A plain instant conversion would shift the calendar day whenever the
// NLU reference zone differs from the calendar zone.
func NewInterval(a, b time.Time, loc *time.Location) Interval {
	if b.Before(a) {
		a, b = b, a
	}
	return Interval{Start: Rezone(a, loc), End: Rezone(b, loc)}
}

// Rezone rebuilds t so that its UTC wall-clock components are read in loc.
func Rezone(t time.Time, loc *time.Location) time.Time {
	u := t.UTC()
	year, month, day := u.Date()
	hour, minute, sec := u.Clock()
	return time.Date(year, month, day, hour, minute, sec, 0, loc)
}

// IsAllDay reports whether both endpoints share the same time of day when read
// in a zone-neutral calendar. The flag is derived, never stored.
func (i Interval) IsAllDay() bool {
	sh, sm, ss := i.Start.UTC().Clock()
	eh, em, es := i.End.UTC().Clock()
	return sh == eh && sm == em && ss == es
}

// Dates renders the endpoints in loc: long dates for all-day intervals,
// date+short-time otherwise. Identical renders are collapsed so a single-day
// absence shows one date.
func (i Interval) Dates(loc *time.Location) []string {
	layout := dateTimeFormat
	if i.IsAllDay() {
		layout = dayFormat
	}

	start := i.Start.In(loc).Format(layout)
	end := i.End.In(loc).Format(layout)
	if start == end {
		return []string{start}
	}
	return []string{start, end}
}

// DateRange joins the rendered endpoints, optionally bolded for Slack markup.
func (i Interval) DateRange(loc *time.Location, bolded bool) string {
	dates := i.Dates(loc)
	if bolded {
		for n, d := range dates {
			dates[n] = "*" + d + "*"
		}
	}
	return strings.Join(dates, " - ")
}

// MonthInterval spans a whole calendar month in UTC, first instant through the
// last second. Used as the report query range.
func MonthInterval(year int, month time.Month) Interval {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return Interval{Start: start, End: end}
}
