package facet

import (
	"strings"
	"time"
)

var (
	// Floor is the start used when the start of a range is not a valid date.
	Floor = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

	granularities = []struct {
		layout string
		widen  func(time.Time) time.Time
	}{
		{layout: "2006-01-02", widen: func(t time.Time) time.Time { return t }},
		{layout: "2006-01", widen: func(t time.Time) time.Time { return t.AddDate(0, 1, -1) }},
		{layout: "2006", widen: func(t time.Time) time.Time { return t.AddDate(1, 0, -1) }},
	}
)

// DateRange is an inclusive calendar date range. The zero value selects every
// date.
type DateRange struct {
	Start time.Time
	End   time.Time
	set   bool
}

// ParseDateRange builds a range from two user inputs, each a YYYY, YYYY-MM or
// YYYY-MM-DD date. An invalid start falls back to Floor and an invalid end to
// now. A partial end date is widened to the last day it covers. Two blank
// inputs give the zero range.
func ParseDateRange(start, end string, now time.Time) DateRange {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" && end == "" {
		return DateRange{}
	}

	r := DateRange{Start: Floor, End: now, set: true}
	if t, _, ok := parseDate(start); ok {
		r.Start = t
	}
	if t, widen, ok := parseDate(end); ok {
		r.End = widen(t)
	}
	return r
}

// IsZero reports whether r selects every date.
func (r DateRange) IsZero() bool {
	return !r.set
}

// Contains reports whether date lies within r, bounds included.
func (r DateRange) Contains(date time.Time) bool {
	if !r.set {
		return true
	}
	return !date.Before(r.Start) && !date.After(r.End)
}

func parseDate(s string) (time.Time, func(time.Time) time.Time, bool) {
	if s == "" {
		return time.Time{}, nil, false
	}
	for _, g := range granularities {
		if len(s) != len(g.layout) {
			continue
		}
		if t, err := time.Parse(g.layout, s); err == nil {
			return t, g.widen, true
		}
	}
	return time.Time{}, nil, false
}
