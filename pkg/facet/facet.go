// Package facet implements the independent filter dimensions of the activity
// list. Every filter is total over its input: malformed selections fall back to
// permissive defaults instead of failing.
package facet

import (
	"github.com/mwantia/mystrava/pkg/activity"
	"github.com/mwantia/mystrava/pkg/query"
)

// MatchesSportType reports whether a is selected by tag.
func MatchesSportType(a activity.Activity, tag activity.Tag) bool {
	return tag.Includes(a.SportType)
}

// MatchesCommute reports whether a passes the commute toggle.
func MatchesCommute(a activity.Activity, withCommutes bool) bool {
	return withCommutes || !a.Commute
}

// ByActivityType applies the sport type and commute facets together. Selecting
// every sport type with commutes included returns items itself.
func ByActivityType(items []activity.Activity, tag activity.Tag, withCommutes bool) []activity.Activity {
	if tag == activity.TagAll && withCommutes {
		return items
	}

	return filter(items, func(a activity.Activity) bool {
		return MatchesSportType(a, tag) && MatchesCommute(a, withCommutes)
	})
}

// BySearch keeps the activities whose projection matches p.
func BySearch(items []activity.Activity, p *query.Predicate) []activity.Activity {
	if p.MatchesAll() {
		return items
	}

	return filter(items, func(a activity.Activity) bool {
		return p.Matches(a.Projection())
	})
}

// ByDateRange keeps the activities dated within r.
func ByDateRange(items []activity.Activity, r DateRange) []activity.Activity {
	if r.IsZero() {
		return items
	}

	return filter(items, func(a activity.Activity) bool {
		return r.Contains(a.Date)
	})
}

// ByRetired drops retired gear unless withRetired is set.
func ByRetired[T interface{ IsRetired() bool }](rows []T, withRetired bool) []T {
	if withRetired {
		return rows
	}

	result := make([]T, 0, len(rows))
	for _, row := range rows {
		if !row.IsRetired() {
			result = append(result, row)
		}
	}
	return result
}

func filter(items []activity.Activity, keep func(activity.Activity) bool) []activity.Activity {
	result := make([]activity.Activity, 0, len(items))
	for _, item := range items {
		if keep(item) {
			result = append(result, item)
		}
	}
	return result
}
