package facet

import (
	"testing"
	"time"

	"github.com/mwantia/mystrava/pkg/activity"
	"github.com/mwantia/mystrava/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(activity.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ids(items []activity.Activity) []int64 {
	out := make([]int64, 0, len(items))
	for _, a := range items {
		out = append(out, a.ID)
	}
	return out
}

var sample = []activity.Activity{
	{ID: 1, Name: "Morning Ride", SportType: activity.Ride, Commute: true, Date: day("2022-03-01")},
	{ID: 2, Name: "Trail run in the park", SportType: activity.TrailRun, Date: day("2022-03-31")},
	{ID: 3, Name: "Gravel loop", SportType: activity.GravelRide, Date: day("2022-04-01")},
	{ID: 4, Name: "Cross country", SportType: activity.NordicSki, Date: day("2021-12-31")},
	{ID: 5, Name: "Commute home", SportType: activity.Run, Commute: true, Date: day("2023-06-15")},
}

func TestByActivityType(t *testing.T) {
	tests := []struct {
		name     string
		tag      activity.Tag
		commutes bool
		want     []int64
	}{
		{name: "all without commutes", tag: activity.TagAll, commutes: false, want: []int64{2, 3, 4}},
		{name: "rides", tag: activity.TagAllRides, commutes: true, want: []int64{1, 3}},
		{name: "rides without commutes", tag: activity.TagAllRides, commutes: false, want: []int64{3}},
		{name: "foot sports", tag: activity.TagAllFootSports, commutes: true, want: []int64{2, 5}},
		{name: "leaf", tag: activity.Tag(activity.NordicSki), commutes: true, want: []int64{4}},
		{name: "unknown tag", tag: activity.Tag("Quidditch"), commutes: true, want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(ByActivityType(sample, tt.tag, tt.commutes)))
		})
	}
}

func TestByActivityTypeFastPathReturnsInput(t *testing.T) {
	got := ByActivityType(sample, activity.TagAll, true)
	require.Len(t, got, len(sample))
	assert.Same(t, &sample[0], &got[0])
}

func TestBySearch(t *testing.T) {
	assert.Equal(t, []int64{2}, ids(BySearch(sample, query.Compile("run AND park"))))
	assert.Equal(t, []int64{1, 3}, ids(BySearch(sample, query.Compile("GravelRide Morning"))))
	assert.Equal(t, []int64{4}, ids(BySearch(sample, query.Compile("2021-12"))))
	assert.Len(t, BySearch(sample, query.Compile("  ")), len(sample))
}

func TestByRetired(t *testing.T) {
	gears := []activity.Gear{
		{ID: "b1", Name: "Trek", Retired: false},
		{ID: "b2", Name: "Old Peugeot", Retired: true},
	}

	assert.Len(t, ByRetired(gears, true), 2)

	active := ByRetired(gears, false)
	require.Len(t, active, 1)
	assert.Equal(t, "b1", active[0].ID)
}
