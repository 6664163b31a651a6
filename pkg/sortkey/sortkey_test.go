package sortkey

import (
	"testing"
	"time"

	"github.com/mwantia/mystrava/pkg/activity"
	"github.com/stretchr/testify/assert"
)

func order(items []activity.Activity) []int64 {
	out := make([]int64, 0, len(items))
	for _, a := range items {
		out = append(out, a.ID)
	}
	return out
}

func sample() []activity.Activity {
	return []activity.Activity{
		{ID: 1, Name: "b", MovingTime: "10:05", Distance: 9.5, Date: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Name: "A", MovingTime: "9:59", Distance: 120, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: 3, Name: "c", MovingTime: "0:45", Distance: 9.5, Date: time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
}

func TestSortDurationColumn(t *testing.T) {
	items := sample()
	Sort(items, MovingTime, false)
	// Lexically "10:05" < "9:59"; as durations it is the longest.
	assert.Equal(t, []int64{3, 2, 1}, order(items))

	Sort(items, MovingTime, true)
	assert.Equal(t, []int64{1, 2, 3}, order(items))
}

func TestSortNumericColumnIsStable(t *testing.T) {
	items := sample()
	Sort(items, Distance, false)
	assert.Equal(t, []int64{1, 3, 2}, order(items))
}

func TestSortTextColumnIgnoresCase(t *testing.T) {
	items := sample()
	Sort(items, Name, false)
	assert.Equal(t, []int64{2, 1, 3}, order(items))
}

func TestSortDateDescending(t *testing.T) {
	items := sample()
	Sort(items, DefaultColumn, true)
	assert.Equal(t, []int64{2, 1, 3}, order(items))
}

func TestSortPace(t *testing.T) {
	slow := activity.PaceFromSpeed(8)
	fast := activity.PaceFromSpeed(14)
	items := []activity.Activity{
		{ID: 1, AveragePace: &slow},
		{ID: 2},
		{ID: 3, AveragePace: &fast},
	}
	Sort(items, AveragePace, false)
	assert.Equal(t, []int64{2, 3, 1}, order(items))
}

func TestUnknownColumnKeepsOrder(t *testing.T) {
	_, ok := Parse("heartbeat")
	assert.False(t, ok)

	items := sample()
	Sort(items, Column("heartbeat"), true)
	assert.Equal(t, []int64{1, 2, 3}, order(items))
}

func TestParseKnownColumns(t *testing.T) {
	for _, c := range Columns() {
		parsed, ok := Parse(string(c))
		assert.True(t, ok, c)
		assert.Equal(t, c, parsed)
	}
	assert.Contains(t, Columns(), ElapsedTime)
}
