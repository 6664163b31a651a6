package aggregate

import (
	"fmt"
	"math"
	"strconv"

	"github.com/mwantia/mystrava/pkg/activity"
)

// Totals sums a list of activities for the list footer.
type Totals struct {
	Duration  string  `json:"duration"`
	Distance  string  `json:"distance"`
	Elevation float64 `json:"elevation"`
}

// ComputeTotals sums the moving time in whole hours, truncated, the distance
// with two decimals and the raw elevation of items. Malformed moving times
// count as zero.
func ComputeTotals(items []activity.Activity) Totals {
	var hours, distance, elevation float64
	for _, a := range items {
		distance += a.Distance
		elevation += a.Elevation
		if d, ok := activity.ParseClock(a.MovingTime); ok {
			hours += d.Hours()
		}
	}

	return Totals{
		Duration:  strconv.FormatInt(int64(math.Trunc(hours)), 10),
		Distance:  fmt.Sprintf("%.2f", distance),
		Elevation: elevation,
	}
}

// DerivePace sets the average pace of paced activities from their average
// speed and clears it for every other sport.
func DerivePace(items []activity.Activity) {
	for i := range items {
		if !items[i].SportType.Paced() {
			items[i].AveragePace = nil
			continue
		}
		pace := activity.PaceFromSpeed(items[i].AverageSpeed)
		items[i].AveragePace = &pace
	}
}
