package sync

import (
	"math"
	"time"

	"github.com/mwantia/mystrava/pkg/db/models"
	"github.com/mwantia/mystrava/pkg/strava"
)

// toModel converts an upstream activity to the stored units: kilometers with
// two decimals, whole meters of elevation and km/h with one decimal.
func toModel(a strava.Activity) models.Activity {
	local := a.StartDateLocal
	if local.IsZero() {
		local = a.StartDate
	}

	return models.Activity{
		ID:                a.ID,
		Name:              a.Name,
		Location:          a.LocationCity,
		Description:       a.Description,
		StartDate:         a.StartDate.UTC(),
		Date:              time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
		SportType:         a.SportType,
		GearID:            a.GearID,
		Commute:           a.Commute,
		Distance:          round(a.Distance/1000, 2),
		Elevation:         math.Round(a.TotalElevationGain),
		MovingTime:        int(a.MovingTime),
		ElapsedTime:       int(a.ElapsedTime),
		AverageSpeed:      round(a.AverageSpeed*3.6, 1),
		MaxHeartrate:      int(math.Round(a.MaxHeartrate)),
		AverageHeartrate:  math.Round(a.AverageHeartrate),
		SufferScore:       int(a.SufferScore),
		PerceivedExertion: a.PerceivedExertion,
		Calories:          a.Calories,
	}
}

func toGearModel(g strava.Gear) models.Gear {
	kind := models.GearKindBike
	if g.Shoe {
		kind = models.GearKindShoe
	}
	return models.Gear{
		ID:      g.ID,
		Name:    g.Name,
		Kind:    kind,
		Type:    g.Type(),
		Retired: g.Retired,
	}
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
