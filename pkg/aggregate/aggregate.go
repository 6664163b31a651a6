// Package aggregate maintains the running distance and elevation totals per
// gear and derives the per-activity fields shown next to the raw records.
package aggregate

import (
	"math"

	"github.com/mwantia/mystrava/pkg/activity"
)

// GearRow is one gear line of the gear table.
type GearRow struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"activity_type"`
	Distance  int64   `json:"distance"`
	Elevation float64 `json:"elevation"`
	Retired   bool    `json:"retired"`
}

// IsRetired reports whether the row belongs to retired gear.
func (r GearRow) IsRetired() bool {
	return r.Retired
}

// GearTotals is the accumulated usage of one gear.
type GearTotals struct {
	Distance  float64 `json:"distance"`
	Elevation float64 `json:"elevation"`
}

type accumulator struct {
	gear activity.Gear
	GearTotals
}

// Aggregator keeps one accumulator per known gear. It is not safe for
// concurrent use.
type Aggregator struct {
	order []string
	gears map[string]*accumulator
}

func New() *Aggregator {
	return &Aggregator{
		gears: make(map[string]*accumulator),
	}
}

// Seed replaces the known gear with gears, every total starting at zero.
func (a *Aggregator) Seed(gears []activity.Gear) {
	a.order = make([]string, 0, len(gears))
	a.gears = make(map[string]*accumulator, len(gears))

	for _, g := range gears {
		if _, exists := a.gears[g.ID]; exists {
			continue
		}
		a.order = append(a.order, g.ID)
		a.gears[g.ID] = &accumulator{gear: g}
	}
}

// ApplyDelta adds the usage of added and subtracts the usage of removed.
// Activities done with unknown gear are ignored. An update is the removal of
// the previous version together with the addition of the new one.
func (a *Aggregator) ApplyDelta(added, removed []activity.Activity) {
	for _, act := range added {
		if acc, ok := a.gears[act.GearID]; ok {
			acc.Distance += act.Distance
			acc.Elevation += act.Elevation
		}
	}
	for _, act := range removed {
		if acc, ok := a.gears[act.GearID]; ok {
			acc.Distance -= act.Distance
			acc.Elevation -= act.Elevation
		}
	}
}

// Materialize returns the gear rows in seed order. Distances are rounded to
// whole kilometers, elevations are not.
func (a *Aggregator) Materialize() []GearRow {
	rows := make([]GearRow, 0, len(a.order))
	for _, id := range a.order {
		acc := a.gears[id]
		rows = append(rows, GearRow{
			ID:        acc.gear.ID,
			Name:      acc.gear.Name,
			Type:      acc.gear.Type,
			Distance:  int64(math.Round(acc.Distance)),
			Elevation: acc.Elevation,
			Retired:   acc.gear.Retired,
		})
	}
	return rows
}

// Totals returns the unrounded totals of gear id.
func (a *Aggregator) Totals(id string) (GearTotals, bool) {
	acc, ok := a.gears[id]
	if !ok {
		return GearTotals{}, false
	}
	return acc.GearTotals, true
}

// Gear returns the seeded gear with the given id.
func (a *Aggregator) Gear(id string) (activity.Gear, bool) {
	acc, ok := a.gears[id]
	if !ok {
		return activity.Gear{}, false
	}
	return acc.gear, true
}

// Annotate sets the gear name of every activity and, for rides, the bike type.
// Activities with unknown gear get empty values.
func (a *Aggregator) Annotate(items []activity.Activity) {
	for i := range items {
		items[i].GearName = ""
		items[i].BikeType = ""

		acc, ok := a.gears[items[i].GearID]
		if !ok {
			continue
		}
		items[i].GearName = acc.gear.Name
		if items[i].SportType.IsRide() {
			items[i].BikeType = acc.gear.Type
		}
	}
}
