package models

import (
	"time"

	"github.com/mwantia/mystrava/pkg/activity"
)

const (
	GearKindBike = "bike"
	GearKindShoe = "shoe"
)

// Gear is a bike or a pair of shoes of the athlete.
type Gear struct {
	ID      string `gorm:"primaryKey;type:text"`
	Name    string `gorm:"type:text;not null"`
	Kind    string `gorm:"type:text;not null"`
	Type    string `gorm:"type:text"`
	Retired bool   `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (g Gear) ToRecord() activity.Gear {
	return activity.Gear{
		ID:      g.ID,
		Name:    g.Name,
		Type:    g.Type,
		Retired: g.Retired,
	}
}

func GearRecords(gears []Gear) []activity.Gear {
	records := make([]activity.Gear, 0, len(gears))
	for _, g := range gears {
		records = append(records, g.ToRecord())
	}
	return records
}
