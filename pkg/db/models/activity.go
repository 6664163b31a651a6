package models

import (
	"time"

	"github.com/mwantia/mystrava/pkg/activity"
)

// Activity is a stored activity. Distance is in kilometers, elevation in
// meters, speeds in km/h and times in seconds.
type Activity struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false"`
	Name        string `gorm:"type:text;not null"`
	Location    string `gorm:"type:text"`
	Description string `gorm:"type:text"`

	StartDate time.Time `gorm:"index;not null"`
	Date      time.Time `gorm:"not null"`

	SportType string `gorm:"type:text;index;not null"`
	GearID    string `gorm:"type:text;index"`
	Commute   bool   `gorm:"default:false"`

	Distance     float64
	Elevation    float64
	MovingTime   int
	ElapsedTime  int
	AverageSpeed float64

	MaxHeartrate      int
	AverageHeartrate  float64
	SufferScore       int
	PerceivedExertion float64
	Calories          float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ToRecord converts the stored activity into the record shown by the viewer.
func (a Activity) ToRecord() activity.Activity {
	return activity.Activity{
		ID:                a.ID,
		Name:              a.Name,
		Location:          a.Location,
		Description:       a.Description,
		Date:              a.Date,
		SportType:         activity.SportType(a.SportType),
		GearID:            a.GearID,
		Commute:           a.Commute,
		Distance:          a.Distance,
		Elevation:         a.Elevation,
		MovingTime:        activity.FormatClock(a.MovingTime),
		ElapsedTime:       activity.FormatClock(a.ElapsedTime),
		AverageSpeed:      a.AverageSpeed,
		MaxHeartrate:      a.MaxHeartrate,
		AverageHeartrate:  a.AverageHeartrate,
		SufferScore:       a.SufferScore,
		PerceivedExertion: a.PerceivedExertion,
		Calories:          a.Calories,
	}
}

// Records converts a list of stored activities, keeping the order.
func Records(activities []Activity) []activity.Activity {
	records := make([]activity.Activity, 0, len(activities))
	for _, a := range activities {
		records = append(records, a.ToRecord())
	}
	return records
}
