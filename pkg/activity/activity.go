// Package activity holds the records shown by the viewer: activities, the
// gear they were done with, and the sport type taxonomy.
package activity

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used by records and date facets.
const DateLayout = "2006-01-02"

// Activity is one synchronised activity. Distance is in kilometers, Elevation
// in meters and AverageSpeed in km/h, the way they are stored locally.
type Activity struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Location          string    `json:"location"`
	Description       string    `json:"description"`
	Date              time.Time `json:"-"`
	SportType         SportType `json:"sport_type"`
	GearID            string    `json:"gear_id"`
	Commute           bool      `json:"commute"`
	Distance          float64   `json:"distance"`
	Elevation         float64   `json:"elevation"`
	MovingTime        string    `json:"moving_time"`
	ElapsedTime       string    `json:"elapsed_time"`
	AverageSpeed      float64   `json:"average_speed"`
	MaxHeartrate      int       `json:"max_heartrate,omitempty"`
	AverageHeartrate  float64   `json:"average_heartrate,omitempty"`
	SufferScore       int       `json:"suffer_score,omitempty"`
	PerceivedExertion float64   `json:"perceived_exertion,omitempty"`
	Calories          float64   `json:"calories,omitempty"`

	// Derived when the record is loaded, see the aggregate package.
	AveragePace *Pace  `json:"average_pace,omitempty"`
	GearName    string `json:"gear_name"`
	BikeType    string `json:"bike_type"`
}

// DateString returns the activity date as YYYY-MM-DD.
func (a Activity) DateString() string {
	if a.Date.IsZero() {
		return ""
	}
	return a.Date.Format(DateLayout)
}

// Projection is the text searched by queries: name, location, sport type,
// date, gear name and description joined by spaces.
func (a Activity) Projection() string {
	return strings.Join([]string{
		a.Name,
		a.Location,
		string(a.SportType),
		a.DateString(),
		a.GearName,
		a.Description,
	}, " ")
}

// Gear is a bike or a pair of shoes. Type is the bike frame type for bikes and
// "Run" for shoes.
type Gear struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Retired bool   `json:"retired"`
}

// Athlete is the connected account.
type Athlete struct {
	ID      int64  `json:"id"`
	Premium bool   `json:"premium"`
	Profile string `json:"profile"`
}

// IsRetired reports whether the gear is retired.
func (g Gear) IsRetired() bool {
	return g.Retired
}
