package activity

import (
	"encoding/json"
	"time"
)

type activityAlias Activity

type activityJSON struct {
	activityAlias
	Date string `json:"date"`
}

// MarshalJSON writes the date as a plain calendar date.
func (a Activity) MarshalJSON() ([]byte, error) {
	return json.Marshal(activityJSON{activityAlias: activityAlias(a), Date: a.DateString()})
}

// UnmarshalJSON accepts the calendar date written by MarshalJSON.
func (a *Activity) UnmarshalJSON(data []byte) error {
	var raw activityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = Activity(raw.activityAlias)
	a.Date = time.Time{}
	if raw.Date != "" {
		date, err := time.Parse(DateLayout, raw.Date)
		if err != nil {
			return err
		}
		a.Date = date
	}
	return nil
}
