package strava

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// frameTypes maps Strava bike frame types to the bike type shown in the list.
var frameTypes = map[int64]string{
	0: "",
	1: "MTB",
	2: "CX",
	3: "Road",
	4: "TT",
	5: "Gravel",
}

// Athlete is the authenticated athlete with the ids of their gear.
type Athlete struct {
	ID      int64
	Premium bool
	Profile string
	Bikes   []string
	Shoes   []string
}

// Gear is the detail of a bike or a pair of shoes.
type Gear struct {
	ID        string
	Name      string
	Retired   bool
	FrameType int64
	Shoe      bool
}

// Type returns the bike type of a bike, "Run" for shoes.
func (g Gear) Type() string {
	if g.Shoe {
		return "Run"
	}
	return frameTypes[g.FrameType]
}

// Activity holds the fields the viewer keeps, in Strava units: meters,
// seconds and meters per second.
type Activity struct {
	ID                 int64
	Name               string
	Description        string
	SportType          string
	StartDate          time.Time
	StartDateLocal     time.Time
	LocationCity       string
	GearID             string
	Commute            bool
	Distance           float64
	TotalElevationGain float64
	MovingTime         int64
	ElapsedTime        int64
	AverageSpeed       float64
	MaxHeartrate       float64
	AverageHeartrate   float64
	SufferScore        int64
	PerceivedExertion  float64
	Calories           float64
}

func (c *Client) Athlete(ctx context.Context) (Athlete, error) {
	body, err := c.get(ctx, "/athlete", nil)
	if err != nil {
		return Athlete{}, fmt.Errorf("failed to get athlete: %w", err)
	}

	athlete := Athlete{
		ID:      body.Get("id").Int(),
		Premium: body.Get("premium").Bool() || body.Get("summit").Bool(),
		Profile: body.Get("profile").String(),
	}
	for _, id := range body.Get("bikes.#.id").Array() {
		athlete.Bikes = append(athlete.Bikes, id.String())
	}
	for _, id := range body.Get("shoes.#.id").Array() {
		athlete.Shoes = append(athlete.Shoes, id.String())
	}
	return athlete, nil
}

func (c *Client) Gear(ctx context.Context, id string) (Gear, error) {
	body, err := c.get(ctx, "/gear/"+url.PathEscape(id), nil)
	if err != nil {
		return Gear{}, fmt.Errorf("failed to get gear %s: %w", id, err)
	}

	return Gear{
		ID:        body.Get("id").String(),
		Name:      body.Get("name").String(),
		Retired:   body.Get("retired").Bool(),
		FrameType: body.Get("frame_type").Int(),
		Shoe:      !body.Get("frame_type").Exists(),
	}, nil
}

// Activities returns one page of the athlete's activities started after after,
// oldest first. Pages start at 1.
func (c *Client) Activities(ctx context.Context, after time.Time, page int) ([]Activity, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(c.cfg.PerPage))
	if !after.IsZero() {
		query.Set("after", strconv.FormatInt(after.Unix(), 10))
	}

	body, err := c.get(ctx, "/athlete/activities", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	if !body.IsArray() {
		return nil, fmt.Errorf("failed to list activities: unexpected response")
	}

	var activities []Activity
	body.ForEach(func(_, value gjson.Result) bool {
		activities = append(activities, parseActivity(value))
		return true
	})
	return activities, nil
}

// AllActivities walks every page of activities started after after. A zero
// after lists the whole history.
func (c *Client) AllActivities(ctx context.Context, after time.Time) ([]Activity, error) {
	var all []Activity
	for page := 1; ; page++ {
		activities, err := c.Activities(ctx, after, page)
		if err != nil {
			return all, err
		}
		all = append(all, activities...)
		if len(activities) < c.cfg.PerPage {
			return all, nil
		}
	}
}

// Activity returns the detailed representation of one activity, which adds the
// description and the calories to the summary fields.
func (c *Client) Activity(ctx context.Context, id int64) (Activity, error) {
	body, err := c.get(ctx, "/activities/"+strconv.FormatInt(id, 10), url.Values{"include_all_efforts": {"false"}})
	if err != nil {
		return Activity{}, fmt.Errorf("failed to get activity %d: %w", id, err)
	}
	return parseActivity(body), nil
}

func parseActivity(v gjson.Result) Activity {
	sportType := v.Get("sport_type").String()
	if sportType == "" {
		sportType = v.Get("type").String()
	}

	return Activity{
		ID:                 v.Get("id").Int(),
		Name:               v.Get("name").String(),
		Description:        v.Get("description").String(),
		SportType:          sportType,
		StartDate:          parseTime(v.Get("start_date").String()),
		StartDateLocal:     parseTime(v.Get("start_date_local").String()),
		LocationCity:       v.Get("location_city").String(),
		GearID:             v.Get("gear_id").String(),
		Commute:            v.Get("commute").Bool(),
		Distance:           v.Get("distance").Float(),
		TotalElevationGain: v.Get("total_elevation_gain").Float(),
		MovingTime:         v.Get("moving_time").Int(),
		ElapsedTime:        v.Get("elapsed_time").Int(),
		AverageSpeed:       v.Get("average_speed").Float(),
		MaxHeartrate:       v.Get("max_heartrate").Float(),
		AverageHeartrate:   v.Get("average_heartrate").Float(),
		SufferScore:        v.Get("suffer_score").Int(),
		PerceivedExertion:  v.Get("perceived_exertion").Float(),
		Calories:           v.Get("calories").Float(),
	}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
