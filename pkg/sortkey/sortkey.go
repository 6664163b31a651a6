// Package sortkey extracts comparable keys from activities for the sortable
// list columns.
package sortkey

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/mwantia/mystrava/pkg/activity"
)

// Column names a sortable column. Names match the JSON field names.
type Column string

const (
	Date              Column = "date"
	Name              Column = "name"
	Location          Column = "location"
	SportType         Column = "sport_type"
	GearName          Column = "gear_name"
	BikeType          Column = "bike_type"
	Description       Column = "description"
	Distance          Column = "distance"
	Elevation         Column = "elevation"
	MovingTime        Column = "moving_time"
	ElapsedTime       Column = "elapsed_time"
	AverageSpeed      Column = "average_speed"
	AveragePace       Column = "average_pace"
	MaxHeartrate      Column = "max_heartrate"
	AverageHeartrate  Column = "average_heartrate"
	SufferScore       Column = "suffer_score"
	PerceivedExertion Column = "perceived_exertion"
	Calories          Column = "calories"
)

// DefaultColumn is the initial ordering of the list, newest first.
const DefaultColumn = Date

type kind int

const (
	kindText kind = iota
	kindNumber
	kindDuration
	kindTime
)

// Key is the sort key of one activity for one column.
type Key struct {
	kind     kind
	text     string
	number   float64
	duration time.Duration
	time     time.Time
}

// Compare orders two keys extracted for the same column.
func (k Key) Compare(other Key) int {
	switch k.kind {
	case kindNumber:
		return cmp.Compare(k.number, other.number)
	case kindDuration:
		return cmp.Compare(k.duration, other.duration)
	case kindTime:
		return k.time.Compare(other.time)
	default:
		return strings.Compare(strings.ToLower(k.text), strings.ToLower(other.text))
	}
}

var extractors = map[Column]func(activity.Activity) Key{
	Date:              func(a activity.Activity) Key { return Key{kind: kindTime, time: a.Date} },
	Name:              func(a activity.Activity) Key { return text(a.Name) },
	Location:          func(a activity.Activity) Key { return text(a.Location) },
	SportType:         func(a activity.Activity) Key { return text(string(a.SportType)) },
	GearName:          func(a activity.Activity) Key { return text(a.GearName) },
	BikeType:          func(a activity.Activity) Key { return text(a.BikeType) },
	Description:       func(a activity.Activity) Key { return text(a.Description) },
	Distance:          func(a activity.Activity) Key { return number(a.Distance) },
	Elevation:         func(a activity.Activity) Key { return number(a.Elevation) },
	MovingTime:        func(a activity.Activity) Key { return clock(a.MovingTime) },
	ElapsedTime:       func(a activity.Activity) Key { return clock(a.ElapsedTime) },
	AverageSpeed:      func(a activity.Activity) Key { return number(a.AverageSpeed) },
	AveragePace:       pace,
	MaxHeartrate:      func(a activity.Activity) Key { return number(float64(a.MaxHeartrate)) },
	AverageHeartrate:  func(a activity.Activity) Key { return number(a.AverageHeartrate) },
	SufferScore:       func(a activity.Activity) Key { return number(float64(a.SufferScore)) },
	PerceivedExertion: func(a activity.Activity) Key { return number(a.PerceivedExertion) },
	Calories:          func(a activity.Activity) Key { return number(a.Calories) },
}

// Parse returns the column named s, if it is sortable.
func Parse(s string) (Column, bool) {
	c := Column(s)
	_, ok := extractors[c]
	return c, ok
}

// Columns returns every sortable column.
func Columns() []Column {
	columns := make([]Column, 0, len(extractors))
	for c := range extractors {
		columns = append(columns, c)
	}
	slices.Sort(columns)
	return columns
}

// For returns the key extractor of column. Unknown columns key every activity
// the same, which leaves a stable sort untouched.
func For(column Column) func(activity.Activity) Key {
	if fn, ok := extractors[column]; ok {
		return fn
	}
	return func(activity.Activity) Key { return Key{} }
}

// Sort orders items in place by column. Equal keys keep their relative order.
func Sort(items []activity.Activity, column Column, descending bool) {
	key := For(column)
	slices.SortStableFunc(items, func(a, b activity.Activity) int {
		c := key(a).Compare(key(b))
		if descending {
			return -c
		}
		return c
	})
}

func text(s string) Key {
	return Key{kind: kindText, text: s}
}

func number(f float64) Key {
	return Key{kind: kindNumber, number: f}
}

func clock(s string) Key {
	d, _ := activity.ParseClock(s)
	return Key{kind: kindDuration, duration: d}
}

func pace(a activity.Activity) Key {
	if a.AveragePace == nil {
		return Key{kind: kindDuration}
	}
	return Key{kind: kindDuration, duration: a.AveragePace.Duration()}
}
