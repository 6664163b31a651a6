package view

import (
	"github.com/mwantia/mystrava/pkg/activity"
	"github.com/mwantia/mystrava/pkg/aggregate"
	"github.com/mwantia/mystrava/pkg/query"
	"github.com/mwantia/mystrava/pkg/sortkey"
)

// Status messages shown after remote operations.
const (
	StatusInProgress        = "Update in progress..."
	StatusLoaded            = "Activities loaded."
	StatusActivitiesUpdated = "Activities successfully updated."
	StatusGearsUpdated      = "Gears successfully updated."
	StatusFirstSync         = "Gears and activities successfully updated."
	StatusActivityUpdated   = "Activity successfully updated."
	StatusActivityDeleted   = "Activity successfully deleted."
	StatusRebuilt           = "Activities list successfully rebuilt."
)

const (
	labelSpeed = "Speed"
	labelPace  = "Pace"
)

// Selection holds every user choice that shapes the visible list.
type Selection struct {
	ActivityType activity.Tag   `json:"activity_type" yaml:"activity_type"`
	WithCommutes bool           `json:"with_commutes" yaml:"with_commutes"`
	WithRetired  bool           `json:"with_retired" yaml:"with_retired"`
	StartDate    string         `json:"start_date" yaml:"start_date"`
	EndDate      string         `json:"end_date" yaml:"end_date"`
	Query        string         `json:"query" yaml:"query"`
	SortColumn   sortkey.Column `json:"sort" yaml:"sort"`
	Descending   bool           `json:"descending" yaml:"descending"`
}

// DefaultSelection shows every activity, commutes and retired gear included,
// newest first.
func DefaultSelection() Selection {
	return Selection{
		ActivityType: activity.TagAll,
		WithCommutes: true,
		WithRetired:  true,
		SortColumn:   sortkey.DefaultColumn,
		Descending:   true,
	}
}

// Status is the outcome of the last remote operation.
type Status struct {
	Message    string `json:"message"`
	InProgress bool   `json:"in_progress"`
	Loaded     bool   `json:"loaded"`
}

// State is the complete view model. It is owned by a Controller and only
// changed through its methods.
type State struct {
	selection Selection
	predicate *query.Predicate

	records []activity.Activity
	visible []activity.Activity
	totals  aggregate.Totals
	gears   []aggregate.GearRow

	profile string
	message string
	pending int
	loaded  bool
}

func newState() State {
	return State{
		selection: DefaultSelection(),
		predicate: query.Compile(""),
		records:   []activity.Activity{},
		visible:   []activity.Activity{},
		totals:    aggregate.ComputeTotals(nil),
		gears:     []aggregate.GearRow{},
	}
}

func (s *State) indexOf(id int64) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}
