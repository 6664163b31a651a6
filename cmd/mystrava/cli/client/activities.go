package client

import (
	"fmt"
	"strconv"

	"github.com/mwantia/mystrava/cmd/mystrava/cli/render"
	"github.com/mwantia/mystrava/internal/agent"
	"github.com/mwantia/mystrava/pkg/activity"
	"github.com/mwantia/mystrava/pkg/aggregate"
	"github.com/mwantia/mystrava/pkg/sortkey"
	"github.com/mwantia/mystrava/pkg/view"
	"github.com/spf13/cobra"
)

const (
	exampleType  = "AllRides"
	exampleQuery = `"col du" AND galibier`

	activitiesLong = `List the stored activities, filtered, searched and sorted.

The query matches the name, location, sport type, date, gear and description
of an activity, ignoring case and accents. Space separated terms are OR'ed:
"alps vosges" finds either. "a AND b" requires both terms, in any order, and
'"a phrase"' must match as a whole.

The type is a sport type such as Run or Ride, or one of the groups All,
AllRides and AllFootSports.

Dates are YYYY, YYYY-MM or YYYY-MM-DD; a month or year end covers the whole
period.`

	activitiesExample = `  mystrava activities --type ` + exampleType + ` --from 2024 -q '` + exampleQuery + `'
  mystrava activities --sort distance --limit 10 --json`
)

type activitiesOutput struct {
	Activities  []activity.Activity `json:"activities"`
	Totals      aggregate.Totals    `json:"totals"`
	SpeedOrPace string              `json:"speed_or_pace"`
}

func NewActivitiesCommand() *cobra.Command {
	var (
		sportType  string
		noCommutes bool
		from       string
		to         string
		query      string
		column     string
		ascending  bool
		limit      int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:     "activities",
		Aliases: []string{"ls"},
		Short:   "List the stored activities",
		Long:    activitiesLong,
		Example: activitiesExample,
		Args: cobra.NoArgs,
		RunE: withAgent(func(cmd *cobra.Command, a *agent.MyStravaAgent) error {
			ctrl := a.Controller()
			if err := ctrl.Load(cmd.Context()); err != nil {
				return err
			}

			sel := view.DefaultSelection()
			sel.ActivityType = activity.ParseTag(sportType)
			sel.WithCommutes = !noCommutes
			sel.StartDate = from
			sel.EndDate = to
			sel.Query = query
			sel.SortColumn = sortkey.Column(column)
			sel.Descending = !ascending
			ctrl.Select(sel)

			visible := ctrl.Visible()
			if limit > 0 && len(visible) > limit {
				visible = visible[:limit]
			}

			out := activitiesOutput{
				Activities:  visible,
				Totals:      ctrl.Totals(),
				SpeedOrPace: ctrl.SpeedOrPace(),
			}
			if asJSON {
				return render.JSON(cmd.OutOrStdout(), out)
			}
			return printActivities(cmd, out)
		}),
	}

	cmd.Flags().StringVarP(&sportType, "type", "t", string(activity.TagAll), "sport type or group, e.g. Run, AllRides or AllFootSports")
	cmd.Flags().BoolVar(&noCommutes, "no-commutes", false, "exclude commutes")
	cmd.Flags().StringVar(&from, "from", "", "first date (YYYY, YYYY-MM or YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date (YYYY, YYYY-MM or YYYY-MM-DD)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search query")
	cmd.Flags().StringVarP(&column, "sort", "s", string(sortkey.DefaultColumn), "sort column")
	cmd.Flags().BoolVar(&ascending, "asc", false, "sort ascending")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many activities")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	_ = cmd.RegisterFlagCompletionFunc("type", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		var tags []string
		for _, t := range activity.Tags() {
			tags = append(tags, string(t))
		}
		return tags, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("sort", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		var columns []string
		for _, c := range sortkey.Columns() {
			columns = append(columns, string(c))
		}
		return columns, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func printActivities(cmd *cobra.Command, out activitiesOutput) error {
	paced := out.SpeedOrPace == "Pace"
	headers := []string{"Date", "Name", "Type", "Gear", "Distance", "Elevation", "Moving", out.SpeedOrPace, "HR"}

	rows := make([][]string, 0, len(out.Activities))
	for _, a := range out.Activities {
		speed := strconv.FormatFloat(a.AverageSpeed, 'f', 1, 64)
		if paced && a.AveragePace != nil {
			speed = a.AveragePace.String()
		}
		hr := ""
		if a.AverageHeartrate > 0 {
			hr = strconv.FormatFloat(a.AverageHeartrate, 'f', 0, 64)
		}

		gear := a.GearName
		if a.BikeType != "" {
			gear = fmt.Sprintf("%s (%s)", a.GearName, a.BikeType)
		}

		rows = append(rows, []string{
			a.DateString(),
			a.Name,
			string(a.SportType),
			gear,
			strconv.FormatFloat(a.Distance, 'f', 2, 64),
			strconv.FormatFloat(a.Elevation, 'f', 0, 64),
			a.MovingTime,
			speed,
			hr,
		})
	}

	if err := render.Table(cmd.OutOrStdout(), headers, rows, noColor()); err != nil {
		return err
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d activities, %s h, %s km, %.0f m\n",
		len(out.Activities), out.Totals.Duration, out.Totals.Distance, out.Totals.Elevation)
	return err
}
