package client

import (
	"strconv"

	"github.com/mwantia/mystrava/cmd/mystrava/cli/render"
	"github.com/mwantia/mystrava/internal/agent"
	"github.com/spf13/cobra"
)

func NewGearsCommand() *cobra.Command {
	var (
		retired bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "gears",
		Short: "List the gear with their distance and elevation totals",
		Args:  cobra.NoArgs,
		RunE: withAgent(func(cmd *cobra.Command, a *agent.MyStravaAgent) error {
			ctrl := a.Controller()
			if err := ctrl.Load(cmd.Context()); err != nil {
				return err
			}
			ctrl.SetRetired(retired)

			rows := ctrl.Gears()
			if asJSON {
				return render.JSON(cmd.OutOrStdout(), rows)
			}

			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				state := ""
				if r.Retired {
					state = "retired"
				}
				table = append(table, []string{
					r.Name,
					r.Type,
					strconv.FormatInt(r.Distance, 10),
					strconv.FormatFloat(r.Elevation, 'f', 0, 64),
					state,
				})
			}
			return render.Table(cmd.OutOrStdout(), []string{"Name", "Type", "Distance", "Elevation", ""}, table, noColor())
		}),
	}

	cmd.Flags().BoolVar(&retired, "retired", false, "include retired gear")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}
