package client

import (
	"fmt"

	"github.com/mwantia/mystrava/internal/agent"
	"github.com/spf13/cobra"
)

func NewSyncCommand() *cobra.Command {
	var (
		gearsOnly bool
		rebuild   bool
		refresh   int64
		remove    int64
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronise the local database with Strava",
		Long: `Synchronise the local database with Strava.

Without flags, new activities and the current gear are pulled; an empty
database gets its whole history. --activity refreshes one activity and
--delete removes one from the local database only.`,
		Args: cobra.NoArgs,
		RunE: withAgent(func(cmd *cobra.Command, a *agent.MyStravaAgent) error {
			ctx := cmd.Context()
			ctrl := a.Controller()
			if err := ctrl.Load(ctx); err != nil {
				return err
			}

			var err error
			switch {
			case remove != 0:
				err = ctrl.DeleteActivity(ctx, remove)
			case refresh != 0:
				err = ctrl.RefreshActivity(ctx, refresh)
			case rebuild:
				err = ctrl.Rebuild(ctx)
			case gearsOnly:
				err = ctrl.SyncGears(ctx)
			default:
				err = agent.Resync(ctx, ctrl)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%d activities)\n", ctrl.Status().Message, ctrl.Len())
			return err
		}),
	}

	cmd.Flags().BoolVar(&gearsOnly, "gears", false, "only synchronise the gear")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "pull the whole history again")
	cmd.Flags().Int64Var(&refresh, "activity", 0, "refresh the activity with this id")
	cmd.Flags().Int64Var(&remove, "delete", 0, "delete the activity with this id locally")
	cmd.MarkFlagsMutuallyExclusive("gears", "rebuild", "activity", "delete")

	return cmd
}
