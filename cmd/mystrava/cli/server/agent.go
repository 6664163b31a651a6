package server

import (
	"context"
	"fmt"

	"github.com/mwantia/mystrava/internal/agent"
	"github.com/spf13/cobra"

	config "github.com/mwantia/mystrava/internal/config/server"
)

func NewAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Start the MyStrava agent",
		Long: `Start the MyStrava agent.

The agent keeps the local database in step with Strava on the configured
schedule and serves the activity view as a JSON API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			return agent.NewAgent(cfg).Serve(context.Background())
		},
	}

	cmd.Flags().String("address", "", "address of the HTTP API (overrides http.address)")
	cmd.Flags().Bool("sync-on-start", false, "synchronise once right after starting")
	bindFlag(cmd, "http.address", "address")
	bindFlag(cmd, "sync.on_start", "sync-on-start")

	return cmd
}
