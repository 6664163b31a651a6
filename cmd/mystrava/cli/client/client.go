package client

import (
	"errors"
	"fmt"

	"github.com/mwantia/mystrava/internal/agent"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	config "github.com/mwantia/mystrava/internal/config/server"
)

// withAgent sets up the services for a one-shot command and shuts them down
// afterwards. Logging is limited to warnings unless --log-level is given, so
// it does not mix with the command output.
func withAgent(fn func(*cobra.Command, *agent.MyStravaAgent) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := config.LoadServerConfig()
		if err != nil {
			return fmt.Errorf("failed to load server configuration: %w", err)
		}
		if !cmd.Flags().Changed("log-level") {
			cfg.Log.Level = "WARN"
		}

		a := agent.NewAgent(cfg)
		defer func() {
			err = errors.Join(err, a.Shutdown())
		}()

		if err := a.Setup(cmd.Context()); err != nil {
			return err
		}
		return fn(cmd, a)
	}
}

func noColor() bool {
	return viper.GetBool("log.no_color")
}
