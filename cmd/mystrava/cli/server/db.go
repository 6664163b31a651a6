package server

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mwantia/mystrava/cmd/mystrava/cli/render"
	"github.com/mwantia/mystrava/pkg/db/store"
	"github.com/mwantia/mystrava/pkg/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	config "github.com/mwantia/mystrava/internal/config/server"
)

func NewDatabaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the local database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, st *store.SQLiteStore) error {
			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rollback",
		Short: "Roll back the latest migration",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, st *store.SQLiteStore) error {
			if err := st.Rollback(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Rolled back the latest migration")
			return nil
		}),
	})

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, st *store.SQLiteStore) error {
			statuses, err := st.MigrationStatus(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return render.JSON(cmd.OutOrStdout(), statuses)
			}

			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				applied := "pending"
				if s.Applied {
					applied = time.Unix(s.AppliedAt, 0).Format(time.DateTime)
				}
				rows = append(rows, []string{strconv.Itoa(s.Version), s.Description, applied})
			}
			return render.Table(cmd.OutOrStdout(), []string{"Version", "Description", "Applied"}, rows, viper.GetBool("log.no_color"))
		}),
	}
	status.Flags().Bool("json", false, "print JSON instead of a table")
	cmd.AddCommand(status)

	return cmd
}

// withStore opens the configured store without migrating it.
func withStore(fn func(*cobra.Command, *store.SQLiteStore) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServerConfig()
		if err != nil {
			return fmt.Errorf("failed to load server configuration: %w", err)
		}

		logger := log.NewLoggerService("db", cfg.Log)
		st, err := store.NewSQLiteStore(store.SQLiteConfig{
			Path:   cfg.Metadata.SQLite.Path,
			Logger: log.NewGormLogger(logger, cfg.Log.Level),
		})
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Connect(cmd.Context()); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return fn(cmd, st)
	}
}
