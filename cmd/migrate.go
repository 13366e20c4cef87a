package cmd

import (
	"fmt"
	"strconv"

	"gatewaymonitor/config"
	"gatewaymonitor/database"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the local dbo.pagamento schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := migrationConfig()
			if err != nil {
				return err
			}
			return database.MigrateUp(cfg.DatabaseDriver, cfg.SQLConnectionString)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				var err error
				steps, err = strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid steps value: %s", args[0])
				}
			}

			cfg, err := migrationConfig()
			if err != nil {
				return err
			}
			return database.MigrateDown(cfg.DatabaseDriver, cfg.SQLConnectionString, steps)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := migrationConfig()
			if err != nil {
				return err
			}

			status, err := database.GetMigrationStatus(cfg.DatabaseDriver, cfg.SQLConnectionString)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !status.Applied {
				fmt.Fprintln(out, "No migrations have been applied yet")
				return nil
			}
			fmt.Fprintf(out, "Current migration version: %d\n", status.Version)
			if status.Dirty {
				fmt.Fprintln(out, "WARNING: Database is in dirty state!")
			}
			return nil
		},
	})

	return cmd
}

func migrationConfig() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.SQLConnectionString == "" {
		return nil, fmt.Errorf("SqlConnectionString is required for migrations")
	}
	return cfg, nil
}
