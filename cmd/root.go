package cmd

import (
	"context"
	"fmt"

	"gatewaymonitor/config"

	"github.com/spf13/cobra"
)

var configFile string

// NewRootCommand builds the gatewaymonitor command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gatewaymonitor",
		Short:         "Deactivates a payment gateway when pending payments pile up",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional YAML config file")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(onceCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(normalizeCmd())

	return rootCmd
}

// Execute runs the command selected by the process arguments
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// loadConfig reads the configuration and applies the logging settings
func loadConfig() (*config.Config, error) {
	v, err := config.NewViper(configFile)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.ConfigureLogging(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
