package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func onceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single monitor invocation, for external schedulers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			m, err := buildMonitor(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer m.close()

			result, err := m.job.Run(cmd.Context())
			if err != nil {
				return describeRun(err)
			}

			fields := log.Fields{
				"status":   result.Status(),
				"healthy":  result.Healthy(),
				"count":    result.PendingCount,
				"duration": result.Duration,
			}
			if result.Deactivation != nil {
				fields["deactivation"] = result.Deactivation.String()
			}
			log.WithFields(fields).Info("Gateway monitor run completed")
			return nil
		},
	}
}
