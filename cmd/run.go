package cmd

import (
	"context"

	"gatewaymonitor/application"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the monitor on its interval until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context())
		},
	}
}

// Run starts the monitor worker and blocks until ctx is cancelled
func Run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"gateway":     cfg.GatewayName,
		"driver":      cfg.DatabaseDriver,
		"interval":    cfg.MonitorInterval,
		"threshold":   cfg.PendingCountThreshold,
		"environment": cfg.Environment,
	}).Info("Starting gateway monitor...")

	m, err := buildMonitor(ctx, cfg)
	if err != nil {
		return err
	}
	defer m.close()

	worker := application.NewMonitorWorker(m.job, cfg.MonitorInterval)
	stop := worker.Start(ctx)

	// Wait for context cancellation
	<-ctx.Done()

	log.Info("Shutting down gateway monitor...")
	stop()
	log.Info("Shutdown completed")

	return nil
}
