package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gatewaymonitor/config"
	"gatewaymonitor/events"
	"gatewaymonitor/infrastructure"
	"gatewaymonitor/infrastructure/observability"
	"gatewaymonitor/repository"
	"gatewaymonitor/service"

	log "github.com/sirupsen/logrus"
)

const eventStreamName = "GATEWAY_MONITOR_EVENTS"

// monitor is the job with its observers wired to the event bus
type monitor struct {
	job     service.MonitorJob
	closers []func(ctx context.Context) error
}

// buildMonitor wires the job and every configured observer. Observers that fail to
// connect are logged and left out; they never prevent the job from running.
func buildMonitor(ctx context.Context, cfg *config.Config) (*monitor, error) {
	m := &monitor{}

	if missing := cfg.MissingRequired(); len(missing) > 0 {
		log.WithField("missing", strings.Join(missing, ",")).
			Warn("Incomplete configuration. Runs are skipped until the missing values are set.")
	}

	eventBus := events.NewBus()

	// Metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		log.WithError(err).Warn("Metrics disabled")
	} else {
		metrics.Register(eventBus)
		m.closers = append(m.closers, metrics.Shutdown)
	}

	// NATS
	if cfg.NATSServers != "" {
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := natsClient.Connect(connectCtx)
		cancel()
		if err != nil {
			log.WithError(err).Warn("Event publishing to NATS disabled")
		} else {
			mapper := infrastructure.NewEventSubjectMapper(cfg.NATSSubjectPrefix, cfg.GatewayName)
			if err := natsClient.EnsureStream(eventStreamName, mapper.StreamSubjects()); err != nil {
				log.WithError(err).Warn("Failed to ensure NATS stream")
			}
			infrastructure.NewNATSEventPublisher(natsClient, mapper).Register(eventBus)
			m.closers = append(m.closers, func(context.Context) error { return natsClient.Close() })
		}
	}

	// Redis
	if cfg.RedisURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		store, err := infrastructure.NewRedisStatusStore(connectCtx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.WithError(err).Warn("Gateway health flag disabled")
		} else {
			store.Register(eventBus)
			m.closers = append(m.closers, func(context.Context) error { return store.Close() })
		}
	}

	// Discord
	if cfg.DiscordWebhookURL != "" {
		alerts, err := infrastructure.NewDiscordAlertPublisher(cfg.DiscordWebhookURL)
		if err != nil {
			log.WithError(err).Warn("Discord alerts disabled")
		} else {
			alerts.Register(eventBus)
		}
	}

	paymentRepo, err := repository.NewPaymentRepository(cfg.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	httpClient := service.NewHTTPClient(cfg.DeactivationTimeout)

	m.job = service.NewGatewayMonitorJob(
		service.SettingsFromConfig(cfg),
		repository.NewInstrumentedPaymentRepository(paymentRepo, cfg.DatabaseDriver, metrics),
		service.NewDeactivationClient(httpClient),
		eventBus,
	)

	return m, nil
}

// close releases observer resources in reverse order
func (m *monitor) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](ctx); err != nil {
			log.WithError(err).Warn("Error during shutdown")
		}
	}
}

func describeRun(err error) error {
	if err != nil {
		return fmt.Errorf("gateway monitor run failed: %w", err)
	}
	return nil
}
