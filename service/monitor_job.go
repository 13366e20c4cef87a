package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gatewaymonitor/config"
	"gatewaymonitor/events"
	"gatewaymonitor/models"

	log "github.com/sirupsen/logrus"
)

// MonitorSettings are the values a monitor invocation works with
type MonitorSettings struct {
	Gateway              string
	ConnectionString     string
	DeactivationEndpoint string
	Threshold            int
	Filter               models.PendingFilter
}

// SettingsFromConfig extracts the monitor settings from the application config
func SettingsFromConfig(cfg *config.Config) MonitorSettings {
	return MonitorSettings{
		Gateway:              cfg.GatewayName,
		ConnectionString:     cfg.SQLConnectionString,
		DeactivationEndpoint: cfg.DeactivationEndpoint,
		Threshold:            cfg.PendingCountThreshold,
		Filter: models.PendingFilter{
			StatusCode:        cfg.PendingStatusCode,
			PaymentMethodCode: cfg.PaymentMethodCode,
			Window:            cfg.PendingWindow,
		},
	}
}

// complete reports whether both required values are present
func (s MonitorSettings) complete() bool {
	return strings.TrimSpace(s.ConnectionString) != "" && strings.TrimSpace(s.DeactivationEndpoint) != ""
}

// gatewayMonitorJob implements the MonitorJob interface
type gatewayMonitorJob struct {
	settings       MonitorSettings
	paymentRepo    PaymentRepository
	deactivator    Deactivator
	eventPublisher EventPublisher
	now            func() time.Time
}

// NewGatewayMonitorJob creates a new gateway monitor job. eventPublisher may be nil.
func NewGatewayMonitorJob(settings MonitorSettings, paymentRepo PaymentRepository, deactivator Deactivator, eventPublisher EventPublisher) MonitorJob {
	if eventPublisher == nil {
		eventPublisher = noopPublisher{}
	}
	return &gatewayMonitorJob{
		settings:       settings,
		paymentRepo:    paymentRepo,
		deactivator:    deactivator,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// Run counts recent pending payments and deactivates the gateway when the count exceeds
// the threshold. Only count query failures are returned as errors.
func (j *gatewayMonitorJob) Run(ctx context.Context) (models.RunResult, error) {
	start := j.now()
	logger := log.WithField("gateway", j.settings.Gateway)
	logger.WithField("executionTime", start.Format(time.RFC3339)).Info("Monitor trigger fired")

	result := models.RunResult{
		Gateway:   j.settings.Gateway,
		Threshold: j.settings.Threshold,
		StartedAt: start,
	}

	if !j.settings.complete() {
		logger.Warn("Incomplete configuration. Check SqlConnectionString and DeactivationEndpoint.")
		result.Skipped = true
		j.complete(ctx, &result)
		return result, nil
	}

	count, err := j.paymentRepo.CountRecentPending(ctx, j.settings.ConnectionString, j.settings.Filter)
	if err != nil {
		result.Duration = j.now().Sub(start)
		j.eventPublisher.Publish(ctx, events.RunFailedEvent{
			Gateway:  j.settings.Gateway,
			Error:    err.Error(),
			Duration: result.Duration,
		})
		return result, fmt.Errorf("failed to get pending count: %w", err)
	}
	result.PendingCount = count

	fields := log.Fields{"count": count, "threshold": j.settings.Threshold}
	if count <= j.settings.Threshold {
		logger.WithFields(fields).Info("Status normal. No action taken.")
		j.complete(ctx, &result)
		return result, nil
	}

	logger.WithFields(fields).Warn("Gateway failure detected. Starting deactivation.")
	result.DeactivationTriggered = true
	j.eventPublisher.Publish(ctx, events.FailureDetectedEvent{
		Gateway:      j.settings.Gateway,
		PendingCount: count,
		Threshold:    j.settings.Threshold,
		DetectedAt:   start,
	})

	deactivation := j.deactivator.Deactivate(ctx, j.settings.DeactivationEndpoint)
	result.Deactivation = &deactivation

	attempted := events.DeactivationAttemptedEvent{
		Gateway:    j.settings.Gateway,
		Endpoint:   deactivation.Endpoint,
		Outcome:    deactivation.Outcome,
		StatusCode: deactivation.StatusCode,
	}
	if deactivation.Err != nil {
		attempted.Error = deactivation.Err.Error()
	}
	j.eventPublisher.Publish(ctx, attempted)

	j.complete(ctx, &result)
	return result, nil
}

// complete stamps the duration and announces the finished run
func (j *gatewayMonitorJob) complete(ctx context.Context, result *models.RunResult) {
	result.Duration = j.now().Sub(result.StartedAt)
	j.eventPublisher.Publish(ctx, events.RunCompletedEvent{
		Gateway:               result.Gateway,
		Status:                result.Status(),
		PendingCount:          result.PendingCount,
		Threshold:             result.Threshold,
		DeactivationTriggered: result.DeactivationTriggered,
		Duration:              result.Duration,
	})
}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, event events.Event) {}
