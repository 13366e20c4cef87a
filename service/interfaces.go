package service

import (
	"context"

	"gatewaymonitor/events"
	"gatewaymonitor/models"
)

// PaymentRepository defines the interface for counting pending payments
type PaymentRepository interface {
	// CountRecentPending opens a connection from connString, runs the count query and
	// releases the connection before returning
	CountRecentPending(ctx context.Context, connString string, filter models.PendingFilter) (int, error)
}

// Deactivator disables routing to a failing gateway. Failures are reported in the
// returned result, never as an error.
type Deactivator interface {
	Deactivate(ctx context.Context, endpoint string) models.DeactivationResult
}

// EventPublisher delivers monitor events to observers
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

// MonitorJob runs a single health check of the gateway
type MonitorJob interface {
	Run(ctx context.Context) (models.RunResult, error)
}
