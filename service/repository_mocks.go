package service

import (
	"context"
	"sync"

	"gatewaymonitor/events"
	"gatewaymonitor/models"

	"github.com/stretchr/testify/mock"
)

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) CountRecentPending(ctx context.Context, connString string, filter models.PendingFilter) (int, error) {
	args := m.Called(ctx, connString, filter)
	return args.Int(0), args.Error(1)
}

// MockDeactivator is a mock implementation of Deactivator
type MockDeactivator struct {
	mock.Mock
}

func (m *MockDeactivator) Deactivate(ctx context.Context, endpoint string) models.DeactivationResult {
	args := m.Called(ctx, endpoint)
	return args.Get(0).(models.DeactivationResult)
}

// RecordingEventPublisher keeps every published event in order
type RecordingEventPublisher struct {
	mu     sync.Mutex
	Events []events.Event
}

func (p *RecordingEventPublisher) Publish(ctx context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
}

// Types returns the types of the recorded events
func (p *RecordingEventPublisher) Types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.EventType, 0, len(p.Events))
	for _, e := range p.Events {
		types = append(types, e.Type())
	}
	return types
}
