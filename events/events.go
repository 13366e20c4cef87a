package events

import (
	"context"
	"sync"
	"time"

	"gatewaymonitor/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeFailureDetected       EventType = "failure_detected"
	EventTypeDeactivationAttempted EventType = "deactivation_attempted"
	EventTypeRunCompleted          EventType = "run_completed"
	EventTypeRunFailed             EventType = "run_failed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// FailureDetectedEvent is emitted when the pending count exceeds the threshold
type FailureDetectedEvent struct {
	Gateway      string    `json:"gateway"`
	PendingCount int       `json:"pending_count"`
	Threshold    int       `json:"threshold"`
	DetectedAt   time.Time `json:"detected_at"`
}

func (e FailureDetectedEvent) Type() EventType {
	return EventTypeFailureDetected
}

// DeactivationAttemptedEvent records the outcome of a deactivation call
type DeactivationAttemptedEvent struct {
	Gateway    string                     `json:"gateway"`
	Endpoint   string                     `json:"endpoint"`
	Outcome    models.DeactivationOutcome `json:"outcome"`
	StatusCode int                        `json:"status_code,omitempty"`
	Error      string                     `json:"error,omitempty"`
}

func (e DeactivationAttemptedEvent) Type() EventType {
	return EventTypeDeactivationAttempted
}

// Succeeded reports whether the endpoint accepted the deactivation
func (e DeactivationAttemptedEvent) Succeeded() bool {
	return e.Outcome == models.DeactivationSucceeded
}

// RunCompletedEvent summarizes an invocation that finished without error
type RunCompletedEvent struct {
	Gateway               string        `json:"gateway"`
	Status                string        `json:"status"`
	PendingCount          int           `json:"pending_count"`
	Threshold             int           `json:"threshold"`
	DeactivationTriggered bool          `json:"deactivation_triggered"`
	Duration              time.Duration `json:"duration_ns"`
}

func (e RunCompletedEvent) Type() EventType {
	return EventTypeRunCompleted
}

// RunFailedEvent is emitted when the count query fails
type RunFailedEvent struct {
	Gateway  string        `json:"gateway"`
	Error    string        `json:"error"`
	Duration time.Duration `json:"duration_ns"`
}

func (e RunFailedEvent) Type() EventType {
	return EventTypeRunFailed
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event) error

// Bus manages event subscriptions and dispatching. Handlers run synchronously in
// subscription order so an invocation's side effects are done when Publish returns.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for the given event types
func (b *Bus) Subscribe(handler Handler, eventTypes ...EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, eventType := range eventTypes {
		b.handlers[eventType] = append(b.handlers[eventType], handler)

		log.WithFields(log.Fields{
			"eventType":    eventType,
			"handlerCount": len(b.handlers[eventType]),
		}).Debug("Subscribed handler to event type")
	}
}

// Publish delivers an event to all registered handlers. Handler errors and panics are
// logged and never stop delivery to the remaining handlers.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Publishing event to handlers")

	for i, handler := range handlers {
		b.dispatch(ctx, handler, i, event)
	}
}

func (b *Bus) dispatch(ctx context.Context, h Handler, handlerIndex int, event Event) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"eventType":    event.Type(),
				"handlerIndex": handlerIndex,
				"panic":        r,
			}).Error("Event handler panicked")
		}
	}()

	if err := h(ctx, event); err != nil {
		log.WithFields(log.Fields{
			"eventType":    event.Type(),
			"handlerIndex": handlerIndex,
			"error":        err,
		}).Error("Event handler failed")
	}
}
