package repository

import (
	"context"
	"time"

	"gatewaymonitor/models"
)

// QueryRecorder receives the duration and result of each count query
type QueryRecorder interface {
	RecordDatabaseQuery(driver string, err error, duration time.Duration)
}

// InstrumentedPaymentRepository times the queries of another repository
type InstrumentedPaymentRepository struct {
	inner    PaymentRepository
	driver   string
	recorder QueryRecorder
}

// NewInstrumentedPaymentRepository wraps inner so every query is reported to recorder
func NewInstrumentedPaymentRepository(inner PaymentRepository, driver string, recorder QueryRecorder) *InstrumentedPaymentRepository {
	return &InstrumentedPaymentRepository{
		inner:    inner,
		driver:   driver,
		recorder: recorder,
	}
}

func (r *InstrumentedPaymentRepository) CountRecentPending(ctx context.Context, connString string, filter models.PendingFilter) (int, error) {
	start := time.Now()
	count, err := r.inner.CountRecentPending(ctx, connString, filter)
	r.recorder.RecordDatabaseQuery(r.driver, err, time.Since(start))
	return count, err
}
