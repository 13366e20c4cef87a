package models

import "time"

// PendingFilter selects the payment rows counted as recent pending payments
type PendingFilter struct {
	StatusCode        int
	PaymentMethodCode int
	Window            time.Duration
}
