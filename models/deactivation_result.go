package models

import (
	"fmt"
)

// DeactivationOutcome classifies a deactivation call
type DeactivationOutcome string

const (
	DeactivationSucceeded      DeactivationOutcome = "succeeded"
	DeactivationFailedStatus   DeactivationOutcome = "failed_status"
	DeactivationTransportError DeactivationOutcome = "transport_error"
)

// DeactivationResult records what happened when the deactivation endpoint was called.
// It is logged and observed, never returned as an error.
type DeactivationResult struct {
	Endpoint   string
	Outcome    DeactivationOutcome
	StatusCode int   // set for succeeded and failed_status
	Err        error // set for transport_error
}

// Succeeded reports whether the endpoint answered with a 2xx status
func (r DeactivationResult) Succeeded() bool {
	return r.Outcome == DeactivationSucceeded
}

func (r DeactivationResult) String() string {
	switch r.Outcome {
	case DeactivationSucceeded, DeactivationFailedStatus:
		return fmt.Sprintf("%s (status %d)", r.Outcome, r.StatusCode)
	default:
		return fmt.Sprintf("%s: %v", r.Outcome, r.Err)
	}
}
