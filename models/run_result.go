package models

import (
	"time"
)

// RunResult is the outcome of a single monitor invocation
type RunResult struct {
	Gateway               string
	PendingCount          int
	Threshold             int
	DeactivationTriggered bool
	Skipped               bool // required configuration was missing
	Deactivation          *DeactivationResult
	StartedAt             time.Time
	Duration              time.Duration
}

// Healthy reports whether the run saw the gateway within its threshold
func (r RunResult) Healthy() bool {
	return !r.Skipped && !r.DeactivationTriggered
}

// Status returns a short label for logs and metrics
func (r RunResult) Status() string {
	switch {
	case r.Skipped:
		return RunStatusSkipped
	case r.DeactivationTriggered:
		return RunStatusFailureDetected
	default:
		return RunStatusNormal
	}
}

// Run status labels
const (
	RunStatusSkipped         = "skipped"
	RunStatusNormal          = "normal"
	RunStatusFailureDetected = "failure_detected"
	RunStatusError           = "error"
)
