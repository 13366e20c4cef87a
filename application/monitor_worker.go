package application

import (
	"context"
	"sync"
	"time"

	"gatewaymonitor/service"

	log "github.com/sirupsen/logrus"
)

// MonitorWorker fires the gateway monitor job on a fixed interval
type MonitorWorker struct {
	job      service.MonitorJob
	interval time.Duration
}

// NewMonitorWorker creates a new monitor worker
func NewMonitorWorker(job service.MonitorJob, interval time.Duration) *MonitorWorker {
	return &MonitorWorker{
		job:      job,
		interval: interval,
	}
}

// Start runs the job immediately and then on every tick until ctx is cancelled or the
// returned stop function is called. Stop waits for an in-flight run to finish.
func (w *MonitorWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})
	done := make(chan struct{})

	runOnce := func() {
		result, err := w.job.Run(ctx)
		if err != nil {
			log.WithError(err).Error("Gateway monitor run failed")
			return
		}
		log.WithFields(log.Fields{
			"status":   result.Status(),
			"count":    result.PendingCount,
			"duration": result.Duration,
		}).Debug("Gateway monitor run completed")
	}

	// Start the worker goroutine
	go func() {
		defer close(done)
		log.Infof("Gateway monitor worker started, running every %v", w.interval)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		runOnce()
		for {
			select {
			case <-ctx.Done():
				log.Info("Gateway monitor worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Gateway monitor worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stopChan) })
		<-done
	}
}
