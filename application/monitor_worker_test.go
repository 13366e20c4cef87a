package application

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"gatewaymonitor/models"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Run(ctx context.Context) (models.RunResult, error) {
	j.runs.Add(1)
	return models.RunResult{Gateway: "getnet"}, j.err
}

func TestMonitorWorker_RunsImmediatelyAndOnTick(t *testing.T) {
	job := &countingJob{}
	worker := NewMonitorWorker(job, 10*time.Millisecond)

	stop := worker.Start(context.Background())

	assert.Eventually(t, func() bool { return job.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	stop()

	runs := job.runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, runs, job.runs.Load(), "no runs after stop")
}

func TestMonitorWorker_FirstRunDoesNotWaitForTick(t *testing.T) {
	job := &countingJob{}
	worker := NewMonitorWorker(job, time.Hour)

	stop := worker.Start(context.Background())
	defer stop()

	assert.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestMonitorWorker_StopsOnContextCancel(t *testing.T) {
	job := &countingJob{}
	worker := NewMonitorWorker(job, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	stop := worker.Start(ctx)

	assert.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	stopped := make(chan struct{})
	go func() {
		stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancel")
	}

	// Stop is safe to call twice
	stop()
}

func TestMonitorWorker_LogsFailedRunsAndKeepsTicking(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	job := &countingJob{err: errors.New("failed to get pending count: login failed")}
	worker := NewMonitorWorker(job, 10*time.Millisecond)

	stop := worker.Start(context.Background())
	assert.Eventually(t, func() bool { return job.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	stop()

	var failed bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel && entry.Message == "Gateway monitor run failed" {
			failed = true
		}
	}
	assert.True(t, failed)
}
