package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gatewaymonitor/config"
	"gatewaymonitor/events"
	"gatewaymonitor/models"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// MetricsProvider manages OpenTelemetry metrics for the gateway monitor
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	// Metric instruments
	runsCounter               metric.Int64Counter
	runDurationHist           metric.Float64Histogram
	pendingCountGauge         metric.Int64Gauge
	failuresCounter           metric.Int64Counter
	deactivationsCounter      metric.Int64Counter
	databaseQueriesCounter    metric.Int64Counter
	databaseQueryDurationHist metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Info("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	// Create appropriate exporter based on config
	var exporter sdkmetric.Exporter
	var err error
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
	if err := mp.initializeWithReader(reader); err != nil {
		return err
	}

	// Set as global meter provider
	otel.SetMeterProvider(mp.meterProvider)

	log.Info("Metrics provider initialized successfully")
	return nil
}

// initializeWithReader builds the meter provider around reader. Callers hold mp.mu.
func (mp *MetricsProvider) initializeWithReader(reader sdkmetric.Reader) error {
	// Create resource with service information
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter("gatewaymonitor")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	// Monitor metrics
	mp.runsCounter, err = mp.meter.Int64Counter(
		RunsTotal,
		metric.WithDescription("Total number of monitor runs by status"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create runs counter: %w", err)
	}

	mp.runDurationHist, err = mp.meter.Float64Histogram(
		RunDuration,
		metric.WithDescription("Duration of monitor runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 100.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create run duration histogram: %w", err)
	}

	mp.pendingCountGauge, err = mp.meter.Int64Gauge(
		PendingCount,
		metric.WithDescription("Pending payments seen by the last run"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create pending count gauge: %w", err)
	}

	mp.failuresCounter, err = mp.meter.Int64Counter(
		FailuresDetected,
		metric.WithDescription("Total number of gateway failures detected"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create failures counter: %w", err)
	}

	// Deactivation metrics
	mp.deactivationsCounter, err = mp.meter.Int64Counter(
		DeactivationsTotal,
		metric.WithDescription("Total number of deactivation calls by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create deactivations counter: %w", err)
	}

	// Database metrics
	mp.databaseQueriesCounter, err = mp.meter.Int64Counter(
		DatabaseQueriesTotal,
		metric.WithDescription("Total number of pending count queries"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create database queries counter: %w", err)
	}

	mp.databaseQueryDurationHist, err = mp.meter.Float64Histogram(
		DatabaseQueryDuration,
		metric.WithDescription("Duration of pending count queries in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create database query duration histogram: %w", err)
	}

	return nil
}

// Shutdown flushes and shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// Register subscribes the provider to monitor events
func (mp *MetricsProvider) Register(bus *events.Bus) {
	bus.Subscribe(mp.Handle,
		events.EventTypeFailureDetected,
		events.EventTypeDeactivationAttempted,
		events.EventTypeRunCompleted,
		events.EventTypeRunFailed,
	)
}

// Handle records the metrics carried by a monitor event
func (mp *MetricsProvider) Handle(ctx context.Context, event events.Event) error {
	if !mp.isEnabled() {
		return nil
	}

	switch e := event.(type) {
	case events.RunCompletedEvent:
		mp.recordRun(ctx, e.Gateway, e.Status, e.Duration)
		if e.Status != models.RunStatusSkipped {
			mp.pendingCountGauge.Record(ctx, int64(e.PendingCount),
				metric.WithAttributes(attribute.String(LabelGateway, e.Gateway)),
			)
		}

	case events.RunFailedEvent:
		mp.recordRun(ctx, e.Gateway, models.RunStatusError, e.Duration)

	case events.FailureDetectedEvent:
		mp.failuresCounter.Add(ctx, 1,
			metric.WithAttributes(attribute.String(LabelGateway, e.Gateway)),
		)

	case events.DeactivationAttemptedEvent:
		mp.deactivationsCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String(LabelGateway, e.Gateway),
				attribute.String(LabelOutcome, string(e.Outcome)),
			),
		)
	}

	return nil
}

func (mp *MetricsProvider) recordRun(ctx context.Context, gateway, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(LabelGateway, gateway),
		attribute.String(LabelStatus, status),
	)
	mp.runsCounter.Add(ctx, 1, attrs)
	mp.runDurationHist.Record(ctx, duration.Seconds(), attrs)
}

// RecordDatabaseQuery records a pending count query with duration
func (mp *MetricsProvider) RecordDatabaseQuery(driver string, err error, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	result := QueryResultOK
	if err != nil {
		result = QueryResultError
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelDriver, driver),
		attribute.String(LabelResult, result),
	)

	mp.databaseQueriesCounter.Add(context.Background(), 1, attrs)
	mp.databaseQueryDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}
