package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Defaults applied when a key is absent
const (
	DefaultDatabaseDriver        = DriverSQLServer
	DefaultPendingCountThreshold = 10
	DefaultPaymentMethodCode     = 6
	DefaultPendingStatusCode     = 0
	DefaultPendingWindow         = 10 * time.Minute
	DefaultMonitorInterval       = 2 * time.Minute
	DefaultDeactivationTimeout   = 100 * time.Second
	DefaultGatewayName           = "getnet"
)

// Supported payment store drivers
const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
)

// Config holds all application configuration
type Config struct {
	// Monitor configuration
	SQLConnectionString   string
	DeactivationEndpoint  string
	PendingCountThreshold int
	DatabaseDriver        string
	PaymentMethodCode     int
	PendingStatusCode     int
	PendingWindow         time.Duration
	MonitorInterval       time.Duration
	DeactivationTimeout   time.Duration
	GatewayName           string

	// NATS configuration
	NATSServers       string // NATS server addresses (comma-separated), empty disables publishing
	NATSSubjectPrefix string

	// Redis configuration
	RedisURL string // empty disables the gateway health flag

	// Discord configuration
	DiscordWebhookURL string // empty disables alerts

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Environment
	Environment string // "development" or "production"
}

// envBindings maps each key to the environment variables it can be read from.
// The PascalCase names are the ones the function host historically used.
var envBindings = map[string][]string{
	"sql_connection_string":       {"SQL_CONNECTION_STRING", "SqlConnectionString"},
	"deactivation_endpoint":       {"DEACTIVATION_ENDPOINT", "DeactivationEndpoint"},
	"pending_count_threshold":     {"PENDING_COUNT_THRESHOLD", "PendingCountThreshold"},
	"database_driver":             {"DATABASE_DRIVER"},
	"payment_method_code":         {"PAYMENT_METHOD_CODE"},
	"pending_status_code":         {"PENDING_STATUS_CODE"},
	"pending_window":              {"PENDING_WINDOW"},
	"monitor_interval":            {"MONITOR_INTERVAL"},
	"deactivation_timeout":        {"DEACTIVATION_TIMEOUT"},
	"gateway_name":                {"GATEWAY_NAME"},
	"nats_servers":                {"NATS_SERVERS"},
	"nats_subject_prefix":         {"NATS_SUBJECT_PREFIX"},
	"redis_url":                   {"REDIS_URL"},
	"discord_webhook_url":         {"DISCORD_WEBHOOK_URL"},
	"otel_enabled":                {"OTEL_ENABLED"},
	"otel_service_name":           {"OTEL_SERVICE_NAME"},
	"otel_exporter_type":          {"OTEL_EXPORTER_TYPE"},
	"otel_otlp_endpoint":          {"OTEL_OTLP_ENDPOINT"},
	"otel_export_interval_millis": {"OTEL_EXPORT_INTERVAL_MILLIS"},
	"log_level":                   {"LOG_LEVEL"},
	"log_format":                  {"LOG_FORMAT"},
	"environment":                 {"ENVIRONMENT"},
}

// NewViper returns a viper instance with defaults and environment bindings registered.
// configFile is optional; when set it is read as the lowest-precedence source after defaults.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_driver", DefaultDatabaseDriver)
	v.SetDefault("payment_method_code", DefaultPaymentMethodCode)
	v.SetDefault("pending_status_code", DefaultPendingStatusCode)
	v.SetDefault("pending_window", DefaultPendingWindow)
	v.SetDefault("monitor_interval", DefaultMonitorInterval)
	v.SetDefault("deactivation_timeout", DefaultDeactivationTimeout)
	v.SetDefault("gateway_name", DefaultGatewayName)
	v.SetDefault("nats_subject_prefix", "gateway")
	v.SetDefault("otel_enabled", false)
	v.SetDefault("otel_service_name", "gatewaymonitor")
	v.SetDefault("otel_exporter_type", "console")
	v.SetDefault("otel_otlp_endpoint", "localhost:4317")
	v.SetDefault("otel_export_interval_millis", 60000)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("environment", "development")
}

// Load builds the typed configuration from v. Missing required monitor values are not an
// error here: the job skips invocations until they are provided.
func Load(v *viper.Viper) (*Config, error) {
	config := &Config{
		// Monitor
		SQLConnectionString:  v.GetString("sql_connection_string"),
		DeactivationEndpoint: v.GetString("deactivation_endpoint"),
		DatabaseDriver:       strings.ToLower(strings.TrimSpace(v.GetString("database_driver"))),
		PaymentMethodCode:    v.GetInt("payment_method_code"),
		PendingStatusCode:    v.GetInt("pending_status_code"),
		PendingWindow:        v.GetDuration("pending_window"),
		MonitorInterval:      v.GetDuration("monitor_interval"),
		DeactivationTimeout:  v.GetDuration("deactivation_timeout"),
		GatewayName:          strings.TrimSpace(v.GetString("gateway_name")),

		// NATS
		NATSServers:       strings.TrimSpace(v.GetString("nats_servers")),
		NATSSubjectPrefix: strings.TrimSpace(v.GetString("nats_subject_prefix")),

		// Redis
		RedisURL: strings.TrimSpace(v.GetString("redis_url")),

		// Discord
		DiscordWebhookURL: strings.TrimSpace(v.GetString("discord_webhook_url")),

		// OpenTelemetry
		OTelEnabled:              v.GetBool("otel_enabled"),
		OTelServiceName:          v.GetString("otel_service_name"),
		OTelExporterType:         strings.ToLower(strings.TrimSpace(v.GetString("otel_exporter_type"))),
		OTelOTLPEndpoint:         v.GetString("otel_otlp_endpoint"),
		OTelExportIntervalMillis: v.GetInt("otel_export_interval_millis"),

		// Logging
		LogLevel:  v.GetString("log_level"),
		LogFormat: strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),

		// Environment
		Environment: v.GetString("environment"),
	}

	threshold, err := ParseThreshold(v.GetString("pending_count_threshold"))
	if err != nil {
		log.WithError(err).Warnf("Invalid PendingCountThreshold, using default %d", DefaultPendingCountThreshold)
	}
	config.PendingCountThreshold = threshold

	if err := config.validateOptional(); err != nil {
		return nil, err
	}

	return config, nil
}

// ParseThreshold parses the pending-count threshold. Absent values yield the default with no
// error; invalid values yield the default together with the parse error.
func ParseThreshold(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultPendingCountThreshold, nil
	}
	threshold, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultPendingCountThreshold, fmt.Errorf("threshold %q is not an integer: %w", raw, err)
	}
	return threshold, nil
}

// MissingRequired returns the names of required monitor settings that are blank
func (c *Config) MissingRequired() []string {
	var missing []string
	if strings.TrimSpace(c.SQLConnectionString) == "" {
		missing = append(missing, "SqlConnectionString")
	}
	if strings.TrimSpace(c.DeactivationEndpoint) == "" {
		missing = append(missing, "DeactivationEndpoint")
	}
	return missing
}

// validateOptional rejects settings that would make the process misbehave no matter
// which monitor values are supplied later.
func (c *Config) validateOptional() error {
	switch c.DatabaseDriver {
	case DriverSQLServer, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.OTelExporterType {
	case "console", "otlp", "none":
	default:
		return fmt.Errorf("unsupported OTEL_EXPORTER_TYPE %q", c.OTelExporterType)
	}

	if c.MonitorInterval <= 0 {
		return fmt.Errorf("MONITOR_INTERVAL must be positive, got %s", c.MonitorInterval)
	}
	if c.PendingWindow <= 0 {
		return fmt.Errorf("PENDING_WINDOW must be positive, got %s", c.PendingWindow)
	}
	if c.GatewayName == "" {
		return fmt.Errorf("GATEWAY_NAME cannot be empty")
	}

	return nil
}

// Test helpers - only use in tests

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		SQLConnectionString:   "Server=localhost,1433;Database=payments",
		DeactivationEndpoint:  "http://localhost/deactivate",
		PendingCountThreshold: DefaultPendingCountThreshold,
		DatabaseDriver:        DriverSQLServer,
		PaymentMethodCode:     DefaultPaymentMethodCode,
		PendingStatusCode:     DefaultPendingStatusCode,
		PendingWindow:         DefaultPendingWindow,
		MonitorInterval:       DefaultMonitorInterval,
		DeactivationTimeout:   DefaultDeactivationTimeout,
		GatewayName:           DefaultGatewayName,
		NATSSubjectPrefix:     "gateway",
		OTelExporterType:      "none",
		LogLevel:              "info",
		LogFormat:             "text",
		Environment:           "test",
	}
}
