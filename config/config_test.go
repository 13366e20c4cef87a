package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFromEnv(t *testing.T) *Config {
	t.Helper()
	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	return cfg
}

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "absent", raw: "", want: 10},
		{name: "whitespace only", raw: "   ", want: 10},
		{name: "valid", raw: "25", want: 25},
		{name: "padded", raw: " 7 ", want: 7},
		{name: "zero", raw: "0", want: 0},
		{name: "negative", raw: "-3", want: -3},
		{name: "letters", raw: "abc", want: 10, wantErr: true},
		{name: "decimal", raw: "12.5", want: 10, wantErr: true},
		{name: "overflow", raw: "99999999999999999999", want: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseThreshold(tt.raw)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadFromEnv(t)

	assert.Equal(t, DriverSQLServer, cfg.DatabaseDriver)
	assert.Equal(t, 10, cfg.PendingCountThreshold)
	assert.Equal(t, 6, cfg.PaymentMethodCode)
	assert.Equal(t, 0, cfg.PendingStatusCode)
	assert.Equal(t, 10*time.Minute, cfg.PendingWindow)
	assert.Equal(t, 2*time.Minute, cfg.MonitorInterval)
	assert.Equal(t, 100*time.Second, cfg.DeactivationTimeout)
	assert.Equal(t, "getnet", cfg.GatewayName)
	assert.Equal(t, "development", cfg.Environment)
	assert.ElementsMatch(t, []string{"SqlConnectionString", "DeactivationEndpoint"}, cfg.MissingRequired())
}

func TestLoad_ReadsHostStyleEnvironmentNames(t *testing.T) {
	t.Setenv("SqlConnectionString", "tcp:myserver,1433")
	t.Setenv("DeactivationEndpoint", "https://gateway.example.com/deactivate")
	t.Setenv("PendingCountThreshold", "42")

	cfg := loadFromEnv(t)

	assert.Equal(t, "tcp:myserver,1433", cfg.SQLConnectionString)
	assert.Equal(t, "https://gateway.example.com/deactivate", cfg.DeactivationEndpoint)
	assert.Equal(t, 42, cfg.PendingCountThreshold)
	assert.Empty(t, cfg.MissingRequired())
}

func TestLoad_SnakeCaseEnvironmentTakesPrecedence(t *testing.T) {
	t.Setenv("SQL_CONNECTION_STRING", "Server=primary")
	t.Setenv("SqlConnectionString", "Server=legacy")

	cfg := loadFromEnv(t)

	assert.Equal(t, "Server=primary", cfg.SQLConnectionString)
}

func TestLoad_InvalidThresholdFallsBackWithWarning(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	t.Setenv("PENDING_COUNT_THRESHOLD", "abc")

	cfg := loadFromEnv(t)

	assert.Equal(t, 10, cfg.PendingCountThreshold)
	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "PendingCountThreshold")
}

func TestLoad_BlankRequiredValuesAreMissing(t *testing.T) {
	t.Setenv("SQL_CONNECTION_STRING", "   ")
	t.Setenv("DEACTIVATION_ENDPOINT", "https://gateway.example.com/deactivate")

	cfg := loadFromEnv(t)

	assert.Equal(t, []string{"SqlConnectionString"}, cfg.MissingRequired())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "monitor.yaml")
	content := []byte(`sql_connection_string: "Server=db;Database=pay"
deactivation_endpoint: "https://gateway.example.com/off"
pending_count_threshold: "15"
database_driver: postgres
monitor_interval: 30s
gateway_name: adyen
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "Server=db;Database=pay", cfg.SQLConnectionString)
	assert.Equal(t, "https://gateway.example.com/off", cfg.DeactivationEndpoint)
	assert.Equal(t, 15, cfg.PendingCountThreshold)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, 30*time.Second, cfg.MonitorInterval)
	assert.Equal(t, "adyen", cfg.GatewayName)
}

func TestNewViper_MissingConfigFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsUnsupportedValues(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{name: "driver", env: "DATABASE_DRIVER", val: "oracle"},
		{name: "exporter", env: "OTEL_EXPORTER_TYPE", val: "zipkin"},
		{name: "interval", env: "MONITOR_INTERVAL", val: "0s"},
		{name: "window", env: "PENDING_WINDOW", val: "-1m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			v, err := NewViper("")
			require.NoError(t, err)

			_, err = Load(v)
			assert.Error(t, err)
		})
	}
}

func TestConfigureLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)
	defer log.SetFormatter(&log.TextFormatter{})

	cfg := NewTestConfig()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"
	require.NoError(t, ConfigureLogging(cfg))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	cfg.LogLevel = "loud"
	assert.Error(t, ConfigureLogging(cfg))

	cfg.LogLevel = "info"
	cfg.LogFormat = "xml"
	assert.Error(t, ConfigureLogging(cfg))
}
