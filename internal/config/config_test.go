package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/groweasy/backend/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, "localhost:8090", cfg.HTTP.Addr())
	assert.Equal(t, "./data", cfg.Local.DataDir)
	assert.False(t, cfg.Remote.Enabled())
	assert.False(t, cfg.Remote.SkipMigrations)
	assert.Equal(t, 5*time.Second, cfg.Remote.MirrorTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Remote.SyncTimeout)
	assert.Equal(t, "1.1.1.1:53", cfg.Probe.Address)
	assert.Equal(t, 2*time.Second, cfg.Probe.Timeout)
	assert.Equal(t, "sync_log.txt", cfg.Audit.Path)
	assert.Equal(t, "groweasy.sync.completed", cfg.Notify.NATSSubject)
	assert.Empty(t, cfg.Notify.KafkaBrokers)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
env: prod
http:
  host: 0.0.0.0
  port: 8100
local:
  data_dir: /var/lib/groweasy
remote:
  database_url: postgres://groweasy:secret@db:5432/groweasy?sslmode=disable
  skip_migrations: true
  sync_timeout: 30s
notify:
  kafka_brokers: ["kafka-1:9092", "kafka-2:9092"]
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EnvProd, cfg.Env)
	assert.Equal(t, "0.0.0.0:8100", cfg.HTTP.Addr())
	assert.Equal(t, "/var/lib/groweasy", cfg.Local.DataDir)
	assert.True(t, cfg.Remote.Enabled())
	assert.True(t, cfg.Remote.SkipMigrations)
	assert.Equal(t, 30*time.Second, cfg.Remote.SyncTimeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Notify.KafkaBrokers)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "http:\n  port: 8100\n")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Notify.KafkaBrokers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConfig))
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "http:\n  port: 70000\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConfig))
	assert.Contains(t, err.Error(), "http.port")
}

func validConfig() Config {
	return Config{
		Env:   EnvLocal,
		HTTP:  HTTP{Host: "localhost", Port: 8090},
		Local: Local{DataDir: "./data"},
		Probe: Probe{Address: "1.1.1.1:53", Timeout: 2 * time.Second},
		Audit: Audit{Path: "sync_log.txt"},
		Log:   Log{Level: "info"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown env", func(c *Config) { c.Env = "staging" }, "env must be"},
		{"zero port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"empty data dir", func(c *Config) { c.Local.DataDir = " " }, "local.data_dir"},
		{"negative sync timeout", func(c *Config) { c.Remote.SyncTimeout = -time.Second }, "remote timeouts"},
		{"remote without probe timeout", func(c *Config) {
			c.Remote.DatabaseURL = "postgres://localhost/groweasy"
			c.Probe.Timeout = 0
		}, "probe.timeout"},
		{"empty audit path", func(c *Config) { c.Audit.Path = "" }, "audit.path"},
		{"nats without subject", func(c *Config) { c.Notify.NATSURL = "nats://localhost:4222" }, "nats_subject"},
		{"kafka without topic", func(c *Config) { c.Notify.KafkaBrokers = []string{"localhost:9092"} }, "kafka_topic"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"warning accepted", func(c *Config) { c.Log.Level = "WARNING" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrConfig))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
