package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 10*time.Second, c.Server.ShutdownTimeout)
	assert.Equal(t, "memory", c.Cache.Backend)
	assert.Equal(t, 5*time.Minute, c.Cache.TTL)
	assert.Equal(t, "summed", c.Calculator.ProjectionMode)
	assert.Equal(t, 10.0, c.Calculator.FlatReduction)
	assert.Equal(t, 10, c.Live.MaxRPS)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
	assert.True(t, c.Metrics.Enabled)
	assert.False(t, c.Kafka.Enabled)
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
environment: production
server:
  port: 9090
metrics:
  enabled: false
cache:
  backend: redis
  ttl: 30s
  redis:
    addr: redis:6379
kafka:
  enabled: true
  brokers: [kafka-1:9092, kafka-2:9092]
calculator:
  projection_mode: flat
  flat_reduction: 8
`))
	require.NoError(t, err)

	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 9090, c.Server.Port)
	assert.False(t, c.Metrics.Enabled)
	assert.Equal(t, "/metrics", c.Metrics.Path)
	assert.Equal(t, "redis", c.Cache.Backend)
	assert.Equal(t, 30*time.Second, c.Cache.TTL)
	assert.Equal(t, "redis:6379", c.Cache.Redis.Addr)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "smartcvd.assessments", c.Kafka.EventTopic)
	assert.Equal(t, "flat", c.Calculator.ProjectionMode)
	assert.Equal(t, 8.0, c.Calculator.FlatReduction)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad port", "server:\n  port: 70000\n"},
		{"bad cache backend", "cache:\n  backend: memcached\n"},
		{"bad projection mode", "calculator:\n  projection_mode: average\n"},
		{"kafka without brokers", "kafka:\n  enabled: true\n"},
		{"collector without kafka", "logging:\n  collector:\n    enabled: true\n"},
		{"bad log level", "logging:\n  level: verbose\n"},
		{"malformed", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: staging\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", c.Environment)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SMARTCVD_PORT":          "9000",
		"SMARTCVD_KAFKA_BROKERS": "a:9092,b:9092",
		"SMARTCVD_CACHE_BACKEND": "none",
		"SMARTCVD_LOG_LEVEL":     "debug",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	c := Default()
	require.NoError(t, c.applyEnv(lookup))
	require.NoError(t, c.Validate())
	assert.Equal(t, 9000, c.Server.Port)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, "none", c.Cache.Backend)
	assert.Equal(t, "debug", c.Logging.Level)

	env["SMARTCVD_KAFKA_ENABLED"] = "false"
	c = Default()
	require.NoError(t, c.applyEnv(lookup))
	assert.False(t, c.Kafka.Enabled)

	env["SMARTCVD_PORT"] = "eighty"
	assert.Error(t, Default().applyEnv(lookup))
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("SMARTCVD_ENV", "test")
	t.Setenv("SMARTCVD_PROJECTION_MODE", "flat")

	c, err := LoadWithEnv("")
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, "flat", c.Calculator.ProjectionMode)

	t.Setenv("SMARTCVD_PROJECTION_MODE", "bogus")
	_, err = LoadWithEnv("")
	assert.Error(t, err)
}
