package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithDefaults_NoFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "pricing", cfg.ServiceName)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, 10, cfg.Pricing.SpotPoints)
	assert.Equal(t, 10, cfg.Pricing.VolPoints)
	assert.Equal(t, 0.5, cfg.Pricing.LowFactor)
	assert.Equal(t, 1.5, cfg.Pricing.HighFactor)
	assert.Equal(t, Range{Min: 50, Max: 200, Default: 100}, cfg.Pricing.Bounds.Spot)
	assert.Equal(t, Range{Min: 0, Max: 0.2, Default: 0.05}, cfg.Pricing.Bounds.Rate)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
service_name = "pricing-test"
environment = "staging"

[http]
port = 9090

[kafka]
enabled = true
brokers = ["kafka-1:9092", "kafka-2:9092"]
topic = "options.pricing"

[pricing]
spot_points = 20
vol_points = 15
parallel_workers = 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("APP_HTTP_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "pricing-test", cfg.ServiceName)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 7070, cfg.HTTP.Port)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "options.pricing", cfg.Kafka.Topic)
	assert.Equal(t, 20, cfg.Pricing.SpotPoints)
	assert.Equal(t, 15, cfg.Pricing.VolPoints)
	assert.Equal(t, 4, cfg.Pricing.ParallelWorkers)
	assert.Equal(t, 50, cfg.Pricing.MaxPoints)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load("../../configs/pricing/config.toml")
	require.NoError(t, err)
	assert.Equal(t, "pricing", cfg.ServiceName)
	assert.Equal(t, 10, cfg.Pricing.SpotPoints)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadWithDefaults("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty service name", func(c *Config) { c.ServiceName = "" }},
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }},
		{"zero qps", func(c *Config) { c.RateLimit.QPS = 0 }},
		{"zero points", func(c *Config) { c.Pricing.SpotPoints = 0 }},
		{"inverted factors", func(c *Config) { c.Pricing.LowFactor = 2 }},
		{"max below default", func(c *Config) { c.Pricing.MaxPoints = 5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := valid()
	cfg.Environment = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "dev", cfg.Environment)
}

func TestRangeContains(t *testing.T) {
	r := Range{Min: 0.01, Max: 1}
	assert.True(t, r.Contains(0.01))
	assert.True(t, r.Contains(1))
	assert.False(t, r.Contains(0))
	assert.False(t, r.Contains(1.01))
}

func TestGetEnv(t *testing.T) {
	t.Setenv("PRICING_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("PRICING_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("PRICING_TEST_KEY_UNSET", "fallback"))
}

func TestLoadWithDefaults_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[pricing\nmax_points = 5\nenforce_bounds = false\n"), 0o600))

	cfg, err := LoadWithDefaults(path)
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadWithDefaults_EmptyPath(t *testing.T) {
	cfg, err := LoadWithDefaults("")
	require.NoError(t, err)
	assert.True(t, cfg.Pricing.EnforceBounds)
}
