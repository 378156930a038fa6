package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loaderTestConfig struct {
	HTTPPort     int      `env:"LOADER_TEST_HTTP_PORT" envDefault:"8080"`
	LogLevel     string   `env:"LOADER_TEST_LOG_LEVEL" envDefault:"info"`
	KafkaBrokers []string `env:"LOADER_TEST_KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg loaderTestConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoad_EnvOverridesAndSeparator(t *testing.T) {
	t.Setenv("LOADER_TEST_HTTP_PORT", "9090")
	t.Setenv("LOADER_TEST_KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	var cfg loaderTestConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_ParseFailure(t *testing.T) {
	t.Setenv("LOADER_TEST_HTTP_PORT", "not-a-number")

	var cfg loaderTestConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
