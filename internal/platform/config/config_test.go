package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.ShortWindow)
	assert.Equal(t, 10, cfg.RateLimit.ShortLimit)
	assert.Equal(t, 60*time.Minute, cfg.RateLimit.LongWindow)
	assert.Equal(t, 30, cfg.RateLimit.LongLimit)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MEDGATE_ADDR", ":9999")
	t.Setenv("MEDGATE_RATELIMIT_SHORT_LIMIT", "3")
	t.Setenv("MEDGATE_RATELIMIT_SHORT_WINDOW", "1m")
	t.Setenv("MEDGATE_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := FromEnv()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 3, cfg.RateLimit.ShortLimit)
	assert.Equal(t, time.Minute, cfg.RateLimit.ShortWindow)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestFromEnvIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MEDGATE_RATELIMIT_LONG_LIMIT", "not-a-number")
	cfg := FromEnv()
	assert.Equal(t, 30, cfg.RateLimit.LongLimit)
}
