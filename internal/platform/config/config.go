// Package config builds runtime configuration from environment variables so
// main stays lean. Defaults suit local development; every knob can be
// overridden per deployment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	LogLevel      string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	Postgres  Postgres
	Redis     Redis
	Kafka     Kafka
	RateLimit RateLimit
}

// Postgres captures the shared-store connection settings. An empty URL keeps
// the gateway on in-memory stores (single-process deployment).
type Postgres struct {
	URL          string
	MaxConns     int32
	ConnLifetime time.Duration
}

// Redis captures connection settings for the distributed rate-limit store.
// An empty URL keeps rate limiting in-process.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka captures the audit publisher settings. Empty brokers disable the
// Kafka sink; audit events then stay on the configured store only.
type Kafka struct {
	Brokers         []string
	TopicPartitions int32
	TopicReplicas   int16
}

// RateLimit carries the two fixed-window budgets. The defaults are the
// contract values; overriding them is a deployment decision, not a caller one.
type RateLimit struct {
	ShortWindow time.Duration
	ShortLimit  int
	LongWindow  time.Duration
	LongLimit   int
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:          envOr("MEDGATE_ADDR", ":8080"),
		LogLevel:      envOr("MEDGATE_LOG_LEVEL", "info"),
		JWTSigningKey: envOr("MEDGATE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     envOr("MEDGATE_JWT_ISSUER", "medgate"),
		JWTAudience:   envOr("MEDGATE_JWT_AUDIENCE", "clinic-platform"),
		Postgres: Postgres{
			URL:          os.Getenv("MEDGATE_POSTGRES_URL"),
			MaxConns:     int32(envIntOr("MEDGATE_POSTGRES_MAX_CONNS", 10)),
			ConnLifetime: envDurationOr("MEDGATE_POSTGRES_CONN_LIFETIME", 30*time.Minute),
		},
		Redis: Redis{
			URL:          os.Getenv("MEDGATE_REDIS_URL"),
			PoolSize:     envIntOr("MEDGATE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("MEDGATE_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("MEDGATE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("MEDGATE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("MEDGATE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers:         splitNonEmpty(os.Getenv("MEDGATE_KAFKA_BROKERS")),
			TopicPartitions: int32(envIntOr("MEDGATE_KAFKA_TOPIC_PARTITIONS", 3)),
			TopicReplicas:   int16(envIntOr("MEDGATE_KAFKA_TOPIC_REPLICAS", 1)),
		},
		RateLimit: RateLimit{
			ShortWindow: envDurationOr("MEDGATE_RATELIMIT_SHORT_WINDOW", 5*time.Minute),
			ShortLimit:  envIntOr("MEDGATE_RATELIMIT_SHORT_LIMIT", 10),
			LongWindow:  envDurationOr("MEDGATE_RATELIMIT_LONG_WINDOW", 60*time.Minute),
			LongLimit:   envIntOr("MEDGATE_RATELIMIT_LONG_LIMIT", 30),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if part := s[start:i]; part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	return out
}
