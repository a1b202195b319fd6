// Command server runs the clinic request gateway: identity, authorization,
// consent, rate limiting, and audit in front of the clinic business services.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"medgate/internal/consent"
	"medgate/internal/gateway"
	"medgate/internal/identity"
	"medgate/internal/operation"
	"medgate/internal/platform/config"
	"medgate/internal/platform/httpserver"
	"medgate/internal/platform/logger"
	"medgate/internal/platform/postgres"
	platformredis "medgate/internal/platform/redis"
	"medgate/internal/ratelimit"
	rlmetrics "medgate/internal/ratelimit/metrics"
	httptransport "medgate/internal/transport/http"
	"medgate/pkg/platform/audit"
	auditpublisher "medgate/pkg/platform/audit/publisher"
	auditmemory "medgate/pkg/platform/audit/store/memory"
	auditpostgres "medgate/pkg/platform/audit/store/postgres"
	auditworker "medgate/pkg/platform/audit/worker"
)

const auditInboxSize = 1024

func main() {
	cfg := config.FromEnv()
	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres init failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Audit sink preference: Kafka, then the Postgres outbox, then memory.
	auditMetrics := audit.NewMetrics()
	var auditStore audit.Store
	switch {
	case len(cfg.Kafka.Brokers) > 0:
		publisher, err := auditpublisher.NewKafka(cfg.Kafka.Brokers)
		if err != nil {
			log.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		if err := publisher.EnsureTopics(ctx, cfg.Kafka.TopicPartitions, cfg.Kafka.TopicReplicas); err != nil {
			log.Error("kafka topic setup failed", "error", err)
			os.Exit(1)
		}
		auditStore = publisher
		log.Info("audit sink: kafka", "brokers", cfg.Kafka.Brokers)
	case cfg.Postgres.URL != "":
		db, err := sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			log.Error("audit outbox init failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		auditStore = auditpostgres.New(db)
		log.Info("audit sink: postgres outbox")
	default:
		auditStore = auditmemory.NewInMemoryStore()
		log.Warn("audit sink: in-memory, events are lost on restart")
	}

	inbox := make(chan audit.Event, auditInboxSize)
	recorder := audit.NewRecorder(inbox, log, audit.WithRecorderMetrics(auditMetrics))
	worker := auditworker.New(auditStore, inbox, log, auditworker.WithMetrics(auditMetrics))

	resolver := identity.NewResolver(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	var consentStore consent.Store
	if pool != nil {
		consentStore = consent.NewPostgresStore(pool)
	}
	consentGate := consent.NewGate(consentStore, log)

	var rlStore ratelimit.Store
	if redisClient != nil {
		rlStore = ratelimit.NewRedisStore(redisClient)
		log.Info("rate limit store: redis")
	} else {
		rlStore = ratelimit.NewInMemoryStore()
	}
	limiter := ratelimit.NewLimiter(rlStore, ratelimit.WindowsFromConfig(cfg.RateLimit), log,
		ratelimit.WithMetrics(rlmetrics.New()))

	var opStore operation.Store
	if pool != nil {
		opStore = operation.NewPostgresStore(pool)
	} else {
		opStore = operation.NewInMemoryStore()
	}
	operations := operation.NewService(opStore, log)

	registry := gateway.NewRegistry()
	registerHandlers(registry)

	pipeline := gateway.NewPipeline(resolver, consentGate, limiter, operations, registry, recorder, log,
		gateway.WithMetrics(gateway.NewMetrics()))

	router := httptransport.NewRouter(httptransport.NewHandler(pipeline, log))
	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return worker.Run(ctx)
	})

	group.Go(func() error {
		log.Info("gateway listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("gateway stopped", "error", err)
		os.Exit(1)
	}
	log.Info("gateway stopped")
}
