package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-katalog/internal/config"
	"github.com/noah-isme/backend-katalog/internal/events"
	"github.com/noah-isme/backend-katalog/internal/obs"
	"github.com/noah-isme/backend-katalog/internal/offer"
	"github.com/noah-isme/backend-katalog/internal/repo"
)

const taskOfferSweep = "offers:sweep"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "katalog")
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool := mustInitDatabase(ctx, cfg, logger)
	cancel()
	defer pool.Close()

	redisClient := mustInitRedis(cfg, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	bus := &events.Bus{
		Store:     repo.Events{DB: pool},
		Notifiers: []events.Notifier{events.LogNotifier{Logger: logger}},
	}
	sweeper := &offer.Sweeper{
		Store:  repo.Offers{DB: pool},
		Bus:    bus,
		Logger: logger,
	}

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis uri for asynq")
	}

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})
	interval := cfg.OfferSweepInterval
	if interval < time.Minute {
		interval = time.Minute
	}
	if _, err := scheduler.Register("@every "+interval.String(), asynq.NewTask(taskOfferSweep, nil)); err != nil {
		logger.Fatal().Err(err).Msg("register offer sweep schedule")
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Fatal().Err(err).Msg("scheduler stopped")
		}
	}()

	mux := asynq.NewServeMux()
	mux.HandleFunc(taskOfferSweep, func(ctx context.Context, _ *asynq.Task) error {
		_, err := sweeper.Sweep(ctx)
		return err
	})

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{"default": 1},
	})
	logger.Info().Str("task", taskOfferSweep).Dur("interval", interval).Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped with error")
	}
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func mustInitRedis(cfg *config.Config, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
