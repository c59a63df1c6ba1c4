package cli

import (
	"context"
	"time"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/infra/file"
	"timed-quiz-service/internal/infra/memory"
	pgstore "timed-quiz-service/internal/infra/postgres"
	redisstore "timed-quiz-service/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// buildService assembles loaders, caches and stores from config. The
// returned cleanup releases connections.
func buildService(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*app.QuizService, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	loader, err := buildLoader(ctx, cfg, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	var banks app.BankRepository
	var store app.SessionRepository
	if redisClient != nil {
		banks = redisstore.NewBankRepository(redisClient, loader, bankTTL)
		store = redisstore.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	} else {
		banks = memory.NewBankRepository(loader, bankTTL)
		store = memory.NewSessionStore()
	}

	opts := app.SessionOptions{
		DurationSeconds: cfg.QuizSeconds(),
		Policy:          app.ParsePolicy(cfg.Quiz.Lenient),
		Shuffle:         cfg.Quiz.Shuffle,
	}
	log.WithFields(logrus.Fields{
		"duration": opts.DurationSeconds,
		"lenient":  cfg.Quiz.Lenient,
		"shuffle":  cfg.Quiz.Shuffle,
		"redis":    redisClient != nil,
	}).Info("quiz service configured")
	return app.NewQuizService(store, banks, opts, log), cleanup, nil
}

func buildLoader(ctx context.Context, cfg config.Config, closers *[]func()) (memory.BankLoader, error) {
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, pool.Close)
		return pgstore.NewBankLoader(pool), nil
	}
	if cfg.Bank.File != "" {
		loader, err := file.Load(cfg.Bank.File)
		if err != nil {
			return nil, err
		}
		return loader, nil
	}
	return file.Default(), nil
}
