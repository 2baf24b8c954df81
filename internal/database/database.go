package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cinemate/reelrank/internal/config"
)

type Database struct {
	Redis  *RedisClients
	logger *logrus.Logger
}

type RedisClients struct {
	// Sessions holds per-session state: view history, rate limiting.
	Sessions *redis.Client
	// Cache holds enrichment responses (details, trending) with TTL.
	Cache *redis.Client
}

func New(cfg *config.Config, logger *logrus.Logger) (*Database, error) {
	db := &Database{
		logger: logger,
	}

	if err := db.initRedis(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	return db, nil
}

func (db *Database) initRedis(cfg *config.Config) error {
	db.Redis = &RedisClients{}

	db.Redis.Sessions = redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Sessions.URL,
		MaxRetries:   cfg.Redis.Sessions.MaxRetries,
		PoolSize:     cfg.Redis.Sessions.PoolSize,
		ReadTimeout:  cfg.Redis.Sessions.Timeout,
		WriteTimeout: cfg.Redis.Sessions.Timeout,
	})

	db.Redis.Cache = redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Cache.URL,
		MaxRetries:   cfg.Redis.Cache.MaxRetries,
		PoolSize:     cfg.Redis.Cache.PoolSize,
		ReadTimeout:  cfg.Redis.Cache.Timeout,
		WriteTimeout: cfg.Redis.Cache.Timeout,
	})

	// Test connections
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.Redis.Sessions.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis Sessions: %w", err)
	}

	if err := db.Redis.Cache.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis Cache: %w", err)
	}

	db.logger.Info("Redis connections established")
	return nil
}

func (db *Database) Close() error {
	var errors []error

	if db.Redis != nil {
		if db.Redis.Sessions != nil {
			if err := db.Redis.Sessions.Close(); err != nil {
				errors = append(errors, fmt.Errorf("failed to close Redis Sessions: %w", err))
			}
		}
		if db.Redis.Cache != nil {
			if err := db.Redis.Cache.Close(); err != nil {
				errors = append(errors, fmt.Errorf("failed to close Redis Cache: %w", err))
			}
		}
		if len(errors) == 0 {
			db.logger.Info("Redis connections closed")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("errors closing database connections: %v", errors)
	}

	return nil
}
