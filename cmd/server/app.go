package main

import (
	"context"
	"fmt"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisSessions "github.com/gin-contrib/sessions/redis"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/taskboard/internal/config"
	"github.com/yukikurage/taskboard/internal/database"
	"github.com/yukikurage/taskboard/internal/logger"
	"github.com/yukikurage/taskboard/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const redisKeyPrefix = "taskboard:"

func setup(configDir string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		Development: cfg.LogDevelopment,
		File:        cfg.LogFile,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// backend is the opened persistence layer plus whatever needs closing.
type backend struct {
	store repository.Store
	db    *gorm.DB
	redis *redis.Client
}

func (b *backend) Close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.db != nil {
		if sqlDB, err := b.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func newRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
	})
}

func openBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backend, error) {
	b := &backend{}

	switch cfg.StoreDriver {
	case "memory":
		b.store = repository.NewMemoryStore()
	case "redis":
		b.redis = newRedisClient(cfg)
		if err := b.redis.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		b.store = repository.NewRedisStore(b.redis, redisKeyPrefix)
	default:
		db, err := database.Connect(cfg, log)
		if err != nil {
			return nil, err
		}
		b.db = db
		if err := database.Migrate(db, log); err != nil {
			b.Close()
			return nil, err
		}
		b.store = repository.NewGormStore(db)
	}

	// Notifications go out over redis whenever it is reachable.
	if b.redis == nil && (cfg.SessionStore == "redis" || cfg.NotifyChannel != "") {
		client := newRedisClient(cfg)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, notifications stay in the log", zap.Error(err))
			_ = client.Close()
		} else {
			b.redis = client
		}
	}

	log.Info("store ready", zap.String("driver", cfg.StoreDriver))
	return b, nil
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "redis":
		rs, err := redisSessions.NewStore(
			10,    // Redis pool size
			"tcp", // network type
			cfg.RedisAddr(),
			"", // username (empty for default user)
			cfg.RedisPassword,
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis session store: %w", err)
		}
		store = rs
	default:
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	return store, nil
}
