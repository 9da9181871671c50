package main

import (
	"context"
	"fmt"

	"github.com/printstudio/internal/config"
	"github.com/printstudio/internal/content"
	"github.com/printstudio/internal/db"
	"github.com/printstudio/internal/draft"
	"github.com/printstudio/internal/logger"
	"github.com/printstudio/internal/service"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const redisDraftPrefix = "printstudio:draft"

// app holds the services shared by the commands.
type app struct {
	gdb     *gorm.DB
	content *service.ContentService
	auth    *service.AuthService
	drafts  draft.Store
	close   func()
}

func bootstrap(ctx context.Context, cfg config.AppConfig) (*app, error) {
	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	seed, err := content.Defaults()
	if err != nil {
		return nil, fmt.Errorf("load default content: %w", err)
	}
	contentService := service.NewContentService(db.DB)
	if err := contentService.Seed(ctx, seed); err != nil {
		return nil, fmt.Errorf("seed content: %w", err)
	}

	auth := service.NewAuthService(db.DB, cfg.AdminDefaultPassword)
	if err := auth.EnsurePassword(ctx); err != nil {
		return nil, fmt.Errorf("ensure admin password: %w", err)
	}

	store, closeStore, err := openDraftStore(ctx, cfg, db.DB)
	if err != nil {
		return nil, err
	}

	return &app{
		gdb:     db.DB,
		content: contentService,
		auth:    auth,
		drafts:  store,
		close: func() {
			closeStore()
			if sqlDB, err := db.DB.DB(); err == nil {
				sqlDB.Close()
			}
		},
	}, nil
}

func openDraftStore(ctx context.Context, cfg config.AppConfig, gdb *gorm.DB) (draft.Store, func(), error) {
	switch cfg.DraftStore {
	case config.DraftStoreMemory:
		logger.Warnf("[drafts] using the in-memory store; drafts are lost on restart")
		return draft.NewMemoryStore(), func() {}, nil
	case config.DraftStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Infof("[drafts] using redis at %s (ttl %s)", cfg.RedisAddr, cfg.DraftTTL)
		return draft.NewRedisStore(client, redisDraftPrefix, cfg.DraftTTL), func() { client.Close() }, nil
	default:
		return draft.NewGormStore(gdb), func() {}, nil
	}
}
