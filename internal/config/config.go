package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Draft store backends.
const (
	DraftStoreSQLite = "sqlite"
	DraftStoreMemory = "memory"
	DraftStoreRedis  = "redis"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr           string
	Port                 string
	DatabasePath         string
	SessionSecret        string
	GinMode              string
	UploadDir            string
	UploadURLPath        string
	LogLevel             string
	AdminDefaultPassword string

	DraftStore         string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	DraftTTL           time.Duration
	DraftSweepSchedule string

	SyncRateRPS   float64
	SyncRateBurst int
}

// Load 从 .env 与环境变量读取应用配置，并为缺失项提供默认值。
func Load() (AppConfig, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (AppConfig, error) {
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_PATH", "printstudio.db")
	v.SetDefault("SESSION_SECRET", "printstudio-dev-secret")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("UPLOAD_DIR", "web/static/uploads")
	v.SetDefault("UPLOAD_URL_PATH", "/uploads")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DRAFT_STORE", DraftStoreSQLite)
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DRAFT_TTL", "168h")
	v.SetDefault("DRAFT_SWEEP_SCHEDULE", "@every 1h")
	v.SetDefault("SYNC_RATE_RPS", 20)
	v.SetDefault("SYNC_RATE_BURST", 40)

	port := strings.TrimSpace(v.GetString("PORT"))
	listenAddr := strings.TrimSpace(v.GetString("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	ttl, err := time.ParseDuration(strings.TrimSpace(v.GetString("DRAFT_TTL")))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid DRAFT_TTL: %w", err)
	}

	store := strings.ToLower(strings.TrimSpace(v.GetString("DRAFT_STORE")))
	switch store {
	case DraftStoreSQLite, DraftStoreMemory, DraftStoreRedis:
	default:
		return AppConfig{}, fmt.Errorf("invalid DRAFT_STORE %q", store)
	}

	uploadURL := "/" + strings.Trim(strings.TrimSpace(v.GetString("UPLOAD_URL_PATH")), "/")
	if uploadURL == "/" {
		uploadURL = "/uploads"
	}

	return AppConfig{
		ListenAddr:           listenAddr,
		Port:                 port,
		DatabasePath:         strings.TrimSpace(v.GetString("DATABASE_PATH")),
		SessionSecret:        strings.TrimSpace(v.GetString("SESSION_SECRET")),
		GinMode:              strings.TrimSpace(v.GetString("GIN_MODE")),
		UploadDir:            strings.TrimSpace(v.GetString("UPLOAD_DIR")),
		UploadURLPath:        uploadURL,
		LogLevel:             strings.TrimSpace(v.GetString("LOG_LEVEL")),
		AdminDefaultPassword: strings.TrimSpace(v.GetString("ADMIN_DEFAULT_PASSWORD")),
		DraftStore:           store,
		RedisAddr:            strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword:        v.GetString("REDIS_PASSWORD"),
		RedisDB:              v.GetInt("REDIS_DB"),
		DraftTTL:             ttl,
		DraftSweepSchedule:   strings.TrimSpace(v.GetString("DRAFT_SWEEP_SCHEDULE")),
		SyncRateRPS:          v.GetFloat64("SYNC_RATE_RPS"),
		SyncRateBurst:        v.GetInt("SYNC_RATE_BURST"),
	}, nil
}
