package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/wavelength/matchops/internal/cache"
	"github.com/wavelength/matchops/internal/config"
	"github.com/wavelength/matchops/internal/storage"
)

// AppContext holds shared dependencies (DB, Redis, Logger, image storage, etc.)
type AppContext struct {
	Cfg        *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Storage    storage.Bucket
	Logger     *slog.Logger
}

// New creates a new AppContext
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, bucket storage.Bucket, logger *slog.Logger) *AppContext {
	return &AppContext{
		Cfg:        cfg,
		DB:         db,
		RedisCache: rdb,
		Storage:    bucket,
		Logger:     logger,
	}
}
