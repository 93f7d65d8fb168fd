package main

import (
	"context"

	"github.com/wavelength/matchops/internal/app"
	"github.com/wavelength/matchops/internal/cache"
	"github.com/wavelength/matchops/internal/config"
	"github.com/wavelength/matchops/internal/db"
	"github.com/wavelength/matchops/internal/logger"
	"github.com/wavelength/matchops/internal/server"
	"github.com/wavelength/matchops/internal/service/analytics"
	"github.com/wavelength/matchops/internal/service/approval"
	"github.com/wavelength/matchops/internal/service/chats"
	"github.com/wavelength/matchops/internal/service/images"
	"github.com/wavelength/matchops/internal/service/outreach"
	"github.com/wavelength/matchops/internal/service/users"
	"github.com/wavelength/matchops/internal/service/waitlist"
	"github.com/wavelength/matchops/internal/storage"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// Init image storage
	bucket, err := storage.NewFirebaseBucket(context.Background(), cfg.Storage.Bucket, cfg.Storage.CredentialsPath)
	if err != nil {
		log.Error("failed to init image storage", "err", err)
		return
	}

	appCtx := app.New(cfg, database, redisCache, bucket, log)

	registrars := []server.Registrar{
		analytics.NewRegistrar(appCtx),
		users.NewRegistrar(appCtx),
		approval.NewRegistrar(appCtx),
		chats.NewRegistrar(appCtx),
		waitlist.NewRegistrar(appCtx),
		images.NewRegistrar(appCtx),
		outreach.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting admin API server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start http server", "err", err)
	}
}
