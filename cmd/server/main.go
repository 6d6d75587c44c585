package main

import (
	"context"
	"os"

	"github.com/yaadmatch/yaadmatch/internal/app"
	"github.com/yaadmatch/yaadmatch/internal/auth"
	"github.com/yaadmatch/yaadmatch/internal/cache"
	"github.com/yaadmatch/yaadmatch/internal/config"
	"github.com/yaadmatch/yaadmatch/internal/db"
	"github.com/yaadmatch/yaadmatch/internal/logger"
	"github.com/yaadmatch/yaadmatch/internal/server"
	"github.com/yaadmatch/yaadmatch/internal/service/account"
	"github.com/yaadmatch/yaadmatch/internal/service/favourite"
	"github.com/yaadmatch/yaadmatch/internal/service/match"
	"github.com/yaadmatch/yaadmatch/internal/service/profile"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

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

	// Make sure the upload dir exists before the first registration hits it.
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		log.Error("failed to create upload dir", "dir", cfg.Upload.Dir, "err", err)
		return
	}

	appCtx := app.New(cfg, database, redisCache, log)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	tokens := auth.NewTokenManager(cfg)
	requireAuth := auth.Middleware(tokens, redisCache)

	registrars := []server.Registrar{
		account.NewRegistrar(appCtx),
		profile.NewRegistrar(appCtx),
		match.NewRegistrar(appCtx),
		favourite.NewRegistrar(appCtx),
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, requireAuth, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
