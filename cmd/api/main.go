package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sofiagray/inkwell/backend/internal/cache"
	"github.com/sofiagray/inkwell/backend/internal/config"
	"github.com/sofiagray/inkwell/backend/internal/database"
	"github.com/sofiagray/inkwell/backend/internal/feed"
	"github.com/sofiagray/inkwell/backend/internal/handlers"
	"github.com/sofiagray/inkwell/backend/internal/logging"
	"github.com/sofiagray/inkwell/backend/internal/repository"
	"github.com/sofiagray/inkwell/backend/internal/server"
	"github.com/sofiagray/inkwell/backend/internal/upload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger := logging.L()
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger := logging.L()

	db, err := database.New(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()
	logger.Info().Str("dbname", cfg.Database.DBName).Msg("database connected")

	// The home feed cache falls back to process memory when Redis is not
	// configured; semantics are identical, the entries just die with the
	// process.
	var pages cache.PageCache
	if cfg.Redis.Address != "" {
		redisCache, err := cache.NewRedisPageCache(
			cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB,
			cfg.Cache.KeyPrefix, cfg.Cache.IndexTTL,
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisCache.Close()
		pages = redisCache
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	} else {
		pages = cache.NewMemoryPageCache(cfg.Cache.KeyPrefix, cfg.Cache.IndexTTL)
		logger.Warn().Msg("REDIS_ADDRESS not configured; using in-memory page cache")
	}

	images, err := upload.NewStore(cfg.Media.Dir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize media store")
	}

	feedSvc := feed.NewService(db.DB)
	follows := repository.NewGormFollowRepository(db.DB)
	users := repository.NewGormUserRepository(db.DB)
	handler := handlers.New(db.DB, feedSvc, follows, users, pages, images, cfg.JWT)

	srv := server.New(cfg, db, handler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("server stopped")
}
