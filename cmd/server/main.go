// Stamp board API server.
//
// @title        Stampboard API
// @version      1.0
// @description  Collaborative stamp board behind a shared-password gate.
// @BasePath     /api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	goredis "github.com/redis/go-redis/v9"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/danapixels/stampboard/internal/api"
	"github.com/danapixels/stampboard/internal/core/ports"
	"github.com/danapixels/stampboard/internal/core/service"
	"github.com/danapixels/stampboard/internal/infrastructure/config"
	filestore "github.com/danapixels/stampboard/internal/infrastructure/db/file"
	"github.com/danapixels/stampboard/internal/infrastructure/db/mongo"
	"github.com/danapixels/stampboard/internal/infrastructure/db/redis"
	"github.com/danapixels/stampboard/internal/infrastructure/db/sqlite"
	"github.com/danapixels/stampboard/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}
	if cfg.PasswordHash == "" {
		log.Fatal().Msg("PASSWORD_HASH must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Board persistence ---
	var (
		repo    ports.StampRepository
		mongoDB *gomongo.Database
	)
	switch cfg.Store.Backend {
	case "file":
		repo = filestore.NewStampRepository(cfg.Store.FilePath, log)
	case "sqlite":
		sqliteRepo, err := sqlite.NewStampRepository(cfg.Store.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Store.SQLitePath).Msg("failed to open sqlite store")
		}
		defer sqliteRepo.Close()
		repo = sqliteRepo
	case "mongo":
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongo")
		}
		defer func() {
			_ = client.Disconnect(context.Background())
		}()
		mongoDB = db
		repo = mongo.NewStampRepository(db)
	default:
		log.Fatal().Str("backend", cfg.Store.Backend).Msg("unknown store backend")
	}
	log.Info().Str("backend", cfg.Store.Backend).Msg("board store ready")

	// --- Optional duplicate suppression ---
	var (
		dedup service.DedupChecker
		rdb   *goredis.Client
	)
	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		rdb = client
		dedup = redis.NewDedupChecker(client)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("stamp dedup enabled")
	}

	// --- Services ---
	stampService := service.NewStampService(repo, dedup, service.BoardQuotas{
		GlobalCeiling:   cfg.Board.GlobalCeiling,
		PerUserCeiling:  cfg.Board.PerUserCeiling,
		FullBoardPolicy: ports.FullBoardPolicy(cfg.Board.FullBoardPolicy),
	}, log)
	authService := service.NewAuthService(cfg.PasswordHash, cfg.JWTSecret, cfg.SessionTTL)

	e := api.NewRouter(cfg, log, stampService, authService, mongoDB, rdb)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
