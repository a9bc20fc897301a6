package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lookup_bot/internal/bot"
	"lookup_bot/internal/config"
	httpServer "lookup_bot/internal/http"
	"lookup_bot/internal/http/middleware"
	"lookup_bot/internal/ledger"
	"lookup_bot/internal/logger"
	"lookup_bot/internal/lookup"
	"lookup_bot/internal/service"
	"lookup_bot/internal/storage"

	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

// store is the full storage surface the app needs: ledger persistence
// plus the readiness probe.
type store interface {
	ledger.Store
	Ping(ctx context.Context) error
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	var st store
	if cfg.RedisAddr != "" {
		redisStore, err := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("redis connection failed", "addr", cfg.RedisAddr, "error", err)
		}
		defer redisStore.Close()
		st = redisStore
		logger.Info("using redis storage", "addr", cfg.RedisAddr)
	} else {
		st = storage.NewFileStore(cfg.DataFile, cfg.BannedUsersFile)
		logger.Info("using file storage", "data", cfg.DataFile, "bans", cfg.BannedUsersFile)
	}

	ctx := context.Background()
	ldg, err := ledger.New(ctx, ledger.Config{
		DailyCredits:    cfg.DailyCredits,
		ReferralCredits: cfg.ReferralCredits,
		AdminID:         cfg.AdminID,
	}, st)
	if err != nil {
		logger.Fatal("ledger init failed", "error", err)
	}

	client := lookup.NewClient(cfg.LookupBaseURL, cfg.LookupTimeout)

	// The access controller needs the membership checker, which needs
	// the bot connection, so the bot is built first and wired after.
	tgBot, err := bot.New(cfg, ldg, nil, client)
	if err != nil {
		logger.Fatal("bot init failed", "error", err)
	}
	tgBot.SetAccess(ledger.NewController(ldg, tgBot.Membership()))

	go tgBot.Start()

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	r := gin.Default()
	httpServer.RegisterRoutes(r, ldg, st, cfg, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	tgBot.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
