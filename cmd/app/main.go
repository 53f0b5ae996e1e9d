package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"taskapi/internal/api"
	"taskapi/internal/config"
	httpServer "taskapi/internal/http"
	"taskapi/internal/http/handlers"
	"taskapi/internal/http/middleware"
	"taskapi/internal/logger"
	"taskapi/internal/repository"
	"taskapi/internal/service"
	"taskapi/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.LogError(ctx, "store unavailable", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Warn("store close failed", "error", err)
		}
	}()

	tokens, err := service.NewTokenService(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("token service", "error", err)
	}
	auth, err := service.NewAuthService(
		repository.NewUserRepository(store),
		service.NewBcryptHasher(cfg.BcryptCost),
		tokens,
	)
	if err != nil {
		logger.Fatal("auth service", "error", err)
	}
	dispatcher := api.NewDispatcher(auth, tokens, repository.NewTaskRepository(store))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	middleware.RegisterMetrics(reg)

	var limiter httpServer.RateLimiter = middleware.NewMemoryRateLimiter()
	if cfg.RedisAddr != "" {
		rl, err := middleware.NewRedisRateLimiter(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, using in-process rate limiter", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer rl.Close()
			limiter = rl
		}
	}

	r := httpServer.NewRouter(httpServer.RouterConfig{
		Handler:        handlers.NewHandler(dispatcher, cfg.RequestTimeout),
		Health:         handlers.NewHealthHandler(store, cfg.StoreDriver, cfg.AppVersion),
		AuthLimiter:    limiter,
		AuthRateLimit:  cfg.AuthRateLimit,
		AuthRateWindow: cfg.AuthRateWindow,
		Gatherer:       reg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "store", cfg.StoreDriver, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
