package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retailpulse/inventory-intel/internal/api"
	"github.com/retailpulse/inventory-intel/internal/cache"
	"github.com/retailpulse/inventory-intel/internal/config"
	"github.com/retailpulse/inventory-intel/internal/repository/postgres"
	"github.com/retailpulse/inventory-intel/internal/service"
	"github.com/retailpulse/inventory-intel/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	analyticsCache, err := cache.NewAnalyticsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, continuing without it")
		analyticsCache = cache.NewNoopAnalyticsCache()
	}

	salesRepo := postgres.NewSalesRepository(db)
	stockRepo := postgres.NewStockRepository(db)
	catalogRepo := postgres.NewCatalogRepository(db)
	analyticsRepo := postgres.NewAnalyticsRepository(db)
	runRepo := postgres.NewRunRepository(db)

	services := &api.Services{
		Analytics: service.NewAnalyticsService(
			salesRepo, stockRepo, catalogRepo, analyticsRepo, runRepo,
			analyticsCache, cfg,
		),
		Transfers: service.NewTransferService(salesRepo, stockRepo, catalogRepo, cfg),
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Log.Info().Msg("server exiting")
}
