package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/inventory-abc/internal/analysis"
	"github.com/andresuchdata/inventory-abc/internal/api"
	"github.com/andresuchdata/inventory-abc/internal/cache"
	"github.com/andresuchdata/inventory-abc/internal/config"
	"github.com/andresuchdata/inventory-abc/internal/notify"
	"github.com/andresuchdata/inventory-abc/internal/report"
	"github.com/andresuchdata/inventory-abc/internal/service"
	"github.com/andresuchdata/inventory-abc/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.SetLevel(cfg.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger.UseJSON(os.Stdout)
	}

	analysisCache, err := cache.NewAnalysisCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Analysis cache unavailable, continuing without cache")
		analysisCache = cache.NewNoopAnalysisCache()
	}
	defer analysisCache.Close()

	// Initialize services
	inventoryService := service.NewInventoryService(
		analysis.NewAnalyzer(cfg.Analysis),
		report.NewPNGRenderer(),
		analysisCache,
	)
	notifier := notify.NewNotifier(notify.NewMailer(cfg.Mail), cfg.Alert.Concurrency)
	alertService := service.NewAlertService(notifier, cfg.Alert.Recipient)

	if !cfg.Mail.Enabled {
		logger.Log.Warn().Msg("MAIL_ENABLED is false, stock alerts will be reported as not sent")
	}

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		InventoryService: inventoryService,
		AlertService:     alertService,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// In-flight requests get 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
