// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/procurement-dashboard/internal/api"
	"github.com/andresuchdata/procurement-dashboard/internal/cache"
	"github.com/andresuchdata/procurement-dashboard/internal/config"
	"github.com/andresuchdata/procurement-dashboard/internal/dataset"
	"github.com/andresuchdata/procurement-dashboard/internal/drive"
	"github.com/andresuchdata/procurement-dashboard/internal/service"
	"github.com/andresuchdata/procurement-dashboard/internal/source"
	"github.com/andresuchdata/procurement-dashboard/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Load the dataset; the dashboard cannot serve anything without it
	reader, err := source.New(ctx, cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("source", cfg.Dataset.Source).Msg("Failed to configure dataset source")
	}
	ds := dataset.New(reader, dataset.Options{Year: cfg.Reporting.Year})
	if err := ds.Load(ctx); err != nil {
		logger.Log.Fatal().Err(err).Str("source", reader.Name()).Msg("Failed to load dataset")
	}

	// Initialize services
	preparedCache, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Prepared cache unavailable, continuing without it")
		preparedCache = cache.NewNoop()
	}
	dashboardService := service.NewDashboardService(ds, preparedCache, service.Options{
		TopN:          cfg.Reporting.TopN,
		UpdateWorkers: cfg.Reporting.UpdateWorkers,
	})
	if err := dashboardService.WarmUp(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to prepare charts")
	}

	services := &api.Services{DashboardService: dashboardService, DriveFolder: cfg.Drive.FolderID}
	if cfg.Drive.CredentialsJSON != "" {
		driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Drive admin routes disabled")
		} else {
			services.Drive = driveService
		}
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("version", ds.Version()).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
