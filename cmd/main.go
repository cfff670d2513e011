package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"hive-vision/config"
	telegram "hive-vision/internal/api"
	"hive-vision/internal/api/rest"
	"hive-vision/internal/container"
	"hive-vision/internal/infrastructure/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)

	appContainer, err := container.FromConfig(cfg, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Модель можно обучить позже командой train, сервис стартует и без неё
	if err := appContainer.InspectionService.LoadFrom(ctx, appContainer.Artifacts); err != nil {
		logger.Warn("model artifacts not loaded", "dir", cfg.Dataset.ArtifactDir, "error", err)
	} else {
		logger.Info("model artifacts loaded", "dir", cfg.Dataset.ArtifactDir)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := rest.NewHandler(appContainer.InspectionService, appContainer.ExperimentService, metrics.New(), logger)
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      rest.NewRouter(handler, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer.UserService, appContainer.InspectionService, logger)
		if err != nil {
			logger.Error("failed to create bot", "error", err)
			os.Exit(1)
		}
		go func() {
			logger.Info("bot is running")
			if err := bot.Run(ctx); err != nil {
				logger.Error("bot error", "error", err)
			}
		}()
	} else {
		logger.Info("TELEGRAM_TOKEN is not set, bot disabled")
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server gracefully stopped")
}
