package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"piano-quest/internal/common/config"
	"piano-quest/internal/common/logger"
	"piano-quest/internal/devserver"
	"piano-quest/internal/devserver/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("piano-quest-devserver", cfg.Debug)
	logger.Info().Bool("debug", cfg.Debug).Msg("Starting development backend")

	content, err := seed.Load(cfg.Server.SeedPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Server.SeedPath).Msg("Failed to load seed")
	}
	if cfg.Server.BotToken == "" {
		logger.Warn().Msg("BOT_TOKEN not set, telegram login is disabled")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      devserver.NewRouter(cfg, content),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
