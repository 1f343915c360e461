package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mailrelay/mailrelay/internal/config"
	"github.com/mailrelay/mailrelay/internal/handler"
	"github.com/mailrelay/mailrelay/internal/logger"
	"github.com/mailrelay/mailrelay/internal/middleware"
	"github.com/mailrelay/mailrelay/internal/router"
	"github.com/mailrelay/mailrelay/internal/service"
)

func main() {
	// A missing .env is normal outside local development
	envErr := godotenv.Load()

	// Load configuration
	store, err := config.Load(os.Getenv("MAILRELAY_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := store.Current()

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", handler.Version).Msg("starting mailrelay server")
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("failed to load .env file")
	}

	// Pick up config file edits without a restart
	if file := store.File(); file != "" {
		store.OnChange(func(c *config.Config) {
			log.Info().Str("file", file).Str("provider", c.Email.Provider).Msg("configuration reloaded")
		})
		store.Watch(func(err error) {
			log.Error().Err(err).Msg("failed to reload configuration")
		})
		log.Info().Str("file", file).Msg("watching config file")
	}

	// Initialize services
	emailSvc := service.NewEmailService(store, log)
	if err := emailSvc.Ready(); err != nil {
		log.Warn().Err(err).Msg("email provider is not configured; sends will fail until it is")
	}

	// Initialize handlers and middleware
	h := handler.New(log, emailSvc)
	mw := middleware.New(log)

	// Set up router
	r := router.New(h, mw)

	// Create HTTP server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
