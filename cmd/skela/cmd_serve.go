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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/skela-dev/skela/src/api"
	"github.com/skela-dev/skela/src/app"
	"github.com/skela-dev/skela/src/config"
	"github.com/skela-dev/skela/src/gateway"
)

// ServeCmd starts the chat server
type ServeCmd struct {
	Port int `help:"Listen port (overrides config)"`
}

// Run executes the serve command
func (c *ServeCmd) Run(cli *CLI) error {
	logger := createLogger(cli.LogLevel, cli.LogJSON)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.NewLoader(cli.Config).Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Store.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	logger.Info("database connected", "path", cfg.Storage.DatabasePath)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	api.NewApprovalsHandler(application.Store, logger).RegisterRoutes(r)
	r.Get("/ws/chat", gateway.NewHandler(application.Sessions, logger).ServeHTTP)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	// Streaming over WebSocket needs an unbounded write timeout.
	srv := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
