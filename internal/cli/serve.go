package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iconidentify/xresolve/internal/api"
	"github.com/iconidentify/xresolve/internal/api/handler"
	"github.com/iconidentify/xresolve/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  serveAction,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serveAction(cmd *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting xresolve",
		"version", Version,
		"build_time", BuildTime,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	router := api.NewRouter(buildHandlers(a), cfg.Server.APIKey, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server",
			"addr", srv.Addr,
			"threads", cfg.Thread.Enabled,
			"history", cfg.History.Path != "",
		)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func buildHandlers(a *app) api.Handlers {
	checks := map[string]handler.Pinger{}
	if a.cache != nil {
		checks["redis"] = a.cache
	}
	if a.history != nil {
		checks["history"] = a.history
	}

	h := api.Handlers{
		Thread: handler.NewThreadHandler(a.threads),
		Health: handler.NewHealthHandler(checks),
	}
	if a.history != nil {
		h.Resolve = handler.NewResolveHandler(a.resolver, a.history, a.logger)
		h.History = handler.NewHistoryHandler(a.history, a.logger)
	} else {
		h.Resolve = handler.NewResolveHandler(a.resolver, nil, a.logger)
	}
	return h
}
