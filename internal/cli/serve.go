package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	apphttp "wastelog/internal/http"
	applog "wastelog/internal/log"
	"wastelog/internal/middleware/ratelimit"
)

const (
	shutdownTimeout = 30 * time.Second
	cacheSweepEvery = 10 * time.Minute
)

func newServeCmd(r *root) *cobra.Command {
	var (
		port      string
		rateLimit int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, _ []string, app *App) error {
			if port == "" {
				port = app.Config.Port
			}
			return runServe(cmd.Context(), app, ":"+port, rateLimit)
		}),
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default PORT)")
	cmd.Flags().IntVar(&rateLimit, "rate-limit", 60, "mutating requests allowed per client per minute")
	return cmd
}

func runServe(ctx context.Context, app *App, addr string, rateLimit int) error {
	logger := app.Logger.WithComponent(applog.ComponentHTTP)

	srv := apphttp.NewServer(addr, app.Service, app.Logger, apphttp.Options{
		RateLimit: ratelimit.Config{RequestsPerWindow: rateLimit, Window: time.Minute},
	})
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 60 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	app.Caches.StartCleanup(cacheSweepEvery)

	shutdownCtx, done := GracefulShutdown(ctx, logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	logger.Info("Starting wastelog server",
		"addr", addr,
		"backend", app.Config.StorageBackend,
		applog.FieldEntries, app.Service.EntryCount())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
	return nil
}
