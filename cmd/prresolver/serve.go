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

	"github.com/spf13/cobra"

	httphandler "github.com/ericfisherdev/prresolver/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/prresolver/internal/adapter/driving/web"
)

func newServeCmd() *cobra.Command {
	var listenAddr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and HTML reports over HTTP",
		Long: `Serve the review context API under /api/v1 and HTML reports under
/repos/{owner}/{repo}/pulls/{number}/report. Every request fetches fresh
state from GitHub.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(ctx, func(a *app) error {
				addr := a.cfg.ListenAddr
				if listenAddr != "" {
					addr = listenAddr
				}
				if err := a.cfg.RequireToken(); err != nil {
					slog.Warn("serving without a GitHub token: review threads and resolution are unavailable", "error", err)
				}
				return serve(ctx, a, addr)
			})
		},
	}

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (overrides PRRESOLVER_LISTEN_ADDR)")
	return serveCmd
}

// serve runs the HTTP server until ctx is cancelled, then drains it.
func serve(ctx context.Context, a *app, addr string) error {
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(a.contextSvc, a.threadSvc, slog.Default()))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(a.contextSvc, slog.Default()))

	srv := &http.Server{
		Addr:              addr,
		Handler:           httphandler.ApplyMiddleware(mux, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
