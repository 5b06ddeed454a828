package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/soundctl/rewind/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the activity intake and report HTTP service until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.activityRepo()
	if err != nil {
		return err
	}

	engine, err := r.reportEngine()
	if err != nil {
		return err
	}

	port := cmd.Int("port")
	if port == 0 {
		port = r.config.Server.Port
	}

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Handler(server.NewActivityHandler(repo))
	router.Handler(server.NewReportHandler(engine))
	router.Handler(&server.HealthHandler{})

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Keep the stored token fresh while the service runs.
	if svc, err := r.service(); err == nil {
		go svc.Tokens().RunRefresher(ctx, time.Hour)
	} else {
		r.logger.Warnf("token refresher disabled: %v", err)
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("listening at http://%s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		r.logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}
