// Package worker contains background deliveries that run beside the HTTP server.
package worker

import (
	"context"
	"log/slog"
	"time"

	"permitdesk/config"
	"permitdesk/internal/delivery"
	"permitdesk/internal/usecase"

	"go.uber.org/fx"
)

// cleanupWorker periodically purges expired refresh tokens and spent
// blacklist entries so the token tables do not grow without bound.
type cleanupWorker struct {
	interval  time.Duration
	logger    *slog.Logger
	sessionUc usecase.SessionUsecase
	done      chan struct{}
}

// CleanupParams holds dependencies for the cleanup worker.
type CleanupParams struct {
	fx.In

	Lc        fx.Lifecycle
	Cfg       *config.Config
	Logger    *slog.Logger
	SessionUc usecase.SessionUsecase
}

// NewCleanupWorker creates the token cleanup delivery.
func NewCleanupWorker(params CleanupParams) delivery.Delivery {
	w := &cleanupWorker{
		interval:  params.Cfg.Auth.CleanupInterval,
		logger:    params.Logger,
		sessionUc: params.SessionUc,
		done:      make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: w.stop,
	})

	return w
}

// Serve runs one sweep immediately, then one per interval, until stopped.
func (w *cleanupWorker) Serve(ctx context.Context) error {
	w.logger.Info("Starting token cleanup worker", slog.Duration("interval", w.interval))

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep runs a single cleanup pass. Failures are logged and retried on the
// next tick; a missed sweep only delays the purge.
func (w *cleanupWorker) sweep(ctx context.Context) {
	if _, err := w.sessionUc.CleanupExpiredTokens(ctx); err != nil {
		w.logger.Error("Token cleanup sweep failed", slog.Any("error", err))
	}
}

func (w *cleanupWorker) stop(context.Context) error {
	w.logger.Info("Stopping token cleanup worker")
	close(w.done)

	return nil
}
