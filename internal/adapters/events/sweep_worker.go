package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mladenvic/promoaffiliate/internal/application"
)

// SweepWorker runs the commission auto-approval sweep on a fixed interval.
// The first sweep starts immediately.
type SweepWorker struct {
	logger   *slog.Logger
	service  *application.Service
	interval time.Duration
}

func NewSweepWorker(logger *slog.Logger, service *application.Service, interval time.Duration) *SweepWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &SweepWorker{logger: logger, service: service, interval: interval}
}

func (w *SweepWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		res, err := w.service.AutoApproveCommissions(ctx)
		switch {
		case err != nil && !errors.Is(err, context.Canceled):
			w.logger.ErrorContext(ctx, "auto approval sweep failed",
				"module", "events.sweep_worker",
				"layer", "adapter",
				"operation", "auto_approve",
				"outcome", "failure",
				"approved", res.Approved,
				"error", err,
			)
		case res.Skipped:
			w.logger.InfoContext(ctx, "auto approval sweep held by another replica",
				"module", "events.sweep_worker",
				"layer", "adapter",
				"operation", "auto_approve",
				"outcome", "skipped",
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
