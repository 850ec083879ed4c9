package auction

import (
	"context"
	"log/slog"
	"time"

	"github.com/greencycle/waste-pickup-exchange/internal/metrics"
)

// Sweeper is the durability substitute for the in-memory scheduler: a
// periodic scan for requests whose window elapsed without resolution,
// each handed to the same resolver the timers use.
type Sweeper struct {
	pickupRepo PickupRepository
	resolver   Resolver
	interval   time.Duration
	metrics    *metrics.Registry
	logger     *slog.Logger
}

// NewSweeper creates a recovery sweeper.
func NewSweeper(pickupRepo PickupRepository, resolver Resolver, interval time.Duration, registry *metrics.Registry, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		pickupRepo: pickupRepo,
		resolver:   resolver,
		interval:   interval,
		metrics:    registry,
		logger:     logger,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
// An initial sweep runs immediately to catch requests orphaned by a
// previous process.
func (w *Sweeper) Run(ctx context.Context) {
	w.logger.InfoContext(ctx, "recovery sweep started", "interval", w.interval)

	if _, err := w.SweepOnce(ctx); err != nil {
		w.logger.ErrorContext(ctx, "recovery sweep failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("recovery sweep stopped")
			return
		case <-ticker.C:
			if _, err := w.SweepOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "recovery sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce resolves every overdue request it can and reports how many
// it touched. Individual failures are logged and skipped; the next pass
// retries them.
func (w *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	overdue, err := w.pickupRepo.ListOverdue(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, req := range overdue {
		if err := w.resolver.ResolveAuction(ctx, req.ID); err != nil {
			w.logger.WarnContext(ctx, "sweep resolution failed",
				"request_id", req.ID, "error", err)
			continue
		}
		resolved++
		if w.metrics != nil {
			w.metrics.SweepRecoveredCounter.Add(ctx, 1)
		}
	}

	if resolved > 0 {
		w.logger.InfoContext(ctx, "recovery sweep resolved overdue auctions", "count", resolved)
	}
	return resolved, nil
}
