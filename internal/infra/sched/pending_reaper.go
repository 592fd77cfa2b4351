package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"digital-storefront/internal/domain/ports/usecase"
	"digital-storefront/internal/infra/metrics"
)

// PendingReaper periodically fails transactions abandoned in pending.
// A later payment.captured webhook still moves a reaped transaction to success.
type PendingReaper struct {
	interval time.Duration
	ttl      time.Duration
	payments usecase.PendingReaper
	log      *zerolog.Logger
}

func NewPendingReaper(interval, ttl time.Duration, payments usecase.PendingReaper, logger *zerolog.Logger) *PendingReaper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	l := logger.With().Str("component", "PendingReaper").Logger()
	return &PendingReaper{interval: interval, ttl: ttl, payments: payments, log: &l}
}

// Enabled reports whether a positive TTL was configured.
func (w *PendingReaper) Enabled() bool { return w.ttl > 0 }

func (w *PendingReaper) Run(ctx context.Context) error {
	if !w.Enabled() {
		w.log.Info().Msg("pending reaper disabled")
		return nil
	}
	w.log.Info().Dur("ttl", w.ttl).Dur("interval", w.interval).Msg("Starting pending reaper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping pending reaper")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *PendingReaper) tick(ctx context.Context) {
	n, err := w.payments.FailStalePending(ctx, w.ttl)
	if err != nil {
		w.log.Error().Err(err).Msg("pending reaper error")
		return
	}
	if n > 0 {
		metrics.AddTransactionsReaped(n)
		w.log.Info().Int64("count", n).Msg("stale pending transactions failed")
	}
}
