package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alejandrodnm/aitrader/config"
	"github.com/alejandrodnm/aitrader/internal/application/trader"
	"github.com/alejandrodnm/aitrader/internal/domain"
	"github.com/alejandrodnm/aitrader/internal/ports"
)

// run executes trading cycles until the context is cancelled, or just one
// with -once. A held lease skips the cycle; only ledger corruption stops the
// loop.
func run(ctx context.Context, cfg *config.Config, t *trader.Trader, notifiers []ports.Notifier, once bool) error {
	if once {
		return cycle(ctx, t, notifiers)
	}

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	if err := cycle(ctx, t, notifiers); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := cycle(ctx, t, notifiers); err != nil {
				return err
			}
		}
	}
}

func cycle(ctx context.Context, t *trader.Trader, notifiers []ports.Notifier) error {
	start := time.Now()
	result, err := t.RunCycle(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrLeaseHeld) {
			slog.Info("cycle skipped: another session holds the lease")
			return nil
		}
		return err
	}
	slog.Debug("cycle finished", "elapsed", time.Since(start))

	for _, n := range notifiers {
		if err := n.NotifySession(ctx, *result); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
	return nil
}
