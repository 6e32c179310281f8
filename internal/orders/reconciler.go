package orders

import (
	"context"
	"errors"
	"time"

	"github.com/ariefcatur/go-shop-orders/internal/metrics"
	"go.uber.org/zap"
)

// Reconciler cancels orders that have sat in PENDING longer than MaxAge.
// A PENDING order never holds a reservation, so cancelling it does not touch
// the stock ledger.
type Reconciler struct {
	Coordinator *Coordinator
	MaxAge      time.Duration
	Interval    time.Duration
	Log         *zap.Logger
}

// RunOnce returns how many orders it cancelled.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	pending, err := r.Coordinator.Store.ListByStatus(ctx, StatusPending)
	if err != nil {
		return 0, err
	}
	cutoff := r.Coordinator.now().Add(-r.MaxAge)

	n := 0
	for _, o := range pending {
		if o.UpdatedAt.After(cutoff) {
			continue
		}
		if _, err := r.Coordinator.Cancel(ctx, o.ID); err != nil {
			// status bisa sudah bergeser (confirm telat); bukan error job
			if errors.Is(err, ErrInvalidTransition) {
				continue
			}
			r.log().Warn("reconcile cancel failed", zap.String("order_id", o.ID), zap.Error(err))
			continue
		}
		metrics.PendingReconciled.Inc()
		r.log().Info("stale pending order cancelled", zap.String("order_id", o.ID),
			zap.Time("updated_at", o.UpdatedAt))
		n++
	}
	return n, nil
}

// Run blocks until ctx is done.
func (r *Reconciler) Run(ctx context.Context) error {
	if r.Interval <= 0 {
		return nil
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.log().Warn("reconcile pass failed", zap.Error(err))
			}
		}
	}
}

func (r *Reconciler) log() *zap.Logger {
	if r.Log != nil {
		return r.Log
	}
	return zap.NewNop()
}
