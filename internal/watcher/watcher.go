// Package watcher surfaces new orders to operators. The store has no push
// channel, so the watcher polls, diffs each snapshot against a known-ID set
// and emits one event per order it has never seen.
package watcher

import (
	"context"
	"time"

	"github.com/onedream/storefront/internal/metrics"
	"github.com/onedream/storefront/internal/models"
	"github.com/onedream/storefront/internal/notify"
	"go.uber.org/zap"
)

const (
	// DefaultInterval is the poll cadence.
	DefaultInterval = 30 * time.Second
	// DefaultCallTimeout bounds a single store list call. A timed-out call
	// is a skipped cycle, not a failure.
	DefaultCallTimeout = 10 * time.Second
)

// OrderLister is the read-only slice of the order store the watcher polls
type OrderLister interface {
	// ListOrders returns orders matching the filter
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
}

// CursorRepository persists the watcher's high-water mark across restarts
type CursorRepository interface {
	// LoadCursor returns the stored cursor, or nil when none exists
	LoadCursor(ctx context.Context) (*models.WatcherCursor, error)
	// SaveCursor stores the cursor, replacing any previous value
	SaveCursor(ctx context.Context, cursor models.WatcherCursor) error
}

// Watcher is the recurring new-order detector. One instance runs one
// background loop; the known-ID set is owned by the instance, never global.
type Watcher struct {
	orders      OrderLister
	cursor      CursorRepository
	notifier    notify.Notifier
	logger      *zap.Logger
	interval    time.Duration
	callTimeout time.Duration

	// known holds every order code already observed. Membership is
	// authoritative for newness; the time-window filter below only narrows.
	known map[string]struct{}
	// prevCycleStart feeds the secondary time-window filter guarding
	// against the store returning stale entries.
	prevCycleStart time.Time
	maxSeen        models.WatcherCursor
}

// New creates new Watcher instance
func New(orders OrderLister, cursor CursorRepository, notifier notify.Notifier, logger *zap.Logger, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		orders:      orders,
		cursor:      cursor,
		notifier:    notifier,
		logger:      logger,
		interval:    interval,
		callTimeout: DefaultCallTimeout,
		known:       map[string]struct{}{},
	}
}

// Run seeds the known-ID set and polls until ctx is cancelled. Seeding is
// retried on the tick cadence until it succeeds and no cycle runs before
// it has, so a store outage at startup cannot turn pre-existing orders
// into announcements. A failing cycle is logged and skipped; nothing that
// happens in a cycle stops the loop.
func (w *Watcher) Run(ctx context.Context) {
	seeded := w.trySeed(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("order watcher is done")
			return
		case <-ticker.C:
			if !seeded {
				seeded = w.trySeed(ctx)
				continue
			}
			// the cycle runs inline, so an overrunning cycle drops the
			// next tick instead of queueing it
			if err := w.cycle(ctx); err != nil {
				if ctx.Err() != nil {
					continue
				}
				w.logger.Error("watcher cycle skipped", zap.Error(err))
				metrics.WatcherCycles.WithLabelValues("skipped").Inc()
				continue
			}
			metrics.WatcherCycles.WithLabelValues("ok").Inc()
		}
	}
}

func (w *Watcher) trySeed(ctx context.Context) bool {
	if err := w.seed(ctx); err != nil {
		if ctx.Err() == nil {
			w.logger.Error("watcher seed failed, will retry", zap.Error(err))
			metrics.WatcherCycles.WithLabelValues("skipped").Inc()
		}
		return false
	}
	return true
}

// seed marks every order already announced as known. On the first ever run
// that is every existing order; after a restart the durable cursor decides,
// so orders created while the process was down still get announced.
func (w *Watcher) seed(ctx context.Context) error {
	seedStart := time.Now()

	cursor, err := w.cursor.LoadCursor(ctx)
	if err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, w.callTimeout)
	defer cancel()

	orders, err := w.orders.ListOrders(callCtx, models.OrderFilter{Ascending: true})
	if err != nil {
		return err
	}

	for _, order := range orders {
		if cursor == nil || !afterCursor(order, *cursor) {
			w.known[order.OrderID] = struct{}{}
		}
		w.advanceMaxSeen(order)
	}

	if cursor != nil {
		w.prevCycleStart = cursor.LastCreatedAt
	} else {
		w.prevCycleStart = seedStart
		if err := w.saveCursor(ctx); err != nil {
			return err
		}
	}

	w.logger.Info("watcher seeded",
		zap.Int("known", len(w.known)),
		zap.Int("orders", len(orders)))

	return nil
}

// cycle lists the store once, announces unseen orders and advances the
// cursor. Codes are added to the known set before emission, so the check
// stays idempotent even if emission fails mid-cycle.
func (w *Watcher) cycle(ctx context.Context) error {
	cycleStart := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, w.callTimeout)
	defer cancel()

	orders, err := w.orders.ListOrders(callCtx, models.OrderFilter{Ascending: true})
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		// cancelled while listing; discard the snapshot
		return ctx.Err()
	}

	for _, order := range orders {
		if _, ok := w.known[order.OrderID]; ok {
			continue
		}
		w.known[order.OrderID] = struct{}{}
		w.advanceMaxSeen(order)

		// stale entries resurfacing from before the previous cycle are
		// absorbed without an announcement
		if order.CreatedAt.Before(w.prevCycleStart) {
			w.logger.Warn("stale order absorbed without notification",
				zap.String("order", order.OrderID),
				zap.Time("createdAt", order.CreatedAt))
			continue
		}

		event := notify.EventForOrder(order)
		if err := w.notifier.NotifyNewOrder(ctx, event); err != nil {
			w.logger.Error("notification emit failed",
				zap.String("order", order.OrderID),
				zap.Error(err))
			continue
		}

		metrics.NewOrdersDetected.Inc()
		w.logger.Info("new order detected",
			zap.String("order", order.OrderID),
			zap.String("user", order.UserName))
	}

	w.prevCycleStart = cycleStart

	if err := w.saveCursor(ctx); err != nil {
		w.logger.Error("cursor save failed", zap.Error(err))
	}

	return nil
}

func (w *Watcher) advanceMaxSeen(order models.Order) {
	if afterCursor(order, w.maxSeen) {
		w.maxSeen = models.WatcherCursor{
			LastCreatedAt: order.CreatedAt,
			LastOrderID:   order.OrderID,
		}
	}
}

func (w *Watcher) saveCursor(ctx context.Context) error {
	if w.maxSeen.LastOrderID == "" {
		return nil
	}
	return w.cursor.SaveCursor(ctx, w.maxSeen)
}

// afterCursor reports whether the order sorts after the cursor position,
// tie-broken by order code
func afterCursor(order models.Order, cursor models.WatcherCursor) bool {
	if order.CreatedAt.After(cursor.LastCreatedAt) {
		return true
	}
	return order.CreatedAt.Equal(cursor.LastCreatedAt) && order.OrderID > cursor.LastOrderID
}
