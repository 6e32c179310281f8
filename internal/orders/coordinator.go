package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/ariefcatur/go-shop-orders/internal/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxCancelAttempts bounds the re-read loop when an order's status moves
// between load and compare-and-set.
const maxCancelAttempts = 3

// Coordinator runs the two-step order protocol against the order store and
// the remote stock ledger. Tidak ada lock lintas store/ledger: correctness
// bergantung pada Adjust yang atomik di sisi ledger dan compare-and-set di
// sisi store.
type Coordinator struct {
	Store    Store
	Products ProductClient
	Events   EventSink
	Log      *zap.Logger
	Now      func() time.Time
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

func (c *Coordinator) log() *zap.Logger {
	if c.Log != nil {
		return c.Log
	}
	return zap.NewNop()
}

// load reads the order a write decision is based on, bypassing any cache.
func (c *Coordinator) load(ctx context.Context, id string) (Order, error) {
	if f, ok := c.Store.(FreshReader); ok {
		return f.GetFresh(ctx, id)
	}
	return c.Store.Get(ctx, id)
}

func (c *Coordinator) emit(ctx context.Context, eventType, orderID string, payload any) {
	if c.Events != nil {
		c.Events.Emit(ctx, eventType, orderID, payload)
	}
}

// Create validates the product and stock, persists the order as PENDING and
// then reserves stock. The PENDING insert is the durability checkpoint: when
// the reservation fails afterwards the order stays PENDING and is returned
// together with the error, for the reconciler or an operator to pick up.
func (c *Coordinator) Create(ctx context.Context, req CreateRequest) (Order, error) {
	if err := req.Validate(); err != nil {
		return Order{}, err
	}
	// sekali mulai, creation jalan sampai selesai walau client disconnect
	ctx = context.WithoutCancel(ctx)
	l := c.log().With(zap.String("product_id", req.ProductID), zap.Int("qty", req.Quantity))

	// 1) produk harus ada
	p, err := c.Products.Fetch(ctx, req.ProductID)
	if err != nil {
		metrics.OrdersCreated.WithLabelValues("rejected").Inc()
		return Order{}, err
	}

	// 2) cek stok (point-in-time, bukan reservasi)
	ok, err := c.Products.HasStock(ctx, req.ProductID, req.Quantity)
	if err != nil {
		metrics.OrdersCreated.WithLabelValues("rejected").Inc()
		return Order{}, err
	}
	if !ok {
		metrics.OrdersCreated.WithLabelValues("rejected").Inc()
		return Order{}, NewInsufficientStock(req.ProductID, req.Quantity)
	}

	// 3) total dihitung sekali, tidak berubah lagi
	total := p.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))

	// 4) durability checkpoint
	now := c.now()
	o, err := c.Store.Insert(ctx, Order{
		UserID:          req.UserID,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		TotalPrice:      total,
		Status:          StatusPending,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		metrics.OrdersCreated.WithLabelValues("rejected").Inc()
		return Order{}, fmt.Errorf("persist order: %w", err)
	}
	l = l.With(zap.String("order_id", o.ID))
	c.emit(ctx, EventOrderCreated, o.ID, OrderCreatedPayload{
		OrderID: o.ID, UserID: o.UserID, ProductID: o.ProductID, Quantity: o.Quantity, TotalPrice: o.TotalPrice,
	})

	// 5) reserve
	if err := c.Products.Adjust(ctx, o.ProductID, -o.Quantity); err != nil {
		l.Warn("stock reservation failed, order left PENDING", zap.Error(err), zap.Stringer("kind", KindOf(err)))
		metrics.OrdersCreated.WithLabelValues("pending").Inc()
		c.emit(ctx, EventStockReservationFailed, o.ID, StockReservationFailedPayload{
			OrderID: o.ID, ProductID: o.ProductID, Quantity: o.Quantity,
			Reason: KindOf(err).String(), Detail: err.Error(),
		})
		return o, err
	}

	confirmed, ok, err := c.Store.UpdateStatusIf(ctx, o.ID, StatusPending, StatusConfirmed)
	if err != nil {
		// hasil write ambigu: stok tetap dipegang, order tetap PENDING
		l.Error("confirm failed after reservation", zap.Error(err))
		metrics.OrdersCreated.WithLabelValues("pending").Inc()
		return o, fmt.Errorf("confirm order %s: %w", o.ID, err)
	}
	if !ok {
		// order sudah di-cancel selagi reservasi jalan; kembalikan stoknya
		cur, err := c.load(ctx, o.ID)
		if err != nil {
			// CAS meleset pasti: satu-satunya jalan keluar dari PENDING selain confirm adalah cancel
			l.Warn("reload after confirm miss failed", zap.Error(err))
			cur = o
			cur.Status = StatusCancelled
		}
		l.Warn("order moved before confirm, releasing reservation", zap.String("status", string(cur.Status)))
		c.release(ctx, l, o)
		metrics.OrdersCreated.WithLabelValues("rejected").Inc()
		return cur, NewInvalidTransition(cur.Status, StatusConfirmed)
	}

	metrics.OrdersCreated.WithLabelValues("confirmed").Inc()
	c.emit(ctx, EventOrderConfirmed, o.ID, OrderConfirmedPayload{
		OrderID: o.ID, ProductID: o.ProductID, Reserved: o.Quantity,
	})
	l.Info("order confirmed", zap.String("total_price", confirmed.TotalPrice.String()))
	return confirmed, nil
}

// Cancel moves an order to CANCELLED and gives back its reservation, if it
// holds one. The status change is claimed with compare-and-set before the
// release, so concurrent or repeated cancels credit stock at most once. A
// failed release does not stop the cancellation; it is logged and published
// as StockCompensationFailed.
func (c *Coordinator) Cancel(ctx context.Context, id string) (Order, error) {
	ctx = context.WithoutCancel(ctx)
	l := c.log().With(zap.String("order_id", id))

	var (
		prev      Order
		cancelled Order
	)
	for attempt := 0; ; attempt++ {
		o, err := c.load(ctx, id)
		if err != nil {
			return Order{}, err
		}
		if !CanCancel(o.Status) {
			return Order{}, NewInvalidTransition(o.Status, StatusCancelled)
		}
		updated, ok, err := c.Store.UpdateStatusIf(ctx, id, o.Status, StatusCancelled)
		if err != nil {
			return Order{}, fmt.Errorf("cancel order %s: %w", id, err)
		}
		if ok {
			prev, cancelled = o, updated
			break
		}
		if attempt+1 >= maxCancelAttempts {
			return Order{}, NewInvalidTransition(o.Status, StatusCancelled)
		}
	}

	released := 0
	if HoldsReservation(prev.Status) && c.release(ctx, l, prev) {
		released = prev.Quantity
	}

	metrics.OrdersCancelled.WithLabelValues(string(prev.Status)).Inc()
	c.emit(ctx, EventOrderCancelled, id, OrderCancelledPayload{
		OrderID: id, FromStatus: prev.Status, Released: released,
	})
	l.Info("order cancelled", zap.String("from", string(prev.Status)), zap.Int("released", released))
	return cancelled, nil
}

// release credits o.Quantity back to the ledger. Best effort.
func (c *Coordinator) release(ctx context.Context, l *zap.Logger, o Order) bool {
	err := c.Products.Adjust(ctx, o.ProductID, o.Quantity)
	if err == nil {
		return true
	}
	l.Error("failed to restore stock", zap.Error(err),
		zap.String("product_id", o.ProductID), zap.Int("qty", o.Quantity))
	metrics.CompensationFailures.Inc()
	c.emit(ctx, EventStockCompensationFailed, o.ID, StockCompensationFailedPayload{
		OrderID: o.ID, ProductID: o.ProductID, Quantity: o.Quantity, Detail: err.Error(),
	})
	return false
}

// UpdateStatus applies an operator-driven status change. CANCELLED goes
// through Cancel so the reservation is released; other targets are checked
// against CanTransition and written with compare-and-set.
func (c *Coordinator) UpdateStatus(ctx context.Context, id string, to Status) (Order, error) {
	if !to.Valid() {
		return Order{}, NewValidation("unknown status %q", to)
	}
	if to == StatusCancelled {
		return c.Cancel(ctx, id)
	}

	o, err := c.load(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(o.Status, to) {
		return Order{}, NewInvalidTransition(o.Status, to)
	}
	if o.Status == to {
		return o, nil
	}
	updated, ok, err := c.Store.UpdateStatusIf(ctx, id, o.Status, to)
	if err != nil {
		return Order{}, fmt.Errorf("update order %s: %w", id, err)
	}
	if !ok {
		return Order{}, NewInvalidTransition(o.Status, to)
	}
	c.emit(ctx, EventOrderStatusChanged, id, OrderStatusChangedPayload{OrderID: id, From: o.Status, To: to})
	return updated, nil
}

func (c *Coordinator) Get(ctx context.Context, id string) (Order, error) {
	return c.Store.Get(ctx, id)
}

func (c *Coordinator) List(ctx context.Context) ([]Order, error) {
	return c.Store.List(ctx)
}

func (c *Coordinator) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return c.Store.ListByUser(ctx, userID)
}

func (c *Coordinator) ListByStatus(ctx context.Context, s Status) ([]Order, error) {
	return c.Store.ListByStatus(ctx, s)
}
