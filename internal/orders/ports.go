package orders

import "context"

// Store persists orders. Implementations return *Error of KindOrderNotFound
// for unknown ids.
type Store interface {
	Insert(ctx context.Context, o Order) (Order, error)
	Get(ctx context.Context, id string) (Order, error)
	// UpdateStatusIf only writes when the current status equals from.
	// ok=false with a nil error means the row exists but has moved on.
	UpdateStatusIf(ctx context.Context, id string, from, to Status) (o Order, ok bool, err error)
	List(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListByStatus(ctx context.Context, status Status) ([]Order, error)
}

// FreshReader is implemented by caching Stores. The coordinator decides
// transitions on GetFresh so a stale snapshot never causes a refusal.
type FreshReader interface {
	GetFresh(ctx context.Context, id string) (Order, error)
}

// ProductClient is the order side's view of the stock ledger. Every call
// crosses a network boundary; failures to reach the ledger come back as
// KindTransport and are never retried here.
type ProductClient interface {
	Fetch(ctx context.Context, productID string) (Product, error)
	HasStock(ctx context.Context, productID string, qty int) (bool, error)
	Adjust(ctx context.Context, productID string, delta int) error
}

// EventSink receives lifecycle notifications. Emit must not block the
// coordinator on delivery.
type EventSink interface {
	Emit(ctx context.Context, eventType, orderID string, payload any)
}

type nopSink struct{}

func (nopSink) Emit(context.Context, string, string, any) {}

// NopSink drops every event.
var NopSink EventSink = nopSink{}
