package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-shop-orders/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ledgerClient serves ProductClient straight from a catalog.MemoryLedger.
// failAdjust, when set, runs before every Adjust and can short-circuit it.
type ledgerClient struct {
	L          *catalog.MemoryLedger
	failAdjust func(delta int) error
}

func mapLedgerErr(id string, qty int, err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return NewProductNotFound(id)
	case errors.Is(err, catalog.ErrInsufficientStock):
		return NewInsufficientStock(id, qty)
	}
	return err
}

func (c *ledgerClient) Fetch(ctx context.Context, id string) (Product, error) {
	p, err := c.L.Get(ctx, id)
	if err != nil {
		return Product{}, mapLedgerErr(id, 0, err)
	}
	return Product{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock}, nil
}

func (c *ledgerClient) HasStock(ctx context.Context, id string, qty int) (bool, error) {
	ok, err := c.L.HasStock(ctx, id, qty)
	if err != nil {
		return false, mapLedgerErr(id, qty, err)
	}
	return ok, nil
}

func (c *ledgerClient) Adjust(ctx context.Context, id string, delta int) error {
	if c.failAdjust != nil {
		if err := c.failAdjust(delta); err != nil {
			return err
		}
	}
	_, err := c.L.Adjust(ctx, id, delta)
	return mapLedgerErr(id, -delta, err)
}

type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSink) Emit(_ context.Context, eventType, _ string, _ any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, eventType)
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

// hookStore lets a test interfere with the confirm step.
type hookStore struct {
	Store
	onConfirm func(ctx context.Context, id string) error
	getErr    error
}

func (s *hookStore) Get(ctx context.Context, id string) (Order, error) {
	if s.getErr != nil {
		return Order{}, s.getErr
	}
	return s.Store.Get(ctx, id)
}

func (s *hookStore) UpdateStatusIf(ctx context.Context, id string, from, to Status) (Order, bool, error) {
	if to == StatusConfirmed && s.onConfirm != nil {
		if err := s.onConfirm(ctx, id); err != nil {
			return Order{}, false, err
		}
	}
	return s.Store.UpdateStatusIf(ctx, id, from, to)
}

type harness struct {
	coord   *Coordinator
	store   *MemoryStore
	ledger  *catalog.MemoryLedger
	client  *ledgerClient
	sink    *recordingSink
	product catalog.Product
}

func newHarness(t *testing.T, price string, stock int) *harness {
	t.Helper()
	ledger := catalog.NewMemoryLedger()
	p, err := ledger.Create(context.Background(), catalog.Product{
		Name:  "Mechanical Keyboard",
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.NoError(t, err)

	h := &harness{
		store:   NewMemoryStore(),
		ledger:  ledger,
		client:  &ledgerClient{L: ledger},
		sink:    &recordingSink{},
		product: p,
	}
	h.coord = &Coordinator{Store: h.store, Products: h.client, Events: h.sink}
	return h
}

func (h *harness) req(qty int) CreateRequest {
	return CreateRequest{UserID: "user-1", ProductID: h.product.ID, Quantity: qty, PaymentMethod: "CREDIT_CARD"}
}

func (h *harness) stock(t *testing.T) int {
	t.Helper()
	p, err := h.ledger.Get(context.Background(), h.product.ID)
	require.NoError(t, err)
	return p.Stock
}

// seedOrder writes an order straight into the store, bypassing the ledger.
func (h *harness) seedOrder(t *testing.T, st Status, qty int, updated time.Time) Order {
	t.Helper()
	o, err := h.store.Insert(context.Background(), Order{
		UserID: "user-1", ProductID: h.product.ID, Quantity: qty,
		TotalPrice: h.product.Price.Mul(decimal.NewFromInt(int64(qty))),
		Status:     st, PaymentMethod: "CREDIT_CARD",
		CreatedAt: updated, UpdatedAt: updated,
	})
	require.NoError(t, err)
	return o
}
