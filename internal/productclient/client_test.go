package productclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariefcatur/go-shop-orders/internal/catalog"
	"github.com/ariefcatur/go-shop-orders/internal/httpx"
	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// productAPI spins up the real product-api router over an in-memory ledger.
func productAPI(t *testing.T, stock int) (*Client, *catalog.MemoryLedger, catalog.Product) {
	t.Helper()
	ledger := catalog.NewMemoryLedger()
	p, err := ledger.Create(context.Background(), catalog.Product{
		Name: "USB-C Hub", Price: decimal.RequireFromString("19.99"), Stock: stock,
	})
	require.NoError(t, err)

	r := httpx.NewRouter(nil)
	(&httpx.ProductsHandler{Ledger: ledger, Service: "product-api"}).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return New(srv.URL, time.Second), ledger, p
}

func TestClient_FetchAndHasStock(t *testing.T) {
	ctx := context.Background()
	c, _, p := productAPI(t, 5)

	got, err := c.Fetch(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.True(t, p.Price.Equal(got.Price))
	assert.Equal(t, 5, got.Stock)

	ok, err := c.HasStock(ctx, p.ID, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.HasStock(ctx, p.ID, 6)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_NotFound(t *testing.T) {
	ctx := context.Background()
	c, _, _ := productAPI(t, 5)

	_, err := c.Fetch(ctx, "missing")
	assert.ErrorIs(t, err, orders.ErrProductNotFound)
	_, err = c.HasStock(ctx, "missing", 1)
	assert.ErrorIs(t, err, orders.ErrProductNotFound)
	assert.ErrorIs(t, c.Adjust(ctx, "missing", -1), orders.ErrProductNotFound)
}

func TestClient_Adjust(t *testing.T) {
	ctx := context.Background()
	c, ledger, p := productAPI(t, 5)

	require.NoError(t, c.Adjust(ctx, p.ID, -3))
	err := c.Adjust(ctx, p.ID, -3)
	assert.ErrorIs(t, err, orders.ErrInsufficientStock)
	require.NoError(t, c.Adjust(ctx, p.ID, 3))

	cur, err := ledger.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, cur.Stock)
}

func TestClient_ServerErrorIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"db down"}`))
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).Adjust(context.Background(), "p", -1)
	assert.ErrorIs(t, err, orders.ErrTransport)
	assert.Contains(t, err.Error(), "db down")
}

func TestClient_GarbageBodyIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>proxy</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Fetch(context.Background(), "p")
	assert.ErrorIs(t, err, orders.ErrTransport)
}

func TestClient_TimeoutIsTransport(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := New(srv.URL, 50*time.Millisecond).HasStock(context.Background(), "p", 1)
	assert.ErrorIs(t, err, orders.ErrTransport)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_UnreachableIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Fetch(context.Background(), "p")
	assert.ErrorIs(t, err, orders.ErrTransport)
}

func TestCoordinatorOverHTTP(t *testing.T) {
	ctx := context.Background()
	c, ledger, p := productAPI(t, 10)
	coord := &orders.Coordinator{Store: orders.NewMemoryStore(), Products: c}

	o, err := coord.Create(ctx, orders.CreateRequest{UserID: "u-1", ProductID: p.ID, Quantity: 3, PaymentMethod: "CARD"})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusConfirmed, o.Status)
	assert.True(t, decimal.RequireFromString("59.97").Equal(o.TotalPrice))

	_, err = coord.Create(ctx, orders.CreateRequest{UserID: "u-1", ProductID: p.ID, Quantity: 8, PaymentMethod: "CARD"})
	assert.ErrorIs(t, err, orders.ErrInsufficientStock)

	_, err = coord.Cancel(ctx, o.ID)
	require.NoError(t, err)
	cur, _ := ledger.Get(ctx, p.ID)
	assert.Equal(t, 10, cur.Stock)
}
