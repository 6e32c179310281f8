package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, l *MemoryLedger, stock int) Product {
	t.Helper()
	p, err := l.Create(context.Background(), Product{
		Name:  "Keyboard",
		Price: decimal.RequireFromString("49.90"),
		Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func TestMemoryLedger_CreateRejectsInvalid(t *testing.T) {
	l := NewMemoryLedger()
	_, err := l.Create(context.Background(), Product{Name: "x", Stock: -1})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = l.Create(context.Background(), Product{Stock: 1})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMemoryLedger_AdjustAndHasStock(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	p := seed(t, l, 10)

	ok, err := l.HasStock(ctx, p.ID, 10)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := l.Adjust(ctx, p.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	ok, err = l.HasStock(ctx, p.ID, 8)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = l.Adjust(ctx, p.ID, -8)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	got, err = l.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock, "rejected adjust must not change stock")

	got, err = l.Adjust(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
}

func TestMemoryLedger_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	_, err := l.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.HasStock(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.Adjust(ctx, "missing", -1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryLedger_ConcurrentDecrementsNeverGoNegative(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	p := seed(t, l, 25)

	var ok, rejected int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Adjust(ctx, p.ID, -1); err != nil {
				atomic.AddInt64(&rejected, 1)
				return
			}
			atomic.AddInt64(&ok, 1)
		}()
	}
	wg.Wait()

	got, err := l.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(25), ok)
	assert.Equal(t, int64(75), rejected)
	assert.Equal(t, 0, got.Stock)
}

func TestMemoryLedger_ListSortedByName(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	for _, n := range []string{"Mouse", "Cable", "Monitor"} {
		_, err := l.Create(ctx, Product{Name: n, Price: decimal.NewFromInt(1)})
		require.NoError(t, err)
	}
	ps, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 3)
	assert.Equal(t, "Cable", ps[0].Name)
	assert.Equal(t, "Mouse", ps[2].Name)
}
