package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() orders.Order {
	ts := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return orders.Order{
		ID:            "o-1",
		UserID:        "u-1",
		ProductID:     "p-1",
		Quantity:      3,
		TotalPrice:    decimal.RequireFromString("29.97"),
		Status:        orders.StatusConfirmed,
		PaymentMethod: "card",
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
}

func TestOrderCache_SetOrder(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewOrderCache(db, time.Minute)
	o := sampleOrder()
	b, _ := json.Marshal(o)

	mock.ExpectSet("order:o-1", string(b), time.Minute).SetVal("OK")

	require.NoError(t, c.SetOrder(context.Background(), o))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderCache_GetOrder_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewOrderCache(db, 0)
	o := sampleOrder()
	b, _ := json.Marshal(o)

	mock.ExpectGet("order:o-1").SetVal(string(b))

	got, ok, err := c.GetOrder(context.Background(), "o-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, orders.StatusConfirmed, got.Status)
	assert.True(t, o.TotalPrice.Equal(got.TotalPrice))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderCache_GetOrder_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewOrderCache(db, 0)

	mock.ExpectGet("order:nope").RedisNil()

	_, ok, err := c.GetOrder(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOrderCache_GetOrder_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewOrderCache(db, 0)

	mock.ExpectGet("order:o-1").SetErr(errors.New("boom"))

	_, ok, err := c.GetOrder(context.Background(), "o-1")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestIdempotencyStore_Flow(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewIdempotencyStore(db, time.Hour, 15*time.Second)
	ctx := context.Background()
	rec := IdemRecord{OrderID: "o-9", Kind: "INSUFFICIENT_STOCK", Error: "insufficient stock for product p-1 (requested 3)"}
	b, _ := json.Marshal(rec)

	mock.ExpectGet("idem:order:map:k1").RedisNil()
	mock.ExpectSetNX("idem:order:create:k1", "1", 15*time.Second).SetVal(true)
	mock.ExpectSet("idem:order:map:k1", string(b), time.Hour).SetVal("OK")
	mock.ExpectGet("idem:order:map:k1").SetVal(string(b))

	_, found, err := s.Recall(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, found)

	locked, err := s.TryLock(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, locked)

	require.NoError(t, s.Remember(ctx, "k1", rec))

	got, found, err := s.Recall(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, rec, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_DefaultTTLs(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewIdempotencyStore(db, 0, 0)

	mock.ExpectSetNX("idem:order:create:k3", "1", TTLIdemLock).SetVal(true)

	locked, err := s.TryLock(context.Background(), "k3")
	require.NoError(t, err)
	assert.True(t, locked)
	assert.Less(t, TTLIdemLock, TTLIdempotency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_LockHeld(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewIdempotencyStore(db, time.Hour, time.Minute)

	mock.ExpectSetNX("idem:order:create:k2", "1", time.Minute).SetVal(false)
	mock.ExpectDel("idem:order:create:k2").SetVal(1)

	locked, err := s.TryLock(context.Background(), "k2")
	require.NoError(t, err)
	assert.False(t, locked)
	require.NoError(t, s.Unlock(context.Background(), "k2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_RecallCorrupt(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewIdempotencyStore(db, time.Hour, time.Minute)

	mock.ExpectGet("idem:order:map:k4").SetVal("o-legacy")

	_, found, err := s.Recall(context.Background(), "k4")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestMarkSeen(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.ExpectSetNX("dedup:order-audit:e-1", "1", TTLDedup).SetVal(true)
	mock.ExpectSetNX("dedup:order-audit:e-1", "1", TTLDedup).SetVal(false)

	first, err := MarkSeen(ctx, db, "order-audit", "e-1")
	require.NoError(t, err)
	assert.True(t, first)
	again, err := MarkSeen(ctx, db, "order-audit", "e-1")
	require.NoError(t, err)
	assert.False(t, again)
	assert.NoError(t, mock.ExpectationsWereMet())
}
