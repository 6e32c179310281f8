package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/redis/go-redis/v9"
)

// OrderCache stores order snapshots as JSON under KeyOrder.
type OrderCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOrderCache(rdb *redis.Client, ttl time.Duration) *OrderCache {
	if ttl <= 0 {
		ttl = TTLOrderCache
	}
	return &OrderCache{rdb: rdb, ttl: ttl}
}

func (c *OrderCache) GetOrder(ctx context.Context, id string) (orders.Order, bool, error) {
	s, err := c.rdb.Get(ctx, fmt.Sprintf(KeyOrder, id)).Result()
	if errors.Is(err, redis.Nil) {
		return orders.Order{}, false, nil
	}
	if err != nil {
		return orders.Order{}, false, err
	}
	var o orders.Order
	if err := json.Unmarshal([]byte(s), &o); err != nil {
		return orders.Order{}, false, fmt.Errorf("decode cached order: %w", err)
	}
	return o, true, nil
}

func (c *OrderCache) SetOrder(ctx context.Context, o orders.Order) error {
	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, fmt.Sprintf(KeyOrder, o.ID), string(b), c.ttl).Err()
}

var _ orders.Cache = (*OrderCache)(nil)
