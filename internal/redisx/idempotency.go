package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdemRecord is what a finished create left behind for its Idempotency-Key.
// Kind kosong = create sukses; selain itu nama Kind error yang dikembalikan.
type IdemRecord struct {
	OrderID string `json:"order_id"`
	Kind    string `json:"kind,omitempty"`
	Error   string `json:"error,omitempty"`
}

// IdempotencyStore dedups POST /api/orders by the Idempotency-Key header.
// The lock only has to outlive one create; the record lives for ttl.
type IdempotencyStore struct {
	rdb     *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl, lockTTL time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = TTLIdempotency
	}
	if lockTTL <= 0 {
		lockTTL = TTLIdemLock
	}
	return &IdempotencyStore{rdb: rdb, ttl: ttl, lockTTL: lockTTL}
}

// TryLock returns false when another request already holds key.
func (s *IdempotencyStore) TryLock(ctx context.Context, key string) (bool, error) {
	return s.rdb.SetNX(ctx, fmt.Sprintf(KeyIdemLock, key), "1", s.lockTTL).Result()
}

// Unlock lepas lock kalau create gagal sebelum order tersimpan.
func (s *IdempotencyStore) Unlock(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, fmt.Sprintf(KeyIdemLock, key)).Err()
}

func (s *IdempotencyStore) Remember(ctx context.Context, key string, rec IdemRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, fmt.Sprintf(KeyIdemOrder, key), string(b), s.ttl).Err()
}

func (s *IdempotencyStore) Recall(ctx context.Context, key string) (IdemRecord, bool, error) {
	val, err := s.rdb.Get(ctx, fmt.Sprintf(KeyIdemOrder, key)).Result()
	if errors.Is(err, redis.Nil) {
		return IdemRecord{}, false, nil
	}
	if err != nil {
		return IdemRecord{}, false, err
	}
	var rec IdemRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return IdemRecord{}, false, fmt.Errorf("decode idempotency record %q: %w", key, err)
	}
	return rec, true, nil
}
