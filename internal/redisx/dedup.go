package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// MarkSeen returns true the first time consumer sees eventID within TTLDedup.
func MarkSeen(ctx context.Context, rdb *redis.Client, consumer, eventID string) (bool, error) {
	return rdb.SetNX(ctx, fmt.Sprintf(KeyDedup, consumer, eventID), "1", TTLDedup).Result()
}
