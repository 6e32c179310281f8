package redisx

import "time"

const (
	// Idempotency create order: idem:order:create:{key} -> "1" (lock)
	KeyIdemLock = "idem:order:create:%s"

	// idem:order:map:{key} -> JSON IdemRecord
	KeyIdemOrder = "idem:order:map:%s"

	// Dedup consumer: dedup:{consumer}:{event_id} -> "1"
	KeyDedup = "dedup:%s:%s"

	// Snapshot order: order:{order_id} -> JSON order
	KeyOrder = "order:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLIdemLock    = 30 * time.Second
	TTLOrderCache  = 5 * time.Minute
	TTLDedup       = 24 * time.Hour
)
