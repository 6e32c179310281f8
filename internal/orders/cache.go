package orders

import (
	"context"

	"go.uber.org/zap"
)

// Cache is a best-effort order snapshot cache (Redis in production).
type Cache interface {
	GetOrder(ctx context.Context, id string) (Order, bool, error)
	SetOrder(ctx context.Context, o Order) error
}

// CachedStore reads through Cache and refreshes it after every write.
// Writes always go to the underlying Store, so compare-and-set still sees
// the authoritative status; a stale hit on Get only costs a retry.
type CachedStore struct {
	Store
	Cache Cache
	Log   *zap.Logger
}

func (s *CachedStore) Get(ctx context.Context, id string) (Order, error) {
	if o, ok, err := s.Cache.GetOrder(ctx, id); err == nil && ok {
		return o, nil
	} else if err != nil {
		s.warn("cache get", id, err)
	}
	o, err := s.Store.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	s.set(ctx, o)
	return o, nil
}

// GetFresh skips the cache for the read and refreshes it afterwards.
func (s *CachedStore) GetFresh(ctx context.Context, id string) (Order, error) {
	o, err := s.Store.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	s.set(ctx, o)
	return o, nil
}

func (s *CachedStore) Insert(ctx context.Context, o Order) (Order, error) {
	o, err := s.Store.Insert(ctx, o)
	if err != nil {
		return Order{}, err
	}
	s.set(ctx, o)
	return o, nil
}

func (s *CachedStore) UpdateStatusIf(ctx context.Context, id string, from, to Status) (Order, bool, error) {
	o, ok, err := s.Store.UpdateStatusIf(ctx, id, from, to)
	if err != nil {
		return o, ok, err
	}
	// ok=false juga refresh: cache yang tadi dibaca sudah basi
	s.set(ctx, o)
	return o, ok, nil
}

func (s *CachedStore) set(ctx context.Context, o Order) {
	if err := s.Cache.SetOrder(ctx, o); err != nil {
		s.warn("cache set", o.ID, err)
	}
}

func (s *CachedStore) warn(op, id string, err error) {
	if s.Log != nil {
		s.Log.Warn(op+" failed", zap.String("order_id", id), zap.Error(err))
	}
}

var _ FreshReader = (*CachedStore)(nil)
