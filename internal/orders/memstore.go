package orders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps orders in process. Dipakai kalau POSTGRES_DSN kosong
// dan di test.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]Order
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: map[string]Order{}, now: time.Now}
}

func (m *MemoryStore) Insert(_ context.Context, o Order) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = uuid.NewString()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = m.now().UTC()
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}
	m.orders[o.ID] = o
	return o, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return Order{}, NewOrderNotFound(id)
	}
	return o, nil
}

func (m *MemoryStore) UpdateStatusIf(_ context.Context, id string, from, to Status) (Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return Order{}, false, NewOrderNotFound(id)
	}
	if o.Status != from {
		return o, false, nil
	}
	o.Status = to
	o.UpdatedAt = m.now().UTC()
	m.orders[id] = o
	return o, true, nil
}

// Backdate rewrites UpdatedAt; used to simulate orders stuck since t.
func (m *MemoryStore) Backdate(id string, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		o.UpdatedAt = t
		m.orders[id] = o
	}
}

func (m *MemoryStore) List(_ context.Context) ([]Order, error) {
	return m.filter(func(Order) bool { return true }), nil
}

func (m *MemoryStore) ListByUser(_ context.Context, userID string) ([]Order, error) {
	return m.filter(func(o Order) bool { return o.UserID == userID }), nil
}

func (m *MemoryStore) ListByStatus(_ context.Context, s Status) ([]Order, error) {
	return m.filter(func(o Order) bool { return o.Status == s }), nil
}

func (m *MemoryStore) filter(keep func(Order) bool) []Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

var _ Store = (*MemoryStore)(nil)
