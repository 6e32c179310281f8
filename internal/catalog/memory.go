package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLedger satu mutex untuk semua produk: Adjust otomatis serial.
type MemoryLedger struct {
	mu       sync.Mutex
	products map[string]Product
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{products: map[string]Product{}}
}

func (m *MemoryLedger) Create(_ context.Context, p Product) (Product, error) {
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	m.products[p.ID] = p
	return p, nil
}

func (m *MemoryLedger) Get(_ context.Context, id string) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryLedger) List(_ context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryLedger) HasStock(ctx context.Context, id string, qty int) (bool, error) {
	p, err := m.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return p.Stock >= qty, nil
}

func (m *MemoryLedger) Adjust(_ context.Context, id string, delta int) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	if p.Stock+delta < 0 {
		return p, ErrInsufficientStock
	}
	p.Stock += delta
	p.UpdatedAt = time.Now().UTC()
	m.products[id] = p
	return p, nil
}

var _ Ledger = (*MemoryLedger)(nil)
