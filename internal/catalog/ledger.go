// Package catalog owns products and their authoritative stock count.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalid           = errors.New("invalid product")
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (p Product) Validate() error {
	if p.Name == "" || p.Price.IsNegative() || p.Stock < 0 {
		return ErrInvalid
	}
	return nil
}

// Ledger is the stock ledger. Adjust must be atomic per product and must
// never leave stock below zero.
type Ledger interface {
	Create(ctx context.Context, p Product) (Product, error)
	Get(ctx context.Context, id string) (Product, error)
	List(ctx context.Context) ([]Product, error)
	HasStock(ctx context.Context, id string, qty int) (bool, error)
	Adjust(ctx context.Context, id string, delta int) (Product, error)
}
