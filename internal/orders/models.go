package orders

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the order side's snapshot of a catalog entry.
type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	ProductID       string          `json:"productId"`
	Quantity        int             `json:"quantity"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Status          Status          `json:"status"`
	PaymentMethod   string          `json:"paymentMethod"`
	ShippingAddress string          `json:"shippingAddress,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type CreateRequest struct {
	UserID          string `json:"userId"`
	ProductID       string `json:"productId"`
	Quantity        int    `json:"quantity"`
	PaymentMethod   string `json:"paymentMethod"`
	ShippingAddress string `json:"shippingAddress"`
}

// Validate runs the request-shape checks the HTTP layer relies on.
func (r CreateRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.UserID) == "":
		return NewValidation("User ID is required")
	case strings.TrimSpace(r.ProductID) == "":
		return NewValidation("Product ID is required")
	case r.Quantity < 1:
		return NewValidation("Quantity must be at least 1")
	case strings.TrimSpace(r.PaymentMethod) == "":
		return NewValidation("Payment method is required")
	}
	return nil
}
