package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated            = "OrderCreated"
	EventOrderConfirmed          = "OrderConfirmed"
	EventStockReservationFailed  = "StockReservationFailed"
	EventOrderCancelled          = "OrderCancelled"
	EventStockCompensationFailed = "StockCompensationFailed"
	EventOrderStatusChanged      = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`                 // e.g., "order-api"
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload per event ----

type OrderCreatedPayload struct {
	OrderID    string          `json:"order_id"`
	UserID     string          `json:"user_id"`
	ProductID  string          `json:"product_id"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type OrderConfirmedPayload struct {
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Reserved  int    `json:"reserved"`
}

// StockReservationFailedPayload: order tertinggal di PENDING.
type StockReservationFailedPayload struct {
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"` // INSUFFICIENT_STOCK | TRANSPORT_ERROR | ...
	Detail    string `json:"detail,omitempty"`
}

type OrderCancelledPayload struct {
	OrderID    string `json:"order_id"`
	FromStatus Status `json:"from_status"`
	Released   int    `json:"released"` // 0 kalau tidak ada reservasi / release gagal
}

type StockCompensationFailedPayload struct {
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Detail    string `json:"detail"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}
