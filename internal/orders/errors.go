package orders

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure outcomes a coordinator call can report.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindProductNotFound
	KindInsufficientStock
	KindTransport
	KindOrderNotFound
	KindInvalidTransition
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindProductNotFound:
		return "PRODUCT_NOT_FOUND"
	case KindInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case KindTransport:
		return "TRANSPORT_ERROR"
	case KindOrderNotFound:
		return "ORDER_NOT_FOUND"
	case KindInvalidTransition:
		return "INVALID_TRANSITION"
	default:
		return "UNKNOWN"
	}
}

// ParseKind is the inverse of Kind.String; unknown names give KindUnknown.
func ParseKind(s string) Kind {
	for k := KindValidation; k <= KindInvalidTransition; k++ {
		if k.String() == s {
			return k
		}
	}
	return KindUnknown
}

// Error carries a Kind plus the message shown to callers. Err, kalau ada,
// adalah penyebab di bawahnya (network error, pgx error, dst).
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so errors.Is(err, ErrInsufficientStock) works for any
// message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation        = &Error{Kind: KindValidation, Message: "validation error"}
	ErrProductNotFound   = &Error{Kind: KindProductNotFound, Message: "product not found"}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock, Message: "insufficient stock"}
	ErrTransport         = &Error{Kind: KindTransport, Message: "stock ledger unreachable"}
	ErrOrderNotFound     = &Error{Kind: KindOrderNotFound, Message: "order not found"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Message: "invalid status transition"}
)

func newError(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

func NewValidation(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

func NewProductNotFound(productID string) *Error {
	return newError(KindProductNotFound, "product not found with id: %s", productID)
}

func NewInsufficientStock(productID string, requested int) *Error {
	return newError(KindInsufficientStock, "insufficient stock for product %s (requested %d)", productID, requested)
}

// NewTransport wraps a failed or timed-out call to the stock ledger.
func NewTransport(op string, err error) *Error {
	return &Error{Kind: KindTransport, Message: "stock ledger " + op + " failed", Err: err}
}

func NewOrderNotFound(orderID string) *Error {
	return newError(KindOrderNotFound, "order not found with id: %s", orderID)
}

func NewInvalidTransition(from, to Status) *Error {
	return newError(KindInvalidTransition, "cannot move order from %s to %s", from, to)
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
