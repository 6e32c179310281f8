package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-shop-orders/internal/orders"
)

// statusFor is the single mapping from coordinator error kinds to HTTP.
func statusFor(err error) int {
	switch orders.KindOf(err) {
	case orders.KindValidation:
		return http.StatusBadRequest
	case orders.KindProductNotFound, orders.KindOrderNotFound:
		return http.StatusNotFound
	case orders.KindInsufficientStock, orders.KindInvalidTransition:
		return http.StatusConflict
	case orders.KindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorResp struct {
	Error   string        `json:"error"`
	Kind    string        `json:"kind"`
	OrderID string        `json:"orderId,omitempty"`
	Status  orders.Status `json:"status,omitempty"`
}

// writeOrderError: kalau order sudah tersimpan (PENDING), id-nya ikut
// dikembalikan supaya client bisa cek / cancel.
func writeOrderError(w http.ResponseWriter, err error, o orders.Order) {
	resp := errorResp{Error: err.Error(), Kind: orders.KindOf(err).String()}
	if o.ID != "" {
		resp.OrderID, resp.Status = o.ID, o.Status
	}
	writeJSON(w, statusFor(err), resp)
}
