package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/ariefcatur/go-shop-orders/internal/redisx"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Idempotency is satisfied by redisx.IdempotencyStore.
type Idempotency interface {
	TryLock(ctx context.Context, key string) (bool, error)
	Unlock(ctx context.Context, key string) error
	Remember(ctx context.Context, key string, rec redisx.IdemRecord) error
	Recall(ctx context.Context, key string) (redisx.IdemRecord, bool, error)
}

type OrdersHandler struct {
	Orders      *orders.Coordinator
	Idempotency Idempotency // nil = header diabaikan
	Log         *zap.Logger
	Service     string
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.Get("/user/{userId}", h.listByUser)
		r.Get("/status/{status}", h.listByStatus)
		r.Get("/{id}", h.getOrder)
		r.Patch("/{id}/status", h.updateStatus)
		r.Delete("/{id}", h.cancelOrder)
	})
}

func (h *OrdersHandler) log() *zap.Logger {
	if h.Log != nil {
		return h.Log
	}
	return zap.NewNop()
}

func (h *OrdersHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Order Service is running", "service": h.Service})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := req.Validate(); err != nil {
		writeOrderError(w, err, orders.Order{})
		return
	}

	ctx := r.Context()
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if h.Idempotency == nil {
		key = ""
	}
	if key != "" {
		// fast path: key sudah pernah dipakai -> ulangi hasil yang sama
		if rec, ok, err := h.Idempotency.Recall(ctx, key); err != nil {
			h.log().Warn("idempotency recall failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			if h.replay(w, r, rec) {
				return
			}
		}
		locked, err := h.Idempotency.TryLock(ctx, key)
		if err != nil {
			h.log().Warn("idempotency lock failed, continuing without it", zap.Error(err))
			key = ""
		} else if !locked {
			writeMsg(w, http.StatusConflict, "request with this Idempotency-Key is in progress")
			return
		}
	}

	o, err := h.Orders.Create(ctx, req)
	if key != "" {
		h.settle(ctx, key, o, err)
	}
	if err != nil {
		writeOrderError(w, err, o)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// replay answers a repeated create the way the first one was answered.
// Returns false when the remembered order can no longer be read.
func (h *OrdersHandler) replay(w http.ResponseWriter, r *http.Request, rec redisx.IdemRecord) bool {
	o, err := h.Orders.Get(r.Context(), rec.OrderID)
	if err != nil {
		h.log().Warn("idempotent order unreadable", zap.String("order_id", rec.OrderID), zap.Error(err))
		return false
	}
	if rec.Kind == "" {
		writeJSON(w, http.StatusOK, o)
		return true
	}
	writeOrderError(w, &orders.Error{Kind: orders.ParseKind(rec.Kind), Message: rec.Error}, o)
	return true
}

// settle: order sudah tersimpan -> ingat hasilnya; belum ada -> lepas lock.
func (h *OrdersHandler) settle(ctx context.Context, key string, o orders.Order, createErr error) {
	ctx = context.WithoutCancel(ctx)
	l := h.log().With(zap.String("key", key))
	if o.ID != "" {
		rec := redisx.IdemRecord{OrderID: o.ID}
		if createErr != nil {
			rec.Kind, rec.Error = orders.KindOf(createErr).String(), createErr.Error()
		}
		err := h.Idempotency.Remember(ctx, key, rec)
		if err == nil {
			return
		}
		l.Error("idempotency remember failed, releasing lock", zap.String("order_id", o.ID), zap.Error(err))
	}
	if err := h.Idempotency.Unlock(ctx, key); err != nil {
		l.Error("idempotency unlock failed", zap.Error(err))
	}
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	out, err := h.Orders.List(r.Context())
	h.writeList(w, out, err)
}

func (h *OrdersHandler) listByUser(w http.ResponseWriter, r *http.Request) {
	out, err := h.Orders.ListByUser(r.Context(), chi.URLParam(r, "userId"))
	h.writeList(w, out, err)
}

func (h *OrdersHandler) listByStatus(w http.ResponseWriter, r *http.Request) {
	st, ok := orders.ParseStatus(chi.URLParam(r, "status"))
	if !ok {
		writeMsg(w, http.StatusBadRequest, "unknown status")
		return
	}
	out, err := h.Orders.ListByStatus(r.Context(), st)
	h.writeList(w, out, err)
}

func (h *OrdersHandler) writeList(w http.ResponseWriter, out []orders.Order, err error) {
	if err != nil {
		writeOrderError(w, err, orders.Order{})
		return
	}
	if out == nil {
		out = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeOrderError(w, err, orders.Order{})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid json")
		return
	}
	st, ok := orders.ParseStatus(req.Status)
	if !ok {
		writeMsg(w, http.StatusBadRequest, "unknown status")
		return
	}
	o, err := h.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), st)
	if err != nil {
		writeOrderError(w, err, orders.Order{})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeOrderError(w, err, orders.Order{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Order cancelled successfully",
		"orderId": o.ID,
		"status":  o.Status,
	})
}
