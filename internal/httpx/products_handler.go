package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-shop-orders/internal/catalog"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ProductsHandler struct {
	Ledger  catalog.Ledger
	Log     *zap.Logger
	Service string
}

type stockUpdateReq struct {
	Quantity *int `json:"quantity"`
}

type checkStockResp struct {
	ProductID         string `json:"productId"`
	RequestedQuantity int    `json:"requestedQuantity"`
	Available         bool   `json:"available"`
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/", h.listProducts)
		r.Post("/", h.createProduct)
		r.Get("/{id}", h.getProduct)
		r.Get("/{id}/check-stock", h.checkStock)
		r.Patch("/{id}/stock", h.updateStock)
	})
}

func (h *ProductsHandler) log() *zap.Logger {
	if h.Log != nil {
		return h.Log
	}
	return zap.NewNop()
}

func (h *ProductsHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Product Service is running", "service": h.Service})
}

func (h *ProductsHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Ledger.List(r.Context())
	if err != nil {
		h.internal(w, "list products", err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid json")
		return
	}
	p.ID = "" // id selalu dari server
	out, err := h.Ledger.Create(r.Context(), p)
	if errors.Is(err, catalog.ErrInvalid) {
		writeMsg(w, http.StatusBadRequest, "name is required; price and stock must not be negative")
		return
	}
	if err != nil {
		h.internal(w, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *ProductsHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.Ledger.Get(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeMsg(w, http.StatusNotFound, "Product not found with id: "+id)
		return
	}
	if err != nil {
		h.internal(w, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) checkStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || qty < 1 {
		writeMsg(w, http.StatusBadRequest, "quantity must be a positive integer")
		return
	}
	ok, err := h.Ledger.HasStock(r.Context(), id, qty)
	if errors.Is(err, catalog.ErrNotFound) {
		writeMsg(w, http.StatusNotFound, "Product not found with id: "+id)
		return
	}
	if err != nil {
		h.internal(w, "check stock", err)
		return
	}
	writeJSON(w, http.StatusOK, checkStockResp{ProductID: id, RequestedQuantity: qty, Available: ok})
}

// updateStock: quantity adalah delta (negatif = reserve, positif = release).
func (h *ProductsHandler) updateStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req stockUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		writeMsg(w, http.StatusBadRequest, "quantity is required")
		return
	}
	p, err := h.Ledger.Adjust(r.Context(), id, *req.Quantity)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeMsg(w, http.StatusNotFound, "Product not found with id: "+id)
	case errors.Is(err, catalog.ErrInsufficientStock):
		writeMsg(w, http.StatusConflict, fmt.Sprintf("Insufficient stock. Available: %d", p.Stock))
	case err != nil:
		h.internal(w, "adjust stock", err)
	default:
		h.log().Debug("stock adjusted", zap.String("product_id", id), zap.Int("delta", *req.Quantity), zap.Int("stock", p.Stock))
		writeJSON(w, http.StatusOK, p)
	}
}

func (h *ProductsHandler) internal(w http.ResponseWriter, op string, err error) {
	h.log().Error(op+" failed", zap.Error(err))
	writeMsg(w, http.StatusInternalServerError, "internal error")
}
