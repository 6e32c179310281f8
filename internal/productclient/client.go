// Package productclient talks to product-api on behalf of the order
// coordinator. Every call is bounded by Client.Timeout; anything that is not
// a definite answer from the ledger comes back as orders.KindTransport.
package productclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/shopspring/decimal"
)

const maxBody = 1 << 20

type Client struct {
	BaseURL string
	Timeout time.Duration
	HTTP    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{BaseURL: baseURL, Timeout: timeout, HTTP: &http.Client{}}
}

type productDTO struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type checkStockDTO struct {
	Available bool `json:"available"`
}

type stockUpdateDTO struct {
	Quantity int `json:"quantity"`
}

type errorDTO struct {
	Error string `json:"error"`
}

func (c *Client) Fetch(ctx context.Context, productID string) (orders.Product, error) {
	var p productDTO
	code, msg, err := c.do(ctx, "fetch", http.MethodGet, "/api/products/"+url.PathEscape(productID), nil, &p)
	if err != nil {
		return orders.Product{}, err
	}
	switch code {
	case http.StatusOK:
		return orders.Product{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock}, nil
	case http.StatusNotFound:
		return orders.Product{}, orders.NewProductNotFound(productID)
	default:
		return orders.Product{}, unexpected("fetch", code, msg)
	}
}

func (c *Client) HasStock(ctx context.Context, productID string, qty int) (bool, error) {
	var res checkStockDTO
	path := "/api/products/" + url.PathEscape(productID) + "/check-stock?quantity=" + strconv.Itoa(qty)
	code, msg, err := c.do(ctx, "check-stock", http.MethodGet, path, nil, &res)
	if err != nil {
		return false, err
	}
	switch code {
	case http.StatusOK:
		return res.Available, nil
	case http.StatusNotFound:
		return false, orders.NewProductNotFound(productID)
	default:
		return false, unexpected("check-stock", code, msg)
	}
}

// Adjust applies delta at the ledger: negative reserves, positive releases.
func (c *Client) Adjust(ctx context.Context, productID string, delta int) error {
	path := "/api/products/" + url.PathEscape(productID) + "/stock"
	code, msg, err := c.do(ctx, "adjust", http.MethodPatch, path, stockUpdateDTO{Quantity: delta}, nil)
	if err != nil {
		return err
	}
	switch code {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return orders.NewProductNotFound(productID)
	case http.StatusConflict:
		return orders.NewInsufficientStock(productID, -delta)
	default:
		return unexpected("adjust", code, msg)
	}
}

// do returns the status code and, for non-2xx, the server's error message.
// out is decoded only on 2xx.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (int, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, "", fmt.Errorf("encode %s request: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return 0, "", orders.NewTransport(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		// termasuk timeout: hasil di ledger tidak diketahui
		return 0, "", orders.NewTransport(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return 0, "", orders.NewTransport(op, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil {
			if err := json.Unmarshal(raw, out); err != nil {
				return 0, "", orders.NewTransport(op, fmt.Errorf("decode response: %w", err))
			}
		}
		return resp.StatusCode, "", nil
	}
	var e errorDTO
	_ = json.Unmarshal(raw, &e)
	return resp.StatusCode, e.Error, nil
}

func unexpected(op string, code int, msg string) error {
	return orders.NewTransport(op, fmt.Errorf("unexpected status %d: %s", code, msg))
}

var _ orders.ProductClient = (*Client)(nil)
