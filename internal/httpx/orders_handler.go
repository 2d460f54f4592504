package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"order-mesh/internal/orders"
)

// OrderService is the slice of the orchestration the handler needs.
type OrderService interface {
	CreateOrder(ctx context.Context, productID, customerName, customerEmail string, quantity int) (*orders.Order, error)
	CancelOrder(ctx context.Context, orderID, reason string) error
	UpdateStatus(ctx context.Context, orderID string, newStatus orders.Status) (*orders.Order, error)
	GetOrder(ctx context.Context, orderID string) (*orders.Order, error)
	ListByEmail(ctx context.Context, email string) ([]*orders.Order, error)
}

type OrdersHandler struct {
	Svc OrderService
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/cancel", h.cancelOrder)
	r.Patch("/orders/{id}/status", h.updateStatus)
}

type CreateOrderReq struct {
	ProductID     string `json:"product_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Quantity      int    `json:"quantity"`
}

type CancelOrderReq struct {
	Reason string `json:"reason"`
}

type UpdateStatusReq struct {
	Status orders.Status `json:"status"`
}

// OrderResp carries the order with its derived total alongside.
type OrderResp struct {
	*orders.Order
	TotalPrice decimal.Decimal `json:"total_price"`
}

func toResp(o *orders.Order) OrderResp {
	return OrderResp{Order: o, TotalPrice: o.TotalPrice()}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the domain taxonomy onto status codes. Absence (404) stays
// distinguishable from "temporarily unable to answer" (503).
func writeErr(w http.ResponseWriter, err error) {
	var code int
	switch {
	case errors.Is(err, orders.ErrProductNotFound), errors.Is(err, orders.ErrOrderNotFound):
		code = http.StatusNotFound
	case errors.Is(err, orders.ErrInsufficientStock), errors.Is(err, orders.ErrAlreadyCancelled):
		code = http.StatusConflict
	case errors.Is(err, orders.ErrCatalogUnavailable):
		code = http.StatusServiceUnavailable
	case errors.Is(err, orders.ErrInvalidInput):
		code = http.StatusBadRequest
	default:
		code = http.StatusInternalServerError
	}

	body := map[string]any{"error": err.Error()}
	var ise *orders.InsufficientStockError
	if errors.As(err, &ise) {
		body["requested"] = ise.Requested
		body["available"] = ise.Available
	}
	writeJSON(w, code, body)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	order, err := h.Svc.CreateOrder(r.Context(), req.ProductID, req.CustomerName, req.CustomerEmail, req.Quantity)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResp(order))
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Svc.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResp(order))
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing email"})
		return
	}
	list, err := h.Svc.ListByEmail(r.Context(), email)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]OrderResp, 0, len(list))
	for _, o := range list {
		out = append(out, toResp(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderReq
	_ = json.NewDecoder(r.Body).Decode(&req) // reason is optional

	if err := h.Svc.CancelOrder(r.Context(), chi.URLParam(r, "id"), req.Reason); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	order, err := h.Svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResp(order))
}
