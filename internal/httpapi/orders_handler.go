package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thiop/delivery/internal/domain"
	"github.com/thiop/delivery/internal/orders"
)

// OrderLedger is the slice of the order service the HTTP layer uses.
type OrderLedger interface {
	PlaceOrder(ctx context.Context, session, token string, req orders.PlaceOrderRequest) (*domain.Order, error)
	Get(ctx context.Context, session, orderID string) (*domain.Order, error)
	List(ctx context.Context, session string, opts orders.ListOptions) ([]domain.Order, error)
	Track(ctx context.Context, session, orderID string) (*orders.TrackingInfo, error)
	Cancel(ctx context.Context, session, orderID, reason string) (*domain.Order, error)
}

type OrdersHandler struct {
	ledger  OrderLedger
	timeout time.Duration
}

func NewOrdersHandler(ledger OrderLedger, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{ledger: ledger, timeout: timeout}
}

type CancelRequestDTO struct {
	Reason string `json:"reason"`
}

func (h *OrdersHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := getSessionID(r.Context())
	if session == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "X-Session-ID header is required")
		return
	}

	var req orders.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "empty_order", "order must contain at least one item")
		return
	}

	order, err := h.ledger.PlaceOrder(ctx, session, getAuthToken(r.Context()), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := getSessionID(r.Context())
	if session == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "X-Session-ID header is required")
		return
	}

	order, err := h.ledger.Get(ctx, session, chi.URLParam(r, "order_id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := getSessionID(r.Context())
	if session == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "X-Session-ID header is required")
		return
	}

	opts := orders.ListOptions{}
	query := r.URL.Query()

	if status := query.Get("status"); status != "" {
		parsed := domain.OrderStatus(status)
		if !parsed.IsValid() {
			respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status")
			return
		}
		opts.Status = parsed
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		opts.Limit = limit
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			respondError(w, http.StatusBadRequest, "invalid_offset", "offset must be a non-negative integer")
			return
		}
		opts.Offset = offset
	}

	list, err := h.ledger.List(ctx, session, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := getSessionID(r.Context())
	if session == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "X-Session-ID header is required")
		return
	}

	info, err := h.ledger.Track(ctx, session, chi.URLParam(r, "order_id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (h *OrdersHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := getSessionID(r.Context())
	if session == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "X-Session-ID header is required")
		return
	}

	var req CancelRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.ledger.Cancel(ctx, session, chi.URLParam(r, "order_id"), req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
