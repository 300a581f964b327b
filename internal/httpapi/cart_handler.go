package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thiop/delivery/internal/cart"
	"github.com/thiop/delivery/internal/domain"
)

// CartEngine is the slice of the cart service the HTTP layer uses.
type CartEngine interface {
	Get(ctx context.Context, session string) (*domain.Cart, error)
	AddItem(ctx context.Context, session string, item domain.CartItem, quantity int, options []string) (*domain.Cart, error)
	UpdateItemQuantity(ctx context.Context, session, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, session, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, session string) (*domain.Cart, error)
	ApplyPromoCode(ctx context.Context, session, code string) (*cart.PromoResult, error)
	RemovePromoCode(ctx context.Context, session string) (*domain.Cart, error)
}

type CartHandler struct {
	engine  CartEngine
	timeout time.Duration
}

func NewCartHandler(engine CartEngine, timeout time.Duration) *CartHandler {
	return &CartHandler{engine: engine, timeout: timeout}
}

type AddItemRequestDTO struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	Image          string   `json:"image"`
	Quantity       int      `json:"quantity"`
	Options        []string `json:"options"`
	RestaurantID   string   `json:"restaurantId"`
	RestaurantName string   `json:"restaurantName"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type PromoRequestDTO struct {
	Code string `json:"code"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := getSessionID(r.Context())
	if session == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "X-Session-ID header is required")
		return
	}

	snapshot, err := h.engine.Get(ctx, session)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := getSessionID(r.Context())
	if session == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "X-Session-ID header is required")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item", "item id is required")
		return
	}
	if req.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must not be negative")
		return
	}
	// A zero quantity falls back to the engine default of one unit.
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	item := domain.CartItem{
		ID:             req.ID,
		Name:           req.Name,
		Price:          req.Price,
		Image:          req.Image,
		RestaurantID:   req.RestaurantID,
		RestaurantName: req.RestaurantName,
	}

	snapshot, err := h.engine.AddItem(ctx, session, item, req.Quantity, req.Options)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, snapshot)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := getSessionID(r.Context())
	if session == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "X-Session-ID header is required")
		return
	}

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not exceed 99")
		return
	}

	// The app treats a non-positive quantity as "remove the line"; the
	// engine itself stores whatever it is told.
	if req.Quantity <= 0 {
		snapshot, err := h.engine.RemoveItem(ctx, session, itemID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, snapshot)
		return
	}

	snapshot, err := h.engine.UpdateItemQuantity(ctx, session, itemID, req.Quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := getSessionID(r.Context())
	if session == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "X-Session-ID header is required")
		return
	}

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item id is required")
		return
	}

	snapshot, err := h.engine.RemoveItem(ctx, session, itemID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := getSessionID(r.Context())
	if session == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "X-Session-ID header is required")
		return
	}

	snapshot, err := h.engine.Clear(ctx, session)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

func (h *CartHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := getSessionID(r.Context())
	if session == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "X-Session-ID header is required")
		return
	}

	var req PromoRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "invalid_code", "promo code is required")
		return
	}

	result, err := h.engine.ApplyPromoCode(ctx, session, req.Code)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *CartHandler) RemovePromo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := getSessionID(r.Context())
	if session == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "X-Session-ID header is required")
		return
	}

	snapshot, err := h.engine.RemovePromoCode(ctx, session)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}
