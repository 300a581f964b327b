package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/thiop/delivery/internal/auth"
	"github.com/thiop/delivery/internal/cart"
	"github.com/thiop/delivery/internal/odoo"
	"github.com/thiop/delivery/internal/orders"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondServiceError maps service-layer errors to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	var remoteErr *odoo.RemoteError

	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.Is(err, orders.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, orders.ErrAuthRequired), errors.Is(err, auth.ErrInvalidSession):
		respondError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, orders.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.As(err, &remoteErr):
		respondError(w, http.StatusBadGateway, "remote_error", remoteErr.Message)
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
