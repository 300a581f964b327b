package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/thiop/delivery/internal/auth"
)

// Authenticator is the slice of the auth service the HTTP layer uses.
type Authenticator interface {
	Login(ctx context.Context) (*auth.Session, error)
	Validate(ctx context.Context, token string) (*auth.Session, error)
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	auth    Authenticator
	timeout time.Duration
}

func NewAuthHandler(auth Authenticator, timeout time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, timeout: timeout}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.auth.Login(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.auth.Validate(ctx, getAuthToken(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	token := getAuthToken(r.Context())
	if token == "" {
		respondError(w, http.StatusBadRequest, "missing_token", "Authorization bearer token is required")
		return
	}

	if err := h.auth.Logout(ctx, token); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
