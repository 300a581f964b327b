package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thiop/delivery/internal/catalog"
	"github.com/thiop/delivery/internal/domain"
)

// CatalogSource is the slice of the catalog service the HTTP layer uses.
type CatalogSource interface {
	Restaurants(ctx context.Context) ([]domain.Restaurant, catalog.Source)
	Categories(ctx context.Context) ([]domain.Category, catalog.Source)
	FeaturedItems(ctx context.Context) ([]domain.MenuItem, catalog.Source)
	MenuItems(ctx context.Context, restaurantID string) ([]domain.MenuItem, catalog.Source)
}

type CatalogHandler struct {
	catalog CatalogSource
	timeout time.Duration
}

func NewCatalogHandler(catalog CatalogSource, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, timeout: timeout}
}

// CatalogResponse tags every payload with the tier that produced it.
type CatalogResponse struct {
	Source catalog.Source `json:"source"`
	Data   interface{}    `json:"data"`
}

func (h *CatalogHandler) Restaurants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	restaurants, source := h.catalog.Restaurants(ctx)
	respondJSON(w, http.StatusOK, CatalogResponse{Source: source, Data: restaurants})
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, source := h.catalog.Categories(ctx)
	respondJSON(w, http.StatusOK, CatalogResponse{Source: source, Data: categories})
}

func (h *CatalogHandler) FeaturedItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, source := h.catalog.FeaturedItems(ctx)
	respondJSON(w, http.StatusOK, CatalogResponse{Source: source, Data: items})
}

func (h *CatalogHandler) Menu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, source := h.catalog.MenuItems(ctx, chi.URLParam(r, "restaurant_id"))
	respondJSON(w, http.StatusOK, CatalogResponse{Source: source, Data: items})
}
