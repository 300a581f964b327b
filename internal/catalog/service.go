// Package catalog serves read-only catalog data from a two-tier source:
// the remote backend first, the shipped static dataset when the remote
// tier fails. Results carry an explicit Source tag so callers can tell
// live data from fallback data.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/sony/gobreaker/v2"

	"github.com/thiop/delivery/internal/domain"
)

type Source string

const (
	SourceRemote Source = "remote"
	SourceStatic Source = "static"
)

// RPCCaller is the slice of the JSON-RPC gateway this package needs.
type RPCCaller interface {
	Call(ctx context.Context, model, method string, args []interface{}, kwargs map[string]interface{}) (json.RawMessage, error)
}

type Service struct {
	rpc     RPCCaller
	breaker *gobreaker.CircuitBreaker[json.RawMessage]
}

func NewService(rpc RPCCaller) *Service {
	breaker := gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name: "odoo-catalog",
	})
	return &Service{rpc: rpc, breaker: breaker}
}

// call routes the remote read through the circuit breaker so a flapping
// backend trips straight to the static tier instead of timing out on
// every request.
func (s *Service) call(ctx context.Context, model, method string, args []interface{}, kwargs map[string]interface{}) (json.RawMessage, error) {
	return s.breaker.Execute(func() (json.RawMessage, error) {
		return s.rpc.Call(ctx, model, method, args, kwargs)
	})
}

type partnerRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type productRecord struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	ListPrice   float64 `json:"list_price"`
	Description string  `json:"description_sale"`
}

type categoryRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Restaurants never fails; a remote error is logged and answered from the
// static dataset.
func (s *Service) Restaurants(ctx context.Context) ([]domain.Restaurant, Source) {
	args := []interface{}{
		[]interface{}{[]interface{}{"is_company", "=", true}},
	}
	kwargs := map[string]interface{}{"fields": []string{"id", "name"}}

	result, err := s.call(ctx, "res.partner", "search_read", args, kwargs)
	if err != nil {
		log.Printf("restaurants: remote read failed, serving static data: %v", err)
		return staticRestaurants, SourceStatic
	}

	var records []partnerRecord
	if err := json.Unmarshal(result, &records); err != nil {
		log.Printf("restaurants: bad remote payload, serving static data: %v", err)
		return staticRestaurants, SourceStatic
	}

	restaurants := make([]domain.Restaurant, len(records))
	for i, rec := range records {
		restaurants[i] = domain.Restaurant{
			ID:   fmt.Sprintf("r-%d", rec.ID),
			Name: rec.Name,
		}
	}
	return restaurants, SourceRemote
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, Source) {
	kwargs := map[string]interface{}{"fields": []string{"id", "name"}}

	result, err := s.call(ctx, "pos.category", "search_read", []interface{}{[]interface{}{}}, kwargs)
	if err != nil {
		log.Printf("categories: remote read failed, serving static data: %v", err)
		return staticCategories, SourceStatic
	}

	var records []categoryRecord
	if err := json.Unmarshal(result, &records); err != nil {
		log.Printf("categories: bad remote payload, serving static data: %v", err)
		return staticCategories, SourceStatic
	}

	categories := make([]domain.Category, len(records))
	for i, rec := range records {
		categories[i] = domain.Category{
			ID:   fmt.Sprintf("c-%d", rec.ID),
			Name: rec.Name,
		}
	}
	return categories, SourceRemote
}

func (s *Service) FeaturedItems(ctx context.Context) ([]domain.MenuItem, Source) {
	args := []interface{}{
		[]interface{}{[]interface{}{"available_in_pos", "=", true}},
	}
	kwargs := map[string]interface{}{
		"fields": []string{"id", "name", "list_price", "description_sale"},
		"limit":  10,
	}

	result, err := s.call(ctx, "product.product", "search_read", args, kwargs)
	if err != nil {
		log.Printf("featured: remote read failed, serving static data: %v", err)
		return staticFeatured(), SourceStatic
	}

	items, err := decodeProducts(result)
	if err != nil {
		log.Printf("featured: bad remote payload, serving static data: %v", err)
		return staticFeatured(), SourceStatic
	}
	return items, SourceRemote
}

func (s *Service) MenuItems(ctx context.Context, restaurantID string) ([]domain.MenuItem, Source) {
	partnerID, err := strconv.Atoi(trimPrefix(restaurantID))
	if err != nil {
		// Static ids never resolve remotely; answer from the static tier.
		return staticMenuFor(restaurantID), SourceStatic
	}

	args := []interface{}{
		[]interface{}{[]interface{}{"restaurant_id", "=", partnerID}},
	}
	kwargs := map[string]interface{}{
		"fields": []string{"id", "name", "list_price", "description_sale"},
	}

	result, err := s.call(ctx, "product.product", "search_read", args, kwargs)
	if err != nil {
		log.Printf("menu %s: remote read failed, serving static data: %v", restaurantID, err)
		return staticMenuFor(restaurantID), SourceStatic
	}

	items, err := decodeProducts(result)
	if err != nil {
		log.Printf("menu %s: bad remote payload, serving static data: %v", restaurantID, err)
		return staticMenuFor(restaurantID), SourceStatic
	}
	return items, SourceRemote
}

func decodeProducts(raw json.RawMessage) ([]domain.MenuItem, error) {
	var records []productRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	items := make([]domain.MenuItem, len(records))
	for i, rec := range records {
		items[i] = domain.MenuItem{
			ID:          fmt.Sprintf("p-%d", rec.ID),
			Name:        rec.Name,
			Price:       rec.ListPrice,
			Description: rec.Description,
		}
	}
	return items, nil
}

func trimPrefix(id string) string {
	if len(id) > 2 && id[:2] == "r-" {
		return id[2:]
	}
	return id
}
