package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRPC struct {
	result json.RawMessage
	err    error
	calls  int
}

func (s *stubRPC) Call(context.Context, string, string, []interface{}, map[string]interface{}) (json.RawMessage, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestRestaurants_RemoteTier(t *testing.T) {
	rpc := &stubRPC{result: json.RawMessage(`[{"id":7,"name":"Le Baobab"}]`)}
	s := NewService(rpc)

	restaurants, source := s.Restaurants(context.Background())

	assert.Equal(t, SourceRemote, source)
	require.Len(t, restaurants, 1)
	assert.Equal(t, "r-7", restaurants[0].ID)
	assert.Equal(t, "Le Baobab", restaurants[0].Name)
}

func TestRestaurants_FallsBackToStatic(t *testing.T) {
	rpc := &stubRPC{err: errors.New("connection refused")}
	s := NewService(rpc)

	restaurants, source := s.Restaurants(context.Background())

	assert.Equal(t, SourceStatic, source)
	assert.NotEmpty(t, restaurants)
}

func TestRestaurants_BadPayloadFallsBack(t *testing.T) {
	rpc := &stubRPC{result: json.RawMessage(`"not a list"`)}
	s := NewService(rpc)

	_, source := s.Restaurants(context.Background())
	assert.Equal(t, SourceStatic, source)
}

func TestCategories_RemoteTier(t *testing.T) {
	rpc := &stubRPC{result: json.RawMessage(`[{"id":3,"name":"Pizza"}]`)}
	s := NewService(rpc)

	categories, source := s.Categories(context.Background())

	assert.Equal(t, SourceRemote, source)
	require.Len(t, categories, 1)
	assert.Equal(t, "c-3", categories[0].ID)
}

func TestFeaturedItems_RemoteTier(t *testing.T) {
	rpc := &stubRPC{result: json.RawMessage(`[{"id":11,"name":"Pizza Margherita","list_price":12.99}]`)}
	s := NewService(rpc)

	items, source := s.FeaturedItems(context.Background())

	assert.Equal(t, SourceRemote, source)
	require.Len(t, items, 1)
	assert.Equal(t, "p-11", items[0].ID)
	assert.Equal(t, 12.99, items[0].Price)
}

func TestMenuItems_FallsBackToStatic(t *testing.T) {
	rpc := &stubRPC{err: errors.New("down")}
	s := NewService(rpc)

	items, source := s.MenuItems(context.Background(), "r-1")

	assert.Equal(t, SourceStatic, source)
	assert.NotEmpty(t, items)
	for _, item := range items {
		assert.Equal(t, "r-1", item.RestaurantID)
	}
}

func TestBreaker_OpensAfterRepeatedFailures(t *testing.T) {
	rpc := &stubRPC{err: errors.New("down")}
	s := NewService(rpc)

	// Default gobreaker settings open the circuit after 5 consecutive
	// failures; later reads skip the remote tier entirely.
	for i := 0; i < 10; i++ {
		_, source := s.Restaurants(context.Background())
		assert.Equal(t, SourceStatic, source)
	}
	assert.LessOrEqual(t, rpc.calls, 6)
}
