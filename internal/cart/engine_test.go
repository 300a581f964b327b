package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiop/delivery/internal/domain"
	"github.com/thiop/delivery/internal/pricing"
	"github.com/thiop/delivery/internal/storage"
)

// failingStore fails every operation with the configured error.
type failingStore struct {
	err error
}

func (f *failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f *failingStore) Set(context.Context, string, []byte) error   { return f.err }
func (f *failingStore) Delete(context.Context, string) error        { return f.err }

// flakySetStore fails the next Set once, then behaves normally.
type flakySetStore struct {
	*storage.MemoryStore
	setErr error
}

func (f *flakySetStore) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		err := f.setErr
		f.setErr = nil
		return err
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func newTestEngine() *Engine {
	return NewEngine(storage.NewMemoryStore())
}

func margherita() domain.CartItem {
	return domain.CartItem{
		ID:             "p-1",
		Name:           "Pizza Margherita",
		Price:          12.99,
		RestaurantID:   "r-1",
		RestaurantName: "Bella Napoli",
	}
}

func assertTotalsInvariant(t *testing.T, c *domain.Cart) {
	t.Helper()
	discount := 0.0
	if c.Discount != nil {
		discount = c.Discount.Amount
	}
	assert.Equal(t, pricing.Round2(c.Subtotal+c.DeliveryFee-discount), c.Total)
}

func TestGet_EmptyCartOnFirstAccess(t *testing.T) {
	e := newTestEngine()

	cart, err := e.Get(context.Background(), "u1")
	require.NoError(t, err)

	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.Subtotal)
	assert.Equal(t, 0.0, cart.DeliveryFee)
	assert.Equal(t, 0.0, cart.Total)
}

func TestGet_LoadsPersistedCart(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	first := NewEngine(store)
	_, err := first.AddItem(ctx, "u1", margherita(), 2, nil)
	require.NoError(t, err)

	// A fresh engine over the same store sees the persisted cart.
	second := NewEngine(store)
	cart, err := second.Get(ctx, "u1")
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 25.98, cart.Subtotal)
	assertTotalsInvariant(t, cart)
}

func TestAddItem_MergesSameLineAcrossCalls(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	_, err := e.AddItem(ctx, "u1", margherita(), 1, []string{"Extra cheese", "Large"})
	require.NoError(t, err)

	// Same id, same option multiset in a different order: one line.
	cart, err := e.AddItem(ctx, "u1", margherita(), 2, []string{"Large", "Extra cheese"})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assertTotalsInvariant(t, cart)
}

func TestAddItem_DifferentOptionsMakeNewLine(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	_, err := e.AddItem(ctx, "u1", margherita(), 1, []string{"Large"})
	require.NoError(t, err)

	cart, err := e.AddItem(ctx, "u1", margherita(), 1, []string{"Small"})
	require.NoError(t, err)

	assert.Len(t, cart.Items, 2)
}

func TestAddItem_KnownPricingScenario(t *testing.T) {
	e := newTestEngine()

	item := domain.CartItem{ID: "p-9", Name: "Yassa Poulet", Price: 10.00}
	cart, err := e.AddItem(context.Background(), "u1", item, 2, nil)
	require.NoError(t, err)

	assert.Equal(t, 20.00, cart.Subtotal)
	assert.Equal(t, 3.94, cart.DeliveryFee)
	assert.Equal(t, 23.94, cart.Total)
}

func TestUpdateItemQuantity(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	_, err := e.AddItem(ctx, "u1", margherita(), 1, nil)
	require.NoError(t, err)

	cart, err := e.UpdateItemQuantity(ctx, "u1", "p-1", 5)
	require.NoError(t, err)

	assert.Equal(t, 5, cart.Items[0].Quantity)
	assertTotalsInvariant(t, cart)
}

func TestUpdateItemQuantity_MissingLine(t *testing.T) {
	e := newTestEngine()

	_, err := e.UpdateItemQuantity(context.Background(), "u1", "missing", 3)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestUpdateItemQuantity_ZeroIsStoredAsGiven(t *testing.T) {
	// The engine does not special-case non-positive quantities; the UI
	// layer calls RemoveItem instead when it wants a line gone.
	e := newTestEngine()
	ctx := context.Background()

	_, err := e.AddItem(ctx, "u1", margherita(), 2, nil)
	require.NoError(t, err)

	cart, err := e.UpdateItemQuantity(ctx, "u1", "p-1", 0)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 0, cart.Items[0].Quantity)
	assert.Equal(t, 0.0, cart.Subtotal)
	assert.Equal(t, 0.0, cart.DeliveryFee)
}

func TestRemoveItem_DropsAllMatchingLines(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	_, err := e.AddItem(ctx, "u1", margherita(), 1, []string{"Large"})
	require.NoError(t, err)
	_, err = e.AddItem(ctx, "u1", margherita(), 1, []string{"Small"})
	require.NoError(t, err)

	cart, err := e.RemoveItem(ctx, "u1", "p-1")
	require.NoError(t, err)

	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.DeliveryFee)
}

func TestRemoveItem_AbsentIDIsNoop(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	_, err := e.AddItem(ctx, "u1", margherita(), 1, nil)
	require.NoError(t, err)

	cart, err := e.RemoveItem(ctx, "u1", "other")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestApplyPromoCode_CaseInsensitive(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	_, err := e.AddItem(ctx, "u1", domain.CartItem{ID: "p-9", Price: 10.00}, 2, nil)
	require.NoError(t, err)

	res, err := e.ApplyPromoCode(ctx, "u1", "welcome10")
	require.NoError(t, err)

	assert.True(t, res.Accepted)
	require.NotNil(t, res.Cart.Discount)
	assert.Equal(t, "WELCOME10", res.Cart.Discount.Code)
	assert.Equal(t, 2.00, res.Cart.Discount.Amount)
	assert.Equal(t, 21.94, res.Cart.Total)
}

func TestApplyPromoCode_RejectedLeavesCartUntouched(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	_, err := e.AddItem(ctx, "u1", margherita(), 1, nil)
	require.NoError(t, err)

	res, err := e.ApplyPromoCode(ctx, "u1", "SAVE50")
	require.NoError(t, err)

	assert.False(t, res.Accepted)
	assert.Nil(t, res.Cart.Discount)

	cart, err := e.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, cart.Discount)
}

func TestDiscount_SurvivesEmptyingTheCart(t *testing.T) {
	// The discount is cleared only by RemovePromoCode or Clear, never by
	// emptying and refilling the cart.
	e := newTestEngine()
	ctx := context.Background()

	_, err := e.AddItem(ctx, "u1", margherita(), 1, nil)
	require.NoError(t, err)
	res, err := e.ApplyPromoCode(ctx, "u1", "WELCOME10")
	require.NoError(t, err)
	require.True(t, res.Accepted)

	_, err = e.RemoveItem(ctx, "u1", "p-1")
	require.NoError(t, err)

	cart, err := e.AddItem(ctx, "u1", domain.CartItem{ID: "p-2", Price: 20.00}, 1, nil)
	require.NoError(t, err)

	require.NotNil(t, cart.Discount)
	assert.Equal(t, 2.00, cart.Discount.Amount)
	assertTotalsInvariant(t, cart)
}

func TestRemovePromoCode(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	_, err := e.AddItem(ctx, "u1", domain.CartItem{ID: "p-9", Price: 10.00}, 2, nil)
	require.NoError(t, err)
	_, err = e.ApplyPromoCode(ctx, "u1", "WELCOME10")
	require.NoError(t, err)

	cart, err := e.RemovePromoCode(ctx, "u1")
	require.NoError(t, err)

	assert.Nil(t, cart.Discount)
	assert.Equal(t, 23.94, cart.Total)
}

func TestClear(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	_, err := e.AddItem(ctx, "u1", margherita(), 3, nil)
	require.NoError(t, err)
	_, err = e.ApplyPromoCode(ctx, "u1", "WELCOME10")
	require.NoError(t, err)

	cart, err := e.Clear(ctx, "u1")
	require.NoError(t, err)

	assert.Empty(t, cart.Items)
	assert.Nil(t, cart.Discount)
	assert.Equal(t, 0.0, cart.Total)
}

func TestTotalsInvariant_AcrossMutationSequence(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	snapshots := []*domain.Cart{}

	c, err := e.AddItem(ctx, "u1", margherita(), 2, nil)
	require.NoError(t, err)
	snapshots = append(snapshots, c)

	c, err = e.AddItem(ctx, "u1", domain.CartItem{ID: "p-2", Price: 8.49}, 1, []string{"Spicy"})
	require.NoError(t, err)
	snapshots = append(snapshots, c)

	c, err = e.UpdateItemQuantity(ctx, "u1", "p-1", 4)
	require.NoError(t, err)
	snapshots = append(snapshots, c)

	c, err = e.RemoveItem(ctx, "u1", "p-2")
	require.NoError(t, err)
	snapshots = append(snapshots, c)

	for _, snap := range snapshots {
		assertTotalsInvariant(t, snap)
	}
}

func TestStorageFailure_PropagatesOnLoad(t *testing.T) {
	boom := errors.New("disk on fire")
	e := NewEngine(&failingStore{err: boom})

	_, err := e.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
}

func TestStorageFailure_OnPersistLeavesCartUnchanged(t *testing.T) {
	store := &flakySetStore{MemoryStore: storage.NewMemoryStore()}
	e := NewEngine(store)
	ctx := context.Background()

	_, err := e.AddItem(ctx, "u1", margherita(), 1, nil)
	require.NoError(t, err)

	store.setErr = errors.New("disk on fire")
	_, err = e.AddItem(ctx, "u1", margherita(), 2, nil)
	require.Error(t, err)

	// The failed mutation must not stick in memory; a retry succeeds.
	cart, err := e.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	cart, err = e.AddItem(ctx, "u1", margherita(), 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestSnapshotIsDetachedFromEngineState(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	cart, err := e.AddItem(ctx, "u1", margherita(), 1, nil)
	require.NoError(t, err)

	cart.Items[0].Quantity = 99

	again, err := e.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
}
