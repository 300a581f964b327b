package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/thiop/delivery/internal/domain"
	"github.com/thiop/delivery/internal/pricing"
	"github.com/thiop/delivery/internal/storage"
)

const (
	promoCode     = "WELCOME10"
	promoValue    = 10
	promoAccepted = "Promo code applied! 10% discount added."
	promoRejected = "The promo code you entered is not valid."
)

// Engine owns the single active cart of each session. Mutations recompute
// totals and persist before returning; callers always receive a snapshot.
type Engine struct {
	store storage.Store
	sfg   singleflight.Group // Prevents duplicate loads of the same session

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	carts map[string]*domain.Cart
}

func NewEngine(store storage.Store) *Engine {
	return &Engine{
		store: store,
		locks: make(map[string]*sync.Mutex),
		carts: make(map[string]*domain.Cart),
	}
}

type PromoResult struct {
	Accepted bool         `json:"accepted"`
	Cart     *domain.Cart `json:"cart"`
	Message  string       `json:"message"`
}

// Get returns the session's cart, loading persisted state on first access.
// A missing blob yields an empty cart, never an error.
func (e *Engine) Get(ctx context.Context, session string) (*domain.Cart, error) {
	lock := e.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()

	cart, err := e.load(ctx, session)
	if err != nil {
		return nil, err
	}
	return cart.Clone(), nil
}

// AddItem merges into an existing line when the product id and option
// selection match, otherwise appends a new line.
func (e *Engine) AddItem(ctx context.Context, session string, item domain.CartItem, quantity int, options []string) (*domain.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	lock := e.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()

	cart, err := e.load(ctx, session)
	if err != nil {
		return nil, err
	}
	cart = cart.Clone()

	merged := false
	for i := range cart.Items {
		if cart.Items[i].SameLine(item.ID, options) {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		line := item
		line.Quantity = quantity
		line.Options = append([]string(nil), options...)
		cart.Items = append(cart.Items, line)
	}

	if err := e.commit(ctx, session, cart); err != nil {
		return nil, err
	}
	return cart.Clone(), nil
}

// UpdateItemQuantity sets the quantity of the line with the given product
// id. Non-positive quantities are stored as given; removal on zero is a
// caller-level convention, not enforced here.
func (e *Engine) UpdateItemQuantity(ctx context.Context, session, itemID string, quantity int) (*domain.Cart, error) {
	lock := e.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()

	cart, err := e.load(ctx, session)
	if err != nil {
		return nil, err
	}
	cart = cart.Clone()

	found := false
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, ErrItemNotFound
	}

	if err := e.commit(ctx, session, cart); err != nil {
		return nil, err
	}
	return cart.Clone(), nil
}

// RemoveItem drops every line with the given product id. Removing an
// absent id is a no-op, not an error.
func (e *Engine) RemoveItem(ctx context.Context, session, itemID string) (*domain.Cart, error) {
	lock := e.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()

	cart, err := e.load(ctx, session)
	if err != nil {
		return nil, err
	}
	cart = cart.Clone()

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept

	if err := e.commit(ctx, session, cart); err != nil {
		return nil, err
	}
	return cart.Clone(), nil
}

// Clear resets the session to an empty cart and persists it.
func (e *Engine) Clear(ctx context.Context, session string) (*domain.Cart, error) {
	lock := e.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()

	cart := &domain.Cart{Items: []domain.CartItem{}}
	if err := e.commit(ctx, session, cart); err != nil {
		return nil, err
	}
	return cart.Clone(), nil
}

// ApplyPromoCode matches the code case-insensitively. A rejected code
// leaves the cart untouched.
func (e *Engine) ApplyPromoCode(ctx context.Context, session, code string) (*PromoResult, error) {
	lock := e.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()

	cart, err := e.load(ctx, session)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(code, promoCode) {
		return &PromoResult{Accepted: false, Cart: cart.Clone(), Message: promoRejected}, nil
	}

	cart = cart.Clone()
	cart.Discount = &domain.Discount{
		Code:  promoCode,
		Type:  "percent",
		Value: promoValue,
	}
	if err := e.commit(ctx, session, cart); err != nil {
		return nil, err
	}
	return &PromoResult{Accepted: true, Cart: cart.Clone(), Message: promoAccepted}, nil
}

// RemovePromoCode drops any active discount and recomputes totals.
func (e *Engine) RemovePromoCode(ctx context.Context, session string) (*domain.Cart, error) {
	lock := e.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()

	cart, err := e.load(ctx, session)
	if err != nil {
		return nil, err
	}

	cart = cart.Clone()
	cart.Discount = nil
	if err := e.commit(ctx, session, cart); err != nil {
		return nil, err
	}
	return cart.Clone(), nil
}

func (e *Engine) sessionLock(session string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[session]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[session] = lock
	}
	return lock
}

func (e *Engine) cached(session string) (*domain.Cart, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cart, ok := e.carts[session]
	return cart, ok
}

func (e *Engine) setCached(session string, cart *domain.Cart) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.carts[session] = cart
}

// load returns the in-memory cart for the session, reading the persisted
// blob on first access. Totals are recomputed on every load so a cart
// written by an older build is never served with stale arithmetic.
func (e *Engine) load(ctx context.Context, session string) (*domain.Cart, error) {
	if cart, ok := e.cached(session); ok {
		pricing.Recalculate(cart)
		return cart, nil
	}

	v, err, _ := e.sfg.Do(session, func() (interface{}, error) {
		data, err := e.store.Get(ctx, cartKey(session))
		if errors.Is(err, storage.ErrNotFound) {
			return &domain.Cart{Items: []domain.CartItem{}}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}

		var cart domain.Cart
		if err := json.Unmarshal(data, &cart); err != nil {
			return nil, fmt.Errorf("unmarshal cart: %w", err)
		}
		return &cart, nil
	})
	if err != nil {
		return nil, err
	}

	cart := v.(*domain.Cart)
	pricing.Recalculate(cart)
	e.setCached(session, cart)
	return cart, nil
}

// commit recomputes totals, persists, and only then replaces the cached
// cart, so a storage failure leaves the in-memory state unchanged. It runs
// after every mutation; mutations therefore work on a clone, never on the
// cached cart itself.
func (e *Engine) commit(ctx context.Context, session string, cart *domain.Cart) error {
	pricing.Recalculate(cart)
	if err := e.persist(ctx, session, cart); err != nil {
		return err
	}
	e.setCached(session, cart)
	return nil
}

func (e *Engine) persist(ctx context.Context, session string, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := e.store.Set(ctx, cartKey(session), data); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

func cartKey(session string) string {
	return fmt.Sprintf("cart:%s", session)
}
