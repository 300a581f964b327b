package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thiop/delivery/internal/domain"
	"github.com/thiop/delivery/internal/storage"
)

// CartClearer empties the session's active cart after a successful order.
type CartClearer interface {
	Clear(ctx context.Context, session string) (*domain.Cart, error)
}

// Publisher emits order lifecycle events. A nil Publisher disables
// emission; publish failures never fail the order operation.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, eventType string, order *domain.Order) error
}

const (
	EventOrderPlaced    = "order_placed"
	EventOrderCancelled = "order_cancelled"
)

// PlaceOrderRequest carries the checkout payload captured by the client.
type PlaceOrderRequest struct {
	Items                []domain.CartItem    `json:"items"`
	Subtotal             float64              `json:"subtotal"`
	DeliveryFee          float64              `json:"deliveryFee"`
	Discount             *domain.Discount     `json:"discount,omitempty"`
	Total                float64              `json:"total"`
	PaymentMethod        domain.PaymentMethod `json:"paymentMethod"`
	DeliveryAddress      domain.Address       `json:"deliveryAddress"`
	DeliveryInstructions string               `json:"deliveryInstructions,omitempty"`
	EstimatedDelivery    string               `json:"estimatedDelivery,omitempty"`
	RestaurantID         string               `json:"restaurantId,omitempty"`
	RestaurantName       string               `json:"restaurantName,omitempty"`
	RestaurantImage      string               `json:"restaurantImage,omitempty"`
}

// ListOptions filters and pages ListOrders. A zero Limit means all
// matching orders.
type ListOptions struct {
	Status domain.OrderStatus
	Limit  int
	Offset int
}

// Ledger owns the per-session, newest-first list of placed orders.
type Ledger struct {
	store     storage.Store
	cart      CartClearer
	publisher Publisher
	now       func() time.Time

	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	orders map[string][]domain.Order
}

func NewLedger(store storage.Store, cart CartClearer, publisher Publisher) *Ledger {
	return &Ledger{
		store:     store,
		cart:      cart,
		publisher: publisher,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
		orders:    make(map[string][]domain.Order),
	}
}

// PlaceOrder appends a new order with a fresh id and processing status,
// then clears the active cart. No stock or availability validation happens
// here. The auth token only needs to be present; validation against the
// backend is the transport layer's job.
func (l *Ledger) PlaceOrder(ctx context.Context, session, token string, req PlaceOrderRequest) (*domain.Order, error) {
	if token == "" {
		return nil, ErrAuthRequired
	}

	lock := l.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()

	ledger, err := l.load(ctx, session)
	if err != nil {
		return nil, err
	}

	order := domain.Order{
		ID:                   uuid.NewString(),
		Date:                 l.now().UTC(),
		Status:               domain.StatusProcessing,
		Items:                append([]domain.CartItem(nil), req.Items...),
		Subtotal:             req.Subtotal,
		DeliveryFee:          req.DeliveryFee,
		Discount:             req.Discount,
		Total:                req.Total,
		PaymentMethod:        req.PaymentMethod,
		DeliveryAddress:      req.DeliveryAddress,
		DeliveryInstructions: req.DeliveryInstructions,
		EstimatedDelivery:    req.EstimatedDelivery,
		RestaurantID:         req.RestaurantID,
		RestaurantName:       req.RestaurantName,
		RestaurantImage:      req.RestaurantImage,
	}
	if order.EstimatedDelivery == "" {
		order.EstimatedDelivery = "30-45 min"
	}

	// Newest first. Persist before swapping the cache so a storage
	// failure leaves the ledger unchanged.
	updated := append([]domain.Order{order}, ledger...)
	if err := l.persist(ctx, session, updated); err != nil {
		return nil, err
	}
	l.setCached(session, updated)

	if _, err := l.cart.Clear(ctx, session); err != nil {
		return nil, fmt.Errorf("clear cart after order: %w", err)
	}

	l.publish(ctx, EventOrderPlaced, &order)
	return order.Clone(), nil
}

// Get does a linear search of the cached ledger. There is deliberately no
// remote fallback here, matching the behavior this service replaces.
func (l *Ledger) Get(ctx context.Context, session, orderID string) (*domain.Order, error) {
	lock := l.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()

	ledger, err := l.load(ctx, session)
	if err != nil {
		return nil, err
	}

	for i := range ledger {
		if ledger[i].ID == orderID {
			return ledger[i].Clone(), nil
		}
	}
	return nil, ErrOrderNotFound
}

// List filters by status when given, then applies offset/limit slicing.
func (l *Ledger) List(ctx context.Context, session string, opts ListOptions) ([]domain.Order, error) {
	lock := l.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()

	ledger, err := l.load(ctx, session)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.Order, 0, len(ledger))
	for i := range ledger {
		if opts.Status != "" && ledger[i].Status != opts.Status {
			continue
		}
		matched = append(matched, *ledger[i].Clone())
	}

	if opts.Offset >= len(matched) {
		return []domain.Order{}, nil
	}
	matched = matched[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

// Track derives the delivery status from the time elapsed since placement
// and ratchets the stored status forward when it changed. Terminal orders
// are reported as stored.
func (l *Ledger) Track(ctx context.Context, session, orderID string) (*TrackingInfo, error) {
	lock := l.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()

	ledger, err := l.load(ctx, session)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range ledger {
		if ledger[i].ID == orderID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrOrderNotFound
	}

	now := l.now()
	order := &ledger[idx]
	if order.Status.IsTerminal() {
		return terminalTracking(order, now), nil
	}

	status, progress, arrival := deriveStatus(now.Sub(order.Date))
	if status != order.Status {
		// Persist a copy first so a storage failure leaves the cached
		// ledger unchanged.
		updated := append([]domain.Order(nil), ledger...)
		updated[idx].Status = status
		if err := l.persist(ctx, session, updated); err != nil {
			return nil, err
		}
		l.setCached(session, updated)
	}

	return &TrackingInfo{
		OrderID:          order.ID,
		Status:           status,
		Progress:         progress,
		EstimatedArrival: arrival,
		UpdatedAt:        now,
	}, nil
}

// Cancel moves a non-terminal order to cancelled, recording the reason.
func (l *Ledger) Cancel(ctx context.Context, session, orderID, reason string) (*domain.Order, error) {
	lock := l.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()

	ledger, err := l.load(ctx, session)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range ledger {
		if ledger[i].ID == orderID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrOrderNotFound
	}

	if ledger[idx].Status.IsTerminal() {
		return nil, ErrIllegalTransition
	}

	// Persist a copy first so a storage failure leaves the cached ledger
	// unchanged and the cancellation can be retried.
	updated := append([]domain.Order(nil), ledger...)
	order := &updated[idx]

	cancelledAt := l.now().UTC()
	order.Status = domain.StatusCancelled
	order.CancelReason = reason
	order.CancelledAt = &cancelledAt

	if err := l.persist(ctx, session, updated); err != nil {
		return nil, err
	}
	l.setCached(session, updated)

	out := order.Clone()
	l.publish(ctx, EventOrderCancelled, out)
	return out, nil
}

func (l *Ledger) sessionLock(session string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[session]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[session] = lock
	}
	return lock
}

func (l *Ledger) setCached(session string, ledger []domain.Order) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.orders[session] = ledger
}

func (l *Ledger) load(ctx context.Context, session string) ([]domain.Order, error) {
	l.mu.Lock()
	ledger, ok := l.orders[session]
	l.mu.Unlock()
	if ok {
		return ledger, nil
	}

	data, err := l.store.Get(ctx, ordersKey(session))
	if errors.Is(err, storage.ErrNotFound) {
		ledger = []domain.Order{}
		l.setCached(session, ledger)
		return ledger, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("unmarshal orders: %w", err)
	}
	l.setCached(session, ledger)
	return ledger, nil
}

func (l *Ledger) persist(ctx context.Context, session string, ledger []domain.Order) error {
	data, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("marshal orders: %w", err)
	}
	if err := l.store.Set(ctx, ordersKey(session), data); err != nil {
		return fmt.Errorf("persist orders: %w", err)
	}
	return nil
}

func (l *Ledger) publish(ctx context.Context, eventType string, order *domain.Order) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.PublishOrderEvent(ctx, eventType, order); err != nil {
		log.Printf("failed to publish %s event for order %s: %v", eventType, order.ID, err)
	}
}

func ordersKey(session string) string {
	return fmt.Sprintf("orders:%s", session)
}
