package order

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/eatsapp/order-service/internal/events"
	"github.com/eatsapp/order-service/internal/models/errs"
	"github.com/eatsapp/order-service/internal/models/order"
	"github.com/eatsapp/order-service/internal/models/restaurant"
	"github.com/eatsapp/order-service/internal/models/user"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

// Transactions collapse to plain calls in tests.
type fakeTrManager struct{}

func (fakeTrManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTrManager) DoWithSettings(ctx context.Context, _ trm.Settings, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ trm.Manager = fakeTrManager{}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// Lock in case of t.Parallel call.
type mockRepository struct {
	items map[string]*order.Order
	next  int
	mu    sync.Mutex
}

func newMockRepository(orders ...*order.Order) *mockRepository {
	m := &mockRepository{items: make(map[string]*order.Order)}
	for _, o := range orders {
		m.items[o.ID] = o
	}
	return m
}

func (m *mockRepository) CreateOrder(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	o.ID = "order-" + strconv.Itoa(m.next)
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	m.items[o.ID] = &cp
	return nil
}

func (m *mockRepository) GetOrderByID(_ context.Context, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.items[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockRepository) GetOrderByIDForUpdate(ctx context.Context, id string) (*order.Order, error) {
	return m.GetOrderByID(ctx, id)
}

func (m *mockRepository) GetOrdersByCustomerID(_ context.Context, customerID int) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*order.Order
	for _, o := range m.items {
		if o.CustomerID == customerID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRepository) GetOrdersByRestaurantID(_ context.Context, restaurantID int) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*order.Order
	for _, o := range m.items {
		if o.RestaurantID == restaurantID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRepository) UpdateOrderStatus(_ context.Context, id string, status order.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.items[id]
	if !ok {
		return errs.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

type mockCatalog struct {
	users       map[int]*user.User
	restaurants map[int]*restaurant.Restaurant
	menus       map[int]*restaurant.Menu
}

func (m *mockCatalog) GetUserByID(_ context.Context, id int) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

func (m *mockCatalog) GetRestaurantByID(_ context.Context, id int) (*restaurant.Restaurant, error) {
	r, ok := m.restaurants[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return r, nil
}

func (m *mockCatalog) GetMenuByID(_ context.Context, id int) (*restaurant.Menu, error) {
	mn, ok := m.menus[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return mn, nil
}

type mockPublisher struct {
	published []events.OrderEvent
	mu        sync.Mutex
}

func (m *mockPublisher) PublishOrderEvent(_ context.Context, e events.OrderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, e)
	return nil
}
