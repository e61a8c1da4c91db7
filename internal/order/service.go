package order

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/eatsapp/order-service/internal/catalog"
	"github.com/eatsapp/order-service/internal/events"
	"github.com/eatsapp/order-service/internal/models/errs"
	"github.com/eatsapp/order-service/internal/models/order"
	"github.com/eatsapp/order-service/internal/models/restaurant"
	"github.com/eatsapp/order-service/internal/models/user"
	"github.com/eatsapp/order-service/pkg/logger"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

// Service coordinates the order state machine. Every mutating
// operation runs its load, guards and write inside one transaction,
// so two concurrent transitions of the same order resolve to exactly
// one success.
type Service struct {
	repo    Repository
	catalog catalog.Repository
	events  events.Publisher
	trm     trm.Manager
	clock   Clock
	logger  logger.Logger
}

func NewService(
	repo Repository,
	catalog catalog.Repository,
	events events.Publisher,
	trm trm.Manager,
	clock Clock,
	logger logger.Logger,
) (*Service, error) {
	if repo == nil {
		return nil, errors.New("nil dependency: repository")
	}
	if catalog == nil {
		return nil, errors.New("nil dependency: catalog")
	}
	if trm == nil {
		return nil, errors.New("nil dependency: transaction manager")
	}
	if clock == nil {
		return nil, errors.New("nil dependency: clock")
	}
	if logger == nil {
		return nil, errors.New("nil dependency: logger")
	}
	return &Service{
		repo:    repo,
		catalog: catalog,
		events:  events,
		trm:     trm,
		clock:   clock,
		logger:  logger,
	}, nil
}

var _ orderService = (*Service)(nil)

// CreateOrderParams is the create command.
type CreateOrderParams struct {
	CustomerRequest string
	RestaurantID    int
	MenuID          int
	Quantity        int
}

// CreateOrder places a new order in the REQUEST status after the
// eligibility guards pass, in order: restaurant exists, not a
// self-order, user exists, menu belongs to the restaurant, store is
// open, subtotal meets the restaurant minimum.
func (s *Service) CreateOrder(ctx context.Context, principal *user.User, params CreateOrderParams) (*order.Order, error) {
	if params.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", errs.ErrInvalidRequest)
	}
	if utf8.RuneCountInString(params.CustomerRequest) > order.MaxCustomerRequestLen {
		return nil, fmt.Errorf("%w: customer request longer than %d characters",
			errs.ErrInvalidRequest, order.MaxCustomerRequestLen)
	}

	var created *order.Order

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		rst, err := s.catalog.GetRestaurantByID(ctx, params.RestaurantID)
		if err != nil {
			return fmt.Errorf("restaurant %d: %w", params.RestaurantID, err)
		}

		if rst.OwnerID == principal.ID {
			return fmt.Errorf("%w: cannot order from own restaurant", errs.ErrForbidden)
		}

		if _, err = s.catalog.GetUserByID(ctx, principal.ID); err != nil {
			return fmt.Errorf("user %d: %w", principal.ID, err)
		}

		menu, err := s.catalog.GetMenuByID(ctx, params.MenuID)
		if err != nil {
			return fmt.Errorf("menu %d: %w", params.MenuID, err)
		}
		if menu.RestaurantID != rst.ID {
			return fmt.Errorf("menu %d: %w", params.MenuID, errs.ErrNotFound)
		}

		now := restaurant.TimeOfDayFrom(s.clock.Now())
		if !rst.OpenAt(now) {
			return fmt.Errorf("%w: open from %s to %s",
				errs.ErrStoreClosed, rst.OpeningTime, rst.ClosingTime)
		}

		o, err := order.New(principal.ID, rst.ID, menu, params.Quantity, params.CustomerRequest)
		if err != nil {
			return err
		}

		if o.Subtotal().LessThan(rst.MinimumPrice) {
			return fmt.Errorf("%w: minimum order price is %s",
				errs.ErrBelowMinimumPrice, rst.MinimumPrice)
		}

		if err = s.repo.CreateOrder(ctx, o); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderCreated, created)

	return created, nil
}

// GetOrdersForCustomer returns the principal's orders, newest first.
func (s *Service) GetOrdersForCustomer(ctx context.Context, principal *user.User) ([]*order.Order, error) {
	return s.repo.GetOrdersByCustomerID(ctx, principal.ID)
}

// GetOrdersForRestaurant returns all orders of the restaurant; only
// its owner may list them.
func (s *Service) GetOrdersForRestaurant(ctx context.Context, principal *user.User, restaurantID int) ([]*order.Order, error) {
	if principal.Role != user.OWNER {
		return nil, fmt.Errorf("%w: owner role required", errs.ErrForbidden)
	}

	rst, err := s.catalog.GetRestaurantByID(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("restaurant %d: %w", restaurantID, err)
	}
	if rst.OwnerID != principal.ID {
		return nil, fmt.Errorf("%w: not the restaurant owner", errs.ErrForbidden)
	}

	return s.repo.GetOrdersByRestaurantID(ctx, restaurantID)
}

// CancelByCustomer cancels the principal's own order, allowed only
// while it is still in REQUEST.
func (s *Service) CancelByCustomer(ctx context.Context, principal *user.User, orderID string) error {
	var cancelled *order.Order

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetOrderByIDForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("order %s: %w", orderID, err)
		}

		if o.CustomerID != principal.ID {
			return fmt.Errorf("%w: not the order customer", errs.ErrForbidden)
		}

		switch {
		case o.Status == order.CANCEL:
			return fmt.Errorf("%w: order already cancelled", errs.ErrDataConflict)
		case o.Status != order.REQUEST:
			return fmt.Errorf("%w: cooking already started", errs.ErrDataConflict)
		}

		if err = o.Cancel(); err != nil {
			return fmt.Errorf("%w: %s", errs.ErrDataConflict, err)
		}
		if err = s.repo.UpdateOrderStatus(ctx, o.ID, o.Status); err != nil {
			return err
		}

		cancelled = o
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.OrderCancelled, cancelled)

	return nil
}

// CancelByOwner cancels any non-terminal order of the principal's
// restaurant. Finished orders stay immutable.
func (s *Service) CancelByOwner(ctx context.Context, principal *user.User, orderID string) error {
	if principal.Role != user.OWNER {
		return fmt.Errorf("%w: owner role required", errs.ErrForbidden)
	}

	var cancelled *order.Order

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetOrderByIDForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("order %s: %w", orderID, err)
		}

		if err = s.guardRestaurantOwner(ctx, principal, o); err != nil {
			return err
		}

		switch o.Status {
		case order.CANCEL:
			return fmt.Errorf("%w: order already cancelled", errs.ErrDataConflict)
		case order.FINISH:
			return fmt.Errorf("%w: order already finished", errs.ErrDataConflict)
		}

		if err = o.Cancel(); err != nil {
			return fmt.Errorf("%w: %s", errs.ErrDataConflict, err)
		}
		if err = s.repo.UpdateOrderStatus(ctx, o.ID, o.Status); err != nil {
			return err
		}

		cancelled = o
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.OrderCancelled, cancelled)

	return nil
}

// Advance moves an order one step forward:
// REQUEST -> COOKING -> DELIVERING -> FINISH.
func (s *Service) Advance(ctx context.Context, principal *user.User, orderID string) (order.Status, error) {
	if principal.Role != user.OWNER {
		return "", fmt.Errorf("%w: owner role required", errs.ErrForbidden)
	}

	var advanced *order.Order

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetOrderByIDForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("order %s: %w", orderID, err)
		}

		if err = s.guardRestaurantOwner(ctx, principal, o); err != nil {
			return err
		}

		switch o.Status {
		case order.CANCEL:
			return fmt.Errorf("%w: order already cancelled", errs.ErrDataConflict)
		case order.FINISH:
			return fmt.Errorf("%w: order already finished", errs.ErrDataConflict)
		}

		if _, err = o.Advance(); err != nil {
			return fmt.Errorf("%w: %s", errs.ErrDataConflict, err)
		}
		if err = s.repo.UpdateOrderStatus(ctx, o.ID, o.Status); err != nil {
			return err
		}

		advanced = o
		return nil
	})
	if err != nil {
		return "", err
	}

	s.publish(ctx, events.OrderStatusChanged, advanced)

	return advanced.Status, nil
}

// guardRestaurantOwner fails unless the principal owns the restaurant
// the order was placed at.
func (s *Service) guardRestaurantOwner(ctx context.Context, principal *user.User, o *order.Order) error {
	rst, err := s.catalog.GetRestaurantByID(ctx, o.RestaurantID)
	if err != nil {
		return fmt.Errorf("restaurant %d: %w", o.RestaurantID, err)
	}
	if rst.OwnerID != principal.ID {
		return fmt.Errorf("%w: not the restaurant owner", errs.ErrForbidden)
	}
	return nil
}

// publish emits an order event after a committed transition. Event
// delivery never fails the request.
func (s *Service) publish(ctx context.Context, typ string, o *order.Order) {
	if s.events == nil {
		return
	}

	e := events.OrderEvent{
		Timestamp:    s.clock.Now(),
		Type:         typ,
		OrderID:      o.ID,
		Status:       o.Status,
		RestaurantID: o.RestaurantID,
		CustomerID:   o.CustomerID,
	}

	if err := s.events.PublishOrderEvent(ctx, e); err != nil {
		s.logger.Errorf("publish %s event for order %s: %s", typ, o.ID, err)
	}
}
