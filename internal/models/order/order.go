package order

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/eatsapp/order-service/internal/models/errs"
	"github.com/eatsapp/order-service/internal/models/restaurant"
	"github.com/shopspring/decimal"
)

// Status of an order within its lifecycle. Stored by name.
type Status string

const (
	REQUEST    Status = "REQUEST"
	COOKING    Status = "COOKING"
	DELIVERING Status = "DELIVERING"
	FINISH     Status = "FINISH"
	CANCEL     Status = "CANCEL"
)

// Terminal reports whether no forward transition exists from s.
func (s Status) Terminal() bool {
	return s == FINISH || s == CANCEL
}

// Next returns the status one step forward:
// REQUEST -> COOKING -> DELIVERING -> FINISH.
func (s Status) Next() (Status, error) {
	switch s {
	case REQUEST:
		return COOKING, nil
	case COOKING:
		return DELIVERING, nil
	case DELIVERING:
		return FINISH, nil
	}
	return "", fmt.Errorf("no transition from status %s", s)
}

// DeliveryFee is the flat fee added to every order,
// in minor currency units.
var DeliveryFee = decimal.NewFromInt(2000)

// MaxCustomerRequestLen limits the free-text note length.
const MaxCustomerRequestLen = 50

// Order snapshots the menu name and unit price at creation time;
// later menu edits never alter persisted orders.
type Order struct {
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	ID              string          `db:"id" json:"id"`
	MenuName        string          `db:"menu_name" json:"menu_name"`
	CustomerRequest string          `db:"customer_request" json:"customer_request"`
	ReviewID        string          `db:"review_id" json:"review_id,omitempty"`
	Status          Status          `db:"status" json:"status"`
	UnitPrice       decimal.Decimal `db:"unit_price" json:"unit_price"`
	DeliveryFee     decimal.Decimal `db:"delivery_fee" json:"delivery_fee"`
	TotalPrice      decimal.Decimal `db:"total_price" json:"total_price"`
	CustomerID      int             `db:"customer_id" json:"customer_id"`
	RestaurantID    int             `db:"restaurant_id" json:"restaurant_id"`
	Quantity        int             `db:"quantity" json:"quantity"`
}

// New builds an order in the REQUEST status with the menu snapshot
// and the computed total price. The ID is assigned on first persist.
func New(customerID, restaurantID int, menu *restaurant.Menu, quantity int, customerRequest string) (*Order, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", errs.ErrInvalidRequest)
	}
	if utf8.RuneCountInString(customerRequest) > MaxCustomerRequestLen {
		return nil, fmt.Errorf("%w: customer request longer than %d characters",
			errs.ErrInvalidRequest, MaxCustomerRequestLen)
	}

	o := &Order{
		CustomerID:      customerID,
		RestaurantID:    restaurantID,
		MenuName:        menu.Name,
		UnitPrice:       menu.Price,
		Quantity:        quantity,
		CustomerRequest: customerRequest,
		DeliveryFee:     DeliveryFee,
		Status:          REQUEST,
	}
	o.TotalPrice = o.DeliveryFee.Add(o.Subtotal())

	return o, nil
}

// Subtotal is the menu price times the quantity, without the delivery fee.
func (o *Order) Subtotal() decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// Cancel moves the order to CANCEL. Terminal orders are immutable.
func (o *Order) Cancel() error {
	if o.Status.Terminal() {
		return fmt.Errorf("cannot cancel order in status %s", o.Status)
	}
	o.Status = CANCEL
	return nil
}

// Advance moves the order one step forward and returns the new status.
func (o *Order) Advance() (Status, error) {
	next, err := o.Status.Next()
	if err != nil {
		return "", err
	}
	o.Status = next
	return next, nil
}
