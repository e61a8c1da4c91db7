package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/eatsapp/order-service/internal/models/errs"
	"github.com/eatsapp/order-service/internal/models/order"
	"github.com/eatsapp/order-service/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/google/uuid"
)

type Repository interface {
	CreateOrder(ctx context.Context, o *order.Order) error
	GetOrderByID(ctx context.Context, id string) (*order.Order, error)
	GetOrderByIDForUpdate(ctx context.Context, id string) (*order.Order, error)
	GetOrdersByCustomerID(ctx context.Context, customerID int) ([]*order.Order, error)
	GetOrdersByRestaurantID(ctx context.Context, restaurantID int) ([]*order.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status order.Status) error
}

const orderColumns = `
	id, customer_id, restaurant_id, menu_name, unit_price, quantity,
	customer_request, delivery_fee, total_price, status, review_id,
	created_at, updated_at`

type Repo struct {
	db     *sql.DB
	getter *trmsql.CtxGetter
	logger logger.Logger
}

func NewRepository(db *sql.DB, getter *trmsql.CtxGetter, logger logger.Logger) (*Repo, error) {
	if db == nil {
		return nil, errors.New("nil dependency: database")
	}
	if getter == nil {
		return nil, errors.New("nil dependency: transaction getter")
	}

	return &Repo{db: db, getter: getter, logger: logger}, nil
}

var _ Repository = (*Repo)(nil)

func (r *Repo) CreateOrder(ctx context.Context, o *order.Order) error {
	const query = `
		INSERT INTO orders (
			id, customer_id, restaurant_id, menu_name, unit_price, quantity,
			customer_request, delivery_fee, total_price, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at;
	`

	o.ID = uuid.NewString()

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query,
		o.ID,
		o.CustomerID,
		o.RestaurantID,
		o.MenuName,
		o.UnitPrice,
		o.Quantity,
		o.CustomerRequest,
		o.DeliveryFee,
		o.TotalPrice,
		o.Status,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repo) GetOrderByID(ctx context.Context, id string) (*order.Order, error) {
	const query = "SELECT" + orderColumns + " FROM orders WHERE id = $1;"

	return scanOrder(r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, id))
}

// GetOrderByIDForUpdate locks the order row for the duration of the
// enclosing transaction so concurrent transitions serialize.
func (r *Repo) GetOrderByIDForUpdate(ctx context.Context, id string) (*order.Order, error) {
	const query = "SELECT" + orderColumns + " FROM orders WHERE id = $1 FOR UPDATE;"

	return scanOrder(r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *Repo) GetOrdersByCustomerID(ctx context.Context, customerID int) ([]*order.Order, error) {
	const query = "SELECT" + orderColumns +
		" FROM orders WHERE customer_id = $1 ORDER BY created_at DESC;"

	return r.queryOrders(ctx, query, customerID)
}

func (r *Repo) GetOrdersByRestaurantID(ctx context.Context, restaurantID int) ([]*order.Order, error) {
	const query = "SELECT" + orderColumns +
		" FROM orders WHERE restaurant_id = $1 ORDER BY created_at DESC;"

	return r.queryOrders(ctx, query, restaurantID)
}

func (r *Repo) UpdateOrderStatus(ctx context.Context, id string, status order.Status) error {
	const query = "UPDATE orders SET status = $1, updated_at = now() WHERE id = $2;"

	result, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrNotFound
	}

	return nil
}

func (r *Repo) queryOrders(ctx context.Context, query string, arg any) ([]*order.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	orders := make([]*order.Order, 0)

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	// Rows.Err will report the last error encountered by Rows.Scan.
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// scanOrder reads one row laid out as orderColumns.
func scanOrder(row interface{ Scan(dest ...any) error }) (*order.Order, error) {
	o := new(order.Order)
	var reviewID sql.NullString

	err := row.Scan(
		&o.ID,
		&o.CustomerID,
		&o.RestaurantID,
		&o.MenuName,
		&o.UnitPrice,
		&o.Quantity,
		&o.CustomerRequest,
		&o.DeliveryFee,
		&o.TotalPrice,
		&o.Status,
		&reviewID,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	o.ReviewID = reviewID.String

	return o, nil
}
