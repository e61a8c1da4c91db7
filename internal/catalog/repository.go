// Package catalog gives the order core read access to users,
// restaurants and menus. Catalog administration lives elsewhere;
// nothing here mutates.
package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/eatsapp/order-service/internal/models/errs"
	"github.com/eatsapp/order-service/internal/models/restaurant"
	"github.com/eatsapp/order-service/internal/models/user"
	"github.com/eatsapp/order-service/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
)

type Repository interface {
	GetUserByID(ctx context.Context, id int) (*user.User, error)
	GetRestaurantByID(ctx context.Context, id int) (*restaurant.Restaurant, error)
	GetMenuByID(ctx context.Context, id int) (*restaurant.Menu, error)
}

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

func (r *Repo) GetUserByID(ctx context.Context, id int) (*user.User, error) {
	const query = `
		SELECT id, email, password, role, created_at, updated_at
		FROM users WHERE id = $1;
	`

	u := new(user.User)

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&u.ID,
		&u.Email,
		&u.Password,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *Repo) GetRestaurantByID(ctx context.Context, id int) (*restaurant.Restaurant, error) {
	const query = `
		SELECT id, owner_id, name, opening_time, closing_time, minimum_price
		FROM restaurants WHERE id = $1;
	`

	rst := new(restaurant.Restaurant)

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&rst.ID,
		&rst.OwnerID,
		&rst.Name,
		&rst.OpeningTime,
		&rst.ClosingTime,
		&rst.MinimumPrice,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return rst, nil
}

func (r *Repo) GetMenuByID(ctx context.Context, id int) (*restaurant.Menu, error) {
	const query = `
		SELECT id, restaurant_id, name, price
		FROM menus WHERE id = $1;
	`

	m := new(restaurant.Menu)

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&m.ID,
		&m.RestaurantID,
		&m.Name,
		&m.Price,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return m, nil
}
