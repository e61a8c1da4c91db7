package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eatsapp/order-service/internal/models/errs"
	"github.com/eatsapp/order-service/internal/models/review"
	"github.com/eatsapp/order-service/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository interface {
	CreateReview(ctx context.Context, rv *review.Review) error
	GetReviewByIDForUpdate(ctx context.Context, id string) (*review.Review, error)
	GetReviewsByRestaurant(ctx context.Context, restaurantID, minStar, maxStar int) ([]*review.Review, error)
	UpdateReview(ctx context.Context, rv *review.Review) error
	AttachReviewToOrder(ctx context.Context, orderID, reviewID string) error
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

// CreateReview inserts the review. The unique index on order_id makes
// a second review for the same order fail with ErrAlreadyExists even
// under concurrent saves.
func (r *Repo) CreateReview(ctx context.Context, rv *review.Review) error {
	const query = `
		INSERT INTO reviews (id, order_id, restaurant_id, star, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at;
	`

	rv.ID = uuid.NewString()

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query,
		rv.ID,
		rv.OrderID,
		rv.RestaurantID,
		rv.Star,
		rv.Content,
	).Scan(&rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.UniqueViolation {
				return fmt.Errorf("%w: review for order %s", errs.ErrAlreadyExists, rv.OrderID)
			}
		}
		return err
	}

	return nil
}

func (r *Repo) GetReviewByIDForUpdate(ctx context.Context, id string) (*review.Review, error) {
	const query = `
		SELECT id, order_id, restaurant_id, star, content, created_at, updated_at
		FROM reviews WHERE id = $1 FOR UPDATE;
	`

	rv := new(review.Review)

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&rv.ID,
		&rv.OrderID,
		&rv.RestaurantID,
		&rv.Star,
		&rv.Content,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return rv, nil
}

func (r *Repo) GetReviewsByRestaurant(ctx context.Context, restaurantID, minStar, maxStar int) ([]*review.Review, error) {
	const query = `
		SELECT id, order_id, restaurant_id, star, content, created_at, updated_at
		FROM reviews
		WHERE restaurant_id = $1 AND star BETWEEN $2 AND $3
		ORDER BY created_at DESC;
	`

	rows, err := r.db.QueryContext(ctx, query, restaurantID, minStar, maxStar)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	reviews := make([]*review.Review, 0)

	for rows.Next() {
		rv := new(review.Review)
		err = rows.Scan(
			&rv.ID,
			&rv.OrderID,
			&rv.RestaurantID,
			&rv.Star,
			&rv.Content,
			&rv.CreatedAt,
			&rv.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		reviews = append(reviews, rv)
	}

	// Rows.Err will report the last error encountered by Rows.Scan.
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return reviews, nil
}

func (r *Repo) UpdateReview(ctx context.Context, rv *review.Review) error {
	const query = `
		UPDATE reviews SET star = $1, content = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at;
	`

	err := r.getter.DefaultTrOrDB(ctx, r.db).
		QueryRowContext(ctx, query, rv.Star, rv.Content, rv.ID).
		Scan(&rv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}

	return nil
}

func (r *Repo) AttachReviewToOrder(ctx context.Context, orderID, reviewID string) error {
	const query = "UPDATE orders SET review_id = $1, updated_at = now() WHERE id = $2;"

	result, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, reviewID, orderID)
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
