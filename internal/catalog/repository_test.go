package catalog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/eatsapp/order-service/internal/models/errs"
	"github.com/eatsapp/order-service/internal/models/user"
	"github.com/eatsapp/order-service/pkg/logger"
	"github.com/DATA-DOG/go-sqlmock"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRepo(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(db, trmsql.DefaultCtxGetter, logger.NewWithZap(zap.NewNop()))
	require.NoError(t, err)

	return repo, mock
}

func TestRepo_GetUserByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newRepo(t)

		now := time.Now()
		mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "email", "password", "role", "created_at", "updated_at"}).
				AddRow(1, "user@example.com", "hash", "CUSTOMER", now, now))

		u, err := repo.GetUserByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", u.Email)
		assert.Equal(t, user.CUSTOMER, u.Role)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
			WithArgs(404).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetUserByID(context.Background(), 404)
		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestRepo_GetRestaurantByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery(`SELECT .* FROM restaurants WHERE id = \$1`).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "owner_id", "name", "opening_time", "closing_time", "minimum_price"}).
				AddRow(7, 2, "Chicken Place", "09:00:00", "21:00:00", "10000"))

		r, err := repo.GetRestaurantByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, "Chicken Place", r.Name)
		assert.Equal(t, 2, r.OwnerID)
		assert.Equal(t, "09:00:00", r.OpeningTime.String())
		assert.Equal(t, "21:00:00", r.ClosingTime.String())
		assert.True(t, r.MinimumPrice.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery(`SELECT .* FROM restaurants WHERE id = \$1`).
			WithArgs(404).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetRestaurantByID(context.Background(), 404)
		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestRepo_GetMenuByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery(`SELECT .* FROM menus WHERE id = \$1`).
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "restaurant_id", "name", "price"}).
				AddRow(3, 7, "Fried Chicken", "8000"))

		m, err := repo.GetMenuByID(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, 7, m.RestaurantID)
		assert.Equal(t, "Fried Chicken", m.Name)
		assert.True(t, m.Price.Equal(decimal.NewFromInt(8000)))
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectQuery(`SELECT .* FROM menus WHERE id = \$1`).
			WithArgs(404).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetMenuByID(context.Background(), 404)
		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}
