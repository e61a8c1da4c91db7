package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eatsapp/order-service/internal/models/errs"
	"github.com/eatsapp/order-service/internal/models/user"
	"github.com/eatsapp/order-service/pkg/logger"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository interface {
	GetUserByID(ctx context.Context, userID int) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	CreateUser(ctx context.Context, email, password string, role user.Role) (id int, err error)
}

type Repo struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, logger logger.Logger) (*Repo, error) {
	if db == nil {
		return nil, errors.New("nil dependency: database")
	}

	return &Repo{db: db, logger: logger}, nil
}

var _ Repository = (*Repo)(nil)

func (r *Repo) GetUserByID(ctx context.Context, userID int) (*user.User, error) {
	const query = `
		SELECT id, email, password, role, created_at, updated_at
		FROM users WHERE id = $1;
	`

	u := new(user.User)

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
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

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	const query = `
		SELECT id, email, password, role, created_at, updated_at
		FROM users WHERE email = $1;
	`

	u := new(user.User)

	err := r.db.QueryRowContext(ctx, query, email).Scan(
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

func (r *Repo) CreateUser(ctx context.Context, email, password string, role user.Role) (int, error) {
	const query = "INSERT INTO users (email, password, role) VALUES ($1, $2, $3) RETURNING id"

	var id int

	err := r.db.QueryRowContext(ctx, query, email, password, role).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.UniqueViolation {
				return -1, errs.ErrDataConflict
			}
		}
		return -1, fmt.Errorf("create user: %w", err)
	}

	return id, nil
}
