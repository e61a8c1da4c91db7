package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eatsapp/order-service/internal/models/errs"
	"github.com/eatsapp/order-service/internal/models/user"
)

// Lock in case of t.Parallel call.
type mockRepository struct {
	items []user.User
	mu    sync.RWMutex
}

func (m *mockRepository) GetUserByID(_ context.Context, userID int) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.ID == userID {
			return &item, nil
		}
	}
	return &user.User{}, errs.ErrNotFound
}

func (m *mockRepository) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	if email == "panic@example.com" {
		return &user.User{}, errors.New("don't panic!")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.Email == email {
			return &item, nil
		}
	}
	return &user.User{}, errs.ErrNotFound
}

func (m *mockRepository) CreateUser(_ context.Context, email, password string, role user.Role) (int, error) {
	if email == "panic@example.com" {
		return -1, errors.New("don't panic!")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	maxID := -1
	for _, item := range m.items {
		if item.Email == email {
			return -1, errs.ErrDataConflict
		}
		maxID = max(maxID, item.ID)
	}
	m.items = append(m.items, user.User{
		ID:        maxID + 1,
		Email:     email,
		Password:  password,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	return maxID + 1, nil
}
