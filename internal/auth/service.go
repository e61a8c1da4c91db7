package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eatsapp/order-service/internal/config"
	"github.com/eatsapp/order-service/internal/jwt"
	"github.com/eatsapp/order-service/internal/models/errs"
	"github.com/eatsapp/order-service/internal/models/user"
	"github.com/eatsapp/order-service/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo   Repository
	logger logger.Logger
	config *config.Config
}

func NewService(repo Repository, logger logger.Logger, config *config.Config) (*Service, error) {
	if repo == nil {
		return nil, errors.New("nil dependency: repository")
	}
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}
	return &Service{repo: repo, logger: logger, config: config}, nil
}

var _ ServerInterface = (*Service)(nil)

// Registration (POST /api/auth/register).
func (s *Service) Register(w http.ResponseWriter, r *http.Request, params RegisterParams) {
	// Create password hash.
	hashPassword, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.config.PasswordHashCost)
	if err != nil {
		ErrorHandlerFunc(w, r, fmt.Errorf("hash password: %w", err))
		return
	}

	// Create user with the requested role.
	id, err := s.repo.CreateUser(r.Context(), params.Email, string(hashPassword), params.Role)
	if err != nil {
		if errors.Is(err, errs.ErrDataConflict) {
			ErrorHandlerFunc(w, r, fmt.Errorf("%w: email %q already registered", err, params.Email))
			return
		}
		ErrorHandlerFunc(w, r, fmt.Errorf("create user: %w", err))
		return
	}

	s.setAuthCookie(w, r, id)
}

// Authentication (POST /api/auth/login).
func (s *Service) Login(w http.ResponseWriter, r *http.Request, params LoginParams) {
	// Retrieve user from the database with provided email.
	u, err := s.repo.GetUserByEmail(r.Context(), params.Email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			ErrorHandlerFunc(w, r, fmt.Errorf("%w: user with email %q not found",
				errs.ErrInvalidCredentials, params.Email))
			return
		}
		ErrorHandlerFunc(w, r, fmt.Errorf("get user %q: %w", params.Email, err))
		return
	}

	// Compare stored and provided passwords.
	err = bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(params.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			ErrorHandlerFunc(w, r, fmt.Errorf("%w: password", errs.ErrInvalidCredentials))
			return
		}
		ErrorHandlerFunc(w, r, fmt.Errorf("compare passwords: %w", err))
		return
	}

	s.setAuthCookie(w, r, u.ID)
}

// setAuthCookie builds an authentication token and sets it as the
// "Authorization" cookie. Responds 200 on success.
func (s *Service) setAuthCookie(w http.ResponseWriter, r *http.Request, userID int) {
	authToken, err := jwt.BuildString(userID, s.config.JWT.SigningKey, s.config.JWT.Expiration)
	if err != nil {
		ErrorHandlerFunc(w, r, fmt.Errorf("build token: %w", err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "Authorization",
		Value:    authToken,
		Expires:  time.Now().Add(s.config.JWT.Expiration),
		HttpOnly: true,
	})

	w.WriteHeader(http.StatusOK)
}

// Middleware resolves the Authorization cookie to a full user and
// stores it in the request context as the principal.
func (s *Service) Middleware(next http.Handler) http.Handler {
	f := func(w http.ResponseWriter, r *http.Request) {
		authCookie, err := r.Cookie("Authorization")
		if err != nil {
			if errors.Is(err, http.ErrNoCookie) {
				ErrorHandlerFunc(w, r, fmt.Errorf("authorization token: %w", errs.ErrInvalidCredentials))
				return
			}
			ErrorHandlerFunc(w, r, fmt.Errorf("authorization token: %w", err))
			return
		}

		userID, err := jwt.GetUserID(authCookie.Value, s.config.JWT.SigningKey)
		if err != nil {
			ErrorHandlerFunc(w, r, fmt.Errorf("%w: parse token: %s", errs.ErrInvalidCredentials, err))
			return
		}

		u, err := s.repo.GetUserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				ErrorHandlerFunc(w, r, fmt.Errorf("%w: user %d", errs.ErrInvalidCredentials, userID))
				return
			}
			ErrorHandlerFunc(w, r, fmt.Errorf("get user %d: %w", userID, err))
			return
		}

		r = r.WithContext(user.NewContext(r.Context(), u))

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(f)
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func ErrorHandlerFunc(w http.ResponseWriter, _ *http.Request, err error) {
	errJSON := errs.JSON{Error: err.Error()}
	code := http.StatusInternalServerError

	switch {
	// Status Bad Request (400).
	case errors.Is(err, errs.ErrRequiredBodyParam) ||
		errors.Is(err, errs.ErrInvalidRequest) ||
		errors.Is(err, errs.ErrInvalidPayload) ||
		errors.Is(err, errs.ErrInvalidContentType) ||
		errors.Is(err, io.EOF):
		code = http.StatusBadRequest

	// Status Unauthorized (401).
	case errors.Is(err, errs.ErrInvalidCredentials):
		code = http.StatusUnauthorized

	// Status Conflict (409).
	case errors.Is(err, errs.ErrDataConflict):
		code = http.StatusConflict

	// Status Too Many Requests (429).
	case errors.Is(err, errs.ErrRateLimit):
		code = http.StatusTooManyRequests
	}

	w.WriteHeader(code)

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
