package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/eatsapp/order-service/internal/models/errs"
	"github.com/eatsapp/order-service/internal/models/user"
	"github.com/eatsapp/order-service/pkg/limiter"
	"github.com/go-chi/chi/v5"
)

// RegisterParams defines parameters for Register.
type RegisterParams struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     user.Role `json:"role"`
}

// LoginParams defines parameters for Login.
type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Registration (POST /api/auth/register)
	Register(w http.ResponseWriter, r *http.Request, params RegisterParams)
	// Authentication (POST /api/auth/login)
	Login(w http.ResponseWriter, r *http.Request, params LoginParams)
}

// ServerInterfaceWrapper converts payloads to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
	Limiter            *limiter.DynamicRateLimiter
	HandlerMiddlewares []MiddlewareFunc
}

type MiddlewareFunc func(http.Handler) http.Handler

func (siw *ServerInterfaceWrapper) allow(w http.ResponseWriter, r *http.Request) bool {
	if siw.Limiter != nil && !siw.Limiter.Allow() {
		siw.ErrorHandlerFunc(w, r, errs.ErrRateLimit)
		return false
	}
	return true
}

// Register operation middleware.
func (siw *ServerInterfaceWrapper) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !siw.allow(w, r) {
		return
	}

	// Parameter object where we will unmarshal all parameters from the body.
	var params RegisterParams

	if err := decodeJSONBody(r, &params); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}

	// ------------- Required JSON body parameter "email" -------------

	if params.Email == "" {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "email"})
		return
	}

	// ------------- Required JSON body parameter "password" ----------

	if params.Password == "" {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "password"})
		return
	}

	// ------------- Role must be CUSTOMER or OWNER -------------------

	if !params.Role.Valid() {
		siw.ErrorHandlerFunc(w, r,
			fmt.Errorf("%w: role must be %s or %s",
				errs.ErrInvalidRequest, user.CUSTOMER, user.OWNER))
		return
	}

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.Register(w, r, params)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// Login operation middleware.
func (siw *ServerInterfaceWrapper) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !siw.allow(w, r) {
		return
	}

	// Parameter object where we will unmarshal all parameters from the body.
	var params LoginParams

	if err := decodeJSONBody(r, &params); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}

	// ------------- Required JSON body parameter "email" -------------

	if params.Email == "" {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "email"})
		return
	}

	// ------------- Required JSON body parameter "password" ----------

	if params.Password == "" {
		siw.ErrorHandlerFunc(w, r,
			&errs.RequiredJSONBodyParamError{ParamName: "password"})
		return
	}

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.Login(w, r, params)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// decodeJSONBody reads and unmarshals the request body, mapping
// malformed payloads onto the transport error sentinels.
func decodeJSONBody(r *http.Request, dst interface{}) error {
	if !isApplicationJSON(r) {
		return fmt.Errorf("%w: %s", errs.ErrInvalidContentType, r.Header.Get("Content-Type"))
	}

	defer r.Body.Close()

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty body", errs.ErrInvalidPayload)
	}

	if err = json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("%w: %s must be of type %s, got %s",
				errs.ErrInvalidPayload, typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return fmt.Errorf("%w: %s", errs.ErrInvalidPayload, err)
	}

	return nil
}

func isApplicationJSON(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(contentType, ";"); i > -1 {
		contentType = contentType[0:i]
	}
	return contentType == "application/json"
}

type ChiServerOptions struct {
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
	BaseRouter       chi.Router
	BaseURL          string
	Limiter          *limiter.DynamicRateLimiter
	Middlewares      []MiddlewareFunc
}

// HandlerWithOptions creates http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
		Limiter:            options.Limiter,
	}

	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/register", wrapper.Register)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/login", wrapper.Login)
	})

	return r
}
