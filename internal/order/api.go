package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eatsapp/order-service/internal/models/errs"
	"github.com/eatsapp/order-service/internal/models/order"
	"github.com/eatsapp/order-service/internal/models/user"
	"github.com/eatsapp/order-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// orderService represents all order service actions.
type orderService interface {
	CreateOrder(ctx context.Context, principal *user.User, params CreateOrderParams) (*order.Order, error)
	GetOrdersForCustomer(ctx context.Context, principal *user.User) ([]*order.Order, error)
	GetOrdersForRestaurant(ctx context.Context, principal *user.User, restaurantID int) ([]*order.Order, error)
	CancelByCustomer(ctx context.Context, principal *user.User, orderID string) error
	CancelByOwner(ctx context.Context, principal *user.User, orderID string) error
	Advance(ctx context.Context, principal *user.User, orderID string) (order.Status, error)
}

type (
	MiddlewareFunc func(http.Handler) http.Handler

	ChiServerOptions struct {
		BaseRouter  chi.Router
		BaseURL     string
		Middlewares []MiddlewareFunc
	}
)

type Controller struct {
	service orderService
	logger  logger.Logger
}

// NewController registers the order routes. All of them require an
// authenticated principal.
func NewController(service orderService, logger logger.Logger, options ChiServerOptions) {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}

	c := Controller{service: service, logger: logger}

	r.Group(func(r chi.Router) {
		for _, middleware := range options.Middlewares {
			r.Use(middleware)
		}
		r.Post(options.BaseURL+"/orders", c.CreateOrder)
		r.Get(options.BaseURL+"/orders", c.GetOrders)
		r.Post(options.BaseURL+"/orders/{orderID}/cancel", c.CancelOrder)
		r.Get(options.BaseURL+"/owner/restaurants/{restaurantID}/orders", c.GetRestaurantOrders)
		r.Post(options.BaseURL+"/owner/orders/{orderID}/cancel", c.CancelRestaurantOrder)
		r.Patch(options.BaseURL+"/owner/orders/{orderID}/status", c.AdvanceOrder)
	})
}

// CreateOrderRequest is the create body.
type CreateOrderRequest struct {
	CustomerRequest string `json:"customer_request"`
	RestaurantID    int    `json:"restaurant_id"`
	MenuID          int    `json:"menu_id"`
	Quantity        int    `json:"quantity"`
}

// OrderResponse is the projection of an order returned to clients.
// Money values are minor currency units.
type OrderResponse struct {
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	ID              string       `json:"id"`
	MenuName        string       `json:"menu_name"`
	CustomerRequest string       `json:"customer_request"`
	ReviewID        string       `json:"review_id,omitempty"`
	Status          order.Status `json:"status"`
	UnitPrice       float64      `json:"unit_price"`
	DeliveryFee     float64      `json:"delivery_fee"`
	TotalPrice      float64      `json:"total_price"`
	RestaurantID    int          `json:"restaurant_id"`
	Quantity        int          `json:"quantity"`
}

func NewOrderResponse(o *order.Order) *OrderResponse {
	return &OrderResponse{
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		ID:              o.ID,
		MenuName:        o.MenuName,
		CustomerRequest: o.CustomerRequest,
		ReviewID:        o.ReviewID,
		Status:          o.Status,
		UnitPrice:       o.UnitPrice.InexactFloat64(),
		DeliveryFee:     o.DeliveryFee.InexactFloat64(),
		TotalPrice:      o.TotalPrice.InexactFloat64(),
		RestaurantID:    o.RestaurantID,
		Quantity:        o.Quantity,
	}
}

// OrderStatusResponse is returned by the advance operation.
type OrderStatusResponse struct {
	OrderID string       `json:"order_id"`
	Status  order.Status `json:"status"`
}

// ConfirmationResponse is the textual confirmation of a cancel.
type ConfirmationResponse struct {
	Message string `json:"message"`
}

// Create new order (POST /api/orders).
func (c *Controller) CreateOrder(w http.ResponseWriter, r *http.Request) {
	principal, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.ErrorHandlerFunc(w, r, checkJSONDecodeError(err))
		return
	}
	defer r.Body.Close()

	if req.RestaurantID == 0 {
		c.ErrorHandlerFunc(w, r, &errs.RequiredJSONBodyParamError{ParamName: "restaurant_id"})
		return
	}
	if req.MenuID == 0 {
		c.ErrorHandlerFunc(w, r, &errs.RequiredJSONBodyParamError{ParamName: "menu_id"})
		return
	}

	o, err := c.service.CreateOrder(r.Context(), principal, CreateOrderParams{
		CustomerRequest: req.CustomerRequest,
		RestaurantID:    req.RestaurantID,
		MenuID:          req.MenuID,
		Quantity:        req.Quantity,
	})
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err = json.NewEncoder(w).Encode(NewOrderResponse(o)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Get own orders, newest first (GET /api/orders).
func (c *Controller) GetOrders(w http.ResponseWriter, r *http.Request) {
	principal, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	orders, err := c.service.GetOrdersForCustomer(r.Context(), principal)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	c.encodeOrders(w, r, orders)
}

// Get restaurant orders (GET /api/owner/restaurants/{restaurantID}/orders).
func (c *Controller) GetRestaurantOrders(w http.ResponseWriter, r *http.Request) {
	principal, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	restaurantID, err := intURLParam(r, "restaurantID")
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	orders, err := c.service.GetOrdersForRestaurant(r.Context(), principal, restaurantID)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	c.encodeOrders(w, r, orders)
}

// Cancel own order (POST /api/orders/{orderID}/cancel).
func (c *Controller) CancelOrder(w http.ResponseWriter, r *http.Request) {
	principal, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := c.service.CancelByCustomer(r.Context(), principal, chi.URLParam(r, "orderID")); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	c.encodeJSON(w, r, ConfirmationResponse{Message: "order cancelled"})
}

// Cancel restaurant order (POST /api/owner/orders/{orderID}/cancel).
func (c *Controller) CancelRestaurantOrder(w http.ResponseWriter, r *http.Request) {
	principal, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := c.service.CancelByOwner(r.Context(), principal, chi.URLParam(r, "orderID")); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	c.encodeJSON(w, r, ConfirmationResponse{Message: "order cancelled"})
}

// Advance order status (PATCH /api/owner/orders/{orderID}/status).
func (c *Controller) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	principal, found := user.FromContext(r.Context())
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	orderID := chi.URLParam(r, "orderID")

	status, err := c.service.Advance(r.Context(), principal, orderID)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	c.encodeJSON(w, r, OrderStatusResponse{OrderID: orderID, Status: status})
}

func (c *Controller) encodeOrders(w http.ResponseWriter, r *http.Request, orders []*order.Order) {
	res := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		res[i] = NewOrderResponse(o)
	}

	c.encodeJSON(w, r, res)
}

func (c *Controller) encodeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		c.ErrorHandlerFunc(w, r, err)
	}
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func (c *Controller) ErrorHandlerFunc(w http.ResponseWriter, _ *http.Request, err error) {
	errJSON := errs.JSON{Error: err.Error()}
	code := http.StatusInternalServerError

	switch {
	// Status Bad Request (400).
	case errors.Is(err, errs.ErrInvalidRequest) ||
		errors.Is(err, errs.ErrInvalidPayload) ||
		errors.Is(err, errs.ErrRequiredBodyParam) ||
		errors.Is(err, io.EOF):
		code = http.StatusBadRequest

	// Status Forbidden (403).
	case errors.Is(err, errs.ErrForbidden):
		code = http.StatusForbidden

	// Status Not Found (404).
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound

	// Status Conflict (409).
	case errors.Is(err, errs.ErrDataConflict) ||
		errors.Is(err, errs.ErrAlreadyExists):
		code = http.StatusConflict

	// Status Unprocessable Entity (422).
	case errors.Is(err, errs.ErrStoreClosed) ||
		errors.Is(err, errs.ErrBelowMinimumPrice):
		code = http.StatusUnprocessableEntity
	}

	w.WriteHeader(code)

	c.logger.Errorf("order controller [%d]: %s", code, err)

	if err = json.NewEncoder(w).Encode(errJSON); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func checkJSONDecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %s must be of type %s, got %s",
			errs.ErrInvalidPayload, typeErr.Field, typeErr.Type, typeErr.Value)
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: empty body", errs.ErrInvalidPayload)
	}

	return err
}

func intURLParam(r *http.Request, name string) (int, error) {
	var v int
	if _, err := fmt.Sscanf(chi.URLParam(r, name), "%d", &v); err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errs.ErrInvalidRequest, name)
	}
	return v, nil
}
