package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/eatsapp/order-service/internal/models/errs"
	"github.com/eatsapp/order-service/internal/models/review"
	"github.com/eatsapp/order-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// reviewService represents all review service actions.
type reviewService interface {
	SaveReview(ctx context.Context, params SaveReviewParams) (*review.Review, error)
	GetReviews(ctx context.Context, restaurantID, minStar, maxStar int) ([]*review.Review, error)
	ModifyReview(ctx context.Context, reviewID string, params ModifyReviewParams) (*review.Review, error)
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
	service reviewService
	logger  logger.Logger
}

// NewController registers the review routes. Listing is public;
// writing requires an authenticated principal.
func NewController(service reviewService, logger logger.Logger, options ChiServerOptions) {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}

	c := Controller{service: service, logger: logger}

	r.Group(func(r chi.Router) {
		for _, middleware := range options.Middlewares {
			r.Use(middleware)
		}
		r.Post(options.BaseURL+"/reviews", c.CreateReview)
		r.Patch(options.BaseURL+"/reviews/{reviewID}", c.ModifyReview)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/restaurants/{restaurantID}/reviews", c.GetReviews)
	})
}

// CreateReviewRequest is the save body.
type CreateReviewRequest struct {
	OrderID string `json:"order_id"`
	Content string `json:"content"`
	Star    int    `json:"star"`
}

// ModifyReviewRequest is the modify body.
type ModifyReviewRequest struct {
	Content string `json:"content"`
	Star    int    `json:"star"`
}

// ReviewResponse is the projection of a review returned to clients.
type ReviewResponse struct {
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           string    `json:"id"`
	OrderID      string    `json:"order_id"`
	Content      string    `json:"content"`
	RestaurantID int       `json:"restaurant_id"`
	Star         int       `json:"star"`
}

func NewReviewResponse(rv *review.Review) *ReviewResponse {
	return &ReviewResponse{
		CreatedAt:    rv.CreatedAt,
		UpdatedAt:    rv.UpdatedAt,
		ID:           rv.ID,
		OrderID:      rv.OrderID,
		Content:      rv.Content,
		RestaurantID: rv.RestaurantID,
		Star:         rv.Star,
	}
}

// Create review (POST /api/reviews).
func (c *Controller) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.ErrorHandlerFunc(w, r, checkJSONDecodeError(err))
		return
	}
	defer r.Body.Close()

	if req.OrderID == "" {
		c.ErrorHandlerFunc(w, r, &errs.RequiredJSONBodyParamError{ParamName: "order_id"})
		return
	}

	rv, err := c.service.SaveReview(r.Context(), SaveReviewParams{
		OrderID: req.OrderID,
		Content: req.Content,
		Star:    req.Star,
	})
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err = json.NewEncoder(w).Encode(NewReviewResponse(rv)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// List restaurant reviews by star range
// (GET /api/restaurants/{restaurantID}/reviews?min=&max=).
func (c *Controller) GetReviews(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := strconv.Atoi(chi.URLParam(r, "restaurantID"))
	if err != nil {
		c.ErrorHandlerFunc(w, r,
			fmt.Errorf("%w: restaurantID must be an integer", errs.ErrInvalidRequest))
		return
	}

	minStar, err := intQueryParam(r, "min")
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
	maxStar, err := intQueryParam(r, "max")
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	reviews, err := c.service.GetReviews(r.Context(), restaurantID, minStar, maxStar)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	res := make([]*ReviewResponse, len(reviews))
	for i, rv := range reviews {
		res[i] = NewReviewResponse(rv)
	}

	w.Header().Set("Content-Type", "application/json")

	if err = json.NewEncoder(w).Encode(res); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}
}

// Modify review (PATCH /api/reviews/{reviewID}).
func (c *Controller) ModifyReview(w http.ResponseWriter, r *http.Request) {
	var req ModifyReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.ErrorHandlerFunc(w, r, checkJSONDecodeError(err))
		return
	}
	defer r.Body.Close()

	rv, err := c.service.ModifyReview(r.Context(), chi.URLParam(r, "reviewID"), ModifyReviewParams{
		Content: req.Content,
		Star:    req.Star,
	})
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err = json.NewEncoder(w).Encode(NewReviewResponse(rv)); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
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

	// Status Not Found (404).
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound

	// Status Conflict (409).
	case errors.Is(err, errs.ErrAlreadyExists) ||
		errors.Is(err, errs.ErrDataConflict):
		code = http.StatusConflict

	// Status Unprocessable Entity (422).
	case errors.Is(err, errs.ErrOrderNotFinished):
		code = http.StatusUnprocessableEntity
	}

	w.WriteHeader(code)

	c.logger.Errorf("review controller [%d]: %s", code, err)

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

func intQueryParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errs.ErrInvalidRequest, name)
	}

	return v, nil
}
