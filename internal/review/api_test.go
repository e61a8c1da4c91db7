package review

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eatsapp/order-service/internal/models/errs"
	"github.com/eatsapp/order-service/internal/models/review"
	"github.com/eatsapp/order-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubService returns canned results so that the controller's
// decoding and error mapping can be exercised in isolation.
type stubService struct {
	review  *review.Review
	reviews []*review.Review
	err     error

	gotRestaurantID int
	gotMinStar      int
	gotMaxStar      int
}

func (s *stubService) SaveReview(_ context.Context, _ SaveReviewParams) (*review.Review, error) {
	return s.review, s.err
}

func (s *stubService) GetReviews(_ context.Context, restaurantID, minStar, maxStar int) ([]*review.Review, error) {
	s.gotRestaurantID = restaurantID
	s.gotMinStar = minStar
	s.gotMaxStar = maxStar
	return s.reviews, s.err
}

func (s *stubService) ModifyReview(_ context.Context, _ string, _ ModifyReviewParams) (*review.Review, error) {
	return s.review, s.err
}

func newRouter(service reviewService) *chi.Mux {
	router := chi.NewRouter()
	NewController(service, logger.NewWithZap(zap.NewNop()), ChiServerOptions{
		BaseURL:    "/api",
		BaseRouter: router,
	})
	return router
}

func TestController_CreateReview(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		service := &stubService{review: &review.Review{
			ID: "review-1", OrderID: "order-1", RestaurantID: 7, Star: 5, Content: "great",
		}}
		router := newRouter(service)

		r := httptest.NewRequest(http.MethodPost, "/api/reviews",
			strings.NewReader(`{"order_id":"order-1","star":5,"content":"great"}`))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusCreated, w.Code)

		var res ReviewResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, "review-1", res.ID)
		assert.Equal(t, 5, res.Star)
	})

	t.Run("missing order_id", func(t *testing.T) {
		router := newRouter(&stubService{})

		r := httptest.NewRequest(http.MethodPost, "/api/reviews",
			strings.NewReader(`{"star":5}`))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service error mapping", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			code int
		}{
			{name: "order not finished", err: fmt.Errorf("%w: reviews are allowed after delivery is finished", errs.ErrOrderNotFinished), code: http.StatusUnprocessableEntity},
			{name: "second review", err: fmt.Errorf("%w: review for order order-1", errs.ErrAlreadyExists), code: http.StatusConflict},
			{name: "unknown order", err: fmt.Errorf("order nope: %w", errs.ErrNotFound), code: http.StatusNotFound},
			{name: "bad star", err: fmt.Errorf("%w: star must be between 1 and 5", errs.ErrInvalidRequest), code: http.StatusBadRequest},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				router := newRouter(&stubService{err: tt.err})

				r := httptest.NewRequest(http.MethodPost, "/api/reviews",
					strings.NewReader(`{"order_id":"order-1","star":5}`))
				w := httptest.NewRecorder()

				router.ServeHTTP(w, r)

				assert.Equal(t, tt.code, w.Code)

				var errJSON errs.JSON
				require.NoError(t, json.NewDecoder(w.Body).Decode(&errJSON))
				assert.Equal(t, tt.err.Error(), errJSON.Error)
			})
		}
	})
}

func TestController_GetReviews(t *testing.T) {
	t.Run("passes star range through", func(t *testing.T) {
		service := &stubService{reviews: []*review.Review{
			{ID: "review-1", RestaurantID: 7, Star: 5},
		}}
		router := newRouter(service)

		r := httptest.NewRequest(http.MethodGet, "/api/restaurants/7/reviews?min=3&max=5", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 7, service.gotRestaurantID)
		assert.Equal(t, 3, service.gotMinStar)
		assert.Equal(t, 5, service.gotMaxStar)

		var res []*ReviewResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		require.Len(t, res, 1)
	})

	t.Run("absent boundaries default to zero", func(t *testing.T) {
		service := &stubService{}
		router := newRouter(service)

		r := httptest.NewRequest(http.MethodGet, "/api/restaurants/7/reviews", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, service.gotMinStar)
		assert.Equal(t, 0, service.gotMaxStar)
	})

	t.Run("rejects non-integer boundary", func(t *testing.T) {
		router := newRouter(&stubService{})

		r := httptest.NewRequest(http.MethodGet, "/api/restaurants/7/reviews?min=lots", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects non-integer restaurant id", func(t *testing.T) {
		router := newRouter(&stubService{})

		r := httptest.NewRequest(http.MethodGet, "/api/restaurants/cafe/reviews", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestController_ModifyReview(t *testing.T) {
	t.Run("modified", func(t *testing.T) {
		service := &stubService{review: &review.Review{
			ID: "review-1", OrderID: "order-1", RestaurantID: 7, Star: 4, Content: "better",
		}}
		router := newRouter(service)

		r := httptest.NewRequest(http.MethodPatch, "/api/reviews/review-1",
			strings.NewReader(`{"star":4,"content":"better"}`))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var res ReviewResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, 4, res.Star)
	})

	t.Run("unknown review", func(t *testing.T) {
		service := &stubService{err: fmt.Errorf("review nope: %w", errs.ErrNotFound)}
		router := newRouter(service)

		r := httptest.NewRequest(http.MethodPatch, "/api/reviews/nope",
			strings.NewReader(`{"star":4}`))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
