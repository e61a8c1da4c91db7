package review

import (
	"context"
	"errors"
	"fmt"

	orderrepo "github.com/eatsapp/order-service/internal/order"

	"github.com/eatsapp/order-service/internal/models/errs"
	"github.com/eatsapp/order-service/internal/models/order"
	"github.com/eatsapp/order-service/internal/models/review"
	"github.com/eatsapp/order-service/pkg/logger"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

// Service attaches reviews to finished orders and lists them by
// restaurant and star range.
type Service struct {
	repo   Repository
	orders orderrepo.Repository
	cache  Cache
	trm    trm.Manager
	logger logger.Logger
}

func NewService(
	repo Repository,
	orders orderrepo.Repository,
	cache Cache,
	trm trm.Manager,
	logger logger.Logger,
) (*Service, error) {
	if repo == nil {
		return nil, errors.New("nil dependency: repository")
	}
	if orders == nil {
		return nil, errors.New("nil dependency: order repository")
	}
	if trm == nil {
		return nil, errors.New("nil dependency: transaction manager")
	}
	if logger == nil {
		return nil, errors.New("nil dependency: logger")
	}
	return &Service{
		repo:   repo,
		orders: orders,
		cache:  cache,
		trm:    trm,
		logger: logger,
	}, nil
}

var _ reviewService = (*Service)(nil)

// SaveReviewParams is the save command.
type SaveReviewParams struct {
	OrderID string
	Content string
	Star    int
}

// ModifyReviewParams is the modify command.
type ModifyReviewParams struct {
	Content string
	Star    int
}

// SaveReview attaches a review to a finished order. At most one
// review per order ever exists.
func (s *Service) SaveReview(ctx context.Context, params SaveReviewParams) (*review.Review, error) {
	if !review.ValidStar(params.Star) {
		return nil, fmt.Errorf("%w: star must be between %d and %d",
			errs.ErrInvalidRequest, review.MinStar, review.MaxStar)
	}

	var rv *review.Review

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetOrderByIDForUpdate(ctx, params.OrderID)
		if err != nil {
			return fmt.Errorf("order %s: %w", params.OrderID, err)
		}

		if o.Status != order.FINISH {
			return fmt.Errorf("%w: reviews are allowed after delivery is finished",
				errs.ErrOrderNotFinished)
		}
		if o.ReviewID != "" {
			return fmt.Errorf("%w: review for order %s", errs.ErrAlreadyExists, o.ID)
		}

		rv = &review.Review{
			OrderID:      o.ID,
			RestaurantID: o.RestaurantID,
			Star:         params.Star,
			Content:      params.Content,
		}

		if err = s.repo.CreateReview(ctx, rv); err != nil {
			return err
		}

		return s.repo.AttachReviewToOrder(ctx, o.ID, rv.ID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, rv.RestaurantID)

	return rv, nil
}

// GetReviews lists a restaurant's reviews with stars in [minStar,
// maxStar], newest first. A zero boundary defaults to the widest
// value: min 0 means 1, max 0 means 5.
func (s *Service) GetReviews(ctx context.Context, restaurantID, minStar, maxStar int) ([]*review.Review, error) {
	if minStar == 0 {
		minStar = review.MinStar
	}
	if maxStar == 0 {
		maxStar = review.MaxStar
	}

	if !review.ValidStar(minStar) || !review.ValidStar(maxStar) || minStar > maxStar {
		return nil, fmt.Errorf("%w: star range [%d, %d]", errs.ErrInvalidRequest, minStar, maxStar)
	}

	if s.cache != nil {
		cached, err := s.cache.GetReviews(ctx, restaurantID, minStar, maxStar)
		if err != nil {
			s.logger.Errorf("review cache get: %s", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	reviews, err := s.repo.GetReviewsByRestaurant(ctx, restaurantID, minStar, maxStar)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err = s.cache.SetReviews(ctx, restaurantID, minStar, maxStar, reviews); err != nil {
			s.logger.Errorf("review cache set: %s", err)
		}
	}

	return reviews, nil
}

// ModifyReview updates the star and content of an existing review.
func (s *Service) ModifyReview(ctx context.Context, reviewID string, params ModifyReviewParams) (*review.Review, error) {
	if !review.ValidStar(params.Star) {
		return nil, fmt.Errorf("%w: star must be between %d and %d",
			errs.ErrInvalidRequest, review.MinStar, review.MaxStar)
	}

	var rv *review.Review

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		var err error

		rv, err = s.repo.GetReviewByIDForUpdate(ctx, reviewID)
		if err != nil {
			return fmt.Errorf("review %s: %w", reviewID, err)
		}

		rv.Star = params.Star
		rv.Content = params.Content

		return s.repo.UpdateReview(ctx, rv)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, rv.RestaurantID)

	return rv, nil
}

// invalidate drops cached listings after a committed write. Cache
// failures only log; the next read repopulates from the database.
func (s *Service) invalidate(ctx context.Context, restaurantID int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, restaurantID); err != nil {
		s.logger.Errorf("review cache invalidate: %s", err)
	}
}
