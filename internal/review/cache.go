package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eatsapp/order-service/internal/models/review"
	"github.com/redis/go-redis/v9"
)

// Cache holds review listings keyed by restaurant and star range.
// Implementations may fail softly; the service always falls back to
// the database.
type Cache interface {
	GetReviews(ctx context.Context, restaurantID, minStar, maxStar int) ([]*review.Review, error)
	SetReviews(ctx context.Context, restaurantID, minStar, maxStar int, reviews []*review.Review) error
	Invalidate(ctx context.Context, restaurantID int) error
}

// RedisCache stores listings under a per-restaurant generation
// counter. Invalidation bumps the counter, orphaning every cached
// range of that restaurant; orphans expire with the TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

var _ Cache = (*RedisCache)(nil)

func (c *RedisCache) generationKey(restaurantID int) string {
	return fmt.Sprintf("reviews:gen:%d", restaurantID)
}

func (c *RedisCache) listKey(restaurantID int, gen string, minStar, maxStar int) string {
	return fmt.Sprintf("reviews:%d:%s:%d:%d", restaurantID, gen, minStar, maxStar)
}

// GetReviews returns the cached listing or (nil, nil) on a miss.
func (c *RedisCache) GetReviews(ctx context.Context, restaurantID, minStar, maxStar int) ([]*review.Review, error) {
	gen, err := c.generation(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	data, err := c.client.Get(ctx, c.listKey(restaurantID, gen, minStar, maxStar)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var reviews []*review.Review
	if err = json.Unmarshal(data, &reviews); err != nil {
		return nil, err
	}

	return reviews, nil
}

func (c *RedisCache) SetReviews(ctx context.Context, restaurantID, minStar, maxStar int, reviews []*review.Review) error {
	gen, err := c.generation(ctx, restaurantID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(reviews)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.listKey(restaurantID, gen, minStar, maxStar), data, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, restaurantID int) error {
	return c.client.Incr(ctx, c.generationKey(restaurantID)).Err()
}

func (c *RedisCache) generation(ctx context.Context, restaurantID int) (string, error) {
	gen, err := c.client.Get(ctx, c.generationKey(restaurantID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "0", nil
		}
		return "", err
	}
	return gen, nil
}
