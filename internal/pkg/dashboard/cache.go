package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix  = "dashboard:user:"
	DefaultTTL = 5 * time.Minute
)

// Key is the Redis key of a user's cached dashboard.
func Key(userID uint) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

// Cache stores rendered dashboards in Redis and drops them on change.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("service", "DashboardCache").Logger(),
	}
}

// Get returns the cached view. A miss returns (nil, nil).
func (c *Cache) Get(ctx context.Context, userID uint) (*View, error) {
	raw, err := c.client.Get(ctx, Key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v View
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode cached dashboard: %w", err)
	}
	return &v, nil
}

func (c *Cache) Set(ctx context.Context, userID uint, v *View) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(userID), raw, c.ttl).Err()
}

// DashboardChanged drops the user's cached dashboard. Failures are logged;
// the entry then expires with its TTL.
func (c *Cache) DashboardChanged(ctx context.Context, userID uint) {
	if err := c.client.Del(ctx, Key(userID)).Err(); err != nil {
		c.logger.Warn().Err(err).Uint("user_id", userID).Msg("Failed to invalidate dashboard cache")
		return
	}
	c.logger.Debug().Uint("user_id", userID).Msg("Dashboard cache invalidated")
}
