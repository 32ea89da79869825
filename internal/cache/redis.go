package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"lob-engine/internal/config"
	"lob-engine/internal/models"
)

// RedisCache keeps ephemeral read-side state for the order book service.
// CACHING STRATEGY:
//   - Recent trades: capped list feeding the WebSocket snapshot payload
//   - Ticker (best bid/ask/mid/spread): short TTL for fast price lookups
//
// Nothing here is authoritative; the engine owns all book state and the
// service runs fine with the cache absent.
type RedisCache struct {
	client      *redis.Client
	ctx         context.Context
	tradesKey   string
	tickerKey   string
	tradesLimit int64
	tickerTTL   time.Duration
}

// Ticker is the cached top-of-book view.
type Ticker struct {
	BestBid   *float64  `json:"best_bid"`
	BestAsk   *float64  `json:"best_ask"`
	Mid       *float64  `json:"mid"`
	Spread    *float64  `json:"spread"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRedisCache initializes a Redis connection.
func NewRedisCache(cfg *config.Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	limit := cfg.RecentTradesLimit
	if limit <= 0 {
		limit = 50
	}

	return &RedisCache{
		client:      client,
		ctx:         ctx,
		tradesKey:   "lob:trades:recent",
		tickerKey:   "lob:ticker",
		tradesLimit: limit,
		tickerTTL:   500 * time.Millisecond,
	}, nil
}

// AddRecentFill pushes a fill onto the capped recent-trades list.
func (c *RedisCache) AddRecentFill(fill models.Fill) error {
	data, err := json.Marshal(fill)
	if err != nil {
		return err
	}
	pipe := c.client.Pipeline()
	pipe.LPush(c.ctx, c.tradesKey, data)
	pipe.LTrim(c.ctx, c.tradesKey, 0, c.tradesLimit-1)
	_, err = pipe.Exec(c.ctx)
	return err
}

// GetRecentFills returns up to limit most recent fills, newest first.
func (c *RedisCache) GetRecentFills(limit int64) ([]models.Fill, error) {
	if limit <= 0 || limit > c.tradesLimit {
		limit = c.tradesLimit
	}
	raw, err := c.client.LRange(c.ctx, c.tradesKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	fills := make([]models.Fill, 0, len(raw))
	for _, item := range raw {
		var f models.Fill
		// Skip entries that fail to decode or were written malformed.
		if err := json.Unmarshal([]byte(item), &f); err != nil || f.Validate() != nil {
			continue
		}
		fills = append(fills, f)
	}
	return fills, nil
}

// SetTicker caches the current top-of-book view.
func (c *RedisCache) SetTicker(t Ticker) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.client.Set(c.ctx, c.tickerKey, data, c.tickerTTL).Err()
}

// GetTicker returns the cached ticker, or (nil, nil) on a cache miss.
func (c *RedisCache) GetTicker() (*Ticker, error) {
	data, err := c.client.Get(c.ctx, c.tickerKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var t Ticker
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Close shuts down the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
