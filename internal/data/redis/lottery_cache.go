// Package redis caches the latest lottery draw so polla lookups avoid the database and the feed.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/natillera-ledger/internal/domain/lottery"
)

const latestKeyPrefix = "natillera:lottery:latest:"

// LotteryCache implements lottery.Cache on Redis strings holding the result as JSON
type LotteryCache struct {
	client goredis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewLotteryCache(logger *slog.Logger, client goredis.Cmdable, ttl time.Duration) *LotteryCache {
	return &LotteryCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func latestKey(slug string) string {
	return latestKeyPrefix + slug
}

// GetLatest returns nil without error on a cache miss
func (c *LotteryCache) GetLatest(ctx context.Context, slug string) (*lottery.Result, error) {
	raw, err := c.client.Get(ctx, latestKey(slug)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		c.logger.Error("Failed to read cached lottery result", "slug", slug, "error", err)
		return nil, fmt.Errorf("failed to read cached lottery result: %w", err)
	}

	var res lottery.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		c.logger.Warn("Discarding unreadable cached lottery result", "slug", slug, "error", err)
		return nil, nil
	}
	return &res, nil
}

func (c *LotteryCache) SetLatest(ctx context.Context, res *lottery.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal lottery result: %w", err)
	}

	if err := c.client.Set(ctx, latestKey(res.Slug), string(payload), c.ttl).Err(); err != nil {
		c.logger.Error("Failed to cache lottery result", "slug", res.Slug, "error", err)
		return fmt.Errorf("failed to cache lottery result: %w", err)
	}
	return nil
}
