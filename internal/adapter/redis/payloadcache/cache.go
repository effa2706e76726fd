package payloadcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/testsys2pcms.net/internal/adapter/crypto"
	"gitlab.com/testsys2pcms.net/internal/core/ports/primary"
	"gitlab.com/testsys2pcms.net/internal/core/ports/secondary"
)

const payloadKeyPrefix = "payload:"

var _ secondary.Fetcher = (*CachingFetcher)(nil)

// CachingFetcher serves recently fetched exports from Redis
type CachingFetcher struct {
	next        secondary.Fetcher
	redisClient *redis.Client
	ttl         time.Duration
	logger      primary.Logger
}

// NewCachingFetcher wraps next with a Redis cache of the given ttl
func NewCachingFetcher(next secondary.Fetcher, redisClient *redis.Client, ttl time.Duration, logger primary.Logger) *CachingFetcher {
	return &CachingFetcher{
		next:        next,
		redisClient: redisClient,
		ttl:         ttl,
		logger:      logger,
	}
}

func payloadKey(url string) string {
	return fmt.Sprintf("%s%s", payloadKeyPrefix, crypto.Digest([]byte(url)))
}

// Fetch returns the cached payload for url or fetches and caches it.
// Redis failures are logged and never fail the fetch.
func (c *CachingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	key := payloadKey(url)

	data, err := c.redisClient.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		c.logger.Debug("Payload served from cache", "url", url)
		return data, nil
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("Failed to read payload cache", "url", url, "error", err)
	}

	data, err = c.next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := c.redisClient.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write payload cache", "url", url, "error", err)
	}
	return data, nil
}

// Invalidate drops the cached payload for url
func (c *CachingFetcher) Invalidate(ctx context.Context, url string) error {
	if err := c.redisClient.Del(ctx, payloadKey(url)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate payload cache: %w", err)
	}
	return nil
}
