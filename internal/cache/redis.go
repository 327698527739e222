package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jobdomain "barbid-go/internal/domain/job"
	"barbid-go/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const feedKeyPrefix = "barbid:feed:"

// FeedCache is a Redis-backed implementation of the job feed cache. Cache
// failures degrade to misses; the feed always works without Redis.
type FeedCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// NewFeedCache connects to Redis at the given URL (redis://host:port).
func NewFeedCache(redisURL string, ttl time.Duration, log logger.Logger) (*FeedCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	return &FeedCache{client: client, ttl: ttl, log: log}, nil
}

func (c *FeedCache) Get(ctx context.Context, filter jobdomain.FeedFilter) ([]jobdomain.JobListing, bool) {
	data, err := c.client.Get(ctx, feedKey(filter)).Bytes()
	if err != nil {
		return nil, false
	}

	var listings []jobdomain.JobListing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, false
	}
	return listings, true
}

func (c *FeedCache) Set(ctx context.Context, filter jobdomain.FeedFilter, listings []jobdomain.JobListing) {
	data, err := json.Marshal(listings)
	if err != nil {
		c.log.InternalError("cache: marshal feed failed", err)
		return
	}

	if err := c.client.Set(ctx, feedKey(filter), data, c.ttl).Err(); err != nil {
		c.log.Warn("cache: set feed failed", "err", err)
	}
}

// Invalidate drops every cached feed variant. Called whenever a listing
// enters or leaves the Open state.
func (c *FeedCache) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, feedKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("cache: scan feed keys failed", "err", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache: delete feed keys failed", "err", err)
	}
}

func (c *FeedCache) Close() error {
	return c.client.Close()
}

func feedKey(filter jobdomain.FeedFilter) string {
	raw := strings.ToLower(filter.JobTitle + ":" + filter.City)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", feedKeyPrefix, hash[:8])
}
