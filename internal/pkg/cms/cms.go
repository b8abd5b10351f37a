// Package cms reads published documents from the two hosted content backends.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("content not found")

// Fetcher returns the raw document published under slug.
type Fetcher interface {
	Fetch(ctx context.Context, slug string) (json.RawMessage, error)
}

// CachedFetcher decorates a Fetcher with a Redis read-through cache.
// A nil client disables caching.
type CachedFetcher struct {
	next   Fetcher
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCachedFetcher(next Fetcher, client *redis.Client, source string, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{
		next:   next,
		client: client,
		prefix: "cms:" + source + ":",
		ttl:    ttl,
	}
}

func (c *CachedFetcher) Fetch(ctx context.Context, slug string) (json.RawMessage, error) {
	if c.client == nil || c.ttl <= 0 {
		return c.next.Fetch(ctx, slug)
	}

	key := c.prefix + slug
	cached, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.RawMessage(cached), nil
	}
	if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("key", key).Msg("CMS cache read failed")
	}

	doc, err := c.next.Fetch(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := c.client.Set(ctx, key, []byte(doc), c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("CMS cache write failed")
	}
	return doc, nil
}
