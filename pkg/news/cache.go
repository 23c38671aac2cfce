package news

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachedClient serves repeated queries from a cache. Cache failures are logged
// and fall through to the wrapped client.
type CachedClient struct {
	inner NewsClient
	cache Cache
	ttl   time.Duration
}

func NewCachedClient(inner NewsClient, cache Cache, ttl time.Duration) *CachedClient {
	return &CachedClient{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachedClient) Name() string {
	return c.inner.Name()
}

func (c *CachedClient) Search(ctx context.Context, q Query) ([]Article, error) {
	key := cacheKey(c.inner.Name(), q)

	cached, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("news cache read failed", "source", c.Name(), "error", err)
	}
	if ok {
		var articles []Article
		if err := json.Unmarshal([]byte(cached), &articles); err == nil {
			return articles, nil
		}
		slog.Warn("news cache entry unreadable, refetching", "source", c.Name(), "key", key)
	}

	articles, err := c.inner.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(articles)
	if err != nil {
		return articles, nil
	}
	if err := c.cache.Set(ctx, key, string(payload), c.ttl); err != nil {
		slog.Warn("news cache write failed", "source", c.Name(), "error", err)
	}

	return articles, nil
}

// cacheKey ignores the time window below day resolution so runs on the same
// day share entries.
func cacheKey(source string, q Query) string {
	raw := fmt.Sprintf("%s|%s|%s|%s|%d",
		q.Term, q.Ticker,
		q.From.Format("2006-01-02"), q.To.Format("2006-01-02"),
		q.Limit,
	)
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s:%x", source, sum[:12])
}
