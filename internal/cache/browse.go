// Package cache provides a Redis-backed cache for browse results. Entries
// are keyed by a hash of the normalized query together with a per-kind
// version counter; bumping the version on any write invalidates every
// cached page for that kind in O(1), no key scanning needed.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/briannzioki/qwiksale-listings/internal/domain"
)

const (
	browseKeyPrefix  = "browse:"
	versionKeyPrefix = "browse:version:"
)

// BrowseCache caches PageResult envelopes in Redis.
type BrowseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBrowseCache creates a new Redis-backed browse cache.
func NewBrowseCache(client *redis.Client, ttl time.Duration) *BrowseCache {
	return &BrowseCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached result for the query, or nil on a miss. Cache
// errors are returned so the caller can log and fall through to the store.
func (c *BrowseCache) Get(ctx context.Context, q domain.ListingQuery) (*domain.PageResult, error) {
	key, err := c.resultKey(ctx, q)
	if err != nil {
		return nil, err
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get browse result: %w", err)
	}

	var result domain.PageResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal browse result: %w", err)
	}

	return &result, nil
}

// Set stores a browse result under the current version for its kind.
func (c *BrowseCache) Set(ctx context.Context, q domain.ListingQuery, result *domain.PageResult) error {
	key, err := c.resultKey(ctx, q)
	if err != nil {
		return err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal browse result: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set browse result: %w", err)
	}

	return nil
}

// Invalidate bumps the version counter for a kind, orphaning every cached
// page for it. Orphaned entries expire on their own TTL.
func (c *BrowseCache) Invalidate(ctx context.Context, kind domain.ListingKind) error {
	if err := c.client.Incr(ctx, versionKeyPrefix+string(kind)).Err(); err != nil {
		return fmt.Errorf("redis bump browse version: %w", err)
	}
	return nil
}

// resultKey builds the cache key for a query: kind, current version and a
// digest of the normalized query fields.
func (c *BrowseCache) resultKey(ctx context.Context, q domain.ListingQuery) (string, error) {
	version, err := c.client.Get(ctx, versionKeyPrefix+string(q.Kind)).Result()
	if err != nil {
		if err != redis.Nil {
			return "", fmt.Errorf("redis get browse version: %w", err)
		}
		version = "0"
	}

	digest, err := queryDigest(q)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%s:v%s:%s", browseKeyPrefix, q.Kind, version, digest), nil
}

func queryDigest(q domain.ListingQuery) (string, error) {
	data, err := json.Marshal(struct {
		Search        string
		Category      string
		Subcategory   string
		Brand         string
		Condition     string
		FeaturedOnly  bool
		MinPrice      *int64
		MaxPrice      *int64
		Sort          string
		Page          int
		PageSize      int
		IncludeFacets bool
	}{
		q.Search, q.Category, q.Subcategory, q.Brand, q.Condition,
		q.FeaturedOnly, q.MinPrice, q.MaxPrice, q.Sort, q.Page, q.PageSize,
		q.IncludeFacets,
	})
	if err != nil {
		return "", fmt.Errorf("marshal query for digest: %w", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16]), nil
}
