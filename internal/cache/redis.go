package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/actuallystonmai/hybrid-recommender/internal/domain"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const defaultTTL = 10 * time.Minute

// Cache stores the ranked part of a recommendation response. The engines
// never change after startup, so an entry only goes stale by TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Key identifies one strategy output. Genres only matter for cold-start
// requests and are compared case-insensitively, in any order.
type Key struct {
	Method string
	UserID int64
	Limit  int
	Genres []string
}

func buildKey(k Key) string {
	if k.Method == domain.MethodContentGenres {
		genres := make([]string, 0, len(k.Genres))
		for _, g := range k.Genres {
			genres = append(genres, strings.ToLower(strings.TrimSpace(g)))
		}
		sort.Strings(genres)
		return fmt.Sprintf("rec:genres:%s:limit:%d", strings.Join(genres, ","), k.Limit)
	}
	return fmt.Sprintf("rec:%s:user:%d:limit:%d", k.Method, k.UserID, k.Limit)
}

// Get recommendations from cache; found is false on a miss
func (c *Cache) Get(ctx context.Context, k Key) ([]domain.Recommendation, bool, error) {
	key := buildKey(k)
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to get recommendations from cache: %w", err)
	}

	var recs []domain.Recommendation
	if err := json.Unmarshal([]byte(val), &recs); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal recommendations %s: %w", key, err)
	}

	return recs, true, nil
}

// Store recommendations in cache
func (c *Cache) Set(ctx context.Context, k Key, recs []domain.Recommendation) error {
	key := buildKey(k)
	val, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set recommendations in cache: %w", err)
	}

	return nil
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
