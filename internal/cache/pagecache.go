// Package cache holds the time-boxed page cache for the rendered home feed.
//
// The cache is shared by every requester: the home feed is identical for
// everyone, so identity is not part of the key, but the page number is.
// Each page of the feed gets its own entry. Entries die by TTL or by an
// explicit clear; creating a post does not touch them, so a new post stays
// invisible on the home feed until the window lapses.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no live entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// PageCache stores rendered response bodies keyed by page number.
type PageCache interface {
	Get(ctx context.Context, page int) ([]byte, error)
	Set(ctx context.Context, page int, body []byte) error
	// Clear drops every entry under the prefix.
	Clear(ctx context.Context) error
}

// RedisPageCache backs PageCache with Redis.
type RedisPageCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisPageCache(addr, password string, db int, prefix string, ttl time.Duration) (*RedisPageCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPageCache{client: client, prefix: prefix, ttl: ttl}, nil
}

func (c *RedisPageCache) key(page int) string {
	return fmt.Sprintf("%s:%d", c.prefix, page)
}

func (c *RedisPageCache) Get(ctx context.Context, page int) ([]byte, error) {
	data, err := c.client.Get(ctx, c.key(page)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return data, nil
}

func (c *RedisPageCache) Set(ctx context.Context, page int, body []byte) error {
	if err := c.client.Set(ctx, c.key(page), body, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

func (c *RedisPageCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+":*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan redis keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

func (c *RedisPageCache) Close() error {
	return c.client.Close()
}

// MemoryPageCache is an in-process PageCache with the same TTL semantics,
// used when no Redis address is configured and in tests.
type MemoryPageCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	prefix  string
	ttl     time.Duration

	// now is swappable in tests.
	now func() time.Time
}

type memoryEntry struct {
	body      []byte
	expiresAt time.Time
}

func NewMemoryPageCache(prefix string, ttl time.Duration) *MemoryPageCache {
	return &MemoryPageCache{
		entries: make(map[string]memoryEntry),
		prefix:  prefix,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryPageCache) key(page int) string {
	return fmt.Sprintf("%s:%d", c.prefix, page)
}

func (c *MemoryPageCache) Get(_ context.Context, page int) ([]byte, error) {
	key := c.key(page)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if c.now().After(entry.expiresAt) {
		// Evict rather than leave the dead entry resident. Recheck under
		// the write lock in case a concurrent Set refreshed the key.
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return entry.body, nil
}

func (c *MemoryPageCache) Set(_ context.Context, page int, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Sweep expired entries so the map stays bounded by the live working
	// set even when callers request many distinct pages.
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}

	c.entries[c.key(page)] = memoryEntry{
		body:      body,
		expiresAt: now.Add(c.ttl),
	}
	return nil
}

func (c *MemoryPageCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, c.prefix+":") {
			delete(c.entries, k)
		}
	}
	return nil
}

var (
	_ PageCache = (*RedisPageCache)(nil)
	_ PageCache = (*MemoryPageCache)(nil)
)
