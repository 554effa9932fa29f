package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"github.com/madhava-poojari/learnsphere/internal/models"
)

// ResultCache stores the ids of the courses matching a query for one version
// of the course list.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]uint, bool, error)
	Set(ctx context.Context, key string, ids []uint, ttl time.Duration) error
}

// Version fingerprints the course list; any change to membership, order or
// update stamps yields a new value.
func Version(courses []models.Course) string {
	d := xxhash.New()
	for _, c := range courses {
		_, _ = d.WriteString(strconv.FormatUint(uint64(c.ID), 10))
		_, _ = d.WriteString(":")
		_, _ = d.WriteString(strconv.FormatInt(c.UpdatedAt.UnixNano(), 10))
		_, _ = d.WriteString(";")
	}
	return strconv.FormatUint(d.Sum64(), 36)
}

func cacheKey(version string, q Query) string {
	q = q.Normalize()
	return fmt.Sprintf("catalog:%s:%x", version, xxhash.Sum64String(q.Search+"\x00"+q.Category+"\x00"+q.Level))
}

/* ------------------ in-process ------------------ */

type memoryEntry struct {
	ids     []uint
	expires time.Time
}

// MemoryCache is a process-local ResultCache. When it grows past maxEntries
// it is cleared wholesale.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 512
	}
	return &MemoryCache{entries: map[string]memoryEntry{}, maxEntries: maxEntries, now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]uint, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.ids, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, ids []uint, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) >= m.maxEntries {
		m.entries = map[string]memoryEntry{}
	}
	e := memoryEntry{ids: ids}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

/* ------------------ redis ------------------ */

// RedisCache shares filter results between service instances.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, address, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]uint, bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, false, fmt.Errorf("decode cached ids: %w", err)
	}
	return ids, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, ids []uint, ttl time.Duration) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
