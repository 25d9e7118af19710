package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// LocalCache is an in-process Cache for single-instance deployments and
// tests. Values are stored JSON-encoded so Get behaves like the Redis client.
type LocalCache struct {
	c *ristretto.Cache[string, []byte]
}

func NewLocalCache() (*LocalCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 100_000,
		MaxCost:     64 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create local cache: %w", err)
	}
	return &LocalCache{c: c}, nil
}

func (l *LocalCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := l.c.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached %q: %w", key, err)
	}
	return true, nil
}

// Set waits for the write to be applied so a following Get sees it.
func (l *LocalCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	l.c.SetWithTTL(key, raw, int64(len(raw)), ttl)
	l.c.Wait()
	return nil
}

func (l *LocalCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		l.c.Del(k)
	}
	return nil
}

func (l *LocalCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := l.c.Get(key)
	return ok, nil
}

func (l *LocalCache) Ping(context.Context) error {
	return nil
}

func (l *LocalCache) Close() {
	l.c.Close()
}
