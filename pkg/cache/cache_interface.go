package cache

import (
	"context"
	"time"
)

// Cache is the key/value contract the services depend on.
// The Redis client implements it; tests use an in-memory map.
type Cache interface {
	// Get unmarshals the stored value into dest and reports whether the key existed.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}
