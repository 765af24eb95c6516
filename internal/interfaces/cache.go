package interfaces

import (
	"context"
	"time"
)

// Cache stores opaque provider payloads.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
