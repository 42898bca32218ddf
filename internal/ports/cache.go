package ports

import (
	"context"
	"time"
)

// ConfigCache is a TTL cache for resolved configuration values.
// Implementations must be safe for concurrent use. An entry is visible only
// before its absolute expiry; once expired it reads as absent. The last Put
// wins on key collision; there are no compare-and-swap semantics, and
// duplicate concurrent loads for a cold key are acceptable.
type ConfigCache[T any] interface {
	Get(ctx context.Context, key string) (T, bool, error)
	Put(ctx context.Context, key string, value T, ttl time.Duration) error
}
