package cache

import (
	"context"
	"time"
)

// Entry is one cached judgment. Payload is the serialized result; the
// cache does not interpret it beyond the confidence used for metrics.
type Entry struct {
	Payload    []byte
	Confidence float64
	CachedAt   time.Time
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Writes  int64 `json:"writes"`
}

// Store is a fingerprint-keyed TTL cache. Get returns (nil, nil) on a miss
// or an expired entry; expiry is enforced on read so backends may prune
// lazily.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	// InvalidatePrefix removes every entry whose key starts with prefix and
	// returns the number removed. Keys embed tenant and ruleset, so prefix
	// invalidation covers "everything for this tenant" and "everything for
	// this ruleset" without a scan API.
	InvalidatePrefix(ctx context.Context, prefix string) (int, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}
