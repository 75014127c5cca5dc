// Package cache provides byte-level caching backends for registry responses.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under the user cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for CI fleets running many suites
//   - [NullCache]: caching disabled (--no-cache)
//
// Keys are built by a [Keyer] so that several projects can share one backend
// without colliding (see [NewScopedKeyer]).
package cache

import (
	"context"
	"time"
)

// TTLVersions is the default lifetime of a cached registry version listing.
// Registries publish new versions constantly, so listings are kept for a
// shorter time than immutable per-version metadata would be.
const TTLVersions = 6 * time.Hour

// Cache stores opaque byte values under string keys.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
