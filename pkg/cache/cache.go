// Package cache stores provider responses and rendered artifacts.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for a shared server deployment, and [NewNullCache] when caching is off. Keys
// are built by a [Keyer] so that every component agrees on their shape.
package cache

import (
	"context"
	"time"
)

// Default TTLs by entry kind.
const (
	TTLHTTP     = 24 * time.Hour
	TTLPayload  = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value and whether it was present. A missing or
	// expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
