package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/motifscope/pkg/observability"
)

type instrumented struct {
	Cache
}

// Instrument reports hits, misses and writes of c to the registered
// observability cache hooks. The key type is the key's first segment.
func Instrument(c Cache) Cache {
	if _, ok := c.(instrumented); ok {
		return c
	}
	return instrumented{Cache: c}
}

func (c instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (c instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
