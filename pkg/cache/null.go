package cache

import (
	"context"
	"time"
)

// NewNullCache returns a cache that stores nothing. It backs --no-cache and
// the "none" backend, and is the default of the runner, the HTTP provider
// and the server.
func NewNullCache() Cache { return nullCache{} }

type nullCache struct{}

func (nullCache) Get(context.Context, string) ([]byte, bool, error)         { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error                     { return nil }
func (nullCache) Close() error                                             { return nil }
