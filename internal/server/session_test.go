package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/motifscope/pkg/provider"
	"github.com/matzehuels/motifscope/pkg/selection"
	"github.com/matzehuels/motifscope/pkg/view"
)

func newTestRegistry(ttl time.Duration) (*registry, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newRegistry(ttl)
	r.now = func() time.Time { return now }
	return r, &now
}

func buildEmpty(ctx context.Context, post func(func())) *view.Session {
	return view.NewSession(ctx, provider.NewFile(""), selection.NewManualClock(), post, view.DefaultConfig())
}

func TestRegistrySlidingExpiry(t *testing.T) {
	r, now := newTestRegistry(time.Minute)
	s := r.create(context.Background(), buildEmpty)

	*now = now.Add(50 * time.Second)
	got, err := r.get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	// The lookup extended the session.
	*now = now.Add(50 * time.Second)
	_, err = r.get(s.ID)
	require.NoError(t, err)

	*now = now.Add(2 * time.Minute)
	_, err = r.get(s.ID)
	assert.ErrorIs(t, err, ErrExpired)
	_, err = r.get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryCleanup(t *testing.T) {
	r, now := newTestRegistry(time.Minute)
	old := r.create(context.Background(), buildEmpty)
	*now = now.Add(45 * time.Second)
	fresh := r.create(context.Background(), buildEmpty)

	*now = now.Add(30 * time.Second)
	assert.Equal(t, 1, r.cleanup())
	assert.Equal(t, 1, r.len())

	_, err := r.get(old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.get(fresh.ID)
	assert.NoError(t, err)
}

func TestRegistryDeleteCancelsContext(t *testing.T) {
	r, _ := newTestRegistry(0)
	var sessionCtx context.Context
	s := r.create(context.Background(), func(ctx context.Context, post func(func())) *view.Session {
		sessionCtx = ctx
		return buildEmpty(ctx, post)
	})

	assert.True(t, r.delete(s.ID))
	assert.Error(t, sessionCtx.Err())
	assert.False(t, r.delete(s.ID))
}

func TestRegistryDefaultTTL(t *testing.T) {
	r := newRegistry(-1)
	assert.Equal(t, DefaultSessionTTL, r.ttl)
}
