package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := NewMemoryStore()
	m.now = clock.now
	return m, clock
}

func TestMemoryStore_RevocationExpires(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestStore()

	require.NoError(t, m.Revoke(ctx, "jti-1", time.Hour))

	revoked, err := m.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = m.IsRevoked(ctx, "jti-2")
	assert.False(t, revoked)

	clock.advance(time.Hour)
	revoked, _ = m.IsRevoked(ctx, "jti-1")
	assert.False(t, revoked)
	assert.Empty(t, m.revoked)
}

func TestMemoryStore_AllowWindow(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestStore()

	for i := 0; i < 3; i++ {
		ok, err := m.Allow(ctx, "10.0.0.1", 3)
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}
	ok, _ := m.Allow(ctx, "10.0.0.1", 3)
	assert.False(t, ok)

	// Other clients have their own window
	ok, _ = m.Allow(ctx, "10.0.0.2", 3)
	assert.True(t, ok)

	clock.advance(time.Minute)
	ok, _ = m.Allow(ctx, "10.0.0.1", 3)
	assert.True(t, ok)
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestStore()

	require.NoError(t, m.Revoke(ctx, "short", time.Minute))
	require.NoError(t, m.Revoke(ctx, "long", time.Hour))
	_, _ = m.Allow(ctx, "10.0.0.1", 10)

	clock.advance(3 * time.Minute)
	m.Sweep()

	assert.NotContains(t, m.revoked, "short")
	assert.Contains(t, m.revoked, "long")
	assert.Empty(t, m.windows)
}
