package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeeper(t *testing.T, ttl time.Duration) (*RedisKeeper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	k, err := NewRedisKeeper(mr.Addr(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = k.Close() })

	return k, mr
}

func TestRedisKeeper_LookupUnknownKey(t *testing.T) {
	k, _ := newKeeper(t, time.Hour)

	id, seen, err := k.Lookup(context.Background(), "invoice", "never-used")

	require.NoError(t, err)
	assert.False(t, seen)
	assert.Empty(t, id)
}

func TestRedisKeeper_RememberThenLookup(t *testing.T) {
	k, mr := newKeeper(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, k.Remember(ctx, "invoice", "retry-1", "inv-1"))

	id, seen, err := k.Lookup(ctx, "invoice", "retry-1")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.Equal(t, "inv-1", id)

	assert.Equal(t, time.Hour, mr.TTL("idempotency:invoice:retry-1"))
}

func TestRedisKeeper_FirstRememberWins(t *testing.T) {
	k, _ := newKeeper(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, k.Remember(ctx, "invoice", "retry-1", "inv-1"))
	require.NoError(t, k.Remember(ctx, "invoice", "retry-1", "inv-2"))

	id, _, err := k.Lookup(ctx, "invoice", "retry-1")
	require.NoError(t, err)
	assert.Equal(t, "inv-1", id)
}

func TestRedisKeeper_ScopesAreSeparate(t *testing.T) {
	k, _ := newKeeper(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, k.Remember(ctx, "invoice", "k", "inv-1"))

	_, seen, err := k.Lookup(ctx, "security_deposit", "k")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisKeeper_KeyExpires(t *testing.T) {
	k, mr := newKeeper(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, k.Remember(ctx, "invoice", "retry-1", "inv-1"))
	mr.FastForward(2 * time.Minute)

	_, seen, err := k.Lookup(ctx, "invoice", "retry-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisKeeper_ServerDown(t *testing.T) {
	k, mr := newKeeper(t, time.Hour)
	ctx := context.Background()
	mr.Close()

	_, seen, err := k.Lookup(ctx, "invoice", "retry-1")
	assert.Error(t, err)
	assert.False(t, seen)

	assert.Error(t, k.Remember(ctx, "invoice", "retry-1", "inv-1"))
}

func TestNewRedisKeeper_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisKeeper(addr, time.Hour)
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var k Keeper = Noop{}
	ctx := context.Background()

	require.NoError(t, k.Remember(ctx, "invoice", "retry-1", "inv-1"))
	_, seen, err := k.Lookup(ctx, "invoice", "retry-1")
	require.NoError(t, err)
	assert.False(t, seen)
}
