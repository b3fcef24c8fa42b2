package limiter

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marileigh/stitchloom/internal/kv"
)

func newLimiter(t *testing.T) (*KV, *time.Time) {
	t.Helper()
	store, err := kv.Open(context.Background(), filepath.Join(t.TempDir(), "lim.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewKV(store, 15*time.Minute, 3, 30*time.Minute)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllow_DefaultsToAllowed(t *testing.T) {
	l, _ := newLimiter(t)
	ok, retry, err := l.Allow(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, retry)
}

func TestFailure_BlocksAtThreshold(t *testing.T) {
	l, now := newLimiter(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		blocked, _, err := l.Failure(ctx, "a@x.com")
		require.NoError(t, err)
		require.False(t, blocked)
	}
	blocked, retry, err := l.Failure(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, blocked)
	require.Equal(t, 30*time.Minute, retry)

	ok, retry, err := l.Allow(ctx, "a@x.com")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 30*time.Minute, retry)

	// other accounts are unaffected
	ok, _, err = l.Allow(ctx, "b@x.com")
	require.NoError(t, err)
	require.True(t, ok)

	// lock expires
	*now = now.Add(31 * time.Minute)
	ok, _, err = l.Allow(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFailure_WindowResetsCount(t *testing.T) {
	l, now := newLimiter(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, err := l.Failure(ctx, "a@x.com")
		require.NoError(t, err)
	}

	// stale failures should not count toward the threshold
	*now = now.Add(16 * time.Minute)
	blocked, _, err := l.Failure(ctx, "a@x.com")
	require.NoError(t, err)
	require.False(t, blocked)
}

func TestSuccess_ResetsCounters(t *testing.T) {
	l, _ := newLimiter(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, err := l.Failure(ctx, "a@x.com")
		require.NoError(t, err)
	}
	require.NoError(t, l.Success(ctx, "a@x.com"))

	blocked, _, err := l.Failure(ctx, "a@x.com")
	require.NoError(t, err)
	require.False(t, blocked, "counter should restart after a successful login")
}
