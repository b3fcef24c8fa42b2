package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marileigh/stitchloom/internal/errs"
	"github.com/marileigh/stitchloom/internal/kv"
)

func newKV(t *testing.T) *kv.Store {
	t.Helper()
	store, err := kv.Open(context.Background(), filepath.Join(t.TempDir(), "s.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBeginCurrentEnd(t *testing.T) {
	store := newKV(t)
	m := NewManager(store, []byte("0123456789abcdef0123456789abcdef"), time.Hour)
	ctx := context.Background()

	_, _, err := m.Current(ctx)
	require.ErrorIs(t, err, errs.ErrNoSession)

	uid := uuid.Must(uuid.NewV4())
	require.NoError(t, m.Begin(ctx, uid, "a@x.com"))

	gotID, gotEmail, err := m.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, uid, gotID)
	require.Equal(t, "a@x.com", gotEmail)

	// sign-out removes id and email together
	require.NoError(t, m.End(ctx))
	_, _, err = m.Current(ctx)
	require.ErrorIs(t, err, errs.ErrNoSession)

	// End is idempotent
	require.NoError(t, m.End(ctx))
}

func TestCurrent_ExpiredToken(t *testing.T) {
	store := newKV(t)
	m := NewManager(store, []byte("0123456789abcdef0123456789abcdef"), -time.Minute)
	ctx := context.Background()

	require.NoError(t, m.Begin(ctx, uuid.Must(uuid.NewV4()), "a@x.com"))
	_, _, err := m.Current(ctx)
	require.ErrorIs(t, err, errs.ErrNoSession)
}

func TestCurrent_GarbledToken(t *testing.T) {
	store := newKV(t)
	m := NewManager(store, []byte("0123456789abcdef0123456789abcdef"), time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, key, []byte("not a token")))
	_, _, err := m.Current(ctx)
	require.ErrorIs(t, err, errs.ErrNoSession)
}

func TestCurrent_WrongKey(t *testing.T) {
	store := newKV(t)
	ctx := context.Background()

	m1 := NewManager(store, []byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, m1.Begin(ctx, uuid.Must(uuid.NewV4()), "a@x.com"))

	m2 := NewManager(store, []byte("another-signing-key-entirely...."), time.Hour)
	_, _, err := m2.Current(ctx)
	require.ErrorIs(t, err, errs.ErrNoSession)
}
