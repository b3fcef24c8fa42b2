package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marileigh/stitchloom/internal/errs"
	"github.com/marileigh/stitchloom/internal/kv"
	"github.com/marileigh/stitchloom/internal/model"
)

func newKV(t *testing.T) *kv.Store {
	t.Helper()
	store, err := kv.Open(context.Background(), filepath.Join(t.TempDir(), "repo.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	r := NewUserRepo(newKV(t))
	ctx := context.Background()

	u := &model.User{
		ID:      uuid.Must(uuid.NewV4()),
		Email:   "a@x.com",
		PwdHash: []byte("h"),
		Salt:    []byte("s"),
	}
	require.NoError(t, r.Create(ctx, u))

	got, err := r.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, u.PwdHash, got.PwdHash)
	require.Equal(t, u.Salt, got.Salt)

	byID, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", byID.Email)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	r := NewUserRepo(newKV(t))
	ctx := context.Background()

	first := &model.User{ID: uuid.Must(uuid.NewV4()), Email: "a@x.com"}
	require.NoError(t, r.Create(ctx, first))

	dup := &model.User{ID: uuid.Must(uuid.NewV4()), Email: "a@x.com"}
	require.ErrorIs(t, r.Create(ctx, dup), errs.ErrEmailTaken)

	// the conflicting user was not appended
	got, err := r.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
}

func TestUserRepo_NotFound(t *testing.T) {
	r := NewUserRepo(newKV(t))
	ctx := context.Background()

	_, err := r.GetByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = r.GetByID(ctx, uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, errs.ErrNotFound)
}
