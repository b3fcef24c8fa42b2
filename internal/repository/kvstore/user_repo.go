package kvstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/marileigh/stitchloom/internal/errs"
	"github.com/marileigh/stitchloom/internal/kv"
	"github.com/marileigh/stitchloom/internal/model"
)

// UserRepo stores the users collection as one JSON document under the
// "users" key.
type UserRepo struct{ kv *kv.Store }

// NewUserRepo constructs a user repository.
func NewUserRepo(kv *kv.Store) *UserRepo { return &UserRepo{kv: kv} }

func decodeUsers(raw []byte, ok bool) ([]model.User, error) {
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var users []model.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// Create appends a new user unless the email is already registered.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	return r.kv.Update(ctx, keyUsers, func(cur []byte, ok bool) ([]byte, bool, error) {
		users, err := decodeUsers(cur, ok)
		if err != nil {
			return nil, false, err
		}
		for i := range users {
			if users[i].Email == u.Email {
				return nil, false, errs.ErrEmailTaken
			}
		}
		users = append(users, *u)
		out, err := json.Marshal(users)
		if err != nil {
			return nil, false, fmt.Errorf("encode users: %w", err)
		}
		return out, true, nil
	})
}

// GetByID scans the collection for a matching id.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	raw, ok, err := r.kv.Get(ctx, keyUsers)
	if err != nil {
		return nil, err
	}
	users, err := decodeUsers(raw, ok)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			u := users[i]
			return &u, nil
		}
	}
	return nil, errs.ErrNotFound
}

// GetByEmail scans the collection for a matching email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	raw, ok, err := r.kv.Get(ctx, keyUsers)
	if err != nil {
		return nil, err
	}
	users, err := decodeUsers(raw, ok)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			u := users[i]
			return &u, nil
		}
	}
	return nil, errs.ErrNotFound
}
