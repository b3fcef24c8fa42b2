// Package session tracks the currently logged-in user.
//
// The session is one signed token carrying both the user id and email, stored
// under a single key. Identity therefore has exactly one source of truth:
// signing out removes the id and the email together.
package session

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/marileigh/stitchloom/internal/errs"
	"github.com/marileigh/stitchloom/internal/kv"
)

const key = "session"

// Store is the session API consumed by services.
type Store interface {
	// Begin persists a session for the given user.
	Begin(ctx context.Context, userID uuid.UUID, email string) error
	// Current returns the logged-in user's id and email, or errs.ErrNoSession.
	Current(ctx context.Context) (uuid.UUID, string, error)
	// End removes the session. Idempotent.
	End(ctx context.Context) error
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Manager implements Store over the kv namespace with HS256-signed tokens.
type Manager struct {
	kv      *kv.Store
	signKey []byte
	ttl     time.Duration
}

// NewManager constructs a session manager. ttl bounds how long a login
// survives without re-authentication.
func NewManager(kv *kv.Store, signKey []byte, ttl time.Duration) *Manager {
	return &Manager{kv: kv, signKey: signKey, ttl: ttl}
}

var _ Store = (*Manager)(nil)

// Begin signs and persists a session token for userID.
func (m *Manager) Begin(ctx context.Context, userID uuid.UUID, email string) error {
	now := time.Now()
	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := tok.SignedString(m.signKey)
	if err != nil {
		return err
	}
	return m.kv.Put(ctx, key, []byte(signed))
}

// Current resolves the persisted token. A missing, expired, or garbled token
// reads as logged out.
func (m *Manager) Current(ctx context.Context) (uuid.UUID, string, error) {
	raw, ok, err := m.kv.Get(ctx, key)
	if err != nil {
		return uuid.Nil, "", err
	}
	if !ok {
		return uuid.Nil, "", errs.ErrNoSession
	}

	var c claims
	_, err = jwt.ParseWithClaims(string(raw), &c, func(t *jwt.Token) (any, error) {
		return m.signKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, "", errs.ErrNoSession
	}
	uid, err := uuid.FromString(c.Subject)
	if err != nil {
		return uuid.Nil, "", errs.ErrNoSession
	}
	return uid, c.Email, nil
}

// End deletes the session key.
func (m *Manager) End(ctx context.Context) error {
	return m.kv.Delete(ctx, key)
}
