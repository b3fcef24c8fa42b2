// Package service contains application services for authentication and projects.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/marileigh/stitchloom/internal/crypto"
	"github.com/marileigh/stitchloom/internal/errs"
	"github.com/marileigh/stitchloom/internal/limiter"
	"github.com/marileigh/stitchloom/internal/model"
	"github.com/marileigh/stitchloom/internal/repository"
	"github.com/marileigh/stitchloom/internal/session"
)

// AuthService defines account and session operations.
type AuthService interface {
	// Register creates a new user and logs them in.
	Register(ctx context.Context, email, password string) (userID uuid.UUID, err error)
	// Login authenticates the user and persists the session.
	Login(ctx context.Context, email, password string) (userID uuid.UUID, err error)
	// Logout removes the session.
	Logout(ctx context.Context) error
	// Current returns the logged-in user's id and email.
	Current(ctx context.Context) (uuid.UUID, string, error)
}

type AuthServiceImpl struct {
	users    repository.UserRepository
	sessions session.Store
	lim      limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, sessions session.Store, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, sessions: sessions, lim: lim}
}

// Register creates a new user record with a per-user salt and starts a session.
// A duplicate email surfaces as errs.ErrEmailTaken.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password string) (uuid.UUID, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return uuid.Nil, errors.New("empty email/password")
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	salt, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return uuid.Nil, err
	}

	u := &model.User{
		ID:      uid,
		Email:   email,
		PwdHash: pkgcrypto.HashPassword([]byte(password), salt),
		Salt:    salt,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return uuid.Nil, err
	}
	if err := s.sessions.Begin(ctx, uid, email); err != nil {
		return uuid.Nil, err
	}
	return uid, nil
}

// Login authenticates with rate limiting by email.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (uuid.UUID, error) {
	email = strings.TrimSpace(email)

	allowed, _, err := s.lim.Allow(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}
	if !allowed {
		return uuid.Nil, errs.ErrTooManyAttempts
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.Salt, u.PwdHash) {
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return uuid.Nil, err
		}
		// Record failure; if threshold reached, report the lock instead.
		if blocked, _, ferr := s.lim.Failure(ctx, email); ferr == nil && blocked {
			return uuid.Nil, errs.ErrTooManyAttempts
		}
		// Unknown email and wrong password look identical to the caller.
		return uuid.Nil, errs.ErrInvalidCredentials
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, email)

	if err := s.sessions.Begin(ctx, u.ID, u.Email); err != nil {
		return uuid.Nil, err
	}
	return u.ID, nil
}

// Logout clears the persisted session.
func (s *AuthServiceImpl) Logout(ctx context.Context) error {
	return s.sessions.End(ctx)
}

// Current resolves the logged-in user.
func (s *AuthServiceImpl) Current(ctx context.Context) (uuid.UUID, string, error) {
	return s.sessions.Current(ctx)
}
