package limiter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/marileigh/stitchloom/internal/kv"
)

const keyPrefix = "loginlock:"

type record struct {
	FailCount    int       `json:"failCount"`
	BlockedUntil time.Time `json:"blockedUntil"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// KV is a limiter backed by the shared kv namespace, one record per email,
// with a sliding failure window and lockout.
type KV struct {
	kv       *kv.Store
	window   time.Duration
	maxFails int
	blockFor time.Duration

	now func() time.Time // overridable in tests
}

// NewKV constructs a kv-backed limiter.
func NewKV(store *kv.Store, window time.Duration, maxFails int, blockFor time.Duration) *KV {
	return &KV{kv: store, window: window, maxFails: maxFails, blockFor: blockFor, now: time.Now}
}

var _ Limiter = (*KV)(nil)

// Allow reports whether login is currently allowed and a retry-after duration.
func (l *KV) Allow(ctx context.Context, email string) (bool, time.Duration, error) {
	raw, ok, err := l.kv.Get(ctx, keyPrefix+email)
	if err != nil {
		return false, 0, err
	}
	if !ok {
		return true, 0, nil
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return true, 0, nil
	}
	now := l.now()
	if rec.BlockedUntil.After(now) {
		return false, rec.BlockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success resets counters for the email.
func (l *KV) Success(ctx context.Context, email string) error {
	return l.kv.Delete(ctx, keyPrefix+email)
}

// Failure records a failed attempt; may set a block until a future time.
func (l *KV) Failure(ctx context.Context, email string) (blocked bool, retryAfter time.Duration, err error) {
	now := l.now()
	err = l.kv.Update(ctx, keyPrefix+email, func(cur []byte, ok bool) ([]byte, bool, error) {
		var rec record
		if ok {
			_ = json.Unmarshal(cur, &rec)
		}
		if now.Sub(rec.UpdatedAt) > l.window {
			rec.FailCount = 0
		}
		rec.FailCount++
		rec.UpdatedAt = now
		if rec.FailCount >= l.maxFails {
			rec.BlockedUntil = now.Add(l.blockFor)
			blocked = true
			retryAfter = l.blockFor
		}
		out, merr := json.Marshal(rec)
		if merr != nil {
			return nil, false, merr
		}
		return out, true, nil
	})
	if err != nil {
		return false, 0, err
	}
	return blocked, retryAfter, nil
}
