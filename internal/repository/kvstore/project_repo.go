package kvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/marileigh/stitchloom/internal/kv"
	"github.com/marileigh/stitchloom/internal/model"
)

// ProjectRepo stores the projects collection as one JSON document under the
// "projects" key.
type ProjectRepo struct{ kv *kv.Store }

// NewProjectRepo constructs a project repository.
func NewProjectRepo(kv *kv.Store) *ProjectRepo { return &ProjectRepo{kv: kv} }

func decodeProjects(raw []byte, ok bool) ([]model.Project, error) {
	if !ok || len(raw) == 0 {
		return []model.Project{}, nil
	}
	var ps []model.Project
	if err := json.Unmarshal(raw, &ps); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	if ps == nil {
		ps = []model.Project{}
	}
	return ps, nil
}

// Init ensures the projects key exists, initializing to an empty sequence if
// absent. Does not touch users.
func (r *ProjectRepo) Init(ctx context.Context) error {
	return r.kv.Update(ctx, keyProjects, func(_ []byte, ok bool) ([]byte, bool, error) {
		if ok {
			return nil, false, nil
		}
		out, err := json.Marshal([]model.Project{})
		if err != nil {
			return nil, false, err
		}
		return out, true, nil
	})
}

// All returns the full collection in insertion order.
func (r *ProjectRepo) All(ctx context.Context) ([]model.Project, error) {
	raw, ok, err := r.kv.Get(ctx, keyProjects)
	if err != nil {
		return nil, err
	}
	return decodeProjects(raw, ok)
}

// Mutate decodes the collection, applies fn, and writes the result back,
// all under the collection key's writer lock. If the re-encoded document is
// identical to the stored one the write is skipped, so a no-op mutation
// leaves the stored bytes untouched.
func (r *ProjectRepo) Mutate(ctx context.Context, fn func(ps []model.Project) ([]model.Project, error)) error {
	return r.kv.Update(ctx, keyProjects, func(cur []byte, ok bool) ([]byte, bool, error) {
		ps, err := decodeProjects(cur, ok)
		if err != nil {
			return nil, false, err
		}
		next, err := fn(ps)
		if err != nil {
			return nil, false, err
		}
		if next == nil {
			next = []model.Project{}
		}
		out, err := json.Marshal(next)
		if err != nil {
			return nil, false, fmt.Errorf("encode projects: %w", err)
		}
		if ok && bytes.Equal(cur, out) {
			return nil, false, nil
		}
		return out, true, nil
	})
}

// Reset drops the projects key entirely.
func (r *ProjectRepo) Reset(ctx context.Context) error {
	return r.kv.Delete(ctx, keyProjects)
}
