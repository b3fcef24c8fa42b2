package repository

import (
	"context"

	"github.com/marileigh/stitchloom/internal/model"
)

// ProjectRepository provides whole-collection access to the projects document.
// Collections are small single-user hobby data; every mutation rewrites the
// full document, which keeps the semantics trivially atomic.
type ProjectRepository interface {
	// Init ensures the projects collection exists (empty if absent). Idempotent.
	Init(ctx context.Context) error
	// All returns the full collection in insertion order.
	All(ctx context.Context) ([]model.Project, error)
	// Mutate runs fn over the decoded collection under the collection's writer
	// lock and persists the result. The write is skipped when the encoded
	// document is byte-for-byte unchanged.
	Mutate(ctx context.Context, fn func(ps []model.Project) ([]model.Project, error)) error
	// Reset drops the whole collection.
	Reset(ctx context.Context) error
}
