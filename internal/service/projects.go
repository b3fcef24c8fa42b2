package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/marileigh/stitchloom/internal/errs"
	"github.com/marileigh/stitchloom/internal/model"
	"github.com/marileigh/stitchloom/internal/repository"
	"github.com/marileigh/stitchloom/internal/session"
)

// CounterField selects which progress value of a counter to change.
type CounterField string

const (
	CounterRows     CounterField = "rows"
	CounterStitches CounterField = "stitches"
)

// ProjectService defines CRUD and progress operations over the current
// user's projects.
type ProjectService interface {
	// Create stores a new project owned by the logged-in user and returns its id.
	Create(ctx context.Context, draft model.ProjectDraft) (uuid.UUID, error)
	// List returns the current user's projects, normalized, in insertion order.
	List(ctx context.Context) ([]model.Project, error)
	// Get returns one of the current user's projects by id.
	Get(ctx context.Context, id uuid.UUID) (*model.Project, error)
	// Update shallow-merges a partial update onto the project. Missing ids are
	// a silent no-op.
	Update(ctx context.Context, id uuid.UUID, patch model.ProjectPatch) error
	// SaveEdits replaces a project's editable fields wholesale, dropping blank
	// counters first. Missing ids are a silent no-op.
	SaveEdits(ctx context.Context, id uuid.UUID, edited model.Project) error
	// Delete removes the project by id. Missing ids are a silent no-op.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByStatus filters the current user's projects by completion.
	ListByStatus(ctx context.Context, done bool) ([]model.Project, error)
	// SetComplete marks a project finished or back in progress.
	SetComplete(ctx context.Context, id uuid.UUID, done bool) error
	// SetImage attaches an opaque image reference to a project.
	SetImage(ctx context.Context, id uuid.UUID, uri string) error
	// BumpCounter steps one counter's progress by one, wrapping into
	// [0, target]. delta < 0 decrements, anything else increments.
	BumpCounter(ctx context.Context, id uuid.UUID, index int, field CounterField, delta int) error
	// Reset drops the whole projects collection.
	Reset(ctx context.Context) error
}

type ProjectServiceImpl struct {
	projects repository.ProjectRepository
	sessions session.Store
}

// NewProjectService constructs ProjectService with required dependencies.
func NewProjectService(projects repository.ProjectRepository, sessions session.Store) *ProjectServiceImpl {
	return &ProjectServiceImpl{projects: projects, sessions: sessions}
}

// pruneCounters drops fully-blank counters and zeroes progress when reset is set.
func pruneCounters(cs []model.Counter, reset bool) []model.Counter {
	out := make([]model.Counter, 0, len(cs))
	for _, c := range cs {
		if c.Blank() {
			continue
		}
		if reset {
			c.CompletedRows = 0
			c.CompletedStitches = 0
		}
		out = append(out, c)
	}
	return out
}

// Create validates the draft, stamps ownership from the session, fills
// defaults, and appends to the collection.
func (s *ProjectServiceImpl) Create(ctx context.Context, draft model.ProjectDraft) (uuid.UUID, error) {
	uid, _, err := s.sessions.Current(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if strings.TrimSpace(draft.ProjectName) == "" {
		return uuid.Nil, errors.New("validation: empty project name")
	}
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}

	now := time.Now().UTC()
	p := model.Project{
		ID:              id,
		UserID:          uid,
		ProjectName:     draft.ProjectName,
		YarnType:        draft.YarnType,
		NeedleSize:      draft.NeedleSize,
		AdditionalNotes: draft.AdditionalNotes,
		LinkToPattern:   draft.LinkToPattern,
		ImageURI:        draft.ImageURI,
		IsCompleted:     false,
		Counters:        pruneCounters(draft.Counters, true),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err = s.projects.Mutate(ctx, func(ps []model.Project) ([]model.Project, error) {
		return append(ps, p), nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// List returns the current user's projects. Records missing defaults are
// corrected, and if anything changed the corrected collection is persisted
// before returning.
func (s *ProjectServiceImpl) List(ctx context.Context) ([]model.Project, error) {
	uid, _, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Project
	err = s.projects.Mutate(ctx, func(ps []model.Project) ([]model.Project, error) {
		out = make([]model.Project, 0, len(ps))
		for i := range ps {
			ps[i].Normalize()
			if ps[i].UserID == uid {
				out = append(out, ps[i])
			}
		}
		return ps, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single owned project or errs.ErrNotFound.
func (s *ProjectServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	uid, _, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	ps, err := s.projects.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range ps {
		if ps[i].ID == id && ps[i].UserID == uid {
			p := ps[i]
			p.Normalize()
			return &p, nil
		}
	}
	return nil, errs.ErrNotFound
}

// Update finds the project across the entire collection, applies the patch,
// and refreshes updatedAt. A missing id leaves the collection untouched.
func (s *ProjectServiceImpl) Update(ctx context.Context, id uuid.UUID, patch model.ProjectPatch) error {
	return s.projects.Mutate(ctx, func(ps []model.Project) ([]model.Project, error) {
		for i := range ps {
			if ps[i].ID == id {
				patch.Apply(&ps[i])
				ps[i].UpdatedAt = time.Now().UTC()
				break
			}
		}
		return ps, nil
	})
}

// SaveEdits is the details-screen save path: blank counters are filtered out
// before the whole document is rewritten. Progress values survive as-is.
func (s *ProjectServiceImpl) SaveEdits(ctx context.Context, id uuid.UUID, edited model.Project) error {
	return s.projects.Mutate(ctx, func(ps []model.Project) ([]model.Project, error) {
		for i := range ps {
			if ps[i].ID == id {
				kept := ps[i]
				ps[i] = edited
				ps[i].ID = kept.ID
				ps[i].UserID = kept.UserID
				ps[i].CreatedAt = kept.CreatedAt
				ps[i].Counters = pruneCounters(edited.Counters, false)
				ps[i].UpdatedAt = time.Now().UTC()
				break
			}
		}
		return ps, nil
	})
}

// Delete removes the project with matching id from the entire collection.
func (s *ProjectServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.projects.Mutate(ctx, func(ps []model.Project) ([]model.Project, error) {
		out := ps[:0]
		for _, p := range ps {
			if p.ID != id {
				out = append(out, p)
			}
		}
		return out, nil
	})
}

// ListByStatus filters by exact completion match and ownership. Unlike List,
// results are returned as stored, without normalization.
func (s *ProjectServiceImpl) ListByStatus(ctx context.Context, done bool) ([]model.Project, error) {
	uid, _, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	ps, err := s.projects.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Project, 0, len(ps))
	for _, p := range ps {
		if p.IsCompleted == done && p.UserID == uid {
			out = append(out, p)
		}
	}
	return out, nil
}

// SetComplete flips the completion flag.
func (s *ProjectServiceImpl) SetComplete(ctx context.Context, id uuid.UUID, done bool) error {
	return s.Update(ctx, id, model.ProjectPatch{IsCompleted: &done})
}

// SetImage stores an opaque image reference on the project.
func (s *ProjectServiceImpl) SetImage(ctx context.Context, id uuid.UUID, uri string) error {
	return s.Update(ctx, id, model.ProjectPatch{ImageURI: &uri})
}

// BumpCounter steps progress on one counter with wraparound. Incrementing at
// or past the target wraps to 0; decrementing at or below 0 wraps to the
// target. A junk target counts as 0, pinning progress there. Counters are
// not pruned on this path, whatever shape they have.
func (s *ProjectServiceImpl) BumpCounter(ctx context.Context, id uuid.UUID, index int, field CounterField, delta int) error {
	return s.projects.Mutate(ctx, func(ps []model.Project) ([]model.Project, error) {
		for i := range ps {
			if ps[i].ID != id {
				continue
			}
			if index < 0 || index >= len(ps[i].Counters) {
				return nil, errs.ErrNotFound
			}
			c := &ps[i].Counters[index]
			switch field {
			case CounterStitches:
				c.CompletedStitches = step(c.CompletedStitches, c.TargetStitches(), delta)
			default:
				c.CompletedRows = step(c.CompletedRows, c.TargetRows(), delta)
			}
			ps[i].UpdatedAt = time.Now().UTC()
			break
		}
		return ps, nil
	})
}

func step(cur, target, delta int) int {
	if delta < 0 {
		if cur <= 0 {
			return target
		}
		return cur - 1
	}
	if cur >= target {
		return 0
	}
	return cur + 1
}

// Reset drops the projects collection entirely.
func (s *ProjectServiceImpl) Reset(ctx context.Context) error {
	return s.projects.Reset(ctx)
}

// Search filters projects by a case-insensitive substring over name, yarn
// type, and needle size. A blank query returns the input unchanged.
func Search(ps []model.Project, query string) []model.Project {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return ps
	}
	out := make([]model.Project, 0, len(ps))
	for _, p := range ps {
		if strings.Contains(strings.ToLower(p.ProjectName), term) ||
			strings.Contains(strings.ToLower(p.YarnType), term) ||
			strings.Contains(strings.ToLower(p.NeedleSize), term) {
			out = append(out, p)
		}
	}
	return out
}
