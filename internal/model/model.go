// Package model defines domain entities used by services and repositories.
package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// User represents a registered account. Passwords are never stored in plaintext.
type User struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"` // unique
	PwdHash []byte    `json:"passwordHash"`
	Salt    []byte    `json:"salt"` // per-user auth salt
}

// Counter tracks row/stitch progress inside a project. Counters have no
// identity of their own; they are addressed by position in the parent slice.
type Counter struct {
	Name              string `json:"name"`
	Rows              string `json:"rows"`     // target rows, textual; junk parses to 0
	Stitches          string `json:"stitches"` // target stitches per row, same contract
	Notes             string `json:"notes"`
	CompletedRows     int    `json:"completedRows"`
	CompletedStitches int    `json:"completedStitches"`
}

// Blank reports whether all four text fields are empty after trimming.
// Blank counters are dropped on create and on edit-save, but never on
// progress updates.
func (c Counter) Blank() bool {
	return strings.TrimSpace(c.Name) == "" &&
		strings.TrimSpace(c.Rows) == "" &&
		strings.TrimSpace(c.Stitches) == "" &&
		strings.TrimSpace(c.Notes) == ""
}

// TargetRows parses the textual row target; non-numeric or negative input is 0.
func (c Counter) TargetRows() int { return parseTarget(c.Rows) }

// TargetStitches parses the textual stitch target; non-numeric or negative input is 0.
func (c Counter) TargetStitches() int { return parseTarget(c.Stitches) }

func parseTarget(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Project is a single knitting/crochet work item.
type Project struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"userId"`
	ProjectName     string    `json:"projectName"`
	YarnType        string    `json:"yarnType"`
	NeedleSize      string    `json:"needleSize"`
	AdditionalNotes string    `json:"additionalNotes"`
	LinkToPattern   string    `json:"linkToPattern"`
	ImageURI        string    `json:"imageUri"` // opaque local reference, not validated here
	IsCompleted     bool      `json:"isCompleted"`
	Counters        []Counter `json:"counters"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Normalize fills defaults a stored document may be missing and reports
// whether anything changed.
func (p *Project) Normalize() bool {
	changed := false
	if p.Counters == nil {
		p.Counters = []Counter{}
		changed = true
	}
	for i := range p.Counters {
		if p.Counters[i].CompletedRows < 0 {
			p.Counters[i].CompletedRows = 0
			changed = true
		}
		if p.Counters[i].CompletedStitches < 0 {
			p.Counters[i].CompletedStitches = 0
			changed = true
		}
	}
	return changed
}

// ProjectDraft carries user-supplied fields for a new project. Everything but
// the name is optional.
type ProjectDraft struct {
	ProjectName     string
	YarnType        string
	NeedleSize      string
	AdditionalNotes string
	LinkToPattern   string
	ImageURI        string
	Counters        []Counter
}

// ProjectPatch is a shallow partial update; nil fields are left untouched.
type ProjectPatch struct {
	ProjectName     *string
	YarnType        *string
	NeedleSize      *string
	AdditionalNotes *string
	LinkToPattern   *string
	ImageURI        *string
	IsCompleted     *bool
	Counters        *[]Counter
}

// Apply merges the patch onto the project. The caller is responsible for
// refreshing UpdatedAt.
func (pt ProjectPatch) Apply(p *Project) {
	if pt.ProjectName != nil {
		p.ProjectName = *pt.ProjectName
	}
	if pt.YarnType != nil {
		p.YarnType = *pt.YarnType
	}
	if pt.NeedleSize != nil {
		p.NeedleSize = *pt.NeedleSize
	}
	if pt.AdditionalNotes != nil {
		p.AdditionalNotes = *pt.AdditionalNotes
	}
	if pt.LinkToPattern != nil {
		p.LinkToPattern = *pt.LinkToPattern
	}
	if pt.ImageURI != nil {
		p.ImageURI = *pt.ImageURI
	}
	if pt.IsCompleted != nil {
		p.IsCompleted = *pt.IsCompleted
	}
	if pt.Counters != nil {
		p.Counters = *pt.Counters
	}
}
