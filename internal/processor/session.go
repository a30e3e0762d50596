package processor

import (
	"fmt"

	"github.com/desertthunder/discq/internal/models"
	"github.com/desertthunder/discq/internal/shared"
)

// Stage is a position in the export wizard's state machine.
type Stage int

const (
	StageUnauthenticated Stage = iota
	StageAuthenticated
	StageFolderChosen
	StageReleasesListed
	StageSelected
	StagePreviewed
	StageRendered
)

func (s Stage) String() string {
	switch s {
	case StageUnauthenticated:
		return "unauthenticated"
	case StageAuthenticated:
		return "authenticated"
	case StageFolderChosen:
		return "folder_chosen"
	case StageReleasesListed:
		return "releases_listed"
	case StageSelected:
		return "selected"
	case StagePreviewed:
		return "previewed"
	case StageRendered:
		return "rendered"
	default:
		return ""
	}
}

// SequenceError rejects an operation invoked out of stage order, naming
// the stage the caller must reach first.
type SequenceError struct {
	Op       string
	Current  Stage
	Required Stage
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("%s requires stage %q, session is at %q", e.Op, e.Required, e.Current)
}

// Session holds the state of one export, from authentication through the
// rendered CSV. Every operation checks the stage order; nothing here is
// shared across sessions or goroutines, so no locking is needed.
//
// The forward path is Unauthenticated → Authenticated → FolderChosen →
// ReleasesListed → Selected → Previewed → Rendered. Edit loops Previewed
// back to Selected any number of times before rendering.
type Session struct {
	stage     Stage
	identity  models.Identity
	folder    models.Folder
	releases  []models.Release // current sorted view
	criterion SortCriterion
	selected  []int64 // displayed order, not click order
	edits     map[int64]models.FieldOverride
	preview   []models.Release
	skipped   []*ValidationError
}

// NewSession creates an unauthenticated export session.
func NewSession() *Session {
	return &Session{edits: make(map[int64]models.FieldOverride)}
}

// Stage returns the session's current stage.
func (s *Session) Stage() Stage { return s.stage }

// require fails with a [SequenceError] when the session has not reached
// the required stage.
func (s *Session) require(op string, required Stage) error {
	if s.stage < required {
		return &SequenceError{Op: op, Current: s.stage, Required: required}
	}
	return nil
}

// Authenticate records the authenticated identity and advances to
// Authenticated. Re-authenticating an active session is a sequence error;
// call Reset first.
func (s *Session) Authenticate(id models.Identity) error {
	if s.stage != StageUnauthenticated {
		return &SequenceError{Op: "authenticate", Current: s.stage, Required: StageUnauthenticated}
	}
	s.identity = id
	s.stage = StageAuthenticated
	return nil
}

// Identity returns the authenticated user.
func (s *Session) Identity() models.Identity { return s.identity }

// ChooseFolder picks the folder to browse. Allowed any time after
// authentication; choosing again discards downstream listing, selection,
// and preview state.
func (s *Session) ChooseFolder(f models.Folder) error {
	if err := s.require("choose folder", StageAuthenticated); err != nil {
		return err
	}
	s.folder = f
	s.releases = nil
	s.clearSelection()
	s.stage = StageFolderChosen
	return nil
}

// Folder returns the chosen folder.
func (s *Session) Folder() models.Folder { return s.folder }

// ListReleases installs the folder's releases sorted by criterion and
// advances to ReleasesListed. Re-listing (e.g. a sort change) discards
// the current selection, which was relative to the previous ordering.
func (s *Session) ListReleases(releases []models.Release, criterion SortCriterion) error {
	if err := s.require("list releases", StageFolderChosen); err != nil {
		return err
	}
	if _, err := ParseSortCriterion(string(criterion)); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	s.releases = Sort(releases, criterion)
	s.criterion = criterion
	s.clearSelection()
	s.stage = StageReleasesListed
	return nil
}

// Releases returns a copy of the current sorted view.
func (s *Session) Releases() []models.Release {
	out := make([]models.Release, len(s.releases))
	copy(out, s.releases)
	return out
}

// Criterion returns the ordering of the current view.
func (s *Session) Criterion() SortCriterion { return s.criterion }

// Select records the chosen release ids and advances to Selected. The
// selection keeps the displayed (sorted) order regardless of the order
// ids are supplied in. Unknown ids and empty selections are rejected.
func (s *Session) Select(ids []int64) error {
	if err := s.require("select releases", StageReleasesListed); err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: empty selection", shared.ErrInvalidInput)
	}

	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	selected := make([]int64, 0, len(wanted))
	for _, r := range s.releases {
		if wanted[r.ID] {
			selected = append(selected, r.ID)
			delete(wanted, r.ID)
		}
	}

	if len(wanted) > 0 {
		for id := range wanted {
			return fmt.Errorf("%w: release %d is not in the listed folder", shared.ErrInvalidInput, id)
		}
	}

	s.selected = selected
	s.preview = nil
	s.skipped = nil
	s.stage = StageSelected
	return nil
}

// Selected returns the selected ids in displayed order.
func (s *Session) Selected() []int64 { return s.selected }

// Edit stores a field override for a selected release, applied to a copy
// at preview time. Editing after a preview loops the session back to
// Selected, so the preview must be rebuilt before rendering.
func (s *Session) Edit(id int64, override models.FieldOverride) error {
	if err := s.require("edit release", StageSelected); err != nil {
		return err
	}

	found := false
	for _, sel := range s.selected {
		if sel == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: release %d is not selected", shared.ErrInvalidInput, id)
	}

	s.edits[id] = override
	s.preview = nil
	s.skipped = nil
	s.stage = StageSelected
	return nil
}

// Preview builds the rows that Render will emit: edited copies of the
// selected releases, validated, in displayed order. Invalid releases are
// excluded and reported by id, never fatal. Advances to Previewed.
func (s *Session) Preview() ([]models.Release, []*ValidationError, error) {
	if err := s.require("preview", StageSelected); err != nil {
		return nil, nil, err
	}

	byID := make(map[int64]models.Release, len(s.releases))
	for _, r := range s.releases {
		byID[r.ID] = r
	}

	rows := make([]models.Release, 0, len(s.selected))
	for _, id := range s.selected {
		r := byID[id]
		if override, ok := s.edits[id]; ok {
			r = override.Apply(r)
		}
		rows = append(rows, r)
	}

	s.preview, s.skipped = Partition(rows)
	s.stage = StagePreviewed
	return s.preview, s.skipped, nil
}

// Skipped returns the validation errors from the last preview.
func (s *Session) Skipped() []*ValidationError { return s.skipped }

// Render produces the final CSV from the previewed rows and advances to
// Rendered. Rendering without a current preview is a sequence error.
func (s *Session) Render(t *Template) ([]byte, error) {
	if s.stage != StagePreviewed {
		return nil, &SequenceError{Op: "render", Current: s.stage, Required: StagePreviewed}
	}

	out, err := t.Render(s.preview)
	if err != nil {
		return nil, err
	}

	s.stage = StageRendered
	return out, nil
}

// Reset discards all session data and returns to Unauthenticated.
func (s *Session) Reset() {
	*s = *NewSession()
}

func (s *Session) clearSelection() {
	s.selected = nil
	s.edits = make(map[int64]models.FieldOverride)
	s.preview = nil
	s.skipped = nil
}
