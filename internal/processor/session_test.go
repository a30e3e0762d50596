package processor

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/discq/internal/models"
	"github.com/desertthunder/discq/internal/shared"
)

func authedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession()
	if err := s.Authenticate(models.Identity{ID: 1, Username: "vinylfan"}); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	return s
}

func listedSession(t *testing.T) *Session {
	t.Helper()
	s := authedSession(t)
	if err := s.ChooseFolder(models.Folder{ID: 3, Name: "Shelf", Count: 4}); err != nil {
		t.Fatalf("ChooseFolder: %v", err)
	}
	if err := s.ListReleases(sampleReleases(), SortArtistAsc); err != nil {
		t.Fatalf("ListReleases: %v", err)
	}
	return s
}

func TestSessionOrdering(t *testing.T) {
	t.Run("operations out of order fail with a SequenceError", func(t *testing.T) {
		s := NewSession()

		var seqErr *SequenceError
		if err := s.ChooseFolder(models.Folder{ID: 3}); !errors.As(err, &seqErr) {
			t.Fatalf("expected SequenceError, got %v", err)
		}
		if seqErr.Required != StageAuthenticated {
			t.Errorf("expected required stage authenticated, got %s", seqErr.Required)
		}
		if !strings.Contains(seqErr.Error(), "authenticated") {
			t.Errorf("expected the message to name the required stage: %s", seqErr.Error())
		}
	})

	t.Run("render before preview fails", func(t *testing.T) {
		s := listedSession(t)
		if err := s.Select([]int64{1}); err != nil {
			t.Fatalf("Select: %v", err)
		}

		var seqErr *SequenceError
		if _, err := s.Render(DefaultTemplate()); !errors.As(err, &seqErr) {
			t.Fatalf("expected SequenceError, got %v", err)
		}
		if seqErr.Required != StagePreviewed {
			t.Errorf("expected required stage previewed, got %s", seqErr.Required)
		}
	})

	t.Run("re-authenticating an active session fails", func(t *testing.T) {
		s := authedSession(t)
		if err := s.Authenticate(models.Identity{ID: 2}); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("reset returns to unauthenticated", func(t *testing.T) {
		s := listedSession(t)
		s.Reset()
		if s.Stage() != StageUnauthenticated {
			t.Errorf("expected unauthenticated, got %s", s.Stage())
		}
	})
}

func TestSessionListReleases(t *testing.T) {
	t.Run("rejects an unrecognized criterion", func(t *testing.T) {
		s := authedSession(t)
		if err := s.ChooseFolder(models.Folder{ID: 3, Name: "Shelf"}); err != nil {
			t.Fatalf("ChooseFolder: %v", err)
		}

		if err := s.ListReleases(sampleReleases(), SortCriterion("shuffle")); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if s.Stage() != StageFolderChosen {
			t.Errorf("expected the stage to stay at %s, got %s", StageFolderChosen, s.Stage())
		}
	})

	t.Run("rejects the zero criterion", func(t *testing.T) {
		s := authedSession(t)
		if err := s.ChooseFolder(models.Folder{ID: 3, Name: "Shelf"}); err != nil {
			t.Fatalf("ChooseFolder: %v", err)
		}

		if err := s.ListReleases(sampleReleases(), SortCriterion("")); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("returned view is a copy", func(t *testing.T) {
		s := listedSession(t)

		view := s.Releases()
		view[0].Artist = "Mutated"

		if got := s.Releases()[0].Artist; got == "Mutated" {
			t.Error("mutating the returned slice changed the session view")
		}
	})
}

func TestSessionSelect(t *testing.T) {
	t.Run("keeps displayed order regardless of input order", func(t *testing.T) {
		s := listedSession(t)

		// artist_asc order is Burial(4), Caribou/Suddenly(3), caribou/Swim(2), SOHN(1)
		if err := s.Select([]int64{1, 4, 2}); err != nil {
			t.Fatalf("Select: %v", err)
		}

		selected := s.Selected()
		want := []int64{4, 2, 1}
		for i := range want {
			if selected[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, selected)
			}
		}
	})

	t.Run("rejects an empty selection", func(t *testing.T) {
		s := listedSession(t)
		if err := s.Select(nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("rejects ids outside the listing", func(t *testing.T) {
		s := listedSession(t)
		if err := s.Select([]int64{1, 999}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("re-listing discards the selection", func(t *testing.T) {
		s := listedSession(t)
		if err := s.Select([]int64{1}); err != nil {
			t.Fatalf("Select: %v", err)
		}

		if err := s.ListReleases(sampleReleases(), SortYearAsc); err != nil {
			t.Fatalf("ListReleases: %v", err)
		}

		if len(s.Selected()) != 0 {
			t.Error("expected selection cleared after re-listing")
		}
		if s.Stage() != StageReleasesListed {
			t.Errorf("expected releases_listed, got %s", s.Stage())
		}
	})
}

func TestSessionEditPreviewRender(t *testing.T) {
	t.Run("edit applies to a copy at preview time", func(t *testing.T) {
		s := listedSession(t)
		if err := s.Select([]int64{1, 2}); err != nil {
			t.Fatalf("Select: %v", err)
		}

		title := "Swim (Deluxe)"
		if err := s.Edit(2, models.FieldOverride{Title: &title}); err != nil {
			t.Fatalf("Edit: %v", err)
		}

		rows, skipped, err := s.Preview()
		if err != nil {
			t.Fatalf("Preview: %v", err)
		}
		if len(skipped) != 0 {
			t.Fatalf("expected no skips, got %+v", skipped)
		}

		if rows[0].Title != "Swim (Deluxe)" {
			t.Errorf("expected edited title in preview, got %q", rows[0].Title)
		}

		// the listed release is untouched
		for _, r := range s.Releases() {
			if r.ID == 2 && r.Title != "Swim" {
				t.Errorf("expected original release unchanged, got %q", r.Title)
			}
		}
	})

	t.Run("edit after preview loops back to selected", func(t *testing.T) {
		s := listedSession(t)
		if err := s.Select([]int64{1}); err != nil {
			t.Fatalf("Select: %v", err)
		}
		if _, _, err := s.Preview(); err != nil {
			t.Fatalf("Preview: %v", err)
		}

		artist := "S O H N"
		if err := s.Edit(1, models.FieldOverride{Artist: &artist}); err != nil {
			t.Fatalf("Edit: %v", err)
		}

		if s.Stage() != StageSelected {
			t.Errorf("expected selected, got %s", s.Stage())
		}

		if _, err := s.Render(DefaultTemplate()); err == nil {
			t.Error("expected render to fail until the preview is rebuilt")
		}

		if _, _, err := s.Preview(); err != nil {
			t.Fatalf("Preview: %v", err)
		}
		out, err := s.Render(DefaultTemplate())
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if !strings.Contains(string(out), "S O H N – Albadas [2023]") {
			t.Error("expected edited artist in rendered output")
		}
	})

	t.Run("editing an unselected release fails", func(t *testing.T) {
		s := listedSession(t)
		if err := s.Select([]int64{1}); err != nil {
			t.Fatalf("Select: %v", err)
		}

		artist := "x"
		if err := s.Edit(3, models.FieldOverride{Artist: &artist}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("clearing a field skips the release and reports it", func(t *testing.T) {
		s := listedSession(t)
		if err := s.Select([]int64{1, 2}); err != nil {
			t.Fatalf("Select: %v", err)
		}

		empty := ""
		if err := s.Edit(2, models.FieldOverride{Artist: &empty}); err != nil {
			t.Fatalf("Edit: %v", err)
		}

		rows, skipped, err := s.Preview()
		if err != nil {
			t.Fatalf("Preview: %v", err)
		}

		if len(rows) != 1 || rows[0].ID != 1 {
			t.Errorf("expected only release 1 previewed, got %+v", rows)
		}
		if len(skipped) != 1 || skipped[0].ReleaseID != 2 {
			t.Errorf("expected release 2 skipped, got %+v", skipped)
		}
	})

	t.Run("full happy path reaches rendered", func(t *testing.T) {
		s := listedSession(t)
		if err := s.Select([]int64{4, 1}); err != nil {
			t.Fatalf("Select: %v", err)
		}
		if _, _, err := s.Preview(); err != nil {
			t.Fatalf("Preview: %v", err)
		}

		out, err := s.Render(DefaultTemplate())
		if err != nil {
			t.Fatalf("Render: %v", err)
		}

		if s.Stage() != StageRendered {
			t.Errorf("expected rendered, got %s", s.Stage())
		}

		lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
		if len(lines) != 3 {
			t.Errorf("expected header plus 2 rows, got %d lines", len(lines))
		}
	})
}
