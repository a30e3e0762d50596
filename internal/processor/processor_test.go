package processor

import (
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/discq/internal/models"
)

func sampleReleases() []models.Release {
	return []models.Release{
		{ID: 1, Artist: "SOHN", Title: "Albadas", Year: 2023, URL: "https://www.discogs.com/release/1", DateAdded: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Artist: "caribou", Title: "Swim", Year: 2010, URL: "https://www.discogs.com/release/2", DateAdded: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{ID: 3, Artist: "Caribou", Title: "Suddenly", Year: 2020, URL: "https://www.discogs.com/release/3", DateAdded: time.Date(2022, 7, 9, 0, 0, 0, 0, time.UTC)},
		{ID: 4, Artist: "Burial", Title: "Untrue", Year: 0, URL: "https://www.discogs.com/release/4", DateAdded: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
	}
}

func TestParseSortCriterion(t *testing.T) {
	for _, name := range []string{"artist_asc", "artist_desc", "year_asc", "year_desc", "date_added_desc"} {
		if _, err := ParseSortCriterion(name); err != nil {
			t.Errorf("expected %q to parse, got %v", name, err)
		}
	}

	if _, err := ParseSortCriterion("random"); err == nil {
		t.Error("expected an error for an unknown criterion")
	}
}

func TestValidate(t *testing.T) {
	t.Run("passes a complete release", func(t *testing.T) {
		if err := Validate(sampleReleases()[0]); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("zero year is not an error", func(t *testing.T) {
		if err := Validate(sampleReleases()[3]); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("names every missing field", func(t *testing.T) {
		release := models.Release{ID: 9, Title: "  "}
		verr := Validate(release)
		if verr == nil {
			t.Fatal("expected a validation error")
		}

		if verr.ReleaseID != 9 {
			t.Errorf("expected release 9, got %d", verr.ReleaseID)
		}

		if len(verr.MissingFields) != 3 {
			t.Errorf("expected artist, title, url missing, got %v", verr.MissingFields)
		}

		var err error = verr
		var target *ValidationError
		if !errors.As(err, &target) {
			t.Error("expected errors.As to match ValidationError")
		}
	})
}

func TestPartition(t *testing.T) {
	releases := append(sampleReleases(), models.Release{ID: 5, Title: "No Artist", URL: "u"})

	valid, invalid := Partition(releases)

	if len(valid) != 4 {
		t.Errorf("expected 4 valid, got %d", len(valid))
	}
	if len(invalid) != 1 || invalid[0].ReleaseID != 5 {
		t.Errorf("expected release 5 invalid, got %+v", invalid)
	}
}

func TestSort(t *testing.T) {
	releases := sampleReleases()

	idOrder := func(sorted []models.Release) []int64 {
		ids := make([]int64, len(sorted))
		for i, r := range sorted {
			ids[i] = r.ID
		}
		return ids
	}

	assertOrder := func(t *testing.T, got, want []int64) {
		t.Helper()
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected order %v, got %v", want, got)
			}
		}
	}

	t.Run("does not mutate the input", func(t *testing.T) {
		Sort(releases, SortArtistAsc)
		if releases[0].ID != 1 {
			t.Error("input slice was reordered")
		}
	})

	t.Run("artist ascending is case-insensitive with title tiebreak", func(t *testing.T) {
		sorted := Sort(releases, SortArtistAsc)
		assertOrder(t, idOrder(sorted), []int64{4, 3, 2, 1})
	})

	t.Run("artist descending keeps the title tiebreak ascending", func(t *testing.T) {
		sorted := Sort(releases, SortArtistDesc)
		assertOrder(t, idOrder(sorted), []int64{1, 3, 2, 4})
	})

	t.Run("year ascending puts unknown years last", func(t *testing.T) {
		sorted := Sort(releases, SortYearAsc)
		assertOrder(t, idOrder(sorted), []int64{2, 3, 1, 4})
	})

	t.Run("year descending also puts unknown years last", func(t *testing.T) {
		sorted := Sort(releases, SortYearDesc)
		assertOrder(t, idOrder(sorted), []int64{1, 3, 2, 4})
	})

	t.Run("date added newest first", func(t *testing.T) {
		sorted := Sort(releases, SortDateAddedDesc)
		assertOrder(t, idOrder(sorted), []int64{4, 2, 1, 3})
	})
}

func TestLetterBucket(t *testing.T) {
	cases := map[string]string{
		"SOHN":         "S",
		"caribou":      "C",
		"3 Doors Down": "#",
		"!!!":          "#",
		"":             "#",
		"Édith Piaf":   "É",
	}

	for artist, want := range cases {
		if got := LetterBucket(artist); got != want {
			t.Errorf("LetterBucket(%q) = %q, want %q", artist, got, want)
		}
	}
}

func TestGroupByLetter(t *testing.T) {
	releases := append(sampleReleases(), models.Release{ID: 6, Artist: "3 Doors Down", Title: "X", URL: "u"})

	buckets := GroupByLetter(releases)

	total := 0
	for _, bucket := range buckets {
		total += len(bucket)
	}
	if total != len(releases) {
		t.Errorf("expected every release in exactly one bucket, got %d of %d", total, len(releases))
	}

	if len(buckets["C"]) != 2 {
		t.Errorf("expected 2 releases under C, got %d", len(buckets["C"]))
	}

	if len(buckets[NonAlphaBucket]) != 1 || buckets[NonAlphaBucket][0].ID != 6 {
		t.Errorf("expected release 6 under %q, got %+v", NonAlphaBucket, buckets[NonAlphaBucket])
	}
}
