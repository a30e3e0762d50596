// package processor implements the collection export core: release
// validation, multi-criteria sorting, letter grouping, and rendering into
// the QR Factory batch CSV.
package processor

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/desertthunder/discq/internal/models"
)

// SortCriterion names one of the recognized release orderings.
type SortCriterion string

const (
	SortArtistAsc     SortCriterion = "artist_asc"
	SortArtistDesc    SortCriterion = "artist_desc"
	SortYearAsc       SortCriterion = "year_asc"
	SortYearDesc      SortCriterion = "year_desc"
	SortDateAddedDesc SortCriterion = "date_added_desc"
)

// SortCriteria returns every recognized criterion, in display order.
func SortCriteria() []SortCriterion {
	return []SortCriterion{SortArtistAsc, SortArtistDesc, SortYearAsc, SortYearDesc, SortDateAddedDesc}
}

// ParseSortCriterion validates a criterion name from config or a flag.
func ParseSortCriterion(s string) (SortCriterion, error) {
	for _, c := range SortCriteria() {
		if s == string(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unrecognized sort criterion %q", s)
}

// ValidationError reports a release unfit for export, naming every missing
// mandatory field rather than just the first.
type ValidationError struct {
	ReleaseID     int64
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("release %d missing required fields: %s", e.ReleaseID, strings.Join(e.MissingFields, ", "))
}

// Validate checks the presence of the three mandatory export fields.
// Returns nil for an exportable release. A zero Year is not an error; the
// year is display/sort data only.
func Validate(r models.Release) *ValidationError {
	var missing []string
	if strings.TrimSpace(r.Artist) == "" {
		missing = append(missing, "artist")
	}
	if strings.TrimSpace(r.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(r.URL) == "" {
		missing = append(missing, "url")
	}

	if len(missing) > 0 {
		return &ValidationError{ReleaseID: r.ID, MissingFields: missing}
	}
	return nil
}

// Partition splits releases into exportable ones and per-release
// validation errors. One invalid release never aborts the batch.
func Partition(releases []models.Release) ([]models.Release, []*ValidationError) {
	valid := make([]models.Release, 0, len(releases))
	var invalid []*ValidationError

	for _, r := range releases {
		if err := Validate(r); err != nil {
			invalid = append(invalid, err)
			continue
		}
		valid = append(valid, r)
	}

	return valid, invalid
}

// Sort returns a sorted copy of releases. The sort is stable: beyond the
// stated tie-breaks, equal keys keep their original relative order.
// Releases with an unknown year sort after all known years under both
// year criteria.
func Sort(releases []models.Release, criterion SortCriterion) []models.Release {
	sorted := make([]models.Release, len(releases))
	copy(sorted, releases)

	var less func(a, b models.Release) bool
	switch criterion {
	case SortArtistAsc:
		less = func(a, b models.Release) bool { return artistLess(a, b, false) }
	case SortArtistDesc:
		less = func(a, b models.Release) bool { return artistLess(a, b, true) }
	case SortYearAsc:
		less = func(a, b models.Release) bool { return yearLess(a, b, false) }
	case SortYearDesc:
		less = func(a, b models.Release) bool { return yearLess(a, b, true) }
	case SortDateAddedDesc:
		less = func(a, b models.Release) bool { return a.DateAdded.After(b.DateAdded) }
	default:
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted
}

// artistLess orders case-insensitively on artist; equal artists fall back
// to title ascending in both directions.
func artistLess(a, b models.Release, desc bool) bool {
	aa, bb := strings.ToLower(a.Artist), strings.ToLower(b.Artist)
	if aa != bb {
		if desc {
			return aa > bb
		}
		return aa < bb
	}
	return strings.ToLower(a.Title) < strings.ToLower(b.Title)
}

// yearLess pushes unknown years (zero) after every known year regardless
// of direction.
func yearLess(a, b models.Release, desc bool) bool {
	switch {
	case a.KnownYear() && !b.KnownYear():
		return true
	case !a.KnownYear():
		return false
	case desc:
		return a.Year > b.Year
	default:
		return a.Year < b.Year
	}
}

// NonAlphaBucket collects releases whose artist does not start with a letter.
const NonAlphaBucket = "#"

// LetterBucket returns the grouping key for an artist name: the upper-cased
// first rune when it is a letter, otherwise [NonAlphaBucket].
func LetterBucket(artist string) string {
	for _, r := range artist {
		if unicode.IsLetter(r) {
			return string(unicode.ToUpper(r))
		}
		return NonAlphaBucket
	}
	return NonAlphaBucket
}

// GroupByLetter partitions releases by the starting letter of their
// artist. Every release lands in exactly one bucket, so bucket toggling
// in the selection UI never re-derives keys per release.
func GroupByLetter(releases []models.Release) map[string][]models.Release {
	buckets := make(map[string][]models.Release)
	for _, r := range releases {
		key := LetterBucket(r.Artist)
		buckets[key] = append(buckets[key], r)
	}
	return buckets
}
