package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/desertthunder/discq/internal/models"
	"github.com/desertthunder/discq/internal/processor"
	"github.com/desertthunder/discq/internal/shared"
	"github.com/urfave/cli/v3"
)

// Folders lists the collection folders for the authenticated user.
func (r *Runner) Folders(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	cached := cmd.Bool("cached")

	var folders []models.Folder
	var err error

	if cached {
		if r.cacher == nil {
			return fmt.Errorf("%w: no local cache, run 'discq setup' first", shared.ErrServiceUnavailable)
		}
		folders, err = r.cacher.CachedFolders()
	} else {
		if err = r.ensureAuthenticated(ctx); err != nil {
			return err
		}
		folders, err = r.engine.Folders(ctx, nil)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(folders, pretty)
	}

	r.writePlain("Found %d folders:\n\n", len(folders))
	for _, f := range folders {
		r.writePlain("%d. %s (%d releases)\n", f.ID, f.Name, f.Count)
	}

	return nil
}

// Releases lists the releases in a folder, sorted and optionally grouped
// by artist first letter.
func (r *Runner) Releases(ctx context.Context, cmd *cli.Command) error {
	folderID := cmd.Int("folder")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	cached := cmd.Bool("cached")
	group := cmd.Bool("group")

	criterion, err := r.resolveCriterion(cmd.String("sort"))
	if err != nil {
		return err
	}

	var releases []models.Release

	if cached {
		if r.cacher == nil {
			return fmt.Errorf("%w: no local cache, run 'discq setup' first", shared.ErrServiceUnavailable)
		}
		if releases, err = r.cacher.CachedReleases(int64(folderID)); err != nil {
			return fmt.Errorf("failed to read cache: %w", err)
		}
		releases = processor.Sort(releases, criterion)
	} else {
		if err = r.ensureAuthenticated(ctx); err != nil {
			return err
		}
		if releases, err = r.engine.Releases(ctx, nil, int64(folderID), criterion); err != nil {
			return err
		}
	}

	if useJSON {
		return r.writeJSON(releases, pretty)
	}

	if group {
		return r.writeGrouped(releases)
	}

	r.writePlain("Found %d releases:\n\n", len(releases))
	for i, rel := range releases {
		r.writeRelease(i+1, rel)
	}

	return nil
}

func (r *Runner) writeGrouped(releases []models.Release) error {
	buckets := processor.GroupByLetter(releases)

	letters := make([]string, 0, len(buckets))
	for letter := range buckets {
		letters = append(letters, letter)
	}
	sort.Strings(letters)

	for _, letter := range letters {
		r.writePlainHeader(letter)
		for i, rel := range buckets[letter] {
			r.writeRelease(i+1, rel)
		}
		r.writePlain("\n")
	}

	return nil
}

func (r *Runner) writeRelease(n int, rel models.Release) {
	r.writePlain("%d. %s\n", n, processor.BottomText(rel))
	r.writePlain("   ID: %d\n", rel.ID)
	r.writePlain("   URL: %s\n", rel.URL)
	if !rel.DateAdded.IsZero() {
		r.writePlain("   Added: %s\n", rel.DateAdded.Format("2006-01-02"))
	}
}

// resolveCriterion picks the sort order from the flag, falling back to the
// configured default, then to artist_asc.
func (r *Runner) resolveCriterion(flag string) (processor.SortCriterion, error) {
	name := flag
	if name == "" {
		name = r.config.Export.Sort
	}
	if name == "" {
		return processor.SortArtistAsc, nil
	}

	criterion, err := processor.ParseSortCriterion(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	return criterion, nil
}
