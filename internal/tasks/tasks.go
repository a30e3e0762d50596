// package tasks implements collection export operations against a provider service.
//
// The core abstraction is ExportEngine, which orchestrates folder listing,
// release fetching, and CSV rendering through a processor.Session.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/discq/internal/models"
	"github.com/desertthunder/discq/internal/processor"
	"github.com/desertthunder/discq/internal/services"
	"github.com/desertthunder/discq/internal/shared"
)

// ReleaseCacher persists fetched folders and releases so repeat runs can
// avoid the provider's rate limit. Implemented by repositories.ReleaseRepository.
type ReleaseCacher interface {
	CacheFolders(folders []models.Folder) error
	CachedFolders() ([]models.Folder, error)
	CacheReleases(folderID int64, releases []models.Release) error
	CachedReleases(folderID int64) ([]models.Release, error)
}

// ExportOptions configures a single Export run.
type ExportOptions struct {
	FolderID    int64                          // Collection folder to export
	SelectedIDs []int64                        // Release ids to include; empty selects the whole folder
	Criterion   processor.SortCriterion        // Sort order for the rendered rows
	Edits       map[int64]models.FieldOverride // Per-release field overrides
	Template    *processor.Template            // CSV template; nil uses the embedded default
	Cached      bool                           // Read releases from the cache instead of the API
}

// ExportResult contains all data from a completed export.
type ExportResult struct {
	ID       string                      // Run identifier
	Folder   models.Folder               // Folder that was exported
	CSV      []byte                      // Rendered CSV document
	Filename string                      // Suggested timestamped filename
	Rendered int                         // Rows written after the header
	Skipped  []*processor.ValidationError // Releases excluded for missing fields
}

// ExportEngine defines collection export operations.
type ExportEngine interface {
	// Folders lists the collection folders for the authenticated user.
	Folders(ctx context.Context, progress chan<- ProgressUpdate) ([]models.Folder, error)

	// Releases lists every release in a folder, sorted by criterion.
	Releases(ctx context.Context, progress chan<- ProgressUpdate, folderID int64, criterion processor.SortCriterion) ([]models.Release, error)

	// Export renders the selected releases to a QR Factory CSV document.
	Export(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOptions) (*ExportResult, error)
}

// CollectionEngine implements ExportEngine against a provider service,
// optionally caching fetched data through a ReleaseCacher.
type CollectionEngine struct {
	service services.Service
	cacher  ReleaseCacher
	clock   func() time.Time
}

// NewCollectionEngine creates a new CollectionEngine. The cacher may be nil,
// in which case nothing is persisted between runs.
func NewCollectionEngine(service services.Service, cacher ReleaseCacher) *CollectionEngine {
	return &CollectionEngine{service: service, cacher: cacher, clock: time.Now}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *CollectionEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Folders fetches the folder list and refreshes the cache on success.
func (e *CollectionEngine) Folders(ctx context.Context, progress chan<- ProgressUpdate) ([]models.Folder, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: provider service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchFoldersUpdate())

	folders, err := e.service.GetFolders(ctx)
	if err != nil {
		return nil, err
	}

	if e.cacher != nil {
		// Cache writes are best effort: a cache failure never fails a fetch.
		_ = e.cacher.CacheFolders(folders)
	}

	return folders, nil
}

// Releases fetches a folder's releases, refreshes the cache, and returns
// them sorted by criterion.
func (e *CollectionEngine) Releases(ctx context.Context, progress chan<- ProgressUpdate, folderID int64, criterion processor.SortCriterion) ([]models.Release, error) {
	if criterion == "" {
		criterion = processor.SortArtistAsc
	}

	releases, err := e.fetchReleases(ctx, progress, folderID, false)
	if err != nil {
		return nil, err
	}

	return processor.Sort(releases, criterion), nil
}

func (e *CollectionEngine) fetchReleases(ctx context.Context, progress chan<- ProgressUpdate, folderID int64, cached bool) ([]models.Release, error) {
	if cached {
		if e.cacher == nil {
			return nil, fmt.Errorf("%w: no cache configured", shared.ErrServiceUnavailable)
		}
		return e.cacher.CachedReleases(folderID)
	}

	if e.service == nil {
		return nil, fmt.Errorf("%w: provider service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchReleasesUpdate(folderID))

	releases, err := e.service.GetReleasesByFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if e.cacher != nil {
		_ = e.cacher.CacheReleases(folderID, releases)
	}

	return releases, nil
}

// Export drives a full session from folder selection through CSV rendering.
//
// Releases missing a required field are skipped and reported in the result
// rather than failing the run. An export where every selected release is
// skipped fails with ErrInvalidInput since the document would be empty.
func (e *CollectionEngine) Export(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOptions) (*ExportResult, error) {
	if opts.Criterion == "" {
		opts.Criterion = processor.SortArtistAsc
	}

	folder, err := e.resolveFolder(ctx, progress, opts)
	if err != nil {
		return nil, err
	}

	releases, err := e.fetchReleases(ctx, progress, opts.FolderID, opts.Cached)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, foundReleasesUpdate(folder, len(releases)))

	session := processor.NewSession()
	identity := models.Identity{Username: "cached"}
	if !opts.Cached && e.service != nil {
		e.sendProgress(progress, fetchIdentityUpdate())
		identity = models.Identity{Username: e.service.Name()}
		if id, err := e.service.Identity(ctx); err == nil {
			identity = *id
		}
	}
	if err := session.Authenticate(identity); err != nil {
		return nil, err
	}
	if err := session.ChooseFolder(folder); err != nil {
		return nil, err
	}
	if err := session.ListReleases(releases, opts.Criterion); err != nil {
		return nil, err
	}

	selected := opts.SelectedIDs
	if len(selected) == 0 {
		for _, r := range session.Releases() {
			selected = append(selected, r.ID)
		}
	}
	if err := session.Select(selected); err != nil {
		return nil, err
	}

	for id, override := range opts.Edits {
		if err := session.Edit(id, override); err != nil {
			return nil, err
		}
	}

	rows, skipped, err := session.Preview()
	if err != nil {
		return nil, err
	}

	for i, v := range skipped {
		e.sendProgress(progress, skippedReleaseUpdate(i+1, len(skipped), v))
	}
	e.sendProgress(progress, prepareRowsUpdate(len(rows), len(skipped)))

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no exportable releases in selection", shared.ErrInvalidInput)
	}

	template := opts.Template
	if template == nil {
		template = processor.DefaultTemplate()
	}

	csv, err := session.Render(template)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{
		ID:       shared.GenerateID(),
		Folder:   folder,
		CSV:      csv,
		Filename: processor.ExportFilename(e.clock()),
		Rendered: len(rows),
		Skipped:  skipped,
	}

	e.sendProgress(progress, renderUpdate(result.Filename, result.Rendered))
	return result, nil
}

// resolveFolder finds the folder record for opts.FolderID so the result can
// name it. Folder id 0 is Discogs' implicit "All" folder and always resolves.
func (e *CollectionEngine) resolveFolder(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOptions) (models.Folder, error) {
	var folders []models.Folder
	var err error

	if opts.Cached && e.cacher != nil {
		folders, err = e.cacher.CachedFolders()
	} else {
		folders, err = e.Folders(ctx, progress)
	}
	if err != nil {
		return models.Folder{}, err
	}

	for _, f := range folders {
		if f.ID == opts.FolderID {
			return f, nil
		}
	}

	if opts.FolderID == 0 {
		return models.Folder{ID: 0, Name: "All"}, nil
	}

	return models.Folder{}, fmt.Errorf("%w: folder %d", shared.ErrFolderNotFound, opts.FolderID)
}
