package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/discq/internal/models"
)

// ReleaseRepository caches folders and their releases in SQLite.
//
// Rows are replaced wholesale on refresh (INSERT OR REPLACE keyed by the
// primary key) so a cache refresh never leaves a folder half-updated.
type ReleaseRepository struct {
	db *sql.DB
}

// NewReleaseRepository creates a new ReleaseRepository with the given database connection
func NewReleaseRepository(db *sql.DB) *ReleaseRepository {
	return &ReleaseRepository{db: db}
}

// CacheFolders replaces the stored folder list.
func (r *ReleaseRepository) CacheFolders(folders []models.Folder) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM folders`); err != nil {
			return fmt.Errorf("failed to clear folders: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO folders (id, name, count, cached_at)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare folder insert: %w", err)
		}
		defer stmt.Close()

		now := touch()
		for _, f := range folders {
			if _, err := stmt.Exec(f.ID, f.Name, f.Count, now); err != nil {
				return fmt.Errorf("failed to cache folder %d: %w", f.ID, err)
			}
		}

		return nil
	})
}

// CachedFolders returns the stored folder list in name order.
func (r *ReleaseRepository) CachedFolders() ([]models.Folder, error) {
	rows, err := r.db.Query(`SELECT id, name, count FROM folders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.Count); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, f)
	}

	return folders, rows.Err()
}

// CacheReleases replaces the cached contents of a folder.
func (r *ReleaseRepository) CacheReleases(folderID int64, releases []models.Release) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM releases WHERE folder_id = ?`, folderID); err != nil {
			return fmt.Errorf("failed to clear folder %d: %w", folderID, err)
		}

		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO releases
				(id, folder_id, artist, title, year, url, date_added, cached_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare release insert: %w", err)
		}
		defer stmt.Close()

		now := touch()
		for _, rel := range releases {
			var added any
			if !rel.DateAdded.IsZero() {
				added = rel.DateAdded.UTC().Format(time.RFC3339)
			}

			if _, err := stmt.Exec(rel.ID, folderID, rel.Artist, rel.Title, rel.Year, rel.URL, added, now); err != nil {
				return fmt.Errorf("failed to cache release %d: %w", rel.ID, err)
			}
		}

		return nil
	})
}

// CachedReleases returns the cached contents of a folder in insertion order.
func (r *ReleaseRepository) CachedReleases(folderID int64) ([]models.Release, error) {
	rows, err := r.db.Query(`
		SELECT id, artist, title, year, url, date_added
		FROM releases
		WHERE folder_id = ?
		ORDER BY rowid
	`, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query releases: %w", err)
	}
	defer rows.Close()

	var releases []models.Release
	for rows.Next() {
		var rel models.Release
		var added sql.NullString
		if err := rows.Scan(&rel.ID, &rel.Artist, &rel.Title, &rel.Year, &rel.URL, &added); err != nil {
			return nil, fmt.Errorf("failed to scan release: %w", err)
		}

		if added.Valid {
			if ts, err := time.Parse(time.RFC3339, added.String); err == nil {
				rel.DateAdded = ts
			}
		}

		releases = append(releases, rel)
	}

	return releases, rows.Err()
}

// ClearFolder drops the cached releases for a folder.
func (r *ReleaseRepository) ClearFolder(folderID int64) error {
	if _, err := r.db.Exec(`DELETE FROM releases WHERE folder_id = ?`, folderID); err != nil {
		return fmt.Errorf("failed to clear folder %d: %w", folderID, err)
	}
	return nil
}
