package repositories

import (
	"testing"
	"time"

	"github.com/desertthunder/discq/internal/models"
	"github.com/desertthunder/discq/internal/shared"
)

func setupTestDB(t *testing.T) *ReleaseRepository {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	return NewReleaseRepository(db)
}

func TestCacheFolders(t *testing.T) {
	repo := setupTestDB(t)

	folders := []models.Folder{
		{ID: 0, Name: "All", Count: 3},
		{ID: 7, Name: "Shelf", Count: 1},
	}

	if err := repo.CacheFolders(folders); err != nil {
		t.Fatalf("CacheFolders: %v", err)
	}

	t.Run("round trips the folder list", func(t *testing.T) {
		cached, err := repo.CachedFolders()
		if err != nil {
			t.Fatalf("CachedFolders: %v", err)
		}

		if len(cached) != 2 {
			t.Fatalf("expected 2 folders, got %d", len(cached))
		}

		if cached[1].Name != "Shelf" || cached[1].Count != 1 {
			t.Errorf("unexpected folder %+v", cached[1])
		}
	})

	t.Run("refresh replaces stale entries", func(t *testing.T) {
		if err := repo.CacheFolders([]models.Folder{{ID: 7, Name: "Shelf", Count: 4}}); err != nil {
			t.Fatalf("CacheFolders: %v", err)
		}

		cached, err := repo.CachedFolders()
		if err != nil {
			t.Fatalf("CachedFolders: %v", err)
		}

		if len(cached) != 1 || cached[0].Count != 4 {
			t.Errorf("expected refreshed single folder, got %+v", cached)
		}
	})
}

func TestCacheReleases(t *testing.T) {
	repo := setupTestDB(t)

	added := time.Date(2023, 4, 1, 17, 30, 0, 0, time.UTC)
	releases := []models.Release{
		{ID: 101, Artist: "SOHN", Title: "Albadas", Year: 2023, URL: "https://www.discogs.com/release/101", DateAdded: added},
		{ID: 202, Artist: "First, Second", Title: "Untitled", Year: 0, URL: "https://www.discogs.com/release/202"},
	}

	if err := repo.CacheReleases(3, releases); err != nil {
		t.Fatalf("CacheReleases: %v", err)
	}

	t.Run("round trips releases including unknown dates", func(t *testing.T) {
		cached, err := repo.CachedReleases(3)
		if err != nil {
			t.Fatalf("CachedReleases: %v", err)
		}

		if len(cached) != 2 {
			t.Fatalf("expected 2 releases, got %d", len(cached))
		}

		if !cached[0].DateAdded.Equal(added) {
			t.Errorf("expected date %v, got %v", added, cached[0].DateAdded)
		}

		if !cached[1].DateAdded.IsZero() {
			t.Errorf("expected zero date, got %v", cached[1].DateAdded)
		}
	})

	t.Run("isolates folders", func(t *testing.T) {
		cached, err := repo.CachedReleases(99)
		if err != nil {
			t.Fatalf("CachedReleases: %v", err)
		}

		if len(cached) != 0 {
			t.Errorf("expected empty cache for folder 99, got %d rows", len(cached))
		}
	})

	t.Run("clear drops only the target folder", func(t *testing.T) {
		if err := repo.CacheReleases(4, releases[:1]); err != nil {
			t.Fatalf("CacheReleases: %v", err)
		}

		if err := repo.ClearFolder(3); err != nil {
			t.Fatalf("ClearFolder: %v", err)
		}

		cleared, err := repo.CachedReleases(3)
		if err != nil {
			t.Fatalf("CachedReleases: %v", err)
		}
		if len(cleared) != 0 {
			t.Errorf("expected folder 3 cleared, got %d rows", len(cleared))
		}

		kept, err := repo.CachedReleases(4)
		if err != nil {
			t.Fatalf("CachedReleases: %v", err)
		}
		if len(kept) != 1 {
			t.Errorf("expected folder 4 untouched, got %d rows", len(kept))
		}
	})
}
