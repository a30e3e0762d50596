// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/discq/internal/models"
)

// MockService is a configurable test double for [services.Service]
type MockService struct {
	AuthenticateErr error
	IdentityValue   *models.Identity
	IdentityErr     error
	IdentityCalls   int
	Folders         []models.Folder
	FoldersErr      error
	Releases        map[int64][]models.Release
	ReleasesErr     error
	Release         *models.Release
	ReleaseErr      error
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return m.AuthenticateErr
}

func (m *MockService) Identity(ctx context.Context) (*models.Identity, error) {
	m.IdentityCalls++
	if m.IdentityErr != nil {
		return nil, m.IdentityErr
	}
	if m.IdentityValue != nil {
		return m.IdentityValue, nil
	}
	return &models.Identity{ID: 1, Username: "mockuser"}, nil
}

func (m *MockService) GetFolders(ctx context.Context) ([]models.Folder, error) {
	if m.FoldersErr != nil {
		return nil, m.FoldersErr
	}
	return m.Folders, nil
}

func (m *MockService) GetReleasesByFolder(ctx context.Context, folderID int64) ([]models.Release, error) {
	if m.ReleasesErr != nil {
		return nil, m.ReleasesErr
	}
	return m.Releases[folderID], nil
}

func (m *MockService) GetRelease(ctx context.Context, releaseID int64) (*models.Release, error) {
	if m.ReleaseErr != nil {
		return nil, m.ReleaseErr
	}
	return m.Release, nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
