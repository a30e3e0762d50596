// package services defines interface Service for interacting with the
// Discogs HTTP API
package services

import (
	"context"

	"github.com/desertthunder/discq/internal/models"
)

// Service defines the collection provider operations consumed by the
// export engine and the CLI/TUI surfaces.
type Service interface {
	// Authenticate configures request signing from the supplied
	// credentials and verifies them against the provider.
	// Returns an error wrapping shared.ErrAuthFailed when the provider
	// rejects the credentials or is unreachable.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// Identity returns the authenticated user.
	Identity(ctx context.Context) (*models.Identity, error)

	// GetFolders retrieves all collection folders for the authenticated user.
	GetFolders(ctx context.Context) ([]models.Folder, error)

	// GetReleasesByFolder retrieves every release in a folder. The call
	// either returns the complete list or fails; there are no partial
	// results and no automatic retries.
	GetReleasesByFolder(ctx context.Context, folderID int64) ([]models.Release, error)

	// GetRelease retrieves a single release by id.
	GetRelease(ctx context.Context, releaseID int64) (*models.Release, error)

	// Name returns the name of the provider (e.g. "Discogs")
	Name() string
}

// OAuthService extends Service for providers using the OAuth 1.0a
// three-legged flow driven by the auth command.
type OAuthService interface {
	Service

	// BeginAuth obtains a request token and the URL the user must visit
	// to authorize it. The verifier arrives on the callback URL.
	BeginAuth(callbackURL string) (requestToken, requestSecret, authURL string, err error)

	// CompleteAuth exchanges the authorized request token and verifier
	// for an access token pair and configures the service to sign with it.
	CompleteAuth(ctx context.Context, requestToken, requestSecret, verifier string) (token, tokenSecret string, err error)
}
