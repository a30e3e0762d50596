package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/discq/internal/models"
	"github.com/desertthunder/discq/internal/shared"
	"github.com/dghubble/oauth1"
	"golang.org/x/time/rate"
)

const (
	discogsAPIURL          = "https://api.discogs.com"
	discogsRequestTokenURL = discogsAPIURL + "/oauth/request_token"
	discogsAccessTokenURL  = discogsAPIURL + "/oauth/access_token"
	discogsAuthorizeURL    = "https://www.discogs.com/oauth/authorize"
	discogsReleaseURL      = "https://www.discogs.com/release/%d"

	// Discogs allows 60 authenticated requests per minute.
	discogsRequestsPerMin = 60
	defaultPerPage        = 100
)

var errStatusNotFound = errors.New("resource not found")

// DiscogsService implements OAuthService against the Discogs REST API,
// signing requests with OAuth 1.0a.
type DiscogsService struct {
	oauthConfig *oauth1.Config
	token       *oauth1.Token
	client      *http.Client
	limiter     *rate.Limiter
	baseURL     string
	userAgent   string
	username    string
}

// identityResponse et al. mirror the Discogs payload shapes. Decoding is
// strict about structure: a record without a release id is rejected rather
// than exported with a zero value.
type identityResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type folderEntry struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type foldersResponse struct {
	Folders []folderEntry `json:"folders"`
}

type artistEntry struct {
	Name string `json:"name"`
}

type basicInformation struct {
	ID      int64         `json:"id"`
	Title   string        `json:"title"`
	Year    int           `json:"year"`
	Artists []artistEntry `json:"artists"`
}

type collectionRelease struct {
	ID               int64            `json:"id"`
	DateAdded        string           `json:"date_added"`
	BasicInformation basicInformation `json:"basic_information"`
}

type paginationInfo struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Items int `json:"items"`
}

type releasesResponse struct {
	Pagination paginationInfo      `json:"pagination"`
	Releases   []collectionRelease `json:"releases"`
}

type releaseResponse struct {
	ID      int64         `json:"id"`
	Title   string        `json:"title"`
	Year    int           `json:"year"`
	Artists []artistEntry `json:"artists"`
}

// NewDiscogsService builds a service from credential key/value pairs
// (see shared.DiscogsConfig.Map). Requires consumer_key and
// consumer_secret; the token pair is optional until Authenticate or
// CompleteAuth runs.
func NewDiscogsService(credentials map[string]string) (*DiscogsService, error) {
	key := credentials["consumer_key"]
	secret := credentials["consumer_secret"]
	if key == "" || secret == "" {
		return nil, fmt.Errorf("%w: consumer_key and consumer_secret are required", shared.ErrMissingCredentials)
	}

	agent := credentials["user_agent"]
	if agent == "" {
		agent = "discq/0.3"
	}

	cfg := oauth1.NewConfig(key, secret)
	cfg.Endpoint = oauth1.Endpoint{
		RequestTokenURL: discogsRequestTokenURL,
		AuthorizeURL:    discogsAuthorizeURL,
		AccessTokenURL:  discogsAccessTokenURL,
	}

	return &DiscogsService{
		oauthConfig: cfg,
		limiter:     rate.NewLimiter(rate.Every(time.Minute/discogsRequestsPerMin), 1),
		baseURL:     discogsAPIURL,
		userAgent:   agent,
	}, nil
}

func (s *DiscogsService) Name() string {
	return "Discogs"
}

// Authenticate installs the oauth_token/oauth_token_secret pair from the
// credentials map and verifies it with an identity probe. The probe also
// caches the username used to build collection URLs.
func (s *DiscogsService) Authenticate(ctx context.Context, credentials map[string]string) error {
	token := credentials["oauth_token"]
	tokenSecret := credentials["oauth_token_secret"]
	if token == "" || tokenSecret == "" {
		return fmt.Errorf("%w: oauth_token and oauth_token_secret are required, run auth first", shared.ErrMissingCredentials)
	}

	s.useToken(oauth1.NewToken(token, tokenSecret))

	identity, err := s.Identity(ctx)
	if err != nil {
		s.token = nil
		s.client = nil
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	s.username = identity.Username
	return nil
}

// BeginAuth implements the first leg of the OAuth 1.0a flow.
func (s *DiscogsService) BeginAuth(callbackURL string) (string, string, string, error) {
	s.oauthConfig.CallbackURL = callbackURL

	requestToken, requestSecret, err := s.oauthConfig.RequestToken()
	if err != nil {
		return "", "", "", fmt.Errorf("%w: request token: %v", shared.ErrAuthFailed, err)
	}

	authURL, err := s.oauthConfig.AuthorizationURL(requestToken)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: authorization url: %v", shared.ErrAuthFailed, err)
	}

	return requestToken, requestSecret, authURL.String(), nil
}

// CompleteAuth exchanges the verifier for an access token pair and leaves
// the service signing with it.
func (s *DiscogsService) CompleteAuth(ctx context.Context, requestToken, requestSecret, verifier string) (string, string, error) {
	accessToken, accessSecret, err := s.oauthConfig.AccessToken(requestToken, requestSecret, verifier)
	if err != nil {
		return "", "", fmt.Errorf("%w: access token exchange: %v", shared.ErrAuthFailed, err)
	}

	s.useToken(oauth1.NewToken(accessToken, accessSecret))

	identity, err := s.Identity(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	s.username = identity.Username
	return accessToken, accessSecret, nil
}

func (s *DiscogsService) useToken(token *oauth1.Token) {
	s.token = token
	s.client = s.oauthConfig.Client(oauth1.NoContext, token)
	s.client.Timeout = 30 * time.Second
}

func (s *DiscogsService) Identity(ctx context.Context) (*models.Identity, error) {
	var payload identityResponse
	if err := s.doRequest(ctx, "/oauth/identity", &payload); err != nil {
		return nil, err
	}

	if payload.Username == "" {
		return nil, fmt.Errorf("%w: identity response missing username", shared.ErrAPIRequest)
	}

	return &models.Identity{ID: payload.ID, Username: payload.Username, Name: payload.Name}, nil
}

func (s *DiscogsService) GetFolders(ctx context.Context) ([]models.Folder, error) {
	username, err := s.resolveUsername(ctx)
	if err != nil {
		return nil, err
	}

	var payload foldersResponse
	endpoint := fmt.Sprintf("/users/%s/collection/folders", username)
	if err := s.doRequest(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	folders := make([]models.Folder, 0, len(payload.Folders))
	for _, f := range payload.Folders {
		folders = append(folders, models.Folder{ID: f.ID, Name: f.Name, Count: f.Count})
	}

	return folders, nil
}

// GetReleasesByFolder walks every page of the folder. Any page failure
// aborts the whole listing; callers never see a partial folder.
func (s *DiscogsService) GetReleasesByFolder(ctx context.Context, folderID int64) ([]models.Release, error) {
	username, err := s.resolveUsername(ctx)
	if err != nil {
		return nil, err
	}

	var releases []models.Release
	page := 1
	for {
		endpoint := fmt.Sprintf("/users/%s/collection/folders/%d/releases?page=%d&per_page=%d",
			username, folderID, page, defaultPerPage)

		var payload releasesResponse
		if err := s.doRequest(ctx, endpoint, &payload); err != nil {
			if errors.Is(err, errStatusNotFound) {
				return nil, fmt.Errorf("%w: folder %d", shared.ErrFolderNotFound, folderID)
			}
			return nil, fmt.Errorf("folder %d page %d: %w", folderID, page, err)
		}

		for _, entry := range payload.Releases {
			release, err := mapCollectionRelease(entry)
			if err != nil {
				return nil, err
			}
			releases = append(releases, release)
		}

		if payload.Pagination.Pages == 0 || page >= payload.Pagination.Pages {
			break
		}
		page++
	}

	return releases, nil
}

func (s *DiscogsService) GetRelease(ctx context.Context, releaseID int64) (*models.Release, error) {
	var payload releaseResponse
	endpoint := fmt.Sprintf("/releases/%d", releaseID)
	if err := s.doRequest(ctx, endpoint, &payload); err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, fmt.Errorf("%w: release %d", shared.ErrReleaseNotFound, releaseID)
		}
		return nil, err
	}

	if payload.ID == 0 {
		return nil, fmt.Errorf("%w: release response missing id", shared.ErrAPIRequest)
	}

	return &models.Release{
		ID:     payload.ID,
		Artist: joinArtists(payload.Artists),
		Title:  payload.Title,
		Year:   payload.Year,
		URL:    fmt.Sprintf(discogsReleaseURL, payload.ID),
	}, nil
}

func (s *DiscogsService) resolveUsername(ctx context.Context) (string, error) {
	if s.username != "" {
		return s.username, nil
	}

	identity, err := s.Identity(ctx)
	if err != nil {
		return "", err
	}

	s.username = identity.Username
	return s.username, nil
}

// doRequest performs a signed GET against the API, honoring the rate
// limiter, and decodes the JSON body into result.
func (s *DiscogsService) doRequest(ctx context.Context, endpoint string, result any) error {
	if s.client == nil {
		return fmt.Errorf("%w: no access token configured", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d from %s", shared.ErrAuthFailed, resp.StatusCode, endpoint)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", errStatusNotFound, endpoint)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: rate limited on %s", shared.ErrServiceUnavailable, endpoint)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d from %s", shared.ErrAPIRequest, resp.StatusCode, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", shared.ErrAPIRequest, endpoint, err)
	}

	return nil
}

// mapCollectionRelease converts a collection entry to the internal record,
// rejecting entries without a usable release id.
func mapCollectionRelease(entry collectionRelease) (models.Release, error) {
	info := entry.BasicInformation
	id := info.ID
	if id == 0 {
		id = entry.ID
	}
	if id == 0 {
		return models.Release{}, fmt.Errorf("%w: collection entry missing release id", shared.ErrAPIRequest)
	}

	release := models.Release{
		ID:     id,
		Artist: joinArtists(info.Artists),
		Title:  info.Title,
		Year:   info.Year,
		URL:    fmt.Sprintf(discogsReleaseURL, id),
	}

	if entry.DateAdded != "" {
		if added, err := time.Parse(time.RFC3339, entry.DateAdded); err == nil {
			release.DateAdded = added
		}
	}

	return release, nil
}

func joinArtists(artists []artistEntry) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}
