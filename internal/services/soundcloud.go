// SoundCloud API implementation of [Service]
//
// SoundCloud API response types based on https://developers.soundcloud.com/docs/api/explorer/open-api
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/soundctl/rewind/internal/models"
	"github.com/soundctl/rewind/internal/shared"
	"golang.org/x/oauth2"
)

const (
	soundcloudAuthURL  = "https://secure.soundcloud.com/authorize"
	soundcloudTokenURL = "https://secure.soundcloud.com/oauth/token"
	soundcloudBaseURL  = "https://api.soundcloud.com"

	// Pagination bounds guard against malformed or cyclic next_href cursors.
	// Collections larger than maxPages*pageSize are silently truncated.
	defaultMaxPages = 10
	defaultPageSize = 50
)

// SoundCloudUser represents a SoundCloud user profile.
type SoundCloudUser struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	FollowersCount  int64  `json:"followers_count"`
	FollowingsCount int64  `json:"followings_count"`
	CreatedAt       string `json:"created_at"`
}

// SoundCloudTrack represents a SoundCloud track.
type SoundCloudTrack struct {
	ID               int64          `json:"id"`
	Title            string         `json:"title"`
	User             SoundCloudUser `json:"user"`
	Duration         int64          `json:"duration"` // milliseconds
	PlaybackCount    int64          `json:"playback_count"`
	FavoritingsCount int64          `json:"favoritings_count"`
	RepostsCount     int64          `json:"reposts_count"`
	Genre            string         `json:"genre"`
	TagList          string         `json:"tag_list"`
	CreatedAt        string         `json:"created_at"`
}

// SoundCloudPlaylist represents a SoundCloud playlist (set).
type SoundCloudPlaylist struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	TrackCount int    `json:"track_count"`
	Genre      string `json:"genre"`
	CreatedAt  string `json:"created_at"`
}

// soundCloudPage is the linked-partitioning envelope for paginated endpoints.
// Collection items are decoded individually so one malformed record does not
// fail the page.
type soundCloudPage struct {
	Collection []json.RawMessage `json:"collection"`
	NextHref   *string           `json:"next_href"`
}

// SoundCloudService implements the [Service] interface for SoundCloud API interactions.
// Uses [TokenManager] for authentication with a single refresh-and-retry on 401.
type SoundCloudService struct {
	config      *oauth2.Config
	tokens      *TokenManager
	httpClient  *http.Client
	credentials map[string]string
	baseURL     string
	maxPages    int
	pageSize    int
}

// NewSoundCloudService creates a new SoundCloud service with the given OAuth2
// credentials and credential store. The store may be nil for in-memory tokens.
func NewSoundCloudService(credentials map[string]string, store CredentialStore) (*SoundCloudService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("missing client_id in credentials")
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("missing client_secret in credentials")
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8819/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:  soundcloudAuthURL,
			TokenURL: soundcloudTokenURL,
		},
	}

	return &SoundCloudService{
		config:      config,
		tokens:      NewTokenManager(config, store),
		httpClient:  http.DefaultClient,
		credentials: credentials,
		baseURL:     soundcloudBaseURL,
		maxPages:    defaultMaxPages,
		pageSize:    defaultPageSize,
	}, nil
}

// Configure overrides the pagination bounds. Zero values keep the defaults.
func (s *SoundCloudService) Configure(maxPages, pageSize int) {
	if maxPages > 0 {
		s.maxPages = maxPages
	}
	if pageSize > 0 {
		s.pageSize = pageSize
	}
}

// Tokens exposes the service's [TokenManager] for the background refresher.
func (s *SoundCloudService) Tokens() *TokenManager {
	return s.tokens
}

func (s *SoundCloudService) Name() string {
	return "SoundCloud"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SoundCloudService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the OAuth2 configuration.
func (s *SoundCloudService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// OAuthenticate stores a previously obtained token as the current credential.
func (s *SoundCloudService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	return s.tokens.SaveToken(token)
}

// Authenticate performs OAuth2 authentication with SoundCloud. Expects either an "access_token" or "auth_code" in credentials.
func (s *SoundCloudService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		return s.tokens.Save(accessToken, credentials["refresh_token"], 0)
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("failed to exchange auth code: %w", err)
		}
		return s.tokens.SaveToken(token)
	}

	return fmt.Errorf("missing access_token or auth_code in credentials")
}

// get performs an authenticated GET against the SoundCloud API.
//
// On HTTP 401 the credential is refreshed exactly once and the same request
// retried with the new token. Any other failure surfaces as
// [shared.ErrAPIRequest] without a retry.
func (s *SoundCloudService) get(ctx context.Context, pathOrURL string, result any) error {
	token, err := s.tokens.AccessToken()
	if err != nil {
		return err
	}

	status, err := s.doGet(ctx, pathOrURL, token, result)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		if err := s.tokens.RefreshIfStale(ctx, token); err != nil {
			return err
		}

		token, err = s.tokens.AccessToken()
		if err != nil {
			return err
		}

		status, err = s.doGet(ctx, pathOrURL, token, result)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			return fmt.Errorf("%w: still unauthorized after refresh", shared.ErrTokenExpired)
		}
	}

	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: soundcloud API status %d", shared.ErrAPIRequest, status)
	}

	return nil
}

// doGet executes one request attempt and decodes the body on 2xx.
func (s *SoundCloudService) doGet(ctx context.Context, pathOrURL, token string, result any) (int, error) {
	apiURL := pathOrURL
	if !strings.HasPrefix(pathOrURL, "http") {
		apiURL = s.baseURL + pathOrURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return resp.StatusCode, nil
}

// fetchCollection walks a linked-partitioning endpoint, concatenating pages
// until next_href is absent or the page bound is reached.
//
// Malformed collection items are dropped rather than failing the page. When a
// later page fails outright, the pages fetched so far are returned instead of
// discarding the whole traversal.
func fetchCollection[T any](ctx context.Context, s *SoundCloudService, path string) ([]T, error) {
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	current := fmt.Sprintf("%s%slinked_partitioning=1&limit=%d", path, separator, s.pageSize)

	var items []T
	for page := 0; page < s.maxPages; page++ {
		var envelope soundCloudPage
		if err := s.get(ctx, current, &envelope); err != nil {
			if page == 0 {
				return nil, err
			}
			return items, nil
		}

		for _, raw := range envelope.Collection {
			var item T
			if err := json.Unmarshal(raw, &item); err != nil {
				continue
			}
			items = append(items, item)
		}

		if envelope.NextHref == nil || *envelope.NextHref == "" {
			break
		}
		current = *envelope.NextHref
	}

	return items, nil
}

// Profile retrieves the current authenticated user's profile.
func (s *SoundCloudService) Profile(ctx context.Context) (*models.User, error) {
	var user SoundCloudUser
	if err := s.get(ctx, "/me", &user); err != nil {
		return nil, err
	}
	mapped := mapUser(user)
	return &mapped, nil
}

// Tracks retrieves the authenticated user's uploaded tracks.
func (s *SoundCloudService) Tracks(ctx context.Context) ([]models.Track, error) {
	return s.trackCollection(ctx, "/me/tracks")
}

// Likes retrieves the tracks the authenticated user has liked.
func (s *SoundCloudService) Likes(ctx context.Context) ([]models.Track, error) {
	return s.trackCollection(ctx, "/me/likes/tracks")
}

// UserTracks retrieves another user's tracks.
// May return an empty slice under privacy restrictions.
func (s *SoundCloudService) UserTracks(ctx context.Context, userID string) ([]models.Track, error) {
	return s.trackCollection(ctx, fmt.Sprintf("/users/%s/tracks", userID))
}

func (s *SoundCloudService) trackCollection(ctx context.Context, path string) ([]models.Track, error) {
	raw, err := fetchCollection[SoundCloudTrack](ctx, s, path)
	if err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(raw))
	for _, tr := range raw {
		tracks = append(tracks, mapTrack(tr))
	}
	return tracks, nil
}

// Playlists retrieves the authenticated user's playlists.
func (s *SoundCloudService) Playlists(ctx context.Context) ([]models.Playlist, error) {
	raw, err := fetchCollection[SoundCloudPlaylist](ctx, s, "/me/playlists")
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(raw))
	for _, pl := range raw {
		playlists = append(playlists, models.Playlist{
			ID:         strconv.FormatInt(pl.ID, 10),
			Title:      pl.Title,
			TrackCount: pl.TrackCount,
			Genre:      pl.Genre,
			CreatedAt:  parseTimestamp(pl.CreatedAt),
		})
	}
	return playlists, nil
}

// Followings retrieves the users the authenticated user follows.
func (s *SoundCloudService) Followings(ctx context.Context) ([]models.User, error) {
	raw, err := fetchCollection[SoundCloudUser](ctx, s, "/me/followings")
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(raw))
	for _, u := range raw {
		users = append(users, mapUser(u))
	}
	return users, nil
}

func mapUser(u SoundCloudUser) models.User {
	return models.User{
		ID:             strconv.FormatInt(u.ID, 10),
		Username:       u.Username,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingsCount,
		CreatedAt:      parseTimestamp(u.CreatedAt),
	}
}

func mapTrack(tr SoundCloudTrack) models.Track {
	return models.Track{
		ID:            strconv.FormatInt(tr.ID, 10),
		Title:         tr.Title,
		Artist:        tr.User.Username,
		DurationMS:    tr.Duration,
		PlaybackCount: tr.PlaybackCount,
		LikesCount:    tr.FavoritingsCount,
		RepostsCount:  tr.RepostsCount,
		Genres:        parseGenres(tr.Genre, tr.TagList),
		CreatedAt:     parseTimestamp(tr.CreatedAt),
	}
}

// parseGenres merges the genre field with the space-separated tag list.
// Quoted multi-word tags are kept whole; duplicates are dropped.
func parseGenres(genre, tagList string) []string {
	var genres []string
	seen := make(map[string]struct{})

	add := func(g string) {
		g = strings.TrimSpace(strings.Trim(g, `"`))
		if g == "" {
			return
		}
		key := strings.ToLower(g)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		genres = append(genres, g)
	}

	add(genre)

	inQuotes := false
	start := 0
	for i := 0; i <= len(tagList); i++ {
		if i == len(tagList) || (tagList[i] == ' ' && !inQuotes) {
			if i > start {
				add(tagList[start:i])
			}
			start = i + 1
		} else if tagList[i] == '"' {
			inQuotes = !inQuotes
		}
	}

	return genres
}

// parseTimestamp handles both the legacy "2006/01/02 15:04:05 +0000" format
// and RFC 3339. Unparseable values yield the zero time.
func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006/01/02 15:04:05 -0700", time.RFC3339} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
