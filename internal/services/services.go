// package services defines interface Service for interacting with the upstream music API
package services

import (
	"context"

	"github.com/soundctl/rewind/internal/models"
	"golang.org/x/oauth2"
)

// Service defines the interface for the upstream music provider the report engine syncs from.
type Service interface {
	// Authenticate performs OAuth authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// Profile retrieves the authenticated user's profile snapshot.
	Profile(ctx context.Context) (*models.User, error)

	// Tracks retrieves the authenticated user's uploaded tracks.
	Tracks(ctx context.Context) ([]models.Track, error)

	// Likes retrieves the tracks the authenticated user has liked.
	Likes(ctx context.Context) ([]models.Track, error)

	// Playlists retrieves the authenticated user's playlists.
	Playlists(ctx context.Context) ([]models.Playlist, error)

	// Followings retrieves the users the authenticated user follows.
	Followings(ctx context.Context) ([]models.User, error)

	// UserTracks retrieves another user's tracks, which may be empty under privacy restrictions.
	UserTracks(ctx context.Context, userID string) ([]models.Track, error)

	// Name returns the name of the service (e.g., "SoundCloud")
	Name() string
}

// OAuthService extends Service for providers with a server-side OAuth2 authorization-code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the OAuth2 authorization URL for user login.
	GetAuthURL(state string) string

	// GetOAuthConfig returns the provider's OAuth2 configuration.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate authenticates using a previously obtained token.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error

	// Tokens returns the token manager backing the service.
	Tokens() *TokenManager
}
