package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/soundctl/rewind/internal/models"
	"github.com/soundctl/rewind/internal/shared"
	"golang.org/x/oauth2"
)

// refreshMargin is the safety window before expiry within which a credential
// counts as stale.
const refreshMargin = 5 * time.Minute

// CredentialStore abstracts durable persistence of the single stored credential.
// Implemented by repositories.CredentialRepository.
type CredentialStore interface {
	Get() (*models.Credential, error)
	Save(*models.Credential) error
}

// TokenManager owns the process-wide credential pair and its refresh lifecycle.
//
// Both the proactive background refresher and the reactive 401-triggered
// refresh go through the same mutex, so concurrent refresh attempts serialize
// and the stored credential is always replaced wholesale.
type TokenManager struct {
	mu         sync.Mutex
	store      CredentialStore
	config     *oauth2.Config
	current    *models.Credential
	loaded     bool
	httpClient *http.Client
	logger     *log.Logger
}

// NewTokenManager creates a TokenManager backed by the given store.
// The store may be nil, in which case credentials live only in memory.
func NewTokenManager(config *oauth2.Config, store CredentialStore) *TokenManager {
	return &TokenManager{
		store:      store,
		config:     config,
		httpClient: http.DefaultClient,
		logger:     shared.NewLogger(nil),
	}
}

// SetHTTPClient overrides the HTTP client used for token exchanges.
func (m *TokenManager) SetHTTPClient(client *http.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if client != nil {
		m.httpClient = client
	}
}

// load populates the cached credential from the store. Caller holds the lock.
func (m *TokenManager) load() {
	if m.loaded || m.store == nil {
		m.loaded = true
		return
	}
	if cred, err := m.store.Get(); err == nil {
		m.current = cred
	}
	m.loaded = true
}

// AccessToken returns the current access token.
// Returns [shared.ErrNotAuthenticated] when no credential exists.
func (m *TokenManager) AccessToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.load()
	if m.current == nil || m.current.AccessToken == "" {
		return "", shared.ErrNotAuthenticated
	}
	return m.current.AccessToken, nil
}

// RefreshToken returns the current refresh token.
// Returns [shared.ErrNoRefreshToken] when none is stored.
func (m *TokenManager) RefreshToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.load()
	if m.current == nil || m.current.RefreshToken == "" {
		return "", shared.ErrNoRefreshToken
	}
	return m.current.RefreshToken, nil
}

// NeedsRefresh reports whether the stored expiry is within the safety margin
// of now, or unknown. Returns false when no credential exists at all, since
// there is nothing to refresh.
func (m *TokenManager) NeedsRefresh() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.load()
	if m.current == nil {
		return false
	}
	return m.current.Expired(refreshMargin)
}

// Save atomically replaces the stored credential, computing the absolute
// expiry from the relative expiresIn (seconds) when provided.
func (m *TokenManager) Save(access, refresh string, expiresIn int64) error {
	cred := &models.Credential{
		AccessToken:  access,
		RefreshToken: refresh,
	}
	if expiresIn > 0 {
		cred.ExpiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)
	}
	return m.SaveCredential(cred)
}

// SaveToken stores an [oauth2.Token] as the current credential.
func (m *TokenManager) SaveToken(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidCredentials)
	}
	return m.SaveCredential(&models.Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	})
}

// SaveCredential replaces the current credential and persists it.
func (m *TokenManager) SaveCredential(cred *models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(cred)
}

func (m *TokenManager) saveLocked(cred *models.Credential) error {
	if cred == nil || cred.AccessToken == "" {
		return fmt.Errorf("%w: empty access token", shared.ErrInvalidCredentials)
	}

	// Refresh responses may omit a new refresh token; keep the old one.
	if cred.RefreshToken == "" && m.current != nil {
		cred.RefreshToken = m.current.RefreshToken
	}

	if m.store != nil {
		if err := m.store.Save(cred); err != nil {
			return err
		}
	}

	m.current = cred
	m.loaded = true
	return nil
}

// Refresh exchanges the stored refresh token with the upstream token endpoint
// and replaces the credential on success.
//
// Fails with [shared.ErrNoRefreshToken] when no refresh token exists, or
// [shared.ErrRefreshFailed] when the exchange errors.
func (m *TokenManager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.load()
	return m.refreshLocked(ctx)
}

// RefreshIfStale refreshes only when the given access token is still the
// current one. When another actor already refreshed, the stored credential
// has moved on and a second exchange would waste the refresh token.
func (m *TokenManager) RefreshIfStale(ctx context.Context, usedToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.load()
	if m.current != nil && m.current.AccessToken != usedToken {
		return nil
	}
	return m.refreshLocked(ctx)
}

// RefreshIfNeeded refreshes when the expiry is inside the safety margin.
// Used by the proactive background refresher.
func (m *TokenManager) RefreshIfNeeded(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.load()
	if m.current == nil || !m.current.Expired(refreshMargin) {
		return nil
	}
	return m.refreshLocked(ctx)
}

func (m *TokenManager) refreshLocked(ctx context.Context) error {
	if m.current == nil || m.current.RefreshToken == "" {
		return shared.ErrNoRefreshToken
	}
	if m.config == nil {
		return fmt.Errorf("%w: no OAuth configuration", shared.ErrRefreshFailed)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)

	source := m.config.TokenSource(ctx, &oauth2.Token{RefreshToken: m.current.RefreshToken})
	token, err := source.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	return m.saveLocked(&models.Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	})
}

// RunRefresher proactively refreshes the credential on the given interval
// until the context is canceled. Intended to run as a background goroutine
// alongside request handling.
func (m *TokenManager) RunRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !m.NeedsRefresh() {
				continue
			}
			if err := m.RefreshIfNeeded(ctx); err != nil {
				m.logger.Warnf("proactive token refresh failed: %v", err)
			} else {
				m.logger.Info("credential refreshed proactively")
			}
		}
	}
}
