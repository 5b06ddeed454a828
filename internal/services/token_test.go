package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/soundctl/rewind/internal/models"
	"github.com/soundctl/rewind/internal/shared"
	"golang.org/x/oauth2"
)

// memoryStore is an in-memory CredentialStore for tests.
type memoryStore struct {
	mu    sync.Mutex
	cred  *models.Credential
	saves int
}

func (s *memoryStore) Get() (*models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return nil, shared.ErrNotAuthenticated
	}
	copied := *s.cred
	return &copied, nil
}

func (s *memoryStore) Save(cred *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *cred
	s.cred = &copied
	s.saves++
	return nil
}

func testOAuthConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
}

func TestTokenManager(t *testing.T) {
	ctx := context.Background()

	t.Run("NoCredential", func(t *testing.T) {
		m := NewTokenManager(testOAuthConfig(""), nil)

		if _, err := m.AccessToken(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if _, err := m.RefreshToken(); !errors.Is(err, shared.ErrNoRefreshToken) {
			t.Errorf("expected ErrNoRefreshToken, got %v", err)
		}
		if m.NeedsRefresh() {
			t.Error("expected NeedsRefresh to be false with no credential")
		}
	})

	t.Run("SaveComputesExpiry", func(t *testing.T) {
		m := NewTokenManager(testOAuthConfig(""), nil)

		before := time.Now().Add(3600 * time.Second)
		if err := m.Save("token", "refresh", 3600); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		after := time.Now().Add(3600 * time.Second)

		access, err := m.AccessToken()
		if err != nil {
			t.Fatalf("AccessToken failed: %v", err)
		}
		if access != "token" {
			t.Errorf("expected token, got %s", access)
		}

		m.mu.Lock()
		expiry := m.current.ExpiresAt
		m.mu.Unlock()
		if expiry.Before(before) || expiry.After(after) {
			t.Errorf("expiry %v outside expected window [%v, %v]", expiry, before, after)
		}
	})

	t.Run("NeedsRefreshMargin", func(t *testing.T) {
		tests := []struct {
			name   string
			expiry time.Time
			want   bool
		}{
			{"ExpiresSoon", time.Now().Add(2 * time.Minute), true},
			{"ExpiresLater", time.Now().Add(time.Hour), false},
			{"AlreadyExpired", time.Now().Add(-time.Minute), true},
			{"UnknownExpiry", time.Time{}, true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				m := NewTokenManager(testOAuthConfig(""), nil)
				if err := m.SaveCredential(&models.Credential{
					AccessToken: "token",
					ExpiresAt:   tt.expiry,
				}); err != nil {
					t.Fatalf("SaveCredential failed: %v", err)
				}
				if got := m.NeedsRefresh(); got != tt.want {
					t.Errorf("NeedsRefresh() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("KeepsOldRefreshToken", func(t *testing.T) {
		m := NewTokenManager(testOAuthConfig(""), nil)

		if err := m.Save("first", "original-refresh", 3600); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := m.Save("second", "", 3600); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		refresh, err := m.RefreshToken()
		if err != nil {
			t.Fatalf("RefreshToken failed: %v", err)
		}
		if refresh != "original-refresh" {
			t.Errorf("expected original refresh token to survive, got %s", refresh)
		}
	})

	t.Run("LoadsFromStore", func(t *testing.T) {
		store := &memoryStore{cred: &models.Credential{
			AccessToken:  "stored-token",
			RefreshToken: "stored-refresh",
			ExpiresAt:    time.Now().Add(time.Hour),
		}}
		m := NewTokenManager(testOAuthConfig(""), store)

		access, err := m.AccessToken()
		if err != nil {
			t.Fatalf("AccessToken failed: %v", err)
		}
		if access != "stored-token" {
			t.Errorf("expected stored-token, got %s", access)
		}
	})

	t.Run("RefreshPersistsToStore", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token": "refreshed", "token_type": "bearer", "refresh_token": "rotated", "expires_in": 3600}`)
		}))
		defer server.Close()

		store := &memoryStore{}
		m := NewTokenManager(testOAuthConfig(server.URL), store)
		m.SetHTTPClient(server.Client())
		if err := m.Save("old", "old-refresh", 1); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if err := m.Refresh(ctx); err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}

		if store.cred == nil || store.cred.AccessToken != "refreshed" {
			t.Errorf("expected refreshed credential in store, got %+v", store.cred)
		}
		if store.cred.RefreshToken != "rotated" {
			t.Errorf("expected rotated refresh token, got %s", store.cred.RefreshToken)
		}
	})

	t.Run("RefreshIfStaleSkipsRotatedToken", func(t *testing.T) {
		refreshes := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			refreshes++
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token": "refreshed", "token_type": "bearer", "expires_in": 3600}`)
		}))
		defer server.Close()

		m := NewTokenManager(testOAuthConfig(server.URL), nil)
		m.SetHTTPClient(server.Client())
		if err := m.Save("current-token", "refresh", 3600); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		// Another actor rotated the credential already; stale callers skip.
		if err := m.RefreshIfStale(ctx, "previous-token"); err != nil {
			t.Fatalf("RefreshIfStale failed: %v", err)
		}
		if refreshes != 0 {
			t.Errorf("expected no refresh for a rotated token, got %d", refreshes)
		}

		if err := m.RefreshIfStale(ctx, "current-token"); err != nil {
			t.Fatalf("RefreshIfStale failed: %v", err)
		}
		if refreshes != 1 {
			t.Errorf("expected one refresh for the current token, got %d", refreshes)
		}
	})

	t.Run("RefreshWithoutRefreshToken", func(t *testing.T) {
		m := NewTokenManager(testOAuthConfig(""), nil)
		if err := m.Save("token", "", 3600); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if err := m.Refresh(ctx); !errors.Is(err, shared.ErrNoRefreshToken) {
			t.Errorf("expected ErrNoRefreshToken, got %v", err)
		}
	})

	t.Run("RefreshEndpointFailure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid_grant", http.StatusBadRequest)
		}))
		defer server.Close()

		m := NewTokenManager(testOAuthConfig(server.URL), nil)
		m.SetHTTPClient(server.Client())
		if err := m.Save("token", "refresh", 3600); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if err := m.Refresh(ctx); !errors.Is(err, shared.ErrRefreshFailed) {
			t.Errorf("expected ErrRefreshFailed, got %v", err)
		}
	})

	t.Run("RejectsEmptyToken", func(t *testing.T) {
		m := NewTokenManager(testOAuthConfig(""), nil)

		if err := m.Save("", "refresh", 3600); !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
		if err := m.SaveToken(nil); !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}
