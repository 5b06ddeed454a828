package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/soundctl/rewind/internal/repositories"
	"github.com/soundctl/rewind/internal/server"
	"github.com/soundctl/rewind/internal/services"
	"github.com/soundctl/rewind/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin performs the OAuth2 authorization flow for SoundCloud.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// stores the exchanged tokens in both the credentials table and the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.service()
	if err != nil {
		return err
	}

	token, err := r.doOAuth(svc, "authorization")
	if err != nil {
		return err
	}

	if err := svc.OAuthenticate(ctx, token); err != nil {
		return fmt.Errorf("failed to store tokens: %w", err)
	}

	if err := r.saveTokenToConfig(cmd.String("config"), token); err != nil {
		r.logger.Warnf("failed to save tokens to config: %v", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("You can now use: rewind report\n")

	return nil
}

// AuthStatus shows the stored credential state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.service()
	if err != nil {
		return err
	}

	tokens := svc.Tokens()
	if _, err := tokens.AccessToken(); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			r.writePlain("✗ Not authenticated. Run 'rewind auth login'\n")
			return nil
		}
		return err
	}

	r.writePlain("✓ Authenticated\n")
	if tokens.NeedsRefresh() {
		r.writePlain("Token: stale (will refresh on next use)\n")
	} else {
		r.writePlain("Token: fresh\n")
	}
	if _, err := tokens.RefreshToken(); err != nil {
		r.writePlain("Refresh token: missing\n")
	} else {
		r.writePlain("Refresh token: present\n")
	}

	profile, err := svc.Profile(ctx)
	if err != nil {
		r.writePlain("Profile check failed: %v\n", err)
		return nil
	}
	r.writePlain("Logged in as: %s (%s)\n", profile.Username, profile.ID)

	return nil
}

// AuthRefresh forces a token refresh against the upstream token endpoint.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.service()
	if err != nil {
		return err
	}

	if err := svc.Tokens().Refresh(ctx); err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	r.writePlain("✓ Token refreshed\n")
	return nil
}

// AuthLogout clears the stored credential pair.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	if err := repositories.NewCredentialRepository(db).Clear(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	r.writePlain("✓ Credentials cleared\n")
	return nil
}

// saveTokenToConfig mirrors the token pair into the config file so a fresh
// database can be re-seeded from it.
func (r *Runner) saveTokenToConfig(configPath string, token *oauth2.Token) error {
	if configPath == "" {
		configPath = r.configPath
	}

	if err := r.config.Credentials.SoundCloud.Update(token); err != nil {
		return fmt.Errorf("failed to update soundcloud configuration: %w", err)
	}

	if configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(oauthSrv services.OAuthService, prefix string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthSrv.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(oauthSrv.GetOAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server for %s at %v", prefix, serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for SoundCloud %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}

// handleAuthError checks whether an error means the credential is beyond
// refreshing and triggers a full reauthorization if so.
func (r *Runner) handleAuthError(ctx context.Context, err error, cmd *cli.Command) (bool, error) {
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, shared.ErrTokenExpired) && !errors.Is(err, shared.ErrNoRefreshToken) && !errors.Is(err, shared.ErrRefreshFailed) {
		return false, err
	}

	r.writePlainln("⚠ Stored credential is no longer usable. Starting reauthorization...")

	svc, svcErr := r.service()
	if svcErr != nil {
		return true, svcErr
	}

	token, authErr := r.doOAuth(svc, "reauthorization")
	if authErr != nil {
		return true, fmt.Errorf("reauthorization failed: %w", authErr)
	}

	if authErr := svc.OAuthenticate(ctx, token); authErr != nil {
		return true, fmt.Errorf("failed to store new tokens: %w", authErr)
	}

	if saveErr := r.saveTokenToConfig(cmd.String("config"), token); saveErr != nil {
		r.logger.Warnf("failed to save tokens to config: %v", saveErr)
	}

	r.writePlainln("✓ Successfully reauthenticated. Retrying operation...")

	return true, nil
}
