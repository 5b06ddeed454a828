package models

import "time"

// Credential is the single stored access/refresh token pair and its expiry.
// Exactly one live instance exists per deployment; it is replaced wholesale
// on refresh or exchange, never partially mutated.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // zero when the upstream did not report an expiry
}

// Expired reports whether the credential's expiry is within the given margin
// of now. An unknown expiry counts as expired so callers refresh eagerly.
func (c Credential) Expired(margin time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return time.Until(c.ExpiresAt) < margin
}
