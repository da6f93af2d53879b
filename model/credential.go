package model

import "time"

// Credential is an immutable, point-in-time copy of a company's token pair.
// A snapshot is loaded once per logical operation; a refresh produces a new
// snapshot and the old one is discarded, never mutated in place.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"` // zero when the provider did not report expiry
}

// ExpiresWithin reports whether the access token expires before now+skew.
// An unknown expiry is treated as not expired; detection then falls back to
// the provider's 401 response.
func (c Credential) ExpiresWithin(now time.Time, skew time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt.Add(-skew))
}
