package credentials

import (
	"context"
	"errors"
	"time"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
)

var (
	// ErrAuthenticationRequired indicates the stored refresh token was rejected
	// as invalid or revoked; the credential has been invalidated and a human
	// must re-run the authorization handshake. Callers must not retry.
	ErrAuthenticationRequired = errors.New("credentials: authentication required")

	// ErrCredentialNotFound indicates no credential is stored for the channel
	ErrCredentialNotFound = errors.New("credentials: not found")
)

// ExpiryMargin is how close to expiry a cached access token may be before the
// token store refreshes it instead of returning it.
const ExpiryMargin = 5 * time.Minute

// AccessCredential holds the OAuth tokens for one channel. One row per
// channel; created by the out-of-scope authorization handshake, read and
// conditionally replaced by the token store.
type AccessCredential struct {
	// Channel is the channel this credential belongs to
	Channel channel.Code
	// AccessToken is the current bearer token
	AccessToken string
	// RefreshToken is the long-lived refresh token
	RefreshToken string
	// ExpiresAt is when the access token expires
	ExpiresAt time.Time
	// UpdatedAt is when the tokens were last replaced
	UpdatedAt time.Time
}

// Fresh returns true if the access token is still usable, leaving the expiry
// margin as a safety buffer for in-flight requests.
func (c *AccessCredential) Fresh(now time.Time) bool {
	return c.AccessToken != "" && c.ExpiresAt.After(now.Add(ExpiryMargin))
}

// CredentialRepository is the port for the per-channel credential store.
type CredentialRepository interface {
	// Find returns the stored credential, or ErrCredentialNotFound
	Find(ctx context.Context, code channel.Code) (*AccessCredential, error)

	// Save persists replaced tokens after a successful refresh. Last writer
	// wins: concurrent refreshes both produce valid tokens for the channel.
	Save(ctx context.Context, cred *AccessCredential) error

	// Invalidate clears the credential so the next pass fails fast with
	// ErrAuthenticationRequired until a human re-authorizes the channel.
	Invalidate(ctx context.Context, code channel.Code) error
}

// TokenSource hands out valid access tokens, refreshing behind the scenes.
// This is the only credential surface the orchestrator sees.
type TokenSource interface {
	// ValidToken returns a token safe to use for at least ExpiryMargin.
	// Returns ErrAuthenticationRequired when the refresh token is rejected;
	// that error must propagate without retries.
	ValidToken(ctx context.Context, code channel.Code) (string, error)
}
