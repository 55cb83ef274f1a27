package token

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/audit"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/credentials"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/config"
)

// memoryCredentialRepo is an in-memory credentials.CredentialRepository
type memoryCredentialRepo struct {
	creds       map[channel.Code]*credentials.AccessCredential
	invalidated []channel.Code
	saved       int
}

func newMemoryCredentialRepo() *memoryCredentialRepo {
	return &memoryCredentialRepo{creds: make(map[channel.Code]*credentials.AccessCredential)}
}

func (r *memoryCredentialRepo) Find(_ context.Context, code channel.Code) (*credentials.AccessCredential, error) {
	cred, ok := r.creds[code]
	if !ok {
		return nil, credentials.ErrCredentialNotFound
	}
	copied := *cred
	return &copied, nil
}

func (r *memoryCredentialRepo) Save(_ context.Context, cred *credentials.AccessCredential) error {
	copied := *cred
	r.creds[cred.Channel] = &copied
	r.saved++
	return nil
}

func (r *memoryCredentialRepo) Invalidate(_ context.Context, code channel.Code) error {
	r.invalidated = append(r.invalidated, code)
	delete(r.creds, code)
	return nil
}

// nopAuditLogger discards audit entries
type nopAuditLogger struct{}

func (nopAuditLogger) Log(_ context.Context, _ channel.Code, _ audit.Operation, _ audit.Status, _ string, _ map[string]any) {
}

func testStoreChannels(tokenURL string) config.ChannelsConfig {
	api := config.ChannelAPIConfig{
		APIBaseURL:     "http://api.example.test",
		TokenURL:       tokenURL,
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		TimeoutSeconds: 5,
	}
	return config.ChannelsConfig{
		EbayOne: api, EbayTwo: api, EbayThree: api, Walmart: api, Sears: api,
	}
}

func TestStore_ValidToken(t *testing.T) {
	t.Run("returns cached token while fresh", func(t *testing.T) {
		repo := newMemoryCredentialRepo()
		repo.creds[channel.CodeEbayOne] = &credentials.AccessCredential{
			Channel:      channel.CodeEbayOne,
			AccessToken:  "cached-token",
			RefreshToken: "refresh",
			ExpiresAt:    time.Now().Add(time.Hour),
		}
		store := NewStore(repo, testStoreChannels("http://unreachable.test"), nopAuditLogger{}, zap.NewNop())

		token, err := store.ValidToken(context.Background(), channel.CodeEbayOne)

		require.NoError(t, err)
		assert.Equal(t, "cached-token", token)
		assert.Zero(t, repo.saved)
	})

	t.Run("refreshes an expired token and persists the pair", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
			assert.Equal(t, "old-refresh", r.FormValue("refresh_token"))
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client-id", user)
			assert.Equal(t, "client-secret", pass)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token": "new-access", "refresh_token": "new-refresh", "expires_in": 7200}`))
		}))
		defer server.Close()

		repo := newMemoryCredentialRepo()
		repo.creds[channel.CodeWalmart] = &credentials.AccessCredential{
			Channel:      channel.CodeWalmart,
			AccessToken:  "stale",
			RefreshToken: "old-refresh",
			ExpiresAt:    time.Now().Add(-time.Minute),
		}
		store := NewStore(repo, testStoreChannels(server.URL), nopAuditLogger{}, zap.NewNop())

		token, err := store.ValidToken(context.Background(), channel.CodeWalmart)

		require.NoError(t, err)
		assert.Equal(t, "new-access", token)
		require.Equal(t, 1, repo.saved)
		saved := repo.creds[channel.CodeWalmart]
		assert.Equal(t, "new-refresh", saved.RefreshToken)
		assert.True(t, saved.ExpiresAt.After(time.Now().Add(time.Hour)))
	})

	t.Run("refreshes a token inside the expiry margin", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"access_token": "new-access", "expires_in": 7200}`))
		}))
		defer server.Close()

		repo := newMemoryCredentialRepo()
		repo.creds[channel.CodeSears] = &credentials.AccessCredential{
			Channel:      channel.CodeSears,
			AccessToken:  "nearly-expired",
			RefreshToken: "refresh",
			ExpiresAt:    time.Now().Add(time.Minute), // inside the 5 minute margin
		}
		store := NewStore(repo, testStoreChannels(server.URL), nopAuditLogger{}, zap.NewNop())

		token, err := store.ValidToken(context.Background(), channel.CodeSears)

		require.NoError(t, err)
		assert.Equal(t, "new-access", token)
	})

	t.Run("rejected refresh token invalidates the credential", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "invalid_grant", "error_description": "refresh token revoked"}`))
		}))
		defer server.Close()

		repo := newMemoryCredentialRepo()
		repo.creds[channel.CodeEbayTwo] = &credentials.AccessCredential{
			Channel:      channel.CodeEbayTwo,
			AccessToken:  "stale",
			RefreshToken: "revoked",
			ExpiresAt:    time.Now().Add(-time.Minute),
		}
		store := NewStore(repo, testStoreChannels(server.URL), nopAuditLogger{}, zap.NewNop())

		_, err := store.ValidToken(context.Background(), channel.CodeEbayTwo)

		assert.ErrorIs(t, err, credentials.ErrAuthenticationRequired)
		assert.Equal(t, []channel.Code{channel.CodeEbayTwo}, repo.invalidated)
	})

	t.Run("token endpoint outage is transient and keeps the credential", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		repo := newMemoryCredentialRepo()
		repo.creds[channel.CodeEbayOne] = &credentials.AccessCredential{
			Channel:      channel.CodeEbayOne,
			AccessToken:  "stale",
			RefreshToken: "refresh",
			ExpiresAt:    time.Now().Add(-time.Minute),
		}
		store := NewStore(repo, testStoreChannels(server.URL), nopAuditLogger{}, zap.NewNop())

		_, err := store.ValidToken(context.Background(), channel.CodeEbayOne)

		assert.ErrorIs(t, err, channel.ErrTransient)
		assert.Empty(t, repo.invalidated)
	})

	t.Run("missing credential needs authorization", func(t *testing.T) {
		store := NewStore(newMemoryCredentialRepo(), testStoreChannels("http://unused.test"), nopAuditLogger{}, zap.NewNop())

		_, err := store.ValidToken(context.Background(), channel.CodeWalmart)

		assert.ErrorIs(t, err, credentials.ErrAuthenticationRequired)
	})
}
