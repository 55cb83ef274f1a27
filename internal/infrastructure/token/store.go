package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/audit"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/credentials"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/config"
)

// refreshTimeout bounds one token endpoint round trip
const refreshTimeout = 15 * time.Second

// tokenResponse is the OAuth token endpoint success body
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// tokenError is the OAuth token endpoint error body
type tokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Store implements credentials.TokenSource over the credential repository.
// A cached access token is reused while fresh; otherwise the refresh token is
// exchanged at the channel's token endpoint and the replaced pair persisted.
// Refreshes are serialized per channel so concurrent passes do not race the
// token endpoint.
type Store struct {
	repo       credentials.CredentialRepository
	configs    map[channel.Code]config.ChannelAPIConfig
	auditLog   audit.Logger
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time

	mu    sync.Mutex
	locks map[channel.Code]*sync.Mutex
}

// NewStore creates a token store for the configured channels
func NewStore(repo credentials.CredentialRepository, channels config.ChannelsConfig, auditLog audit.Logger, logger *zap.Logger) *Store {
	return &Store{
		repo: repo,
		configs: map[channel.Code]config.ChannelAPIConfig{
			channel.CodeEbayOne:   channels.EbayOne,
			channel.CodeEbayTwo:   channels.EbayTwo,
			channel.CodeEbayThree: channels.EbayThree,
			channel.CodeWalmart:   channels.Walmart,
			channel.CodeSears:     channels.Sears,
		},
		auditLog:   auditLog,
		httpClient: &http.Client{Timeout: refreshTimeout},
		logger:     logger,
		now:        time.Now,
		locks:      make(map[channel.Code]*sync.Mutex),
	}
}

// ValidToken returns an access token fresh for at least the expiry margin,
// refreshing it first when needed.
func (s *Store) ValidToken(ctx context.Context, code channel.Code) (string, error) {
	lock := s.channelLock(code)
	lock.Lock()
	defer lock.Unlock()

	cred, err := s.repo.Find(ctx, code)
	if err != nil {
		if errors.Is(err, credentials.ErrCredentialNotFound) {
			s.auditLog.Log(ctx, code, audit.OperationTokenRetrieval, audit.StatusError,
				"no credential stored; channel needs authorization", nil)
			return "", fmt.Errorf("%w: no credential for %s", credentials.ErrAuthenticationRequired, code)
		}
		return "", fmt.Errorf("token: loading credential for %s: %w", code, err)
	}

	if cred.Fresh(s.now()) {
		return cred.AccessToken, nil
	}

	return s.refresh(ctx, code, cred)
}

// refresh exchanges the refresh token and persists the replacement pair
func (s *Store) refresh(ctx context.Context, code channel.Code, cred *credentials.AccessCredential) (string, error) {
	cfg, ok := s.configs[code]
	if !ok || cfg.TokenURL == "" {
		return "", fmt.Errorf("%w: no token endpoint configured for %s", credentials.ErrAuthenticationRequired, code)
	}

	resp, err := s.exchangeRefreshToken(ctx, cfg, cred.RefreshToken)
	if err != nil {
		if errors.Is(err, credentials.ErrAuthenticationRequired) {
			// Rejected refresh token: clear the credential so every later pass
			// fails fast until a human re-authorizes the channel.
			if invErr := s.repo.Invalidate(ctx, code); invErr != nil {
				s.logger.Error("failed to invalidate rejected credential",
					zap.String("channel", code.String()), zap.Error(invErr))
			}
			s.auditLog.Log(ctx, code, audit.OperationTokenRetrieval, audit.StatusError,
				"refresh token rejected; credential invalidated", map[string]any{"error": err.Error()})
			return "", err
		}
		s.auditLog.Log(ctx, code, audit.OperationTokenRetrieval, audit.StatusError,
			"token refresh failed", map[string]any{"error": err.Error()})
		return "", err
	}

	now := s.now()
	cred.AccessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		cred.RefreshToken = resp.RefreshToken
	}
	cred.ExpiresAt = now.Add(time.Duration(resp.ExpiresIn) * time.Second)
	cred.UpdatedAt = now

	if err := s.repo.Save(ctx, cred); err != nil {
		// The token itself is valid; losing the persisted copy only costs an
		// extra refresh on the next pass.
		s.logger.Warn("failed to persist refreshed credential",
			zap.String("channel", code.String()), zap.Error(err))
	}

	s.auditLog.Log(ctx, code, audit.OperationTokenRetrieval, audit.StatusSuccess,
		"access token refreshed", map[string]any{"expires_at": cred.ExpiresAt})
	return cred.AccessToken, nil
}

// exchangeRefreshToken performs the OAuth refresh_token grant
func (s *Store) exchangeRefreshToken(ctx context.Context, cfg config.ChannelAPIConfig, refreshToken string) (*tokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("token: failed to create refresh request: %w", err)
	}
	req.SetBasicAuth(cfg.ClientID, cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: token endpoint: %v", channel.ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading token response: %v", channel.ErrTransient, err)
	}

	switch {
	case resp.StatusCode < 300:
		var tr tokenResponse
		if err := json.Unmarshal(body, &tr); err != nil {
			return nil, fmt.Errorf("token: parsing token response: %w", err)
		}
		if tr.AccessToken == "" {
			return nil, fmt.Errorf("token: token endpoint returned no access token")
		}
		return &tr, nil
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: token endpoint HTTP %d", channel.ErrTransient, resp.StatusCode)
	default:
		// Any 4xx from the token endpoint means the grant is no longer valid
		var te tokenError
		_ = json.Unmarshal(body, &te)
		if te.Error == "" {
			te.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", credentials.ErrAuthenticationRequired, te.Error)
	}
}

// channelLock returns the refresh mutex for one channel
func (s *Store) channelLock(code channel.Code) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[code]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[code] = lock
	}
	return lock
}

// Ensure Store implements credentials.TokenSource
var _ credentials.TokenSource = (*Store)(nil)
