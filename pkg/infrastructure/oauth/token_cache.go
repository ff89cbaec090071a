// Package oauth implements the process-wide Strava credential cache and the
// http.RoundTripper that authenticates outbound API calls with it.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultTokenURL is the Strava OAuth token endpoint.
const DefaultTokenURL = "https://www.strava.com/oauth/token"

// expiryMargin is the lead time before expiry at which a refresh is
// triggered pre-emptively.
const expiryMargin = 5 * time.Minute

// refreshTimeout bounds the token refresh call.
const refreshTimeout = 15 * time.Second

// Token is the cached Strava credential.
type Token struct {
	AccessToken string
	Expiry      time.Time
}

// RefreshConfig holds the three refresh prerequisites plus the token
// endpoint (defaulted when empty).
type RefreshConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string
}

func (c RefreshConfig) complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// TokenCache holds the current access token and refreshes it near expiry.
// It is safe for concurrent use by multiple request handlers.
//
// Failure policy is fail-soft throughout: a failed or impossible refresh
// leaves the previous token in place (even stale) and returns whatever is
// cached, so the subsequent authenticated call fails visibly instead of the
// webhook handler erroring here.
type TokenCache struct {
	mu      sync.Mutex
	cfg     RefreshConfig
	current Token
	client  *http.Client
	logger  *slog.Logger
	now     func() time.Time
}

// NewTokenCache creates a cache seeded with the configured access token.
// The seed carries no expiry, so the first use attempts a refresh and falls
// back to the seed if refreshing is not possible.
func NewTokenCache(cfg RefreshConfig, seedToken string, logger *slog.Logger) *TokenCache {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	return &TokenCache{
		cfg:     cfg,
		current: Token{AccessToken: seedToken},
		client:  &http.Client{Timeout: refreshTimeout},
		logger:  logger.With("component", "token-cache"),
		now:     time.Now,
	}
}

// Token returns a valid access token when one is available. The boolean is
// false only when nothing is cached at all. No network call is made while
// the cached token is more than the safety margin from expiry.
func (c *TokenCache) Token(ctx context.Context) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current.AccessToken != "" && !c.current.Expiry.IsZero() &&
		c.current.Expiry.After(c.now().Add(expiryMargin)) {
		return c.current.AccessToken, true
	}

	if !c.cfg.complete() {
		c.logger.Warn("Missing STRAVA_CLIENT_ID/SECRET/REFRESH_TOKEN, cannot refresh token")
		return c.current.AccessToken, c.current.AccessToken != ""
	}

	if err := c.refresh(ctx); err != nil {
		c.logger.Error("Token refresh failed, keeping previous token", "error", err)
	}

	return c.current.AccessToken, c.current.AccessToken != ""
}

// refresh performs the refresh_token grant and replaces the cached
// credential on success. Caller must hold c.mu.
func (c *TokenCache) refresh(ctx context.Context) error {
	data := url.Values{}
	data.Set("client_id", c.cfg.ClientID)
	data.Set("client_secret", c.cfg.ClientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", c.cfg.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RefreshError{StatusCode: resp.StatusCode}
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresAt   int64  `json:"expires_at"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	expiry := c.now().Add(time.Duration(result.ExpiresIn) * time.Second)
	if result.ExpiresAt != 0 {
		expiry = time.Unix(result.ExpiresAt, 0)
	}

	c.current = Token{AccessToken: result.AccessToken, Expiry: expiry}
	c.logger.Info("Strava token refreshed", "expires_at", expiry.UTC().Format(time.RFC3339))
	return nil
}

// RefreshError reports a non-success status from the token endpoint.
type RefreshError struct {
	StatusCode int
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed with status %d", e.StatusCode)
}
