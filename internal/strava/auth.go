package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sstent/stravasync/internal/config"
)

// ErrAuthenticationRequired is returned when no usable Strava credential
// can be obtained: the token file is missing, or the cached token is
// expired and cannot be refreshed. Run `stravasync auth strava` to
// re-authorize.
var ErrAuthenticationRequired = errors.New("strava authentication required")

const (
	defaultTokenURL     = "https://www.strava.com/oauth/token"
	defaultAuthorizeURL = "https://www.strava.com/oauth/authorize"

	// redirectURI must match the redirect configured in the Strava API
	// application settings; http://localhost is the usual choice for a
	// paste-the-code CLI flow.
	redirectURI = "http://localhost"
)

// TokenProvider supplies a valid Strava bearer token, refreshing the
// cached one on expiry. A successful refresh is written back to the token
// file so subsequent runs skip re-authorization.
type TokenProvider struct {
	path         string
	clientID     string
	clientSecret string
	tokenURL     string
	authorizeURL string
	httpClient   *http.Client
	logger       *slog.Logger
	now          func() time.Time

	cached *token
}

// NewTokenProvider creates a token provider backed by the token file named
// in cfg.
func NewTokenProvider(cfg *config.Config, logger *slog.Logger) *TokenProvider {
	return &TokenProvider{
		path:         cfg.StravaTokenPath,
		clientID:     cfg.StravaClientID,
		clientSecret: cfg.StravaClientSecret,
		tokenURL:     defaultTokenURL,
		authorizeURL: defaultAuthorizeURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
		now:          time.Now,
	}
}

// AccessToken returns a non-expired bearer token. If the cached token is
// expired and a refresh token is present it attempts exactly one refresh;
// on refresh failure the cached token is discarded and
// ErrAuthenticationRequired is returned.
func (p *TokenProvider) AccessToken(ctx context.Context) (string, error) {
	if p.cached == nil {
		tok, err := p.readTokenFile()
		if err != nil {
			return "", err
		}
		p.cached = tok
	}

	if !p.cached.expired(p.now()) {
		return p.cached.AccessToken, nil
	}

	if p.cached.RefreshToken == "" {
		p.cached = nil
		return "", fmt.Errorf("%w: token expired and no refresh token available", ErrAuthenticationRequired)
	}

	p.logger.Info("strava token expired, refreshing")
	tok, err := p.requestToken(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {p.cached.RefreshToken},
	})
	if err != nil {
		p.cached = nil
		return "", fmt.Errorf("%w: refresh failed: %v", ErrAuthenticationRequired, err)
	}

	if err := p.writeTokenFile(tok); err != nil {
		return "", fmt.Errorf("failed to persist refreshed token: %w", err)
	}
	p.cached = tok
	p.logger.Info("strava token refreshed and saved", "path", p.path)

	return tok.AccessToken, nil
}

// AuthorizeURL returns the URL the user has to open to grant the
// application read access to their activities.
func (p *TokenProvider) AuthorizeURL() string {
	q := url.Values{
		"client_id":       {p.clientID},
		"response_type":   {"code"},
		"redirect_uri":    {redirectURI},
		"approval_prompt": {"force"},
		"scope":           {"read,activity:read_all"},
	}
	return p.authorizeURL + "?" + q.Encode()
}

// ExchangeCode trades a pasted authorization code for a token and saves it
// to the token file.
func (p *TokenProvider) ExchangeCode(ctx context.Context, code string) error {
	tok, err := p.requestToken(ctx, url.Values{
		"grant_type": {"authorization_code"},
		"code":       {code},
	})
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if err := p.writeTokenFile(tok); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	p.cached = tok
	return nil
}

func (p *TokenProvider) requestToken(ctx context.Context, form url.Values) (*token, error) {
	if p.clientID == "" || p.clientSecret == "" {
		return nil, errors.New("STRAVA_CLIENT_ID and STRAVA_CLIENT_SECRET are not set")
	}
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tok token
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, errors.New("token endpoint returned no access token")
	}
	return &tok, nil
}

func (p *TokenProvider) readTokenFile() (*token, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: token file %s not found, run `stravasync auth strava`", ErrAuthenticationRequired, p.path)
		}
		return nil, fmt.Errorf("failed to read token file %s: %w", p.path, err)
	}

	var tok token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("%w: token file %s is not valid JSON: %v", ErrAuthenticationRequired, p.path, err)
	}
	return &tok, nil
}

func (p *TokenProvider) writeTokenFile(tok *token) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(p.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file %s: %w", p.path, err)
	}
	return nil
}
