// Package drive persists the export document to Google Drive, treating it
// as a blob store keyed by filename.
package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// ErrAuthenticationRequired is returned when no usable Google credential
// can be loaded. Run `stravasync auth google` to re-authorize.
var ErrAuthenticationRequired = errors.New("google authentication required")

// NewService builds an authenticated Drive client from the OAuth client
// secrets file and the cached user token. Refreshed tokens are written
// back to the token file so subsequent runs skip re-authorization.
func NewService(ctx context.Context, credentialsPath, tokenPath string) (*drive.Service, error) {
	cfg, err := readOAuthConfig(credentialsPath)
	if err != nil {
		return nil, err
	}

	tok, err := readToken(tokenPath)
	if err != nil {
		return nil, err
	}

	src := &savingTokenSource{
		path: tokenPath,
		src:  cfg.TokenSource(ctx, tok),
		last: tok,
	}

	svc, err := drive.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return svc, nil
}

// AuthCodeURL returns the user authorization URL and the parsed OAuth
// config for the paste-the-code bootstrap flow.
func AuthCodeURL(credentialsPath string) (string, *oauth2.Config, error) {
	cfg, err := readOAuthConfig(credentialsPath)
	if err != nil {
		return "", nil, err
	}
	url := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	return url, cfg, nil
}

// SaveExchangedToken trades a pasted authorization code for a token and
// writes it to the token file.
func SaveExchangedToken(ctx context.Context, cfg *oauth2.Config, code, tokenPath string) error {
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return writeToken(tokenPath, tok)
}

func readOAuthConfig(credentialsPath string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: credentials file %s not found", ErrAuthenticationRequired, credentialsPath)
		}
		return nil, fmt.Errorf("failed to read google credentials: %w", err)
	}

	cfg, err := google.ConfigFromJSON(data, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse google credentials: %w", err)
	}
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = "http://localhost"
	}
	return cfg, nil
}

func readToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: token file %s not found, run `stravasync auth google`", ErrAuthenticationRequired, path)
		}
		return nil, fmt.Errorf("failed to read google token file %s: %w", path, err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("%w: token file %s is not valid JSON: %v", ErrAuthenticationRequired, path, err)
	}
	return &tok, nil
}

func writeToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write google token file %s: %w", path, err)
	}
	return nil
}

// savingTokenSource persists each newly refreshed token so the next run
// starts from a valid credential.
type savingTokenSource struct {
	path string
	src  oauth2.TokenSource

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: token refresh failed: %v", ErrAuthenticationRequired, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || tok.AccessToken != s.last.AccessToken {
		if err := writeToken(s.path, tok); err != nil {
			return nil, err
		}
		s.last = tok
	}
	return tok, nil
}
