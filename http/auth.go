package http

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/archerdnd/grimoire"
)

// Token is a saved login credential.
type Token struct {
	Access string `json:"token"`
	UserID string `json:"id"`
}

// TokenFile persists the login token under the cache directory.
type TokenFile struct {
	path string
}

// NewTokenFile creates a TokenFile stored inside cacheDir.
func NewTokenFile(cacheDir string) *TokenFile {
	return &TokenFile{path: filepath.Join(cacheDir, "token.json")}
}

// Load reads the saved token. Returns ENOTFOUND when no token is saved.
func (f *TokenFile) Load() (*Token, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, grimoire.Errorf(grimoire.ENOTFOUND, "not logged in")
	} else if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, grimoire.Errorf(grimoire.ECORRUPT, "token file %s is unreadable: %v", f.path, err)
	}
	if tok.Access == "" {
		return nil, grimoire.Errorf(grimoire.ECORRUPT, "token file %s is missing the token", f.path)
	}
	return &tok, nil
}

// Save durably writes the token (temp file then rename).
func (f *TokenFile) Save(tok *Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "token.json.tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

// Clear removes the saved token. Clearing an absent token is not an error.
func (f *TokenFile) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// AuthClient talks to the remote auth endpoints.
type AuthClient struct {
	client *Client
	tokens *TokenFile
}

// NewAuthClient creates an AuthClient sharing the content client's
// endpoint and transport.
func NewAuthClient(client *Client, tokens *TokenFile) *AuthClient {
	return &AuthClient{client: client, tokens: tokens}
}

// Login authenticates against the remote and saves the returned token.
func (a *AuthClient) Login(ctx context.Context, username, password string) (*Token, error) {
	if username == "" || password == "" {
		return nil, grimoire.Errorf(grimoire.EINVALID, "username and password required")
	}

	var tok Token
	err := a.client.postJSON(ctx, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &tok)
	if err != nil {
		return nil, err
	}
	if tok.Access == "" {
		return nil, grimoire.Errorf(grimoire.EINVALID, "login response missing token")
	}

	if err := a.tokens.Save(&tok); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	return &tok, nil
}

// Register creates an account on the remote. The remote logs the new
// account in immediately, so the returned token is saved like a login.
func (a *AuthClient) Register(ctx context.Context, username, password string) (*Token, error) {
	if username == "" || password == "" {
		return nil, grimoire.Errorf(grimoire.EINVALID, "username and password required")
	}

	var tok Token
	err := a.client.postJSON(ctx, "/auth/register", map[string]string{
		"username": username,
		"password": password,
	}, &tok)
	if err != nil {
		return nil, err
	}
	if tok.Access == "" {
		return nil, grimoire.Errorf(grimoire.EINVALID, "register response missing token")
	}

	if err := a.tokens.Save(&tok); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	return &tok, nil
}

// Logout notifies the remote and removes the saved token. The local
// token is cleared even when the remote call fails.
func (a *AuthClient) Logout(ctx context.Context) error {
	remoteErr := a.client.postJSON(ctx, "/auth/logout", map[string]string{}, nil)
	if err := a.tokens.Clear(); err != nil {
		return err
	}
	return remoteErr
}
