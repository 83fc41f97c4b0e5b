// Package auth stores the bearer token the API client sends.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	credFileName = "credentials.json"
	EnvToken     = "TADA_TOKEN"
)

type Source string

const (
	SourceEnv  Source = "env"
	SourceFile Source = "file"
)

type TokenInfo struct {
	Token     string     `json:"token"`
	Source    Source     `json:"source"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Expired reports whether a known expiry has passed.
func (ti *TokenInfo) Expired(now time.Time) bool {
	return ti != nil && ti.ExpiresAt != nil && now.After(*ti.ExpiresAt)
}

// Store keeps credentials under dir with owner-only permissions.
type Store struct {
	dir string
}

func NewStore(dir string) *Store { return &Store{dir: dir} }

// DefaultStore uses ~/.tada.
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("home: %w", err)
	}
	return NewStore(filepath.Join(home, ".tada")), nil
}

func (s *Store) path() string { return filepath.Join(s.dir, credFileName) }

// Token prefers TADA_TOKEN, then the credentials file. It returns nil, nil
// when neither is present.
func (s *Store) Token() (*TokenInfo, error) {
	if env := strings.TrimSpace(os.Getenv(EnvToken)); env != "" {
		tok := stripBearer(env)
		return &TokenInfo{Token: tok, Source: SourceEnv, ExpiresAt: jwtExpiry(tok)}, nil
	}

	b, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = stripBearer(ti.Token)
	ti.Source = SourceFile
	return &ti, nil
}

// Save writes the token with 0600 permissions. A JWT's exp claim is
// recorded as the expiry.
func (s *Store) Save(token string, now time.Time) (*TokenInfo, error) {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	ti := &TokenInfo{
		Token:     token,
		Source:    SourceFile,
		CreatedAt: now.UTC(),
		ExpiresAt: jwtExpiry(token),
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(s.path(), b, 0o600); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	return ti, nil
}

// Delete removes the credentials file; a missing file is not an error.
func (s *Store) Delete() error {
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// Claims decodes a JWT payload without verifying it. Opaque tokens return nil.
func Claims(token string) map[string]any {
	claims := parseClaims(token)
	if claims == nil {
		return nil
	}
	return map[string]any(claims)
}

// Subject returns the sub claim, or "" when there is none.
func Subject(token string) string {
	sub, err := parseClaims(token).GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

func parseClaims(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

func jwtExpiry(token string) *time.Time {
	exp, err := parseClaims(token).GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time.UTC()
	return &t
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
