// Package auth stores the bearer token sent to the todos API.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// EnvVar overrides any stored token.
const EnvVar = "TODO_TOKEN"

const credFileName = "credentials.json"

var codec = sonic.ConfigStd

// TokenInfo is a resolved token. Source is "env" or "file"; CreatedAt is
// only set for stored tokens. ExpiresAt is nil when the expiry is unknown.
type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// credPath is ~/.tada/credentials.json.
func credPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".tada", credFileName), nil
}

// GetToken resolves the token: EnvVar first, then the credentials file.
// It returns nil, nil when neither holds one.
func GetToken() (*TokenInfo, error) {
	if v := strings.TrimSpace(os.Getenv(EnvVar)); v != "" {
		return &TokenInfo{Token: stripBearer(v), Source: "env"}, nil
	}
	return readStored()
}

func readStored() (*TokenInfo, error) {
	p, err := credPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	ti := new(TokenInfo)
	if err := codec.Unmarshal(b, ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = stripBearer(ti.Token)
	return ti, nil
}

// Bearer returns the token to send, or "" when there is none.
func Bearer() (string, error) {
	ti, err := GetToken()
	if err != nil || ti == nil {
		return "", err
	}
	return ti.Token, nil
}

// SetToken stores token with mode 0600. With a nil expires, a JWT exp claim
// is used if there is one.
func SetToken(token string, expires *time.Time) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return errors.New("empty token")
	}
	if expires == nil {
		expires = jwtExpiry(token)
	}
	p, err := credPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := codec.MarshalIndent(TokenInfo{
		Token:     token,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(p, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// DeleteToken removes the stored token, if any.
func DeleteToken() error {
	p, err := credPath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// DecodeClaims reads a JWT payload without verifying it.
func DecodeClaims(token string) (map[string]any, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, errors.New("not a JWT")
	}
	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	var claims map[string]any
	if err := codec.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	return claims, nil
}

func jwtExpiry(token string) *time.Time {
	claims, err := DecodeClaims(token)
	if err != nil {
		return nil
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil
	}
	t := time.Unix(int64(exp), 0)
	return &t
}

func stripBearer(s string) string {
	const prefix = "bearer "
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return strings.TrimSpace(s[len(prefix):])
	}
	return s
}
