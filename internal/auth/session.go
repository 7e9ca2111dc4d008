package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// SessionTTL is how long a login stays valid.
const SessionTTL = 24 * time.Hour

// CookieValue is stored as the access token when the server issued none.
const CookieValue = "true"

// ErrNoSession is returned by SessionStore.Load when nothing is stored.
var ErrNoSession = errors.New("no session")

// SessionStore persists the session token.
type SessionStore interface {
	Load() (*oauth2.Token, error)
	Save(tok *oauth2.Token) error
	Clear() error
}

// FileSession stores the session as a JSON oauth2.Token.
type FileSession struct {
	path string
}

var _ SessionStore = (*FileSession)(nil)

// NewFileSession returns a session store backed by the file at path.
func NewFileSession(path string) *FileSession {
	return &FileSession{path: path}
}

// Path returns the session file location.
func (s *FileSession) Path() string { return s.path }

// Load reads the stored token.
func (s *FileSession) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &tok, nil
}

// Save writes tok with mode 0600.
func (s *FileSession) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the stored token. A missing file is not an error.
func (s *FileSession) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// NewSession builds the token stored after a successful login or signup.
// serverToken may be empty. A JWT whose exp is earlier than now+SessionTTL
// shortens the session.
func NewSession(serverToken string, now time.Time) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken: serverToken,
		TokenType:   "Bearer",
		Expiry:      now.Add(SessionTTL),
	}
	if serverToken == "" {
		tok.AccessToken = CookieValue
		return tok
	}
	if exp, ok := jwtExpiry(serverToken); ok && exp.Before(tok.Expiry) {
		tok.Expiry = exp
	}
	return tok
}

// BearerToken returns tok when it carries a server-issued token, nil
// otherwise.
func BearerToken(tok *oauth2.Token) *oauth2.Token {
	if tok == nil || tok.AccessToken == "" || tok.AccessToken == CookieValue {
		return nil
	}
	return tok
}

func sessionValid(tok *oauth2.Token, now time.Time) bool {
	if tok == nil || tok.AccessToken == "" {
		return false
	}
	return tok.Expiry.IsZero() || now.Before(tok.Expiry)
}

// jwtExpiry reads exp from a JWT without verifying it. The signature belongs
// to the server; only the lifetime matters here.
func jwtExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
