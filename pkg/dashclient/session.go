package dashclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Session holds the dashboard bearer token. A session must be hydrated
// before the Client will use it, so a request never goes out with a token
// that has not been loaded yet.
type Session struct {
	mu       sync.RWMutex
	token    string
	hydrated bool
	path     string
}

type sessionFile struct {
	Token string `json:"token"`
}

// NewSession returns an in-memory session.
func NewSession() *Session {
	return &Session{}
}

// NewFileSession returns a session persisted as JSON at path.
func NewFileSession(path string) *Session {
	return &Session{path: path}
}

// Hydrate loads the persisted token, if any, and marks the session ready.
// A missing file is an empty session.
func (s *Session) Hydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		raw, err := os.ReadFile(s.path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return fmt.Errorf("read session: %w", err)
		default:
			var f sessionFile
			if err := json.Unmarshal(raw, &f); err != nil {
				return fmt.Errorf("decode session: %w", err)
			}
			s.token = f.Token
		}
	}
	s.hydrated = true
	return nil
}

func (s *Session) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken stores token and persists it.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return s.persist()
}

// Clear forgets the token.
func (s *Session) Clear() error {
	return s.SetToken("")
}

func (s *Session) persist() error {
	if s.path == "" {
		return nil
	}
	if s.token == "" {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove session: %w", err)
		}
		return nil
	}

	raw, err := json.Marshal(sessionFile{Token: s.token})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
