// Package session holds the credentials of the signed-in back-office user.
//
// A Session is created explicitly from a Store and handed to whoever needs
// it; nothing reads persisted credentials implicitly.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"uia-atlas/atlas-portal/pkg/catalog"
)

var ErrNotSignedIn = errors.New("not signed in")

// State is what a Store persists.
type State struct {
	Token    string       `json:"token"`
	User     catalog.User `json:"user"`
	SignedIn time.Time    `json:"signed_in"`
}

// Store persists session state between runs.
type Store interface {
	Load() (*State, error) // nil, nil when nothing is stored
	Save(State) error
	Clear() error
}

// Session is safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	store Store
	state *State
	now   func() time.Time
}

// Create opens a session backed by store, restoring any persisted state.
func Create(store Store) (*Session, error) {
	st, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if st != nil && st.Token == "" {
		st = nil
	}
	return &Session{store: store, state: st, now: time.Now}, nil
}

// SignIn stores fresh credentials.
func (s *Session) SignIn(token string, user catalog.User) error {
	if token == "" {
		return errors.New("empty access token")
	}
	st := State{Token: token, User: user, SignedIn: s.now()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(st); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.state = &st
	return nil
}

// Destroy forgets the credentials in memory and in the store. It is safe to
// call on a session that is not signed in.
func (s *Session) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return ""
	}
	return s.state.Token
}

// User returns the signed-in user.
func (s *Session) User() (catalog.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return catalog.User{}, ErrNotSignedIn
	}
	return s.state.User, nil
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}
