package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/terra-clan/backoffice/internal/models"
	"github.com/terra-clan/backoffice/pkg/client"
)

// State is the authentication state of the console
type State struct {
	Admin           *models.Admin `json:"admin"`
	IsAuthenticated bool          `json:"isAuthenticated"`
	IsInitialized   bool          `json:"isInitialized"`
}

// Store owns the operator session. It registers itself as the client's
// unauthorized handler, so any request that sees a 401 logs the console
// out.
type Store struct {
	api *client.Client

	mu     sync.RWMutex
	state  State
	subs   map[int]func(State)
	nextID int
}

// NewStore creates a store over api
func NewStore(api *client.Client) *Store {
	s := &Store{
		api:  api,
		subs: make(map[int]func(State)),
	}
	api.SetUnauthorizedHandler(s.ForceLogout)
	return s
}

// State returns a snapshot of the session
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Admin returns the signed-in operator, or nil
func (s *Store) Admin() *models.Admin {
	return s.State().Admin
}

// CheckSession asks the backend who is signed in. Either way the store
// ends up initialized.
func (s *Store) CheckSession(ctx context.Context) (*models.Admin, error) {
	env, err := s.api.Get(ctx, "/admin/auth/me", nil)
	if err != nil {
		s.set(State{IsInitialized: true})
		return nil, err
	}

	var admin models.Admin
	if err := env.DecodeData(&admin); err != nil {
		s.set(State{IsInitialized: true})
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	s.set(State{Admin: &admin, IsAuthenticated: true, IsInitialized: true})
	return &admin, nil
}

// Login signs in and reloads the session
func (s *Store) Login(ctx context.Context, creds models.Credentials) (*models.Admin, error) {
	if _, err := s.api.Post(ctx, "/admin/auth/login", creds); err != nil {
		slog.Info("login failed", "username", creds.Username, "error", err)
		return nil, err
	}

	admin, err := s.CheckSession(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("operator signed in", "username", admin.Username, "role", admin.Role)
	return admin, nil
}

// Logout signs out. With callAPI the backend session is ended first; the
// local session is cleared even when that call fails.
func (s *Store) Logout(ctx context.Context, callAPI bool) error {
	var err error
	if callAPI {
		_, err = s.api.Post(ctx, "/admin/auth/logout", nil)
		if err != nil {
			slog.Warn("logout request failed", "error", err)
		}
	}
	s.clear()
	return err
}

// ForceLogout clears the session without calling the backend
func (s *Store) ForceLogout() {
	if s.State().IsAuthenticated {
		slog.Warn("session expired, signing out")
	}
	s.clear()
}

func (s *Store) clear() {
	s.mu.RLock()
	initialized := s.state.IsInitialized
	s.mu.RUnlock()
	s.set(State{IsInitialized: initialized})
}

// Subscribe calls fn on every state change until the returned func is
// called
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) set(next State) {
	s.mu.Lock()
	s.state = next
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}
