package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/backoffice/internal/models"
	"github.com/terra-clan/backoffice/pkg/client"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type authBackend struct {
	signedIn atomic.Bool
	logouts  atomic.Int32
}

func newStore(t *testing.T) (*Store, *client.Client, *authBackend) {
	t.Helper()
	ab := &authBackend{}

	r := chi.NewRouter()
	r.Post("/admin/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var creds models.Credentials
		require.NoError(t, json.NewDecoder(req.Body).Decode(&creds))
		if creds.Password != "Secret123" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		ab.signedIn.Store(true)
		http.SetCookie(w, &http.Cookie{Name: "csrf_token", Value: "tok", Path: "/"})
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"id": "a1", "username": creds.Username}})
	})
	r.Get("/admin/auth/me", func(w http.ResponseWriter, req *http.Request) {
		if !ab.signedIn.Load() {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Not authenticated"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"id": "a1", "username": "root", "role": "super-admin", "status": "active",
		}})
	})
	r.Post("/admin/auth/logout", func(w http.ResponseWriter, req *http.Request) {
		ab.logouts.Add(1)
		ab.signedIn.Store(false)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	r.Get("/admin/users", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Session expired"})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	api, err := client.New(srv.URL)
	require.NoError(t, err)
	return NewStore(api), api, ab
}

func TestStore_CheckSessionAnonymous(t *testing.T) {
	s, _, _ := newStore(t)

	assert.False(t, s.State().IsInitialized)
	_, err := s.CheckSession(context.Background())
	require.Error(t, err)
	assert.True(t, client.IsAuth(err))

	st := s.State()
	assert.True(t, st.IsInitialized)
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.Admin)
}

func TestStore_LoginAndLogout(t *testing.T) {
	s, _, ab := newStore(t)
	ctx := context.Background()

	var seen []State
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, st) })
	defer unsubscribe()

	_, err := s.Login(ctx, models.Credentials{Username: "root", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", client.Message(err))
	assert.False(t, s.State().IsAuthenticated)

	admin, err := s.Login(ctx, models.Credentials{Username: "root", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, "root", admin.Username)
	assert.True(t, admin.IsSuperAdmin())
	assert.True(t, s.State().IsAuthenticated)

	require.NoError(t, s.Logout(ctx, true))
	assert.Equal(t, int32(1), ab.logouts.Load())
	st := s.State()
	assert.False(t, st.IsAuthenticated)
	assert.True(t, st.IsInitialized)

	require.NotEmpty(t, seen)
	assert.False(t, seen[len(seen)-1].IsAuthenticated)
}

func TestStore_UnauthorizedForcesLogout(t *testing.T) {
	s, api, ab := newStore(t)
	ctx := context.Background()

	_, err := s.Login(ctx, models.Credentials{Username: "root", Password: "Secret123"})
	require.NoError(t, err)

	_, err = api.Get(ctx, "/admin/users", nil)
	require.Error(t, err)
	assert.True(t, client.IsAuth(err))

	assert.False(t, s.State().IsAuthenticated)
	assert.Equal(t, int32(0), ab.logouts.Load())
}

func TestGuard(t *testing.T) {
	admin := &models.Admin{ID: "a1"}
	tests := []struct {
		name  string
		state State
		path  string
		want  Decision
	}{
		{"waits for the session check", State{}, "/users", Decision{Action: Wait}},
		{"anonymous on a page", State{IsInitialized: true}, "/users", Decision{Action: Redirect, To: LoginPath}},
		{"anonymous on login", State{IsInitialized: true}, "/auth/login", Decision{Action: Render}},
		{"signed in on login", State{Admin: admin, IsAuthenticated: true, IsInitialized: true}, "/auth/login/", Decision{Action: Redirect, To: HomePath}},
		{"signed in on a page", State{Admin: admin, IsAuthenticated: true, IsInitialized: true}, "/quotes", Decision{Action: Render}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Guard(tt.state, tt.path))
		})
	}
}
