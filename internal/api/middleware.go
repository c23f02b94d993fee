package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/backoffice/internal/models"
	"github.com/terra-clan/backoffice/internal/session"
)

// APIKeyMiddleware admits only callers holding a configured console key
type APIKeyMiddleware struct {
	keys [][]byte
}

// NewAPIKeyMiddleware creates caller key middleware
func NewAPIKeyMiddleware(keys []string) *APIKeyMiddleware {
	m := &APIKeyMiddleware{}
	for _, k := range keys {
		if k != "" {
			m.keys = append(m.keys, []byte(k))
		}
	}
	return m
}

// Authenticate rejects requests without a valid caller key. It runs in
// front of the session check.
func (m *APIKeyMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := extractAPIKey(r)
		if apiKey == "" {
			respondError(w, r, http.StatusUnauthorized, "unauthorized",
				"provide Authorization header with Bearer token or X-API-Key header")
			return
		}

		if !m.valid(apiKey) {
			slog.Warn("invalid api key attempt", "key_prefix", maskKey(apiKey), "remote_addr", r.RemoteAddr)
			respondError(w, r, http.StatusUnauthorized, "unauthorized", "the provided api key is not valid")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *APIKeyMiddleware) valid(apiKey string) bool {
	ok := false
	for _, k := range m.keys {
		if subtle.ConstantTimeCompare(k, []byte(apiKey)) == 1 {
			ok = true
		}
	}
	return ok
}

// extractAPIKey extracts the caller key from request headers. Websocket
// upgrades may carry it as the api_key query parameter since browsers
// cannot set headers on them.
func extractAPIKey(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if websocketUpgrade(r) {
		return r.URL.Query().Get("api_key")
	}
	return ""
}

func websocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// maskKey returns first 8 chars of key for safe logging
func maskKey(key string) string {
	if len(key) < 8 {
		return "***"
	}
	return key[:8] + "..."
}

// SessionMiddleware gates the console API on the operator session
type SessionMiddleware struct {
	store *session.Store
}

// NewSessionMiddleware creates new session middleware
func NewSessionMiddleware(store *session.Store) *SessionMiddleware {
	return &SessionMiddleware{store: store}
}

// Authenticate runs the session check on first use and rejects requests
// while nobody is signed in
func (m *SessionMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := m.store.State()
		if !state.IsInitialized {
			if _, err := m.store.CheckSession(r.Context()); err != nil {
				slog.Debug("session check failed", "error", err)
			}
			state = m.store.State()
		}

		decision := session.Guard(state, r.URL.Path)
		if decision.Action != session.Render || !state.IsAuthenticated {
			respondError(w, r, http.StatusUnauthorized, "unauthorized", "Not authenticated")
			return
		}

		ctx := ContextWithAdmin(r.Context(), state.Admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission returns middleware that checks the operator may perform
// action on the resource named by the {resource} URL parameter, or on
// resource when it is not empty
func (m *SessionMiddleware) RequirePermission(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin := AdminFromContext(r.Context())
			if admin == nil {
				respondError(w, r, http.StatusUnauthorized, "unauthorized", "Not authenticated")
				return
			}

			target := resource
			if target == "" {
				target = chi.URLParam(r, "resource")
			}

			if !authorize(w, r, admin, target, action) {
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// authorize writes a 403 and returns false unless admin may perform action
// on resource
func authorize(w http.ResponseWriter, r *http.Request, admin *models.Admin, resource, action string) bool {
	if admin.Can(resource, action) {
		return true
	}
	slog.Warn("permission denied",
		"admin", admin.Username,
		"resource", resource,
		"action", action,
	)
	respondError(w, r, http.StatusForbidden, "forbidden",
		"You do not have permission to "+action+" "+resource)
	return false
}
