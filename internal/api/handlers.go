package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/terra-clan/backoffice/internal/forms"
	"github.com/terra-clan/backoffice/internal/models"
	"github.com/terra-clan/backoffice/internal/session"
	"github.com/terra-clan/backoffice/pkg/client"
)

// Response helpers. The console answers in the same envelope as the admin
// backend it fronts.

type apiResponse struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Meta      any       `json:"meta,omitempty"`
	Error     *apiError `json:"error,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp string    `json:"timestamp"`
	Path      string    `json:"path"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeResponse(w http.ResponseWriter, r *http.Request, status int, resp apiResponse) {
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)
	resp.Path = r.URL.Path

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeResponse(w, r, status, apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

func respondMessage(w http.ResponseWriter, r *http.Request, status int, data any, message string) {
	writeResponse(w, r, status, apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Message: message,
	})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeResponse(w, r, status, apiResponse{
		Error: &apiError{Code: code, Message: message},
	})
}

func respondValidation(w http.ResponseWriter, r *http.Request, message string, fields map[string]string) {
	writeResponse(w, r, http.StatusBadRequest, apiResponse{
		Error: &apiError{Code: "validation_error", Message: message, Details: fields},
	})
}

// respondClientError maps a backend failure onto the console envelope
func respondClientError(w http.ResponseWriter, r *http.Request, err error) {
	e := client.Normalize(err)

	status := e.Status
	code := e.Code
	switch e.Kind {
	case client.KindAuth:
		status, code = http.StatusUnauthorized, "unauthorized"
	case client.KindValidation:
		if status == 0 {
			status = http.StatusBadRequest
		}
		if code == "" {
			code = "validation_error"
		}
		if len(e.Fields) > 0 {
			respondValidation(w, r, e.Message, e.Fields)
			return
		}
	default:
		if status < 400 {
			status = http.StatusBadGateway
		}
	}
	if code == "" {
		code = codeForStatus(status)
	}

	if status >= 500 {
		slog.Error("backend request failed", "error", err, "path", r.URL.Path)
	}
	respondError(w, r, status, code, e.Message)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusConflict:
		return "conflict"
	case http.StatusBadGateway:
		return "bad_gateway"
	}
	if status >= 500 {
		return "internal_error"
	}
	return "request_failed"
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	failed := map[string]string{}
	for name, check := range s.checks {
		if err := check.Ping(r.Context()); err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		writeResponse(w, r, http.StatusServiceUnavailable, apiResponse{
			Error: &apiError{Code: "not_ready", Message: "service not ready", Details: failed},
		})
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Auth handlers

type sessionResponse struct {
	session.State
	Decision *session.Decision `json:"decision,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if errs := forms.ValidateLogin(creds); len(errs) > 0 {
		respondValidation(w, r, "Please fix the errors in the form", errs)
		return
	}

	admin, err := s.session.Login(r.Context(), creds)
	if err != nil {
		e := client.Normalize(err)
		if e.Kind == client.KindAuth {
			respondError(w, r, http.StatusUnauthorized, "invalid_credentials", e.Message)
			return
		}
		respondClientError(w, r, err)
		return
	}

	respondMessage(w, r, http.StatusOK, admin, "Login successful")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	admin := s.session.Admin()
	_ = s.session.Logout(r.Context(), true)
	if admin != nil {
		slog.Info("operator signed out", "admin", admin.Username)
	}
	respondMessage(w, r, http.StatusOK, nil, "Logged out")
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	state := s.session.State()
	if !state.IsInitialized || r.URL.Query().Get("refresh") == "true" {
		if _, err := s.session.CheckSession(r.Context()); err != nil && !client.IsAuth(err) {
			respondClientError(w, r, err)
			return
		}
		state = s.session.State()
	}

	resp := sessionResponse{State: state}
	if path := r.URL.Query().Get("path"); path != "" {
		d := session.Guard(state, path)
		resp.Decision = &d
	}
	respondJSON(w, r, http.StatusOK, resp)
}

