package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/backoffice/internal/bulk"
	"github.com/terra-clan/backoffice/internal/models"
	"github.com/terra-clan/backoffice/internal/resource"
	"github.com/terra-clan/backoffice/internal/services"
	"github.com/terra-clan/backoffice/internal/table"
	"github.com/terra-clan/backoffice/internal/views"
	"github.com/terra-clan/backoffice/pkg/client"
)

// ResourceInfo describes a resource the console can show
type ResourceInfo struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	HasView     bool     `json:"hasView"`
	BulkActions []string `json:"bulkActions"`
}

// ViewMeta accompanies a table view
type ViewMeta struct {
	Resource    string   `json:"resource"`
	Title       string   `json:"title"`
	BulkActions []string `json:"bulkActions"`
}

type bulkRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
}

type bulkPreview struct {
	Action      string `json:"action"`
	Count       int    `json:"count"`
	Message     string `json:"message"`
	Destructive bool   `json:"destructive"`
}

// lookup resolves the {resource} URL parameter, answering 404 itself
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (string, resource.Handle, bool) {
	name := chi.URLParam(r, "resource")
	h, err := s.registry.Get(name)
	if err != nil {
		respondError(w, r, http.StatusNotFound, "not_found", "unknown resource: "+name)
		return name, nil, false
	}
	return name, h, true
}

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	names := s.registry.List()
	out := make([]ResourceInfo, 0, len(names))
	for _, name := range names {
		info := ResourceInfo{Name: name, Title: name, BulkActions: s.registry.BulkActions(name)}
		if p, err := s.presets.Get(name); err == nil {
			info.Title = p.Title
			info.HasView = true
		}
		out = append(out, info)
	}
	respondJSON(w, r, http.StatusOK, out)
}

// handleView answers one page of a resource table. The query string is the
// page descriptor (page, limit, search, sortBy, sortOrder and filters);
// hidden and selected carry comma separated column and row ids.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	name, h, ok := s.lookup(w, r)
	if !ok {
		return
	}

	preset, err := s.presets.Get(name)
	if err != nil {
		if errors.Is(err, views.ErrPresetNotFound) {
			respondError(w, r, http.StatusNotFound, "not_found", "no table view for "+name)
			return
		}
		respondError(w, r, http.StatusInternalServerError, "internal_error", "failed to load table view")
		return
	}

	q := url.Values{}
	for k, v := range r.URL.Query() {
		q[k] = v
	}
	hidden := splitList(q.Get("hidden"))
	selected := splitList(q.Get("selected"))
	q.Del("hidden")
	q.Del("selected")

	engine := preset.Engine(h, s.debounce)
	defer engine.Close()

	d := table.ParseDescriptor(q, preset.PageSize)
	state := d.ToState(engine.State())
	if d.SortBy == "" {
		state.Sorting = preset.Sorting()
	}
	engine.SetState(state)
	for _, id := range hidden {
		engine.SetVisibility(id, false)
	}
	for _, id := range selected {
		engine.ToggleRow(id)
	}

	if err := engine.Refresh(r.Context()); err != nil {
		if r.Context().Err() != nil {
			return
		}
		slog.Debug("table view failed", "resource", name, "error", err)
		if client.IsAuth(err) {
			respondClientError(w, r, err)
			return
		}
	}

	writeResponse(w, r, http.StatusOK, apiResponse{
		Success: true,
		Data:    engine.View(),
		Meta: ViewMeta{
			Resource:    name,
			Title:       preset.Title,
			BulkActions: s.registry.BulkActions(name),
		},
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	_, h, ok := s.lookup(w, r)
	if !ok {
		return
	}

	stats, err := h.StatsRecord(r.Context())
	if err != nil {
		if errors.Is(err, resource.ErrNoStats) {
			respondError(w, r, http.StatusNotFound, "not_found", err.Error())
			return
		}
		respondClientError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	_, h, ok := s.lookup(w, r)
	if !ok {
		return
	}

	rec, err := h.GetRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondClientError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	name, h, ok := s.lookup(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.Delete(r.Context(), id); err != nil {
		respondClientError(w, r, err)
		return
	}

	slog.Info("record deleted", "resource", name, "id", id, "admin", adminName(r))
	respondMessage(w, r, http.StatusOK, nil, "Deleted successfully")
}

func (s *Server) handleRecordAction(w http.ResponseWriter, r *http.Request) {
	name, h, ok := s.lookup(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	action := chi.URLParam(r, "action")
	if !h.HasAction(action) {
		respondError(w, r, http.StatusNotFound, "not_found", "unknown action: "+action)
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.Run(r.Context(), id, action, body); err != nil {
		respondClientError(w, r, err)
		return
	}

	slog.Info("record action applied", "resource", name, "id", id, "action", action, "admin", adminName(r))
	respondMessage(w, r, http.StatusOK, nil, "Updated successfully")
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	name, _, ok := s.lookup(w, r)
	if !ok {
		return
	}

	flow, action, ok := s.beginBulk(w, r, name)
	if !ok {
		return
	}
	if !authorize(w, r, AdminFromContext(r.Context()), name, action.Permission) {
		flow.Cancel()
		return
	}

	outcome, err := flow.Execute(r.Context())
	if err != nil {
		respondError(w, r, http.StatusConflict, "conflict", err.Error())
		return
	}

	slog.Info("bulk action executed",
		"action", action.Name,
		"total", outcome.Total,
		"succeeded", outcome.Succeeded,
		"failed", outcome.Failed,
		"admin", adminName(r),
	)

	writeResponse(w, r, http.StatusOK, apiResponse{
		Success: outcome.OK(),
		Data:    outcome,
		Message: outcome.Message,
	})
}

func (s *Server) handleBulkPreview(w http.ResponseWriter, r *http.Request) {
	name, _, ok := s.lookup(w, r)
	if !ok {
		return
	}

	flow, action, ok := s.beginBulk(w, r, name)
	if !ok {
		return
	}
	defer flow.Cancel()

	respondJSON(w, r, http.StatusOK, bulkPreview{
		Action:      action.Name,
		Count:       len(flow.Selection()),
		Message:     flow.Describe(),
		Destructive: action.Destructive,
	})
}

// beginBulk decodes a bulk request and moves a fresh flow to confirming
func (s *Server) beginBulk(w http.ResponseWriter, r *http.Request, name string) (*bulk.Flow, bulk.Action, bool) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return nil, bulk.Action{}, false
	}

	action, err := s.registry.BulkAction(name, req.Action)
	if err != nil {
		if errors.Is(err, services.ErrUnknownBulkAction) {
			respondError(w, r, http.StatusNotFound, "not_found", "unknown bulk action: "+req.Action)
			return nil, bulk.Action{}, false
		}
		respondError(w, r, http.StatusInternalServerError, "internal_error", "failed to resolve bulk action")
		return nil, bulk.Action{}, false
	}

	flow := bulk.NewFlow(nil)
	if err := flow.Begin(action, req.IDs); err != nil {
		if errors.Is(err, bulk.ErrEmptySelection) {
			respondError(w, r, http.StatusBadRequest, "validation_error", "Select at least one row")
			return nil, bulk.Action{}, false
		}
		respondError(w, r, http.StatusConflict, "conflict", err.Error())
		return nil, bulk.Action{}, false
	}
	return flow, action, true
}

// Analytics handlers

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := s.registry.Analytics.KPIs(r.Context())
	if err != nil {
		respondClientError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, kpis)
}

func (s *Server) handleVisitors(w http.ResponseWriter, r *http.Request) {
	points, err := s.registry.Analytics.Visitors(r.Context(), models.TimeRange(r.URL.Query().Get("timeRange")))
	if err != nil {
		respondClientError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, points)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func adminName(r *http.Request) string {
	if admin := AdminFromContext(r.Context()); admin != nil {
		return admin.Username
	}
	return ""
}
