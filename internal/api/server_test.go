package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/backoffice/internal/config"
	"github.com/terra-clan/backoffice/internal/models"
	"github.com/terra-clan/backoffice/internal/querycache"
	"github.com/terra-clan/backoffice/internal/services"
	"github.com/terra-clan/backoffice/internal/session"
	"github.com/terra-clan/backoffice/internal/table"
	"github.com/terra-clan/backoffice/internal/upload"
	"github.com/terra-clan/backoffice/internal/views"
	"github.com/terra-clan/backoffice/pkg/client"
)

const testAPIKey = "console-test-key-0123456789"

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   *apiError       `json:"error"`
	Message string          `json:"message"`
	Path    string          `json:"path"`
}

// backend fakes the admin API
type backend struct {
	signedIn    atomic.Bool
	suspensions atomic.Int32
	deletions   atomic.Int32

	mu        sync.Mutex
	lastQuery url.Values
	profile   map[string]any
}

// signInAs replaces the super-admin profile returned by /admin/auth/me
func (b *backend) signInAs(profile map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profile = profile
}

func (b *backend) routes(t *testing.T) http.Handler {
	r := chi.NewRouter()
	r.Post("/admin/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var creds models.Credentials
		require.NoError(t, json.NewDecoder(req.Body).Decode(&creds))
		if creds.Password != "Secret123" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		b.signedIn.Store(true)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	r.Get("/admin/auth/me", func(w http.ResponseWriter, req *http.Request) {
		if !b.signedIn.Load() {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Not authenticated"})
			return
		}
		b.mu.Lock()
		profile := b.profile
		b.mu.Unlock()
		if profile == nil {
			profile = map[string]any{"id": "a1", "username": "root", "role": "super-admin", "status": "active"}
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": profile})
	})
	r.Post("/admin/auth/logout", func(w http.ResponseWriter, req *http.Request) {
		b.signedIn.Store(false)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	r.Get("/admin/users", func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		b.lastQuery = req.URL.Query()
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": "u1", "name": "Ada", "email": "ada@example.com", "isSuspended": false, "totalQuotes": 3},
				{"id": "u2", "name": "Grace", "email": "grace@example.com", "isSuspended": true, "totalQuotes": 0},
			},
			"meta": map[string]any{"total": 12, "page": 1, "limit": 10, "totalPages": 2},
		})
	})
	r.Get("/admin/users/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") != "u1" {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": map[string]any{"code": "NOT_FOUND", "message": "User not found"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"id": "u1", "name": "Ada"}})
	})
	r.Patch("/admin/users/{id}/suspension", func(w http.ResponseWriter, req *http.Request) {
		b.suspensions.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"id": chi.URLParam(req, "id"), "isSuspended": true}})
	})
	r.Delete("/admin/quotes/{id}", func(w http.ResponseWriter, req *http.Request) {
		b.deletions.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	r.Post("/assets/upload/images/products", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseMultipartForm(1<<20))
		urls := []string{}
		for _, fh := range req.MultipartForm.File["files"] {
			urls = append(urls, "https://cdn.example.com/batch/"+fh.Filename)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"urls": urls}})
	})
	r.Post("/assets/upload/image/products", func(w http.ResponseWriter, req *http.Request) {
		_, fh, err := req.FormFile("file")
		require.NoError(t, err)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"url": "https://cdn.example.com/" + fh.Filename}})
	})
	return r
}

type console struct {
	srv      *httptest.Server
	backend  *backend
	registry *services.Registry
}

func newConsole(t *testing.T) *console {
	t.Helper()

	b := &backend{}
	api := httptest.NewServer(b.routes(t))
	t.Cleanup(api.Close)

	c, err := client.New(api.URL)
	require.NoError(t, err)

	cache := querycache.New(querycache.Config{StaleTime: time.Minute})
	registry := services.NewRegistry(c, cache)

	presets := views.NewLoader()
	require.NoError(t, presets.LoadDefaults())

	cfg := config.Default()
	cfg.Server.APIKeys = []string{testAPIKey}
	cfg.Server.AllowedOrigins = []string{"https://console.example.com"}

	s := NewServer(cfg, Deps{
		Registry: registry,
		Session:  session.NewStore(c),
		Presets:  presets,
		Uploader: upload.NewUploader(c, nil),
	})
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)

	return &console{srv: srv, backend: b, registry: registry}
}

func (c *console) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()

	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.srv.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (c *console) login(t *testing.T) {
	t.Helper()
	status, env := c.do(t, http.MethodPost, "/auth/login", models.Credentials{Username: "root", Password: "Secret123"})
	require.Equal(t, http.StatusOK, status, env.Message)
}

func TestHealth(t *testing.T) {
	c := newConsole(t)

	status, env := c.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "/health", env.Path)
}

func TestAPI_RequiresSession(t *testing.T) {
	c := newConsole(t)

	status, env := c.do(t, http.MethodGet, "/api/v1/views/users", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "unauthorized", env.Error.Code)

	status, env = c.do(t, http.MethodGet, "/auth/session?path=/users", nil)
	require.Equal(t, http.StatusOK, status)
	var st sessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.True(t, st.IsInitialized)
	assert.False(t, st.IsAuthenticated)
	require.NotNil(t, st.Decision)
	assert.Equal(t, session.Decision{Action: session.Redirect, To: session.LoginPath}, *st.Decision)
}

func TestAPI_RequiresCallerKey(t *testing.T) {
	c := newConsole(t)
	c.login(t)

	send := func(method, path, contentType, body string, header http.Header) int {
		t.Helper()
		req, err := http.NewRequest(method, c.srv.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		for k, v := range header {
			req.Header[k] = v
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	bulkBody := `{"action":"suspend","ids":["u1"]}`
	assert.Equal(t, http.StatusUnauthorized, send(http.MethodGet, "/api/v1/resources", "", "", nil))
	assert.Equal(t, http.StatusUnauthorized, send(http.MethodGet, "/auth/session", "", "", nil))
	assert.Equal(t, http.StatusUnauthorized, send(http.MethodPost, "/api/v1/users/bulk", "text/plain", bulkBody, nil))
	assert.Equal(t, http.StatusUnauthorized, send(http.MethodGet, "/api/v1/resources", "", "",
		http.Header{"X-Api-Key": {"someone-elses-key-0123456789"}}))
	assert.Equal(t, int32(0), c.backend.suspensions.Load())

	assert.Equal(t, http.StatusOK, send(http.MethodGet, "/api/v1/resources", "", "",
		http.Header{"Authorization": {"Bearer " + testAPIKey}}))
	assert.Equal(t, http.StatusUnsupportedMediaType, send(http.MethodPost, "/api/v1/users/bulk", "text/plain", bulkBody,
		http.Header{"X-Api-Key": {testAPIKey}}))
	assert.Equal(t, int32(0), c.backend.suspensions.Load())

	assert.Equal(t, http.StatusOK, send(http.MethodGet, "/health", "", "", nil))
}

func TestWatch_ChecksCallerAndOrigin(t *testing.T) {
	c := newConsole(t)
	c.login(t)

	wsURL := "ws" + strings.TrimPrefix(c.srv.URL, "http") + "/ws/watch"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL, http.Header{
		"X-Api-Key": {testAPIKey},
		"Origin":    {"https://evil.example.net"},
	})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?api_key="+testAPIKey, http.Header{
		"Origin": {"https://console.example.com"},
	})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WatchMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "connected", msg.Type)
}

func TestLogin(t *testing.T) {
	c := newConsole(t)

	status, env := c.do(t, http.MethodPost, "/auth/login", models.Credentials{Username: "  "})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Code)

	status, env = c.do(t, http.MethodPost, "/auth/login", models.Credentials{Username: "root", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", env.Error.Message)

	c.login(t)
	status, env = c.do(t, http.MethodGet, "/auth/session?path=/auth/login", nil)
	require.Equal(t, http.StatusOK, status)
	var st sessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, "root", st.Admin.Username)
	assert.Equal(t, session.HomePath, st.Decision.To)

	status, _ = c.do(t, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = c.do(t, http.MethodGet, "/api/v1/resources", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestView(t *testing.T) {
	c := newConsole(t)
	c.login(t)

	status, env := c.do(t, http.MethodGet, "/api/v1/views/users?search=ada&selected=u2&hidden=authProvider&isSuspended=false", nil)
	require.Equal(t, http.StatusOK, status)

	var view table.View[map[string]any]
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, table.StatusReady, view.Status)
	assert.Equal(t, 2, view.PageCount)
	assert.True(t, view.CanNext)
	assert.False(t, view.CanPrev)
	assert.Equal(t, []string{"u2"}, view.Selected)
	assert.Contains(t, view.Hidden, "authProvider")
	require.Len(t, view.Rows, 2)
	assert.Equal(t, "Ada", view.Rows[0].Cells[0])
	assert.True(t, view.Rows[1].Selected)

	var meta ViewMeta
	require.NoError(t, json.Unmarshal(env.Meta, &meta))
	assert.Equal(t, "Users", meta.Title)
	assert.Equal(t, []string{"suspend", "unsuspend"}, meta.BulkActions)

	c.backend.mu.Lock()
	q := c.backend.lastQuery
	c.backend.mu.Unlock()
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "10", q.Get("limit"))
	assert.Equal(t, "ada", q.Get("search"))
	assert.Equal(t, "createdAt", q.Get("sortBy"))
	assert.Equal(t, "desc", q.Get("sortOrder"))
	assert.Equal(t, "false", q.Get("isSuspended"))

	status, _ = c.do(t, http.MethodGet, "/api/v1/views/warehouses", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRecord(t *testing.T) {
	c := newConsole(t)
	c.login(t)

	status, env := c.do(t, http.MethodGet, "/api/v1/users/u1", nil)
	require.Equal(t, http.StatusOK, status)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, "Ada", rec["name"])

	status, env = c.do(t, http.MethodGet, "/api/v1/users/u9", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", env.Error.Message)

	status, _ = c.do(t, http.MethodPost, "/api/v1/users/u1/explode", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = c.do(t, http.MethodPost, "/api/v1/users/u1/suspension", map[string]any{"isSuspended": true})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int32(1), c.backend.suspensions.Load())
}

func TestBulk(t *testing.T) {
	c := newConsole(t)
	c.login(t)

	status, env := c.do(t, http.MethodPost, "/api/v1/users/bulk/preview", bulkRequest{Action: "suspend", IDs: []string{"u1", "u2"}})
	require.Equal(t, http.StatusOK, status)
	var preview bulkPreview
	require.NoError(t, json.Unmarshal(env.Data, &preview))
	assert.Equal(t, "Are you sure you want to suspend 2 selected user(s)?", preview.Message)
	assert.Equal(t, int32(0), c.backend.suspensions.Load())

	status, env = c.do(t, http.MethodPost, "/api/v1/users/bulk", bulkRequest{Action: "suspend", IDs: []string{"u1", "u2", "u1"}})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "Successfully suspended 2 users", env.Message)
	assert.Equal(t, int32(2), c.backend.suspensions.Load())

	status, _ = c.do(t, http.MethodPost, "/api/v1/users/bulk", bulkRequest{Action: "suspend"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = c.do(t, http.MethodPost, "/api/v1/users/bulk", bulkRequest{Action: "launch", IDs: []string{"u1"}})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = c.do(t, http.MethodPost, "/api/v1/warehouses/bulk", bulkRequest{Action: "delete", IDs: []string{"s1"}})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBulk_RequiresActionPermission(t *testing.T) {
	c := newConsole(t)
	c.backend.signInAs(map[string]any{
		"id": "a2", "username": "editor", "role": "admin", "status": "active",
		"permissions": []map[string]any{
			{"resource": "quotes", "actions": []string{"read", "update"}},
			{"resource": "users", "actions": []string{"read", "update"}},
		},
	})
	c.login(t)

	status, env := c.do(t, http.MethodPost, "/api/v1/quotes/bulk/preview", bulkRequest{Action: "delete", IDs: []string{"q1"}})
	require.Equal(t, http.StatusOK, status)
	var preview bulkPreview
	require.NoError(t, json.Unmarshal(env.Data, &preview))
	assert.True(t, preview.Destructive)

	status, env = c.do(t, http.MethodPost, "/api/v1/quotes/bulk", bulkRequest{Action: "delete", IDs: []string{"q1", "q2"}})
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "forbidden", env.Error.Code)
	assert.Equal(t, int32(0), c.backend.deletions.Load())

	status, _ = c.do(t, http.MethodDelete, "/api/v1/quotes/q1", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, int32(0), c.backend.deletions.Load())

	status, env = c.do(t, http.MethodPost, "/api/v1/users/bulk", bulkRequest{Action: "suspend", IDs: []string{"u1"}})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, int32(1), c.backend.suspensions.Load())

	c.backend.signInAs(nil)
	status, _ = c.do(t, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, status)
	c.login(t)

	status, env = c.do(t, http.MethodPost, "/api/v1/quotes/bulk", bulkRequest{Action: "delete", IDs: []string{"q1", "q2"}})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, "Successfully deleted 2 quotes", env.Message)
	assert.Equal(t, int32(2), c.backend.deletions.Load())
}

func postFiles(t *testing.T, c *console, path string, files map[string][]byte) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, c.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testAPIKey)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestUpload(t *testing.T) {
	c := newConsole(t)
	c.login(t)

	status, env := postFiles(t, c, "/api/v1/uploads/image/products?multiple=true&existing=https://cdn.example.com/old.png",
		map[string][]byte{"part.png": pngHeader})
	require.Equal(t, http.StatusOK, status, env.Message)

	var res upload.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 1, res.Uploaded)
	assert.Equal(t, []string{"https://cdn.example.com/old.png", "https://cdn.example.com/part.png"}, res.Value)

	status, env = c.do(t, http.MethodGet, "/api/v1/uploads/recent?context=products", nil)
	require.Equal(t, http.StatusOK, status)
	var recent []models.UploadedAsset
	require.NoError(t, json.Unmarshal(env.Data, &recent))
	require.Len(t, recent, 1)
	assert.Equal(t, "https://cdn.example.com/part.png", recent[0].URL)

	status, env = postFiles(t, c, "/api/v1/uploads/image/products", map[string][]byte{"notes.txt": []byte("plain text")})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Only image files are allowed", env.Error.Message)

	status, env = postFiles(t, c, "/api/v1/uploads/image/products?batch=true", map[string][]byte{"a.png": pngHeader, "b.png": pngHeader})
	require.Equal(t, http.StatusOK, status, env.Message)
	res = upload.Result{}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 2, res.Uploaded)
	assert.ElementsMatch(t, []string{"https://cdn.example.com/batch/a.png", "https://cdn.example.com/batch/b.png"}, res.Value)

	status, _ = postFiles(t, c, "/api/v1/uploads/video/products", map[string][]byte{"a.png": pngHeader})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = postFiles(t, c, "/api/v1/uploads/image/spaceships", map[string][]byte{"a.png": pngHeader})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWatch(t *testing.T) {
	c := newConsole(t)
	c.login(t)

	wsURL := "ws" + strings.TrimPrefix(c.srv.URL, "http") + "/ws/watch?prefix=" + url.QueryEscape(`["user"]`)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"X-API-Key": {testAPIKey}})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg WatchMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "connected", msg.Type)

	cache := c.registry.Cache()
	cache.SetData(querycache.NewKey("admins", "list"), []string{})
	cache.SetData(querycache.NewKey("user", "u1"), map[string]any{"id": "u1"})

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "event", msg.Type)
	require.NotNil(t, msg.Event)
	assert.Equal(t, querycache.EventUpdated, msg.Event.Type)
	assert.True(t, msg.Event.Key.Equal(querycache.NewKey("user", "u1")))

	require.NoError(t, conn.WriteJSON(WatchMessage{Type: "watch", Prefixes: []querycache.Key{querycache.NewKey("admins")}}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "watching", msg.Type)
	require.Len(t, msg.Prefixes, 1)

	cache.SetData(querycache.NewKey("user", "u2"), map[string]any{"id": "u2"})
	cache.SetData(querycache.NewKey("admins", "list"), []string{"a1"})

	msg = WatchMessage{}
	require.NoError(t, conn.ReadJSON(&msg))
	require.NotNil(t, msg.Event)
	assert.True(t, msg.Event.Key.HasPrefix(querycache.NewKey("admins")))
}

func TestReady(t *testing.T) {
	c := newConsole(t)
	status, _ := c.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, status)

	s := NewServer(config.Default(), Deps{
		Registry: c.registry,
		Presets:  views.NewLoader(),
		Checks: map[string]Pinger{
			"database": PingFunc(func(ctx context.Context) error { return context.DeadlineExceeded }),
		},
	})
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
