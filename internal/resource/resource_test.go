package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/backoffice/internal/querycache"
	"github.com/terra-clan/backoffice/pkg/client"
)

type user struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsSuspended bool   `json:"isSuspended"`
}

type fakeBackend struct {
	lists   atomic.Int32
	details atomic.Int32
	users   map[string]*user
	fail    atomic.Bool
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newFixture(t *testing.T) (*Resource[user], *querycache.Cache, *fakeBackend) {
	t.Helper()

	fb := &fakeBackend{users: map[string]*user{
		"u1": {ID: "u1", Name: "Ann"},
		"u2": {ID: "u2", Name: "Bob"},
	}}

	r := chi.NewRouter()
	r.Route("/api/admin/users", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			fb.lists.Add(1)
			rows := []*user{fb.users["u1"], fb.users["u2"]}
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"data":    rows,
				"meta":    map[string]any{"total": 12, "page": 1, "limit": 10},
			})
		})
		r.Get("/stats", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]int{"total": 2}})
		})
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			fb.details.Add(1)
			u, ok := fb.users[chi.URLParam(req, "id")]
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "User not found"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": u})
		})
		r.Patch("/{id}/suspension", func(w http.ResponseWriter, req *http.Request) {
			if fb.fail.Load() {
				writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false})
				return
			}
			var body struct {
				IsSuspended bool `json:"isSuspended"`
			}
			_ = json.NewDecoder(req.Body).Decode(&body)
			u := fb.users[chi.URLParam(req, "id")]
			u.IsSuspended = body.IsSuspended
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": u})
		})
		r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "deleted"})
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	api, err := client.New(srv.URL + "/api")
	require.NoError(t, err)

	cache := querycache.New(querycache.Config{StaleTime: time.Hour})
	res := New[user](api, cache, Config{
		Name:      "users",
		Path:      "/admin/users",
		StatsPath: "stats",
		Actions: map[string]Action{
			"suspend": {Method: http.MethodPatch, Subpath: "suspension"},
		},
	})
	return res, cache, fb
}

func TestResource_Keys(t *testing.T) {
	res, _, _ := newFixture(t)

	a := res.ListKey(Values{"page": 1, "search": ""})
	b := res.ListKey(Values{"page": 1})
	assert.True(t, a.Equal(b))
	assert.True(t, a.HasPrefix(querycache.NewKey("users")))
	assert.Equal(t, querycache.NewKey("user", "u1").String(), res.DetailKey("u1").String())
	assert.Equal(t, querycache.NewKey("users", "stats").String(), res.StatsKey().String())
}

func TestResource_GetAllCachesPerDescriptor(t *testing.T) {
	res, _, fb := newFixture(t)
	ctx := context.Background()

	page, err := res.GetAll(ctx, Values{"page": 1, "limit": 10})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, 12, page.Meta.Total)
	assert.Equal(t, 2, page.Meta.TotalPages)
	assert.True(t, page.Meta.HasNext)
	assert.False(t, page.Meta.HasPrev)

	_, err = res.GetAll(ctx, Values{"limit": 10, "page": 1})
	require.NoError(t, err)
	assert.Equal(t, int32(1), fb.lists.Load())

	_, err = res.GetAll(ctx, Values{"page": 2, "limit": 10})
	require.NoError(t, err)
	assert.Equal(t, int32(2), fb.lists.Load())
}

func TestResource_ActionPatchesDetailAndInvalidatesLists(t *testing.T) {
	res, cache, fb := newFixture(t)
	ctx := context.Background()

	_, err := res.GetAll(ctx, Values{"page": 1})
	require.NoError(t, err)
	_, err = res.GetByID(ctx, "u1")
	require.NoError(t, err)

	updated, err := res.Action(ctx, "u1", "suspend", map[string]bool{"isSuspended": true})
	require.NoError(t, err)
	assert.True(t, updated.IsSuspended)

	r, ok := cache.Peek(res.ListKey(Values{"page": 1}))
	require.True(t, ok)
	assert.True(t, r.Stale)

	got, err := res.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.IsSuspended)
	assert.Equal(t, int32(1), fb.details.Load())
}

func TestResource_FailedMutationLeavesCache(t *testing.T) {
	res, cache, fb := newFixture(t)
	ctx := context.Background()
	fb.fail.Store(true)

	_, err := res.GetAll(ctx, Values{"page": 1})
	require.NoError(t, err)

	_, err = res.Action(ctx, "u1", "suspend", map[string]bool{"isSuspended": true})
	require.Error(t, err)
	assert.Equal(t, client.KindTransport, client.Normalize(err).Kind)

	r, ok := cache.Peek(res.ListKey(Values{"page": 1}))
	require.True(t, ok)
	assert.False(t, r.Stale)
}

func TestResource_UnknownActionAndNotFound(t *testing.T) {
	res, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := res.Action(ctx, "u1", "explode", nil)
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = res.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResource_DeleteRemovesDetail(t *testing.T) {
	res, cache, _ := newFixture(t)
	ctx := context.Background()

	_, err := res.GetByID(ctx, "u2")
	require.NoError(t, err)

	require.NoError(t, res.Delete(ctx, "u2"))
	_, ok := cache.Peek(res.DetailKey("u2"))
	assert.False(t, ok)
}

func TestResource_Handle(t *testing.T) {
	res, _, _ := newFixture(t)
	ctx := context.Background()

	var h Handle = res
	page, err := h.ListRecords(ctx, Values{"page": 1})
	require.NoError(t, err)
	assert.Equal(t, "Ann", page.Data[0]["name"])

	stats, err := h.StatsRecord(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats["total"])

	require.NoError(t, h.Run(ctx, "u2", "suspend", map[string]bool{"isSuspended": true}))
	assert.True(t, h.HasAction("suspend"))
}
