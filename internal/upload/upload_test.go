package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/backoffice/internal/models"
	"github.com/terra-clan/backoffice/pkg/client"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestCheck_Order(t *testing.T) {
	big := File{Name: "notes.txt", Data: bytes.Repeat([]byte("a"), 2*1024*1024)}

	tests := []struct {
		name     string
		policy   Policy
		existing int
		files    []File
		want     error
		message  string
	}{
		{
			name:     "count before size and type",
			policy:   Policy{Kind: KindImage, Multiple: true, MaxFiles: 2, MaxSizeMB: 1},
			existing: 1,
			files:    []File{big, big},
			want:     ErrTooManyFiles,
			message:  "Maximum 2 images allowed",
		},
		{
			name:    "single field takes one file",
			policy:  ImagePolicy(false),
			files:   []File{{Name: "a.png", Data: pngHeader}, {Name: "b.png", Data: pngHeader}},
			want:    ErrTooManyFiles,
			message: "Only one image allowed",
		},
		{
			name:    "size before type",
			policy:  Policy{Kind: KindImage, MaxSizeMB: 1},
			files:   []File{big},
			want:    ErrFileTooLarge,
			message: "Images must be less than 1MB",
		},
		{
			name:    "sniffed type",
			policy:  ImagePolicy(true),
			files:   []File{{Name: "a.png", Data: pngHeader}, {Name: "notes", Data: []byte("plain text")}},
			want:    ErrUnsupportedType,
			message: "Only image files are allowed",
		},
		{
			name:    "documents by extension",
			policy:  DocumentPolicy(true),
			files:   []File{{Name: "setup.exe", Data: []byte("MZ\x90\x00")}},
			want:    ErrUnsupportedType,
			message: "Only PDF, Word, Excel and text documents are allowed",
		},
		{
			name:    "document size",
			policy:  Policy{Kind: KindDocument, MaxSizeMB: 1},
			files:   []File{big},
			want:    ErrFileTooLarge,
			message: "Documents must be less than 1MB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.policy, tt.existing, tt.files)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestCheck_Accepts(t *testing.T) {
	assert.NoError(t, Check(ImagePolicy(true), 0, []File{{Name: "a", Data: pngHeader}}))
	assert.NoError(t, Check(ImagePolicy(false), 0, []File{{Name: "a.jpg", ContentType: "image/jpeg", Data: []byte("x")}}))
	assert.NoError(t, Check(DocumentPolicy(false), 0, []File{{Name: "Spec.PDF", Data: []byte("x")}}))
	assert.NoError(t, Check(DocumentPolicy(false), 0, []File{{Name: "blob", Data: []byte("%PDF-1.4\n%âãÏÓ\n")}}))
	assert.NoError(t, Check(ImagePolicy(true), 0, nil))
}

type assetBackend struct {
	mu      sync.Mutex
	paths   []string
	deleted []string
}

func newUploader(t *testing.T, recent RecentStore) (*Uploader, *assetBackend) {
	t.Helper()
	ab := &assetBackend{}

	r := chi.NewRouter()
	r.Post("/assets/upload/*", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseMultipartForm(10<<20))
		_, header, err := req.FormFile("file")
		require.NoError(t, err)

		ab.mu.Lock()
		ab.paths = append(ab.paths, req.URL.Path)
		ab.mu.Unlock()

		if header.Filename == "broken.png" {
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"success": false,
				"error":   map[string]any{"code": "STORAGE", "message": "Storage unavailable"},
			})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"data":    map[string]string{"url": "https://cdn.example.com/" + header.Filename},
		})
	})
	r.Delete("/assets/delete", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			FileURL string `json:"fileUrl"`
		}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		ab.mu.Lock()
		ab.deleted = append(ab.deleted, body.FileURL)
		ab.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "File deleted"})
	})
	r.Delete("/assets/delete-multiple", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			FileURLs []string `json:"fileUrls"`
		}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		ab.mu.Lock()
		ab.deleted = append(ab.deleted, body.FileURLs...)
		ab.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	api, err := client.New(srv.URL)
	require.NoError(t, err)
	return NewUploader(api, recent), ab
}

func TestUploader_PartialSuccess(t *testing.T) {
	store := NewMemoryRecentStore()
	u, ab := newUploader(t, store)
	ctx := context.Background()

	files := []File{
		{Name: "a.png", Data: pngHeader},
		{Name: "broken.png", Data: pngHeader},
		{Name: "c.png", Data: pngHeader},
	}
	res, err := u.Upload(ctx, ImagePolicy(true), models.AssetProducts, "p1", []string{"https://cdn.example.com/old.png"}, files)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Uploaded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []string{
		"https://cdn.example.com/old.png",
		"https://cdn.example.com/a.png",
		"https://cdn.example.com/c.png",
	}, res.Value)
	assert.Equal(t, "Storage unavailable", res.Files[1].Error)
	assert.NotEmpty(t, res.Files[0].ID)
	assert.NotEqual(t, res.Files[0].ID, res.Files[2].ID)

	for _, p := range ab.paths {
		assert.Equal(t, "/assets/upload/image/products/p1", p)
	}

	recent, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "https://cdn.example.com/c.png", recent[0].URL)
	assert.Equal(t, models.AssetImage, recent[0].Type)
}

func TestUploader_SingleFieldAndRejects(t *testing.T) {
	u, ab := newUploader(t, nil)
	ctx := context.Background()

	res, err := u.Upload(ctx, DocumentPolicy(false), models.AssetResumes, "", []string{"https://cdn.example.com/cv-old.pdf"}, []File{{Name: "cv.pdf", Data: []byte("%PDF-1.4")}})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/cv.pdf"}, res.Value)
	assert.Equal(t, []string{"/assets/upload/document/resumes"}, ab.paths)

	_, err = u.Upload(ctx, ImagePolicy(false), models.AssetContext("spaceships"), "", nil, []File{{Name: "a.png", Data: pngHeader}})
	assert.ErrorIs(t, err, ErrInvalidContext)

	_, err = u.Upload(ctx, ImagePolicy(false), models.AssetBlogs, "", nil, []File{{Name: "a.png", Data: pngHeader}, {Name: "b.png", Data: pngHeader}})
	var reject *RejectError
	require.ErrorAs(t, err, &reject)
	assert.Len(t, ab.paths, 1)
}

func TestUploader_Delete(t *testing.T) {
	store := NewMemoryRecentStore()
	u, ab := newUploader(t, store)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, store.Add(ctx, models.UploadedAsset{URL: "https://cdn.example.com/" + name, Context: models.AssetGeneral}))
	}

	msg, err := u.Delete(ctx, "https://cdn.example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "File deleted", msg)

	msg, err = u.DeleteMany(ctx, []string{"https://cdn.example.com/b", "https://cdn.example.com/c"})
	require.NoError(t, err)
	assert.Equal(t, "Files deleted successfully", msg)

	assert.Len(t, ab.deleted, 3)
	left, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestMemoryRecentStore_Cap(t *testing.T) {
	store := NewMemoryRecentStore()
	ctx := context.Background()

	for i := 0; i < RecentLimit+5; i++ {
		ac := models.AssetProducts
		if i%2 == 0 {
			ac = models.AssetBlogs
		}
		require.NoError(t, store.Add(ctx, models.UploadedAsset{URL: fmt.Sprintf("u%d", i), Context: ac}))
	}

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, RecentLimit)
	assert.Equal(t, fmt.Sprintf("u%d", RecentLimit+4), all[0].URL)

	blogs, err := store.ByContext(ctx, models.AssetBlogs)
	require.NoError(t, err)
	for _, a := range blogs {
		assert.Equal(t, models.AssetBlogs, a.Context)
	}

	require.NoError(t, store.Clear(ctx))
	all, _ = store.List(ctx)
	assert.Empty(t, all)
}

func TestRedisRecentStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisRecentStore(rdb, "")
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < RecentLimit+3; i++ {
		require.NoError(t, store.Add(ctx, models.UploadedAsset{
			URL:        fmt.Sprintf("https://cdn.example.com/%d.png", i),
			Type:       models.AssetImage,
			Context:    models.AssetCareers,
			UploadedAt: at.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, RecentLimit)
	assert.Equal(t, "https://cdn.example.com/52.png", all[0].URL)
	assert.True(t, all[0].UploadedAt.Equal(at.Add(52*time.Minute)))

	require.NoError(t, store.Remove(ctx, "https://cdn.example.com/52.png"))
	all, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, RecentLimit-1)
	assert.Equal(t, "https://cdn.example.com/51.png", all[0].URL)

	careers, err := store.ByContext(ctx, models.AssetCareers)
	require.NoError(t, err)
	assert.Len(t, careers, RecentLimit-1)
	none, err := store.ByContext(ctx, models.AssetBlogs)
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, store.Clear(ctx))
	assert.False(t, mr.Exists("backoffice:recent-uploads"))
}
