package upload

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/terra-clan/backoffice/internal/models"
	"github.com/terra-clan/backoffice/pkg/client"
)

var uploadFiles = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "backoffice",
	Subsystem: "upload",
	Name:      "files_total",
	Help:      "Uploaded files by kind and outcome.",
}, []string{"kind", "outcome"})

// FileResult is the outcome of one file of a batch
type FileResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
	Err   error  `json:"-"`
}

// Result is the outcome of a batch. Value is the field's new value: the
// existing URLs plus the new ones for multi-file fields, the first new URL
// for single-file fields.
type Result struct {
	Value    []string     `json:"value"`
	Files    []FileResult `json:"files"`
	Uploaded int          `json:"uploaded"`
	Failed   int          `json:"failed"`
}

// Uploader sends picked files to the asset endpoints and records what
// landed in the recent uploads
type Uploader struct {
	api    *client.Client
	recent RecentStore
	now    func() time.Time
}

// NewUploader creates an uploader; recent may be nil
func NewUploader(api *client.Client, recent RecentStore) *Uploader {
	if recent == nil {
		recent = NewMemoryRecentStore()
	}
	return &Uploader{api: api, recent: recent, now: time.Now}
}

// Recent returns the recent uploads store
func (u *Uploader) Recent() RecentStore {
	return u.recent
}

// Upload gates the batch with Check, then uploads every file concurrently.
// Failed files are reported per file; the rest still land.
func (u *Uploader) Upload(ctx context.Context, p Policy, assetCtx models.AssetContext, contextID string, existing []string, files []File) (*Result, error) {
	if !assetCtx.Valid() {
		return nil, fmt.Errorf("%s: %w", assetCtx, ErrInvalidContext)
	}
	if err := Check(p, len(existing), files); err != nil {
		return nil, err
	}

	results := make([]FileResult, len(files))
	var wg sync.WaitGroup
	for i, f := range files {
		results[i] = FileResult{ID: uuid.NewString(), Name: f.Name}
		wg.Add(1)
		go func(i int, f File) {
			defer wg.Done()
			results[i].URL, results[i].Err = u.uploadOne(ctx, p.Kind, assetCtx, contextID, f)
		}(i, f)
	}
	wg.Wait()

	res := &Result{Files: results}
	var landed []string
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			r.Error = failureMessage(r.Name, r.Err)
			res.Failed++
			uploadFiles.WithLabelValues(string(p.Kind), "failed").Inc()
			slog.Warn("upload failed", "file", r.Name, "upload_id", r.ID, "error", r.Err)
			continue
		}
		res.Uploaded++
		landed = append(landed, r.URL)
		uploadFiles.WithLabelValues(string(p.Kind), "uploaded").Inc()
		u.remember(ctx, r.URL, p.Kind, assetCtx)
	}

	switch {
	case p.Multiple:
		res.Value = append(append([]string(nil), existing...), landed...)
	case len(landed) > 0:
		res.Value = landed[:1]
	default:
		res.Value = append([]string(nil), existing...)
	}

	slog.Info("upload batch finished",
		"context", assetCtx,
		"kind", p.Kind,
		"uploaded", res.Uploaded,
		"failed", res.Failed,
	)
	return res, nil
}

// UploadBatch sends every file in one request to the multi-file endpoint.
// The batch succeeds or fails as a whole.
func (u *Uploader) UploadBatch(ctx context.Context, p Policy, assetCtx models.AssetContext, contextID string, existing []string, files []File) ([]string, error) {
	if !assetCtx.Valid() {
		return nil, fmt.Errorf("%s: %w", assetCtx, ErrInvalidContext)
	}
	p.Multiple = true
	if err := Check(p, len(existing), files); err != nil {
		return nil, err
	}

	parts := make([]client.FilePart, len(files))
	for i, f := range files {
		parts[i] = client.FilePart{Name: f.Name, ContentType: ContentType(f), Content: bytes.NewReader(f.Data)}
	}

	env, err := u.api.Upload(ctx, endpoint(p.Kind, true, assetCtx, contextID), "files", parts)
	if err != nil {
		uploadFiles.WithLabelValues(string(p.Kind), "failed").Add(float64(len(files)))
		return nil, err
	}

	var out models.UploadResult
	if err := env.DecodeData(&out); err != nil {
		return nil, fmt.Errorf("failed to decode upload result: %w", err)
	}

	urls := out.All()
	uploadFiles.WithLabelValues(string(p.Kind), "uploaded").Add(float64(len(urls)))
	for _, link := range urls {
		u.remember(ctx, link, p.Kind, assetCtx)
	}
	return urls, nil
}

func (u *Uploader) uploadOne(ctx context.Context, kind Kind, assetCtx models.AssetContext, contextID string, f File) (string, error) {
	part := client.FilePart{Name: f.Name, ContentType: ContentType(f), Content: bytes.NewReader(f.Data)}

	env, err := u.api.Upload(ctx, endpoint(kind, false, assetCtx, contextID), "file", []client.FilePart{part})
	if err != nil {
		return "", err
	}

	var out models.UploadResult
	if err := env.DecodeData(&out); err != nil {
		return "", fmt.Errorf("failed to decode upload result: %w", err)
	}
	urls := out.All()
	if len(urls) == 0 {
		return "", fmt.Errorf("upload of %s returned no url", f.Name)
	}
	return urls[0], nil
}

func (u *Uploader) remember(ctx context.Context, link string, kind Kind, assetCtx models.AssetContext) {
	asset := models.UploadedAsset{
		URL:        link,
		Type:       models.AssetType(kind),
		Context:    assetCtx,
		UploadedAt: u.now().UTC(),
	}
	if err := u.recent.Add(ctx, asset); err != nil {
		slog.Warn("failed to record recent upload", "url", link, "error", err)
	}
}

// Delete removes an uploaded file and drops it from the recent uploads
func (u *Uploader) Delete(ctx context.Context, fileURL string) (string, error) {
	env, err := u.api.Delete(ctx, "/assets/delete", map[string]string{"fileUrl": fileURL})
	if err != nil {
		return "", err
	}
	if err := u.recent.Remove(ctx, fileURL); err != nil {
		slog.Warn("failed to drop recent upload", "url", fileURL, "error", err)
	}
	return messageOr(env, "File deleted successfully"), nil
}

// DeleteMany removes several uploaded files in one request
func (u *Uploader) DeleteMany(ctx context.Context, fileURLs []string) (string, error) {
	if len(fileURLs) == 0 {
		return "", nil
	}
	env, err := u.api.Delete(ctx, "/assets/delete-multiple", map[string][]string{"fileUrls": fileURLs})
	if err != nil {
		return "", err
	}
	for _, link := range fileURLs {
		if err := u.recent.Remove(ctx, link); err != nil {
			slog.Warn("failed to drop recent upload", "url", link, "error", err)
		}
	}
	return messageOr(env, "Files deleted successfully"), nil
}

// endpoint builds /assets/upload/{kind}[s]/{context}[/{contextId}]
func endpoint(kind Kind, multiple bool, assetCtx models.AssetContext, contextID string) string {
	seg := string(kind)
	if multiple {
		seg += "s"
	}
	path := fmt.Sprintf("/assets/upload/%s/%s", seg, assetCtx)
	if contextID != "" {
		path += "/" + url.PathEscape(contextID)
	}
	return path
}

func failureMessage(name string, err error) string {
	if msg := client.Message(err); msg != client.FallbackMessage {
		return msg
	}
	return fmt.Sprintf("Failed to upload %s", name)
}

func messageOr(env *client.Envelope, def string) string {
	if env != nil && env.Message != "" {
		return env.Message
	}
	return def
}
