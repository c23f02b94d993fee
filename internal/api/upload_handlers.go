package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/backoffice/internal/models"
	"github.com/terra-clan/backoffice/internal/upload"
)

const megabyte = 1 << 20

type deleteUploadsRequest struct {
	URL  string   `json:"url"`
	URLs []string `json:"urls"`
}

// policy builds the upload gate for a kind from configuration
func (s *Server) policy(kind upload.Kind, multiple bool) (upload.Policy, bool) {
	switch kind {
	case upload.KindImage:
		p := upload.ImagePolicy(multiple)
		p.MaxFiles, p.MaxSizeMB = s.uploads.MaxImages, s.uploads.MaxImageSizeMB
		return p, true
	case upload.KindDocument:
		p := upload.DocumentPolicy(multiple)
		p.MaxFiles, p.MaxSizeMB = s.uploads.MaxDocuments, s.uploads.MaxDocumentSize
		return p, true
	}
	return upload.Policy{}, false
}

// handleUpload accepts a multipart form with one or more "files" parts.
// Query parameters: multiple, contextId, existing (repeated) URLs and batch,
// which sends every file in one request that succeeds or fails as a whole.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	kind := upload.Kind(chi.URLParam(r, "kind"))
	assetCtx := models.AssetContext(chi.URLParam(r, "context"))

	q := r.URL.Query()
	multiple, _ := strconv.ParseBool(q.Get("multiple"))
	p, ok := s.policy(kind, multiple)
	if !ok {
		respondError(w, r, http.StatusNotFound, "not_found", "unknown upload kind: "+string(kind))
		return
	}
	if !assetCtx.Valid() {
		respondError(w, r, http.StatusBadRequest, "validation_error", "unknown upload context: "+string(assetCtx))
		return
	}

	limit := int64(p.MaxFiles) * int64(p.MaxSizeMB+1) * megabyte
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(32 * megabyte); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		respondError(w, r, http.StatusBadRequest, "validation_error", "No files selected")
		return
	}

	files := make([]upload.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid_request", "failed to read "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid_request", "failed to read "+fh.Filename)
			return
		}
		files = append(files, upload.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	var res *upload.Result
	if batch, _ := strconv.ParseBool(q.Get("batch")); batch {
		urls, err := s.uploader.UploadBatch(r.Context(), p, assetCtx, q.Get("contextId"), q["existing"], files)
		if err != nil {
			respondUploadError(w, r, err)
			return
		}
		res = &upload.Result{
			Value:    append(append([]string(nil), q["existing"]...), urls...),
			Uploaded: len(urls),
			Failed:   len(files) - len(urls),
		}
	} else {
		var err error
		res, err = s.uploader.Upload(r.Context(), p, assetCtx, q.Get("contextId"), q["existing"], files)
		if err != nil {
			respondUploadError(w, r, err)
			return
		}
	}

	status := http.StatusOK
	message := fmt.Sprintf("Uploaded %d of %d files", res.Uploaded, len(files))
	if res.Uploaded == 0 {
		status = http.StatusBadGateway
	}
	writeResponse(w, r, status, apiResponse{
		Success: res.Uploaded > 0,
		Data:    res,
		Message: message,
	})
}

func respondUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var reject *upload.RejectError
	switch {
	case errors.As(err, &reject):
		respondError(w, r, http.StatusBadRequest, "validation_error", reject.Message)
	case errors.Is(err, upload.ErrInvalidContext):
		respondError(w, r, http.StatusBadRequest, "validation_error", err.Error())
	default:
		respondClientError(w, r, err)
	}
}

func (s *Server) handleRecentUploads(w http.ResponseWriter, r *http.Request) {
	recent := s.uploader.Recent()

	var (
		assets []models.UploadedAsset
		err    error
	)
	if c := r.URL.Query().Get("context"); c != "" {
		assets, err = recent.ByContext(r.Context(), models.AssetContext(c))
	} else {
		assets, err = recent.List(r.Context())
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", "failed to list recent uploads")
		return
	}
	respondJSON(w, r, http.StatusOK, assets)
}

func (s *Server) handleDeleteUploads(w http.ResponseWriter, r *http.Request) {
	var req deleteUploadsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	var (
		message string
		err     error
	)
	switch {
	case len(req.URLs) > 0:
		message, err = s.uploader.DeleteMany(r.Context(), req.URLs)
	case req.URL != "":
		message, err = s.uploader.Delete(r.Context(), req.URL)
	default:
		respondError(w, r, http.StatusBadRequest, "validation_error", "url or urls is required")
		return
	}
	if err != nil {
		respondClientError(w, r, err)
		return
	}
	respondMessage(w, r, http.StatusOK, nil, message)
}
