package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// FilePart is one file of a multipart upload
type FilePart struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// Upload posts files as a multipart form under the given field name
func (c *Client) Upload(ctx context.Context, path, field string, files []FilePart) (*Envelope, error) {
	return c.UploadQuery(ctx, path, nil, field, files)
}

// UploadQuery is Upload with query parameters
func (c *Client) UploadQuery(ctx context.Context, path string, query url.Values, field string, files []FilePart) (*Envelope, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(field), escapeQuotes(f.Name)))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("failed to create form part: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return c.send(ctx, http.MethodPost, path, query, &buf, w.FormDataContentType())
}
