package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/terra-clan/backoffice/internal/table"
)

// listOptions are the list command flags
type listOptions struct {
	Page    int
	Limit   int
	Search  string
	Sort    string
	Order   string
	Filters []string
	Hidden  []string
}

// query turns list flags into the console's view query
func (o listOptions) query() (url.Values, error) {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if s := strings.TrimSpace(o.Search); s != "" {
		q.Set("search", s)
	}
	if o.Sort != "" {
		q.Set("sortBy", o.Sort)
		order := strings.ToLower(o.Order)
		if order != "desc" {
			order = "asc"
		}
		q.Set("sortOrder", order)
	}
	for _, f := range o.Filters {
		k, v, ok := strings.Cut(f, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid filter %q, want key=value", f)
		}
		q.Set(k, v)
	}
	if len(o.Hidden) > 0 {
		q.Set("hidden", strings.Join(o.Hidden, ","))
	}
	return q, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderView prints a table view, failing on an error view
func renderView(w io.Writer, v table.View[map[string]any]) error {
	if v.Status == table.StatusError {
		return errors.New(v.Message)
	}
	return table.RenderText(w, v)
}
