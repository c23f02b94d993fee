package table

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/terra-clan/backoffice/pkg/client"
)

// Descriptor is the server-side page request derived from table state
type Descriptor struct {
	Page      int            `json:"page"`
	Limit     int            `json:"limit"`
	Search    string         `json:"search,omitempty"`
	SortBy    string         `json:"sortBy,omitempty"`
	SortOrder string         `json:"sortOrder,omitempty"`
	Filters   map[string]any `json:"filters,omitempty"`
}

var reserved = map[string]bool{
	"page": true, "limit": true, "search": true, "sortBy": true, "sortOrder": true,
}

// Params flattens the descriptor into query parameters
func (d Descriptor) Params() map[string]any {
	p := map[string]any{
		"page":  d.Page,
		"limit": d.Limit,
	}
	if d.Search != "" {
		p["search"] = d.Search
	}
	if d.SortBy != "" {
		p["sortBy"] = d.SortBy
		p["sortOrder"] = d.SortOrder
	}
	for k, v := range d.Filters {
		if reserved[k] {
			continue
		}
		p[k] = v
	}
	return p
}

// Values yields the query values, omitting empty fields
func (d Descriptor) Values() url.Values {
	return client.Query(d.Params())
}

// ParseDescriptor reads a descriptor back from query values. Unknown keys
// become filters; keys prefixed "filter." are accepted as well.
func ParseDescriptor(q url.Values, defaultLimit int) Descriptor {
	if defaultLimit <= 0 {
		defaultLimit = DefaultPageSize
	}
	d := Descriptor{
		Page:      atoiDefault(q.Get("page"), 1),
		Limit:     atoiDefault(q.Get("limit"), defaultLimit),
		Search:    strings.TrimSpace(q.Get("search")),
		SortBy:    q.Get("sortBy"),
		SortOrder: strings.ToLower(q.Get("sortOrder")),
	}
	if d.Page < 1 {
		d.Page = 1
	}
	if d.Limit < 1 {
		d.Limit = defaultLimit
	}
	if d.SortBy != "" && d.SortOrder != "asc" && d.SortOrder != "desc" {
		d.SortOrder = "asc"
	}
	if d.SortBy == "" {
		d.SortOrder = ""
	}

	for k, vs := range q {
		if reserved[k] || len(vs) == 0 || vs[0] == "" {
			continue
		}
		if d.Filters == nil {
			d.Filters = make(map[string]any)
		}
		d.Filters[strings.TrimPrefix(k, "filter.")] = vs[0]
	}
	return d
}

// ToState rebuilds table state from a descriptor
func (d Descriptor) ToState(base State) State {
	s := base.Clone()
	s.Pagination = Pagination{PageIndex: d.Page - 1, PageSize: d.Limit}
	if s.Pagination.PageIndex < 0 {
		s.Pagination.PageIndex = 0
	}
	s.GlobalFilter = d.Search
	s.Sorting = nil
	if d.SortBy != "" {
		s.Sorting = []Sort{{ID: d.SortBy, Desc: d.SortOrder == "desc"}}
	}
	s.ColumnFilters = nil
	keys := make([]string, 0, len(d.Filters))
	for k := range d.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.ColumnFilters = append(s.ColumnFilters, Filter{ID: k, Value: d.Filters[k]})
	}
	return s
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
