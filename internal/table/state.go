package table

import "strings"

// Sort is one sort criterion
type Sort struct {
	ID   string `json:"id"`
	Desc bool   `json:"desc"`
}

// Filter is a column filter. Multi-select filters hold a slice; only its
// first element reaches the server.
type Filter struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// Pagination is the zero-based page window
type Pagination struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
}

// State is everything the user can change about a table
type State struct {
	Sorting          []Sort          `json:"sorting"`
	ColumnFilters    []Filter        `json:"columnFilters"`
	ColumnVisibility map[string]bool `json:"columnVisibility"`
	RowSelection     map[string]bool `json:"rowSelection"`
	GlobalFilter     string          `json:"globalFilter"`
	Pagination       Pagination      `json:"pagination"`
}

// DefaultPageSize is used when no page size is configured
const DefaultPageSize = 10

// NewState returns an empty state with the given page size
func NewState(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{
		ColumnVisibility: map[string]bool{},
		RowSelection:     map[string]bool{},
		Pagination:       Pagination{PageSize: pageSize},
	}
}

// Clone returns a deep copy
func (s State) Clone() State {
	out := s
	out.Sorting = append([]Sort(nil), s.Sorting...)
	out.ColumnFilters = append([]Filter(nil), s.ColumnFilters...)
	out.ColumnVisibility = make(map[string]bool, len(s.ColumnVisibility))
	for k, v := range s.ColumnVisibility {
		out.ColumnVisibility[k] = v
	}
	out.RowSelection = make(map[string]bool, len(s.RowSelection))
	for k, v := range s.RowSelection {
		out.RowSelection[k] = v
	}
	return out
}

// Descriptor derives the request descriptor. search is the debounced
// global filter, not the raw input.
func (s State) Descriptor(search string) Descriptor {
	d := Descriptor{
		Page:   s.Pagination.PageIndex + 1,
		Limit:  s.Pagination.PageSize,
		Search: strings.TrimSpace(search),
	}
	if d.Limit <= 0 {
		d.Limit = DefaultPageSize
	}
	if len(s.Sorting) > 0 {
		d.SortBy = s.Sorting[0].ID
		d.SortOrder = "asc"
		if s.Sorting[0].Desc {
			d.SortOrder = "desc"
		}
	}
	for _, f := range s.ColumnFilters {
		v := filterValue(f.Value)
		if v == nil {
			continue
		}
		if d.Filters == nil {
			d.Filters = make(map[string]any)
		}
		d.Filters[f.ID] = v
	}
	return d
}

// IsVisible reports whether a column is shown; columns are visible unless
// explicitly hidden
func (s State) IsVisible(id string) bool {
	v, ok := s.ColumnVisibility[id]
	return !ok || v
}

func filterValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return val
	case []string:
		if len(val) == 0 || val[0] == "" {
			return nil
		}
		return val[0]
	case []any:
		if len(val) == 0 {
			return nil
		}
		return filterValue(val[0])
	}
	return v
}
