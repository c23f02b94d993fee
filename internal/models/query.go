package models

import "strings"

// SortOrder is the direction of a server-side sort
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListQuery holds the paging, search and sort fields every list endpoint accepts
type ListQuery struct {
	Page      int       `json:"page,omitempty"`
	Limit     int       `json:"limit,omitempty"`
	Search    string    `json:"search,omitempty"`
	SortBy    string    `json:"sortBy,omitempty"`
	SortOrder SortOrder `json:"sortOrder,omitempty"`
}

// Params returns the non-empty query parameters
func (q ListQuery) Params() map[string]any {
	p := make(map[string]any)
	if q.Page > 0 {
		p["page"] = q.Page
	}
	if q.Limit > 0 {
		p["limit"] = q.Limit
	}
	if q.Search != "" {
		p["search"] = q.Search
	}
	if q.SortBy != "" {
		p["sortBy"] = q.SortBy
	}
	if q.SortOrder != "" {
		p["sortOrder"] = string(q.SortOrder)
	}
	return p
}

// with adds a value when it is set
func with(p map[string]any, name string, value string) map[string]any {
	if value != "" {
		p[name] = value
	}
	return p
}

func withBool(p map[string]any, name string, value *bool) map[string]any {
	if value != nil {
		p[name] = *value
	}
	return p
}

// ContentSection is a titled block of prose and bullet items
type ContentSection struct {
	Title   string   `json:"title"`
	Content string   `json:"content,omitempty"`
	Items   []string `json:"items,omitempty"`
}

// AddItem appends an empty item for the user to fill in
func (s *ContentSection) AddItem() {
	s.Items = append(s.Items, "")
}

// UpdateItem replaces the item at i; out of range indices are ignored
func (s *ContentSection) UpdateItem(i int, value string) bool {
	if i < 0 || i >= len(s.Items) {
		return false
	}
	s.Items[i] = value
	return true
}

// RemoveItem splices out the item at i; later items shift down by one
func (s *ContentSection) RemoveItem(i int) bool {
	if i < 0 || i >= len(s.Items) {
		return false
	}
	items := make([]string, 0, len(s.Items)-1)
	items = append(items, s.Items[:i]...)
	s.Items = append(items, s.Items[i+1:]...)
	return true
}

// NonEmptyItems returns the items that are not blank
func (s *ContentSection) NonEmptyItems() []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, item := range s.Items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}

// StatusUpdate is the body of the status endpoints
type StatusUpdate struct {
	Status string `json:"status"`
}
