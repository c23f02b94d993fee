package resource

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/terra-clan/backoffice/pkg/client"
)

// Params yields the query parameters of a list request
type Params interface {
	Params() map[string]any
}

// Values is a ready-made parameter map
type Values map[string]any

func (v Values) Params() map[string]any {
	return v
}

// Record is an entity in its wire shape
type Record = map[string]any

// Meta is the pagination block of a list response
type Meta struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Page is one page of a list
type Page[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

// DecodePage reads a paginated envelope. Missing navigation flags are
// derived from page and totalPages.
func DecodePage[T any](env *client.Envelope) (*Page[T], error) {
	page := &Page[T]{Data: []T{}}
	if err := env.DecodeData(&page.Data); err != nil && !errors.Is(err, client.ErrNoData) {
		return nil, err
	}
	if err := env.DecodeMeta(&page.Meta); err != nil {
		return nil, err
	}

	m := &page.Meta
	if m.TotalPages == 0 && m.Limit > 0 {
		m.TotalPages = (m.Total + m.Limit - 1) / m.Limit
	}
	if !m.HasNext && m.Page > 0 && m.Page < m.TotalPages {
		m.HasNext = true
	}
	if !m.HasPrev && m.Page > 1 {
		m.HasPrev = true
	}
	return page, nil
}

// Decode reads the data payload of an envelope into T
func Decode[T any](env *client.Envelope) (*T, error) {
	var out T
	if err := env.DecodeData(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToRecords converts typed rows into their wire shape
func ToRecords[T any](page *Page[T]) (*Page[Record], error) {
	b, err := json.Marshal(page.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rows: %w", err)
	}
	out := &Page[Record]{Meta: page.Meta}
	if err := json.Unmarshal(b, &out.Data); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	if out.Data == nil {
		out.Data = []Record{}
	}
	return out, nil
}

// ToRecord converts any value into its wire shape
func ToRecord(v any) (Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	var out Record
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return out, nil
}

// normalize drops empty values so equivalent filters share one cache key
func normalize(p Params) map[string]any {
	out := make(map[string]any)
	if p == nil {
		return out
	}
	for k, v := range p.Params() {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			if val == "" {
				continue
			}
		case []string:
			if len(val) == 0 {
				continue
			}
		}
		out[k] = v
	}
	return out
}
