package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/terra-clan/backoffice/internal/resource"
	"github.com/terra-clan/backoffice/internal/table"
)

// TableColumns builds the table columns of a preset over wire records
func (p *Preset) TableColumns() []table.Column[resource.Record] {
	cols := make([]table.Column[resource.Record], 0, len(p.Columns))
	for _, c := range p.Columns {
		c := c
		cols = append(cols, table.Column[resource.Record]{
			ID:          c.ID,
			Header:      c.Header,
			Sortable:    c.Sortable,
			Hideable:    c.Hideable,
			FilterParam: c.FilterParam,
			Cell: func(row resource.Record) string {
				return Format(Lookup(row, c.Field), c.Format)
			},
		})
	}
	return cols
}

// Engine creates a table engine for the preset over a resource handle
func (p *Preset) Engine(h resource.Handle, debounce time.Duration) *table.Engine[resource.Record] {
	engine := table.NewEngine(table.Options[resource.Record]{
		Columns:  p.TableColumns(),
		RowID:    RowID,
		PageSize: p.PageSize,
		Sorting:  p.Sorting(),
		Debounce: debounce,
		Loader: func(ctx context.Context, d table.Descriptor) (*resource.Page[resource.Record], error) {
			return h.ListRecords(ctx, d)
		},
	})
	for _, c := range p.Columns {
		if c.Hidden {
			engine.SetVisibility(c.ID, false)
		}
	}
	return engine
}

// RowID is the id field of a record
func RowID(row resource.Record) string {
	return Format(row["id"], "")
}

// Lookup resolves a dotted field path in a record. Numeric segments index
// into arrays.
func Lookup(rec resource.Record, path string) any {
	var cur any = rec
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			cur = node[part]
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			cur = node[i]
		default:
			return nil
		}
	}
	return cur
}

// Format renders a cell value
func Format(v any, format string) string {
	if v == nil {
		return ""
	}

	switch format {
	case "date", "datetime":
		s, ok := v.(string)
		if !ok {
			break
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return s
		}
		if format == "date" {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.DateTime)
	case "count":
		if list, ok := v.([]any); ok {
			return strconv.Itoa(len(list))
		}
	case "yesno":
		if b, ok := v.(bool); ok {
			if b {
				return "yes"
			}
			return "no"
		}
	}

	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, Format(item, ""))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}
