package views

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/backoffice/internal/resource"
	"github.com/terra-clan/backoffice/internal/table"
)

func TestLoadDefaults(t *testing.T) {
	loader := NewLoader()
	require.NoError(t, loader.LoadDefaults())

	presets := loader.List()
	require.Len(t, presets, 10)
	assert.Equal(t, "admins", presets[0].Resource)

	users, err := loader.Get("users")
	require.NoError(t, err)
	assert.Equal(t, 10, users.PageSize)
	assert.Equal(t, []table.Sort{{ID: "createdAt", Desc: true}}, users.Sorting())

	products, err := loader.Get("products")
	require.NoError(t, err)
	assert.Nil(t, products.Sorting())

	_, err = loader.Get("warehouses")
	assert.ErrorIs(t, err, ErrPresetNotFound)
}

func TestLoadFromDir_Overrides(t *testing.T) {
	dir := t.TempDir()
	override := `
resource: users
title: Customers
page_size: 25
columns:
  - id: email
    header: Email
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.yaml"), []byte(override), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("resource: [\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	loader := NewLoader()
	require.NoError(t, loader.LoadDefaults())
	require.NoError(t, loader.LoadFromDir(dir))

	users, err := loader.Get("users")
	require.NoError(t, err)
	assert.Equal(t, "Customers", users.Title)
	assert.Equal(t, 25, users.PageSize)
	require.Len(t, users.Columns, 1)
	assert.Equal(t, "email", users.Columns[0].Field)

	assert.Error(t, loader.LoadFromDir(filepath.Join(dir, "missing")))
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing resource", "columns:\n  - id: name\n"},
		{"no columns", "resource: users\n"},
		{"duplicate column", "resource: users\ncolumns:\n  - id: name\n  - id: name\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, NewLoader().Load([]byte(tt.yaml)))
		})
	}

	loader := NewLoader()
	require.NoError(t, loader.Load([]byte("resource: leads\ndefault_sort:\n  field: email\ncolumns:\n  - field: email\n")))
	p, err := loader.Get("leads")
	require.NoError(t, err)
	assert.Equal(t, "email", p.Columns[0].ID)
	assert.Equal(t, "email", p.Columns[0].Header)
	assert.Equal(t, table.DefaultPageSize, p.PageSize)
	assert.Equal(t, "asc", p.DefaultSort.Order)
}

func TestLookupAndFormat(t *testing.T) {
	rec := resource.Record{
		"id":           "q1",
		"customerInfo": map[string]any{"name": "Acme"},
		"items":        []any{map[string]any{"quantity": float64(2)}, map[string]any{"quantity": float64(5)}},
		"tags":         []any{"mro", "hydraulics"},
		"isActive":     true,
		"createdAt":    "2024-03-05T10:20:30Z",
	}

	assert.Equal(t, "Acme", Lookup(rec, "customerInfo.name"))
	assert.Equal(t, float64(5), Lookup(rec, "items.1.quantity"))
	assert.Nil(t, Lookup(rec, "items.9.quantity"))
	assert.Nil(t, Lookup(rec, "customerInfo.name.first"))

	assert.Equal(t, "2", Format(Lookup(rec, "items"), "count"))
	assert.Equal(t, "mro, hydraulics", Format(rec["tags"], ""))
	assert.Equal(t, "yes", Format(rec["isActive"], "yesno"))
	assert.Equal(t, "2024-03-05", Format(rec["createdAt"], "date"))
	assert.Equal(t, "2024-03-05 10:20:30", Format(rec["createdAt"], "datetime"))
	assert.Equal(t, "not a date", Format("not a date", "date"))
	assert.Equal(t, "2.5", Format(2.5, ""))
	assert.Equal(t, "", Format(nil, "date"))
	assert.Equal(t, "q1", RowID(rec))
}

type fakeHandle struct {
	resource.Handle
	got  table.Descriptor
	rows []resource.Record
}

func (f *fakeHandle) ListRecords(ctx context.Context, p resource.Params) (*resource.Page[resource.Record], error) {
	f.got = p.(table.Descriptor)
	return &resource.Page[resource.Record]{
		Data: f.rows,
		Meta: resource.Meta{Total: len(f.rows), Page: 1, Limit: 10, TotalPages: 1},
	}, nil
}

func TestPresetEngine(t *testing.T) {
	loader := NewLoader()
	require.NoError(t, loader.LoadDefaults())
	p, err := loader.Get("products")
	require.NoError(t, err)

	h := &fakeHandle{rows: []resource.Record{
		{"id": "p1", "name": "Seal kit", "partNumber": "SK-1", "brand": "Parker",
			"categorySlug": "seals", "availability": map[string]any{"status": "in-stock"},
			"images": []any{"a", "b"}, "isActive": true},
	}}

	engine := p.Engine(h, 0)
	defer engine.Close()
	require.NoError(t, engine.Refresh(context.Background()))

	assert.Equal(t, 1, h.got.Page)
	assert.Equal(t, 10, h.got.Limit)

	view := engine.View()
	assert.Equal(t, table.StatusReady, view.Status)
	assert.Equal(t, []string{"images"}, view.Hidden)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "p1", view.Rows[0].ID)
	assert.Equal(t, []string{"Seal kit", "SK-1", "Parker", "seals", "in-stock", "yes"}, view.Rows[0].Cells)
}
