package views

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/backoffice/internal/table"
)

//go:embed presets/*.yaml
var defaults embed.FS

// ErrPresetNotFound is returned for a resource without a preset
var ErrPresetNotFound = errors.New("preset not found")

// Column describes one column of a preset
type Column struct {
	ID          string `yaml:"id" json:"id"`
	Header      string `yaml:"header" json:"header"`
	Field       string `yaml:"field" json:"field"`
	Format      string `yaml:"format,omitempty" json:"format,omitempty"`
	Sortable    bool   `yaml:"sortable,omitempty" json:"sortable,omitempty"`
	Hideable    bool   `yaml:"hideable,omitempty" json:"hideable,omitempty"`
	Hidden      bool   `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	FilterParam string `yaml:"filter_param,omitempty" json:"filterParam,omitempty"`
}

// Sort is the default ordering of a preset
type Sort struct {
	Field string `yaml:"field" json:"field"`
	Order string `yaml:"order" json:"order"`
}

// Preset is the table layout of one resource
type Preset struct {
	Resource    string   `yaml:"resource" json:"resource"`
	Title       string   `yaml:"title" json:"title"`
	PageSize    int      `yaml:"page_size" json:"pageSize"`
	DefaultSort *Sort    `yaml:"default_sort,omitempty" json:"defaultSort,omitempty"`
	Columns     []Column `yaml:"columns" json:"columns"`
}

// Sorting returns the table sorting of the default sort
func (p *Preset) Sorting() []table.Sort {
	if p.DefaultSort == nil || p.DefaultSort.Field == "" {
		return nil
	}
	return []table.Sort{{ID: p.DefaultSort.Field, Desc: p.DefaultSort.Order == "desc"}}
}

// Loader manages loading and caching of table presets
type Loader struct {
	mu      sync.RWMutex
	presets map[string]*Preset
}

// NewLoader creates an empty loader
func NewLoader() *Loader {
	return &Loader{presets: make(map[string]*Preset)}
}

// LoadDefaults loads the presets compiled into the binary
func (l *Loader) LoadDefaults() error {
	sub, err := fs.Sub(defaults, "presets")
	if err != nil {
		return err
	}
	return l.LoadFS(sub)
}

// LoadFromDir loads every YAML preset in dir, replacing presets of the
// same resource
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading table presets from directory", "dir", dir)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("failed to open preset dir: %w", err)
	}
	return l.LoadFS(os.DirFS(dir))
}

// LoadFS loads every YAML preset at the root of fsys
func (l *Loader) LoadFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("failed to read presets: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			slog.Warn("failed to read preset", "file", entry.Name(), "error", err)
			continue
		}
		if err := l.Load(data); err != nil {
			slog.Warn("failed to load preset", "file", entry.Name(), "error", err)
			continue
		}
		loaded++
	}

	slog.Info("table presets loaded", "count", loaded, "total_files", len(entries))
	return nil
}

// Load parses and registers one YAML preset
func (l *Loader) Load(data []byte) error {
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if p.Resource == "" {
		return fmt.Errorf("preset resource is required")
	}
	if len(p.Columns) == 0 {
		return fmt.Errorf("preset %s has no columns", p.Resource)
	}

	seen := make(map[string]bool, len(p.Columns))
	for i := range p.Columns {
		c := &p.Columns[i]
		if c.Field == "" {
			c.Field = c.ID
		}
		if c.ID == "" {
			c.ID = c.Field
		}
		if c.ID == "" {
			return fmt.Errorf("preset %s: column %d needs an id or field", p.Resource, i)
		}
		if seen[c.ID] {
			return fmt.Errorf("preset %s: duplicate column %s", p.Resource, c.ID)
		}
		seen[c.ID] = true
		if c.Header == "" {
			c.Header = c.ID
		}
	}

	if p.PageSize <= 0 {
		p.PageSize = table.DefaultPageSize
	}
	if p.DefaultSort != nil && p.DefaultSort.Order != "desc" {
		p.DefaultSort.Order = "asc"
	}
	if p.Title == "" {
		p.Title = p.Resource
	}

	l.mu.Lock()
	l.presets[p.Resource] = &p
	l.mu.Unlock()

	slog.Debug("table preset loaded", "resource", p.Resource, "columns", len(p.Columns))
	return nil
}

// Get retrieves a preset by resource name
func (l *Loader) Get(resource string) (*Preset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.presets[resource]
	if !ok {
		return nil, fmt.Errorf("%s: %w", resource, ErrPresetNotFound)
	}
	return p, nil
}

// List returns all loaded presets ordered by resource
func (l *Loader) List() []*Preset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Preset, 0, len(l.presets))
	for _, p := range l.presets {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Resource < result[j].Resource })
	return result
}
