package table

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/terra-clan/backoffice/internal/resource"
	"github.com/terra-clan/backoffice/pkg/client"
)

// Column describes one table column
type Column[T any] struct {
	ID       string
	Header   string
	Cell     func(row T) string
	Sortable bool
	Hideable bool
	// FilterParam is the query parameter the column filter is sent as;
	// defaults to ID
	FilterParam string
}

// Loader fetches one page for a descriptor
type Loader[T any] func(ctx context.Context, d Descriptor) (*resource.Page[T], error)

// Options configure an engine
type Options[T any] struct {
	Columns  []Column[T]
	RowID    func(row T) string
	Loader   Loader[T]
	PageSize int
	Sorting  []Sort
	Debounce time.Duration
	// OnChange receives every state change
	OnChange func(State)
}

// Status of the current view
type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusEmpty   Status = "empty"
	StatusReady   Status = "ready"
)

// EmptyMessage is shown when a page has no rows
const EmptyMessage = "No results."

// Engine drives a server-paginated table. It never sorts, filters or
// slices rows itself; every state change becomes a new descriptor.
type Engine[T any] struct {
	columns   []Column[T]
	rowID     func(T) string
	load      Loader[T]
	onChange  func(State)
	debouncer *Debouncer

	mu      sync.Mutex
	ctx     context.Context
	state   State
	search  string
	rows    []T
	meta    resource.Meta
	status  Status
	message string
	seq     uint64
	landed  uint64
}

// NewEngine creates an engine
func NewEngine[T any](opts Options[T]) *Engine[T] {
	state := NewState(opts.PageSize)
	state.Sorting = append([]Sort(nil), opts.Sorting...)

	return &Engine[T]{
		columns:   opts.Columns,
		rowID:     opts.RowID,
		load:      opts.Loader,
		onChange:  opts.OnChange,
		debouncer: NewDebouncer(opts.Debounce),
		state:     state,
		status:    StatusLoading,
	}
}

// Bind makes state changes fetch automatically under ctx
func (e *Engine[T]) Bind(ctx context.Context) {
	e.mu.Lock()
	e.ctx = ctx
	e.mu.Unlock()
}

// Close stops any pending debounced search
func (e *Engine[T]) Close() {
	e.debouncer.Stop()
}

// State returns a copy of the current state
func (e *Engine[T]) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Descriptor returns the request the current state maps to
func (e *Engine[T]) Descriptor() Descriptor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.descriptorLocked()
}

// SetState replaces the whole state, as when restoring from a URL
func (e *Engine[T]) SetState(s State) {
	e.update(func(st *State) {
		*st = s.Clone()
		e.search = s.GlobalFilter
	})
}

// SetPage moves to a zero-based page
func (e *Engine[T]) SetPage(index int) {
	if index < 0 {
		index = 0
	}
	e.update(func(s *State) {
		s.Pagination.PageIndex = index
	})
}

// NextPage advances one page when possible
func (e *Engine[T]) NextPage() {
	e.mu.Lock()
	next := e.state.Pagination.PageIndex + 1
	ok := next < e.pageCountLocked()
	e.mu.Unlock()
	if ok {
		e.SetPage(next)
	}
}

// PrevPage goes back one page when possible
func (e *Engine[T]) PrevPage() {
	e.mu.Lock()
	prev := e.state.Pagination.PageIndex - 1
	e.mu.Unlock()
	if prev >= 0 {
		e.SetPage(prev)
	}
}

// SetPageSize changes the page size and returns to the first page
func (e *Engine[T]) SetPageSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	e.update(func(s *State) {
		s.Pagination.PageSize = size
		s.Pagination.PageIndex = 0
	})
}

// SetSorting replaces the sort criteria
func (e *Engine[T]) SetSorting(sorting ...Sort) {
	e.update(func(s *State) {
		s.Sorting = append([]Sort(nil), sorting...)
	})
}

// ToggleSort cycles a column through ascending, descending and unsorted
func (e *Engine[T]) ToggleSort(id string) {
	e.update(func(s *State) {
		switch {
		case len(s.Sorting) == 0 || s.Sorting[0].ID != id:
			s.Sorting = []Sort{{ID: id}}
		case !s.Sorting[0].Desc:
			s.Sorting = []Sort{{ID: id, Desc: true}}
		default:
			s.Sorting = nil
		}
	})
}

// SetColumnFilter sets or clears (nil value) a column filter and returns
// to the first page
func (e *Engine[T]) SetColumnFilter(id string, value any) {
	e.update(func(s *State) {
		filters := s.ColumnFilters[:0:0]
		for _, f := range s.ColumnFilters {
			if f.ID != id {
				filters = append(filters, f)
			}
		}
		if filterValue(value) != nil {
			filters = append(filters, Filter{ID: id, Value: value})
		}
		s.ColumnFilters = filters
		s.Pagination.PageIndex = 0
	})
}

// ResetFilters clears every column filter and the search
func (e *Engine[T]) ResetFilters() {
	e.debouncer.Stop()
	e.update(func(s *State) {
		s.ColumnFilters = nil
		s.GlobalFilter = ""
		e.search = ""
		s.Pagination.PageIndex = 0
	})
}

// SetGlobalFilter records the search input; the request follows once the
// input has been quiet for the debounce delay
func (e *Engine[T]) SetGlobalFilter(value string) {
	e.mu.Lock()
	e.state.GlobalFilter = value
	state := e.state.Clone()
	e.mu.Unlock()

	if e.onChange != nil {
		e.onChange(state)
	}

	e.debouncer.Do(func() {
		e.ApplySearch(value)
	})
}

// ApplySearch applies a search term immediately
func (e *Engine[T]) ApplySearch(value string) {
	e.update(func(s *State) {
		if e.search == value {
			return
		}
		e.search = value
		s.GlobalFilter = value
		s.Pagination.PageIndex = 0
	})
}

// SetVisibility shows or hides a hideable column
func (e *Engine[T]) SetVisibility(id string, visible bool) {
	for _, c := range e.columns {
		if c.ID == id && !c.Hideable {
			return
		}
	}
	e.mutateState(func(s *State) {
		s.ColumnVisibility[id] = visible
	}, false)
}

// ToggleRow flips the selection of one row
func (e *Engine[T]) ToggleRow(id string) {
	e.mutateState(func(s *State) {
		if s.RowSelection[id] {
			delete(s.RowSelection, id)
		} else {
			s.RowSelection[id] = true
		}
	}, false)
}

// ToggleAll selects or clears every row on the current page
func (e *Engine[T]) ToggleAll(selected bool) {
	e.mutateState(func(s *State) {
		for _, row := range e.rows {
			id := e.rowID(row)
			if selected {
				s.RowSelection[id] = true
			} else {
				delete(s.RowSelection, id)
			}
		}
	}, false)
}

// ClearSelection drops every selected row
func (e *Engine[T]) ClearSelection() {
	e.mutateState(func(s *State) {
		s.RowSelection = map[string]bool{}
	}, false)
}

// SelectedIDs returns the selected row ids, sorted
func (e *Engine[T]) SelectedIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return selectedLocked(e.state)
}

// Refresh fetches the page for the current state. A response that lands
// after a newer request has been issued is dropped.
func (e *Engine[T]) Refresh(ctx context.Context) error {
	e.mu.Lock()
	e.seq++
	seq := e.seq
	d := e.descriptorLocked()
	e.status = StatusLoading
	e.mu.Unlock()

	page, err := e.load(ctx, d)

	e.mu.Lock()
	defer e.mu.Unlock()

	if seq < e.landed || seq != e.seq {
		slog.Debug("dropping superseded page", "page", d.Page, "seq", seq)
		return err
	}
	e.landed = seq

	if err != nil {
		e.rows = nil
		e.meta = resource.Meta{}
		e.status = StatusError
		e.message = client.Message(err)
		return err
	}

	e.rows = page.Data
	e.meta = page.Meta
	e.message = ""
	e.status = StatusReady
	if len(page.Data) == 0 {
		e.status = StatusEmpty
		e.message = EmptyMessage
	}
	return nil
}

// update applies a state change that alters the request
func (e *Engine[T]) update(fn func(*State)) {
	e.mutateState(fn, true)
}

func (e *Engine[T]) mutateState(fn func(*State), refetch bool) {
	e.mu.Lock()
	if e.state.RowSelection == nil {
		e.state.RowSelection = map[string]bool{}
	}
	if e.state.ColumnVisibility == nil {
		e.state.ColumnVisibility = map[string]bool{}
	}
	before := e.descriptorLocked()
	fn(&e.state)
	after := e.descriptorLocked()
	state := e.state.Clone()
	ctx := e.ctx
	e.mu.Unlock()

	if e.onChange != nil {
		e.onChange(state)
	}

	if refetch && ctx != nil && !sameDescriptor(before, after) {
		go func() {
			if err := e.Refresh(ctx); err != nil {
				slog.Debug("table refresh failed", "error", err)
			}
		}()
	}
}

func (e *Engine[T]) descriptorLocked() Descriptor {
	d := e.state.Descriptor(e.search)
	if len(d.Filters) == 0 {
		return d
	}
	renamed := make(map[string]any, len(d.Filters))
	for k, v := range d.Filters {
		renamed[e.filterParam(k)] = v
	}
	d.Filters = renamed
	return d
}

func (e *Engine[T]) filterParam(id string) string {
	for _, c := range e.columns {
		if c.ID == id && c.FilterParam != "" {
			return c.FilterParam
		}
	}
	return id
}

func (e *Engine[T]) pageCountLocked() int {
	if e.meta.TotalPages > 0 {
		return e.meta.TotalPages
	}
	limit := e.state.Pagination.PageSize
	if limit <= 0 || e.meta.Total == 0 {
		return 0
	}
	return (e.meta.Total + limit - 1) / limit
}

func selectedLocked(s State) []string {
	ids := make([]string, 0, len(s.RowSelection))
	for id, on := range s.RowSelection {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func sameDescriptor(a, b Descriptor) bool {
	if a.Page != b.Page || a.Limit != b.Limit || a.Search != b.Search ||
		a.SortBy != b.SortBy || a.SortOrder != b.SortOrder || len(a.Filters) != len(b.Filters) {
		return false
	}
	for k, v := range a.Filters {
		if fmt.Sprint(b.Filters[k]) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}
