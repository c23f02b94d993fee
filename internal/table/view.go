package table

// ColumnView is a rendered column header
type ColumnView struct {
	ID       string `json:"id"`
	Header   string `json:"header"`
	Sortable bool   `json:"sortable"`
	Hideable bool   `json:"hideable"`
	Sort     string `json:"sort,omitempty"`
}

// RowView is a rendered row. Placeholder rows stand in for data while a
// page loads.
type RowView[T any] struct {
	ID          string   `json:"id,omitempty"`
	Cells       []string `json:"cells"`
	Selected    bool     `json:"selected"`
	Placeholder bool     `json:"placeholder,omitempty"`
	Data        *T       `json:"data,omitempty"`
}

// View is what a renderer needs to draw the table
type View[T any] struct {
	Columns    []ColumnView `json:"columns"`
	Hidden     []string     `json:"hidden,omitempty"`
	Rows       []RowView[T] `json:"rows"`
	Status     Status       `json:"status"`
	Message    string       `json:"message,omitempty"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	PageCount  int          `json:"pageCount"`
	Total      int          `json:"total"`
	CanPrev    bool         `json:"canPrev"`
	CanNext    bool         `json:"canNext"`
	Selected   []string     `json:"selected"`
	Search     string       `json:"search,omitempty"`
	Descriptor Descriptor   `json:"descriptor"`
}

// View builds the current view model
func (e *Engine[T]) View() View[T] {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View[T]{
		Status:     e.status,
		Message:    e.message,
		Page:       e.state.Pagination.PageIndex + 1,
		PageSize:   e.state.Pagination.PageSize,
		PageCount:  e.pageCountLocked(),
		Total:      e.meta.Total,
		Selected:   selectedLocked(e.state),
		Search:     e.state.GlobalFilter,
		Descriptor: e.descriptorLocked(),
	}
	v.CanPrev = e.state.Pagination.PageIndex > 0
	v.CanNext = e.state.Pagination.PageIndex+1 < v.PageCount

	visible := make([]Column[T], 0, len(e.columns))
	for _, c := range e.columns {
		if !e.state.IsVisible(c.ID) {
			v.Hidden = append(v.Hidden, c.ID)
			continue
		}
		visible = append(visible, c)
		cv := ColumnView{ID: c.ID, Header: c.Header, Sortable: c.Sortable, Hideable: c.Hideable}
		if len(e.state.Sorting) > 0 && e.state.Sorting[0].ID == c.ID {
			cv.Sort = "asc"
			if e.state.Sorting[0].Desc {
				cv.Sort = "desc"
			}
		}
		v.Columns = append(v.Columns, cv)
	}

	switch e.status {
	case StatusLoading:
		v.Rows = make([]RowView[T], v.PageSize)
		for i := range v.Rows {
			v.Rows[i] = RowView[T]{Cells: make([]string, len(visible)), Placeholder: true}
		}
	case StatusReady:
		v.Rows = make([]RowView[T], 0, len(e.rows))
		for i := range e.rows {
			row := e.rows[i]
			id := e.rowID(row)
			cells := make([]string, len(visible))
			for j, c := range visible {
				if c.Cell != nil {
					cells[j] = c.Cell(row)
				}
			}
			v.Rows = append(v.Rows, RowView[T]{
				ID:       id,
				Cells:    cells,
				Selected: e.state.RowSelection[id],
				Data:     &row,
			})
		}
	default:
		v.Rows = []RowView[T]{}
	}

	return v
}
