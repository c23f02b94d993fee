package table

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// RenderText writes the view as an aligned text table
func RenderText[T any](w io.Writer, v View[T]) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	headers := make([]string, 0, len(v.Columns)+1)
	headers = append(headers, " ")
	for _, c := range v.Columns {
		h := strings.ToUpper(c.Header)
		switch c.Sort {
		case "asc":
			h += " ^"
		case "desc":
			h += " v"
		}
		headers = append(headers, h)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	switch v.Status {
	case StatusError, StatusEmpty:
		fmt.Fprintln(tw, " \t"+v.Message)
	default:
		for _, r := range v.Rows {
			mark := " "
			if r.Selected {
				mark = "*"
			}
			cells := r.Cells
			if r.Placeholder {
				cells = make([]string, len(v.Columns))
				for i := range cells {
					cells[i] = "..."
				}
			}
			fmt.Fprintln(tw, mark+"\t"+strings.Join(cells, "\t"))
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	pageCount := v.PageCount
	if pageCount == 0 {
		pageCount = 1
	}
	_, err := fmt.Fprintf(w, "\nPage %d of %d, %d total", v.Page, pageCount, v.Total)
	if err != nil {
		return err
	}
	if len(v.Selected) > 0 {
		_, err = fmt.Fprintf(w, ", %d selected", len(v.Selected))
		if err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w)
	return err
}
