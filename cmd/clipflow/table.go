package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column pairs a header with its alignment so call sites declare a table as
// one list instead of parallel header/alignment slices.
type column struct {
	title   string
	numeric bool
}

func textCol(title string) column { return column{title: title} }

func numCol(title string) column { return column{title: title, numeric: true} }

// renderTable renders rows under the given columns. Numeric columns are
// right-aligned, short rows are padded with blanks, and cells are capped so
// one long title or audit detail cannot blow out the layout.
func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	// Keep headers as written instead of go-pretty's default upper-casing.
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.title
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			WidthMax:    48,
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		cells := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				cells[i] = row[i]
			} else {
				cells[i] = ""
			}
		}
		tw.AppendRow(cells)
	}

	return tw.Render()
}
