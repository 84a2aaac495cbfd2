package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"storybook-media-api/internal/application/media"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderOutcome 批量结果表格，被中断时追加提示行
func renderOutcome(bookID int64, op string, out media.BatchOutcome) string {
	rendered := renderTable(
		[]string{"Book", "Run", "Total", "Generated", "Failed", "Skipped"},
		[][]string{{
			strconv.FormatInt(bookID, 10),
			op,
			strconv.Itoa(out.Total),
			strconv.Itoa(out.Generated),
			strconv.Itoa(out.Failed),
			strconv.Itoa(out.Skipped),
		}},
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
	if out.Interrupted {
		rendered += "\ninterrupted before all pages were processed"
	}
	return rendered
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
