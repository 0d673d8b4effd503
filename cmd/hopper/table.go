package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"hopper/internal/api"
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
	if isatty.IsTerminal(os.Stdout.Fd()) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleLight)
	}

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

func renderGroupTable(groups []api.Group) string {
	rows := make([][]string, 0, len(groups))
	for _, group := range groups {
		rows = append(rows, []string{
			group.Name,
			fmt.Sprintf("%d", group.FileCount),
			formatBytes(group.SizeBytes),
		})
	}
	return renderTable(
		[]string{"Group", "Files", "Size"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight},
	)
}

func renderFileTable(files []api.ConvertedFile) string {
	rows := make([][]string, 0, len(files))
	for _, file := range files {
		rows = append(rows, []string{file.Filename, file.Group})
	}
	return renderTable(
		[]string{"File", "Group"},
		rows,
		[]columnAlignment{alignLeft, alignLeft},
	)
}

func renderPreviewTable(preview *api.PreviewPayload) string {
	return renderTable(preview.Columns, preview.Rows, nil)
}
