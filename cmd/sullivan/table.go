package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// statusRow is one table line tinted by the severity of what it reports,
// using the same palette as renderStatusLine.
type statusRow struct {
	kind  statusKind
	cells []string
}

func infoRow(cells ...string) statusRow  { return statusRow{kind: statusInfo, cells: cells} }
func okRow(cells ...string) statusRow    { return statusRow{kind: statusOK, cells: cells} }
func warnRow(cells ...string) statusRow  { return statusRow{kind: statusWarn, cells: cells} }
func errorRow(cells ...string) statusRow { return statusRow{kind: statusError, cells: cells} }

// renderStatusTable renders the rows with each line colored by its kind.
// Info rows stay untinted so routine output is not a wall of color.
func renderStatusTable(headers []string, rows []statusRow, colorize bool) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		color := ""
		if colorize && row.kind != statusInfo {
			color = statusKindColor(row.kind)
		}
		r := make(table.Row, len(headers))
		for i := range headers {
			cell := ""
			if i < len(row.cells) {
				cell = row.cells[i]
			}
			if color != "" && cell != "" {
				cell = color + cell + ansiReset
			}
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}
