package main

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"esdemedia/internal/walker"
)

// renderSummary prints the end-of-run counters as a two-column table with the
// wall-clock duration in the footer.
func renderSummary(summary walker.Summary) string {
	caser := cases.Title(language.English, cases.NoLower)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Footer = text.FormatDefault
	tw.SetTitle("esdemedia run summary")
	tw.AppendHeader(table.Row{"Metric", "Value"})
	for _, row := range summary.Rows() {
		value := strconv.FormatInt(row.Value, 10)
		if row.Bytes {
			value = formatBytes(row.Value)
		}
		tw.AppendRow(table.Row{caser.String(row.Label), value})
	}
	tw.AppendFooter(table.Row{"Duration", summary.Duration.Round(time.Second).String()})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft, AlignFooter: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}

func formatBytes(value int64) string {
	if value < 0 {
		return "-" + humanize.IBytes(uint64(-value))
	}
	return humanize.IBytes(uint64(value))
}
