package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/franzos/tku/internal/core"
	"github.com/franzos/tku/internal/exchange"
)

var (
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// RenderTable lays out the buckets in key order, with an optional
// per-model breakdown under each row and a trailing TOTAL row.
func RenderTable(keys []string, buckets map[string]*core.AggregatedBucket, columns []string, breakdown bool, rate exchange.Rate) string {
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = columnHeader(col)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers(headers...)

	var totals core.AggregatedBucket
	for _, key := range keys {
		bucket := buckets[key]
		t.Row(bucketRow(columns, key, bucket, rate)...)

		if breakdown {
			for i := range bucket.Details {
				t.Row(detailRow(columns, &bucket.Details[i], rate)...)
			}
		}
		totals.AccumulateFrom(bucket)
	}
	t.Row(bucketRow(columns, "TOTAL", &totals, rate)...)

	return t.Render()
}

func bucketRow(columns []string, key string, bucket *core.AggregatedBucket, rate exchange.Rate) []string {
	cells := make([]string, len(columns))
	for i, col := range columns {
		switch col {
		case "period":
			cells[i] = key
		case "input":
			cells[i] = FormatTokens(bucket.InputTokens)
		case "output":
			cells[i] = FormatTokens(bucket.OutputTokens)
		case "cache_write":
			cells[i] = FormatTokens(bucket.CacheCreationInputTokens)
		case "cache_read":
			cells[i] = FormatTokens(bucket.CacheReadInputTokens)
		case "cost":
			cells[i] = rate.FormatCost(bucket.Cost)
		case "models":
			cells[i] = strings.Join(bucket.Models, ", ")
		case "tools":
			cells[i] = strings.Join(bucket.Tools, ", ")
		case "projects":
			cells[i] = strings.Join(bucket.Projects, ", ")
		}
	}
	return cells
}

func detailRow(columns []string, detail *core.ModelBucketDetail, rate exchange.Rate) []string {
	cells := make([]string, len(columns))
	for i, col := range columns {
		switch col {
		case "period":
			cells[i] = "  " + detail.Model
		case "input":
			cells[i] = FormatTokens(detail.InputTokens)
		case "output":
			cells[i] = FormatTokens(detail.OutputTokens)
		case "cache_write":
			cells[i] = FormatTokens(detail.CacheCreationInputTokens)
		case "cache_read":
			cells[i] = FormatTokens(detail.CacheReadInputTokens)
		case "cost":
			cells[i] = rate.FormatCost(detail.Cost)
		}
	}
	return cells
}
