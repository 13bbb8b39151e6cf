// Package output renders aggregated usage as tables, JSON, status-bar
// payloads, and terminal charts.
package output

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// DefaultColumns is the table layout without a --columns flag.
var DefaultColumns = []string{
	"period", "input", "output", "cache_write", "cache_read", "cost", "models", "tools",
}

var columnHeaders = map[string]string{
	"period":      "Period",
	"input":       "Input",
	"output":      "Output",
	"cache_write": "Cache Write",
	"cache_read":  "Cache Read",
	"cost":        "Cost",
	"models":      "Models",
	"tools":       "Tools",
	"projects":    "Projects",
}

func columnHeader(col string) string {
	if header, ok := columnHeaders[col]; ok {
		return header
	}
	return col
}

// ResolveColumns turns the raw --columns value into the final list. All
// entries prefixed with + or - modify the defaults; plain names replace
// them outright.
func ResolveColumns(raw []string) []string {
	if len(raw) == 0 {
		return append([]string(nil), DefaultColumns...)
	}

	allModifiers := lo.EveryBy(raw, func(c string) bool {
		return strings.HasPrefix(c, "+") || strings.HasPrefix(c, "-")
	})
	if !allModifiers {
		return raw
	}

	cols := append([]string(nil), DefaultColumns...)
	for _, entry := range raw {
		if name, ok := strings.CutPrefix(entry, "+"); ok {
			if !lo.Contains(cols, name) {
				cols = append(cols, name)
			}
		} else if name, ok := strings.CutPrefix(entry, "-"); ok {
			cols = lo.Without(cols, name)
		}
	}
	return cols
}

// FormatTokens renders counts compactly: 1.5M, 42.0K, 999.
func FormatTokens(n uint64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
