// Package engine runs the scan across all providers and filters the
// combined result.
package engine

import (
	"strings"

	"github.com/samber/lo"

	"github.com/franzos/tku/internal/core"
	"github.com/franzos/tku/internal/providers/shared"
	"github.com/franzos/tku/internal/storage"
)

// Scan runs every provider against the store, flushes the cache, and
// returns the deduplicated union of all records.
func Scan(store storage.Store, provs []shared.Provider, progress shared.ProgressFunc) []core.UsageRecord {
	for _, p := range provs {
		p.DiscoverAndParse(store, progress)
	}
	store.Flush()
	return core.Dedup(store.DrainAll())
}

// Options narrows the record set before aggregation. Dates are inclusive
// "YYYY-MM-DD" bounds; Project matches as a case-insensitive substring;
// Tool matches a provider name exactly, case-insensitively.
type Options struct {
	FromDate string
	ToDate   string
	Project  string
	Tool     string
}

func (o Options) empty() bool {
	return o.FromDate == "" && o.ToDate == "" && o.Project == "" && o.Tool == ""
}

// Filter applies the options. Date bounds compare formatted UTC days as
// strings, which orders the same as the underlying dates.
func Filter(records []core.UsageRecord, opts Options) []core.UsageRecord {
	if opts.empty() {
		return records
	}

	project := strings.ToLower(opts.Project)
	tool := strings.ToLower(opts.Tool)

	return lo.Filter(records, func(r core.UsageRecord, _ int) bool {
		if opts.FromDate != "" || opts.ToDate != "" {
			day := r.Timestamp.UTC().Format("2006-01-02")
			if opts.FromDate != "" && day < opts.FromDate {
				return false
			}
			if opts.ToDate != "" && day > opts.ToDate {
				return false
			}
		}
		if project != "" && !strings.Contains(strings.ToLower(r.Project), project) {
			return false
		}
		if tool != "" && strings.ToLower(r.Provider) != tool {
			return false
		}
		return true
	})
}
