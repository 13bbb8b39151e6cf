package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/franzos/tku/internal/config"
	"github.com/franzos/tku/internal/core"
	"github.com/franzos/tku/internal/engine"
	"github.com/franzos/tku/internal/exchange"
	"github.com/franzos/tku/internal/output"
	"github.com/franzos/tku/internal/pricing"
	"github.com/franzos/tku/internal/providers"
	"github.com/franzos/tku/internal/providers/shared"
	"github.com/franzos/tku/internal/storage"
	"github.com/franzos/tku/internal/watch"
)

// dateRange resolves the --from/--to pair. A single bound gets a generous
// default on the other side so the filter stays a closed interval.
func dateRange(opts *globalOpts) (string, string) {
	switch {
	case opts.from != "" && opts.to != "":
		return opts.from, opts.to
	case opts.from != "":
		return opts.from, time.Now().Format("2006-01-02")
	case opts.to != "":
		return "2020-01-01", opts.to
	default:
		return "", ""
	}
}

// scanRecords runs the full pipeline: open cache, scan all providers,
// dedup, filter. The store is closed before returning.
func scanRecords(cfg config.Config, opts *globalOpts, from, to string, showProgress bool) ([]core.UsageRecord, error) {
	store, err := storage.Open(cfg.CacheBackend)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	var progress shared.ProgressFunc
	if showProgress {
		progress = func(completed, total int) {
			fmt.Fprintf(os.Stderr, "\x1b[2K\rScanning sessions... %d/%d", completed, total)
		}
	}

	records := engine.Scan(store, providers.All(), progress)
	if showProgress {
		fmt.Fprint(os.Stderr, "\x1b[2K\r")
	}

	return engine.Filter(records, engine.Options{
		FromDate: from,
		ToDate:   to,
		Project:  opts.project,
		Tool:     opts.tool,
	}), nil
}

func loadPricing(ctx context.Context, cfg config.Config, opts *globalOpts) (pricing.Table, error) {
	name := opts.pricingSource
	if name == "" {
		name = cfg.PricingSource
	}
	source, err := pricing.ParseSource(name)
	if err != nil {
		return nil, err
	}
	return pricing.Load(ctx, source, opts.offline)
}

func displayCurrency(cfg config.Config, opts *globalOpts) string {
	if opts.currency != "" {
		return opts.currency
	}
	return cfg.Currency
}

func runAggregate(ctx context.Context, cfg config.Config, opts *globalOpts, keyFn core.BucketKeyFunc) error {
	from, to := dateRange(opts)
	records, err := scanRecords(cfg, opts, from, to, !opts.quiet)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "No usage records found.")
		return nil
	}
	fmt.Fprintf(os.Stderr, "Found %d usage records.\n", len(records))

	table, err := loadPricing(ctx, cfg, opts)
	if err != nil {
		return err
	}
	if unpriced := table.UnpricedModels(records); len(unpriced) > 0 {
		fmt.Fprintf(os.Stderr, "No pricing data for: %s\n", strings.Join(unpriced, ", "))
	}

	keys, buckets := core.Aggregate(records, keyFn, table)
	rate := exchange.Load(ctx, displayCurrency(cfg, opts), opts.offline)

	switch opts.format {
	case "json":
		rendered, err := output.RenderJSON(buckets, rate)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
	case "table", "":
		columns := output.ResolveColumns(opts.columns)
		fmt.Println(output.RenderTable(keys, buckets, columns, opts.breakdown, rate))
	default:
		return fmt.Errorf("unknown format %q (want table or json)", opts.format)
	}
	return nil
}

func runPlot(cfg config.Config, opts *globalOpts, periodName string, relative bool) error {
	period, err := output.ParseChartPeriod(periodName)
	if err != nil {
		return err
	}

	from, to := dateRange(opts)
	records, err := scanRecords(cfg, opts, from, to, !opts.quiet)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "No usage records found.")
		return nil
	}

	fmt.Println(output.RenderChart(records, period, relative, time.Now()))
	return nil
}

// barDateRange ignores --from/--to: the bar period is its own window.
func barDateRange(period string) (string, string, string, error) {
	today := time.Now()
	day := today.Format("2006-01-02")
	switch period {
	case "today":
		return day, day, "Today", nil
	case "week":
		return today.AddDate(0, 0, -6).Format("2006-01-02"), day, "Week", nil
	case "month":
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return first.Format("2006-01-02"), day, "Month", nil
	}
	return "", "", "", fmt.Errorf("unknown bar period %q (want today, week, month)", period)
}

func runBar(ctx context.Context, cfg config.Config, opts *globalOpts, period, template string, warn, critical *float64) error {
	from, to, label, err := barDateRange(period)
	if err != nil {
		return err
	}

	records, err := scanRecords(cfg, opts, from, to, false)
	if err != nil {
		return err
	}
	rate := exchange.Load(ctx, displayCurrency(cfg, opts), opts.offline)

	var bucket *core.AggregatedBucket
	if len(records) > 0 {
		table, err := loadPricing(ctx, cfg, opts)
		if err != nil {
			return err
		}
		_, buckets := core.Aggregate(records, core.TotalKey, table)
		bucket = buckets["total"]
	}

	rendered, err := output.RenderBar(bucket, template, warn, critical, label, rate)
	if err != nil {
		return err
	}
	fmt.Println(rendered)
	return nil
}

func runWatch(ctx context.Context, cfg config.Config, opts *globalOpts, full bool, intervalSecs uint64) error {
	from, to := dateRange(opts)

	label := "All time"
	switch {
	case from != "" && from == to:
		label = from
	case from != "" || to != "":
		label = from + " to " + to
	}

	// Pricing loads once up front; a watch session reuses the same table.
	table, err := loadPricing(ctx, cfg, opts)
	if err != nil {
		return err
	}

	render := func() error {
		records, err := scanRecords(cfg, opts, from, to, false)
		if err != nil {
			return err
		}
		rate := exchange.Load(ctx, displayCurrency(cfg, opts), opts.offline)

		if full {
			renderWatchFull(records, opts, table, rate)
		} else {
			renderWatchCompact(records, table, rate, label)
		}
		return nil
	}

	return watch.Run(providers.WatchRoots(), time.Duration(intervalSecs)*time.Second, render)
}

func renderWatchFull(records []core.UsageRecord, opts *globalOpts, table pricing.Table, rate exchange.Rate) {
	// Clear screen, cursor to top left.
	fmt.Print("\x1b[2J\x1b[H")

	if len(records) == 0 {
		fmt.Println("No usage records found.")
		return
	}
	keys, buckets := core.Aggregate(records, core.DailyKey, table)
	columns := output.ResolveColumns(opts.columns)
	fmt.Println(output.RenderTable(keys, buckets, columns, opts.breakdown, rate))
}

func renderWatchCompact(records []core.UsageRecord, table pricing.Table, rate exchange.Rate, label string) {
	zero := 0.0
	if len(records) == 0 {
		fmt.Fprintf(os.Stderr, "\x1b[2K\r%s: %s", label, rate.FormatCost(&zero))
		return
	}

	_, buckets := core.Aggregate(records, core.TotalKey, table)
	bucket := buckets["total"]

	line := fmt.Sprintf("%s: %s", label, rate.FormatCost(bucket.Cost))
	var parts []string
	for _, detail := range bucket.Details {
		if detail.Cost == nil || *detail.Cost <= 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s",
			core.ShortModelName(detail.Model), rate.FormatCost(detail.Cost)))
	}
	if len(parts) > 0 {
		line += " | " + strings.Join(parts, ", ")
	}
	fmt.Fprintf(os.Stderr, "\x1b[2K\r%s", line)
}
