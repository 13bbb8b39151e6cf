package main

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/franzos/tku/internal/config"
	"github.com/franzos/tku/internal/core"
)

type globalOpts struct {
	from          string
	to            string
	format        string
	offline       bool
	breakdown     bool
	project       string
	tool          string
	columns       []string
	pricingSource string
	currency      string
	quiet         bool
}

func main() {
	if os.Getenv("TKU_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg := config.Load()

	root := newRootCmd(cfg)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	opts := &globalOpts{}

	root := &cobra.Command{
		Use:          "tku",
		Short:        "Token usage and cost tracker for LLM coding tools",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAggregate(cmd.Context(), cfg, opts, core.DailyKey)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.from, "from", "", "start date filter (YYYY-MM-DD)")
	pf.StringVar(&opts.to, "to", "", "end date filter (YYYY-MM-DD)")
	pf.StringVar(&opts.format, "format", "table", "output format: table, json")
	pf.BoolVar(&opts.offline, "offline", false, "use cached pricing only, don't fetch")
	pf.BoolVar(&opts.breakdown, "breakdown", false, "show per-model breakdown within each period")
	pf.StringVar(&opts.project, "project", "", "filter by project name (substring match)")
	pf.StringVar(&opts.tool, "tool", "", "filter by tool (e.g. claude, codex, pi, amp)")
	pf.StringSliceVar(&opts.columns, "columns", nil,
		"columns to display; +col adds, -col removes from defaults, plain names replace")
	pf.StringVar(&opts.pricingSource, "pricing-source", "", "pricing source: litellm, openrouter, llmprices")
	pf.StringVar(&opts.currency, "currency", "", "ISO 4217 currency code for cost display, e.g. EUR, GBP")
	pf.BoolVar(&opts.quiet, "quiet", false, "suppress progress output (for scripting)")

	root.AddCommand(
		newAggregateCmd(cfg, opts, "daily", "Aggregate by day (default)", core.DailyKey),
		newAggregateCmd(cfg, opts, "monthly", "Aggregate by month", core.MonthlyKey),
		newAggregateCmd(cfg, opts, "session", "Aggregate by session", core.SessionKey),
		newAggregateCmd(cfg, opts, "model", "Aggregate by model", core.ModelKey),
		newWatchCmd(cfg, opts),
		newPlotCmd(cfg, opts),
		newBarCmd(cfg, opts),
	)
	return root
}

func newAggregateCmd(cfg config.Config, opts *globalOpts, name, short string, keyFn core.BucketKeyFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAggregate(cmd.Context(), cfg, opts, keyFn)
		},
	}
}

func newWatchCmd(cfg config.Config, opts *globalOpts) *cobra.Command {
	var full bool
	var interval uint64

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live-updating cost monitor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), cfg, opts, full, interval)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "show full table instead of compact summary line")
	cmd.Flags().Uint64Var(&interval, "interval", 2, "minimum seconds between refreshes (debounce)")
	return cmd
}

func newPlotCmd(cfg config.Config, opts *globalOpts) *cobra.Command {
	var relative bool

	cmd := &cobra.Command{
		Use:   "plot [period]",
		Short: "Show a bar chart of token usage over time (period: 1d, 1w, 1m)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period := "1m"
			if len(args) > 0 {
				period = args[0]
			}
			return runPlot(cfg, opts, period, relative)
		},
	}
	cmd.Flags().BoolVar(&relative, "relative", false, "use relative time window (last N hours/days from now)")
	return cmd
}

func newBarCmd(cfg config.Config, opts *globalOpts) *cobra.Command {
	var period, template string
	var warn, critical float64

	cmd := &cobra.Command{
		Use:   "bar",
		Short: "Output JSON for status bars (waybar, i3bar, polybar)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var warnPtr, criticalPtr *float64
			if cmd.Flags().Changed("warn") {
				warnPtr = &warn
			}
			if cmd.Flags().Changed("critical") {
				criticalPtr = &critical
			}
			return runBar(cmd.Context(), cfg, opts, period, template, warnPtr, criticalPtr)
		},
	}
	cmd.Flags().StringVar(&period, "period", "today", "timeframe to summarize: today, week, month")
	cmd.Flags().StringVar(&template, "template", "{cost}",
		"format string for the text field; placeholders: {cost}, {input}, {output}, {models}, {projects}")
	cmd.Flags().Float64Var(&warn, "warn", 0, "cost threshold that sets class to \"warning\"")
	cmd.Flags().Float64Var(&critical, "critical", 0, "cost threshold that sets class to \"critical\"")
	return cmd
}
