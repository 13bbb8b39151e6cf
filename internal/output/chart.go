package output

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/franzos/tku/internal/core"
)

// ChartPeriod selects the plot window and bucket width.
type ChartPeriod string

const (
	ChartDay   ChartPeriod = "1d" // last 24 hours, 30-minute buckets
	ChartWeek  ChartPeriod = "1w" // last 7 days, 6-hour buckets
	ChartMonth ChartPeriod = "1m" // last 30 days, daily buckets
)

func ParseChartPeriod(name string) (ChartPeriod, error) {
	switch ChartPeriod(name) {
	case ChartDay, ChartWeek, ChartMonth:
		return ChartPeriod(name), nil
	}
	return "", fmt.Errorf("output: unknown plot period %q (want 1d, 1w, 1m)", name)
}

const (
	chartRows   = 15
	barWidth    = 3
	barGapWidth = 1
)

var (
	chartBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	chartLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	chartTitleStyle = lipgloss.NewStyle().Bold(true)

	eighthBlocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
)

type bucketSpec struct {
	boundaries []time.Time
	labels     []string
}

// buildBuckets lays out the time axis in local time. Aligned windows snap
// the start to the hour or midnight so labels land on natural marks;
// relative windows start exactly one period before now.
func buildBuckets(period ChartPeriod, relative bool, now time.Time) bucketSpec {
	var step time.Duration
	var total int
	var start time.Time

	switch period {
	case ChartDay:
		step, total = 30*time.Minute, 48
		start = now.Add(-24 * time.Hour)
		if !relative {
			y, m, d := start.Date()
			start = time.Date(y, m, d, start.Hour(), 0, 0, 0, start.Location())
		}
	case ChartWeek:
		step, total = 6*time.Hour, 28
		start = now.AddDate(0, 0, -7)
		if !relative {
			y, m, d := start.Date()
			start = time.Date(y, m, d, 0, 0, 0, 0, start.Location())
		}
	default:
		step, total = 24*time.Hour, 30
		start = now.AddDate(0, 0, -30)
		if !relative {
			aligned := now.AddDate(0, 0, -29)
			y, m, d := aligned.Date()
			start = time.Date(y, m, d, 0, 0, 0, 0, aligned.Location())
		}
	}

	spec := bucketSpec{}
	for i := 0; i <= total; i++ {
		t := start.Add(time.Duration(i) * step)
		if t.After(now) {
			break
		}
		if i < total {
			spec.labels = append(spec.labels, bucketLabel(period, t, i))
		}
		spec.boundaries = append(spec.boundaries, t)
	}
	if n := len(spec.boundaries); n > 0 && len(spec.labels) > n-1 {
		spec.labels = spec.labels[:n-1]
	}
	return spec
}

func bucketLabel(period ChartPeriod, t time.Time, i int) string {
	switch period {
	case ChartDay:
		if t.Minute() == 0 {
			return fmt.Sprintf("%02d", t.Hour())
		}
		return ""
	case ChartWeek:
		if t.Hour() == 0 {
			return t.Weekday().String()[:3]
		}
		return ""
	default:
		if t.Day() == 1 || i == 0 {
			return fmt.Sprintf("%s %d", t.Month().String()[:3], t.Day())
		}
		return fmt.Sprintf("%d", t.Day())
	}
}

func chartTitle(period ChartPeriod) string {
	switch period {
	case ChartDay:
		return "Token usage, last 24 hours (30-min buckets)"
	case ChartWeek:
		return "Token usage, last 7 days (6-hour buckets)"
	default:
		return "Token usage, last 30 days (daily buckets)"
	}
}

// RenderChart draws a vertical block-glyph bar chart of total tokens per
// time bucket. Records outside the window are dropped.
func RenderChart(records []core.UsageRecord, period ChartPeriod, relative bool, now time.Time) string {
	spec := buildBuckets(period, relative, now)
	n := len(spec.labels)
	if n == 0 {
		return "No time buckets to display."
	}

	values := make([]uint64, n)
	for _, r := range records {
		local := r.Timestamp.In(now.Location())
		pos := sort.Search(len(spec.boundaries), func(i int) bool {
			return spec.boundaries[i].After(local)
		}) - 1
		if pos >= 0 && pos < n {
			values[pos] += r.InputTokens + r.OutputTokens +
				r.CacheCreationInputTokens + r.CacheReadInputTokens
		}
	}

	var maxVal uint64
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Each bar resolves to chartRows*8 eighth-block units.
	heights := make([]int, n)
	for i, v := range values {
		h := int(float64(v) / float64(maxVal) * float64(chartRows*8))
		if h == 0 && v > 0 {
			h = 1
		}
		heights[i] = h
	}

	var sb strings.Builder
	sb.WriteString(chartTitleStyle.Render(chartTitle(period)))
	sb.WriteString("\n")

	gap := strings.Repeat(" ", barGapWidth)
	for row := chartRows - 1; row >= 0; row-- {
		cells := make([]string, n)
		for i, h := range heights {
			filled := h - row*8
			switch {
			case filled >= 8:
				cells[i] = strings.Repeat("█", barWidth)
			case filled > 0:
				cells[i] = strings.Repeat(string(eighthBlocks[filled]), barWidth)
			default:
				cells[i] = strings.Repeat(" ", barWidth)
			}
		}
		sb.WriteString(chartBarStyle.Render(strings.Join(cells, gap)))
		sb.WriteString("\n")
	}

	labels := make([]string, n)
	for i, label := range spec.labels {
		if len(label) > barWidth {
			label = label[:barWidth]
		}
		labels[i] = fmt.Sprintf("%-*s", barWidth, label)
	}
	sb.WriteString(chartLabelStyle.Render(strings.Join(labels, gap)))
	return sb.String()
}
