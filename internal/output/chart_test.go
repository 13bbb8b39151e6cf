package output

import (
	"strings"
	"testing"
	"time"

	"github.com/franzos/tku/internal/core"
)

func TestParseChartPeriod(t *testing.T) {
	for _, name := range []string{"1d", "1w", "1m"} {
		if _, err := ParseChartPeriod(name); err != nil {
			t.Errorf("ParseChartPeriod(%q) failed: %v", name, err)
		}
	}
	if _, err := ParseChartPeriod("1y"); err == nil {
		t.Error("expected error for unknown period")
	}
}

func TestBuildBuckets_DayRelative(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 30, 0, 0, time.UTC)
	spec := buildBuckets(ChartDay, true, now)

	if len(spec.labels) != 48 {
		t.Fatalf("expected 48 buckets, got %d", len(spec.labels))
	}
	if len(spec.boundaries) != 49 {
		t.Fatalf("expected 49 boundaries, got %d", len(spec.boundaries))
	}
	if !spec.boundaries[0].Equal(now.Add(-24 * time.Hour)) {
		t.Errorf("relative window must start one period back, got %v", spec.boundaries[0])
	}
}

func TestBuildBuckets_DayAligned(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 30, 0, 0, time.UTC)
	spec := buildBuckets(ChartDay, false, now)

	start := spec.boundaries[0]
	if start.Minute() != 0 {
		t.Errorf("aligned start must snap to the hour, got %v", start)
	}
	// Every on-the-hour boundary carries an hour label.
	var labeled int
	for _, l := range spec.labels {
		if l != "" {
			labeled++
		}
	}
	if labeled != 24 {
		t.Errorf("expected 24 hour labels, got %d", labeled)
	}
}

func TestBuildBuckets_WeekAligned(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	spec := buildBuckets(ChartWeek, false, now)

	start := spec.boundaries[0]
	if start.Hour() != 0 {
		t.Errorf("aligned week must start at midnight, got %v", start)
	}
	if spec.labels[0] != "Sun" {
		t.Errorf("2026-03-08 was a Sunday, label = %q", spec.labels[0])
	}
}

func TestRenderChart(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	records := []core.UsageRecord{
		{Timestamp: now.Add(-1 * time.Hour), InputTokens: 900, OutputTokens: 100},
		{Timestamp: now.Add(-2 * time.Hour), InputTokens: 100},
		{Timestamp: now.Add(-48 * time.Hour), InputTokens: 999999},
	}

	out := RenderChart(records, ChartDay, true, now)
	if !strings.Contains(out, "last 24 hours") {
		t.Errorf("title missing:\n%s", out)
	}
	if !strings.Contains(out, "█") {
		t.Errorf("expected a full block for the peak bucket:\n%s", out)
	}

	lines := strings.Split(out, "\n")
	// Title, bar rows, label row.
	if len(lines) != chartRows+2 {
		t.Errorf("expected %d lines, got %d", chartRows+2, len(lines))
	}
}

func TestRenderChart_Empty(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	out := RenderChart(nil, ChartMonth, false, now)
	if !strings.Contains(out, "last 30 days") {
		t.Errorf("empty chart should still render the frame:\n%s", out)
	}
}
