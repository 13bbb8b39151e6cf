package output

import (
	"strings"
	"testing"

	"github.com/franzos/tku/internal/core"
	"github.com/franzos/tku/internal/exchange"
)

func sampleBuckets() ([]string, map[string]*core.AggregatedBucket) {
	keys := []string{"2026-03-01", "2026-03-02"}
	buckets := map[string]*core.AggregatedBucket{
		"2026-03-01": {
			InputTokens:  1_500_000,
			OutputTokens: 40_000,
			Cost:         fp(2.5),
			Models:       []string{"opus-4-5"},
			Tools:        []string{"claude"},
			Details: []core.ModelBucketDetail{
				{Model: "claude-opus-4-5", InputTokens: 1_500_000, OutputTokens: 40_000, Cost: fp(2.5)},
			},
		},
		"2026-03-02": {
			InputTokens: 100,
			Models:      []string{"mystery"},
			Tools:       []string{"pi"},
		},
	}
	return keys, buckets
}

func TestRenderTable(t *testing.T) {
	keys, buckets := sampleBuckets()
	out := RenderTable(keys, buckets, ResolveColumns(nil), false, exchange.USD())

	for _, want := range []string{"Period", "Cost", "2026-03-01", "2026-03-02", "1.5M", "$2.50", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// The unpriced day and its effect on the total.
	if !strings.Contains(out, "N/A") {
		t.Errorf("unpriced bucket should show N/A:\n%s", out)
	}
	if strings.Contains(out, "claude-opus-4-5") {
		t.Errorf("breakdown rows must not appear without the flag:\n%s", out)
	}
}

func TestRenderTable_Breakdown(t *testing.T) {
	keys, buckets := sampleBuckets()
	out := RenderTable(keys, buckets, ResolveColumns(nil), true, exchange.USD())
	if !strings.Contains(out, "claude-opus-4-5") {
		t.Errorf("breakdown row missing:\n%s", out)
	}
}

func TestRenderTable_CustomColumns(t *testing.T) {
	keys, buckets := sampleBuckets()
	out := RenderTable(keys, buckets, []string{"period", "cost", "projects"}, false, exchange.USD())
	if !strings.Contains(out, "Projects") {
		t.Errorf("projects header missing:\n%s", out)
	}
	if strings.Contains(out, "Cache Write") {
		t.Errorf("unrequested column rendered:\n%s", out)
	}
}
