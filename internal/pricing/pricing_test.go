package pricing

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/franzos/tku/internal/core"
)

func closeTo(got *float64, want float64) bool {
	return got != nil && math.Abs(*got-want) < 1e-9
}

func TestCostForRecord(t *testing.T) {
	cacheRead := 0.000001
	cacheWrite := 0.000002
	table := Table{
		"full": {
			InputCostPerToken:           0.00001,
			OutputCostPerToken:          0.00002,
			CacheReadInputTokenCost:     &cacheRead,
			CacheCreationInputTokenCost: &cacheWrite,
		},
		"no-cache": {
			InputCostPerToken:  0.00001,
			OutputCostPerToken: 0.00002,
		},
	}

	r := core.UsageRecord{
		Model:                    "full",
		InputTokens:              1000,
		OutputTokens:             500,
		CacheReadInputTokens:     100000,
		CacheCreationInputTokens: 50000,
	}
	got := table.CostForRecord(r)
	// 1000*1e-5 + 500*2e-5 + 1e5*1e-6 + 5e4*2e-6 = 0.01 + 0.01 + 0.1 + 0.1
	if !closeTo(got, 0.22) {
		t.Fatalf("cost = %v, want 0.22", got)
	}

	r.Model = "no-cache"
	got = table.CostForRecord(r)
	if !closeTo(got, 0.02) {
		t.Fatalf("cache traffic must be free without cache prices, got %v", got)
	}

	r.Model = "absent"
	if got := table.CostForRecord(r); got != nil {
		t.Fatalf("unknown model must stay unpriced, got %v", *got)
	}
}

func TestUnpricedModels(t *testing.T) {
	table := Table{"known": {}}
	records := []core.UsageRecord{
		{Model: "zeta"},
		{Model: "known"},
		{Model: "alpha"},
		{Model: "zeta"},
	}
	got := table.UnpricedModels(records)
	if !reflect.DeepEqual(got, []string{"alpha", "zeta"}) {
		t.Fatalf("got %v", got)
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		name string
		want Source
		ok   bool
	}{
		{"", SourceLiteLLM, true},
		{"litellm", SourceLiteLLM, true},
		{"openrouter", SourceOpenRouter, true},
		{"llmprices", SourceLLMPrices, true},
		{"bogus", "", false},
	}
	for _, tt := range tests {
		got, err := ParseSource(tt.name)
		if (err == nil) != tt.ok {
			t.Errorf("ParseSource(%q) err = %v, want ok=%v", tt.name, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseSource(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestLoad_OfflineWithoutCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	if _, err := Load(context.Background(), SourceLiteLLM, true); err == nil {
		t.Fatal("offline without cache must error, not price everything at zero")
	}
}

func TestLoad_OfflineUsesStaleCache(t *testing.T) {
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	dir := filepath.Join(cacheHome, "tku")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "pricing.json")
	catalog := `{"some-model": {"input_cost_per_token": 0.000001, "output_cost_per_token": 0.000002}}`
	if err := os.WriteFile(path, []byte(catalog), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	table, err := Load(context.Background(), SourceLiteLLM, true)
	if err != nil {
		t.Fatalf("offline load with stale cache failed: %v", err)
	}
	if _, ok := table["some-model"]; !ok {
		t.Fatal("cached catalog not used")
	}
}
