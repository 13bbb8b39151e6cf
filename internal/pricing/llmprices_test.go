package pricing

import (
	"math"
	"testing"
)

func TestParseLLMPrices(t *testing.T) {
	data := []byte(`{"prices": [
		{"id": "claude-opus-4-5", "input": 5.0, "output": 25.0, "input_cached": 0.5},
		{"id": "gpt-5", "input": 1.25, "output": 10.0},
		{"id": "incomplete", "input": 1.0}
	]}`)

	table, err := parseLLMPrices(data)
	if err != nil {
		t.Fatal(err)
	}

	p, ok := table["claude-opus-4-5"]
	if !ok {
		t.Fatal("entry missing")
	}
	// Catalog prices are per million tokens.
	if math.Abs(p.InputCostPerToken-0.000005) > 1e-15 || math.Abs(p.OutputCostPerToken-0.000025) > 1e-15 {
		t.Errorf("per-token conversion wrong: %+v", p)
	}
	if p.CacheReadInputTokenCost == nil || math.Abs(*p.CacheReadInputTokenCost-0.0000005) > 1e-15 {
		t.Errorf("cached price wrong: %+v", p)
	}

	if table["gpt-5"].CacheReadInputTokenCost != nil {
		t.Error("absent cached price must stay nil")
	}
	if _, ok := table["incomplete"]; ok {
		t.Error("entry without output price must be dropped")
	}
}
