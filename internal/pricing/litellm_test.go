package pricing

import "testing"

func TestParseLiteLLM(t *testing.T) {
	data := []byte(`{
		"anthropic/claude-opus-4-5": {
			"input_cost_per_token": 0.000005,
			"output_cost_per_token": 0.000025,
			"cache_read_input_token_cost": 0.0000005
		},
		"no-output-price": {"input_cost_per_token": 0.000001},
		"gpt-5": {"input_cost_per_token": 0.00000125, "output_cost_per_token": 0.00001}
	}`)

	table, err := parseLiteLLM(data)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := table["no-output-price"]; ok {
		t.Error("entries without both prices must be dropped")
	}

	p, ok := table["anthropic/claude-opus-4-5"]
	if !ok {
		t.Fatal("original key missing")
	}
	if p.InputCostPerToken != 0.000005 || p.OutputCostPerToken != 0.000025 {
		t.Errorf("prices wrong: %+v", p)
	}
	if p.CacheReadInputTokenCost == nil || *p.CacheReadInputTokenCost != 0.0000005 {
		t.Errorf("cache read price wrong: %+v", p)
	}
	if p.CacheCreationInputTokenCost != nil {
		t.Errorf("absent cache write price must stay nil: %+v", p)
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		key  string
		want []string
	}{
		{"anthropic.claude-opus-4-5-v1:0", []string{"claude-opus-4-5-v1:0", "claude-opus-4-5"}},
		{"us.anthropic.claude-sonnet-4-v1:0", []string{"claude-sonnet-4-v1:0", "claude-sonnet-4"}},
		{"bedrock/claude-opus-4-5", []string{"claude-opus-4-5"}},
		{"openai/gpt-5", []string{"gpt-5"}},
		{"titan-embed-v1", []string{"titan-embed"}},
		{"gpt-5", nil},
	}
	for _, tt := range tests {
		got := normalizeKey(tt.key)
		if len(got) != len(tt.want) {
			t.Errorf("normalizeKey(%q) = %v, want %v", tt.key, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("normalizeKey(%q) = %v, want %v", tt.key, got, tt.want)
				break
			}
		}
	}
}

func TestParseLiteLLM_OriginalKeyWinsOverVariant(t *testing.T) {
	// A catalog can carry both "openai/gpt-5" and a bare "gpt-5"; the bare
	// entry must not be shadowed by the normalized variant.
	data := []byte(`{
		"openai/gpt-5": {"input_cost_per_token": 0.00000125, "output_cost_per_token": 0.00001},
		"gpt-5": {"input_cost_per_token": 0.000002, "output_cost_per_token": 0.00002}
	}`)
	table, err := parseLiteLLM(data)
	if err != nil {
		t.Fatal(err)
	}
	if got := table["gpt-5"].InputCostPerToken; got != 0.000002 {
		t.Fatalf("bare key shadowed, input price = %v", got)
	}
}
