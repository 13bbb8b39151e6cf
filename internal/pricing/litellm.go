package pricing

import (
	"encoding/json"
	"strings"
)

const litellmURL = "https://raw.githubusercontent.com/BerriAI/litellm/main/model_prices_and_context_window.json"

type litellmEntry struct {
	InputCostPerToken           *float64 `json:"input_cost_per_token"`
	OutputCostPerToken          *float64 `json:"output_cost_per_token"`
	CacheReadInputTokenCost     *float64 `json:"cache_read_input_token_cost"`
	CacheCreationInputTokenCost *float64 `json:"cache_creation_input_token_cost"`
}

// parseLiteLLM indexes the LiteLLM catalog both under its original keys
// and under normalized variants, so local tool model names (like
// "claude-opus-4-5-20251101") resolve without a provider prefix.
func parseLiteLLM(data []byte) (Table, error) {
	var raw map[string]litellmEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	table := make(Table, len(raw))
	for key, entry := range raw {
		if entry.InputCostPerToken == nil || entry.OutputCostPerToken == nil {
			continue
		}
		p := ModelPricing{
			InputCostPerToken:           *entry.InputCostPerToken,
			OutputCostPerToken:          *entry.OutputCostPerToken,
			CacheReadInputTokenCost:     entry.CacheReadInputTokenCost,
			CacheCreationInputTokenCost: entry.CacheCreationInputTokenCost,
		}

		table[key] = p
		for _, variant := range normalizeKey(key) {
			if _, exists := table[variant]; !exists {
				table[variant] = p
			}
		}
	}
	return table, nil
}

func normalizeKey(key string) []string {
	var variants []string

	stripped := stripProviderPrefix(key)
	if stripped != key {
		variants = append(variants, stripped)
	}
	if withoutSuffix := stripVersionSuffix(stripped); withoutSuffix != stripped {
		variants = append(variants, withoutSuffix)
	}
	return variants
}

// Longest prefixes first.
var providerPrefixes = []string{
	"us.anthropic.",
	"eu.anthropic.",
	"au.anthropic.",
	"apac.anthropic.",
	"global.anthropic.",
	"anthropic.",
	"bedrock/",
	"openai/",
}

func stripProviderPrefix(key string) string {
	for _, prefix := range providerPrefixes {
		if rest, ok := strings.CutPrefix(key, prefix); ok {
			return rest
		}
	}
	return key
}

func stripVersionSuffix(key string) string {
	if stripped, ok := strings.CutSuffix(key, ":0"); ok {
		if stripped2, ok := strings.CutSuffix(stripped, "-v1"); ok {
			return stripped2
		}
		return stripped
	}
	if stripped, ok := strings.CutSuffix(key, "-v1"); ok {
		return stripped
	}
	return key
}
