package pricing

import (
	"encoding/json"
	"strconv"
	"strings"
)

const openrouterURL = "https://api.openrouter.ai/api/v1/models"

type openrouterCatalog struct {
	Data []openrouterModel `json:"data"`
}

type openrouterModel struct {
	ID      string             `json:"id"`
	Pricing *openrouterPricing `json:"pricing"`
}

// OpenRouter serves prices as decimal strings.
type openrouterPricing struct {
	Prompt          string `json:"prompt"`
	Completion      string `json:"completion"`
	InputCacheRead  string `json:"input_cache_read"`
	InputCacheWrite string `json:"input_cache_write"`
}

func parseOpenRouter(data []byte) (Table, error) {
	var catalog openrouterCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, err
	}

	table := make(Table, len(catalog.Data))
	for _, model := range catalog.Data {
		if model.ID == "" || model.Pricing == nil {
			continue
		}
		input, okIn := parsePrice(model.Pricing.Prompt)
		output, okOut := parsePrice(model.Pricing.Completion)
		if !okIn || !okOut {
			continue
		}

		p := ModelPricing{
			InputCostPerToken:  input,
			OutputCostPerToken: output,
		}
		if v, ok := parsePrice(model.Pricing.InputCacheRead); ok {
			p.CacheReadInputTokenCost = &v
		}
		if v, ok := parsePrice(model.Pricing.InputCacheWrite); ok {
			p.CacheCreationInputTokenCost = &v
		}

		table[model.ID] = p
		// Index the short form too: "anthropic/claude-opus-4-5" is also
		// reachable as "claude-opus-4-5".
		if idx := strings.LastIndex(model.ID, "/"); idx >= 0 {
			short := model.ID[idx+1:]
			if _, exists := table[short]; !exists && short != "" {
				table[short] = p
			}
		}
	}
	return table, nil
}

func parsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
