package pricing

import "encoding/json"

const llmpricesURL = "https://www.llm-prices.com/current-v1.json"

type llmpricesCatalog struct {
	Prices []llmpricesEntry `json:"prices"`
}

// Prices here are USD per million tokens.
type llmpricesEntry struct {
	ID          string   `json:"id"`
	Input       *float64 `json:"input"`
	Output      *float64 `json:"output"`
	InputCached *float64 `json:"input_cached"`
}

func parseLLMPrices(data []byte) (Table, error) {
	var catalog llmpricesCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, err
	}

	table := make(Table, len(catalog.Prices))
	for _, entry := range catalog.Prices {
		if entry.ID == "" || entry.Input == nil || entry.Output == nil {
			continue
		}
		p := ModelPricing{
			InputCostPerToken:  *entry.Input / 1e6,
			OutputCostPerToken: *entry.Output / 1e6,
		}
		if entry.InputCached != nil {
			cached := *entry.InputCached / 1e6
			p.CacheReadInputTokenCost = &cached
		}
		table[entry.ID] = p
	}
	return table, nil
}
