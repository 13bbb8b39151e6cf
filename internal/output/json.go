package output

import (
	"encoding/json"

	"github.com/franzos/tku/internal/core"
	"github.com/franzos/tku/internal/exchange"
)

type jsonDetail struct {
	Model                    string   `json:"model"`
	InputTokens              uint64   `json:"input_tokens"`
	OutputTokens             uint64   `json:"output_tokens"`
	CacheCreationInputTokens uint64   `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     uint64   `json:"cache_read_input_tokens"`
	Cost                     *float64 `json:"cost"`
}

type jsonBucket struct {
	Currency                 string       `json:"currency"`
	InputTokens              uint64       `json:"input_tokens"`
	OutputTokens             uint64       `json:"output_tokens"`
	CacheCreationInputTokens uint64       `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     uint64       `json:"cache_read_input_tokens"`
	Cost                     *float64     `json:"cost"`
	Models                   []string     `json:"models"`
	Projects                 []string     `json:"projects"`
	Details                  []jsonDetail `json:"details"`
}

// RenderJSON emits the buckets as a pretty-printed object keyed by
// period. Costs are converted into the display currency; nil cost stays
// null.
func RenderJSON(buckets map[string]*core.AggregatedBucket, rate exchange.Rate) (string, error) {
	out := make(map[string]jsonBucket, len(buckets))
	for key, bucket := range buckets {
		details := make([]jsonDetail, len(bucket.Details))
		for i, d := range bucket.Details {
			details[i] = jsonDetail{
				Model:                    d.Model,
				InputTokens:              d.InputTokens,
				OutputTokens:             d.OutputTokens,
				CacheCreationInputTokens: d.CacheCreationInputTokens,
				CacheReadInputTokens:     d.CacheReadInputTokens,
				Cost:                     convertCost(d.Cost, rate),
			}
		}
		out[key] = jsonBucket{
			Currency:                 rate.Code,
			InputTokens:              bucket.InputTokens,
			OutputTokens:             bucket.OutputTokens,
			CacheCreationInputTokens: bucket.CacheCreationInputTokens,
			CacheReadInputTokens:     bucket.CacheReadInputTokens,
			Cost:                     convertCost(bucket.Cost, rate),
			Models:                   bucket.Models,
			Projects:                 bucket.Projects,
			Details:                  details,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func convertCost(cost *float64, rate exchange.Rate) *float64 {
	if cost == nil {
		return nil
	}
	converted := rate.Convert(*cost)
	return &converted
}
