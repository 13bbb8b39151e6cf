package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/franzos/tku/internal/core"
	"github.com/franzos/tku/internal/exchange"
)

// barPayload is the waybar/i3bar/polybar custom-module contract.
type barPayload struct {
	Text     string `json:"text"`
	Tooltip  string `json:"tooltip"`
	Class    string `json:"class"`
	Currency string `json:"currency"`
}

// RenderBar builds the status-bar JSON line for one summary bucket. A nil
// bucket means no usage in the period and renders a zero-cost payload.
func RenderBar(bucket *core.AggregatedBucket, template string, warn, critical *float64, periodLabel string, rate exchange.Rate) (string, error) {
	if bucket == nil {
		zero := 0.0
		payload := barPayload{
			Text:     rate.FormatCost(&zero),
			Tooltip:  "No usage",
			Class:    "normal",
			Currency: rate.Code,
		}
		data, err := json.Marshal(payload)
		return string(data), err
	}

	var cost float64
	if bucket.Cost != nil {
		cost = *bucket.Cost
	}
	converted := rate.Convert(cost)
	costStr := rate.FormatCost(&cost)

	replacer := strings.NewReplacer(
		"{cost}", costStr,
		"{input}", FormatTokens(bucket.InputTokens),
		"{output}", FormatTokens(bucket.OutputTokens),
		"{models}", strings.Join(bucket.Models, ", "),
		"{projects}", strings.Join(bucket.Projects, ", "),
	)

	var tooltip strings.Builder
	fmt.Fprintf(&tooltip, "%s: %s", periodLabel, costStr)
	for _, detail := range bucket.Details {
		fmt.Fprintf(&tooltip, "\n  %s: %s",
			core.ShortModelName(detail.Model), rate.FormatCost(detail.Cost))
	}

	class := "normal"
	switch {
	case critical != nil && converted >= *critical:
		class = "critical"
	case warn != nil && converted >= *warn:
		class = "warning"
	}

	payload := barPayload{
		Text:     replacer.Replace(template),
		Tooltip:  tooltip.String(),
		Class:    class,
		Currency: rate.Code,
	}
	data, err := json.Marshal(payload)
	return string(data), err
}
