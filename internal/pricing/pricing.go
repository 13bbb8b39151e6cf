// Package pricing maps model names to per-token USD costs, sourced from
// public price catalogs and cached locally.
package pricing

import (
	"sort"

	"github.com/samber/lo"

	"github.com/franzos/tku/internal/core"
)

// ModelPricing is the per-token USD cost of one model. Cache costs are
// optional; catalogs without them simply don't bill cache traffic.
type ModelPricing struct {
	InputCostPerToken           float64
	OutputCostPerToken          float64
	CacheReadInputTokenCost     *float64
	CacheCreationInputTokenCost *float64
}

// Table is a model name to pricing lookup.
type Table map[string]ModelPricing

// CostForRecord prices a single record, or returns nil when the model is
// not in the table. Unpriced stays distinct from free.
func (t Table) CostForRecord(r core.UsageRecord) *float64 {
	p, ok := t[r.Model]
	if !ok {
		return nil
	}

	cost := float64(r.InputTokens)*p.InputCostPerToken +
		float64(r.OutputTokens)*p.OutputCostPerToken
	if p.CacheReadInputTokenCost != nil {
		cost += float64(r.CacheReadInputTokens) * *p.CacheReadInputTokenCost
	}
	if p.CacheCreationInputTokenCost != nil {
		cost += float64(r.CacheCreationInputTokens) * *p.CacheCreationInputTokenCost
	}
	return &cost
}

// UnpricedModels lists the distinct models in records that the table
// cannot price, sorted.
func (t Table) UnpricedModels(records []core.UsageRecord) []string {
	models := lo.Uniq(lo.Map(records, func(r core.UsageRecord, _ int) string {
		return r.Model
	}))
	unpriced := lo.Filter(models, func(m string, _ int) bool {
		_, ok := t[m]
		return !ok
	})
	sort.Strings(unpriced)
	return unpriced
}
