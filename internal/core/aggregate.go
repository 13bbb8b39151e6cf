package core

import (
	"sort"

	"github.com/samber/lo"
)

// BucketKeyFunc maps a record to the bucket it accumulates into.
type BucketKeyFunc func(UsageRecord) string

func DailyKey(r UsageRecord) string   { return r.Timestamp.UTC().Format("2006-01-02") }
func MonthlyKey(r UsageRecord) string { return r.Timestamp.UTC().Format("2006-01") }
func SessionKey(r UsageRecord) string { return r.Project + " | " + r.SessionID }
func ModelKey(r UsageRecord) string   { return r.Model }

// TotalKey collapses everything into one bucket (watch and bar modes).
func TotalKey(UsageRecord) string { return "total" }

// PricingLookup resolves an optional per-record cost. A nil result means
// the record's model has no pricing entry.
type PricingLookup interface {
	CostForRecord(r UsageRecord) *float64
}

// Per-key accumulator state kept during the hot loop so we don't maintain
// four separate maps sharing the same key.
type bucketState struct {
	bucket   AggregatedBucket
	projects map[string]struct{}
	tools    map[string]struct{}
	details  map[string]*ModelBucketDetail
}

// Aggregate groups records by keyFn and accumulates token totals, optional
// costs, and per-model details. Returned keys are sorted lexicographically;
// totals are commutative, so input order never changes the result.
func Aggregate(records []UsageRecord, keyFn BucketKeyFunc, pricing PricingLookup) ([]string, map[string]*AggregatedBucket) {
	states := make(map[string]*bucketState)

	for _, r := range records {
		key := keyFn(r)
		cost := pricing.CostForRecord(r)

		state, ok := states[key]
		if !ok {
			state = &bucketState{
				projects: make(map[string]struct{}),
				tools:    make(map[string]struct{}),
				details:  make(map[string]*ModelBucketDetail),
			}
			states[key] = state
		}

		state.bucket.Accumulate(r.InputTokens, r.OutputTokens, r.CacheCreationInputTokens, r.CacheReadInputTokens, cost)
		state.projects[r.Project] = struct{}{}
		state.tools[r.Provider] = struct{}{}

		detail, ok := state.details[r.Model]
		if !ok {
			detail = &ModelBucketDetail{Model: r.Model}
			state.details[r.Model] = detail
		}
		detail.Accumulate(r.InputTokens, r.OutputTokens, r.CacheCreationInputTokens, r.CacheReadInputTokens, cost)
	}

	buckets := make(map[string]*AggregatedBucket, len(states))
	for key, state := range states {
		bucket := state.bucket

		details := lo.Map(lo.Values(state.details), func(d *ModelBucketDetail, _ int) ModelBucketDetail {
			return *d
		})
		sort.SliceStable(details, func(i, j int) bool {
			return costOrZero(details[i].Cost) > costOrZero(details[j].Cost)
		})

		bucket.Details = details
		bucket.Models = lo.Map(details, func(d ModelBucketDetail, _ int) string {
			return ShortModelName(d.Model)
		})
		bucket.Projects = sortedKeys(state.projects)
		bucket.Tools = sortedKeys(state.tools)

		buckets[key] = &bucket
	}

	keys := lo.Keys(buckets)
	sort.Strings(keys)
	return keys, buckets
}

func costOrZero(c *float64) float64 {
	if c == nil {
		return 0
	}
	return *c
}

func sortedKeys(set map[string]struct{}) []string {
	keys := lo.Keys(set)
	sort.Strings(keys)
	return keys
}
