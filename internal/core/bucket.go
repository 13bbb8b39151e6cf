package core

// AggregatedBucket accumulates token and cost totals for one bucket key.
// Cost is nil until at least one contributing record had a priced model;
// a nil cost renders as "N/A", never as zero.
type AggregatedBucket struct {
	InputTokens              uint64
	OutputTokens             uint64
	CacheCreationInputTokens uint64
	CacheReadInputTokens     uint64
	Cost                     *float64

	Models   []string // short display names, most expensive first
	Projects []string
	Tools    []string
	Details  []ModelBucketDetail
}

// ModelBucketDetail is the per-model slice of a bucket.
type ModelBucketDetail struct {
	Model                    string
	InputTokens              uint64
	OutputTokens             uint64
	CacheCreationInputTokens uint64
	CacheReadInputTokens     uint64
	Cost                     *float64
}

// mergeCost folds an optional cost into an optional accumulator:
// nil+nil=nil, nil+v=v, a+b=a+b.
func mergeCost(target, source *float64) *float64 {
	switch {
	case source == nil:
		return target
	case target == nil:
		v := *source
		return &v
	default:
		v := *target + *source
		return &v
	}
}

// Accumulate adds token counts and an optional cost to the bucket totals.
func (b *AggregatedBucket) Accumulate(input, output, cacheCreation, cacheRead uint64, cost *float64) {
	b.InputTokens += input
	b.OutputTokens += output
	b.CacheCreationInputTokens += cacheCreation
	b.CacheReadInputTokens += cacheRead
	b.Cost = mergeCost(b.Cost, cost)
}

// AccumulateFrom folds another bucket's totals into this one. Used for the
// table's TOTAL row.
func (b *AggregatedBucket) AccumulateFrom(other *AggregatedBucket) {
	b.Accumulate(
		other.InputTokens,
		other.OutputTokens,
		other.CacheCreationInputTokens,
		other.CacheReadInputTokens,
		other.Cost,
	)
}

// Accumulate adds token counts and an optional cost to the model detail.
func (d *ModelBucketDetail) Accumulate(input, output, cacheCreation, cacheRead uint64, cost *float64) {
	d.InputTokens += input
	d.OutputTokens += output
	d.CacheCreationInputTokens += cacheCreation
	d.CacheReadInputTokens += cacheRead
	d.Cost = mergeCost(d.Cost, cost)
}
