package spaced_repetition

import "math"

// Recall grades the outcome of a single answer cycle.
type Recall int

const (
	// RecallFailed means the answer was wrong or the user gave up
	RecallFailed Recall = iota
	// RecallHesitant means the answer was correct but only after hints or retries
	RecallHesitant
	// RecallPerfect means the answer was correct on the first try
	RecallPerfect
)

// IntervalPolicy decides how the review interval grows or shrinks after a
// recall. The continuous multiplicative policy is the production default;
// the bucket policy exists for experimentation. The two are not compatible
// and must not be mixed within one deployment.
type IntervalPolicy interface {
	// NextInterval returns the next review interval in days given the prior
	// interval, the prior ease factor and the recall grade.
	NextInterval(priorInterval, priorEase float64, recall Recall) float64
}

// MultiplicativePolicy grows the interval by the ease factor on perfect
// recall, shrinks it by 20% on hesitant recall, and resets it to one day on
// failure. Intervals are capped at MaxIntervalDays and floored at one day.
type MultiplicativePolicy struct {
	MaxIntervalDays float64
}

// NewMultiplicativePolicy returns the default continuous policy with a
// 180-day cap.
func NewMultiplicativePolicy() *MultiplicativePolicy {
	return &MultiplicativePolicy{MaxIntervalDays: 180}
}

// NextInterval implements IntervalPolicy.
func (p *MultiplicativePolicy) NextInterval(priorInterval, priorEase float64, recall Recall) float64 {
	switch recall {
	case RecallPerfect:
		return math.Min(priorInterval*priorEase, p.MaxIntervalDays)
	case RecallHesitant:
		return math.Max(1, priorInterval*0.8)
	default:
		return 1
	}
}

// BucketPolicy steps through a fixed ladder of intervals: any correct recall
// advances to the smallest bucket above the current interval, a failure
// halves the interval (never below one day).
type BucketPolicy struct {
	Buckets []float64
}

// NewBucketPolicy returns the discrete ladder used by the legacy review path.
func NewBucketPolicy() *BucketPolicy {
	return &BucketPolicy{Buckets: []float64{1, 3, 7, 14, 30, 90}}
}

// NextInterval implements IntervalPolicy.
func (p *BucketPolicy) NextInterval(priorInterval, priorEase float64, recall Recall) float64 {
	if recall == RecallFailed {
		return math.Max(1, priorInterval/2)
	}
	for _, b := range p.Buckets {
		if b > priorInterval {
			return b
		}
	}
	return p.Buckets[len(p.Buckets)-1]
}
