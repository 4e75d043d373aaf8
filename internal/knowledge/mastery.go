package knowledge

import (
	"fmt"
	"math"
)

// Tuning constants for the concept mastery model.
const (
	// MasteryThreshold is the mastery level above which a concept counts as proficient
	MasteryThreshold = 0.8
	// LearningRate controls how quickly mastery moves toward the latest performance
	LearningRate = 0.1
	// ConfidenceDecay discounts confidence on every update
	ConfidenceDecay = 0.95
	// Score awarded for a correct answer that needed a hint
	hintedScore = 0.7
	// Exposures needed before confidence reaches its cap
	confidenceRampExposures = 10
)

// MasteryUpdate is the result of folding one answer into a concept's mastery
// estimate. Counters are post-increment values ready to persist.
type MasteryUpdate struct {
	MasteryLevel     float64
	ConfidenceScore  float64
	LearningVelocity float64
	TimesSeen        int
	TimesCorrect     int
}

// UpdateMastery applies an exponential moving average pulling mastery toward
// the latest performance signal, scaled by the concept weight for this
// question. timesSeen and timesCorrect are the counters before this answer.
func UpdateMastery(priorMastery float64, timesSeen, timesCorrect int, isCorrect, hintUsed bool, weight float64) (MasteryUpdate, error) {
	if timesSeen < 0 {
		return MasteryUpdate{}, fmt.Errorf("times seen %d must not be negative", timesSeen)
	}
	if timesCorrect < 0 || timesCorrect > timesSeen {
		return MasteryUpdate{}, fmt.Errorf("times correct %d out of range for %d seen", timesCorrect, timesSeen)
	}
	if priorMastery < 0 || priorMastery > 1 {
		return MasteryUpdate{}, fmt.Errorf("prior mastery %.3f outside [0, 1]", priorMastery)
	}
	if weight <= 0 || math.IsInf(weight, 0) || math.IsNaN(weight) {
		return MasteryUpdate{}, fmt.Errorf("weight %v must be a finite positive number", weight)
	}
	if LearningRate*weight > 1 {
		return MasteryUpdate{}, fmt.Errorf("weight %.2f would overshoot the mastery average", weight)
	}

	performance := 0.0
	if isCorrect {
		performance = 1.0
		if hintUsed {
			performance = hintedScore
		}
	}

	seen := timesSeen + 1
	correct := timesCorrect
	if isCorrect {
		correct++
	}

	mastery := priorMastery + LearningRate*weight*(performance-priorMastery)

	// Confidence ramps linearly with exposure up to the cap, discounted by a
	// fixed decay factor on every update.
	confidence := math.Min(1.0, float64(seen)/confidenceRampExposures) * ConfidenceDecay

	velocity := float64(correct) / float64(seen) * confidence

	return MasteryUpdate{
		MasteryLevel:     mastery,
		ConfidenceScore:  confidence,
		LearningVelocity: velocity,
		TimesSeen:        seen,
		TimesCorrect:     correct,
	}, nil
}
