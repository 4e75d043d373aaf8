package spaced_repetition

import (
	"fmt"
	"math"
	"time"

	"github.com/example/sipschool/pkg/models"
)

// Ease factor adjustments applied by the update rule.
const (
	perfectRecallBonus    = 0.1
	hesitantRecallPenalty = 0.1
	failurePenalty        = 0.3
)

// Result is the outcome of one review update. Persistence is the caller's
// responsibility; the scheduler only computes the new values.
type Result struct {
	EaseFactor   float64
	IntervalDays float64
	NextReviewAt time.Time
	Recall       Recall
}

// Scheduler computes ease/interval updates for question reviews. It is a
// pure computation: the clock is passed in, no state is read or written.
type Scheduler struct {
	policy IntervalPolicy
}

// NewScheduler creates a scheduler with the continuous multiplicative
// interval policy, the production default.
func NewScheduler() *Scheduler {
	return &Scheduler{policy: NewMultiplicativePolicy()}
}

// NewSchedulerWithPolicy creates a scheduler with a custom interval policy.
func NewSchedulerWithPolicy(policy IntervalPolicy) *Scheduler {
	return &Scheduler{policy: policy}
}

// Review applies the update rule to the prior state (nil for a first-time
// question) and returns the new ease factor, interval and due date.
// attemptCycle is the number of tries in the current session, 1-based: a
// correct answer with attemptCycle 1 counts as perfect recall.
func (s *Scheduler) Review(prior *models.ReviewState, isCorrect bool, attemptCycle int, now time.Time) (Result, error) {
	if attemptCycle < 1 {
		return Result{}, fmt.Errorf("attempt cycle %d must be at least 1", attemptCycle)
	}
	if prior != nil {
		if err := prior.Validate(); err != nil {
			return Result{}, fmt.Errorf("invalid prior state: %w", err)
		}
	}

	recall := gradeRecall(isCorrect, attemptCycle)

	// First exposure: default ease, one-day interval on success. A miss with
	// no ease data yet gets a half-day interval so the question reappears
	// almost immediately.
	if prior == nil {
		interval := 1.0
		if !isCorrect {
			interval = models.FirstMissInterval
		}
		return Result{
			EaseFactor:   models.DefaultEaseFactor,
			IntervalDays: interval,
			NextReviewAt: nextReviewAt(now, interval),
			Recall:       recall,
		}, nil
	}

	var ease float64
	switch recall {
	case RecallPerfect:
		ease = math.Min(prior.EaseFactor+perfectRecallBonus, models.MaxEaseFactor)
	case RecallHesitant:
		ease = math.Max(prior.EaseFactor-hesitantRecallPenalty, models.MinEaseFactor)
	default:
		ease = math.Max(prior.EaseFactor-failurePenalty, models.MinEaseFactor)
	}

	interval := s.policy.NextInterval(prior.IntervalDays, prior.EaseFactor, recall)

	return Result{
		EaseFactor:   ease,
		IntervalDays: interval,
		NextReviewAt: nextReviewAt(now, interval),
		Recall:       recall,
	}, nil
}

func gradeRecall(isCorrect bool, attemptCycle int) Recall {
	switch {
	case !isCorrect:
		return RecallFailed
	case attemptCycle == 1:
		return RecallPerfect
	default:
		return RecallHesitant
	}
}

// nextReviewAt adds the interval to the clock. Whole-day intervals are
// rounded to days; sub-day intervals keep their fraction so a first-exposure
// miss comes back within hours, not tomorrow.
func nextReviewAt(now time.Time, intervalDays float64) time.Time {
	if intervalDays < 1 {
		return now.Add(time.Duration(intervalDays * float64(24*time.Hour)))
	}
	return now.AddDate(0, 0, int(math.Round(intervalDays)))
}
