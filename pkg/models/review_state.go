package models

import (
	"fmt"
	"time"
)

// Bounds enforced by the review update rule.
const (
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 3.0
	DefaultEaseFactor = 2.5
	MaxIntervalDays   = 180.0
	FirstMissInterval = 0.5 // first exposure failed: re-show within half a day
)

// ReviewState tracks a user's scheduling state for a single question
type ReviewState struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	QuestionID     int64     `json:"question_id" db:"question_id"`
	Attempts       int       `json:"attempts" db:"attempts"`
	CorrectCount   int       `json:"correct_count" db:"correct_count"`
	EaseFactor     float64   `json:"ease_factor" db:"ease_factor"`     // growth multiplier, bounded [1.3, 3.0]
	IntervalDays   float64   `json:"interval_days" db:"interval_days"` // days until next review
	LastAnsweredAt time.Time `json:"last_answered_at" db:"last_answered_at"`
	NextReviewAt   time.Time `json:"next_review_at" db:"next_review_at"`
	Category       string    `json:"category" db:"category"`
	Difficulty     int       `json:"difficulty" db:"difficulty"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Validate rejects rows that violate the scheduling invariants. Repositories
// call this before handing state to the scheduler so malformed rows never
// reach the update rule.
func (s *ReviewState) Validate() error {
	if s.Attempts < 0 {
		return fmt.Errorf("review state %d: negative attempts %d", s.ID, s.Attempts)
	}
	if s.CorrectCount < 0 || s.CorrectCount > s.Attempts {
		return fmt.Errorf("review state %d: correct count %d out of range for %d attempts", s.ID, s.CorrectCount, s.Attempts)
	}
	if s.EaseFactor < MinEaseFactor || s.EaseFactor > MaxEaseFactor {
		return fmt.Errorf("review state %d: ease factor %.2f outside [%.1f, %.1f]", s.ID, s.EaseFactor, MinEaseFactor, MaxEaseFactor)
	}
	if s.IntervalDays < FirstMissInterval {
		return fmt.Errorf("review state %d: interval %.2f below minimum %.1f", s.ID, s.IntervalDays, FirstMissInterval)
	}
	return nil
}

// IsDue reports whether the question should be re-presented at the given time.
func (s *ReviewState) IsDue(now time.Time) bool {
	return !s.NextReviewAt.After(now)
}
