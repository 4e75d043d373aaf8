package models

import "fmt"

// AnswerEvent is what the quiz session reports after the user finishes a
// question: correctness, how many tries the current cycle took, and whether
// a hint was shown.
type AnswerEvent struct {
	UserID       int64 `json:"user_id"`
	QuestionID   int64 `json:"question_id"`
	IsCorrect    bool  `json:"is_correct"`
	AttemptCycle int   `json:"attempt_cycle"` // tries before success/give-up in this session, 1-based
	HintUsed     bool  `json:"hint_used"`
}

// Validate enforces the caller contract before the event reaches the
// schedulers.
func (e *AnswerEvent) Validate() error {
	if e.UserID <= 0 {
		return fmt.Errorf("answer event: invalid user id %d", e.UserID)
	}
	if e.QuestionID <= 0 {
		return fmt.Errorf("answer event: invalid question id %d", e.QuestionID)
	}
	if e.AttemptCycle < 1 {
		return fmt.Errorf("answer event: attempt cycle %d must be at least 1", e.AttemptCycle)
	}
	return nil
}
