package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/sipschool/pkg/models"
)

// ReviewStateRepository handles database operations for per-question review
// scheduling state
type ReviewStateRepository struct{}

// NewReviewStateRepository creates a new repository instance
func NewReviewStateRepository() *ReviewStateRepository {
	return &ReviewStateRepository{}
}

// GetByUserAndQuestion returns the review state for a specific user and
// question, or nil if the question has never been answered.
func (r *ReviewStateRepository) GetByUserAndQuestion(ctx context.Context, userID, questionID int64) (*models.ReviewState, error) {
	var state models.ReviewState
	query := DB.Rebind(`
		SELECT id, user_id, question_id, attempts, correct_count, ease_factor,
		       interval_days, last_answered_at, next_review_at, category,
		       difficulty, created_at, updated_at
		FROM review_states
		WHERE user_id = ? AND question_id = ?
	`)
	err := DB.GetContext(ctx, &state, query, userID, questionID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review state: %w", err)
	}
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("malformed review state row: %w", err)
	}
	return &state, nil
}

// GetDueQuestions returns review states due at the given time, earliest due
// first. That ordering is the contract the quiz session relies on.
func (r *ReviewStateRepository) GetDueQuestions(ctx context.Context, userID int64, now time.Time, limit int) ([]models.ReviewState, error) {
	var states []models.ReviewState
	query := DB.Rebind(`
		SELECT id, user_id, question_id, attempts, correct_count, ease_factor,
		       interval_days, last_answered_at, next_review_at, category,
		       difficulty, created_at, updated_at
		FROM review_states
		WHERE user_id = ? AND next_review_at <= ?
		ORDER BY next_review_at ASC, id ASC
		LIMIT ?
	`)
	err := DB.SelectContext(ctx, &states, query, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due questions: %w", err)
	}
	return states, nil
}

// CountDue returns how many questions are due for the user at the given time.
func (r *ReviewStateRepository) CountDue(ctx context.Context, userID int64, now time.Time) (int, error) {
	var count int
	query := DB.Rebind("SELECT COUNT(*) FROM review_states WHERE user_id = ? AND next_review_at <= ?")
	if err := DB.GetContext(ctx, &count, query, userID, now); err != nil {
		return 0, fmt.Errorf("failed to count due questions: %w", err)
	}
	return count, nil
}

// Create inserts a review state for a first-time answer.
func (r *ReviewStateRepository) Create(ctx context.Context, state *models.ReviewState) error {
	query := DB.Rebind(`
		INSERT INTO review_states (
			user_id, question_id, attempts, correct_count, ease_factor,
			interval_days, last_answered_at, next_review_at, category, difficulty
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	result, err := DB.ExecContext(ctx, query,
		state.UserID,
		state.QuestionID,
		state.Attempts,
		state.CorrectCount,
		state.EaseFactor,
		state.IntervalDays,
		state.LastAnsweredAt,
		state.NextReviewAt,
		state.Category,
		state.Difficulty,
	)
	if err != nil {
		return fmt.Errorf("failed to create review state: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	state.ID = id

	return nil
}

// UpdateIfUnchanged writes the state back only if the stored attempts counter
// still matches priorAttempts. Two concurrent answers to the same question
// then can't silently clobber each other; the loser retries from a fresh
// read. Returns false when the row changed underneath us.
func (r *ReviewStateRepository) UpdateIfUnchanged(ctx context.Context, state *models.ReviewState, priorAttempts int) (bool, error) {
	query := DB.Rebind(`
		UPDATE review_states SET
			attempts = ?,
			correct_count = ?,
			ease_factor = ?,
			interval_days = ?,
			last_answered_at = ?,
			next_review_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND question_id = ? AND attempts = ?
	`)
	result, err := DB.ExecContext(ctx, query,
		state.Attempts,
		state.CorrectCount,
		state.EaseFactor,
		state.IntervalDays,
		state.LastAnsweredAt,
		state.NextReviewAt,
		state.UserID,
		state.QuestionID,
		priorAttempts,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update review state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// ResetUser wipes all review state for a user. Only the explicit
// user-initiated progress reset calls this.
func (r *ReviewStateRepository) ResetUser(ctx context.Context, userID int64) error {
	query := DB.Rebind("DELETE FROM review_states WHERE user_id = ?")
	if _, err := DB.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to reset review states: %w", err)
	}
	return nil
}

// GetUserStatistics returns aggregate scheduling stats for a user as of the
// given time.
func (r *ReviewStateRepository) GetUserStatistics(ctx context.Context, userID int64, now time.Time) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int
	query := DB.Rebind("SELECT COUNT(*) FROM review_states WHERE user_id = ?")
	if err := DB.GetContext(ctx, &total, query, userID); err != nil {
		return nil, fmt.Errorf("failed to count review states: %w", err)
	}
	stats["total_questions"] = total

	var dueToday int
	query = DB.Rebind("SELECT COUNT(*) FROM review_states WHERE user_id = ? AND next_review_at <= ?")
	if err := DB.GetContext(ctx, &dueToday, query, userID, now.AddDate(0, 0, 1)); err != nil {
		return nil, fmt.Errorf("failed to count due questions: %w", err)
	}
	stats["due_today"] = dueToday

	var avgEase float64
	query = DB.Rebind("SELECT COALESCE(AVG(ease_factor), 2.5) FROM review_states WHERE user_id = ?")
	if err := DB.GetContext(ctx, &avgEase, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get average ease factor: %w", err)
	}
	stats["avg_ease_factor"] = avgEase

	var totalAttempts, totalCorrect sql.NullInt64
	query = DB.Rebind("SELECT SUM(attempts), SUM(correct_count) FROM review_states WHERE user_id = ?")
	if err := DB.QueryRowContext(ctx, query, userID).Scan(&totalAttempts, &totalCorrect); err != nil {
		return nil, fmt.Errorf("failed to get attempt totals: %w", err)
	}
	stats["total_attempts"] = totalAttempts.Int64
	stats["total_correct"] = totalCorrect.Int64

	return stats, nil
}
