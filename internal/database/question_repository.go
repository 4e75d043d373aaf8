package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/sipschool/pkg/models"
)

// QuestionRepository handles database operations for questions
type QuestionRepository struct{}

// NewQuestionRepository creates a new repository instance
func NewQuestionRepository() *QuestionRepository {
	return &QuestionRepository{}
}

// GetByID returns a question by ID
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	var question models.Question
	query := DB.Rebind(`
		SELECT id, text, answer, category, difficulty, explanation, generated, created_at, updated_at
		FROM questions WHERE id = ?
	`)
	err := DB.GetContext(ctx, &question, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &question, nil
}

// Create inserts a new question
func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	query := DB.Rebind(`
		INSERT INTO questions (text, answer, category, difficulty, explanation, generated)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	result, err := DB.ExecContext(ctx, query,
		question.Text,
		question.Answer,
		question.Category,
		question.Difficulty,
		question.Explanation,
		question.Generated,
	)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	question.ID = id

	return nil
}

// GetByCategory returns up to limit questions in a category.
func (r *QuestionRepository) GetByCategory(ctx context.Context, category string, limit int) ([]models.Question, error) {
	var questions []models.Question
	query := DB.Rebind(`
		SELECT id, text, answer, category, difficulty, explanation, generated, created_at, updated_at
		FROM questions WHERE category = ? LIMIT ?
	`)
	if err := DB.SelectContext(ctx, &questions, query, category, limit); err != nil {
		return nil, fmt.Errorf("failed to get questions by category: %w", err)
	}
	return questions, nil
}

// GetByIDs returns the questions with the given IDs, in no particular order.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, text, answer, category, difficulty, explanation, generated, created_at, updated_at
		FROM questions WHERE id IN (?)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build question query: %w", err)
	}

	var questions []models.Question
	if err := DB.SelectContext(ctx, &questions, DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	return questions, nil
}

// GetUnseenByConcepts returns questions exercising any of the given concepts
// that the user has never answered, easiest first.
func (r *QuestionRepository) GetUnseenByConcepts(ctx context.Context, userID int64, conceptIDs []int64, limit int) ([]models.Question, error) {
	if len(conceptIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT DISTINCT q.id, q.text, q.answer, q.category, q.difficulty,
		       q.explanation, q.generated, q.created_at, q.updated_at
		FROM questions q
		JOIN question_concepts qc ON q.id = qc.question_id
		WHERE qc.concept_id IN (?)
		AND q.id NOT IN (SELECT question_id FROM review_states WHERE user_id = ?)
		ORDER BY q.difficulty ASC, q.id ASC
		LIMIT ?
	`, conceptIDs, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build unseen question query: %w", err)
	}

	var questions []models.Question
	if err := DB.SelectContext(ctx, &questions, DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get unseen questions: %w", err)
	}
	return questions, nil
}
