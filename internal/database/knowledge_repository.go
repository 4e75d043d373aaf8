package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/sipschool/pkg/models"
)

// KnowledgeRepository handles database operations for concept mastery and
// knowledge gaps
type KnowledgeRepository struct{}

// NewKnowledgeRepository creates a new repository instance
func NewKnowledgeRepository() *KnowledgeRepository {
	return &KnowledgeRepository{}
}

// GetByUserAndConcept returns the mastery row for a user and concept, or nil
// if the concept has never been seen.
func (r *KnowledgeRepository) GetByUserAndConcept(ctx context.Context, userID, conceptID int64) (*models.ConceptMastery, error) {
	var mastery models.ConceptMastery
	query := DB.Rebind(`
		SELECT id, user_id, concept_id, mastery_level, times_seen, times_correct,
		       learning_velocity, confidence_score, last_seen_at, created_at, updated_at
		FROM user_knowledge
		WHERE user_id = ? AND concept_id = ?
	`)
	err := DB.GetContext(ctx, &mastery, query, userID, conceptID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get concept mastery: %w", err)
	}
	if err := mastery.Validate(); err != nil {
		return nil, fmt.Errorf("malformed mastery row: %w", err)
	}
	return &mastery, nil
}

// Upsert creates or updates a mastery row keyed by (user, concept).
func (r *KnowledgeRepository) Upsert(ctx context.Context, mastery *models.ConceptMastery) error {
	query := DB.Rebind(`
		INSERT INTO user_knowledge (
			user_id, concept_id, mastery_level, times_seen, times_correct,
			learning_velocity, confidence_score, last_seen_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, concept_id) DO UPDATE SET
			mastery_level = excluded.mastery_level,
			times_seen = excluded.times_seen,
			times_correct = excluded.times_correct,
			learning_velocity = excluded.learning_velocity,
			confidence_score = excluded.confidence_score,
			last_seen_at = excluded.last_seen_at,
			updated_at = CURRENT_TIMESTAMP
	`)
	if _, err := DB.ExecContext(ctx, query,
		mastery.UserID,
		mastery.ConceptID,
		mastery.MasteryLevel,
		mastery.TimesSeen,
		mastery.TimesCorrect,
		mastery.LearningVelocity,
		mastery.ConfidenceScore,
		mastery.LastSeenAt,
	); err != nil {
		return fmt.Errorf("failed to upsert concept mastery: %w", err)
	}
	return nil
}

// GetUserMasteryLevels returns the user's mastery level per concept ID.
func (r *KnowledgeRepository) GetUserMasteryLevels(ctx context.Context, userID int64) (map[int64]float64, error) {
	var rows []struct {
		ConceptID    int64   `db:"concept_id"`
		MasteryLevel float64 `db:"mastery_level"`
	}
	query := DB.Rebind("SELECT concept_id, mastery_level FROM user_knowledge WHERE user_id = ?")
	if err := DB.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get mastery levels: %w", err)
	}

	levels := make(map[int64]float64, len(rows))
	for _, row := range rows {
		levels[row.ConceptID] = row.MasteryLevel
	}
	return levels, nil
}

// RecordGap upserts a knowledge gap for a user and concept, stamping it with
// the identification time and reopening it if it had been addressed.
func (r *KnowledgeRepository) RecordGap(ctx context.Context, userID, conceptID int64, gapScore float64, identifiedAt time.Time) error {
	query := DB.Rebind(`
		INSERT INTO knowledge_gaps (user_id, concept_id, gap_score, identified_at, addressed_at)
		VALUES (?, ?, ?, ?, NULL)
		ON CONFLICT (user_id, concept_id) DO UPDATE SET
			gap_score = excluded.gap_score,
			identified_at = excluded.identified_at,
			addressed_at = NULL
	`)
	if _, err := DB.ExecContext(ctx, query, userID, conceptID, gapScore, identifiedAt); err != nil {
		return fmt.Errorf("failed to record knowledge gap: %w", err)
	}
	return nil
}

// MarkAddressedGaps closes every open gap whose concept mastery has since
// climbed above the threshold. Returns the number of gaps closed.
func (r *KnowledgeRepository) MarkAddressedGaps(ctx context.Context, userID int64, threshold float64, now time.Time) (int64, error) {
	query := DB.Rebind(`
		UPDATE knowledge_gaps SET addressed_at = ?
		WHERE user_id = ? AND addressed_at IS NULL
		AND concept_id IN (
			SELECT concept_id FROM user_knowledge
			WHERE user_id = ? AND mastery_level > ?
		)
	`)
	result, err := DB.ExecContext(ctx, query, now, userID, userID, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to mark gaps addressed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

// GetProfile assembles the user's knowledge profile: overall averages, the
// strongest and weakest concepts, and open gaps ranked by severity.
func (r *KnowledgeRepository) GetProfile(ctx context.Context, userID int64, threshold float64) (*models.KnowledgeProfile, error) {
	profile := &models.KnowledgeProfile{}

	var overall struct {
		AvgMastery  sql.NullFloat64 `db:"avg_mastery"`
		AvgVelocity sql.NullFloat64 `db:"avg_velocity"`
		Studied     int             `db:"studied"`
	}
	query := DB.Rebind(`
		SELECT AVG(mastery_level) AS avg_mastery,
		       AVG(learning_velocity) AS avg_velocity,
		       COUNT(*) AS studied
		FROM user_knowledge
		WHERE user_id = ?
	`)
	if err := DB.GetContext(ctx, &overall, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get overall mastery: %w", err)
	}
	profile.OverallMastery = overall.AvgMastery.Float64
	profile.LearningVelocity = overall.AvgVelocity.Float64
	profile.ConceptsStudied = overall.Studied

	query = DB.Rebind(`
		SELECT c.id, c.name, c.category, c.description, c.created_at,
		       uk.mastery_level, uk.times_seen, uk.confidence_score
		FROM user_knowledge uk
		JOIN concepts c ON uk.concept_id = c.id
		WHERE uk.user_id = ? AND uk.mastery_level >= ?
		ORDER BY uk.mastery_level DESC
		LIMIT 10
	`)
	if err := DB.SelectContext(ctx, &profile.StrongConcepts, query, userID, threshold); err != nil {
		return nil, fmt.Errorf("failed to get strong concepts: %w", err)
	}

	// Weak list only includes concepts with some exposure; a single unlucky
	// answer shouldn't brand a concept weak.
	query = DB.Rebind(`
		SELECT c.id, c.name, c.category, c.description, c.created_at,
		       uk.mastery_level, uk.times_seen, uk.confidence_score
		FROM user_knowledge uk
		JOIN concepts c ON uk.concept_id = c.id
		WHERE uk.user_id = ? AND uk.mastery_level < 0.5 AND uk.times_seen > 2
		ORDER BY uk.mastery_level ASC
		LIMIT 10
	`)
	if err := DB.SelectContext(ctx, &profile.WeakConcepts, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get weak concepts: %w", err)
	}

	query = DB.Rebind(`
		SELECT c.id, c.name, c.category, c.description, c.created_at, kg.gap_score
		FROM knowledge_gaps kg
		JOIN concepts c ON kg.concept_id = c.id
		WHERE kg.user_id = ? AND kg.addressed_at IS NULL
		ORDER BY kg.gap_score DESC
		LIMIT 5
	`)
	if err := DB.SelectContext(ctx, &profile.KnowledgeGaps, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get knowledge gaps: %w", err)
	}

	return profile, nil
}

// GetRecommendedConcepts ranks concepts the user should study next: open
// gaps first, then concepts never seen, then concepts below the user's own
// average mastery.
func (r *KnowledgeRepository) GetRecommendedConcepts(ctx context.Context, userID int64, threshold float64, limit int) ([]models.RecommendedConcept, error) {
	var recs []models.RecommendedConcept
	query := DB.Rebind(`
		WITH user_stats AS (
			SELECT AVG(mastery_level) AS avg_mastery
			FROM user_knowledge
			WHERE user_id = ?
		)
		SELECT c.id, c.name, c.category, c.description, c.created_at,
		       COALESCE(uk.mastery_level, 0) AS current_mastery,
		       COALESCE(uk.times_seen, 0) AS times_seen,
		       COALESCE(kg.gap_score, 0) AS gap_score,
		       CASE
		         WHEN kg.gap_score IS NOT NULL THEN 3
		         WHEN uk.mastery_level IS NULL THEN 2
		         WHEN uk.mastery_level < (SELECT avg_mastery FROM user_stats) THEN 1
		         ELSE 0
		       END AS priority
		FROM concepts c
		LEFT JOIN user_knowledge uk ON c.id = uk.concept_id AND uk.user_id = ?
		LEFT JOIN knowledge_gaps kg ON c.id = kg.concept_id AND kg.user_id = ? AND kg.addressed_at IS NULL
		WHERE uk.mastery_level IS NULL
		   OR uk.mastery_level < ?
		   OR kg.gap_score IS NOT NULL
		ORDER BY priority DESC, COALESCE(uk.mastery_level, 0) ASC
		LIMIT ?
	`)
	if err := DB.SelectContext(ctx, &recs, query, userID, userID, userID, threshold, limit); err != nil {
		return nil, fmt.Errorf("failed to get recommended concepts: %w", err)
	}
	return recs, nil
}

// ResetUser wipes all mastery rows and gaps for a user. Only the explicit
// user-initiated progress reset calls this.
func (r *KnowledgeRepository) ResetUser(ctx context.Context, userID int64) error {
	query := DB.Rebind("DELETE FROM knowledge_gaps WHERE user_id = ?")
	if _, err := DB.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to reset knowledge gaps: %w", err)
	}
	query = DB.Rebind("DELETE FROM user_knowledge WHERE user_id = ?")
	if _, err := DB.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to reset user knowledge: %w", err)
	}
	return nil
}
