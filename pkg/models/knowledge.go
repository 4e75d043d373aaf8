package models

import (
	"fmt"
	"time"
)

// ConceptMastery tracks a user's smoothed command of a single concept,
// independent of any one question.
type ConceptMastery struct {
	ID               int64     `json:"id" db:"id"`
	UserID           int64     `json:"user_id" db:"user_id"`
	ConceptID        int64     `json:"concept_id" db:"concept_id"`
	MasteryLevel     float64   `json:"mastery_level" db:"mastery_level"` // [0.0, 1.0]
	TimesSeen        int       `json:"times_seen" db:"times_seen"`
	TimesCorrect     int       `json:"times_correct" db:"times_correct"`
	LearningVelocity float64   `json:"learning_velocity" db:"learning_velocity"`
	ConfidenceScore  float64   `json:"confidence_score" db:"confidence_score"`
	LastSeenAt       time.Time `json:"last_seen_at" db:"last_seen_at"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Validate rejects malformed mastery rows at the persistence boundary.
func (m *ConceptMastery) Validate() error {
	if m.TimesSeen < 0 {
		return fmt.Errorf("concept mastery %d: negative times seen %d", m.ID, m.TimesSeen)
	}
	if m.TimesCorrect < 0 || m.TimesCorrect > m.TimesSeen {
		return fmt.Errorf("concept mastery %d: times correct %d out of range for %d seen", m.ID, m.TimesCorrect, m.TimesSeen)
	}
	if m.MasteryLevel < 0 || m.MasteryLevel > 1 {
		return fmt.Errorf("concept mastery %d: mastery level %.3f outside [0, 1]", m.ID, m.MasteryLevel)
	}
	return nil
}

// KnowledgeGap flags a concept with low mastery that is a prerequisite of a
// concept the user has already mastered.
type KnowledgeGap struct {
	ID           int64      `json:"id" db:"id"`
	UserID       int64      `json:"user_id" db:"user_id"`
	ConceptID    int64      `json:"concept_id" db:"concept_id"`
	GapScore     float64    `json:"gap_score" db:"gap_score"` // 1.0 - mastery level
	IdentifiedAt time.Time  `json:"identified_at" db:"identified_at"`
	AddressedAt  *time.Time `json:"addressed_at" db:"addressed_at"`
}

// MasteredConcept is a concept joined with the user's mastery data, used in
// knowledge profiles.
type MasteredConcept struct {
	Concept
	MasteryLevel    float64 `json:"mastery_level" db:"mastery_level"`
	TimesSeen       int     `json:"times_seen" db:"times_seen"`
	ConfidenceScore float64 `json:"confidence_score" db:"confidence_score"`
}

// GapConcept is a concept joined with its open gap score.
type GapConcept struct {
	Concept
	GapScore float64 `json:"gap_score" db:"gap_score"`
}

// KnowledgeProfile summarizes a user's standing across all studied concepts.
type KnowledgeProfile struct {
	OverallMastery   float64           `json:"overall_mastery"`
	LearningVelocity float64           `json:"learning_velocity"`
	ConceptsStudied  int               `json:"concepts_studied"`
	StrongConcepts   []MasteredConcept `json:"strong_concepts"`
	WeakConcepts     []MasteredConcept `json:"weak_concepts"`
	KnowledgeGaps    []GapConcept      `json:"knowledge_gaps"`
}

// RecommendedConcept is a study suggestion ranked by priority: open gaps
// first, then never-seen concepts, then below-average mastery.
type RecommendedConcept struct {
	Concept
	CurrentMastery float64 `json:"current_mastery" db:"current_mastery"`
	TimesSeen      int     `json:"times_seen" db:"times_seen"`
	GapScore       float64 `json:"gap_score" db:"gap_score"`
	Priority       int     `json:"priority" db:"priority"`
}
