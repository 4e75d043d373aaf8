package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/example/sipschool/internal/database"
	"github.com/example/sipschool/pkg/models"
)

// Tracker maintains per-concept mastery and knowledge gaps as answers come
// in. It is the write path behind "weak area" detection and study
// recommendations.
type Tracker struct {
	concepts  *database.ConceptRepository
	knowledge *database.KnowledgeRepository
}

// NewTracker creates a tracker backed by the shared database connection.
func NewTracker() *Tracker {
	return &Tracker{
		concepts:  database.NewConceptRepository(),
		knowledge: database.NewKnowledgeRepository(),
	}
}

// RecordAnswer folds one answer into the mastery estimate of every concept
// the question exercises, then refreshes the user's knowledge gaps.
func (t *Tracker) RecordAnswer(ctx context.Context, event models.AnswerEvent, now time.Time) error {
	if err := event.Validate(); err != nil {
		return err
	}

	concepts, err := t.concepts.GetQuestionConcepts(ctx, event.QuestionID)
	if err != nil {
		return err
	}

	for _, concept := range concepts {
		if err := t.updateConcept(ctx, event, concept, now); err != nil {
			return err
		}
	}

	if len(concepts) == 0 {
		return nil
	}
	return t.RefreshGaps(ctx, event.UserID, now)
}

func (t *Tracker) updateConcept(ctx context.Context, event models.AnswerEvent, concept models.WeightedConcept, now time.Time) error {
	prior, err := t.knowledge.GetByUserAndConcept(ctx, event.UserID, concept.ID)
	if err != nil {
		return err
	}

	priorMastery := 0.0
	timesSeen := 0
	timesCorrect := 0
	if prior != nil {
		priorMastery = prior.MasteryLevel
		timesSeen = prior.TimesSeen
		timesCorrect = prior.TimesCorrect
	}

	update, err := UpdateMastery(priorMastery, timesSeen, timesCorrect, event.IsCorrect, event.HintUsed, concept.Weight)
	if err != nil {
		return fmt.Errorf("failed to update mastery for concept %d: %w", concept.ID, err)
	}

	mastery := &models.ConceptMastery{
		UserID:           event.UserID,
		ConceptID:        concept.ID,
		MasteryLevel:     update.MasteryLevel,
		TimesSeen:        update.TimesSeen,
		TimesCorrect:     update.TimesCorrect,
		LearningVelocity: update.LearningVelocity,
		ConfidenceScore:  update.ConfidenceScore,
		LastSeenAt:       now,
	}
	return t.knowledge.Upsert(ctx, mastery)
}

// RefreshGaps recomputes the user's knowledge gaps from the prerequisite
// graph and upserts each one with the identification time.
func (t *Tracker) RefreshGaps(ctx context.Context, userID int64, now time.Time) error {
	levels, err := t.knowledge.GetUserMasteryLevels(ctx, userID)
	if err != nil {
		return err
	}

	relations, err := t.concepts.GetPrerequisiteRelations(ctx)
	if err != nil {
		return err
	}

	for _, gap := range IdentifyGaps(levels, relations) {
		if err := t.knowledge.RecordGap(ctx, userID, gap.ConceptID, gap.GapScore, now); err != nil {
			return err
		}
	}
	return nil
}

// CloseAddressedGaps marks open gaps addressed once their concept mastery
// has climbed above the threshold. Returns the number of gaps closed.
func (t *Tracker) CloseAddressedGaps(ctx context.Context, userID int64, now time.Time) (int64, error) {
	return t.knowledge.MarkAddressedGaps(ctx, userID, MasteryThreshold, now)
}

// Profile returns the user's knowledge profile.
func (t *Tracker) Profile(ctx context.Context, userID int64) (*models.KnowledgeProfile, error) {
	return t.knowledge.GetProfile(ctx, userID, MasteryThreshold)
}

// RecommendedConcepts returns ranked study suggestions for the user.
func (t *Tracker) RecommendedConcepts(ctx context.Context, userID int64, limit int) ([]models.RecommendedConcept, error) {
	return t.knowledge.GetRecommendedConcepts(ctx, userID, MasteryThreshold, limit)
}
