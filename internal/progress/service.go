package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/example/sipschool/internal/database"
	"github.com/example/sipschool/internal/knowledge"
	"github.com/example/sipschool/internal/spaced_repetition"
	"github.com/example/sipschool/pkg/models"
)

// How many times a clobbered write is retried before giving up. Parallel
// answers to the same question by the same user are rare, so one retry
// almost always suffices.
const maxWriteRetries = 3

// Service is the single entry point for answer events: it runs the item
// scheduler, persists the new review state, and feeds the concept mastery
// tracker.
type Service struct {
	states    *database.ReviewStateRepository
	questions *database.QuestionRepository
	scheduler *spaced_repetition.Scheduler
	tracker   *knowledge.Tracker
	now       func() time.Time
}

// NewService creates a progress service with the default scheduler and the
// wall clock.
func NewService() *Service {
	return NewServiceWithClock(time.Now)
}

// NewServiceWithClock creates a progress service with an injected clock so
// tests can pin "now".
func NewServiceWithClock(now func() time.Time) *Service {
	return &Service{
		states:    database.NewReviewStateRepository(),
		questions: database.NewQuestionRepository(),
		scheduler: spaced_repetition.NewScheduler(),
		tracker:   knowledge.NewTracker(),
		now:       now,
	}
}

// RecordAnswer processes one answered question: update the review schedule
// (with optimistic concurrency on the attempts counter) and the concept
// mastery estimates. Returns the persisted review state.
func (s *Service) RecordAnswer(ctx context.Context, event models.AnswerEvent) (*models.ReviewState, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	now := s.now()

	state, err := s.applyReview(ctx, event, now)
	if err != nil {
		return nil, err
	}

	if err := s.tracker.RecordAnswer(ctx, event, now); err != nil {
		return nil, fmt.Errorf("failed to update concept mastery: %w", err)
	}

	return state, nil
}

// applyReview runs the read-compute-write cycle. When the compare-and-swap
// write loses a race, the whole cycle restarts from a fresh read.
func (s *Service) applyReview(ctx context.Context, event models.AnswerEvent, now time.Time) (*models.ReviewState, error) {
	var createErr error
	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		prior, err := s.states.GetByUserAndQuestion(ctx, event.UserID, event.QuestionID)
		if err != nil {
			return nil, err
		}

		result, err := s.scheduler.Review(prior, event.IsCorrect, event.AttemptCycle, now)
		if err != nil {
			return nil, err
		}

		if prior == nil {
			state, err := s.createState(ctx, event, result, now)
			if err == nil {
				return state, nil
			}
			// A concurrent first answer may have created the row; re-read
			// and go through the update path. Keep the error in case the
			// insert keeps failing for a non-conflict reason.
			createErr = err
			continue
		}

		state := *prior
		state.Attempts++
		if event.IsCorrect {
			state.CorrectCount++
		}
		state.EaseFactor = result.EaseFactor
		state.IntervalDays = result.IntervalDays
		state.LastAnsweredAt = now
		state.NextReviewAt = result.NextReviewAt

		ok, err := s.states.UpdateIfUnchanged(ctx, &state, prior.Attempts)
		if err != nil {
			return nil, err
		}
		if ok {
			return &state, nil
		}
	}

	if createErr != nil {
		return nil, fmt.Errorf("failed to record answer for user %d question %d: %w", event.UserID, event.QuestionID, createErr)
	}
	return nil, fmt.Errorf("failed to record answer for user %d question %d: too many concurrent updates", event.UserID, event.QuestionID)
}

func (s *Service) createState(ctx context.Context, event models.AnswerEvent, result spaced_repetition.Result, now time.Time) (*models.ReviewState, error) {
	state := &models.ReviewState{
		UserID:         event.UserID,
		QuestionID:     event.QuestionID,
		Attempts:       1,
		EaseFactor:     result.EaseFactor,
		IntervalDays:   result.IntervalDays,
		LastAnsweredAt: now,
		NextReviewAt:   result.NextReviewAt,
	}
	if event.IsCorrect {
		state.CorrectCount = 1
	}

	if question, err := s.questions.GetByID(ctx, event.QuestionID); err == nil && question != nil {
		state.Category = question.Category
		state.Difficulty = question.Difficulty
	}

	if err := s.states.Create(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// DueQuestions returns the user's due review states, earliest due first.
// Calling it twice without an intervening answer returns the same list.
func (s *Service) DueQuestions(ctx context.Context, userID int64, limit int) ([]models.ReviewState, error) {
	return s.states.GetDueQuestions(ctx, userID, s.now(), limit)
}

// CountDue returns the number of questions currently due for the user.
func (s *Service) CountDue(ctx context.Context, userID int64) (int, error) {
	return s.states.CountDue(ctx, userID, s.now())
}

// ResetProgress wipes all review state, mastery data and gaps for a user.
func (s *Service) ResetProgress(ctx context.Context, userID int64) error {
	if err := s.states.ResetUser(ctx, userID); err != nil {
		return err
	}
	return database.NewKnowledgeRepository().ResetUser(ctx, userID)
}

// Statistics returns aggregate scheduling statistics for a user.
func (s *Service) Statistics(ctx context.Context, userID int64) (map[string]interface{}, error) {
	return s.states.GetUserStatistics(ctx, userID, s.now())
}

// Tracker exposes the concept mastery tracker for profile and
// recommendation queries.
func (s *Service) Tracker() *knowledge.Tracker {
	return s.tracker
}
