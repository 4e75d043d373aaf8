package quiz

import (
	"context"
	"math/rand"
	"time"

	"github.com/example/sipschool/internal/database"
	"github.com/example/sipschool/internal/knowledge"
	"github.com/example/sipschool/pkg/models"
)

// SessionQuestion is a question prepared for presentation, with shuffled
// multiple-choice options when enough distractors exist.
type SessionQuestion struct {
	Question     models.Question
	Options      []string // possible answers, empty for free-text questions
	CorrectIndex int      // index of the right answer in Options
	DueReview    bool     // true when the question was selected because it is due
}

// Builder assembles quiz sessions: due reviews first (earliest due), then
// fresh questions from the user's weakest concepts.
type Builder struct {
	states    *database.ReviewStateRepository
	questions *database.QuestionRepository
	tracker   *knowledge.Tracker
	now       func() time.Time
	rnd       *rand.Rand
}

// NewBuilder creates a quiz builder using the wall clock.
func NewBuilder() *Builder {
	return NewBuilderWithClock(time.Now)
}

// NewBuilderWithClock creates a quiz builder with an injected clock.
func NewBuilderWithClock(now func() time.Time) *Builder {
	return &Builder{
		states:    database.NewReviewStateRepository(),
		questions: database.NewQuestionRepository(),
		tracker:   knowledge.NewTracker(),
		now:       now,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// BuildSession selects up to count questions for the user. Due reviews come
// first, in due order; any remaining slots are filled with unseen questions
// exercising the user's recommended study concepts.
func (b *Builder) BuildSession(ctx context.Context, userID int64, count int) ([]SessionQuestion, error) {
	now := b.now()

	due, err := b.states.GetDueQuestions(ctx, userID, now, count)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(due))
	for i, state := range due {
		ids[i] = state.QuestionID
	}

	fetched, err := b.questions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Question, len(fetched))
	for _, q := range fetched {
		byID[q.ID] = q
	}

	session := make([]SessionQuestion, 0, count)
	for _, state := range due {
		question, ok := byID[state.QuestionID]
		if !ok {
			// Question was removed from the bank; its review state is stale.
			continue
		}
		sq, err := b.prepare(ctx, question)
		if err != nil {
			return nil, err
		}
		sq.DueReview = true
		session = append(session, sq)
	}

	if len(session) < count {
		fill, err := b.fillFromWeakConcepts(ctx, userID, count-len(session))
		if err != nil {
			return nil, err
		}
		session = append(session, fill...)
	}

	return session, nil
}

// fillFromWeakConcepts pulls unseen questions that exercise the user's
// recommended study concepts.
func (b *Builder) fillFromWeakConcepts(ctx context.Context, userID int64, count int) ([]SessionQuestion, error) {
	recs, err := b.tracker.RecommendedConcepts(ctx, userID, 5)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}

	conceptIDs := make([]int64, len(recs))
	for i, rec := range recs {
		conceptIDs[i] = rec.ID
	}

	questions, err := b.questions.GetUnseenByConcepts(ctx, userID, conceptIDs, count)
	if err != nil {
		return nil, err
	}

	session := make([]SessionQuestion, 0, len(questions))
	for _, q := range questions {
		sq, err := b.prepare(ctx, q)
		if err != nil {
			return nil, err
		}
		session = append(session, sq)
	}
	return session, nil
}

// prepare builds the presentation form of a question, generating shuffled
// multiple-choice options from answers of other questions in the same
// category.
func (b *Builder) prepare(ctx context.Context, question models.Question) (SessionQuestion, error) {
	sq := SessionQuestion{Question: question}

	distractors, err := b.distractors(ctx, question, 3)
	if err != nil {
		return SessionQuestion{}, err
	}
	if len(distractors) < 3 {
		// Not enough plausible wrong answers; present as free text.
		return sq, nil
	}

	options := append(distractors, question.Answer)
	correct := len(options) - 1
	b.rnd.Shuffle(len(options), func(i, j int) {
		if i == correct {
			correct = j
		} else if j == correct {
			correct = i
		}
		options[i], options[j] = options[j], options[i]
	})

	sq.Options = options
	sq.CorrectIndex = correct
	return sq, nil
}

func (b *Builder) distractors(ctx context.Context, question models.Question, count int) ([]string, error) {
	candidates, err := b.questions.GetByCategory(ctx, question.Category, 20)
	if err != nil {
		return nil, err
	}

	var answers []string
	seen := map[string]bool{question.Answer: true}
	for _, c := range candidates {
		if seen[c.Answer] {
			continue
		}
		seen[c.Answer] = true
		answers = append(answers, c.Answer)
	}

	b.rnd.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})
	if len(answers) > count {
		answers = answers[:count]
	}
	return answers, nil
}
