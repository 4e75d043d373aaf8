package database

import (
	"context"
	"testing"
	"time"

	"github.com/example/sipschool/pkg/models"
)

// Each test gets a fresh in-memory database behind the shared connection, so
// these tests must not run in parallel.
func setupTestDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATABASE_PATH", ":memory:")
	if err := Connect(); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() {
		Close()
		DB = nil
	})
}

func createTestUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:            username,
		QuestionsPerDay:     10,
		NotificationEnabled: true,
		NotificationHour:    9,
	}
	if err := NewUserRepository().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func createTestQuestion(t *testing.T, text, category string, difficulty int) *models.Question {
	t.Helper()
	question := &models.Question{
		Text:       text,
		Answer:     "answer",
		Category:   category,
		Difficulty: difficulty,
	}
	if err := NewQuestionRepository().Create(context.Background(), question); err != nil {
		t.Fatalf("failed to create question: %v", err)
	}
	return question
}

var baseTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newReviewState(userID, questionID int64, nextReviewAt time.Time) *models.ReviewState {
	return &models.ReviewState{
		UserID:         userID,
		QuestionID:     questionID,
		Attempts:       1,
		CorrectCount:   1,
		EaseFactor:     2.5,
		IntervalDays:   1,
		LastAnsweredAt: baseTime,
		NextReviewAt:   nextReviewAt,
		Category:       "regions",
		Difficulty:     1,
	}
}

func TestReviewStateRoundTrip(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, "margaux")
	question := createTestQuestion(t, "q1", "regions", 1)
	repo := NewReviewStateRepository()

	state := newReviewState(user.ID, question.ID, baseTime.AddDate(0, 0, 1))
	if err := repo.Create(ctx, state); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if state.ID == 0 {
		t.Error("Create did not set the state ID")
	}

	got, err := repo.GetByUserAndQuestion(ctx, user.ID, question.ID)
	if err != nil {
		t.Fatalf("GetByUserAndQuestion failed: %v", err)
	}
	if got == nil {
		t.Fatal("state not found after create")
	}
	if got.Attempts != 1 || got.CorrectCount != 1 {
		t.Errorf("counters = %d/%d, want 1/1", got.CorrectCount, got.Attempts)
	}
	if got.EaseFactor != 2.5 || got.IntervalDays != 1 {
		t.Errorf("ease/interval = %.2f/%.2f, want 2.50/1.00", got.EaseFactor, got.IntervalDays)
	}
	if !got.NextReviewAt.Equal(baseTime.AddDate(0, 0, 1)) {
		t.Errorf("next review = %v, want %v", got.NextReviewAt, baseTime.AddDate(0, 0, 1))
	}
}

func TestGetByUserAndQuestionMissingRow(t *testing.T) {
	setupTestDB(t)

	got, err := NewReviewStateRepository().GetByUserAndQuestion(context.Background(), 1, 99)
	if err != nil {
		t.Fatalf("GetByUserAndQuestion failed: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for a never-answered question", got)
	}
}

func TestGetDueQuestionsOrderingAndIdempotence(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, "margaux")
	repo := NewReviewStateRepository()

	// Three answered questions: two overdue, one not yet due.
	dueTimes := []time.Time{
		baseTime.Add(-2 * time.Hour),
		baseTime.Add(-26 * time.Hour),
		baseTime.Add(48 * time.Hour),
	}
	for i, due := range dueTimes {
		question := createTestQuestion(t, "q", "regions", 1)
		if err := repo.Create(ctx, newReviewState(user.ID, question.ID, due)); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}

	due, err := repo.GetDueQuestions(ctx, user.ID, baseTime, 20)
	if err != nil {
		t.Fatalf("GetDueQuestions failed: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("got %d due questions, want 2", len(due))
	}
	if !due[0].NextReviewAt.Before(due[1].NextReviewAt) {
		t.Errorf("due questions not ordered earliest first: %v then %v",
			due[0].NextReviewAt, due[1].NextReviewAt)
	}

	// Reading the queue is a pure query: a second call returns the same list.
	again, err := repo.GetDueQuestions(ctx, user.ID, baseTime, 20)
	if err != nil {
		t.Fatalf("second GetDueQuestions failed: %v", err)
	}
	if len(again) != len(due) {
		t.Fatalf("second read returned %d questions, want %d", len(again), len(due))
	}
	for i := range due {
		if again[i].QuestionID != due[i].QuestionID {
			t.Errorf("position %d: question %d then %d", i, due[i].QuestionID, again[i].QuestionID)
		}
	}

	count, err := repo.CountDue(ctx, user.ID, baseTime)
	if err != nil {
		t.Fatalf("CountDue failed: %v", err)
	}
	if count != 2 {
		t.Errorf("CountDue = %d, want 2", count)
	}
}

func TestGetDueQuestionsBreaksTiesByID(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, "margaux")
	repo := NewReviewStateRepository()

	// Three questions due at the exact same instant.
	due := baseTime.Add(-1 * time.Hour)
	var questionIDs []int64
	for i := 0; i < 3; i++ {
		question := createTestQuestion(t, "q", "regions", 1)
		if err := repo.Create(ctx, newReviewState(user.ID, question.ID, due)); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
		questionIDs = append(questionIDs, question.ID)
	}

	for run := 0; run < 3; run++ {
		states, err := repo.GetDueQuestions(ctx, user.ID, baseTime, 10)
		if err != nil {
			t.Fatalf("GetDueQuestions run %d failed: %v", run, err)
		}
		if len(states) != 3 {
			t.Fatalf("run %d: got %d states, want 3", run, len(states))
		}
		for i, state := range states {
			if state.QuestionID != questionIDs[i] {
				t.Errorf("run %d position %d: question %d, want %d (insertion order)",
					run, i, state.QuestionID, questionIDs[i])
			}
		}
	}
}

func TestGetDueQuestionsRespectsLimit(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, "margaux")
	repo := NewReviewStateRepository()

	for i := 0; i < 5; i++ {
		question := createTestQuestion(t, "q", "regions", 1)
		state := newReviewState(user.ID, question.ID, baseTime.Add(time.Duration(-i-1)*time.Hour))
		if err := repo.Create(ctx, state); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}

	due, err := repo.GetDueQuestions(ctx, user.ID, baseTime, 3)
	if err != nil {
		t.Fatalf("GetDueQuestions failed: %v", err)
	}
	if len(due) != 3 {
		t.Errorf("got %d due questions, want 3", len(due))
	}
}

func TestUpdateIfUnchanged(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, "margaux")
	question := createTestQuestion(t, "q1", "regions", 1)
	repo := NewReviewStateRepository()

	state := newReviewState(user.ID, question.ID, baseTime.AddDate(0, 0, 1))
	if err := repo.Create(ctx, state); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated := *state
	updated.Attempts = 2
	updated.CorrectCount = 2
	updated.EaseFactor = 2.6
	updated.IntervalDays = 2.5

	ok, err := repo.UpdateIfUnchanged(ctx, &updated, 1)
	if err != nil {
		t.Fatalf("UpdateIfUnchanged failed: %v", err)
	}
	if !ok {
		t.Fatal("update with matching attempts counter was rejected")
	}

	// A writer still holding the old counter loses the race.
	stale := updated
	stale.Attempts = 2
	ok, err = repo.UpdateIfUnchanged(ctx, &stale, 1)
	if err != nil {
		t.Fatalf("UpdateIfUnchanged failed: %v", err)
	}
	if ok {
		t.Error("update with a stale attempts counter was accepted")
	}

	got, err := repo.GetByUserAndQuestion(ctx, user.ID, question.ID)
	if err != nil {
		t.Fatalf("GetByUserAndQuestion failed: %v", err)
	}
	if got.Attempts != 2 || got.EaseFactor != 2.6 {
		t.Errorf("state = attempts %d ease %.2f, want attempts 2 ease 2.60", got.Attempts, got.EaseFactor)
	}
}

func TestResetUserClearsOnlyThatUser(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	question := createTestQuestion(t, "q1", "regions", 1)
	repo := NewReviewStateRepository()

	for _, id := range []int64{alice.ID, bob.ID} {
		if err := repo.Create(ctx, newReviewState(id, question.ID, baseTime)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	if err := repo.ResetUser(ctx, alice.ID); err != nil {
		t.Fatalf("ResetUser failed: %v", err)
	}

	got, err := repo.GetByUserAndQuestion(ctx, alice.ID, question.ID)
	if err != nil {
		t.Fatalf("GetByUserAndQuestion failed: %v", err)
	}
	if got != nil {
		t.Error("alice's state survived the reset")
	}

	got, err = repo.GetByUserAndQuestion(ctx, bob.ID, question.ID)
	if err != nil {
		t.Fatalf("GetByUserAndQuestion failed: %v", err)
	}
	if got == nil {
		t.Error("bob's state was wiped by alice's reset")
	}
}

func TestGetUserStatistics(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, "margaux")
	repo := NewReviewStateRepository()

	for i := 0; i < 2; i++ {
		question := createTestQuestion(t, "q", "regions", 1)
		state := newReviewState(user.ID, question.ID, baseTime)
		state.Attempts = 3
		state.CorrectCount = 2
		if err := repo.Create(ctx, state); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	stats, err := repo.GetUserStatistics(ctx, user.ID, baseTime)
	if err != nil {
		t.Fatalf("GetUserStatistics failed: %v", err)
	}
	if stats["total_questions"] != 2 {
		t.Errorf("total_questions = %v, want 2", stats["total_questions"])
	}
	if stats["due_today"] != 2 {
		t.Errorf("due_today = %v, want 2", stats["due_today"])
	}

	// The clock is the caller's: a day earlier nothing counts as due today.
	earlier, err := repo.GetUserStatistics(ctx, user.ID, baseTime.AddDate(0, 0, -2))
	if err != nil {
		t.Fatalf("GetUserStatistics failed: %v", err)
	}
	if earlier["due_today"] != 0 {
		t.Errorf("due_today = %v two days earlier, want 0", earlier["due_today"])
	}
	if stats["total_attempts"] != int64(6) {
		t.Errorf("total_attempts = %v, want 6", stats["total_attempts"])
	}
	if stats["total_correct"] != int64(4) {
		t.Errorf("total_correct = %v, want 4", stats["total_correct"])
	}
}

func TestConceptGetOrCreate(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewConceptRepository()

	first, err := repo.GetOrCreate(ctx, "Tannins", "Tasting", "Astringent compounds from skins and oak")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	second, err := repo.GetOrCreate(ctx, "Tannins", "Tasting", "different description")
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("GetOrCreate created a duplicate: IDs %d and %d", first.ID, second.ID)
	}

	missing, err := repo.GetByName(ctx, "No Such Concept")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if missing != nil {
		t.Errorf("got %+v, want nil for an unknown concept", missing)
	}
}

func TestCreateRelationIgnoresDuplicates(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewConceptRepository()

	a, err := repo.GetOrCreate(ctx, "Blending", "Winemaking", "")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	b, err := repo.GetOrCreate(ctx, "Fermentation", "Winemaking", "")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	rel := &models.ConceptRelation{
		ConceptID:        a.ID,
		RelatedConceptID: b.ID,
		RelationshipType: models.RelationPrerequisite,
		Strength:         1.0,
	}
	for i := 0; i < 2; i++ {
		if err := repo.CreateRelation(ctx, rel); err != nil {
			t.Fatalf("CreateRelation %d failed: %v", i, err)
		}
	}

	relations, err := repo.GetPrerequisiteRelations(ctx)
	if err != nil {
		t.Fatalf("GetPrerequisiteRelations failed: %v", err)
	}
	if len(relations) != 1 {
		t.Errorf("got %d prerequisite relations, want 1", len(relations))
	}
}

func TestQuestionConceptWeights(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewConceptRepository()
	question := createTestQuestion(t, "q1", "winemaking", 2)

	concept, err := repo.GetOrCreate(ctx, "Oak Aging", "Winemaking", "")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	if err := repo.SetQuestionConcept(ctx, question.ID, concept.ID, 0.6); err != nil {
		t.Fatalf("SetQuestionConcept failed: %v", err)
	}
	// Upsert path: second write replaces the weight.
	if err := repo.SetQuestionConcept(ctx, question.ID, concept.ID, 0.9); err != nil {
		t.Fatalf("second SetQuestionConcept failed: %v", err)
	}

	concepts, err := repo.GetQuestionConcepts(ctx, question.ID)
	if err != nil {
		t.Fatalf("GetQuestionConcepts failed: %v", err)
	}
	if len(concepts) != 1 {
		t.Fatalf("got %d concepts, want 1", len(concepts))
	}
	if concepts[0].Weight != 0.9 {
		t.Errorf("weight = %.2f, want 0.90", concepts[0].Weight)
	}
	if concepts[0].Name != "Oak Aging" {
		t.Errorf("concept name = %q, want Oak Aging", concepts[0].Name)
	}
}

func TestKnowledgeUpsertAndMasteryLevels(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, "margaux")
	repo := NewKnowledgeRepository()
	concepts := NewConceptRepository()

	concept, err := concepts.GetOrCreate(ctx, "Terroir", "Viticulture", "")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	mastery := &models.ConceptMastery{
		UserID:       user.ID,
		ConceptID:    concept.ID,
		MasteryLevel: 0.3,
		TimesSeen:    1,
		TimesCorrect: 0,
		LastSeenAt:   baseTime,
	}
	if err := repo.Upsert(ctx, mastery); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	mastery.MasteryLevel = 0.37
	mastery.TimesSeen = 2
	mastery.TimesCorrect = 1
	if err := repo.Upsert(ctx, mastery); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	got, err := repo.GetByUserAndConcept(ctx, user.ID, concept.ID)
	if err != nil {
		t.Fatalf("GetByUserAndConcept failed: %v", err)
	}
	if got == nil {
		t.Fatal("mastery row not found after upsert")
	}
	if got.MasteryLevel != 0.37 || got.TimesSeen != 2 || got.TimesCorrect != 1 {
		t.Errorf("row = %.2f %d/%d, want 0.37 1/2", got.MasteryLevel, got.TimesCorrect, got.TimesSeen)
	}

	levels, err := repo.GetUserMasteryLevels(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserMasteryLevels failed: %v", err)
	}
	if len(levels) != 1 || levels[concept.ID] != 0.37 {
		t.Errorf("levels = %v, want one entry of 0.37", levels)
	}
}

func TestRecordGapAndMarkAddressed(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, "margaux")
	repo := NewKnowledgeRepository()
	concepts := NewConceptRepository()

	concept, err := concepts.GetOrCreate(ctx, "Fermentation", "Winemaking", "")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	if err := repo.RecordGap(ctx, user.ID, concept.ID, 0.8, baseTime); err != nil {
		t.Fatalf("RecordGap failed: %v", err)
	}

	// Mastery still below the threshold: nothing closes.
	mastery := &models.ConceptMastery{
		UserID: user.ID, ConceptID: concept.ID,
		MasteryLevel: 0.5, TimesSeen: 3, TimesCorrect: 2, LastSeenAt: baseTime,
	}
	if err := repo.Upsert(ctx, mastery); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	closed, err := repo.MarkAddressedGaps(ctx, user.ID, 0.8, baseTime)
	if err != nil {
		t.Fatalf("MarkAddressedGaps failed: %v", err)
	}
	if closed != 0 {
		t.Errorf("closed %d gaps below the threshold, want 0", closed)
	}

	// Once mastery climbs past the threshold the gap closes.
	mastery.MasteryLevel = 0.85
	if err := repo.Upsert(ctx, mastery); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	closed, err = repo.MarkAddressedGaps(ctx, user.ID, 0.8, baseTime.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("MarkAddressedGaps failed: %v", err)
	}
	if closed != 1 {
		t.Errorf("closed %d gaps, want 1", closed)
	}

	// Recording the gap again reopens it.
	if err := repo.RecordGap(ctx, user.ID, concept.ID, 0.6, baseTime.AddDate(0, 0, 8)); err != nil {
		t.Fatalf("RecordGap failed: %v", err)
	}
	closed, err = repo.MarkAddressedGaps(ctx, user.ID, 0.8, baseTime.AddDate(0, 0, 9))
	if err != nil {
		t.Fatalf("MarkAddressedGaps failed: %v", err)
	}
	if closed != 1 {
		t.Errorf("reopened gap did not close again, closed = %d", closed)
	}
}

func TestGetProfileAndRecommendations(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, "margaux")
	repo := NewKnowledgeRepository()
	concepts := NewConceptRepository()

	strong, err := concepts.GetOrCreate(ctx, "Oak Aging", "Winemaking", "")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	weak, err := concepts.GetOrCreate(ctx, "Fermentation", "Winemaking", "")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	unseen, err := concepts.GetOrCreate(ctx, "Clarification", "Winemaking", "")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	rows := []*models.ConceptMastery{
		{UserID: user.ID, ConceptID: strong.ID, MasteryLevel: 0.9, TimesSeen: 10, TimesCorrect: 9, LastSeenAt: baseTime},
		{UserID: user.ID, ConceptID: weak.ID, MasteryLevel: 0.2, TimesSeen: 5, TimesCorrect: 1, LastSeenAt: baseTime},
	}
	for _, row := range rows {
		if err := repo.Upsert(ctx, row); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}
	if err := repo.RecordGap(ctx, user.ID, weak.ID, 0.8, baseTime); err != nil {
		t.Fatalf("RecordGap failed: %v", err)
	}

	profile, err := repo.GetProfile(ctx, user.ID, 0.8)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.ConceptsStudied != 2 {
		t.Errorf("concepts studied = %d, want 2", profile.ConceptsStudied)
	}
	if len(profile.StrongConcepts) != 1 || profile.StrongConcepts[0].ID != strong.ID {
		t.Errorf("strong concepts = %+v, want just %d", profile.StrongConcepts, strong.ID)
	}
	if len(profile.WeakConcepts) != 1 || profile.WeakConcepts[0].ID != weak.ID {
		t.Errorf("weak concepts = %+v, want just %d", profile.WeakConcepts, weak.ID)
	}
	if len(profile.KnowledgeGaps) != 1 || profile.KnowledgeGaps[0].ID != weak.ID {
		t.Errorf("knowledge gaps = %+v, want just %d", profile.KnowledgeGaps, weak.ID)
	}

	recs, err := repo.GetRecommendedConcepts(ctx, user.ID, 0.8, 10)
	if err != nil {
		t.Fatalf("GetRecommendedConcepts failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2 (gap concept and unseen concept)", len(recs))
	}
	// The open gap outranks the never-seen concept.
	if recs[0].ID != weak.ID || recs[0].Priority != 3 {
		t.Errorf("first recommendation = concept %d priority %d, want concept %d priority 3",
			recs[0].ID, recs[0].Priority, weak.ID)
	}
	if recs[1].ID != unseen.ID || recs[1].Priority != 2 {
		t.Errorf("second recommendation = concept %d priority %d, want concept %d priority 2",
			recs[1].ID, recs[1].Priority, unseen.ID)
	}
}

func TestGetUnseenByConcepts(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, "margaux")
	concepts := NewConceptRepository()
	questions := NewQuestionRepository()
	states := NewReviewStateRepository()

	concept, err := concepts.GetOrCreate(ctx, "Riesling", "Grape Varieties", "")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	hard := createTestQuestion(t, "hard", "grapes", 3)
	easy := createTestQuestion(t, "easy", "grapes", 1)
	seen := createTestQuestion(t, "seen", "grapes", 1)
	for _, q := range []*models.Question{hard, easy, seen} {
		if err := concepts.SetQuestionConcept(ctx, q.ID, concept.ID, 1.0); err != nil {
			t.Fatalf("SetQuestionConcept failed: %v", err)
		}
	}
	if err := states.Create(ctx, newReviewState(user.ID, seen.ID, baseTime)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := questions.GetUnseenByConcepts(ctx, user.ID, []int64{concept.ID}, 10)
	if err != nil {
		t.Fatalf("GetUnseenByConcepts failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d questions, want 2", len(got))
	}
	if got[0].ID != easy.ID {
		t.Errorf("first question = %d, want the easiest (%d)", got[0].ID, easy.ID)
	}
	for _, q := range got {
		if q.ID == seen.ID {
			t.Error("already-answered question returned as unseen")
		}
	}
}

func TestUsersForNotification(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository()

	nineAM := createTestUser(t, "nine")
	muted := &models.User{Username: "muted", QuestionsPerDay: 10, NotificationEnabled: false, NotificationHour: 9}
	if err := repo.Create(ctx, muted); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	evening := &models.User{Username: "evening", QuestionsPerDay: 10, NotificationEnabled: true, NotificationHour: 19}
	if err := repo.Create(ctx, evening); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	users, err := repo.GetUsersForNotification(ctx, 9)
	if err != nil {
		t.Fatalf("GetUsersForNotification failed: %v", err)
	}
	if len(users) != 1 || users[0].ID != nineAM.ID {
		t.Errorf("users = %+v, want just %d", users, nineAM.ID)
	}
}

func TestSeedConceptsIsIdempotent(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := SeedConcepts(ctx); err != nil {
			t.Fatalf("SeedConcepts run %d failed: %v", i, err)
		}
	}

	concepts, err := NewConceptRepository().GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(concepts) != len(wineConcepts) {
		t.Errorf("got %d concepts, want %d", len(concepts), len(wineConcepts))
	}

	relations, err := NewConceptRepository().GetPrerequisiteRelations(ctx)
	if err != nil {
		t.Fatalf("GetPrerequisiteRelations failed: %v", err)
	}
	wantPrereqs := 0
	for _, sr := range wineRelations {
		if sr.relType == models.RelationPrerequisite {
			wantPrereqs++
		}
	}
	if len(relations) != wantPrereqs {
		t.Errorf("got %d prerequisite relations, want %d", len(relations), wantPrereqs)
	}
}
