package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/sipschool/internal/database"
	"github.com/example/sipschool/internal/knowledge"
)

// Default window during which review reminders may be sent.
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier delivers review reminders. The transport (email, push) lives
// outside this service.
type Notifier interface {
	SendReminder(userID int64, dueCount int) error
}

// Scheduler manages the periodic jobs: hourly due-review reminders and daily
// knowledge-gap maintenance.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	tracker   *knowledge.Tracker
}

// New creates a new scheduler instance
func New(notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		tracker:   knowledge.NewTracker(),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.Every(1).Day().At("03:00").Do(s.maintainKnowledgeGaps)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders notifies users who have reviews due and asked to be
// reminded at the current hour.
func (s *Scheduler) checkAndSendReminders() {
	currentHour := time.Now().Hour()

	startHour := hourFromEnv("NOTIFICATION_START_HOUR", DefaultNotificationStartHour)
	endHour := hourFromEnv("NOTIFICATION_END_HOUR", DefaultNotificationEndHour)

	if currentHour < startHour || currentHour > endHour {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			currentHour, startHour, endHour)
		return
	}

	ctx := context.Background()
	userRepo := database.NewUserRepository()
	stateRepo := database.NewReviewStateRepository()

	users, err := userRepo.GetUsersForNotification(ctx, currentHour)
	if err != nil {
		log.Printf("Error getting users for notification: %v", err)
		return
	}

	now := time.Now()
	for _, user := range users {
		dueCount, err := stateRepo.CountDue(ctx, user.ID, now)
		if err != nil {
			log.Printf("Error counting due questions for user %d: %v", user.ID, err)
			continue
		}
		if dueCount == 0 {
			continue
		}

		if dueCount > user.QuestionsPerDay {
			dueCount = user.QuestionsPerDay
		}

		if err := s.notifier.SendReminder(user.ID, dueCount); err != nil {
			log.Printf("Error sending reminder to user %d: %v", user.ID, err)
		}
	}
}

// maintainKnowledgeGaps closes gaps whose concept mastery has climbed above
// the proficiency threshold since they were identified.
func (s *Scheduler) maintainKnowledgeGaps() {
	ctx := context.Background()
	userRepo := database.NewUserRepository()

	users, err := userRepo.GetAll(ctx)
	if err != nil {
		log.Printf("Error getting users for gap maintenance: %v", err)
		return
	}

	now := time.Now()
	for _, user := range users {
		closed, err := s.tracker.CloseAddressedGaps(ctx, user.ID, now)
		if err != nil {
			log.Printf("Error closing gaps for user %d: %v", user.ID, err)
			continue
		}
		if closed > 0 {
			log.Printf("Closed %d addressed knowledge gaps for user %d", closed, user.ID)
		}
	}
}

// RunManualCheck forces a reminder check for a specific user
func (s *Scheduler) RunManualCheck(userID int64) error {
	ctx := context.Background()
	stateRepo := database.NewReviewStateRepository()

	dueCount, err := stateRepo.CountDue(ctx, userID, time.Now())
	if err != nil {
		return err
	}
	if dueCount > 0 {
		return s.notifier.SendReminder(userID, dueCount)
	}
	return nil
}

func hourFromEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if h, err := strconv.Atoi(value); err == nil && h >= 0 && h <= 23 {
			return h
		}
	}
	return fallback
}
