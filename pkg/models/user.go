package models

import "time"

// User represents a learner account. Authentication lives outside this
// service; only the fields the jobs and quiz builder need are modeled.
type User struct {
	ID                  int64     `json:"id" db:"id"`
	Username            string    `json:"username" db:"username"`
	QuestionsPerDay     int       `json:"questions_per_day" db:"questions_per_day"`
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int       `json:"notification_hour" db:"notification_hour"` // hour of day (0-23)
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
