package models

import "time"

// Question represents a wine trivia question. Only the fields the scheduler
// and quiz builder read are modeled; answer matching and hint text live with
// the question bank.
type Question struct {
	ID          int64     `json:"id" db:"id"`
	Text        string    `json:"text" db:"text"`
	Answer      string    `json:"answer" db:"answer"`
	Category    string    `json:"category" db:"category"`
	Difficulty  int       `json:"difficulty" db:"difficulty"` // 1-3 scale
	Explanation string    `json:"explanation" db:"explanation"`
	Generated   bool      `json:"generated" db:"generated"` // true for AI-generated questions
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
