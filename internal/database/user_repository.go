package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/sipschool/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := DB.Rebind(`
		SELECT id, username, questions_per_day, notification_enabled, notification_hour, created_at, updated_at
		FROM users WHERE id = ?
	`)
	err := DB.GetContext(ctx, &user, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := DB.Rebind(`
		INSERT INTO users (username, questions_per_day, notification_enabled, notification_hour)
		VALUES (?, ?, ?, ?)
	`)
	result, err := DB.ExecContext(ctx, query,
		user.Username,
		user.QuestionsPerDay,
		user.NotificationEnabled,
		user.NotificationHour,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	user.ID = id

	return nil
}

// GetUsersForNotification returns users who want a reminder at the given hour
func (r *UserRepository) GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error) {
	var users []models.User
	query := DB.Rebind(`
		SELECT id, username, questions_per_day, notification_enabled, notification_hour, created_at, updated_at
		FROM users
		WHERE notification_enabled = true AND notification_hour = ?
	`)
	if err := DB.SelectContext(ctx, &users, query, hour); err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %w", err)
	}
	return users, nil
}

// GetAll returns all users
func (r *UserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	query := `
		SELECT id, username, questions_per_day, notification_enabled, notification_hour, created_at, updated_at
		FROM users ORDER BY created_at DESC
	`
	if err := DB.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}
