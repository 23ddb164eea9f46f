package repository

import (
	"context"

	"zhukbot/internal/domain"
)

// UserRepository defines user data operations
type UserRepository interface {
	// GetUser returns domain.ErrUserNotFound when no row exists
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	// UpsertPhone inserts the user or replaces the phone, keeping the display name
	UpsertPhone(ctx context.Context, userID int64, phone string) error
	// SetDisplayName returns domain.ErrUserNotFound when no row was updated
	SetDisplayName(ctx context.Context, userID int64, name string) error
}
