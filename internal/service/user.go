package service

import (
	"context"
	"errors"
	"fmt"

	"zhukbot/internal/domain"
	"zhukbot/internal/repository"
)

// UserService validates registration data before it reaches the repository
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Get returns the stored user or domain.ErrUserNotFound
func (s *UserService) Get(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.GetUser(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get user %d: %w", domain.ErrStorage, userID, err)
	}
	return user, nil
}

// UpsertConsentAndPhone records consent together with a validated phone.
// Repeating the call with the same phone leaves the record unchanged.
func (s *UserService) UpsertConsentAndPhone(ctx context.Context, userID int64, phone string) error {
	if !domain.IsValidPhone(phone) {
		return fmt.Errorf("%w: invalid phone %q", domain.ErrValidation, phone)
	}
	if err := s.userRepo.UpsertPhone(ctx, userID, phone); err != nil {
		return fmt.Errorf("%w: save phone for %d: %w", domain.ErrStorage, userID, err)
	}
	return nil
}

// SetDisplayName completes registration
func (s *UserService) SetDisplayName(ctx context.Context, userID int64, name string) error {
	name = domain.NormalizeName(name)
	if name == "" {
		return fmt.Errorf("%w: display name cannot be empty", domain.ErrValidation)
	}
	err := s.userRepo.SetDisplayName(ctx, userID, name)
	if errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: save name for %d: %w", domain.ErrStorage, userID, err)
	}
	return nil
}
