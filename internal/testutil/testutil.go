package testutil

import (
	"context"
	"sync"
	"time"

	"zhukbot/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test user
func NewTestUser(userID int64, phone, name string) *domain.User {
	return &domain.User{
		UserID:      userID,
		Phone:       phone,
		DisplayName: name,
		CreatedAt:   time.Now(),
	}
}

// FakeUserRepository is an in-memory UserRepository.
// Setting Err makes every call fail with it.
type FakeUserRepository struct {
	mu    sync.Mutex
	users map[int64]domain.User
	Err   error
}

// NewFakeUserRepository creates an empty in-memory repository
func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{users: make(map[int64]domain.User)}
}

func (f *FakeUserRepository) GetUser(_ context.Context, userID int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	user, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (f *FakeUserRepository) UpsertPhone(_ context.Context, userID int64, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}
	user, ok := f.users[userID]
	if !ok {
		user = domain.User{UserID: userID, CreatedAt: time.Now()}
	}
	user.Phone = phone
	f.users[userID] = user
	return nil
}

func (f *FakeUserRepository) SetDisplayName(_ context.Context, userID int64, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}
	user, ok := f.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.DisplayName = name
	f.users[userID] = user
	return nil
}

// SetErr switches error injection on or off
func (f *FakeUserRepository) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}
