package testutil

import (
	"context"
	"time"

	"zhukbot/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpsertPhone(ctx context.Context, userID int64, phone string) error {
	args := m.Called(ctx, userID, phone)
	return args.Error(0)
}

func (m *MockUserRepository) SetDisplayName(ctx context.Context, userID int64, name string) error {
	args := m.Called(ctx, userID, name)
	return args.Error(0)
}

// MockSessionEvicter is a mock for SessionEvicter
type MockSessionEvicter struct {
	mock.Mock
}

func (m *MockSessionEvicter) EvictIdle(ttl time.Duration) int {
	args := m.Called(ttl)
	return args.Int(0)
}

// MockEngine is a mock for the conversation engine
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Handle(ctx context.Context, ev domain.Event) ([]domain.Response, error) {
	args := m.Called(ctx, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Response), args.Error(1)
}
