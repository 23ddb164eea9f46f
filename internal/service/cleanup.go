package service

import (
	"time"

	"go.uber.org/zap"
)

// SessionEvicter drops conversation states untouched for longer than ttl
type SessionEvicter interface {
	EvictIdle(ttl time.Duration) int
}

// CleanupService bounds the in-memory conversation state
type CleanupService struct {
	sessions SessionEvicter
	ttl      time.Duration
	logger   *zap.Logger
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(sessions SessionEvicter, ttl time.Duration, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
	}
}

// CleanupIdleSessions evicts stale conversation states and reports how many were dropped
func (s *CleanupService) CleanupIdleSessions() int {
	s.logger.Info("Starting cleanup of idle sessions", zap.Duration("ttl", s.ttl))

	evicted := s.sessions.EvictIdle(s.ttl)

	s.logger.Info("Cleanup completed successfully", zap.Int("evicted", evicted))
	return evicted
}
