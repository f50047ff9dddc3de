package services

import (
	"context"
	"formsentry/internal/database"
	"formsentry/internal/logger"
	"time"
)

// SessionDeleter is the slice of the session repository the cleanup
// coordinator needs. Declared here so the repository package can keep
// importing services for transaction threading.
type SessionDeleter interface {
	Delete(ctx context.Context, visitorIdentity, testID string) error
}

// CleanupService removes all correlation state once a captured submission
// is fully normalized: the visitor's session row and the cached form
// listings that could otherwise serve stale state on the next run.
// Complete is idempotent; a second call finds nothing to remove.
type CleanupService struct {
	sessions   SessionDeleter
	formsCache database.CacheClient
	log        logger.Logger
}

func NewCleanupService(sessions SessionDeleter, formsCache database.CacheClient) *CleanupService {
	return &CleanupService{
		sessions:   sessions,
		formsCache: formsCache,
		log:        logger.New("CleanupService"),
	}
}

func (s *CleanupService) Complete(ctx context.Context, visitorIdentity, testID string) error {
	log := s.log.Function("Complete")

	if err := s.sessions.Delete(ctx, visitorIdentity, testID); err != nil {
		return log.Err("failed to delete session", err,
			"visitorIdentity", visitorIdentity, "testID", testID)
	}

	if s.formsCache != nil {
		flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.formsCache.Do(flushCtx, s.formsCache.B().Flushdb().Build()).Error(); err != nil {
			// Stale listings self-heal on expiry; not worth failing the capture.
			log.Er("failed to flush forms cache", err, "testID", testID)
		}
	}

	return nil
}
