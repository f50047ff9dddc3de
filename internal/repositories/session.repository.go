package repositories

import (
	"context"
	"errors"
	"formsentry/internal/database"
	"formsentry/internal/logger"
	. "formsentry/internal/models"
	"formsentry/internal/services"
	"time"

	"gorm.io/gorm"
)

type SessionRepository interface {
	Put(ctx context.Context, visitorIdentity, testID, targetKey string) error
	Get(ctx context.Context, visitorIdentity, testID string) (*TestSession, error)
	GetByVisitor(ctx context.Context, visitorIdentity string) (*TestSession, error)
	Delete(ctx context.Context, visitorIdentity, testID string) error
	Sweep(ctx context.Context, olderThan time.Time) (int64, error)
}

type sessionRepository struct {
	db  database.DB
	log logger.Logger
}

func NewSession(db database.DB) SessionRepository {
	return &sessionRepository{
		db:  db,
		log: logger.New("sessionRepository"),
	}
}

func (r *sessionRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

// Put replaces any existing session for the visitor. Delete-then-insert
// rather than upsert, so the single-row-per-visitor invariant holds even
// when the new session carries a different test id.
func (r *sessionRepository) Put(ctx context.Context, visitorIdentity, testID, targetKey string) error {
	log := r.log.Function("Put")

	if testID == "" {
		return log.Error("test id is empty", "visitorIdentity", visitorIdentity)
	}
	if visitorIdentity == "" {
		return log.Error("visitor identity is empty", "testID", testID)
	}

	db := r.getDB(ctx)

	if err := db.Where("visitor_identity = ?", visitorIdentity).
		Delete(&TestSession{}).Error; err != nil {
		return log.Err("failed to delete prior session", err,
			"visitorIdentity", visitorIdentity)
	}

	session := &TestSession{
		VisitorIdentity: visitorIdentity,
		TestID:          testID,
		TargetKey:       targetKey,
	}

	if err := db.Create(session).Error; err != nil {
		return log.Err("failed to create session", err,
			"visitorIdentity", visitorIdentity, "testID", testID)
	}

	return nil
}

func (r *sessionRepository) Get(ctx context.Context, visitorIdentity, testID string) (*TestSession, error) {
	log := r.log.Function("Get")

	var session TestSession
	err := r.getDB(ctx).
		Where("visitor_identity = ? AND test_id = ?", visitorIdentity, testID).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get session", err,
			"visitorIdentity", visitorIdentity, "testID", testID)
	}

	return &session, nil
}

// GetByVisitor recovers the session when the submission request carries no
// test id of its own.
func (r *sessionRepository) GetByVisitor(ctx context.Context, visitorIdentity string) (*TestSession, error) {
	log := r.log.Function("GetByVisitor")

	var session TestSession
	err := r.getDB(ctx).
		Where("visitor_identity = ?", visitorIdentity).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get session by visitor", err,
			"visitorIdentity", visitorIdentity)
	}

	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, visitorIdentity, testID string) error {
	log := r.log.Function("Delete")

	err := r.getDB(ctx).
		Where("visitor_identity = ? AND test_id = ?", visitorIdentity, testID).
		Delete(&TestSession{}).Error
	if err != nil {
		return log.Err("failed to delete session", err,
			"visitorIdentity", visitorIdentity, "testID", testID)
	}

	return nil
}

// Sweep hard-deletes sessions older than the cutoff. This is the only
// garbage collection for abandoned sessions.
func (r *sessionRepository) Sweep(ctx context.Context, olderThan time.Time) (int64, error) {
	log := r.log.Function("Sweep")

	result := r.getDB(ctx).Unscoped().
		Where("created_at < ?", olderThan).
		Delete(&TestSession{})
	if result.Error != nil {
		return 0, log.Err("failed to sweep sessions", result.Error, "olderThan", olderThan)
	}

	if result.RowsAffected > 0 {
		log.Info("swept expired sessions", "deletedCount", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
