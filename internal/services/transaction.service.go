package services

import (
	"context"
	"formsentry/internal/database"
	"formsentry/internal/logger"

	"gorm.io/gorm"
)

type txContextKey struct{}

type TransactionService struct {
	db  database.DB
	log logger.Logger
}

func NewTransactionService(db database.DB) *TransactionService {
	return &TransactionService{
		db:  db,
		log: logger.New("TransactionService"),
	}
}

// Execute runs fn inside a database transaction. The transaction is
// threaded through the context so repositories pick it up via
// GetTransaction without any API change.
func (s *TransactionService) Execute(
	ctx context.Context,
	fn func(txCtx context.Context) error,
) error {
	log := s.log.Function("Execute")

	tx := s.db.SQLWithContext(ctx).Begin()
	if tx.Error != nil {
		return log.Err("failed to begin transaction", tx.Error)
	}

	// A panic in fn is recovered further up the stack, so the rollback has
	// to happen here or the transaction leaks open.
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	txCtx := context.WithValue(ctx, txContextKey{}, tx)

	if err := fn(txCtx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return log.Err("failed to commit transaction", err)
	}

	return nil
}

// GetTransaction returns the transaction carried by ctx, if any.
func GetTransaction(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txContextKey{}).(*gorm.DB)
	return tx, ok
}
