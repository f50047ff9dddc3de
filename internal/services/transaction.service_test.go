package services

import (
	"context"
	"errors"
	"formsentry/internal/database"
	"testing"

	. "formsentry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTransactionTestDB(t *testing.T) database.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&Setting{}))

	return database.DB{SQL: gormDB}
}

func settingCount(t *testing.T, db database.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.SQL.Model(&Setting{}).Count(&count).Error)
	return count
}

func TestExecuteCommitsOnSuccess(t *testing.T) {
	db := newTransactionTestDB(t)
	service := NewTransactionService(db)

	err := service.Execute(context.Background(), func(txCtx context.Context) error {
		tx, ok := GetTransaction(txCtx)
		require.True(t, ok)
		return tx.Create(&Setting{Key: "a", Value: "1"}).Error
	})
	require.NoError(t, err)

	assert.EqualValues(t, 1, settingCount(t, db))
}

func TestExecuteRollsBackOnError(t *testing.T) {
	db := newTransactionTestDB(t)
	service := NewTransactionService(db)

	err := service.Execute(context.Background(), func(txCtx context.Context) error {
		tx, _ := GetTransaction(txCtx)
		require.NoError(t, tx.Create(&Setting{Key: "a", Value: "1"}).Error)
		return errors.New("boom")
	})
	require.Error(t, err)

	assert.Zero(t, settingCount(t, db))
}

func TestExecuteRollsBackOnPanic(t *testing.T) {
	db := newTransactionTestDB(t)
	service := NewTransactionService(db)

	require.Panics(t, func() {
		_ = service.Execute(context.Background(), func(txCtx context.Context) error {
			tx, _ := GetTransaction(txCtx)
			require.NoError(t, tx.Create(&Setting{Key: "a", Value: "1"}).Error)
			panic("handler blew up")
		})
	})

	assert.Zero(t, settingCount(t, db), "the panicked transaction must be rolled back")

	// The connection is usable again, no transaction was left open.
	err := service.Execute(context.Background(), func(txCtx context.Context) error {
		tx, _ := GetTransaction(txCtx)
		return tx.Create(&Setting{Key: "b", Value: "2"}).Error
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, settingCount(t, db))
}
