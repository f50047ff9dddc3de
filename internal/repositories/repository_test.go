package repositories

import (
	"formsentry/internal/database"
	"testing"

	. "formsentry/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) database.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gormDB.AutoMigrate(
		&TestSession{},
		&CapturedEntry{},
		&CapturedField{},
		&Setting{},
	))

	return database.DB{SQL: gormDB}
}
