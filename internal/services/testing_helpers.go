package services

import (
	"testing"

	"attendance-bot/internal/models"
	"attendance-bot/internal/store"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing (pure Go, no CGO)
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Setting{},
		&models.User{},
		&models.AttendanceRecord{},
	)
	require.NoError(t, err)

	return db
}

// setupTestStore creates a memory store that is closed with the test
func setupTestStore(t *testing.T) store.Store {
	t.Helper()

	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })
	return s
}
