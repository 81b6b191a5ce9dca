package handler

import (
	"testing"
	"time"

	"attendance-bot/internal/bot"
	"attendance-bot/internal/config"
	"attendance-bot/internal/models"
	"attendance-bot/internal/services"
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

// setupTestServer creates a test server with minimal dependencies
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	db := setupTestDB(t)

	mockConfig := &config.MockConfig{
		AuthKeyValue:  "test-auth-key-12345678",
		BotTimeoutSec: 1,
	}

	cache := store.NewMemoryStore()
	t.Cleanup(func() { cache.Close() })

	settings := services.NewSettingsManager(db, cache)
	require.NoError(t, settings.EnsureDefaults())

	users := services.NewUserService(db)
	attendance := services.NewAttendanceService(db, users)
	attendance.SetClockForTesting(func() time.Time {
		return time.Date(2025, 6, 2, 10, 30, 0, 0, time.Local)
	})

	sender := bot.NewSender(mockConfig)
	adapter := bot.NewAdapter(settings, attendance, users, sender)

	return NewServer(db, mockConfig, settings, attendance, users, adapter)
}
