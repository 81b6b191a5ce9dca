// Package handler contains the gin HTTP handlers: the bot webhook surface,
// the admin console and the health check.
package handler

import (
	"attendance-bot/internal/bot"
	"attendance-bot/internal/services"
	"attendance-bot/internal/types"

	"gorm.io/gorm"
)

// Server aggregates the dependencies shared by all handlers.
type Server struct {
	DB         *gorm.DB
	config     types.ConfigManager
	Settings   *services.SettingsManager
	Attendance *services.AttendanceService
	Users      *services.UserService
	Adapter    *bot.Adapter
}

// NewServer creates a Server.
func NewServer(
	db *gorm.DB,
	configManager types.ConfigManager,
	settings *services.SettingsManager,
	attendance *services.AttendanceService,
	users *services.UserService,
	adapter *bot.Adapter,
) *Server {
	return &Server{
		DB:         db,
		config:     configManager,
		Settings:   settings,
		Attendance: attendance,
		Users:      users,
		Adapter:    adapter,
	}
}
