// Package config provides environment-backed process configuration.
// Runtime tunables (bot name, schedules, vocabularies) live in the settings
// table instead; see internal/services.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"attendance-bot/internal/types"
	"attendance-bot/internal/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Constants for default configuration
const (
	defaultPort        = 5000
	defaultHost        = "0.0.0.0"
	defaultDatabaseDSN = "./data/attendance.db"
	defaultSendTimeout = 10
)

// Manager implements types.ConfigManager on top of environment variables.
type Manager struct {
	serverConfig      types.ServerConfig
	authConfig        types.AuthConfig
	corsConfig        types.CORSConfig
	performanceConfig types.PerformanceConfig
	logConfig         types.LogConfig
	databaseConfig    types.DatabaseConfig
	botConfig         types.BotConfig
}

// NewManager creates a new configuration manager from the environment.
// A .env file is honored when present but is not required.
func NewManager() (types.ConfigManager, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Debugf("No .env file loaded: %v", err)
	}

	manager := &Manager{}
	if err := manager.ReloadConfig(); err != nil {
		return nil, err
	}
	if err := manager.Validate(); err != nil {
		return nil, err
	}
	return manager, nil
}

// ReloadConfig re-reads every configuration value from the environment.
func (m *Manager) ReloadConfig() error {
	m.serverConfig = types.ServerConfig{
		Port:                    parseInteger(os.Getenv("PORT"), defaultPort),
		Host:                    utils.GetEnvOrDefault("HOST", defaultHost),
		ReadTimeout:             parseInteger(os.Getenv("SERVER_READ_TIMEOUT"), 60),
		WriteTimeout:            parseInteger(os.Getenv("SERVER_WRITE_TIMEOUT"), 60),
		IdleTimeout:             parseInteger(os.Getenv("SERVER_IDLE_TIMEOUT"), 120),
		GracefulShutdownTimeout: parseInteger(os.Getenv("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT"), 10),
	}

	m.authConfig = types.AuthConfig{
		Key: utils.GetEnvOrDefault("ADMIN_PASSWORD", "admin123"),
	}

	m.corsConfig = types.CORSConfig{
		Enabled:          parseBoolean(os.Getenv("ENABLE_CORS"), false),
		AllowedOrigins:   utils.SplitAndTrim(utils.GetEnvOrDefault("ALLOWED_ORIGINS", "*"), ","),
		AllowedMethods:   utils.SplitAndTrim(utils.GetEnvOrDefault("ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"), ","),
		AllowedHeaders:   utils.SplitAndTrim(utils.GetEnvOrDefault("ALLOWED_HEADERS", "*"), ","),
		AllowCredentials: parseBoolean(os.Getenv("ALLOW_CREDENTIALS"), false),
	}

	m.performanceConfig = types.PerformanceConfig{
		MaxConcurrentRequests: parseInteger(os.Getenv("MAX_CONCURRENT_REQUESTS"), 100),
	}

	m.logConfig = types.LogConfig{
		Level:      strings.ToLower(utils.GetEnvOrDefault("LOG_LEVEL", "info")),
		Format:     strings.ToLower(utils.GetEnvOrDefault("LOG_FORMAT", "text")),
		EnableFile: parseBoolean(os.Getenv("LOG_ENABLE_FILE"), false),
		FilePath:   utils.GetEnvOrDefault("LOG_FILE_PATH", "./data/logs/app.log"),
	}

	m.databaseConfig = types.DatabaseConfig{
		DSN: utils.GetEnvOrDefault("DATABASE_DSN", defaultDatabaseDSN),
	}

	m.botConfig = types.BotConfig{
		WebhookURL:  os.Getenv("BOT_WEBHOOK_URL"),
		AppID:       os.Getenv("BOT_APP_ID"),
		AppSecret:   os.Getenv("BOT_APP_SECRET"),
		SendTimeout: parseInteger(os.Getenv("BOT_SEND_TIMEOUT"), defaultSendTimeout),
	}

	return nil
}

// Validate checks the loaded configuration for obvious misconfiguration.
func (m *Manager) Validate() error {
	if m.serverConfig.Port < 1 || m.serverConfig.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got: %d", m.serverConfig.Port)
	}
	if m.performanceConfig.MaxConcurrentRequests < 1 {
		return fmt.Errorf("max concurrent requests cannot be less than 1")
	}
	if m.databaseConfig.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if m.botConfig.SendTimeout < 1 {
		return fmt.Errorf("bot send timeout cannot be less than 1 second")
	}
	if m.botConfig.WebhookURL == "" {
		logrus.Warn("BOT_WEBHOOK_URL is not set; outbound messages will be dropped")
	}
	return nil
}

// GetAuthConfig returns admin console authentication configuration
func (m *Manager) GetAuthConfig() types.AuthConfig {
	return m.authConfig
}

// GetCORSConfig returns CORS configuration
func (m *Manager) GetCORSConfig() types.CORSConfig {
	return m.corsConfig
}

// GetPerformanceConfig returns performance configuration
func (m *Manager) GetPerformanceConfig() types.PerformanceConfig {
	return m.performanceConfig
}

// GetLogConfig returns logging configuration
func (m *Manager) GetLogConfig() types.LogConfig {
	return m.logConfig
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() types.DatabaseConfig {
	return m.databaseConfig
}

// GetBotConfig returns the chat platform integration configuration
func (m *Manager) GetBotConfig() types.BotConfig {
	return m.botConfig
}

// GetEffectiveServerConfig returns the server configuration
func (m *Manager) GetEffectiveServerConfig() types.ServerConfig {
	return m.serverConfig
}

// DisplayServerConfig logs the effective configuration at startup.
func (m *Manager) DisplayServerConfig() {
	logrus.Info("")
	logrus.Info("======= Server Configuration =======")
	logrus.Infof("  Listen address: %s:%d", m.serverConfig.Host, m.serverConfig.Port)
	logrus.Infof("  Database DSN: %s", m.databaseConfig.DSN)
	logrus.Infof("  Log level: %s", m.logConfig.Level)
	if m.botConfig.WebhookURL != "" {
		logrus.Info("  Bot webhook: configured")
	} else {
		logrus.Info("  Bot webhook: NOT configured")
	}
	logrus.Info("====================================")
	logrus.Info("")
}

func parseInteger(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseBoolean(value string, defaultValue bool) bool {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
