package services

import (
	"encoding/json"
	"time"

	"attendance-bot/internal/models"
	"attendance-bot/internal/store"
	"attendance-bot/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Well-known settings keys.
const (
	SettingBotName         = "bot_name"
	SettingWelcomeMessage  = "welcome_message"
	SettingMorningTime     = "morning_time"
	SettingNoonTime        = "noon_time"
	SettingEveningTime     = "evening_time"
	SettingReportTime      = "report_time"
	SettingWeekReportTime  = "week_report_time"
	SettingMonthReportTime = "month_report_time"
	SettingTaskTags        = "task_tags"
	SettingStatusOptions   = "status_options"
	SettingScheduleEnabled = "schedule_enabled"
	SettingCompanyLocation = "company_location"
	SettingCompanyLat      = "company_lat"
	SettingCompanyLng      = "company_lng"
	SettingCheckinRadius   = "checkin_radius"
)

// Default vocabularies, used at first initialization and as read fallbacks.
var (
	DefaultTaskTags      = []string{"视频剪辑", "文案撰写", "素材拍摄", "字幕压制", "封面设计", "平台发布"}
	DefaultStatusOptions = []string{"办公室坐班", "外出拍摄", "居家办公", "会议中"}
)

const (
	settingsCacheKey = "settings:all"
	settingsCacheTTL = 5 * time.Second
)

// SettingsManager owns the settings table: typed reads with caller-supplied
// defaults, full-replacement writes, and a short-lived cache for the GetAll
// hot path (every inbound chat message hydrates the runtime parameters).
type SettingsManager struct {
	db    *gorm.DB
	cache store.Store
}

// NewSettingsManager creates a SettingsManager.
func NewSettingsManager(db *gorm.DB, cache store.Store) *SettingsManager {
	return &SettingsManager{db: db, cache: cache}
}

// EnsureDefaults seeds every missing key with its default value. Existing
// values are never overwritten, so redeploys keep admin edits.
func (sm *SettingsManager) EnsureDefaults() error {
	taskTags, _ := json.Marshal(DefaultTaskTags)
	statusOptions, _ := json.Marshal(DefaultStatusOptions)

	defaults := []models.Setting{
		{Key: SettingBotName, Value: "考勤小助手"},
		{Key: SettingWelcomeMessage, Value: "你好！我是考勤小助手"},
		{Key: SettingMorningTime, Value: "09:00"},
		{Key: SettingNoonTime, Value: "13:00"},
		{Key: SettingEveningTime, Value: "18:00"},
		{Key: SettingReportTime, Value: "20:00"},
		{Key: SettingWeekReportTime, Value: "18:00"},
		{Key: SettingMonthReportTime, Value: "18:00"},
		{Key: SettingTaskTags, Value: string(taskTags)},
		{Key: SettingStatusOptions, Value: string(statusOptions)},
		{Key: SettingScheduleEnabled, Value: "true"},
		{Key: SettingCompanyLocation, Value: ""},
		{Key: SettingCompanyLat, Value: ""},
		{Key: SettingCompanyLng, Value: ""},
		{Key: SettingCheckinRadius, Value: "500"},
	}

	return sm.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error
}

// Get returns the stored raw value for key, or defaultValue when absent.
// Absent keys are an expected condition, never an error.
func (sm *SettingsManager) Get(key, defaultValue string) string {
	var setting models.Setting
	// Struct-based lookup so the dialect quotes the "key" column itself.
	if err := sm.db.Where(&models.Setting{Key: key}).First(&setting).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logrus.WithError(err).WithField("key", key).Warn("Failed to read setting, using default")
		}
		return defaultValue
	}
	return setting.Value
}

// Set stores a full-replacement value for key and bumps the update timestamp.
func (sm *SettingsManager) Set(key, value string) error {
	setting := models.Setting{Key: key, Value: value, UpdatedAt: time.Now()}
	err := sm.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return err
	}
	if cacheErr := sm.cache.Delete(settingsCacheKey); cacheErr != nil {
		logrus.WithError(cacheErr).Warn("Failed to invalidate settings cache")
	}
	return nil
}

// GetAll returns every setting with values JSON-decoded on a best-effort
// basis; values that are not valid JSON come back as raw strings.
func (sm *SettingsManager) GetAll() (map[string]any, error) {
	if cached, err := sm.cache.Get(settingsCacheKey); err == nil {
		var settings map[string]any
		if err := json.Unmarshal(cached, &settings); err == nil {
			return settings, nil
		}
	}

	var rows []models.Setting
	if err := sm.db.Find(&rows).Error; err != nil {
		return nil, err
	}

	settings := make(map[string]any, len(rows))
	for _, row := range rows {
		decoded, _ := utils.TryDecodeJSON(row.Value)
		settings[row.Key] = decoded
	}

	if encoded, err := json.Marshal(settings); err == nil {
		if cacheErr := sm.cache.Set(settingsCacheKey, encoded, settingsCacheTTL); cacheErr != nil {
			logrus.WithError(cacheErr).Warn("Failed to cache settings")
		}
	}

	return settings, nil
}

// BotName returns the configured bot display name.
func (sm *SettingsManager) BotName() string {
	return sm.Get(SettingBotName, "考勤小助手")
}

// WelcomeMessage returns the configured welcome message.
func (sm *SettingsManager) WelcomeMessage() string {
	return sm.Get(SettingWelcomeMessage, "你好！")
}

// CompanyLocation returns the configured company address.
func (sm *SettingsManager) CompanyLocation() string {
	return sm.Get(SettingCompanyLocation, "")
}

// TaskTags returns the task-tag vocabulary.
func (sm *SettingsManager) TaskTags() []string {
	return utils.DecodeStringSlice(sm.Get(SettingTaskTags, ""), DefaultTaskTags)
}

// StatusOptions returns the attendance status vocabulary.
func (sm *SettingsManager) StatusOptions() []string {
	return utils.DecodeStringSlice(sm.Get(SettingStatusOptions, ""), DefaultStatusOptions)
}
