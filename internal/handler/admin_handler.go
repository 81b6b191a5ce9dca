package handler

import (
	"net/http"

	"attendance-bot/internal/models"
	"attendance-bot/internal/services"
	"attendance-bot/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const adminTemplate = "admin.html"

// adminView is the data handed to the admin template. One template renders
// all five pages, switching on Page.
type adminView struct {
	Page    string
	Message string

	BotName         string
	WelcomeMessage  string
	CompanyLocation string
	CheckinRadius   string
	ScheduleEnabled string

	MorningTime     string
	NoonTime        string
	EveningTime     string
	ReportTime      string
	WeekReportTime  string
	MonthReportTime string

	TaskTags          []string
	TaskTagsJSON      string
	StatusOptions     []string
	StatusOptionsJSON string

	Records []models.AttendanceRecord
}

func (s *Server) adminViewFor(page, message string) adminView {
	return adminView{
		Page:    page,
		Message: message,

		BotName:         s.Settings.BotName(),
		WelcomeMessage:  s.Settings.WelcomeMessage(),
		CompanyLocation: s.Settings.CompanyLocation(),
		CheckinRadius:   s.Settings.Get(services.SettingCheckinRadius, "500"),
		ScheduleEnabled: s.Settings.Get(services.SettingScheduleEnabled, "true"),

		MorningTime:     s.Settings.Get(services.SettingMorningTime, "09:00"),
		NoonTime:        s.Settings.Get(services.SettingNoonTime, "13:00"),
		EveningTime:     s.Settings.Get(services.SettingEveningTime, "18:00"),
		ReportTime:      s.Settings.Get(services.SettingReportTime, "20:00"),
		WeekReportTime:  s.Settings.Get(services.SettingWeekReportTime, "18:00"),
		MonthReportTime: s.Settings.Get(services.SettingMonthReportTime, "18:00"),

		TaskTags:          s.Settings.TaskTags(),
		TaskTagsJSON:      s.Settings.Get(services.SettingTaskTags, "[]"),
		StatusOptions:     s.Settings.StatusOptions(),
		StatusOptionsJSON: s.Settings.Get(services.SettingStatusOptions, "[]"),
	}
}

// AdminIndex renders the general settings page. GET /
func (s *Server) AdminIndex(c *gin.Context) {
	c.HTML(http.StatusOK, adminTemplate, s.adminViewFor("settings", ""))
}

// AdminTiming renders the scheduled-times page. GET /timing
func (s *Server) AdminTiming(c *gin.Context) {
	c.HTML(http.StatusOK, adminTemplate, s.adminViewFor("timing", ""))
}

// AdminTasks renders the task-tag vocabulary page. GET /tasks
func (s *Server) AdminTasks(c *gin.Context) {
	c.HTML(http.StatusOK, adminTemplate, s.adminViewFor("tasks", ""))
}

// AdminStatus renders the status vocabulary page. GET /status
func (s *Server) AdminStatus(c *gin.Context) {
	c.HTML(http.StatusOK, adminTemplate, s.adminViewFor("status", ""))
}

// AdminData renders the last 100 attendance records. GET /data
func (s *Server) AdminData(c *gin.Context) {
	records, err := s.Attendance.RecentRecords(100)
	if err != nil {
		logrus.WithError(err).Error("Failed to load attendance records")
	}
	view := s.adminViewFor("data", "")
	view.Records = records
	c.HTML(http.StatusOK, adminTemplate, view)
}

// saveSetting writes one key, logging rather than failing the page render.
// The admin console reports success optimistically, like the rest of the
// best-effort surfaces.
func (s *Server) saveSetting(key, value string) {
	if err := s.Settings.Set(key, value); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to save setting")
	}
}

// AdminSaveSettings handles POST /settings/save. Each field has a hardcoded
// fallback applied when the form omits it.
func (s *Server) AdminSaveSettings(c *gin.Context) {
	s.saveSetting(services.SettingBotName, c.DefaultPostForm("bot_name", "考勤小助手"))
	s.saveSetting(services.SettingWelcomeMessage, c.DefaultPostForm("welcome_message", "你好！"))
	s.saveSetting(services.SettingCompanyLocation, c.DefaultPostForm("company_location", ""))
	s.saveSetting(services.SettingCheckinRadius, c.DefaultPostForm("checkin_radius", "500"))
	s.saveSetting(services.SettingScheduleEnabled, c.DefaultPostForm("schedule_enabled", "true"))
	c.HTML(http.StatusOK, adminTemplate, s.adminViewFor("settings", "保存成功！"))
}

// clockOrDefault returns the submitted time field when it parses as HH:MM,
// the fallback otherwise.
func clockOrDefault(c *gin.Context, field, fallback string) string {
	value := c.DefaultPostForm(field, fallback)
	if err := utils.ValidateClockTime(value); err != nil {
		logrus.WithError(err).WithField("field", field).Warn("Rejecting invalid time value")
		return fallback
	}
	return value
}

// AdminSaveTiming handles POST /timing/save.
func (s *Server) AdminSaveTiming(c *gin.Context) {
	s.saveSetting(services.SettingMorningTime, clockOrDefault(c, "morning_time", "09:00"))
	s.saveSetting(services.SettingNoonTime, clockOrDefault(c, "noon_time", "13:00"))
	s.saveSetting(services.SettingEveningTime, clockOrDefault(c, "evening_time", "18:00"))
	s.saveSetting(services.SettingReportTime, clockOrDefault(c, "report_time", "20:00"))
	s.saveSetting(services.SettingWeekReportTime, clockOrDefault(c, "week_report_time", "18:00"))
	s.saveSetting(services.SettingMonthReportTime, clockOrDefault(c, "month_report_time", "18:00"))
	c.HTML(http.StatusOK, adminTemplate, s.adminViewFor("timing", "时间设置已保存！"))
}

// AdminSaveTasks handles POST /tasks/save.
func (s *Server) AdminSaveTasks(c *gin.Context) {
	s.saveSetting(services.SettingTaskTags, c.DefaultPostForm("task_tags", "[]"))
	c.HTML(http.StatusOK, adminTemplate, s.adminViewFor("tasks", "任务标签已保存！"))
}

// AdminSaveStatus handles POST /status/save.
func (s *Server) AdminSaveStatus(c *gin.Context) {
	s.saveSetting(services.SettingStatusOptions, c.DefaultPostForm("status_options", "[]"))
	c.HTML(http.StatusOK, adminTemplate, s.adminViewFor("status", "状态选项已保存！"))
}
