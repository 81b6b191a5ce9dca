// Package models defines the persisted entities: settings, users and
// attendance records.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Attendance status labels written by the ledger.
const (
	// EveningStatusDone is the fixed evening status set on check-out.
	EveningStatusDone = "已完成工作"
	// ProgressAllNormal is the canonical "all good" progress value; the
	// daily report shows green only for this exact string.
	ProgressAllNormal = "一切正常"
)

// Setting corresponds to the settings table: one row per configuration key.
// Values are opaque strings; JSON-shaped values (task tags, status options)
// are decoded on read, best-effort.
type Setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(255)" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User corresponds to the users table. Rows are created lazily the first
// time a platform user interacts with the bot and are never hard-deleted.
type User struct {
	UserID   string `gorm:"primaryKey;type:varchar(64)" json:"user_id"`
	UserName string `gorm:"type:varchar(255);not null" json:"user_name"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

// AttendanceRecord corresponds to the attendance table: one row per user per
// calendar day, enforced by the unique index. Date is "2006-01-02" and the
// time-of-day fields are "15:04:05"; the display name is denormalized at
// write time so later renames do not rewrite history.
type AttendanceRecord struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_attendance_user_date" json:"user_id"`
	UserName       string         `gorm:"type:varchar(255);not null" json:"user_name"`
	Date           string         `gorm:"type:char(10);not null;uniqueIndex:idx_attendance_user_date;index:idx_attendance_date" json:"date"`
	CheckInTime    string         `gorm:"type:char(8)" json:"check_in_time"`
	CheckOutTime   string         `gorm:"type:char(8)" json:"check_out_time"`
	MorningStatus  string         `gorm:"type:varchar(64)" json:"morning_status"`
	EveningStatus  string         `gorm:"type:varchar(64)" json:"evening_status"`
	Location       string         `gorm:"type:varchar(255)" json:"location"`
	Task           string         `gorm:"type:varchar(255)" json:"task"`
	TasksJSON      datatypes.JSON `gorm:"type:json" json:"tasks_json"`
	Completion     int            `gorm:"not null;default:0" json:"completion"`
	ProgressStatus string         `gorm:"type:varchar(255)" json:"progress_status"`
	WorkSummary    string         `gorm:"type:text" json:"work_summary"`
	CreatedAt      time.Time      `json:"created_at"`
}

// TableName keeps the original table name instead of GORM's pluralized default.
func (AttendanceRecord) TableName() string {
	return "attendance"
}
