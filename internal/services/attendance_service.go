package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"attendance-bot/internal/models"
	"attendance-bot/internal/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Domain outcomes. These are recoverable, user-facing conditions surfaced as
// chat replies, not system faults.
var (
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrNotCheckedIn     = errors.New("not checked in today")
)

// StatusSnapshot is one user's ledger state for the current date.
type StatusSnapshot struct {
	UserID         string   `json:"user_id"`
	Name           string   `json:"name"`
	CheckIn        string   `json:"check_in"`
	CheckOut       string   `json:"check_out"`
	MorningStatus  string   `json:"morning_status"`
	EveningStatus  string   `json:"evening_status"`
	Task           string   `json:"task"`
	Location       string   `json:"location"`
	Completion     int      `json:"completion"`
	ProgressStatus string   `json:"progress_status"`
	WorkSummary    string   `json:"work_summary"`
	Tasks          []string `json:"tasks"`
}

// AttendanceService owns the attendance ledger. State machine per
// (user, date): NoRecord -> CheckedIn -> CheckedOut. It is the only writer
// of the attendance table.
type AttendanceService struct {
	db    *gorm.DB
	users *UserService

	// now is overridable in tests to pin the calendar day.
	now func() time.Time
}

// NewAttendanceService creates an AttendanceService.
func NewAttendanceService(db *gorm.DB, users *UserService) *AttendanceService {
	return &AttendanceService{
		db:    db,
		users: users,
		now:   time.Now,
	}
}

func (s *AttendanceService) today() string {
	return s.now().Format("2006-01-02")
}

func (s *AttendanceService) clock() string {
	return s.now().Format("15:04:05")
}

// CheckIn creates today's record for the user. The unique (user_id, date)
// index plus an insert-if-absent makes two near-simultaneous check-ins race
// safely: exactly one row is created and the loser gets ErrAlreadyCheckedIn.
func (s *AttendanceService) CheckIn(userID, userName, status, task, location string, tasksJSON datatypes.JSON) error {
	if len(tasksJSON) == 0 {
		tasksJSON = datatypes.JSON("[]")
	}
	record := models.AttendanceRecord{
		UserID:        userID,
		UserName:      userName,
		Date:          s.today(),
		CheckInTime:   s.clock(),
		MorningStatus: status,
		Task:          task,
		Location:      location,
		TasksJSON:     tasksJSON,
	}

	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(&record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyCheckedIn
	}

	s.users.RegisterOrUpdate(userID, userName)
	return nil
}

// CheckOut closes today's record: checkout time, completion, the fixed
// evening status and the work summary. Calling it again overwrites the
// previous checkout. With no record for today it returns ErrNotCheckedIn
// and mutates nothing.
func (s *AttendanceService) CheckOut(userID string, completion int, workSummary string) error {
	result := s.db.Model(&models.AttendanceRecord{}).
		Where("user_id = ? AND date = ?", userID, s.today()).
		Updates(map[string]any{
			"check_out_time": s.clock(),
			"completion":     completion,
			"evening_status": models.EveningStatusDone,
			"work_summary":   workSummary,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotCheckedIn
	}
	return nil
}

// UpdateProgress sets the free-text progress field on today's record.
// A missing record is a silent no-op, not an error.
func (s *AttendanceService) UpdateProgress(userID, progressStatus string) error {
	return s.db.Model(&models.AttendanceRecord{}).
		Where("user_id = ? AND date = ?", userID, s.today()).
		Update("progress_status", progressStatus).Error
}

// TodayStatus returns every snapshot for the current date, ordered by
// check-in time ascending.
func (s *AttendanceService) TodayStatus() ([]StatusSnapshot, error) {
	var records []models.AttendanceRecord
	err := s.db.Where("date = ?", s.today()).
		Order("check_in_time asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	snapshots := make([]StatusSnapshot, 0, len(records))
	for _, record := range records {
		snapshots = append(snapshots, snapshotFromRecord(record))
	}
	return snapshots, nil
}

// TodayStatusForUser returns the user's snapshot for today, or nil when the
// user has not checked in.
func (s *AttendanceService) TodayStatusForUser(userID string) (*StatusSnapshot, error) {
	var record models.AttendanceRecord
	err := s.db.Where("user_id = ? AND date = ?", userID, s.today()).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	snapshot := snapshotFromRecord(record)
	return &snapshot, nil
}

// RecentRecords returns the last limit records, newest date first then by
// check-in time descending. Used by the admin data view.
func (s *AttendanceService) RecentRecords(limit int) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := s.db.Order("date desc, check_in_time desc").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

var statusIcons = map[string]string{
	"办公室坐班": "🏢",
	"外出拍摄":  "📹",
	"居家办公":  "💻",
	"会议中":   "📞",
}

// StatusIcon returns the emoji for a status label, with a pin fallback for
// statuses added through the admin console.
func StatusIcon(status string) string {
	if icon, ok := statusIcons[status]; ok {
		return icon
	}
	return "📌"
}

// BuildDailyReport composes the daily team report: one block per checked-in
// user, then the roster of active users without a record today. Absentees
// are matched by user identifier, not display name, so renames during the
// day cannot misclassify anyone.
func (s *AttendanceService) BuildDailyReport() (string, error) {
	snapshots, err := s.TodayStatus()
	if err != nil {
		return "", err
	}
	activeUsers, err := s.users.ListActive()
	if err != nil {
		return "", err
	}

	checkedIn := make(map[string]struct{}, len(snapshots))
	for _, snapshot := range snapshots {
		checkedIn[snapshot.UserID] = struct{}{}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 **今日团队去向** - %s\n\n", s.today())

	for _, snapshot := range snapshots {
		icon := StatusIcon(snapshot.MorningStatus)
		taskText := snapshot.Task
		if taskText == "" {
			taskText = "未填写任务"
		}
		progressIcon := "🔴"
		if snapshot.ProgressStatus == models.ProgressAllNormal {
			progressIcon = "🟢"
		}
		progressText := snapshot.ProgressStatus
		if progressText == "" {
			progressText = "未确认"
		}

		fmt.Fprintf(&b, "• %s %s %s\n", snapshot.Name, icon, snapshot.MorningStatus)
		fmt.Fprintf(&b, "  📝 %s\n", taskText)
		fmt.Fprintf(&b, "  %s 进度: %s\n", progressIcon, progressText)
		if snapshot.CheckOut != "" {
			fmt.Fprintf(&b, "  ⏰ 已签退 (%d%%)\n", snapshot.Completion)
		}
		b.WriteString("\n")
	}

	var missing []string
	for _, user := range activeUsers {
		if _, ok := checkedIn[user.UserID]; !ok {
			missing = append(missing, user.UserName)
		}
	}
	if len(missing) > 0 {
		b.WriteString("⏰ **未签到**\n")
		for _, name := range missing {
			fmt.Fprintf(&b, "• %s\n", name)
		}
	}

	return b.String(), nil
}

func snapshotFromRecord(record models.AttendanceRecord) StatusSnapshot {
	tasks := utils.DecodeStringSlice(string(record.TasksJSON), []string{})
	if tasks == nil {
		tasks = []string{}
	}
	return StatusSnapshot{
		UserID:         record.UserID,
		Name:           record.UserName,
		CheckIn:        record.CheckInTime,
		CheckOut:       record.CheckOutTime,
		MorningStatus:  record.MorningStatus,
		EveningStatus:  record.EveningStatus,
		Task:           record.Task,
		Location:       record.Location,
		Completion:     record.Completion,
		ProgressStatus: record.ProgressStatus,
		WorkSummary:    record.WorkSummary,
		Tasks:          tasks,
	}
}

// SetClockForTesting pins the service clock; tests use it to control the
// calendar day boundary.
func (s *AttendanceService) SetClockForTesting(now func() time.Time) {
	s.now = now
}
