package services

import (
	"strings"
	"testing"
	"time"

	"attendance-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAttendanceService(t *testing.T) *AttendanceService {
	t.Helper()

	db := setupTestDB(t)
	users := NewUserService(db)
	svc := NewAttendanceService(db, users)
	svc.SetClockForTesting(func() time.Time {
		return time.Date(2025, 6, 2, 10, 30, 15, 0, time.Local)
	})
	return svc
}

// TestCheckIn_CreatesRecord tests the basic check-in path
func TestCheckIn_CreatesRecord(t *testing.T) {
	t.Parallel()

	svc := setupAttendanceService(t)

	err := svc.CheckIn("alice-id", "alice", "办公室坐班", "视频剪辑", "办公室", nil)
	require.NoError(t, err)

	snapshot, err := svc.TodayStatusForUser("alice-id")
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	assert.Equal(t, "alice", snapshot.Name)
	assert.Equal(t, "10:30:15", snapshot.CheckIn)
	assert.Empty(t, snapshot.CheckOut)
	assert.Equal(t, "办公室坐班", snapshot.MorningStatus)
	assert.Equal(t, "视频剪辑", snapshot.Task)
}

// TestCheckIn_RegistersUser tests that check-in upserts the user directory
func TestCheckIn_RegistersUser(t *testing.T) {
	t.Parallel()

	svc := setupAttendanceService(t)

	err := svc.CheckIn("alice-id", "alice", "办公室坐班", "视频剪辑", "办公室", nil)
	require.NoError(t, err)

	users, err := svc.users.ListActive()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice-id", users[0].UserID)
	assert.Equal(t, "alice", users[0].UserName)
}

// TestCheckIn_Duplicate tests that a second check-in on the same day is
// rejected and leaves the first record untouched
func TestCheckIn_Duplicate(t *testing.T) {
	t.Parallel()

	svc := setupAttendanceService(t)

	err := svc.CheckIn("bob-id", "bob", "办公室坐班", "文案撰写", "办公室", nil)
	require.NoError(t, err)

	err = svc.CheckIn("bob-id", "bob", "居家办公", "封面设计", "家里", nil)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	snapshot, err := svc.TodayStatusForUser("bob-id")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, "办公室坐班", snapshot.MorningStatus)
	assert.Equal(t, "文案撰写", snapshot.Task)
}

// TestCheckOut_BeforeCheckIn tests that check-out without a record creates
// nothing and reports the domain outcome
func TestCheckOut_BeforeCheckIn(t *testing.T) {
	t.Parallel()

	svc := setupAttendanceService(t)

	err := svc.CheckOut("ghost-id", 75, "")
	assert.ErrorIs(t, err, ErrNotCheckedIn)

	snapshot, err := svc.TodayStatusForUser("ghost-id")
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

// TestCheckOut_ClosesRecord tests the full check-in then check-out scenario
func TestCheckOut_ClosesRecord(t *testing.T) {
	t.Parallel()

	svc := setupAttendanceService(t)

	require.NoError(t, svc.CheckIn("alice-id", "alice", "办公室坐班", "视频剪辑", "办公室", nil))
	require.NoError(t, svc.CheckOut("alice-id", 75, "今天完成了剪辑"))

	snapshot, err := svc.TodayStatusForUser("alice-id")
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	assert.Equal(t, "10:30:15", snapshot.CheckOut)
	assert.Equal(t, 75, snapshot.Completion)
	assert.Equal(t, models.EveningStatusDone, snapshot.EveningStatus)
	assert.Equal(t, "今天完成了剪辑", snapshot.WorkSummary)
}

// TestCheckOut_Repeat tests that a second check-out overwrites the first
func TestCheckOut_Repeat(t *testing.T) {
	t.Parallel()

	svc := setupAttendanceService(t)

	require.NoError(t, svc.CheckIn("alice-id", "alice", "办公室坐班", "视频剪辑", "办公室", nil))
	require.NoError(t, svc.CheckOut("alice-id", 50, ""))
	require.NoError(t, svc.CheckOut("alice-id", 100, "补充说明"))

	snapshot, err := svc.TodayStatusForUser("alice-id")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, 100, snapshot.Completion)
	assert.Equal(t, "补充说明", snapshot.WorkSummary)
}

// TestUpdateProgress tests the progress field update and its silent no-op
// when no record exists
func TestUpdateProgress(t *testing.T) {
	t.Parallel()

	svc := setupAttendanceService(t)

	// No record yet: silent no-op
	require.NoError(t, svc.UpdateProgress("alice-id", models.ProgressAllNormal))

	require.NoError(t, svc.CheckIn("alice-id", "alice", "办公室坐班", "视频剪辑", "办公室", nil))
	require.NoError(t, svc.UpdateProgress("alice-id", models.ProgressAllNormal))

	snapshot, err := svc.TodayStatusForUser("alice-id")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, models.ProgressAllNormal, snapshot.ProgressStatus)
}

// TestTodayStatus_Order tests ordering by check-in time
func TestTodayStatus_Order(t *testing.T) {
	t.Parallel()

	svc := setupAttendanceService(t)

	clock := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)
	svc.SetClockForTesting(func() time.Time { return clock })
	require.NoError(t, svc.CheckIn("early-id", "early", "办公室坐班", "", "", nil))

	clock = time.Date(2025, 6, 2, 11, 0, 0, 0, time.Local)
	require.NoError(t, svc.CheckIn("late-id", "late", "居家办公", "", "", nil))

	snapshots, err := svc.TodayStatus()
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, "early", snapshots[0].Name)
	assert.Equal(t, "late", snapshots[1].Name)
}

// TestBuildDailyReport_Partition tests that the report lists every checked-in
// user once and every absent active user once
func TestBuildDailyReport_Partition(t *testing.T) {
	t.Parallel()

	svc := setupAttendanceService(t)

	svc.users.RegisterOrUpdate("alice-id", "alice")
	svc.users.RegisterOrUpdate("bob-id", "bob")
	svc.users.RegisterOrUpdate("carol-id", "carol")

	require.NoError(t, svc.CheckIn("alice-id", "alice", "办公室坐班", "视频剪辑", "办公室", nil))
	require.NoError(t, svc.CheckIn("bob-id", "bob", "外出拍摄", "", "外出", nil))
	require.NoError(t, svc.CheckOut("bob-id", 100, ""))

	report, err := svc.BuildDailyReport()
	require.NoError(t, err)

	assert.Contains(t, report, "今日团队去向")
	assert.Contains(t, report, "• alice 🏢 办公室坐班")
	assert.Contains(t, report, "📝 视频剪辑")
	assert.Contains(t, report, "• bob 📹 外出拍摄")
	assert.Contains(t, report, "📝 未填写任务")
	assert.Contains(t, report, "已签退 (100%)")
	assert.Contains(t, report, "未签到")
	assert.Contains(t, report, "• carol")

	assert.Equal(t, 1, strings.Count(report, "• alice"))
	assert.Equal(t, 1, strings.Count(report, "• bob"))
	assert.Equal(t, 1, strings.Count(report, "• carol"))
}

// TestBuildDailyReport_RenamedUser tests that a display-name change between
// registration and check-in does not misclassify the user as absent
func TestBuildDailyReport_RenamedUser(t *testing.T) {
	t.Parallel()

	svc := setupAttendanceService(t)

	svc.users.RegisterOrUpdate("alice-id", "alice")
	require.NoError(t, svc.CheckIn("alice-id", "Alice Zhang", "办公室坐班", "", "", nil))

	report, err := svc.BuildDailyReport()
	require.NoError(t, err)

	assert.Contains(t, report, "• Alice Zhang")
	assert.NotContains(t, report, "未签到")
}

// TestStatusIcon tests the icon lookup and its fallback
func TestStatusIcon(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "🏢", StatusIcon("办公室坐班"))
	assert.Equal(t, "📹", StatusIcon("外出拍摄"))
	assert.Equal(t, "📌", StatusIcon("出差"))
}
