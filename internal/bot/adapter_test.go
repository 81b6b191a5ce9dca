package bot

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"attendance-bot/internal/config"
	"attendance-bot/internal/models"
	"attendance-bot/internal/services"
	"attendance-bot/internal/store"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// outbox records every message the adapter sends during a test.
type outbox struct {
	mu    sync.Mutex
	items []gjson.Result
}

func (o *outbox) add(raw []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append(o.items, gjson.ParseBytes(raw))
}

func (o *outbox) all() []gjson.Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]gjson.Result(nil), o.items...)
}

func (o *outbox) last(t *testing.T) gjson.Result {
	t.Helper()
	messages := o.all()
	require.NotEmpty(t, messages)
	return messages[len(messages)-1]
}

func setupTestAdapter(t *testing.T) (*Adapter, *services.AttendanceService, *outbox) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Setting{}, &models.User{}, &models.AttendanceRecord{}))

	cache := store.NewMemoryStore()
	t.Cleanup(func() { cache.Close() })

	settings := services.NewSettingsManager(db, cache)
	require.NoError(t, settings.EnsureDefaults())

	users := services.NewUserService(db)
	attendance := services.NewAttendanceService(db, users)
	attendance.SetClockForTesting(func() time.Time {
		return time.Date(2025, 6, 2, 10, 30, 0, 0, time.Local)
	})

	box := &outbox{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		box.add(body)
		w.Write([]byte(`{"code":0,"msg":"success"}`))
	}))
	t.Cleanup(ts.Close)

	sender := NewSender(&config.MockConfig{WebhookURL: ts.URL, BotTimeoutSec: 2})
	adapter := NewAdapter(settings, attendance, users, sender)

	return adapter, attendance, box
}

func textEvent(userID, name, content string) []byte {
	return []byte(fmt.Sprintf(
		`{"msg_type":"text","sender":{"user_id":%q,"sender_id":{"name":%q}},"text":{"content":%q}}`,
		userID, name, content))
}

func callbackEvent(userID, name, value string) []byte {
	return []byte(fmt.Sprintf(
		`{"type":"interactive","operator":{"user_id":%q,"name":%q},"action":{"value":%s}}`,
		userID, name, value))
}

// TestHandleMessage_CheckInCommand tests the check-in card
func TestHandleMessage_CheckInCommand(t *testing.T) {
	t.Parallel()

	adapter, _, box := setupTestAdapter(t)
	adapter.HandleMessage(textEvent("u1", "alice", "签到"))

	message := box.last(t)
	assert.Equal(t, "interactive", message.Get("msg_type").String())

	card := gjson.Parse(message.Get("card").String())
	assert.Equal(t, "☀️ 早安！请签到", card.Get("header.title.content").String())
	assert.Equal(t, "blue", card.Get("header.template").String())
	assert.Contains(t, card.Get("elements.0.text.content").String(), "公司地址未设置")

	// Default vocabulary: four statuses, two buttons per row
	rows := card.Get("elements").Array()[1:]
	require.Len(t, rows, 2)
	firstButton := rows[0].Get("actions.0")
	assert.Equal(t, "checkin", firstButton.Get("value.action").String())
	assert.Equal(t, "办公室坐班", firstButton.Get("value.status").String())
	assert.Equal(t, "🏢 办公室坐班", firstButton.Get("text.content").String())
}

// TestHandleMessage_CheckInCommand_Location tests that the configured company
// address appears on the card
func TestHandleMessage_CheckInCommand_Location(t *testing.T) {
	t.Parallel()

	adapter, _, box := setupTestAdapter(t)
	require.NoError(t, adapter.settings.Set(services.SettingCompanyLocation, "北京市朝阳区建国路88号"))

	adapter.HandleMessage(textEvent("u1", "alice", "/checkin"))

	card := gjson.Parse(box.last(t).Get("card").String())
	assert.Contains(t, card.Get("elements.0.text.content").String(), "北京市朝阳区建国路88号")
}

// TestHandleMessage_CheckOutCommand tests the completion card
func TestHandleMessage_CheckOutCommand(t *testing.T) {
	t.Parallel()

	adapter, _, box := setupTestAdapter(t)
	adapter.HandleMessage(textEvent("u1", "alice", "签退"))

	card := gjson.Parse(box.last(t).Get("card").String())
	assert.Equal(t, "🌙 辛苦了！请签退", card.Get("header.title.content").String())
	assert.Equal(t, "green", card.Get("header.template").String())

	rows := card.Get("elements").Array()[1:]
	require.Len(t, rows, 2)
	assert.Equal(t, int64(25), rows[0].Get("actions.0.value.completion").Int())
	assert.Equal(t, int64(100), rows[1].Get("actions.1.value.completion").Int())
	assert.Equal(t, "primary", rows[1].Get("actions.1.type").String())
}

// TestHandleMessage_ReportCommand tests the daily report as a rich message
func TestHandleMessage_ReportCommand(t *testing.T) {
	t.Parallel()

	adapter, attendance, box := setupTestAdapter(t)
	require.NoError(t, attendance.CheckIn("u1", "alice", "办公室坐班", "视频剪辑", "办公室", nil))

	adapter.HandleMessage(textEvent("u2", "bob", "日报"))

	message := box.last(t)
	assert.Equal(t, "post", message.Get("msg_type").String())
	assert.Equal(t, "📊 今日团队去向", message.Get("post.zh_cn.title").String())
	content := message.Get("post.zh_cn.content.0.0.text").String()
	assert.Contains(t, content, "• alice")
	// bob sent a message, so he is registered but absent from today's ledger
	assert.Contains(t, content, "未签到")
	assert.Contains(t, content, "• bob")
}

// TestHandleMessage_HelpCommand tests the help text with the configured name
func TestHandleMessage_HelpCommand(t *testing.T) {
	t.Parallel()

	adapter, _, box := setupTestAdapter(t)
	require.NoError(t, adapter.settings.Set(services.SettingBotName, "打卡机"))

	adapter.HandleMessage(textEvent("u1", "alice", "帮助"))

	message := box.last(t)
	assert.Equal(t, "text", message.Get("msg_type").String())
	content := message.Get("text.content").String()
	assert.Contains(t, content, "打卡机")
	assert.Contains(t, content, "签到")
	assert.Contains(t, content, "办公室坐班")
}

// TestHandleMessage_UnknownCommand tests the echo-plus-hint fallback without
// any ledger mutation
func TestHandleMessage_UnknownCommand(t *testing.T) {
	t.Parallel()

	adapter, attendance, box := setupTestAdapter(t)
	adapter.HandleMessage(textEvent("u1", "alice", "xyz123"))

	message := box.last(t)
	assert.Equal(t, "text", message.Get("msg_type").String())
	content := message.Get("text.content").String()
	assert.Contains(t, content, "收到消息：xyz123")
	assert.Contains(t, content, "帮助")

	snapshots, err := attendance.TodayStatus()
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}

// TestHandleMessage_NonTextEvent tests that non-text events are ignored
func TestHandleMessage_NonTextEvent(t *testing.T) {
	t.Parallel()

	adapter, _, box := setupTestAdapter(t)
	adapter.HandleMessage([]byte(`{"msg_type":"image","image_key":"img_v2_xxx"}`))
	assert.Empty(t, box.all())
}

// TestHandleMessage_MalformedJSON tests that garbage input cannot panic
func TestHandleMessage_MalformedJSON(t *testing.T) {
	t.Parallel()

	adapter, _, box := setupTestAdapter(t)
	adapter.HandleMessage([]byte(`{{{not json`))
	assert.Empty(t, box.all())
}

// TestHandleMessage_RegistersSender tests the lazy user registration
func TestHandleMessage_RegistersSender(t *testing.T) {
	t.Parallel()

	adapter, _, _ := setupTestAdapter(t)
	adapter.HandleMessage(textEvent("u1", "alice", "随便说点什么"))

	users, err := adapter.users.ListActive()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].UserName)
}

// TestHandleCallback_CheckIn tests a successful button check-in
func TestHandleCallback_CheckIn(t *testing.T) {
	t.Parallel()

	adapter, attendance, box := setupTestAdapter(t)
	adapter.HandleCallback(callbackEvent("u1", "alice", `{"action":"checkin","status":"居家办公"}`))

	message := box.last(t)
	content := message.Get("text.content").String()
	assert.Contains(t, content, "@alice")
	assert.Contains(t, content, "签到成功")
	assert.Contains(t, content, "居家办公")

	snapshot, err := attendance.TodayStatusForUser("u1")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, "居家办公", snapshot.MorningStatus)
	assert.Equal(t, "居家办公", snapshot.Location)
	assert.Equal(t, "日常工作", snapshot.Task)
}

// TestHandleCallback_DuplicateCheckIn tests the already-checked-in reply
func TestHandleCallback_DuplicateCheckIn(t *testing.T) {
	t.Parallel()

	adapter, _, box := setupTestAdapter(t)
	adapter.HandleCallback(callbackEvent("u1", "alice", `{"action":"checkin","status":"办公室坐班"}`))
	adapter.HandleCallback(callbackEvent("u1", "alice", `{"action":"checkin","status":"居家办公"}`))

	assert.Contains(t, box.last(t).Get("text.content").String(), "已经签到过了")
}

// TestHandleCallback_CheckOut tests the button check-out path
func TestHandleCallback_CheckOut(t *testing.T) {
	t.Parallel()

	adapter, attendance, box := setupTestAdapter(t)
	require.NoError(t, attendance.CheckIn("u1", "alice", "办公室坐班", "日常工作", "办公室坐班", nil))

	adapter.HandleCallback(callbackEvent("u1", "alice", `{"action":"checkout","completion":75}`))

	content := box.last(t).Get("text.content").String()
	assert.Contains(t, content, "签退成功")
	assert.Contains(t, content, "75%")

	snapshot, err := attendance.TodayStatusForUser("u1")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, 75, snapshot.Completion)
}

// TestHandleCallback_CheckOutWithoutCheckIn tests the not-checked-in reply
func TestHandleCallback_CheckOutWithoutCheckIn(t *testing.T) {
	t.Parallel()

	adapter, _, box := setupTestAdapter(t)
	adapter.HandleCallback(callbackEvent("u1", "alice", `{"action":"checkout","completion":50}`))

	assert.Contains(t, box.last(t).Get("text.content").String(), "还没有签到")
}

// TestHandleCallback_UnknownAction tests that unknown actions are ignored
func TestHandleCallback_UnknownAction(t *testing.T) {
	t.Parallel()

	adapter, _, box := setupTestAdapter(t)
	adapter.HandleCallback(callbackEvent("u1", "alice", `{"action":"snooze"}`))
	assert.Empty(t, box.all())
}

// TestHandleCallback_NonInteractiveEvent tests the event type gate
func TestHandleCallback_NonInteractiveEvent(t *testing.T) {
	t.Parallel()

	adapter, _, box := setupTestAdapter(t)
	adapter.HandleCallback([]byte(`{"type":"url_verification","challenge":"abc"}`))
	assert.Empty(t, box.all())
}
