package bot

import (
	"errors"
	"fmt"
	"strings"

	"attendance-bot/internal/services"
	"attendance-bot/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Fixed task label used when a check-in arrives from a card button, where no
// task was picked.
const defaultTaskLabel = "日常工作"

// Adapter is the chat integration layer: it parses inbound platform events,
// drives the ledger and emits outbound messages. Every entry point is total:
// malformed input is logged and ignored, never raised to the transport.
type Adapter struct {
	settings   *services.SettingsManager
	attendance *services.AttendanceService
	users      *services.UserService
	sender     *Sender
}

// NewAdapter creates an Adapter.
func NewAdapter(settings *services.SettingsManager, attendance *services.AttendanceService, users *services.UserService, sender *Sender) *Adapter {
	return &Adapter{
		settings:   settings,
		attendance: attendance,
		users:      users,
		sender:     sender,
	}
}

// Command keyword tables. Dispatch is by exact match after trimming.
var (
	checkInCommands  = []string{"签到", "/checkin", "/签到"}
	checkOutCommands = []string{"签退", "/checkout", "/签退"}
	reportCommands   = []string{"日报", "/report", "/日报"}
	helpCommands     = []string{"帮助", "/help"}
)

func matchesCommand(text string, commands []string) bool {
	for _, command := range commands {
		if text == command {
			return true
		}
	}
	return false
}

// HandleMessage processes an inbound text-message event. Non-text events
// are acknowledged without action.
func (a *Adapter) HandleMessage(raw []byte) {
	event := gjson.ParseBytes(raw)
	log := logrus.WithField("event_id", uuid.NewString())

	if event.Get("msg_type").String() != "text" {
		log.Debug("Ignoring non-text message event")
		return
	}

	userID := event.Get("sender.user_id").String()
	userName := event.Get("sender.sender_id.name").String()
	if userName == "" {
		userName = "未知用户"
	}
	text := strings.TrimSpace(event.Get("text.content").String())

	log = log.WithFields(logrus.Fields{"user_id": userID, "text": utils.TruncateString(text, 64)})
	log.Info("Inbound chat message")

	a.users.RegisterOrUpdate(userID, userName)

	switch {
	case matchesCommand(text, checkInCommands):
		a.sendCheckInCard(log)
	case matchesCommand(text, checkOutCommands):
		a.sendCheckOutCard(log)
	case matchesCommand(text, reportCommands):
		a.sendDailyReport(log)
	case matchesCommand(text, helpCommands):
		a.sender.SendLogged(NewTextMessage(a.helpText()))
	default:
		a.sender.SendLogged(NewTextMessage(fmt.Sprintf("收到消息：%s\n\n发送「帮助」查看可用命令", text)))
	}
}

// HandleCallback processes an interactive-card button press. Unknown event
// types and unknown actions are acknowledged without action.
func (a *Adapter) HandleCallback(raw []byte) {
	event := gjson.ParseBytes(raw)
	log := logrus.WithField("event_id", uuid.NewString())

	if event.Get("type").String() != "interactive" {
		log.Debug("Ignoring non-interactive callback event")
		return
	}

	userID := event.Get("operator.user_id").String()
	userName := event.Get("operator.name").String()
	if userName == "" {
		userName = "未知用户"
	}
	value := event.Get("action.value")

	log = log.WithFields(logrus.Fields{"user_id": userID, "action": value.Get("action").String()})

	switch value.Get("action").String() {
	case ActionCheckIn:
		status := value.Get("status").String()
		if status == "" {
			status = "办公室坐班"
		}
		// Button check-ins carry no task choice; the status doubles as the
		// location label, mirroring what the card offered.
		reply := a.checkInReply(userID, userName, status)
		a.sender.SendLogged(NewTextMessage(fmt.Sprintf("@%s %s", userName, reply)))
		log.Info("Processed check-in callback")
	case ActionCheckOut:
		completion := int(value.Get("completion").Int())
		reply := a.checkOutReply(userID, completion)
		a.sender.SendLogged(NewTextMessage(fmt.Sprintf("@%s %s", userName, reply)))
		log.Info("Processed check-out callback")
	default:
		log.Debug("Ignoring unknown callback action")
	}
}

func (a *Adapter) checkInReply(userID, userName, status string) string {
	err := a.attendance.CheckIn(userID, userName, status, defaultTaskLabel, status, nil)
	switch {
	case err == nil:
		return fmt.Sprintf("签到成功！\n状态：%s\n任务：%s", status, defaultTaskLabel)
	case errors.Is(err, services.ErrAlreadyCheckedIn):
		return "您今天已经签到过了！"
	default:
		logrus.WithError(err).WithField("user_id", userID).Error("Check-in failed")
		return "签到失败，请重试"
	}
}

func (a *Adapter) checkOutReply(userID string, completion int) string {
	err := a.attendance.CheckOut(userID, completion, "")
	switch {
	case err == nil:
		return fmt.Sprintf("签退成功！\n今日完成度：%d%%", completion)
	case errors.Is(err, services.ErrNotCheckedIn):
		return "您今天还没有签到！"
	default:
		logrus.WithError(err).WithField("user_id", userID).Error("Check-out failed")
		return "签退失败，请重试"
	}
}

func (a *Adapter) sendCheckInCard(log *logrus.Entry) {
	location := a.settings.CompanyLocation()
	if location == "" {
		location = "公司地址未设置"
	}

	statuses := a.settings.StatusOptions()
	if len(statuses) > 6 {
		statuses = statuses[:6]
	}

	card := NewCard("☀️ 早安！请签到", CardColorBlue).
		AddText(fmt.Sprintf("📍 当前定位：%s\n选择您的状态：", location))

	// Two buttons per row
	for i := 0; i < len(statuses); i += 2 {
		row := make([]Button, 0, 2)
		for _, status := range statuses[i:min(i+2, len(statuses))] {
			row = append(row, Button{
				Label:   fmt.Sprintf("%s %s", services.StatusIcon(status), status),
				Primary: true,
				Value:   ActionValue{Action: ActionCheckIn, Status: status},
			})
		}
		card.AddButtonRow(row...)
	}

	message, err := card.Message()
	if err != nil {
		log.WithError(err).Error("Failed to build check-in card")
		return
	}
	a.sender.SendLogged(message)
}

func (a *Adapter) sendCheckOutCard(log *logrus.Entry) {
	card := NewCard("🌙 辛苦了！请签退", CardColorGreen).
		AddText("请选择完成度：").
		AddButtonRow(
			Button{Label: "25% 🔴", Value: ActionValue{Action: ActionCheckOut, Completion: 25}},
			Button{Label: "50% 🟡", Value: ActionValue{Action: ActionCheckOut, Completion: 50}},
		).
		AddButtonRow(
			Button{Label: "75% 🟢", Value: ActionValue{Action: ActionCheckOut, Completion: 75}},
			Button{Label: "100% ⭐", Primary: true, Value: ActionValue{Action: ActionCheckOut, Completion: 100}},
		)

	message, err := card.Message()
	if err != nil {
		log.WithError(err).Error("Failed to build check-out card")
		return
	}
	a.sender.SendLogged(message)
}

func (a *Adapter) sendDailyReport(log *logrus.Entry) {
	report, err := a.attendance.BuildDailyReport()
	if err != nil {
		log.WithError(err).Error("Failed to build daily report")
		return
	}
	a.sender.SendLogged(NewPostMessage("📊 今日团队去向", report))
}

func (a *Adapter) helpText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚗 **%s帮助**\n\n", a.settings.BotName())
	b.WriteString("*可用命令：*\n")
	b.WriteString("• 签到 - 每日签到\n")
	b.WriteString("• 签退 - 每日签退\n")
	b.WriteString("• 日报 - 查看今日汇总\n")
	b.WriteString("• 帮助 - 查看帮助信息\n\n")
	b.WriteString("*考勤状态：*\n")
	for _, status := range a.settings.StatusOptions() {
		fmt.Fprintf(&b, "%s %s\n", services.StatusIcon(status), status)
	}
	return strings.TrimRight(b.String(), "\n")
}
