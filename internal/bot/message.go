// Package bot translates between the chat platform's wire format and the
// attendance services: inbound command/callback handling, typed outbound
// message construction and best-effort delivery.
package bot

import "encoding/json"

// Card header color templates.
const (
	CardColorBlue  = "blue"
	CardColorGreen = "green"
)

// Action names carried in card button payloads.
const (
	ActionCheckIn  = "checkin"
	ActionCheckOut = "checkout"
)

// ActionValue is the typed payload attached to a card button. The platform
// echoes it back verbatim in the callback event.
type ActionValue struct {
	Action     string `json:"action"`
	Status     string `json:"status,omitempty"`
	Completion int    `json:"completion,omitempty"`
}

// OutboundMessage is the JSON envelope POSTed to the platform webhook.
// Exactly one of Text, Post or Card is set, selected by MsgType.
type OutboundMessage struct {
	MsgType string       `json:"msg_type"`
	Text    *textPayload `json:"text,omitempty"`
	Post    *postPayload `json:"post,omitempty"`
	// The platform expects the interactive card as an embedded JSON string.
	Card string `json:"card,omitempty"`
}

type textPayload struct {
	Content string `json:"content"`
}

type postPayload struct {
	ZhCN postLocale `json:"zh_cn"`
}

type postLocale struct {
	Title   string      `json:"title"`
	Content [][]postRun `json:"content"`
}

type postRun struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// NewTextMessage builds a plain text message.
func NewTextMessage(content string) OutboundMessage {
	return OutboundMessage{
		MsgType: "text",
		Text:    &textPayload{Content: content},
	}
}

// NewPostMessage builds a rich text message with a single title and a single
// text paragraph.
func NewPostMessage(title, content string) OutboundMessage {
	return OutboundMessage{
		MsgType: "post",
		Post: &postPayload{
			ZhCN: postLocale{
				Title:   title,
				Content: [][]postRun{{{Tag: "text", Text: content}}},
			},
		},
	}
}

// Button is one action button on an interactive card.
type Button struct {
	Label   string
	Primary bool
	Value   ActionValue
}

// Card accumulates elements for an interactive card: a colored header,
// optional markdown paragraphs and rows of action buttons.
type Card struct {
	title    string
	color    string
	elements []any
}

// NewCard creates a card with the given header title and color template.
func NewCard(title, color string) *Card {
	return &Card{title: title, color: color}
}

// AddText appends a markdown paragraph element.
func (c *Card) AddText(content string) *Card {
	c.elements = append(c.elements, map[string]any{
		"tag":  "div",
		"text": map[string]any{"tag": "lark_md", "content": content},
	})
	return c
}

// AddButtonRow appends one row of action buttons.
func (c *Card) AddButtonRow(buttons ...Button) *Card {
	actions := make([]any, 0, len(buttons))
	for _, button := range buttons {
		action := map[string]any{
			"tag":   "button",
			"text":  map[string]any{"tag": "plain_text", "content": button.Label},
			"value": button.Value,
		}
		if button.Primary {
			action["type"] = "primary"
		}
		actions = append(actions, action)
	}
	c.elements = append(c.elements, map[string]any{
		"tag":     "action",
		"actions": actions,
	})
	return c
}

// Message serializes the card into an interactive outbound message.
func (c *Card) Message() (OutboundMessage, error) {
	card := map[string]any{
		"header": map[string]any{
			"title":    map[string]any{"tag": "plain_text", "content": c.title},
			"template": c.color,
		},
		"elements": c.elements,
	}
	encoded, err := json.Marshal(card)
	if err != nil {
		return OutboundMessage{}, err
	}
	return OutboundMessage{
		MsgType: "interactive",
		Card:    string(encoded),
	}, nil
}
