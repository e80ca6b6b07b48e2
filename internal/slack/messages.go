package slack

import (
	"fmt"
	"strings"
	"time"

	"github.com/absencebot/absence-bot/internal/models"
)

// Message is a chat.postMessage payload.
type Message struct {
	Text        string       `json:"text"`
	Channel     string       `json:"channel"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment decorates a message; approval requests carry interactive buttons.
type Attachment struct {
	Text       string             `json:"text,omitempty"`
	Fallback   string             `json:"fallback,omitempty"`
	CallbackID string             `json:"callback_id,omitempty"`
	Color      string             `json:"color,omitempty"`
	Actions    []AttachmentAction `json:"actions,omitempty"`
}

// AttachmentAction is one interactive button.
type AttachmentAction struct {
	Name  string      `json:"name"`
	Text  string      `json:"text,omitempty"`
	Type  string      `json:"type"`
	Value ActionValue `json:"value"`
}

// Fallback replaces the original interactive message after a decision so the
// buttons disappear and the outcome stays visible.
type Fallback struct {
	ResponseType    string       `json:"response_type"`
	ReplaceOriginal bool         `json:"replace_original"`
	Text            string       `json:"text"`
	Attachments     []Attachment `json:"attachments"`
}

// ErrorResponse is the chat-compatible body returned on terminal failures so
// Slack renders something instead of silently dropping the interaction.
type ErrorResponse struct {
	ResponseType    string `json:"response_type"`
	ReplaceOriginal bool   `json:"replace_original"`
	Text            string `json:"text"`
}

// NewErrorResponse builds an ephemeral error notice.
func NewErrorResponse(text string) ErrorResponse {
	return ErrorResponse{ResponseType: "ephemeral", ReplaceOriginal: false, Text: text}
}

// AnnouncementMessage builds the approval request posted to the announcement
// channel: the request summary plus accept/reject buttons carrying the token.
func AnnouncementMessage(a models.Absence, token, channel string, loc *time.Location) Message {
	attachment := Attachment{
		Text:       "Let me know what you think about this.",
		Fallback:   "Absence acceptance interactive message",
		CallbackID: token,
		Color:      a.Reason.ColorHex(),
		Actions: []AttachmentAction{
			{Name: "accept", Text: "Accept 👍", Type: "button", Value: ActionAccept},
			{Name: "reject", Text: "Reject 👎", Type: "button", Value: ActionReject},
		},
	}

	text := fmt.Sprintf("<@%s> is asking for vacant %s because of the %s.",
		a.RequesterID(), a.Interval.DateRange(loc, true), a.Reason)

	return Message{Text: text, Channel: channel, Attachments: []Attachment{attachment}}
}

// RejectionMessage notifies the requester about a declined request.
func RejectionMessage(a models.Absence) Message {
	return Message{
		Text:        "Bad news! Your absence request was rejected",
		Channel:     a.Channel,
		Attachments: []Attachment{},
	}
}

// AcceptanceMessage notifies the requester about an approved request. Illness
// requests additionally carry the employer details needed for a sick note.
func AcceptanceMessage(a models.Absence) Message {
	eventRef := "event"
	if a.Event != nil && a.Event.Link != "" {
		eventRef = fmt.Sprintf("<%s|event>", a.Event.Link)
	}

	msg := Message{
		Text: fmt.Sprintf(
			"Good news! Your absence request was approved. I've already created the %s in absence calendar",
			eventRef),
		Channel:     a.Channel,
		Attachments: []Attachment{},
	}

	if a.Reason == models.ReasonIllness {
		msg.Attachments = append(msg.Attachments, sickNoteAttachment())
	}
	return msg
}

func sickNoteAttachment() Attachment {
	quoted := make([]string, 0, 4)
	for _, line := range strings.Split(companyAddress, "\n") {
		quoted = append(quoted, ">"+line)
	}
	return Attachment{
		Text: "*Only related to employment contracts.* Your employer's details you should get your sick note with are:\n" +
			strings.Join(quoted, "\n"),
	}
}

const companyAddress = `IMGE sp. z o.o.
ul. Droga Dębińska 3a/3
61-555 Poznań
NIP 783-172-43-36`

// RejectionFallback replaces the announcement once the request is declined.
func RejectionFallback(original string, a models.Absence) Fallback {
	return Fallback{
		ResponseType:    "in_channel",
		ReplaceOriginal: true,
		Text:            original,
		Attachments: []Attachment{{
			Text:  fmt.Sprintf("<@%s> rejected <@%s>'s absence request.", a.ReviewerID(), a.RequesterID()),
			Color: "danger",
		}},
	}
}

// AcceptanceFallback replaces the announcement once the request is approved.
func AcceptanceFallback(original string, a models.Absence) Fallback {
	eventNote := ""
	if a.Event != nil && a.Event.Link != "" {
		eventNote = fmt.Sprintf(" Event: <%s|calendar>.", a.Event.Link)
	}
	return Fallback{
		ResponseType:    "in_channel",
		ReplaceOriginal: true,
		Text:            original,
		Attachments: []Attachment{{
			Text:  fmt.Sprintf("<@%s> approved <@%s>'s absence request.%s", a.ReviewerID(), a.RequesterID(), eventNote),
			Color: a.Reason.ColorHex(),
		}},
	}
}
