package slack

import (
	"encoding/json"
	"fmt"

	"github.com/absencebot/absence-bot/internal/models"
)

// ActionValue is the decision carried by an interactive button click.
type ActionValue string

const (
	// ActionAccept approves the request and invites the reviewer to the event.
	ActionAccept ActionValue = "accept"
	// ActionSilentAccept approves without adding the reviewer as an attendee.
	ActionSilentAccept ActionValue = "silentAccept"
	// ActionReject declines the request.
	ActionReject ActionValue = "reject"
)

// Approved reports whether the value represents an approval.
func (v ActionValue) Approved() bool {
	return v == ActionAccept || v == ActionSilentAccept
}

// InteractiveMessageAction is the callback Slack sends when a reviewer clicks
// one of the approval buttons. The pending absence request travels inside
// CallbackID as an opaque token.
type InteractiveMessageAction struct {
	Actions         []AttachmentAction `json:"actions"`
	CallbackID      string             `json:"callback_id"`
	User            ActionUser         `json:"user"`
	Channel         ActionChannel      `json:"channel"`
	ResponseURL     string             `json:"response_url"`
	OriginalMessage ActionMessage      `json:"original_message"`
}

// ActionUser identifies the reviewer who clicked.
type ActionUser struct {
	ID string `json:"id"`
}

// ActionChannel identifies where the announcement message lives.
type ActionChannel struct {
	ID string `json:"id"`
}

// ActionMessage carries the original announcement text for fallback rendering.
type ActionMessage struct {
	Text string `json:"text"`
}

// DecodeInteractiveAction parses the JSON carried in the form-encoded payload
// field of an interactive-action callback.
func DecodeInteractiveAction(payload []byte) (InteractiveMessageAction, error) {
	var action InteractiveMessageAction
	if err := json.Unmarshal(payload, &action); err != nil {
		return InteractiveMessageAction{}, fmt.Errorf("failed to decode interactive action: %w", err)
	}
	if len(action.Actions) == 0 {
		return InteractiveMessageAction{}, fmt.Errorf("interactive action carries no actions")
	}
	return action, nil
}

// Value returns the clicked button's decision value.
func (a InteractiveMessageAction) Value() ActionValue {
	return a.Actions[0].Value
}

// Absence decodes the embedded absence request token.
func (a InteractiveMessageAction) Absence() (models.Absence, error) {
	return models.DecodeToken(a.CallbackID)
}

// DeliveryKey identifies this click for retry deduplication.
func (a InteractiveMessageAction) DeliveryKey() string {
	return fmt.Sprintf("%s:%s:%s", a.User.ID, a.Value(), a.CallbackID)
}
