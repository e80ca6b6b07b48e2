package models

import (
	"encoding/json"
	"fmt"
)

// Status tracks the single pending -> approved|rejected transition of an
// absence request. Approved and rejected are terminal.
type Status int

const (
	StatusPending Status = iota
	StatusApproved
	StatusRejected
)

// Reason is the closed set of accepted absence reasons.
type Reason string

const (
	ReasonIllness    Reason = "illness"
	ReasonHoliday    Reason = "holiday"
	ReasonRemote     Reason = "remote"
	ReasonConference Reason = "conference"
	ReasonSchool     Reason = "school"
)

// ParseReason validates a raw reason value from the NLU payload.
func ParseReason(raw string) (Reason, error) {
	switch r := Reason(raw); r {
	case ReasonIllness, ReasonHoliday, ReasonRemote, ReasonConference, ReasonSchool:
		return r, nil
	default:
		return "", fmt.Errorf("unknown absence reason %q", raw)
	}
}

// UnmarshalJSON rejects reasons outside the closed set.
func (r *Reason) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseReason(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// EventHandle points at the calendar event created for an approved absence.
type EventHandle struct {
	ID   string `json:"id,omitempty"`
	Link string `json:"htmlLink,omitempty"`
}

// Absence is the central entity: one leave request round-tripped through Slack
// as a signed token. There is no server-side store; the token is the state.
type Absence struct {
	Status    Status       `json:"status"`
	Requester UserRef      `json:"requester"`
	Interval  Interval     `json:"interval"`
	Reason    Reason       `json:"reason"`
	Channel   string       `json:"channel"`
	Reviewer  *UserRef     `json:"reviewer,omitempty"`
	Event     *EventHandle `json:"event,omitempty"`
}

// PendingAbsence creates a freshly requested absence awaiting review.
func PendingAbsence(requester User, interval Interval, reason Reason, channel string) Absence {
	return Absence{
		Status:    StatusPending,
		Requester: RefByUser(requester),
		Interval:  interval,
		Reason:    reason,
		Channel:   channel,
	}
}

// Decide applies the single allowed state transition and records the reviewer.
func (a Absence) Decide(approved bool, reviewerID string) (Absence, error) {
	if a.Status != StatusPending {
		return a, fmt.Errorf("absence request already decided")
	}
	if approved {
		a.Status = StatusApproved
	} else {
		a.Status = StatusRejected
	}
	ref := RefByID(reviewerID)
	a.Reviewer = &ref
	return a, nil
}

// IsApproved reports a terminal approved status.
func (a Absence) IsApproved() bool { return a.Status == StatusApproved }

// IsRejected reports a terminal rejected status.
func (a Absence) IsRejected() bool { return a.Status == StatusRejected }

// RequesterID returns the requester identifier regardless of resolution state.
func (a Absence) RequesterID() string { return a.Requester.ID }

// ReviewerID returns the reviewer identifier, empty before a decision.
func (a Absence) ReviewerID() string {
	if a.Reviewer == nil {
		return ""
	}
	return a.Reviewer.ID
}

// ColorID maps the reason to a Google Calendar colour id (valid range 1-11).
func (r Reason) ColorID() string {
	switch r {
	case ReasonIllness:
		return "11"
	case ReasonHoliday:
		return "10"
	case ReasonRemote:
		return "7"
	case ReasonConference:
		return "3"
	default:
		return "5"
	}
}

// ColorHex maps the reason to the attachment sidebar colour.
func (r Reason) ColorHex() string {
	switch r {
	case ReasonIllness:
		return "#5db27e"
	case ReasonHoliday:
		return "#439bdf"
	case ReasonRemote:
		return "#eebf4b"
	case ReasonConference:
		return "#966dab"
	default:
		return "#4154af"
	}
}

// Emojis lists title decorations for the reason.
func (r Reason) Emojis() []string {
	switch r {
	case ReasonIllness:
		return []string{"🤒", "🤕", "🤧", "😷", "🤮"}
	case ReasonHoliday:
		return []string{"🏖", "🏄‍♂️", "🌴", "🍹", "⛱"}
	case ReasonRemote:
		return []string{"🏡", "👻", "👨‍💻", "👀"}
	case ReasonConference:
		return []string{"👨‍🔬", "👨‍🏫", "🧠", "✏️"}
	default:
		return []string{"🦉", "📝", "😱", "🤯", "🤦‍♂️"}
	}
}
