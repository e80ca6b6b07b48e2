// Package calendar provides the Google Calendar collaborator: service-account
// authentication, event creation and the monthly report listing.
package calendar

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/absencebot/absence-bot/internal/models"
)

const dateOnlyFormat = "2006-01-02"

// Event mirrors the Calendar v3 events resource, reduced to the fields the bot
// reads and writes.
type Event struct {
	ID          string        `json:"id,omitempty"`
	ColorID     string        `json:"colorId,omitempty"`
	HTMLLink    string        `json:"htmlLink,omitempty"`
	Created     *time.Time    `json:"created,omitempty"`
	Updated     *time.Time    `json:"updated,omitempty"`
	Summary     string        `json:"summary"`
	Description string        `json:"description,omitempty"`
	Attendees   []Attendee    `json:"attendees,omitempty"`
	Start       EventDateTime `json:"start"`
	End         EventDateTime `json:"end"`
}

// Attendee is an invited calendar participant.
type Attendee struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// EventDateTime holds either a date-only value (all-day events) or a full
// timestamp, never both.
type EventDateTime struct {
	Date     string     `json:"date,omitempty"`
	DateTime *time.Time `json:"dateTime,omitempty"`
}

// Handle reduces the event to the reference stored on an approved absence.
func (e Event) Handle() *models.EventHandle {
	return &models.EventHandle{ID: e.ID, Link: e.HTMLLink}
}

// EventFromAbsence builds the calendar event for an approved request. The
// requester is always invited; the reviewer only unless the approval was
// silent. All-day events get an exclusive end date, one day past the true last
// day, because Google excludes the end date of date-only events.
func EventFromAbsence(a models.Absence, includeReviewer bool) (Event, error) {
	if !a.Requester.Resolved() {
		return Event{}, fmt.Errorf("requester profile is not resolved")
	}
	requester := *a.Requester.User

	attendees := []Attendee{{Email: requester.Email, DisplayName: requester.Name}}
	if includeReviewer {
		if a.Reviewer == nil || !a.Reviewer.Resolved() {
			return Event{}, fmt.Errorf("reviewer profile is not resolved")
		}
		attendees = append(attendees, Attendee{
			Email:       a.Reviewer.User.Email,
			DisplayName: a.Reviewer.User.Name,
		})
	}

	event := Event{
		ColorID:   a.Reason.ColorID(),
		Summary:   fmt.Sprintf("%s - %s %s", requester.Name, a.Reason, pickEmoji(a.Reason, requester.ID)),
		Attendees: attendees,
	}

	if a.Interval.IsAllDay() {
		event.Start = EventDateTime{Date: a.Interval.Start.Format(dateOnlyFormat)}
		event.End = EventDateTime{Date: a.Interval.End.AddDate(0, 0, 1).Format(dateOnlyFormat)}
	} else {
		start, end := a.Interval.Start, a.Interval.End
		event.Start = EventDateTime{DateTime: &start}
		event.End = EventDateTime{DateTime: &end}
	}
	return event, nil
}

// pickEmoji selects a stable emoji per requester so repeated approvals do not
// flap in tests or report diffs.
func pickEmoji(reason models.Reason, seed string) string {
	emojis := reason.Emojis()
	h := fnv.New32a()
	h.Write([]byte(seed))
	return emojis[int(h.Sum32())%len(emojis)]
}

// ReportEntry is one row of the monthly absence report, reverse-mapped from a
// calendar event.
type ReportEntry struct {
	Requester string        `json:"requester,omitempty"`
	Reviewer  string        `json:"reviewer,omitempty"`
	Reason    models.Reason `json:"reason,omitempty"`
	Start     *time.Time    `json:"start,omitempty"`
	End       *time.Time    `json:"end,omitempty"`
	EventLink string        `json:"eventLink,omitempty"`
	CreatedAt *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt *time.Time    `json:"updatedAt,omitempty"`
}

// NewReportEntry parses an event created by the bot back into report fields.
// The summary format is "Name - reason emoji"; all-day end dates are pulled
// back by the one-day exclusive-end adjustment.
func NewReportEntry(event Event) ReportEntry {
	entry := ReportEntry{
		EventLink: event.HTMLLink,
		CreatedAt: event.Created,
		UpdatedAt: event.Updated,
		Start:     eventTime(event.Start, 0),
		End:       eventTime(event.End, -1),
	}

	if name, rawReason, found := strings.Cut(event.Summary, " - "); found {
		entry.Requester = strings.TrimSpace(name)
		reasonWord, _, _ := strings.Cut(strings.TrimSpace(rawReason), " ")
		if reason, err := models.ParseReason(reasonWord); err == nil {
			entry.Reason = reason
		}
	}

	for _, attendee := range event.Attendees {
		if attendee.DisplayName != entry.Requester {
			entry.Reviewer = attendee.DisplayName
			break
		}
	}
	return entry
}

func eventTime(dt EventDateTime, allDayOffsetDays int) *time.Time {
	if dt.DateTime != nil {
		return dt.DateTime
	}
	if dt.Date == "" {
		return nil
	}
	t, err := time.Parse(dateOnlyFormat, dt.Date)
	if err != nil {
		return nil
	}
	t = t.AddDate(0, 0, allDayOffsetDays)
	return &t
}
