package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absencebot/absence-bot/internal/models"
)

func approvedFixture(t *testing.T, allDay bool) models.Absence {
	t.Helper()
	var interval models.Interval
	if allDay {
		interval = models.NewInterval(
			time.Date(2019, time.June, 6, 0, 0, 0, 0, time.UTC),
			time.Date(2019, time.June, 8, 0, 0, 0, 0, time.UTC),
			time.UTC,
		)
	} else {
		interval = models.NewInterval(
			time.Date(2019, time.June, 6, 8, 0, 0, 0, time.UTC),
			time.Date(2019, time.June, 6, 16, 0, 0, 0, time.UTC),
			time.UTC,
		)
	}

	requester := models.User{ID: "U1", Name: "John Smith", Email: "john@example.com"}
	pending := models.PendingAbsence(requester, interval, models.ReasonHoliday, "U1")
	approved, err := pending.Decide(true, "U2")
	require.NoError(t, err)

	reviewer := models.RefByUser(models.User{ID: "U2", Name: "Jane Doe", Email: "jane@example.com"})
	approved.Reviewer = &reviewer
	return approved
}

func TestEventFromAbsenceAllDay(t *testing.T) {
	event, err := EventFromAbsence(approvedFixture(t, true), true)
	require.NoError(t, err)

	assert.Equal(t, "2019-06-06", event.Start.Date)
	// Google treats date-only ends as exclusive, so the end is one day past.
	assert.Equal(t, "2019-06-09", event.End.Date)
	assert.Nil(t, event.Start.DateTime)
	assert.Nil(t, event.End.DateTime)

	assert.Contains(t, event.Summary, "John Smith - holiday")
	assert.Equal(t, models.ReasonHoliday.ColorID(), event.ColorID)
}

func TestEventFromAbsenceTimed(t *testing.T) {
	event, err := EventFromAbsence(approvedFixture(t, false), true)
	require.NoError(t, err)

	require.NotNil(t, event.Start.DateTime)
	require.NotNil(t, event.End.DateTime)
	assert.Empty(t, event.Start.Date)
	assert.Equal(t, time.Date(2019, time.June, 6, 8, 0, 0, 0, time.UTC), event.Start.DateTime.UTC())
	assert.Equal(t, time.Date(2019, time.June, 6, 16, 0, 0, 0, time.UTC), event.End.DateTime.UTC())
}

func TestEventFromAbsenceAttendees(t *testing.T) {
	t.Run("regular approval invites both", func(t *testing.T) {
		event, err := EventFromAbsence(approvedFixture(t, true), true)
		require.NoError(t, err)

		require.Len(t, event.Attendees, 2)
		assert.Equal(t, "john@example.com", event.Attendees[0].Email)
		assert.Equal(t, "jane@example.com", event.Attendees[1].Email)
	})

	t.Run("silent approval invites requester only", func(t *testing.T) {
		event, err := EventFromAbsence(approvedFixture(t, true), false)
		require.NoError(t, err)

		require.Len(t, event.Attendees, 1)
		assert.Equal(t, "john@example.com", event.Attendees[0].Email)
	})
}

func TestEventFromAbsenceRequiresResolvedProfiles(t *testing.T) {
	a := approvedFixture(t, true)
	a.Requester = models.RefByID("U1")
	_, err := EventFromAbsence(a, true)
	assert.Error(t, err)

	a = approvedFixture(t, true)
	bare := models.RefByID("U2")
	a.Reviewer = &bare
	_, err = EventFromAbsence(a, true)
	assert.Error(t, err)

	// A silent approval needs no reviewer profile at all.
	_, err = EventFromAbsence(a, false)
	assert.NoError(t, err)
}

func TestPickEmojiIsStable(t *testing.T) {
	first := pickEmoji(models.ReasonHoliday, "U1")
	second := pickEmoji(models.ReasonHoliday, "U1")
	assert.Equal(t, first, second)
	assert.Contains(t, models.ReasonHoliday.Emojis(), first)
}

func TestNewReportEntry(t *testing.T) {
	created := time.Date(2019, time.June, 1, 10, 0, 0, 0, time.UTC)

	t.Run("all-day event", func(t *testing.T) {
		event := Event{
			Summary:  "John Smith - holiday 🏖",
			HTMLLink: "https://calendar.google.com/evt1",
			Created:  &created,
			Attendees: []Attendee{
				{Email: "john@example.com", DisplayName: "John Smith"},
				{Email: "jane@example.com", DisplayName: "Jane Doe"},
			},
			Start: EventDateTime{Date: "2019-06-06"},
			End:   EventDateTime{Date: "2019-06-09"},
		}

		entry := NewReportEntry(event)

		assert.Equal(t, "John Smith", entry.Requester)
		assert.Equal(t, "Jane Doe", entry.Reviewer)
		assert.Equal(t, models.ReasonHoliday, entry.Reason)
		assert.Equal(t, "https://calendar.google.com/evt1", entry.EventLink)

		require.NotNil(t, entry.Start)
		require.NotNil(t, entry.End)
		assert.Equal(t, 6, entry.Start.Day())
		// The exclusive end date is reversed back to the true last day.
		assert.Equal(t, 8, entry.End.Day())
	})

	t.Run("timed event", func(t *testing.T) {
		start := time.Date(2019, time.June, 6, 8, 0, 0, 0, time.UTC)
		end := time.Date(2019, time.June, 6, 16, 0, 0, 0, time.UTC)
		event := Event{
			Summary: "John Smith - illness 🤒",
			Start:   EventDateTime{DateTime: &start},
			End:     EventDateTime{DateTime: &end},
		}

		entry := NewReportEntry(event)

		assert.Equal(t, models.ReasonIllness, entry.Reason)
		require.NotNil(t, entry.End)
		assert.Equal(t, 16, entry.End.Hour())
	})

	t.Run("foreign event degrades gracefully", func(t *testing.T) {
		entry := NewReportEntry(Event{Summary: "Team offsite"})

		assert.Empty(t, entry.Requester)
		assert.Empty(t, entry.Reason)
		assert.Nil(t, entry.Start)
	})
}

func TestEventHandle(t *testing.T) {
	event := Event{ID: "evt1", HTMLLink: "https://calendar.google.com/evt1"}
	handle := event.Handle()
	assert.Equal(t, "evt1", handle.ID)
	assert.Equal(t, "https://calendar.google.com/evt1", handle.Link)
}
