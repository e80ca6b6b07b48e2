package absence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absencebot/absence-bot/internal/calendar"
	"github.com/absencebot/absence-bot/internal/models"
	"github.com/absencebot/absence-bot/test/mocks"
)

func TestHandleReport(t *testing.T) {
	var requested models.Interval
	calendarMock := &mocks.MockCalendarAPI{
		ListEventsFunc: func(_ context.Context, _ calendar.AccessToken, interval models.Interval) ([]calendar.Event, error) {
			requested = interval
			return []calendar.Event{
				{
					Summary: "John Smith - holiday 🏖",
					Attendees: []calendar.Attendee{
						{Email: "john@example.com", DisplayName: "John Smith"},
						{Email: "jane@example.com", DisplayName: "Jane Doe"},
					},
					Start: calendar.EventDateTime{Date: "2019-06-06"},
					End:   calendar.EventDateTime{Date: "2019-06-09"},
				},
				{Summary: "Team offsite"},
			}, nil
		},
	}
	service := newTestService(&mocks.MockSlackAPI{}, calendarMock, nil)

	entries, err := service.HandleReport(context.Background(), 2019, time.June)
	require.NoError(t, err)

	assert.True(t, requested.Start.Equal(time.Date(2019, time.June, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, requested.End.Equal(time.Date(2019, time.June, 30, 23, 59, 59, 0, time.UTC)))

	require.Len(t, entries, 2)
	assert.Equal(t, "John Smith", entries[0].Requester)
	assert.Equal(t, "Jane Doe", entries[0].Reviewer)
	assert.Equal(t, models.ReasonHoliday, entries[0].Reason)
	assert.Empty(t, entries[1].Requester, "foreign events pass through unmapped")
}

func TestHandleReportAuthFailure(t *testing.T) {
	calendarMock := &mocks.MockCalendarAPI{
		FetchAuthTokenFunc: func(_ context.Context) (calendar.AccessToken, error) {
			return calendar.AccessToken{}, fmt.Errorf("invalid_grant")
		},
	}
	service := newTestService(&mocks.MockSlackAPI{}, calendarMock, nil)

	_, err := service.HandleReport(context.Background(), 2019, time.June)
	assert.Error(t, err)
}

func TestHandleReportListFailure(t *testing.T) {
	calendarMock := &mocks.MockCalendarAPI{
		ListEventsFunc: func(_ context.Context, _ calendar.AccessToken, _ models.Interval) ([]calendar.Event, error) {
			return nil, fmt.Errorf("backend error")
		},
	}
	service := newTestService(&mocks.MockSlackAPI{}, calendarMock, nil)

	_, err := service.HandleReport(context.Background(), 2019, time.June)
	assert.Error(t, err)
}
