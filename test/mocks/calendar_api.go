package mocks

import (
	"context"

	"github.com/absencebot/absence-bot/internal/calendar"
	"github.com/absencebot/absence-bot/internal/models"
)

// MockCalendarAPI is a simple mock for the Google Calendar client
type MockCalendarAPI struct {
	FetchAuthTokenFunc func(ctx context.Context) (calendar.AccessToken, error)
	CreateEventFunc    func(ctx context.Context, token calendar.AccessToken, event calendar.Event) (calendar.Event, error)
	ListEventsFunc     func(ctx context.Context, token calendar.AccessToken, interval models.Interval) ([]calendar.Event, error)

	CreatedEvents []calendar.Event
}

func (m *MockCalendarAPI) FetchAuthToken(ctx context.Context) (calendar.AccessToken, error) {
	if m.FetchAuthTokenFunc != nil {
		return m.FetchAuthTokenFunc(ctx)
	}
	return calendar.AccessToken{AccessToken: "mock-token", TokenType: "Bearer"}, nil
}

func (m *MockCalendarAPI) CreateEvent(ctx context.Context, token calendar.AccessToken, event calendar.Event) (calendar.Event, error) {
	m.CreatedEvents = append(m.CreatedEvents, event)
	if m.CreateEventFunc != nil {
		return m.CreateEventFunc(ctx, token, event)
	}
	created := event
	created.ID = "mock-event-id"
	created.HTMLLink = "https://calendar.google.com/event?eid=mock"
	return created, nil
}

func (m *MockCalendarAPI) ListEvents(ctx context.Context, token calendar.AccessToken, interval models.Interval) ([]calendar.Event, error) {
	if m.ListEventsFunc != nil {
		return m.ListEventsFunc(ctx, token, interval)
	}
	return []calendar.Event{}, nil
}
