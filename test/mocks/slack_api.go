package mocks

import (
	"context"

	"github.com/absencebot/absence-bot/internal/models"
	"github.com/absencebot/absence-bot/internal/slack"
)

// MockSlackAPI is a simple mock for the Slack client
type MockSlackAPI struct {
	FetchUserFunc   func(ctx context.Context, id string) (models.User, error)
	PostMessageFunc func(ctx context.Context, msg slack.Message) error

	PostedMessages []slack.Message
}

func (m *MockSlackAPI) FetchUser(ctx context.Context, id string) (models.User, error) {
	if m.FetchUserFunc != nil {
		return m.FetchUserFunc(ctx, id)
	}
	return models.User{ID: id}, nil
}

func (m *MockSlackAPI) PostMessage(ctx context.Context, msg slack.Message) error {
	m.PostedMessages = append(m.PostedMessages, msg)
	if m.PostMessageFunc != nil {
		return m.PostMessageFunc(ctx, msg)
	}
	return nil
}
