package absence

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absencebot/absence-bot/internal/dialogflow"
	"github.com/absencebot/absence-bot/internal/models"
	"github.com/absencebot/absence-bot/pkg/logger"
	"github.com/absencebot/absence-bot/test/mocks"
)

var (
	requesterFixture = models.User{ID: "U1", Name: "John Smith", Email: "john@example.com"}
	reviewerFixture  = models.User{ID: "U2", Name: "Jane Doe", Email: "jane@example.com"}
)

func newTestService(slackAPI *mocks.MockSlackAPI, calendarAPI *mocks.MockCalendarAPI, dedupStore *mocks.MockDedupStore) *Service {
	opts := Options{
		AnnouncementChannel: "C-announce",
		SourceTimezone:      time.UTC,
		TargetTimezone:      time.UTC,
		ResponseBudget:      5 * time.Second,
	}
	log := logger.New("error", "json", "stdout")
	if dedupStore == nil {
		return NewService(slackAPI, calendarAPI, nil, opts, log)
	}
	return NewService(slackAPI, calendarAPI, dedupStore, opts, log)
}

func profileDirectory(t *testing.T) func(ctx context.Context, id string) (models.User, error) {
	t.Helper()
	return func(_ context.Context, id string) (models.User, error) {
		switch id {
		case "U1":
			return requesterFixture, nil
		case "U2":
			return reviewerFixture, nil
		default:
			return models.User{}, fmt.Errorf("unknown user %s", id)
		}
	}
}

func acceptWebhook(t *testing.T) dialogflow.Webhook {
	t.Helper()
	date, err := time.Parse(time.RFC3339, "2019-06-06T12:00:00Z")
	require.NoError(t, err)

	session := "projects/p/agent/sessions/s"
	return dialogflow.Webhook{
		Session: session,
		Action:  dialogflow.ActionAccept,
		User:    "U1",
		OutputContexts: []dialogflow.Context{{
			Name:          dialogflow.ContextName(session, dialogflow.ContextFollowup),
			LifespanCount: 2,
			Parameters:    dialogflow.Parameters{Reason: "holiday", Date: &date},
		}},
	}
}

func TestHandleDialogflowAnnouncesRequest(t *testing.T) {
	slackMock := &mocks.MockSlackAPI{FetchUserFunc: profileDirectory(t)}
	service := newTestService(slackMock, &mocks.MockCalendarAPI{}, nil)

	fulfillment, terminal := service.HandleDialogflow(context.Background(), acceptWebhook(t))

	require.Nil(t, terminal)
	assert.Equal(t, dialogflow.ThanksPrompt, fulfillment.Text)

	require.Len(t, slackMock.PostedMessages, 1)
	announcement := slackMock.PostedMessages[0]
	assert.Equal(t, "C-announce", announcement.Channel)
	assert.Contains(t, announcement.Text, "<@U1>")
	require.Len(t, announcement.Attachments, 1)
	assert.NotEmpty(t, announcement.Attachments[0].CallbackID, "announcement must carry the token")
}

func TestHandleDialogflowIncompleteDialogue(t *testing.T) {
	slackMock := &mocks.MockSlackAPI{FetchUserFunc: profileDirectory(t)}
	service := newTestService(slackMock, &mocks.MockCalendarAPI{}, nil)

	webhook := acceptWebhook(t)
	webhook.Action = dialogflow.ActionFull
	webhook.OutputContexts[0].Parameters.Date = nil

	fulfillment, terminal := service.HandleDialogflow(context.Background(), webhook)

	require.Nil(t, terminal)
	assert.Equal(t, dialogflow.MissingPeriodPrompt, fulfillment.Text)
	assert.Empty(t, slackMock.PostedMessages, "incomplete dialogue must not announce")
}

func TestHandleDialogflowMissingUser(t *testing.T) {
	service := newTestService(&mocks.MockSlackAPI{}, &mocks.MockCalendarAPI{}, nil)

	webhook := acceptWebhook(t)
	webhook.User = ""

	_, terminal := service.HandleDialogflow(context.Background(), webhook)

	require.NotNil(t, terminal)
	assert.Equal(t, http.StatusInternalServerError, terminal.Status)
}

func TestHandleDialogflowRequesterFetchFails(t *testing.T) {
	slackMock := &mocks.MockSlackAPI{
		FetchUserFunc: func(_ context.Context, _ string) (models.User, error) {
			return models.User{}, fmt.Errorf("slack down")
		},
	}
	service := newTestService(slackMock, &mocks.MockCalendarAPI{}, nil)

	_, terminal := service.HandleDialogflow(context.Background(), acceptWebhook(t))

	require.NotNil(t, terminal)
	assert.Equal(t, http.StatusInternalServerError, terminal.Status)
}
