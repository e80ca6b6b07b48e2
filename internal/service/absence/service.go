// Package absence implements the request lifecycle: interpreting Dialogflow
// webhooks into pending requests and carrying reviewer decisions through to
// calendar events and notifications.
package absence

import (
	"context"
	"net/http"
	"time"

	"github.com/absencebot/absence-bot/internal/calendar"
	"github.com/absencebot/absence-bot/internal/dedup"
	"github.com/absencebot/absence-bot/internal/dialogflow"
	"github.com/absencebot/absence-bot/internal/metrics"
	"github.com/absencebot/absence-bot/internal/models"
	"github.com/absencebot/absence-bot/internal/pipeline"
	"github.com/absencebot/absence-bot/internal/slack"
	"github.com/absencebot/absence-bot/pkg/logger"
)

// Service coordinates the two request paths. It holds no mutable state; all
// cross-call state travels inside the absence token.
type Service struct {
	slack               slack.API
	calendar            calendar.API
	dedup               dedup.Store // nil disables retry deduplication
	announcementChannel string
	source              *time.Location
	target              *time.Location
	budget              time.Duration
	log                 *logger.Logger
}

// Options carries the service configuration.
type Options struct {
	AnnouncementChannel string
	SourceTimezone      *time.Location // zone of NLU timestamps
	TargetTimezone      *time.Location // zone absences are normalized into
	ResponseBudget      time.Duration
}

// NewService creates the approval service.
func NewService(slackAPI slack.API, calendarAPI calendar.API, dedupStore dedup.Store, opts Options, log *logger.Logger) *Service {
	return &Service{
		slack:               slackAPI,
		calendar:            calendarAPI,
		dedup:               dedupStore,
		announcementChannel: opts.AnnouncementChannel,
		source:              opts.SourceTimezone,
		target:              opts.TargetTimezone,
		budget:              opts.ResponseBudget,
		log:                 log,
	}
}

const timedOutText = "Sorry, handling your request timed out. Please try again."

// HandleDialogflow advances the NLU dialogue one webhook call. Incomplete data
// yields a follow-up prompt; a fully specified request is announced for review
// in the announcement channel before the thanks reply goes back.
func (s *Service) HandleDialogflow(ctx context.Context, webhook dialogflow.Webhook) (dialogflow.Fulfillment, *pipeline.Terminal) {
	run := pipeline.Then(s.fetchRequester(), s.interpretAndAnnounce())
	return pipeline.RunWithTimeout(ctx, s.budget, run, webhook,
		map[string]string{"error": "Response Time-out"})
}

type webhookWithUser struct {
	webhook   dialogflow.Webhook
	requester models.User
}

func (s *Service) fetchRequester() pipeline.Stage[dialogflow.Webhook, webhookWithUser] {
	return func(ctx context.Context, webhook dialogflow.Webhook) (webhookWithUser, *pipeline.Terminal) {
		if webhook.User == "" {
			return pipeline.Halt[webhookWithUser](http.StatusInternalServerError,
				map[string]string{"error": "Missing slack user."})
		}

		user, err := s.slack.FetchUser(ctx, webhook.User)
		if err != nil {
			metrics.CollaboratorErrorsTotal.WithLabelValues("slack").Inc()
			s.log.Error().Err(err).Str("user", webhook.User).Msg("Failed to fetch requester profile")
			return pipeline.Halt[webhookWithUser](http.StatusInternalServerError,
				map[string]string{"error": err.Error()})
		}
		return webhookWithUser{webhook: webhook, requester: user}, nil
	}
}

func (s *Service) interpretAndAnnounce() pipeline.Stage[webhookWithUser, dialogflow.Fulfillment] {
	return func(ctx context.Context, in webhookWithUser) (dialogflow.Fulfillment, *pipeline.Terminal) {
		status, err := dialogflow.Interpret(in.webhook, in.requester, in.requester.ID, s.source, s.target)
		if err != nil {
			s.log.Error().Err(err).Str("action", in.webhook.Action).Msg("Failed to interpret webhook")
			return pipeline.Halt[dialogflow.Fulfillment](http.StatusInternalServerError,
				map[string]string{"error": err.Error()})
		}

		if !status.Complete() {
			return status.Fulfillment, nil
		}

		token, err := models.EncodeToken(*status.Absence)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to encode absence token")
			return pipeline.Halt[dialogflow.Fulfillment](http.StatusInternalServerError,
				map[string]string{"error": err.Error()})
		}

		announcement := slack.AnnouncementMessage(*status.Absence, token, s.announcementChannel, s.target)
		if err := s.slack.PostMessage(ctx, announcement); err != nil {
			metrics.CollaboratorErrorsTotal.WithLabelValues("slack").Inc()
			s.log.Error().Err(err).Msg("Failed to post announcement")
			return pipeline.Halt[dialogflow.Fulfillment](http.StatusInternalServerError,
				map[string]string{"error": err.Error()})
		}

		metrics.AbsenceRequestsTotal.WithLabelValues(string(status.Absence.Reason)).Inc()
		s.log.Info().
			Str("requester", status.Absence.RequesterID()).
			Str("reason", string(status.Absence.Reason)).
			Msg("Announced absence request for review")

		return status.Fulfillment, nil
	}
}
