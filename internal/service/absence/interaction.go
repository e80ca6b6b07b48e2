package absence

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/absencebot/absence-bot/internal/calendar"
	"github.com/absencebot/absence-bot/internal/metrics"
	"github.com/absencebot/absence-bot/internal/models"
	"github.com/absencebot/absence-bot/internal/pipeline"
	"github.com/absencebot/absence-bot/internal/slack"
)

// Decision texts surfaced to the reviewer on failure; Slack renders them in
// place of the interaction.
const (
	decodeFailedText    = "Sorry, can't decode absence payload data. Please try again."
	alreadyDecidedText  = "This absence request was already decided."
	alreadyHandledText  = "This click was already handled."
	requesterFetchText  = "Sorry, can't fetch requester slack user. Please try again."
	reviewerFetchText   = "Sorry, can't fetch reviewer slack user. Please try again."
	tokenFetchText      = "Sorry, can't fetch google auth token. Please try again."
)

// HandleInteraction carries one reviewer decision through the approval state
// machine. The stage order is structural: dedup, decode, decide, then either
// the rejection or the acceptance flow.
func (s *Service) HandleInteraction(ctx context.Context, action slack.InteractiveMessageAction) (slack.Fallback, *pipeline.Terminal) {
	run := pipeline.Then(
		pipeline.Then(s.dedupDelivery(), s.decodeDecision()),
		s.applyDecision(),
	)
	fallback, terminal := pipeline.RunWithTimeout(ctx, s.budget, run, action,
		slack.NewErrorResponse(timedOutText))

	outcome := "ok"
	if terminal != nil {
		outcome = "error"
		// A failed flow tells the reviewer to try again; the delivery marker
		// set by the dedup stage must not swallow that retry as a duplicate.
		// The duplicate acknowledgement itself is a 200 and keeps its marker.
		if terminal.Status != http.StatusOK {
			s.releaseDelivery(ctx, action)
		}
	}
	metrics.SlackActionsTotal.WithLabelValues(string(action.Value()), outcome).Inc()
	return fallback, terminal
}

func (s *Service) releaseDelivery(ctx context.Context, action slack.InteractiveMessageAction) {
	if s.dedup == nil {
		return
	}
	// The request context may already be done when the flow timed out.
	if err := s.dedup.Release(context.WithoutCancel(ctx), action.DeliveryKey()); err != nil {
		s.log.Warn().Err(err).Msg("Failed to release delivery marker")
	}
}

func (s *Service) dedupDelivery() pipeline.Stage[slack.InteractiveMessageAction, slack.InteractiveMessageAction] {
	return func(ctx context.Context, action slack.InteractiveMessageAction) (slack.InteractiveMessageAction, *pipeline.Terminal) {
		if s.dedup == nil {
			return action, nil
		}

		first, err := s.dedup.FirstDelivery(ctx, action.DeliveryKey())
		if err != nil {
			// Dedup is best-effort; a store outage must not block approvals.
			s.log.Warn().Err(err).Msg("Dedup store unavailable, continuing without it")
			return action, nil
		}
		if !first {
			return pipeline.Halt[slack.InteractiveMessageAction](http.StatusOK,
				slack.NewErrorResponse(alreadyHandledText))
		}
		return action, nil
	}
}

// decision is the in-flight value after the token is decoded and the state
// transition applied.
type decision struct {
	action  slack.InteractiveMessageAction
	absence models.Absence
}

func (s *Service) decodeDecision() pipeline.Stage[slack.InteractiveMessageAction, decision] {
	return func(_ context.Context, action slack.InteractiveMessageAction) (decision, *pipeline.Terminal) {
		absence, err := action.Absence()
		if err != nil {
			s.log.Warn().Err(err).Msg("Malformed absence token in interactive action")
			return pipeline.Halt[decision](http.StatusUnprocessableEntity,
				slack.NewErrorResponse(decodeFailedText))
		}

		decided, err := absence.Decide(action.Value().Approved(), action.User.ID)
		if err != nil {
			return pipeline.Halt[decision](http.StatusUnprocessableEntity,
				slack.NewErrorResponse(alreadyDecidedText))
		}
		return decision{action: action, absence: decided}, nil
	}
}

func (s *Service) applyDecision() pipeline.Stage[decision, slack.Fallback] {
	return func(ctx context.Context, d decision) (slack.Fallback, *pipeline.Terminal) {
		if d.absence.IsRejected() {
			return s.rejectFlow()(ctx, d)
		}
		acceptance := pipeline.Then(
			pipeline.Then(s.fetchAcceptanceComponents(), s.createCalendarEvent()),
			s.notifyAcceptance(),
		)
		return acceptance(ctx, d)
	}
}

func (s *Service) rejectFlow() pipeline.Stage[decision, slack.Fallback] {
	return func(ctx context.Context, d decision) (slack.Fallback, *pipeline.Terminal) {
		if err := s.slack.PostMessage(ctx, slack.RejectionMessage(d.absence)); err != nil {
			metrics.CollaboratorErrorsTotal.WithLabelValues("slack").Inc()
			s.log.Error().Err(err).Msg("Failed to post rejection notice")
			return pipeline.Halt[slack.Fallback](http.StatusInternalServerError,
				slack.NewErrorResponse(err.Error()))
		}

		s.log.Info().
			Str("requester", d.absence.RequesterID()).
			Str("reviewer", d.absence.ReviewerID()).
			Msg("Absence request rejected")
		return slack.RejectionFallback(d.action.OriginalMessage.Text, d.absence), nil
	}
}

// accepted carries the acceptance flow state between stages.
type accepted struct {
	action  slack.InteractiveMessageAction
	absence models.Absence
	token   calendar.AccessToken
}

// flowError pairs an internal error with the text shown to the reviewer.
type flowError struct {
	text string
	err  error
}

func (e *flowError) Error() string { return e.err.Error() }

// fetchAcceptanceComponents resolves both user profiles and the calendar auth
// token concurrently. The reviewer is waiting synchronously on the button
// click, so the three independent fetches must not run back to back.
func (s *Service) fetchAcceptanceComponents() pipeline.Stage[decision, accepted] {
	return func(ctx context.Context, d decision) (accepted, *pipeline.Terminal) {
		var (
			requester models.User
			reviewer  models.User
			token     calendar.AccessToken
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			user, err := s.slack.FetchUser(gctx, d.absence.RequesterID())
			if err != nil {
				metrics.CollaboratorErrorsTotal.WithLabelValues("slack").Inc()
				return &flowError{text: requesterFetchText, err: err}
			}
			requester = user
			return nil
		})
		g.Go(func() error {
			user, err := s.slack.FetchUser(gctx, d.absence.ReviewerID())
			if err != nil {
				metrics.CollaboratorErrorsTotal.WithLabelValues("slack").Inc()
				return &flowError{text: reviewerFetchText, err: err}
			}
			reviewer = user
			return nil
		})
		g.Go(func() error {
			t, err := s.calendar.FetchAuthToken(gctx)
			if err != nil {
				metrics.CollaboratorErrorsTotal.WithLabelValues("calendar").Inc()
				return &flowError{text: tokenFetchText, err: err}
			}
			token = t
			return nil
		})

		if err := g.Wait(); err != nil {
			s.log.Error().Err(err).Msg("Failed to fetch acceptance components")
			text := err.Error()
			var fe *flowError
			if errors.As(err, &fe) {
				text = fe.text
			}
			return pipeline.Halt[accepted](http.StatusInternalServerError, slack.NewErrorResponse(text))
		}

		absence := d.absence
		absence.Requester = models.RefByUser(requester)
		reviewerRef := models.RefByUser(reviewer)
		absence.Reviewer = &reviewerRef

		return accepted{action: d.action, absence: absence, token: token}, nil
	}
}

func (s *Service) createCalendarEvent() pipeline.Stage[accepted, accepted] {
	return func(ctx context.Context, in accepted) (accepted, *pipeline.Terminal) {
		includeReviewer := in.action.Value() != slack.ActionSilentAccept
		event, err := calendar.EventFromAbsence(in.absence, includeReviewer)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to build calendar event")
			return pipeline.Halt[accepted](http.StatusInternalServerError,
				slack.NewErrorResponse(err.Error()))
		}

		created, err := s.calendar.CreateEvent(ctx, in.token, event)
		if err != nil {
			metrics.CollaboratorErrorsTotal.WithLabelValues("calendar").Inc()
			s.log.Error().Err(err).Msg("Failed to create calendar event")
			return pipeline.Halt[accepted](http.StatusInternalServerError,
				slack.NewErrorResponse(err.Error()))
		}

		in.absence.Event = created.Handle()
		return in, nil
	}
}

func (s *Service) notifyAcceptance() pipeline.Stage[accepted, slack.Fallback] {
	return func(ctx context.Context, in accepted) (slack.Fallback, *pipeline.Terminal) {
		if err := s.slack.PostMessage(ctx, slack.AcceptanceMessage(in.absence)); err != nil {
			metrics.CollaboratorErrorsTotal.WithLabelValues("slack").Inc()
			s.log.Error().Err(err).Msg("Failed to post acceptance notice")
			return pipeline.Halt[slack.Fallback](http.StatusInternalServerError,
				slack.NewErrorResponse(err.Error()))
		}

		s.log.Info().
			Str("requester", in.absence.RequesterID()).
			Str("reviewer", in.absence.ReviewerID()).
			Str("event", in.absence.Event.ID).
			Msg("Absence request approved")
		return slack.AcceptanceFallback(in.action.OriginalMessage.Text, in.absence), nil
	}
}
