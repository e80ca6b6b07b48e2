package dialogflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/absencebot/absence-bot/internal/models"
)

// Status is the interpreter outcome: either the dialogue still needs input, or
// a fully specified absence request is ready for review.
type Status struct {
	Absence     *models.Absence // nil while the dialogue is incomplete
	Fulfillment Fulfillment
}

// Complete reports whether an absence request is ready to announce.
func (s Status) Complete() bool {
	return s.Absence != nil
}

// Interpret advances the absence dialogue one webhook call. Missing data never
// fails; it yields a follow-up prompt so the conversation can continue.
func Interpret(w Webhook, requester models.User, channel string, source, target *time.Location) (Status, error) {
	followup := w.FollowupContext()
	if followup == nil {
		return Status{Fulfillment: Fulfillment{Text: "There is no reason value."}}, nil
	}
	params := followup.Parameters

	switch w.Action {
	case ActionFull, ActionFillDate:
		if _, err := models.ParseReason(params.Reason); err != nil {
			return Status{Fulfillment: Fulfillment{Text: "There is no reason value."}}, nil
		}

		interval, err := params.Interval(source, target)
		if errors.Is(err, ErrInsufficientData) {
			return Status{Fulfillment: Fulfillment{Text: MissingPeriodPrompt}}, nil
		}
		if err != nil {
			return Status{}, err
		}

		// Everything collected; ask the user to confirm and keep the
		// parameters alive in the confirmation context. The summary is
		// rendered in the requester's own Slack timezone, not the HQ one.
		return Status{Fulfillment: Fulfillment{
			Text:     ConfirmationPrompt(interval, requester.Location()),
			Contexts: []Context{w.NewFullContext(2, params)},
		}}, nil

	case ActionAccept:
		reason, err := models.ParseReason(params.Reason)
		if err != nil {
			return Status{Fulfillment: Fulfillment{Text: "There is no reason value."}}, nil
		}

		interval, err := params.Interval(source, target)
		if errors.Is(err, ErrInsufficientData) {
			return Status{Fulfillment: Fulfillment{Text: "There is no date defined."}}, nil
		}
		if err != nil {
			return Status{}, err
		}

		absence := models.PendingAbsence(requester, interval, reason, channel)

		// Clear both contexts so a finished dialogue cannot leak into the next.
		return Status{
			Absence: &absence,
			Fulfillment: Fulfillment{
				Text: ThanksPrompt,
				Contexts: []Context{
					w.NewFullContext(0, Parameters{}),
					w.NewFollowupContext(0, Parameters{}),
				},
			},
		}, nil

	default:
		return Status{}, fmt.Errorf("unsupported dialogflow action %q", w.Action)
	}
}
