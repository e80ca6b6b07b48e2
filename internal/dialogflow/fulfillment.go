package dialogflow

import (
	"fmt"
	"time"

	"github.com/absencebot/absence-bot/internal/models"
)

// Fulfillment is the webhook response body Dialogflow renders back to the user.
type Fulfillment struct {
	Text     string    `json:"fulfillmentText,omitempty"`
	Contexts []Context `json:"outputContexts,omitempty"`
}

// MissingPeriodPrompt asks the user for the absence period.
const MissingPeriodPrompt = "To fulfill requirements I need information about your absence period. " +
	"Please write absence day or period, e.g. today, on Monday, from tomorrow 7 AM till 4.11.2018 4 PM"

// ThanksPrompt closes the dialogue once the request is announced for review.
const ThanksPrompt = "Thank you! I'll inform your project manager about your request!"

// ConfirmationPrompt summarizes the resolved interval and asks for a yes/no.
func ConfirmationPrompt(interval models.Interval, loc *time.Location) string {
	return fmt.Sprintf(
		"Ok, let's summarize! You're planning vacations and requesting for absence %s, correct?",
		interval.DateRange(loc, false),
	)
}
