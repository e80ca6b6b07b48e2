package dialogflow

import (
	"encoding/json"
	"fmt"
)

// Dialogflow intent actions handled by the webhook.
const (
	ActionFull     = "absenceday.absenceday-full"
	ActionFillDate = "absenceday.absenceday-fill-date"
	ActionAccept   = "absenceday.absenceday-yes"
)

// Webhook is the inbound Dialogflow fulfillment request, flattened from its
// deeply nested wire shape: the intent action and contexts live under
// queryResult, the Slack user id under
// originalDetectIntentRequest.payload.data.event.user.
type Webhook struct {
	Session        string
	Action         string
	User           string
	OutputContexts []Context
}

// UnmarshalJSON walks the nested payload. Malformed context entries are
// skipped; Dialogflow occasionally delivers contexts with parameter shapes the
// agent no longer uses.
func (w *Webhook) UnmarshalJSON(data []byte) error {
	var wire struct {
		Session     string `json:"session"`
		QueryResult struct {
			Action         string            `json:"action"`
			OutputContexts []json.RawMessage `json:"outputContexts"`
		} `json:"queryResult"`
		OriginalDetectIntentRequest struct {
			Payload struct {
				Data struct {
					Event struct {
						User string `json:"user"`
					} `json:"event"`
				} `json:"data"`
			} `json:"payload"`
		} `json:"originalDetectIntentRequest"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("failed to decode dialogflow webhook: %w", err)
	}

	w.Session = wire.Session
	w.Action = wire.QueryResult.Action
	w.User = wire.OriginalDetectIntentRequest.Payload.Data.Event.User
	w.OutputContexts = w.OutputContexts[:0]
	for _, raw := range wire.QueryResult.OutputContexts {
		var c Context
		if err := json.Unmarshal(raw, &c); err != nil {
			continue
		}
		w.OutputContexts = append(w.OutputContexts, c)
	}
	return nil
}

// FollowupContext finds the context carrying the collected absence parameters.
func (w Webhook) FollowupContext() *Context {
	return w.contextByID(ContextFollowup)
}

// FullContext finds the confirmation-stage context.
func (w Webhook) FullContext() *Context {
	return w.contextByID(ContextFull)
}

func (w Webhook) contextByID(id string) *Context {
	for i := range w.OutputContexts {
		if w.OutputContexts[i].Identifier() == id {
			return &w.OutputContexts[i]
		}
	}
	return nil
}

// NewFullContext builds the confirmation context for this session.
func (w Webhook) NewFullContext(lifespan int, params Parameters) Context {
	return Context{
		Name:          ContextName(w.Session, ContextFull),
		LifespanCount: lifespan,
		Parameters:    params,
	}
}

// NewFollowupContext builds the parameter-collection context for this session.
func (w Webhook) NewFollowupContext(lifespan int, params Parameters) Context {
	return Context{
		Name:          ContextName(w.Session, ContextFollowup),
		LifespanCount: lifespan,
		Parameters:    params,
	}
}
