// Package dialogflow decodes NLU webhook payloads and interprets them into
// absence requests.
package dialogflow

import (
	"encoding/json"
	"net/url"
	"path"
	"time"
)

// Context identifier suffixes used by the absence intent.
const (
	ContextFollowup = "absenceday-followup"
	ContextFull     = "absenceday-full"
)

// Context is a Dialogflow conversation context echoed between webhook calls.
type Context struct {
	Name          string     `json:"name"`
	LifespanCount int        `json:"lifespanCount"`
	Parameters    Parameters `json:"parameters"`
}

// ContextName builds the URL-style context name for a session.
func ContextName(session, identifier string) string {
	return session + "/contexts/" + identifier
}

// Identifier extracts the trailing context identifier from a URL-style name.
func (c Context) Identifier() string {
	u, err := url.Parse(c.Name)
	if err != nil {
		return ""
	}
	return path.Base(u.Path)
}

// TimePeriod is the @sys.time-period entity: clock-time bounds layered on a date.
type TimePeriod struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// DatePeriod is the @sys.date-period entity: a date-only start/end pair.
type DatePeriod struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Parameters carries the extracted absence fields. Dialogflow populates at most
// one of seven mutually exclusive date/time shapes, and does not tag which one;
// resolution order lives in Interval. Every field is optional and decoded
// best-effort since the payload shape varies between agent versions.
type Parameters struct {
	Reason        string
	Date          *time.Time
	TimeStart     *time.Time
	TimeEnd       *time.Time
	TimePeriod    *TimePeriod
	DateTimeStart *time.Time
	DateTimeEnd   *time.Time
	DatePeriod    *DatePeriod
	DateStart     *time.Time
	DateEnd       *time.Time
}

type rawParameters map[string]json.RawMessage

func (r rawParameters) str(key string) string {
	var s string
	if raw, ok := r[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

func (r rawParameters) timestamp(key string) *time.Time {
	raw, ok := r[key]
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

// dateTimeValue also accepts the alternate nested form some agent versions
// emit: {"date_time": "..."} instead of a bare timestamp string.
func (r rawParameters) dateTimeValue(key string) *time.Time {
	if t := r.timestamp(key); t != nil {
		return t
	}
	raw, ok := r[key]
	if !ok {
		return nil
	}
	var nested struct {
		DateTime string `json:"date_time"`
	}
	if err := json.Unmarshal(raw, &nested); err != nil || nested.DateTime == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, nested.DateTime)
	if err != nil {
		return nil
	}
	return &t
}

// UnmarshalJSON decodes each field independently; a malformed field is dropped
// rather than failing the whole payload.
func (p *Parameters) UnmarshalJSON(data []byte) error {
	var raw rawParameters
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Reason = raw.str("reason")
	p.Date = raw.timestamp("date")
	p.TimeStart = raw.timestamp("time-start")
	p.TimeEnd = raw.timestamp("time-end")
	p.DateStart = raw.timestamp("date-start")
	p.DateEnd = raw.timestamp("date-end")
	p.DateTimeStart = raw.dateTimeValue("date-time-start")
	p.DateTimeEnd = raw.dateTimeValue("date-time-end")

	if rawPeriod, ok := raw["time-period"]; ok {
		var period TimePeriod
		if err := json.Unmarshal(rawPeriod, &period); err == nil && !period.StartTime.IsZero() {
			p.TimePeriod = &period
		}
	}
	if rawPeriod, ok := raw["date-period"]; ok {
		var period DatePeriod
		if err := json.Unmarshal(rawPeriod, &period); err == nil && !period.StartDate.IsZero() {
			p.DatePeriod = &period
		}
	}
	return nil
}

// MarshalJSON writes the wire shape back out, used when echoing contexts in
// fulfillment responses.
func (p Parameters) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if p.Reason != "" {
		out["reason"] = p.Reason
	}
	put := func(key string, t *time.Time) {
		if t != nil {
			out[key] = t.Format(time.RFC3339)
		}
	}
	put("date", p.Date)
	put("time-start", p.TimeStart)
	put("time-end", p.TimeEnd)
	put("date-start", p.DateStart)
	put("date-end", p.DateEnd)
	put("date-time-start", p.DateTimeStart)
	put("date-time-end", p.DateTimeEnd)
	if p.TimePeriod != nil {
		out["time-period"] = map[string]string{
			"startTime": p.TimePeriod.StartTime.Format(time.RFC3339),
			"endTime":   p.TimePeriod.EndTime.Format(time.RFC3339),
		}
	}
	if p.DatePeriod != nil {
		out["date-period"] = map[string]string{
			"startDate": p.DatePeriod.StartDate.Format(time.RFC3339),
			"endDate":   p.DatePeriod.EndDate.Format(time.RFC3339),
		}
	}
	return json.Marshal(out)
}
