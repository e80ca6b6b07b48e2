package dialogflow

import (
	"errors"
	"time"

	"github.com/absencebot/absence-bot/internal/models"
)

// ErrInsufficientData signals that none of the seven parameter shapes is
// populated. Callers turn this into a conversational follow-up prompt, never
// into an HTTP error.
var ErrInsufficientData = errors.New("absence period cannot be resolved from webhook parameters")

// Interval reconciles the seven mutually exclusive parameter shapes into one
// canonical interval. The shapes can overlap, so the first match in this fixed
// order wins:
//
//  1. date + time-start/time-end
//  2. date + time-period
//  3. date alone (all-day)
//  4. date-time-start + date-time-end
//  5. date-period
//  6. date-start + date-end
//  7. mixed date-time/date pairs
//
// Timestamps are read as wall clock in source, combined in a neutral
// zero-offset calendar so daylight-saving shifts cannot skew the combination,
// and finally re-tagged into target.
func (p Parameters) Interval(source, target *time.Location) (models.Interval, error) {
	if p.Date != nil {
		if p.TimeStart != nil && p.TimeEnd != nil {
			return models.NewInterval(
				combine(*p.Date, *p.TimeStart, source),
				combine(*p.Date, *p.TimeEnd, source),
				target,
			), nil
		}
		if p.TimePeriod != nil {
			return models.NewInterval(
				combine(*p.Date, p.TimePeriod.StartTime, source),
				combine(*p.Date, p.TimePeriod.EndTime, source),
				target,
			), nil
		}
		// No time information at all: a whole-day absence.
		day := neutralWall(*p.Date, source)
		return models.NewInterval(day, day, target), nil
	}

	if p.DateTimeStart != nil && p.DateTimeEnd != nil {
		return models.NewInterval(
			neutralWall(*p.DateTimeStart, source),
			neutralWall(*p.DateTimeEnd, source),
			target,
		), nil
	}

	if p.DatePeriod != nil {
		return models.NewInterval(
			startOfDay(p.DatePeriod.StartDate, source),
			startOfDay(p.DatePeriod.EndDate, source),
			target,
		), nil
	}

	if p.DateStart != nil && p.DateEnd != nil {
		return models.NewInterval(
			startOfDay(*p.DateStart, source),
			startOfDay(*p.DateEnd, source),
			target,
		), nil
	}

	if p.DateTimeStart != nil && p.DateEnd != nil {
		// TODO: snap the date-only end to the 17:00 business-hour boundary
		// once product intent is clarified.
		return models.NewInterval(
			neutralWall(*p.DateTimeStart, source),
			neutralWall(*p.DateEnd, source),
			target,
		), nil
	}

	if p.DateStart != nil && p.DateTimeEnd != nil {
		// TODO: snap the date-only start to the 8:00 business-hour boundary
		// once product intent is clarified.
		return models.NewInterval(
			neutralWall(*p.DateStart, source),
			neutralWall(*p.DateTimeEnd, source),
			target,
		), nil
	}

	return models.Interval{}, ErrInsufficientData
}

// neutralWall lifts t's wall clock as read in source into the zero-offset
// calendar.
func neutralWall(t time.Time, source *time.Location) time.Time {
	local := t.In(source)
	year, month, day := local.Date()
	hour, minute, sec := local.Clock()
	return time.Date(year, month, day, hour, minute, sec, 0, time.UTC)
}

// combine merges date's calendar day with clock's time of day, both read as
// wall clock in source, inside the zero-offset calendar.
func combine(date, clock time.Time, source *time.Location) time.Time {
	year, month, day := date.In(source).Date()
	hour, minute, sec := clock.In(source).Clock()
	return time.Date(year, month, day, hour, minute, sec, 0, time.UTC)
}

func startOfDay(t time.Time, source *time.Location) time.Time {
	year, month, day := t.In(source).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
