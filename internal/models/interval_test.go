package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var plusTwo = time.FixedZone("UTC+2", 2*3600)

func TestRezoneKeepsWallClock(t *testing.T) {
	instant := time.Date(2019, time.June, 6, 8, 0, 0, 0, time.UTC)

	rezoned := Rezone(instant, plusTwo)

	assert.Equal(t, 8, rezoned.Hour())
	assert.Equal(t, time.Date(2019, time.June, 6, 6, 0, 0, 0, time.UTC), rezoned.UTC())
}

func TestNewIntervalSortsEndpoints(t *testing.T) {
	earlier := time.Date(2019, time.June, 6, 8, 0, 0, 0, time.UTC)
	later := time.Date(2019, time.June, 6, 16, 0, 0, 0, time.UTC)

	interval := NewInterval(later, earlier, time.UTC)

	assert.True(t, interval.Start.Before(interval.End))
	assert.Equal(t, earlier, interval.Start)
	assert.Equal(t, later, interval.End)
}

func TestIsAllDay(t *testing.T) {
	t.Run("matching wall clocks", func(t *testing.T) {
		interval := NewInterval(
			time.Date(2019, time.June, 6, 0, 0, 0, 0, time.UTC),
			time.Date(2019, time.June, 8, 0, 0, 0, 0, time.UTC),
			plusTwo,
		)
		assert.True(t, interval.IsAllDay())
	})

	t.Run("differing wall clocks", func(t *testing.T) {
		interval := NewInterval(
			time.Date(2019, time.June, 6, 8, 0, 0, 0, time.UTC),
			time.Date(2019, time.June, 6, 16, 0, 0, 0, time.UTC),
			plusTwo,
		)
		assert.False(t, interval.IsAllDay())
	})
}

func TestDatesRendering(t *testing.T) {
	t.Run("single all-day absence collapses to one date", func(t *testing.T) {
		day := time.Date(2019, time.June, 6, 0, 0, 0, 0, time.UTC)
		interval := NewInterval(day, day, plusTwo)

		assert.Equal(t, []string{"June 6, 2019"}, interval.Dates(plusTwo))
	})

	t.Run("multi-day all-day absence keeps both dates", func(t *testing.T) {
		interval := NewInterval(
			time.Date(2019, time.June, 6, 0, 0, 0, 0, time.UTC),
			time.Date(2019, time.June, 8, 0, 0, 0, 0, time.UTC),
			plusTwo,
		)

		assert.Equal(t, []string{"June 6, 2019", "June 8, 2019"}, interval.Dates(plusTwo))
	})

	t.Run("timed absence renders clock times", func(t *testing.T) {
		interval := NewInterval(
			time.Date(2019, time.June, 6, 8, 0, 0, 0, time.UTC),
			time.Date(2019, time.June, 6, 16, 0, 0, 0, time.UTC),
			plusTwo,
		)

		assert.Equal(t,
			[]string{"June 6, 2019 at 8:00 AM", "June 6, 2019 at 4:00 PM"},
			interval.Dates(plusTwo))
	})
}

func TestDateRange(t *testing.T) {
	interval := NewInterval(
		time.Date(2019, time.June, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2019, time.June, 8, 0, 0, 0, 0, time.UTC),
		plusTwo,
	)

	assert.Equal(t, "June 6, 2019 - June 8, 2019", interval.DateRange(plusTwo, false))
	assert.Equal(t, "*June 6, 2019* - *June 8, 2019*", interval.DateRange(plusTwo, true))
}

func TestMonthInterval(t *testing.T) {
	interval := MonthInterval(2019, time.June)

	require.Equal(t, time.Date(2019, time.June, 1, 0, 0, 0, 0, time.UTC), interval.Start)
	require.Equal(t, time.Date(2019, time.June, 30, 23, 59, 59, 0, time.UTC), interval.End)

	december := MonthInterval(2019, time.December)
	assert.Equal(t, time.Date(2019, time.December, 31, 23, 59, 59, 0, time.UTC), december.End)
}
