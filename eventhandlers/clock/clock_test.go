package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(d, h, m int) time.Time {
	return time.Date(2024, time.January, d, h, m, 0, 0, time.UTC)
}

func equityCalendar(t *testing.T) *Calendar {
	t.Helper()
	cal, err := NewCalendar(time.UTC,
		9*time.Hour+30*time.Minute,
		16*time.Hour,
		[]time.Weekday{time.Saturday, time.Sunday},
		[]time.Time{date(15, 0, 0)})
	require.NoError(t, err)
	return cal
}

func TestNewCalendar(t *testing.T) {
	t.Parallel()
	_, err := NewCalendar(nil, -time.Hour, 0, nil, nil)
	assert.ErrorIs(t, err, errInvalidSession)

	_, err = NewCalendar(nil, 0, 25*time.Hour, nil, nil)
	assert.ErrorIs(t, err, errInvalidSession)

	_, err = NewCalendar(nil, 0, 0, []time.Weekday{0, 1, 2, 3, 4, 5, 6}, nil)
	assert.ErrorIs(t, err, errNoTradingDays)

	cal, err := NewCalendar(nil, 0, 0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, cal.Location)
	assert.True(t, cal.IsAllDay())
	assert.Equal(t, day, cal.SessionLength())
}

func TestCalendarSession(t *testing.T) {
	t.Parallel()
	cal := equityCalendar(t)
	assert.True(t, cal.InSession(date(12, 9, 30)))
	assert.True(t, cal.InSession(date(12, 15, 59)))
	assert.False(t, cal.InSession(date(12, 16, 0)), "close is exclusive")
	assert.False(t, cal.InSession(date(12, 9, 29)))
	assert.False(t, cal.InSession(date(13, 10, 0)), "saturday")
	assert.False(t, cal.InSession(date(15, 10, 0)), "holiday")
	assert.Equal(t, 6*time.Hour+30*time.Minute, cal.SessionLength())

	overnight, err := NewCalendar(time.UTC, 18*time.Hour, 2*time.Hour, nil, nil)
	require.NoError(t, err)
	assert.True(t, overnight.InSession(date(12, 23, 0)))
	assert.True(t, overnight.InSession(date(12, 1, 0)))
	assert.False(t, overnight.InSession(date(12, 12, 0)))
	assert.Equal(t, 8*time.Hour, overnight.SessionLength())
}

func TestNew(t *testing.T) {
	t.Parallel()
	cal := Continuous()
	_, err := New(date(1, 0, 0), date(2, 0, 0), time.Hour, nil)
	assert.ErrorIs(t, err, errNilCalendar)

	_, err = New(date(1, 0, 0), date(2, 0, 0), 0, cal)
	assert.ErrorIs(t, err, errInvalidInterval)

	_, err = New(date(2, 0, 0), date(1, 0, 0), time.Hour, cal)
	assert.ErrorIs(t, err, errInvalidDateRange)

	_, err = New(date(1, 0, 0), date(9, 0, 0), 36*time.Hour, cal)
	assert.ErrorIs(t, err, errMisalignedDailyTF)

	_, err = New(date(1, 0, 0), date(9, 0, 0), 8*time.Hour, equityCalendar(t))
	assert.ErrorIs(t, err, errIntervalTooLong)

	_, err = New(date(13, 0, 0), date(14, 23, 0), day, Weekdays())
	assert.ErrorIs(t, err, errNoTradingTime)
}

func TestAutoAdvanceOnConstruction(t *testing.T) {
	t.Parallel()
	c, err := New(date(13, 0, 0), date(20, 0, 0), day, Weekdays())
	require.NoError(t, err)
	assert.Equal(t, date(15, 0, 0), c.Now(), "saturday start moves to monday")
	assert.True(t, c.IsMarketOpen())

	c, err = New(date(12, 8, 0), date(12, 23, 0), time.Hour, equityCalendar(t))
	require.NoError(t, err)
	assert.Equal(t, date(12, 9, 30), c.Now(), "pre market start moves to the open")
}

func TestAdvanceSkipsClosedTime(t *testing.T) {
	t.Parallel()
	c, err := New(date(12, 9, 30), date(16, 23, 0), time.Hour, equityCalendar(t))
	require.NoError(t, err)

	var got []time.Time
	for ok := true; ok; ok = c.Advance() {
		assert.True(t, c.IsMarketOpen())
		got = append(got, c.Now())
	}
	expected := []time.Time{
		date(12, 9, 30), date(12, 10, 30), date(12, 11, 30), date(12, 12, 30),
		date(12, 13, 30), date(12, 14, 30), date(12, 15, 30),
		// weekend and the monday holiday are skipped
		date(16, 9, 30), date(16, 10, 30), date(16, 11, 30), date(16, 12, 30),
		date(16, 13, 30), date(16, 14, 30), date(16, 15, 30),
	}
	assert.Equal(t, expected, got)
	assert.True(t, c.Done())
	assert.False(t, c.IsMarketOpen())
	assert.False(t, c.Advance(), "advancing a finished clock is a no-op")
	assert.Equal(t, int64(len(expected)), c.Ticks())
}

func TestAdvanceDaily(t *testing.T) {
	t.Parallel()
	c, err := New(date(11, 0, 0), date(16, 0, 0), day, Weekdays())
	require.NoError(t, err)
	var got []time.Time
	for ok := true; ok; ok = c.Advance() {
		got = append(got, c.Now())
	}
	assert.Equal(t, []time.Time{date(11, 0, 0), date(12, 0, 0), date(15, 0, 0), date(16, 0, 0)}, got)
}

func TestDeterministicStepping(t *testing.T) {
	t.Parallel()
	run := func(c *Clock) []time.Time {
		var resp []time.Time
		for ok := true; ok; ok = c.Advance() {
			resp = append(resp, c.Now())
		}
		return resp
	}
	a, err := New(date(10, 0, 0), date(20, 0, 0), 15*time.Minute, equityCalendar(t))
	require.NoError(t, err)
	b, err := New(date(10, 0, 0), date(20, 0, 0), 15*time.Minute, equityCalendar(t))
	require.NoError(t, err)
	first := run(a)
	assert.Equal(t, first, run(b))
	assert.Equal(t, a.Ticks(), b.Ticks())
}
