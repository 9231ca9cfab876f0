package clock

import (
	"fmt"
	"time"
)

// New returns a clock positioned on the first tradable time at or after start
func New(start, end time.Time, interval time.Duration, cal *Calendar) (*Clock, error) {
	if cal == nil {
		return nil, errNilCalendar
	}
	if interval <= 0 {
		return nil, errInvalidInterval
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: start %v end %v", errInvalidDateRange, start, end)
	}
	if interval >= day && interval%day != 0 {
		return nil, fmt.Errorf("%w: %v", errMisalignedDailyTF, interval)
	}
	if interval < day && !cal.IsAllDay() && interval > cal.SessionLength() {
		return nil, fmt.Errorf("%w: %v > %v", errIntervalTooLong, interval, cal.SessionLength())
	}
	c := &Clock{
		end:      end,
		interval: interval,
		calendar: cal,
	}
	c.now = c.nextValid(start)
	if c.Done() {
		return nil, fmt.Errorf("%w: %v to %v", errNoTradingTime, start, end)
	}
	return c, nil
}

// Now returns the current virtual time
func (c *Clock) Now() time.Time {
	return c.now
}

// Interval returns the bar interval
func (c *Clock) Interval() time.Duration {
	return c.interval
}

// End returns the configured end
func (c *Clock) End() time.Time {
	return c.end
}

// Ticks returns how many times the clock has advanced
func (c *Clock) Ticks() int64 {
	return c.ticks
}

// Done reports whether the clock has moved past the configured end
func (c *Clock) Done() bool {
	return c.now.After(c.end)
}

// Advance moves to the next tradable bar time. It returns false once the
// configured range is exhausted.
func (c *Clock) Advance() bool {
	if c.Done() {
		return false
	}
	c.ticks++
	c.now = c.nextValid(c.step(c.now))
	return !c.Done()
}

// IsMarketOpen reports whether the current time is within the regular session
func (c *Clock) IsMarketOpen() bool {
	if c.Done() {
		return false
	}
	if c.interval >= day {
		return c.calendar.IsTradingDay(c.now)
	}
	return c.calendar.InSession(c.now)
}

func (c *Clock) step(t time.Time) time.Time {
	if c.interval >= day {
		return t.AddDate(0, 0, int(c.interval/day))
	}
	return t.Add(c.interval)
}

// isTradable applies the session rules appropriate to the interval. Daily and
// longer bars only need a trading day.
func (c *Clock) isTradable(t time.Time) bool {
	if c.interval >= day || c.calendar.IsAllDay() {
		return c.calendar.IsTradingDay(t)
	}
	return c.calendar.InSession(t)
}

func (c *Clock) nextValid(t time.Time) time.Time {
	for !t.After(c.end) {
		if c.isTradable(t) {
			return t
		}
		switch {
		case c.interval >= day:
			t = t.AddDate(0, 0, 1)
		case c.calendar.IsAllDay():
			local := t.In(c.calendar.Location)
			t = time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, c.calendar.Location)
		default:
			t = c.calendar.nextSessionOpen(t)
		}
	}
	return t
}
