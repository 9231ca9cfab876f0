package clock

import (
	"fmt"
	"time"
)

// NewCalendar validates and returns a calendar. A nil location is UTC.
func NewCalendar(loc *time.Location, open, closing time.Duration, weekend []time.Weekday, holidays []time.Time) (*Calendar, error) {
	if loc == nil {
		loc = time.UTC
	}
	if open < 0 || open >= day || closing < 0 || closing >= day {
		return nil, fmt.Errorf("%w: open %v close %v", errInvalidSession, open, closing)
	}
	c := &Calendar{
		Location: loc,
		Open:     open,
		Close:    closing,
		weekend:  make(map[time.Weekday]bool, len(weekend)),
		holidays: make(map[string]bool, len(holidays)),
	}
	for i := range weekend {
		c.weekend[weekend[i]] = true
	}
	if len(c.weekend) >= 7 {
		return nil, errNoTradingDays
	}
	for i := range holidays {
		c.holidays[holidays[i].In(loc).Format(dateFormat)] = true
	}
	return c, nil
}

// Continuous returns a calendar that trades every day around the clock in UTC
func Continuous() *Calendar {
	c, _ := NewCalendar(time.UTC, 0, 0, nil, nil)
	return c
}

// Weekdays returns a UTC calendar that trades all day Monday to Friday
func Weekdays() *Calendar {
	c, _ := NewCalendar(time.UTC, 0, 0, []time.Weekday{time.Saturday, time.Sunday}, nil)
	return c
}

// IsAllDay reports whether the session spans the full day
func (c *Calendar) IsAllDay() bool {
	return c.Open == c.Close
}

// SessionLength returns the duration of a regular session
func (c *Calendar) SessionLength() time.Duration {
	if c.IsAllDay() {
		return day
	}
	if c.Close > c.Open {
		return c.Close - c.Open
	}
	return day - c.Open + c.Close
}

// IsTradingDay reports whether the local date of t is neither a weekend nor a
// holiday
func (c *Calendar) IsTradingDay(t time.Time) bool {
	local := t.In(c.Location)
	if c.weekend[local.Weekday()] {
		return false
	}
	return !c.holidays[local.Format(dateFormat)]
}

// InSession reports whether t falls inside the regular session of a trading
// day. Bars are stamped with their open time, so the close is exclusive.
func (c *Calendar) InSession(t time.Time) bool {
	if !c.IsTradingDay(t) {
		return false
	}
	if c.IsAllDay() {
		return true
	}
	tod := timeOfDay(t.In(c.Location))
	if c.Open < c.Close {
		return tod >= c.Open && tod < c.Close
	}
	return tod >= c.Open || tod < c.Close
}

// sessionOpen returns the session open on the local date of t
func (c *Calendar) sessionOpen(t time.Time) time.Time {
	local := t.In(c.Location)
	h := int(c.Open / time.Hour)
	m := int((c.Open % time.Hour) / time.Minute)
	s := int((c.Open % time.Minute) / time.Second)
	return time.Date(local.Year(), local.Month(), local.Day(), h, m, s, 0, c.Location)
}

// nextSessionOpen returns the first session open strictly after t
func (c *Calendar) nextSessionOpen(t time.Time) time.Time {
	open := c.sessionOpen(t)
	if open.After(t) {
		return open
	}
	local := t.In(c.Location)
	return c.sessionOpen(time.Date(local.Year(), local.Month(), local.Day()+1, 12, 0, 0, 0, c.Location))
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
