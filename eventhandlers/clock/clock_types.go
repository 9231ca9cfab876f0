package clock

import (
	"errors"
	"time"
)

const (
	day        = 24 * time.Hour
	dateFormat = "2006-01-02"
)

var (
	errNilCalendar       = errors.New("calendar is nil")
	errInvalidInterval   = errors.New("interval must be greater than zero")
	errInvalidDateRange  = errors.New("end date must be after start date")
	errNoTradingDays     = errors.New("calendar has no trading days")
	errInvalidSession    = errors.New("session times must be within a day")
	errNoTradingTime     = errors.New("no trading time between start and end")
	errIntervalTooLong   = errors.New("intraday interval exceeds session length")
	errMisalignedDailyTF = errors.New("daily intervals must be a whole number of days")
)

// Calendar describes when an exchange trades. Times of day are offsets from
// local midnight in Location. An Open equal to Close is a 24 hour session.
type Calendar struct {
	Location *time.Location
	Open     time.Duration
	Close    time.Duration
	weekend  map[time.Weekday]bool
	holidays map[string]bool
}

// Clock is a deterministic virtual clock which steps from bar time to bar time
// while skipping time the calendar does not trade
type Clock struct {
	end      time.Time
	now      time.Time
	interval time.Duration
	calendar *Calendar
	ticks    int64
}
