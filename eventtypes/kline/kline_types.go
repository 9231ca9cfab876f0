package kline

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventtypes/event"
)

var (
	// ErrInvalidBar is returned when a bar breaks OHLCV consistency
	ErrInvalidBar = errors.New("invalid bar")

	errNilBase          = errors.New("bar has no event base")
	errMissingTime      = errors.New("bar timestamp is unset")
	errNonPositivePrice = errors.New("prices must be greater than zero")
	errNegativeVolume   = errors.New("volume cannot be negative")
	errHighBelowRange   = errors.New("high is below open, close or low")
	errLowAboveRange    = errors.New("low is above open, close or high")
)

// Kline holds a single OHLCV bar and an event to be processed as
// a common.DataEvent type
type Kline struct {
	*event.Base
	Open   decimal.Decimal `json:"open"`
	Close  decimal.Decimal `json:"close"`
	Low    decimal.Decimal `json:"low"`
	High   decimal.Decimal `json:"high"`
	Volume decimal.Decimal `json:"volume"`
}

// Event is a kline data event
type Event interface {
	common.DataEvent
	IsKline() bool
}
