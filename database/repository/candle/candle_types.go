package candle

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	errInvalidInput = errors.New("symbol & interval cannot be empty")
	errNoCandleData = errors.New("no candle data provided")
	errUnsupportedTimestamp = errors.New("unsupported timestamp column type")
	// ErrNoCandleDataFound returns when no candle data is found
	ErrNoCandleDataFound = errors.New("no candle data found")
)

// Item holds the candles of one symbol and interval
type Item struct {
	Symbol   string
	Interval time.Duration
	Candles  []Candle
}

// Candle holds each interval
type Candle struct {
	ID        string
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}
