package kline

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/eventtypes/event"
)

// New returns a bar for the symbol at time t
func New(symbol string, interval time.Duration, t time.Time, o, h, l, c, v decimal.Decimal) *Kline {
	return &Kline{
		Base: &event.Base{
			Time:     t,
			Symbol:   symbol,
			Interval: interval,
		},
		Open:   o,
		High:   h,
		Low:    l,
		Close:  c,
		Volume: v,
	}
}

// GetClosePrice returns the closing price of a kline
func (k *Kline) GetClosePrice() decimal.Decimal {
	return k.Close
}

// GetHighPrice returns the high price of a kline
func (k *Kline) GetHighPrice() decimal.Decimal {
	return k.High
}

// GetLowPrice returns the low price of a kline
func (k *Kline) GetLowPrice() decimal.Decimal {
	return k.Low
}

// GetOpenPrice returns the open price of a kline
func (k *Kline) GetOpenPrice() decimal.Decimal {
	return k.Open
}

// GetVolume returns the volume of a kline
func (k *Kline) GetVolume() decimal.Decimal {
	return k.Volume
}

// IsKline is a function to help distinguish between kline.Event
// and signal.Event as signal.Event implements kline.Event definitions otherwise
// this function is not called
func (k *Kline) IsKline() bool {
	return true
}

// Range returns the high-low range relative to the close
func (k *Kline) Range() decimal.Decimal {
	if k.Close.IsZero() {
		return decimal.Zero
	}
	return k.High.Sub(k.Low).Div(k.Close)
}

// Validate ensures the bar is internally consistent. The first broken rule is
// returned wrapped in ErrInvalidBar.
func (k *Kline) Validate() error {
	if k.Base == nil {
		return fmt.Errorf("%w: %v", ErrInvalidBar, errNilBase)
	}
	if k.Time.IsZero() {
		return fmt.Errorf("%w %v: %v", ErrInvalidBar, k.Symbol, errMissingTime)
	}
	if !k.Open.IsPositive() || !k.High.IsPositive() || !k.Low.IsPositive() || !k.Close.IsPositive() {
		return fmt.Errorf("%w %v %v: %v", ErrInvalidBar, k.Symbol, k.Time, errNonPositivePrice)
	}
	if k.Volume.IsNegative() {
		return fmt.Errorf("%w %v %v: %v", ErrInvalidBar, k.Symbol, k.Time, errNegativeVolume)
	}
	if k.High.LessThan(decimal.Max(k.Open, k.Close, k.Low)) {
		return fmt.Errorf("%w %v %v: %v", ErrInvalidBar, k.Symbol, k.Time, errHighBelowRange)
	}
	if k.Low.GreaterThan(decimal.Min(k.Open, k.Close, k.High)) {
		return fmt.Errorf("%w %v %v: %v", ErrInvalidBar, k.Symbol, k.Time, errLowAboveRange)
	}
	return nil
}
