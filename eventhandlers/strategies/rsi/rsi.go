package rsi

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-ta/indicators"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventhandlers/strategies/base"
	"github.com/tradebench/barsim/eventtypes/kline"
	"github.com/tradebench/barsim/eventtypes/signal"
)

const (
	// Name is the strategy name
	Name         = "rsi"
	rsiPeriodKey = "rsi-period"
	rsiLowKey    = "rsi-low"
	rsiHighKey   = "rsi-high"
	description  = `The relative strength index is a technical indicator used in the analysis of financial markets. It is intended to chart the current and historical strength or weakness of a stock or market based on the closing prices of a recent trading period`
)

// Strategy is an implementation of the Handler interface
type Strategy struct {
	base.Strategy
	rsiPeriod int
	rsiLow    decimal.Decimal
	rsiHigh   decimal.Decimal
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
// be it definition of terms or to highlight its purpose
func (s *Strategy) Description() string {
	return description
}

// OnBar returns a buy signal when RSI is at or below the low level and a sell
// signal when it is at or above the high level
func (s *Strategy) OnBar(history []*kline.Kline) (*signal.Signal, error) {
	sig, err := s.GetBaseData(history)
	if err != nil {
		return nil, err
	}
	if len(history) <= s.rsiPeriod {
		sig.AppendReason("Not enough data for signal generation")
		return sig, nil
	}

	rsi := indicators.RSI(base.ClosePrices(history), s.rsiPeriod)
	if len(rsi) == 0 {
		sig.AppendReason("RSI produced no values")
		return sig, nil
	}
	latestRSIValue := decimal.NewFromFloat(rsi[len(rsi)-1])
	switch {
	case latestRSIValue.GreaterThanOrEqual(s.rsiHigh):
		sig.SetDirection(common.Sell)
	case latestRSIValue.LessThanOrEqual(s.rsiLow):
		sig.SetDirection(common.Buy)
	}
	sig.AppendReasonf("RSI at %v", base.FormatFloat(rsi[len(rsi)-1]))
	return sig, nil
}

// SetCustomSettings allows a user to modify the RSI limits in their config
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	for k, v := range customSettings {
		var err error
		switch k {
		case rsiHighKey:
			s.rsiHigh, err = parseLevel(k, v)
		case rsiLowKey:
			s.rsiLow, err = parseLevel(k, v)
		case rsiPeriodKey:
			s.rsiPeriod, err = base.ParsePeriod(k, v)
		case base.AmountKey:
			err = s.SetAmount(v)
		default:
			err = base.UnrecognisedSetting(k, v)
		}
		if err != nil {
			return err
		}
	}
	if s.rsiLow.GreaterThanOrEqual(s.rsiHigh) && !s.rsiHigh.IsZero() {
		return fmt.Errorf("%w %v %v must be below %v %v", base.ErrInvalidCustomSettings, rsiLowKey, s.rsiLow, rsiHighKey, s.rsiHigh)
	}
	return nil
}

func parseLevel(k string, v any) (decimal.Decimal, error) {
	d, err := base.ParseDecimal(k, v)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() || d.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("%w provided %v value must be between 0 and 100: %v", base.ErrInvalidCustomSettings, k, v)
	}
	return d, nil
}

// SetDefaults sets the custom settings to their default values
func (s *Strategy) SetDefaults() {
	s.rsiHigh = decimal.NewFromInt(70)
	s.rsiLow = decimal.NewFromInt(30)
	s.rsiPeriod = 14
}
