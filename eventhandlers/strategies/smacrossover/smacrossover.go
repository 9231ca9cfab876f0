package smacrossover

import (
	"fmt"
	"strings"

	"github.com/thrasher-corp/gct-ta/indicators"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventhandlers/strategies/base"
	"github.com/tradebench/barsim/eventtypes/kline"
	"github.com/tradebench/barsim/eventtypes/signal"
)

const (
	// Name is the strategy name
	Name          = "smacrossover"
	fastPeriodKey = "fast-period"
	slowPeriodKey = "slow-period"
	maTypeKey     = "ma-type"
	simple        = "sma"
	exponential   = "ema"
	description   = `Buys when the fast moving average of closing prices crosses above the slow moving average and sells when it crosses below`
)

// Strategy is an implementation of the Handler interface
type Strategy struct {
	base.Strategy
	fastPeriod int
	slowPeriod int
	maType     string
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// OnBar compares the fast and slow moving averages of the latest two bars
// and signals only on the bar where they cross
func (s *Strategy) OnBar(history []*kline.Kline) (*signal.Signal, error) {
	sig, err := s.GetBaseData(history)
	if err != nil {
		return nil, err
	}
	if len(history) <= s.slowPeriod {
		sig.AppendReason("Not enough data for signal generation")
		return sig, nil
	}
	closes := base.ClosePrices(history)
	fast, slow := s.movingAverage(closes, s.fastPeriod), s.movingAverage(closes, s.slowPeriod)
	if len(fast) < 2 || len(slow) < 2 {
		sig.AppendReason("moving averages produced too few values")
		return sig, nil
	}
	fastNow, fastPrev := fast[len(fast)-1], fast[len(fast)-2]
	slowNow, slowPrev := slow[len(slow)-1], slow[len(slow)-2]
	switch {
	case fastPrev <= slowPrev && fastNow > slowNow:
		sig.SetDirection(common.Buy)
	case fastPrev >= slowPrev && fastNow < slowNow:
		sig.SetDirection(common.Sell)
	}
	sig.AppendReasonf("fast %v %v slow %v", strings.ToUpper(s.maType), base.FormatFloat(fastNow), base.FormatFloat(slowNow))
	return sig, nil
}

func (s *Strategy) movingAverage(closes []float64, period int) []float64 {
	if s.maType == exponential {
		return indicators.EMA(closes, period)
	}
	return indicators.SMA(closes, period)
}

// SetCustomSettings allows a user to modify the moving average periods and
// type in their config
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	for k, v := range customSettings {
		var err error
		switch k {
		case fastPeriodKey:
			s.fastPeriod, err = base.ParsePeriod(k, v)
		case slowPeriodKey:
			s.slowPeriod, err = base.ParsePeriod(k, v)
		case maTypeKey:
			str, ok := v.(string)
			str = strings.ToLower(strings.TrimSpace(str))
			if !ok || (str != simple && str != exponential) {
				err = fmt.Errorf("%w provided %v value must be %v or %v: %v", base.ErrInvalidCustomSettings, k, simple, exponential, v)
				break
			}
			s.maType = str
		case base.AmountKey:
			err = s.SetAmount(v)
		default:
			err = base.UnrecognisedSetting(k, v)
		}
		if err != nil {
			return err
		}
	}
	if s.fastPeriod >= s.slowPeriod && s.slowPeriod != 0 {
		return fmt.Errorf("%w %v %v must be shorter than %v %v", base.ErrInvalidCustomSettings, fastPeriodKey, s.fastPeriod, slowPeriodKey, s.slowPeriod)
	}
	return nil
}

// SetDefaults sets the custom settings to their default values
func (s *Strategy) SetDefaults() {
	s.fastPeriod = 10
	s.slowPeriod = 30
	s.maType = simple
}
