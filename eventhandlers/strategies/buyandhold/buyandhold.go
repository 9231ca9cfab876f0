package buyandhold

import (
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventhandlers/strategies/base"
	"github.com/tradebench/barsim/eventtypes/kline"
	"github.com/tradebench/barsim/eventtypes/signal"
)

const (
	// Name is the strategy name
	Name        = "buyandhold"
	description = `Buys on the first bar and holds until the end of the run. Useful as a benchmark for other strategies`
)

// Strategy is an implementation of the Handler interface
type Strategy struct {
	base.Strategy
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// OnBar returns a buy signal on the first bar of history and does nothing
// afterwards
func (s *Strategy) OnBar(history []*kline.Kline) (*signal.Signal, error) {
	sig, err := s.GetBaseData(history)
	if err != nil {
		return nil, err
	}
	if len(history) == 1 {
		sig.SetDirection(common.Buy)
		sig.AppendReason("first bar")
		return sig, nil
	}
	sig.AppendReason("holding")
	return sig, nil
}

// SetCustomSettings only accepts the shared amount setting
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	for k, v := range customSettings {
		if k != base.AmountKey {
			return base.UnrecognisedSetting(k, v)
		}
		if err := s.SetAmount(v); err != nil {
			return err
		}
	}
	return nil
}

// SetDefaults is a no-op, buy and hold has nothing to configure
func (s *Strategy) SetDefaults() {}
