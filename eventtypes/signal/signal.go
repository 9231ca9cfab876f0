package signal

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventtypes/event"
	"github.com/tradebench/barsim/eventtypes/kline"
	"github.com/tradebench/barsim/eventtypes/order"
)

// New returns a full strength market signal derived from the bar
func New(k *kline.Kline, side common.Side) *Signal {
	s := &Signal{
		Base:       &event.Base{},
		Direction:  side,
		Strength:   decimal.NewFromInt(1),
		OrderType:  order.Market,
		ClosePrice: k.Close,
	}
	if k.Base != nil {
		s.Base.Offset = k.Offset
		s.Base.Time = k.Time
		s.Base.Symbol = k.Symbol
		s.Base.Interval = k.Interval
	}
	return s
}

// IsSignal returns whether the event is a signal type
func (s *Signal) IsSignal() bool {
	return true
}

// SetDirection sets the direction
func (s *Signal) SetDirection(st common.Side) {
	s.Direction = st
}

// GetDirection returns the direction
func (s *Signal) GetDirection() common.Side {
	return s.Direction
}

// GetAmount retrieves the order amount
func (s *Signal) GetAmount() decimal.Decimal {
	return s.Amount
}

// SetAmount sets the order amount
func (s *Signal) SetAmount(d decimal.Decimal) {
	s.Amount = d
}

// GetPrice returns the suggested limit or stop price
func (s *Signal) GetPrice() decimal.Decimal {
	return s.Price
}

// GetClosePrice returns the close of the bar the signal was raised on
func (s *Signal) GetClosePrice() decimal.Decimal {
	return s.ClosePrice
}

// GetStrength returns the signal strength
func (s *Signal) GetStrength() decimal.Decimal {
	return s.Strength
}

// GetOrderType returns the requested order type, defaulting to market
func (s *Signal) GetOrderType() order.Type {
	if s.OrderType == "" {
		return order.Market
	}
	return s.OrderType
}

// WithLimit converts the signal into a limit order request
func (s *Signal) WithLimit(price decimal.Decimal) *Signal {
	s.OrderType = order.Limit
	s.Price = price
	return s
}

// WithStop converts the signal into a stop order request
func (s *Signal) WithStop(price decimal.Decimal) *Signal {
	s.OrderType = order.Stop
	s.Price = price
	return s
}

// Validate checks the strength is within range
func (s *Signal) Validate() error {
	if s.Strength.IsNegative() || s.Strength.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w, received %v", errStrengthOutOfRange, s.Strength)
	}
	return nil
}
