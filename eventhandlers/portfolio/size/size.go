package size

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventhandlers/exchange/commission"
	"github.com/tradebench/barsim/eventhandlers/portfolio"
	"github.com/tradebench/barsim/eventtypes/order"
	"github.com/tradebench/barsim/eventtypes/signal"
)

// Validate checks the settings of the selected mode
func (s *Size) Validate() error {
	switch s.Mode {
	case Fixed:
		if !s.FixedQuantity.IsPositive() {
			return fmt.Errorf("%w: fixed quantity %v", errInvalidSettings, s.FixedQuantity)
		}
	case PercentOfEquity:
		if !s.EquityPercent.IsPositive() || s.EquityPercent.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: equity percent %v", errInvalidSettings, s.EquityPercent)
		}
	default:
		return fmt.Errorf("%w '%v'", errInvalidMode, s.Mode)
	}
	if s.Precision < 0 || s.MinimumQuantity.IsNegative() {
		return fmt.Errorf("%w: precision %v minimum %v", errInvalidSettings, s.Precision, s.MinimumQuantity)
	}
	return nil
}

// SizeOrder returns the quantity to order for a signal.
// A sell against a long position closes it and a buy against a short position
// covers it. Otherwise the quantity is sized by mode and scaled by strength.
// Without margin, sized buys are reduced to what the available cash can pay
// for including commission.
func (s *Size) SizeOrder(sig *signal.Signal, snap portfolio.Snapshot) (decimal.Decimal, error) {
	if sig == nil || sig.Base == nil {
		return decimal.Zero, common.ErrNilEvent
	}
	price := sig.GetClosePrice()
	if sig.GetOrderType() != order.Market && sig.GetPrice().IsPositive() {
		price = sig.GetPrice()
	}
	if !price.IsPositive() {
		return decimal.Zero, errNoReferencePrice
	}
	held := snap.Position(sig.Symbol).Quantity

	var amount decimal.Decimal
	switch sig.Direction {
	case common.Sell:
		switch {
		case sig.Amount.IsPositive():
			amount = sig.Amount
		case held.IsPositive():
			amount = held
		case snap.AllowShort:
			amount = s.sized(sig, snap, price)
		default:
			return decimal.Zero, fmt.Errorf("%w: no %v position to sell", errCannotAllocate, sig.Symbol)
		}
		if !snap.AllowShort && held.IsPositive() {
			amount = decimal.Min(amount, held)
		}
	case common.Buy:
		switch {
		case sig.Amount.IsPositive():
			amount = sig.Amount
		case held.IsNegative():
			amount = held.Abs()
		default:
			amount = s.sized(sig, snap, price)
			if !snap.AllowMargin {
				amount = commission.AffordableQuantity(s.Commission, price, snap.AvailableCash(), amount)
			}
		}
	default:
		return decimal.Zero, fmt.Errorf("%w %v", common.ErrInvalidSide, sig.Direction)
	}

	amount = amount.Truncate(s.Precision)
	if !amount.IsPositive() || amount.LessThan(s.MinimumQuantity) {
		return decimal.Zero, fmt.Errorf("%w: %v %v below minimum %v", errCannotAllocate, sig.Direction, amount, s.MinimumQuantity)
	}
	return amount, nil
}

func (s *Size) sized(sig *signal.Signal, snap portfolio.Snapshot, price decimal.Decimal) decimal.Decimal {
	strength := sig.GetStrength()
	if strength.IsZero() {
		strength = decimal.NewFromInt(1)
	}
	switch s.Mode {
	case Fixed:
		return s.FixedQuantity.Mul(strength)
	case PercentOfEquity:
		return snap.Equity.Mul(s.EquityPercent).Mul(strength).Div(price)
	}
	return decimal.Zero
}
