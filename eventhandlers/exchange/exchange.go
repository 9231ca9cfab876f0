package exchange

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventhandlers/exchange/commission"
	"github.com/tradebench/barsim/eventhandlers/exchange/slippage"
	"github.com/tradebench/barsim/eventtypes/event"
	"github.com/tradebench/barsim/eventtypes/fill"
	"github.com/tradebench/barsim/eventtypes/kline"
	"github.com/tradebench/barsim/eventtypes/order"
)

// New validates the settings and returns an exchange
func New(s Settings) (*Exchange, error) {
	if err := s.Slippage.Validate(); err != nil {
		return nil, err
	}
	if err := s.Liquidity.Validate(); err != nil {
		return nil, err
	}
	if s.Commission == nil {
		s.Commission = commission.Zero{}
	}
	return &Exchange{settings: s}, nil
}

// GetSettings returns the execution settings
func (e *Exchange) GetSettings() Settings {
	return e.settings
}

// ExecuteOrder evaluates the remaining quantity of an open order against the
// bar in m. The order is not modified; the returned fill carries the filled
// quantity and the order status the caller should apply. Orders that do not
// trigger return an empty fill.
func (e *Exchange) ExecuteOrder(o *order.Order, m *MarketContext) (*fill.Fill, error) {
	if m == nil || m.Bar == nil || m.Bar.Base == nil {
		return nil, executionError(errNilMarket, o, nil)
	}
	if err := o.Validate(); err != nil {
		return nil, executionError(err, o, m.Bar)
	}
	if !o.Status.IsOpen() {
		return nil, executionError(errOrderNotOpen, o, m.Bar)
	}
	if o.Symbol != m.Bar.Symbol {
		return nil, executionError(errSymbolMismatch, o, m.Bar)
	}
	if e.settings.Commission == nil {
		return nil, executionError(errNilCommission, o, m.Bar)
	}

	remaining := o.GetRemaining()
	f := &fill.Fill{
		Base: &event.Base{
			Offset:   m.Bar.Offset,
			Time:     m.Bar.Time,
			Symbol:   o.Symbol,
			Interval: m.Bar.Interval,
		},
		OrderID:     o.ID,
		Direction:   o.Direction,
		Amount:      decimal.Zero,
		Remaining:   remaining,
		OrderStatus: o.Status,
	}

	reference, triggered, slips, err := referencePrice(o, m.Bar)
	if err != nil {
		return nil, executionError(err, o, m.Bar)
	}
	f.ClosePrice = reference
	if !triggered {
		f.AppendReasonf("%v %v not triggered by bar low %v high %v", o.Type, o.Price, m.Bar.Low, m.Bar.High)
		return f, nil
	}

	amount := e.settings.Liquidity.MaximumFill(remaining, m.Bar.Volume)
	if !amount.Equal(remaining) {
		f.AppendReasonf("Order size shrunk from %v to %v to fit bar volume %v", remaining, amount, m.Bar.Volume)
	}

	price := reference
	if slips {
		f.Slippage = e.settings.Slippage.EstimateSlippageRate(m.Bar, remaining, m.AverageVolume)
		price = slippage.ApplySlippageToPrice(o.Direction, reference, f.Slippage)
		if e.settings.ClampToBar {
			price = ensurePriceWithinBar(price, m.Bar)
		}
	}

	if o.Direction == common.Buy && o.AllocatedFunds.IsPositive() {
		limited := e.reduceAmountToFitPortfolioLimit(price, amount, o.AllocatedFunds)
		if !limited.Equal(amount) {
			f.AppendReasonf("Order size shrunk from %v to %v to remain within allocated funds %v", amount, limited, o.AllocatedFunds)
			amount = limited
		}
	}

	f.Amount = amount
	f.PurchasePrice = price
	f.Commission = e.settings.Commission.Calculate(amount, price)
	f.Remaining = remaining.Sub(amount)
	switch {
	case amount.IsZero():
	case f.Remaining.IsZero():
		f.OrderStatus = order.Filled
	default:
		f.OrderStatus = order.PartiallyFilled
	}
	notional := amount.Mul(price)
	if o.Direction == common.Buy {
		f.Total = notional.Add(f.Commission)
	} else {
		f.Total = notional.Sub(f.Commission)
	}
	return f, nil
}

// referencePrice returns the price an order executes from on this bar,
// whether the bar triggers it and whether slippage applies
func referencePrice(o *order.Order, k *kline.Kline) (price decimal.Decimal, triggered, slips bool, err error) {
	switch o.Type {
	case order.Market:
		return k.Close, true, true, nil
	case order.Limit:
		switch o.Direction {
		case common.Buy:
			return o.Price, k.Low.LessThanOrEqual(o.Price), false, nil
		case common.Sell:
			return o.Price, k.High.GreaterThanOrEqual(o.Price), false, nil
		}
	case order.Stop:
		if o.Triggered {
			return k.Close, true, true, nil
		}
		// a bar which opens through the stop executes from the open
		switch o.Direction {
		case common.Buy:
			return decimal.Max(o.Price, k.Open), k.High.GreaterThanOrEqual(o.Price), true, nil
		case common.Sell:
			return decimal.Min(o.Price, k.Open), k.Low.LessThanOrEqual(o.Price), true, nil
		}
	case order.StopLimit:
		return decimal.Zero, false, false, ErrStopLimitUnsupported
	}
	return decimal.Zero, false, false, fmt.Errorf("%w %v %v", order.ErrInvalidOrder, o.Type, o.Direction)
}

// reduceAmountToFitPortfolioLimit shrinks a buy so that notional plus
// commission stays within the funds the portfolio allocated to it
func (e *Exchange) reduceAmountToFitPortfolioLimit(price, amount, funds decimal.Decimal) decimal.Decimal {
	affordable := commission.AffordableQuantity(e.settings.Commission, price, funds, amount)
	if affordable.Equal(amount) {
		return amount
	}
	return e.settings.Liquidity.RoundToLot(affordable)
}

// ensurePriceWithinBar clamps a slipped price to the range the bar traded in
func ensurePriceWithinBar(price decimal.Decimal, k *kline.Kline) decimal.Decimal {
	if price.LessThan(k.Low) {
		return k.Low
	}
	if price.GreaterThan(k.High) {
		return k.High
	}
	return price
}

func executionError(err error, o *order.Order, k *kline.Kline) error {
	symbol, at := "", "unknown time"
	if k != nil && k.Base != nil {
		symbol = k.Symbol
		at = k.Time.String()
	}
	return fmt.Errorf("%w %v at %v order %v: %w", ErrExecution, symbol, at, o.Snapshot(), err)
}
