package risk

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/eventhandlers/portfolio"
	"github.com/tradebench/barsim/eventtypes/order"
)

var (
	// ErrOrderRejected wraps every reason a risk check refuses an order
	ErrOrderRejected = errors.New("order rejected by risk check")

	errExceedsPositionSize = errors.New("resulting position exceeds maximum position size")
	errExceedsOrderValue   = errors.New("order value exceeds maximum order value")
	errExceedsExposure     = errors.New("resulting exposure exceeds maximum fraction of equity")
	errNoReferencePrice    = errors.New("order has no reference price")
	errNegativeLimit       = errors.New("risk limits cannot be negative")
)

// Checker approves or rejects a sized order against the account. A non nil
// error rejects the order.
type Checker interface {
	EvaluateOrder(portfolio.Snapshot, *order.Order) error
}

// Risk is the default Checker. Zero value limits are disabled.
type Risk struct {
	// MaximumPositionSize caps the absolute quantity held after the order
	MaximumPositionSize decimal.Decimal
	// MaximumOrderValue caps quantity multiplied by the reference price
	MaximumOrderValue decimal.Decimal
	// MaximumExposure caps the absolute value of the resulting position as
	// a fraction of equity
	MaximumExposure decimal.Decimal
}
