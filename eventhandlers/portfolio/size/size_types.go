package size

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/eventhandlers/exchange/commission"
)

// Mode selects how a signal is converted into a quantity
type Mode string

// Sizing modes
const (
	// Fixed sizes every entry at FixedQuantity
	Fixed Mode = "fixed"
	// PercentOfEquity sizes entries at EquityPercent of current equity
	PercentOfEquity Mode = "percent-of-equity"
)

var (
	errCannotAllocate   = errors.New("cannot allocate an order quantity")
	errInvalidMode      = errors.New("invalid sizing mode")
	errInvalidSettings  = errors.New("invalid sizing settings")
	errNoReferencePrice = errors.New("signal has no reference price")
)

// Size converts signals into order quantities. Signal strength scales the
// sized quantity and a signal carrying its own amount bypasses sizing.
type Size struct {
	Mode          Mode
	FixedQuantity decimal.Decimal
	// EquityPercent is a fraction, 0.5 being half of equity
	EquityPercent decimal.Decimal
	// Precision is the number of decimal places quantities are truncated to
	Precision       int32
	MinimumQuantity decimal.Decimal
	// Commission is used to keep sized buys affordable
	Commission commission.Model
}
