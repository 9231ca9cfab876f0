package commission

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Supported commission policies
const (
	ZeroName       = "zero"
	PerShareName   = "per-share"
	PercentageName = "percentage"
)

const (
	// QuantityPrecision is the number of decimal places affordable
	// quantities are truncated to
	QuantityPrecision = 8
	fitIterations     = 64
)

var (
	errUnknownModel     = errors.New("unknown commission model")
	errNegativeSettings = errors.New("commission rate and minimum cannot be negative")
)

// Model calculates the commission charged for a fill. It is evaluated after
// slippage on the filled quantity and fill price.
type Model interface {
	Name() string
	Calculate(quantity, price decimal.Decimal) decimal.Decimal
}

// Zero charges nothing
type Zero struct{}

// PerShare charges Rate for every unit filled, never less than Minimum
type PerShare struct {
	Rate    decimal.Decimal
	Minimum decimal.Decimal
}

// Percentage charges Rate of notional, never less than Minimum
type Percentage struct {
	Rate    decimal.Decimal
	Minimum decimal.Decimal
}
