package slippage

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	errNegativeRate       = errors.New("slippage rates and factors cannot be negative")
	errMaximumRateTooHigh = errors.New("maximum slippage rate must be below 1")

	// rateCeiling keeps a slipped sell price above zero
	rateCeiling = decimal.NewFromFloat(0.99)
)

// Model prices market impact. The rate for an order is
// BaseRate + VolatilityFactor*volatility + SizeFactor*(quantity/averageVolume)
// where volatility is the bar range relative to its close.
type Model struct {
	BaseRate         decimal.Decimal `json:"base-rate"`
	VolatilityFactor decimal.Decimal `json:"volatility-factor"`
	SizeFactor       decimal.Decimal `json:"size-factor"`
	// MaximumRate caps the rate when greater than zero
	MaximumRate decimal.Decimal `json:"maximum-rate"`
}
