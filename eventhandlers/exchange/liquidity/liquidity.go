package liquidity

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	errInvalidFillPercent = errors.New("max fill percent must be between 0 and 1")
	errNegativeLotSize    = errors.New("lot size cannot be negative")
)

// Model bounds how much of an order one bar can absorb
type Model struct {
	// MaxFillPercent is the largest fraction of bar volume an order may take.
	// Zero disables the cap.
	MaxFillPercent decimal.Decimal `json:"max-fill-percent"`
	// LotSize rounds fills down to whole lots when greater than zero
	LotSize decimal.Decimal `json:"lot-size"`
}

// Validate checks the model settings
func (m *Model) Validate() error {
	if m.MaxFillPercent.IsNegative() || m.MaxFillPercent.GreaterThan(decimal.NewFromInt(1)) {
		return errInvalidFillPercent
	}
	if m.LotSize.IsNegative() {
		return errNegativeLotSize
	}
	return nil
}

// MaximumFill returns min(requested, MaxFillPercent*volume) rounded down to
// the lot size. A bar without volume fills nothing.
func (m *Model) MaximumFill(requested, volume decimal.Decimal) decimal.Decimal {
	if !volume.IsPositive() || !requested.IsPositive() {
		return decimal.Zero
	}
	amount := requested
	if m.MaxFillPercent.IsPositive() {
		amount = decimal.Min(amount, m.MaxFillPercent.Mul(volume))
	}
	return m.RoundToLot(amount)
}

// RoundToLot rounds an amount down to a whole number of lots
func (m *Model) RoundToLot(amount decimal.Decimal) decimal.Decimal {
	if !m.LotSize.IsPositive() {
		return amount
	}
	return amount.Div(m.LotSize).Floor().Mul(m.LotSize)
}
