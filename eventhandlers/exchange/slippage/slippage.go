package slippage

import (
	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventtypes/kline"
)

// Validate ensures the model cannot produce a favourable or negative price
func (m *Model) Validate() error {
	if m.BaseRate.IsNegative() || m.VolatilityFactor.IsNegative() || m.SizeFactor.IsNegative() || m.MaximumRate.IsNegative() {
		return errNegativeRate
	}
	if m.MaximumRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errMaximumRateTooHigh
	}
	return nil
}

// IsZero reports whether the model never slips
func (m *Model) IsZero() bool {
	return m.BaseRate.IsZero() && m.VolatilityFactor.IsZero() && m.SizeFactor.IsZero()
}

// EstimateSlippageRate returns the fractional slippage for an order of
// quantity evaluated against the bar. A zero average volume removes the size
// component.
func (m *Model) EstimateSlippageRate(k *kline.Kline, quantity, averageVolume decimal.Decimal) decimal.Decimal {
	rate := m.BaseRate
	if k != nil && !m.VolatilityFactor.IsZero() {
		rate = rate.Add(m.VolatilityFactor.Mul(k.Range()))
	}
	if averageVolume.IsPositive() && !m.SizeFactor.IsZero() {
		rate = rate.Add(m.SizeFactor.Mul(quantity.Abs().Div(averageVolume)))
	}
	if m.MaximumRate.IsPositive() && rate.GreaterThan(m.MaximumRate) {
		rate = m.MaximumRate
	}
	if rate.GreaterThan(rateCeiling) {
		rate = rateCeiling
	}
	if rate.IsNegative() {
		return decimal.Zero
	}
	return rate
}

// ApplySlippageToPrice moves the price against the side: buys pay more and
// sells receive less
func ApplySlippageToPrice(direction common.Side, price, rate decimal.Decimal) decimal.Decimal {
	switch direction {
	case common.Buy:
		return price.Mul(decimal.NewFromInt(1).Add(rate))
	case common.Sell:
		return price.Mul(decimal.NewFromInt(1).Sub(rate))
	}
	return price
}
