package commission

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// New returns the commission model matching name
func New(name string, rate, minimum decimal.Decimal) (Model, error) {
	if rate.IsNegative() || minimum.IsNegative() {
		return nil, errNegativeSettings
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ZeroName, "":
		return Zero{}, nil
	case PerShareName:
		return &PerShare{Rate: rate, Minimum: minimum}, nil
	case PercentageName:
		return &Percentage{Rate: rate, Minimum: minimum}, nil
	}
	return nil, fmt.Errorf("%w '%v'", errUnknownModel, name)
}

// Name returns the model name
func (Zero) Name() string {
	return ZeroName
}

// Calculate always returns zero
func (Zero) Calculate(_, _ decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

// Name returns the model name
func (p *PerShare) Name() string {
	return PerShareName
}

// Calculate returns rate multiplied by quantity floored at the minimum. Nothing
// is charged when nothing filled.
func (p *PerShare) Calculate(quantity, _ decimal.Decimal) decimal.Decimal {
	if quantity.IsZero() {
		return decimal.Zero
	}
	return decimal.Max(p.Rate.Mul(quantity.Abs()), p.Minimum)
}

// Name returns the model name
func (p *Percentage) Name() string {
	return PercentageName
}

// Calculate returns rate of notional floored at the minimum. Nothing is
// charged when nothing filled.
func (p *Percentage) Calculate(quantity, price decimal.Decimal) decimal.Decimal {
	if quantity.IsZero() {
		return decimal.Zero
	}
	return decimal.Max(p.Rate.Mul(quantity.Abs()).Mul(price), p.Minimum)
}

// AffordableQuantity returns the largest quantity up to maximum whose notional
// plus commission fits within funds. Cost is monotonic in quantity so the
// answer is found by bisection and truncated to QuantityPrecision places.
func AffordableQuantity(m Model, price, funds, maximum decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() || !funds.IsPositive() || !maximum.IsPositive() {
		return decimal.Zero
	}
	if m == nil {
		m = Zero{}
	}
	cost := func(a decimal.Decimal) decimal.Decimal {
		return a.Mul(price).Add(m.Calculate(a, price))
	}
	if cost(maximum).LessThanOrEqual(funds) {
		return maximum
	}
	lo, hi := decimal.Zero, decimal.Min(maximum, funds.Div(price)).Truncate(QuantityPrecision)
	if cost(hi).LessThanOrEqual(funds) {
		return hi
	}
	two := decimal.NewFromInt(2)
	for i := 0; i < fitIterations; i++ {
		mid := lo.Add(hi).Div(two)
		if cost(mid).LessThanOrEqual(funds) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo.Truncate(QuantityPrecision)
}
