package math

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	// ErrOverflow is returned when a result does not fit in a float64
	ErrOverflow = errors.New("result overflows float64")

	errZeroValue           = errors.New("cannot calculate with a zero value")
	errNegativeValue       = errors.New("cannot calculate with a negative value")
	errInsufficientSamples = errors.New("insufficient samples")
	errUndefinedResult     = errors.New("result is undefined")

	two = decimal.NewFromInt(2)
)

// Sqrt returns the square root of a non negative decimal. Precision is
// bounded by float64, which is adequate for ratios and deviations.
func Sqrt(d decimal.Decimal) decimal.Decimal {
	if d.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(math.Sqrt(d.InexactFloat64()))
}

// Pow raises base to a fractional exponent
func Pow(base, exp decimal.Decimal) (decimal.Decimal, error) {
	if base.IsNegative() {
		return decimal.Zero, errNegativeValue
	}
	r := math.Pow(base.InexactFloat64(), exp.InexactFloat64())
	if math.IsInf(r, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v^%v", ErrOverflow, base, exp)
	}
	if math.IsNaN(r) {
		return decimal.Zero, fmt.Errorf("%w: %v^%v", errUndefinedResult, base, exp)
	}
	return decimal.NewFromFloat(r), nil
}

// ArithmeticMean is the basic form of calculating an average.
// Divide the sum of all values by the length of values
func ArithmeticMean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(decimal.Zero, values...).Div(decimal.NewFromInt(int64(len(values))))
}

// SampleStandardDeviation measures the dispersion of a dataset relative to
// its mean using n-1 degrees of freedom
func SampleStandardDeviation(values []decimal.Decimal) decimal.Decimal {
	if len(values) <= 1 {
		return decimal.Zero
	}
	mean := ArithmeticMean(values)
	var combined decimal.Decimal
	for i := range values {
		combined = combined.Add(values[i].Sub(mean).Pow(two))
	}
	return Sqrt(combined.Div(decimal.NewFromInt(int64(len(values) - 1))))
}

// SharpeRatio returns the per period sharpe ratio of returns compared to a
// per period risk free rate. A series without variance has a ratio of zero.
func SharpeRatio(returns []decimal.Decimal, riskFreeRate decimal.Decimal) decimal.Decimal {
	if len(returns) <= 1 {
		return decimal.Zero
	}
	excess := make([]decimal.Decimal, len(returns))
	for i := range returns {
		excess[i] = returns[i].Sub(riskFreeRate)
	}
	std := SampleStandardDeviation(excess)
	if std.IsZero() {
		return decimal.Zero
	}
	return ArithmeticMean(excess).Div(std)
}

// SortinoRatio returns the per period sortino ratio, penalising only returns
// below the risk free rate
func SortinoRatio(returns []decimal.Decimal, riskFreeRate decimal.Decimal) decimal.Decimal {
	if len(returns) <= 1 {
		return decimal.Zero
	}
	var downside decimal.Decimal
	for i := range returns {
		diff := returns[i].Sub(riskFreeRate)
		if diff.IsNegative() {
			downside = downside.Add(diff.Pow(two))
		}
	}
	deviation := Sqrt(downside.Div(decimal.NewFromInt(int64(len(returns)))))
	if deviation.IsZero() {
		return decimal.Zero
	}
	return ArithmeticMean(returns).Sub(riskFreeRate).Div(deviation)
}

// CompoundAnnualGrowthRate returns the annualised growth between two values
// as a fraction. Using days, intervals per year would be 252 and number of
// intervals would be the number of trading days.
func CompoundAnnualGrowthRate(openValue, closeValue, intervalsPerYear, numberOfIntervals decimal.Decimal) (decimal.Decimal, error) {
	if openValue.IsZero() || intervalsPerYear.IsZero() || numberOfIntervals.IsZero() {
		return decimal.Zero, errZeroValue
	}
	if closeValue.IsNegative() || openValue.IsNegative() {
		return decimal.Zero, errNegativeValue
	}
	if closeValue.IsZero() {
		return decimal.NewFromInt(-1), nil
	}
	growth, err := Pow(closeValue.Div(openValue), intervalsPerYear.Div(numberOfIntervals))
	if err != nil {
		return decimal.Zero, err
	}
	return growth.Sub(decimal.NewFromInt(1)), nil
}

// CalmarRatio compares the annualised return against the maximum drawdown
// fraction
func CalmarRatio(annualisedReturn, maxDrawdown decimal.Decimal) decimal.Decimal {
	if maxDrawdown.IsZero() {
		return decimal.Zero
	}
	return annualisedReturn.Div(maxDrawdown.Abs())
}

// Returns converts a series of values into the fractional movement between
// consecutive values
func Returns(values []decimal.Decimal) ([]decimal.Decimal, error) {
	if len(values) < 2 {
		return nil, errInsufficientSamples
	}
	resp := make([]decimal.Decimal, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1].IsZero() {
			return nil, errZeroValue
		}
		resp = append(resp, values[i].Sub(values[i-1]).Div(values[i-1]))
	}
	return resp, nil
}
