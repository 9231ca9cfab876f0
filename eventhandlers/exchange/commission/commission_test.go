package commission

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	m, err := New("", decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, ZeroName, m.Name())

	m, err = New("Per-Share", decimal.NewFromFloat(0.005), decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, PerShareName, m.Name())

	m, err = New(PercentageName, decimal.NewFromFloat(0.001), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, PercentageName, m.Name())

	_, err = New("flat", decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, errUnknownModel)

	_, err = New(PerShareName, decimal.NewFromInt(-1), decimal.Zero)
	assert.ErrorIs(t, err, errNegativeSettings)
}

func TestZero(t *testing.T) {
	t.Parallel()
	assert.True(t, Zero{}.Calculate(decimal.NewFromInt(100), decimal.NewFromInt(10)).IsZero())
}

func TestPerShare(t *testing.T) {
	t.Parallel()
	p := &PerShare{Rate: decimal.NewFromFloat(0.005), Minimum: decimal.NewFromInt(1)}
	assert.True(t, p.Calculate(decimal.NewFromInt(100), decimal.NewFromInt(50)).Equal(decimal.NewFromInt(1)), "minimum applies")
	assert.True(t, p.Calculate(decimal.NewFromInt(1000), decimal.NewFromInt(50)).Equal(decimal.NewFromInt(5)))
	assert.True(t, p.Calculate(decimal.NewFromInt(-1000), decimal.NewFromInt(50)).Equal(decimal.NewFromInt(5)))
	assert.True(t, p.Calculate(decimal.Zero, decimal.NewFromInt(50)).IsZero(), "no fill no fee")
}

func TestPercentage(t *testing.T) {
	t.Parallel()
	p := &Percentage{Rate: decimal.NewFromFloat(0.001), Minimum: decimal.NewFromInt(2)}
	assert.True(t, p.Calculate(decimal.NewFromInt(10), decimal.NewFromInt(100)).Equal(decimal.NewFromInt(2)), "minimum applies")
	assert.True(t, p.Calculate(decimal.NewFromInt(100), decimal.NewFromInt(101)).Equal(decimal.NewFromFloat(10.1)))
	assert.True(t, p.Calculate(decimal.Zero, decimal.NewFromInt(100)).IsZero())
}

func TestAffordableQuantity(t *testing.T) {
	t.Parallel()
	price := decimal.NewFromInt(100)
	assert.True(t, AffordableQuantity(nil, price, decimal.NewFromInt(1000), decimal.NewFromInt(5)).Equal(decimal.NewFromInt(5)))
	assert.True(t, AffordableQuantity(nil, price, decimal.NewFromInt(1000), decimal.NewFromInt(50)).Equal(decimal.NewFromInt(10)))
	assert.True(t, AffordableQuantity(nil, price, decimal.Zero, decimal.NewFromInt(50)).IsZero())
	assert.True(t, AffordableQuantity(nil, decimal.Zero, decimal.NewFromInt(10), decimal.NewFromInt(50)).IsZero())

	pct := &Percentage{Rate: decimal.NewFromFloat(0.01)}
	q := AffordableQuantity(pct, price, decimal.NewFromInt(1000), decimal.NewFromInt(50))
	cost := q.Mul(price).Add(pct.Calculate(q, price))
	assert.True(t, cost.LessThanOrEqual(decimal.NewFromInt(1000)), cost.String())
	assert.True(t, q.GreaterThan(decimal.NewFromFloat(9.9)), q.String())
	assert.LessOrEqual(t, -q.Exponent(), int32(QuantityPrecision))

	minFee := &PerShare{Minimum: decimal.NewFromInt(5)}
	q = AffordableQuantity(minFee, price, decimal.NewFromInt(1000), decimal.NewFromInt(50))
	assert.True(t, q.Mul(price).Add(decimal.NewFromInt(5)).LessThanOrEqual(decimal.NewFromInt(1000)))
	assert.True(t, q.GreaterThan(decimal.NewFromFloat(9.94)), q.String())
}
