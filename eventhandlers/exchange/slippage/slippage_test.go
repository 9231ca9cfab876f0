package slippage

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventtypes/kline"
)

func testBar() *kline.Kline {
	// range of 10 over a close of 100 gives a volatility of 0.1
	return kline.New("AAPL", time.Minute, time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC),
		decimal.NewFromInt(98), decimal.NewFromInt(105), decimal.NewFromInt(95), decimal.NewFromInt(100), decimal.NewFromInt(1000))
}

func TestValidate(t *testing.T) {
	t.Parallel()
	m := &Model{BaseRate: decimal.NewFromFloat(-0.1)}
	assert.ErrorIs(t, m.Validate(), errNegativeRate)
	m = &Model{MaximumRate: decimal.NewFromInt(1)}
	assert.ErrorIs(t, m.Validate(), errMaximumRateTooHigh)
	m = &Model{BaseRate: decimal.NewFromFloat(0.001)}
	assert.NoError(t, m.Validate())
	assert.False(t, m.IsZero())
	assert.True(t, (&Model{}).IsZero())
}

func TestEstimateSlippageRate(t *testing.T) {
	t.Parallel()
	m := &Model{
		BaseRate:         decimal.NewFromFloat(0.001),
		VolatilityFactor: decimal.NewFromFloat(0.1),
		SizeFactor:       decimal.NewFromFloat(0.5),
	}
	// 0.001 + 0.1*0.1 + 0.5*(10/100)
	rate := m.EstimateSlippageRate(testBar(), decimal.NewFromInt(10), decimal.NewFromInt(100))
	assert.True(t, rate.Equal(decimal.NewFromFloat(0.061)), rate.String())

	rate = m.EstimateSlippageRate(testBar(), decimal.NewFromInt(10), decimal.Zero)
	assert.True(t, rate.Equal(decimal.NewFromFloat(0.011)), "no average volume drops the size term")

	m.MaximumRate = decimal.NewFromFloat(0.02)
	rate = m.EstimateSlippageRate(testBar(), decimal.NewFromInt(10), decimal.NewFromInt(100))
	assert.True(t, rate.Equal(decimal.NewFromFloat(0.02)))

	huge := &Model{BaseRate: decimal.NewFromInt(5)}
	assert.True(t, huge.EstimateSlippageRate(nil, decimal.Zero, decimal.Zero).Equal(rateCeiling))
}

func TestApplySlippageToPrice(t *testing.T) {
	t.Parallel()
	price := decimal.NewFromInt(100)
	rate := decimal.NewFromFloat(0.01)
	buy := ApplySlippageToPrice(common.Buy, price, rate)
	sell := ApplySlippageToPrice(common.Sell, price, rate)
	assert.True(t, buy.Equal(decimal.NewFromInt(101)))
	assert.True(t, sell.Equal(decimal.NewFromInt(99)))
	assert.True(t, buy.GreaterThanOrEqual(price), "buys never fill below the reference")
	assert.True(t, sell.LessThanOrEqual(price), "sells never fill above the reference")
	assert.True(t, ApplySlippageToPrice(common.DoNothing, price, rate).Equal(price))
}
