package holdings

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventtypes/event"
	"github.com/tradebench/barsim/eventtypes/fill"
)

const testSymbol = "AAPL"

var (
	tStart = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	ids    = func() string { return "trade" }
)

func newFill(offset int64, side common.Side, amount, price, commission float64) *fill.Fill {
	return &fill.Fill{
		Base: &event.Base{
			Offset: offset,
			Time:   tStart.Add(time.Duration(offset) * time.Minute),
			Symbol: testSymbol,
		},
		Direction:     side,
		Amount:        decimal.NewFromFloat(amount),
		PurchasePrice: decimal.NewFromFloat(price),
		Commission:    decimal.NewFromFloat(commission),
	}
}

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestApplyFillErrors(t *testing.T) {
	t.Parallel()
	p := New(testSymbol)
	_, err := p.ApplyFill(nil, ids)
	assert.ErrorIs(t, err, common.ErrNilEvent)

	f := newFill(0, common.Buy, 1, 100, 0)
	f.Symbol = "MSFT"
	_, err = p.ApplyFill(f, ids)
	assert.ErrorIs(t, err, errSymbolMismatch)

	_, err = p.ApplyFill(newFill(0, common.Buy, 0, 100, 0), ids)
	assert.ErrorIs(t, err, errEmptyFill)

	_, err = p.ApplyFill(newFill(0, common.Buy, 1, 0, 0), ids)
	assert.ErrorIs(t, err, errNonPositive)
	assert.False(t, p.IsOpen())
}

func TestVolumeWeightedEntry(t *testing.T) {
	t.Parallel()
	p := New(testSymbol)
	_, err := p.ApplyFill(newFill(0, common.Buy, 10, 100, 0), ids)
	require.NoError(t, err)
	_, err = p.ApplyFill(newFill(1, common.Buy, 30, 104, 0), ids)
	require.NoError(t, err)
	assert.True(t, p.Quantity.Equal(dec(40)))
	assert.True(t, p.EntryPrice.Equal(dec(103)), p.EntryPrice.String())
	assert.Equal(t, tStart, p.EntryTime)

	p.UpdateValue(dec(105), tStart.Add(time.Hour))
	assert.True(t, p.UnrealisedPNL.Equal(dec(80)), p.UnrealisedPNL.String())
	assert.True(t, p.MarketValue().Equal(dec(4200)))
}

func TestLongRoundTrip(t *testing.T) {
	t.Parallel()
	p := New(testSymbol)
	_, err := p.ApplyFill(newFill(1, common.Buy, 10, 151, 0), ids)
	require.NoError(t, err)
	r, err := p.ApplyFill(newFill(3, common.Sell, 10, 153, 0), ids)
	require.NoError(t, err)
	require.NotNil(t, r.Trade)
	assert.True(t, r.RealisedGross.Equal(dec(20)))
	assert.Equal(t, common.Buy, r.Trade.Direction)
	assert.Equal(t, "trade", r.Trade.ID)
	assert.True(t, r.Trade.PNL.Equal(dec(20)))
	assert.True(t, r.Trade.EntryPrice.Equal(dec(151)))
	assert.True(t, r.Trade.ExitPrice.Equal(dec(153)))
	assert.Equal(t, 2*time.Minute, r.Trade.Holding())
	assert.True(t, r.Trade.IsWin())
	assert.False(t, p.IsOpen())
	assert.True(t, p.CostBasis.IsZero())
	assert.True(t, p.UnrealisedPNL.IsZero())
}

func TestShortRoundTrip(t *testing.T) {
	t.Parallel()
	p := New(testSymbol)
	_, err := p.ApplyFill(newFill(0, common.Sell, 5, 200, 1), ids)
	require.NoError(t, err)
	assert.True(t, p.Quantity.Equal(dec(-5)))
	assert.True(t, p.EntryPrice.Equal(dec(200)))

	p.UpdateValue(dec(190), tStart.Add(time.Minute))
	assert.True(t, p.UnrealisedPNL.Equal(dec(50)))

	r, err := p.ApplyFill(newFill(2, common.Buy, 5, 180, 1), ids)
	require.NoError(t, err)
	require.NotNil(t, r.Trade)
	assert.Equal(t, common.Sell, r.Trade.Direction)
	assert.True(t, r.Trade.GrossPNL.Equal(dec(100)))
	assert.True(t, r.Trade.Commission.Equal(dec(2)))
	assert.True(t, r.Trade.PNL.Equal(dec(98)))
}

func TestPartialReductionsFormOneTrade(t *testing.T) {
	t.Parallel()
	p := New(testSymbol)
	_, err := p.ApplyFill(newFill(0, common.Buy, 10, 100, 2), ids)
	require.NoError(t, err)

	r, err := p.ApplyFill(newFill(1, common.Sell, 4, 110, 1), ids)
	require.NoError(t, err)
	assert.Nil(t, r.Trade)
	assert.True(t, r.RealisedGross.Equal(dec(40)))
	assert.True(t, p.Quantity.Equal(dec(6)))
	assert.True(t, p.EntryPrice.Equal(dec(100)))
	assert.True(t, p.EntryCommission.Equal(dec(1.2)), p.EntryCommission.String())

	r, err = p.ApplyFill(newFill(2, common.Sell, 6, 90, 1), ids)
	require.NoError(t, err)
	require.NotNil(t, r.Trade)
	assert.True(t, r.RealisedGross.Equal(dec(-60)))
	tr := r.Trade
	assert.True(t, tr.Quantity.Equal(dec(10)))
	assert.True(t, tr.EntryPrice.Equal(dec(100)))
	assert.True(t, tr.ExitPrice.Equal(dec(98)))
	assert.True(t, tr.GrossPNL.Equal(dec(-20)))
	assert.True(t, tr.Commission.Equal(dec(4)), tr.Commission.String())
	assert.True(t, tr.PNL.Equal(dec(-24)))
	assert.False(t, tr.IsWin())
	assert.Equal(t, tStart, tr.EntryTime)
}

func TestFlipSplitsCommission(t *testing.T) {
	t.Parallel()
	p := New(testSymbol)
	_, err := p.ApplyFill(newFill(0, common.Buy, 10, 100, 1), ids)
	require.NoError(t, err)

	r, err := p.ApplyFill(newFill(5, common.Sell, 15, 110, 3), ids)
	require.NoError(t, err)
	require.NotNil(t, r.Trade)
	assert.True(t, r.Trade.Quantity.Equal(dec(10)))
	assert.True(t, r.Trade.GrossPNL.Equal(dec(100)))
	assert.True(t, r.Trade.Commission.Equal(dec(3)))
	assert.True(t, r.Trade.PNL.Equal(dec(97)))

	assert.True(t, p.Quantity.Equal(dec(-5)))
	assert.True(t, p.EntryPrice.Equal(dec(110)))
	assert.True(t, p.CostBasis.Equal(dec(-550)))
	assert.True(t, p.EntryCommission.Equal(dec(1)))
	assert.Equal(t, tStart.Add(5*time.Minute), p.EntryTime)
}

func TestTradeReturnPercent(t *testing.T) {
	t.Parallel()
	tr := Trade{EntryPrice: dec(100), Quantity: dec(2), PNL: dec(10)}
	assert.True(t, tr.ReturnPercent().Equal(dec(5)))
	assert.True(t, (&Trade{}).ReturnPercent().IsZero())
}
