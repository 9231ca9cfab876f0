package base

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventtypes/kline"
)

func TestGetBaseData(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	_, err := s.GetBaseData(nil)
	assert.ErrorIs(t, err, common.ErrNilArguments)
	_, err = s.GetBaseData([]*kline.Kline{nil})
	assert.ErrorIs(t, err, common.ErrNilEvent)

	p := decimal.NewFromInt(10)
	k := kline.New("AAPL", time.Hour, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), p, p, p, p, p)
	k.Offset = 3
	require.NoError(t, s.SetAmount(5))
	sig, err := s.GetBaseData([]*kline.Kline{k})
	require.NoError(t, err)
	assert.Equal(t, common.DoNothing, sig.GetDirection())
	assert.Equal(t, int64(3), sig.GetOffset())
	assert.True(t, sig.GetPrice().Equal(p))
	assert.True(t, sig.GetAmount().Equal(decimal.NewFromInt(5)))
}

func TestParseDecimal(t *testing.T) {
	t.Parallel()
	for _, v := range []any{1.5, float32(1.5), "1.5", decimal.NewFromFloat(1.5)} {
		d, err := ParseDecimal("k", v)
		require.NoError(t, err)
		assert.True(t, d.Equal(decimal.NewFromFloat(1.5)))
	}
	for _, v := range []any{3, int64(3), int32(3)} {
		d, err := ParseDecimal("k", v)
		require.NoError(t, err)
		assert.True(t, d.Equal(decimal.NewFromInt(3)))
	}
	_, err := ParseDecimal("k", "abc")
	assert.ErrorIs(t, err, ErrInvalidCustomSettings)
	_, err = ParseDecimal("k", true)
	assert.ErrorIs(t, err, ErrInvalidCustomSettings)
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()
	p, err := ParsePeriod("period", 14.0)
	require.NoError(t, err)
	assert.Equal(t, 14, p)
	_, err = ParsePeriod("period", 1.5)
	assert.ErrorIs(t, err, ErrInvalidCustomSettings)
	_, err = ParsePeriod("period", 0)
	assert.ErrorIs(t, err, ErrInvalidCustomSettings)
}

func TestSetAmount(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	assert.ErrorIs(t, s.SetAmount(-1), ErrInvalidCustomSettings)
	assert.ErrorIs(t, s.SetAmount("x"), ErrInvalidCustomSettings)
	require.NoError(t, s.SetAmount("2.5"))
	assert.True(t, s.GetAmount().Equal(decimal.NewFromFloat(2.5)))
}

func TestClosePrices(t *testing.T) {
	t.Parallel()
	p := decimal.NewFromFloat(1.25)
	k := kline.New("AAPL", time.Hour, time.Now(), p, p, p, p, p)
	assert.Equal(t, []float64{1.25, 1.25}, ClosePrices([]*kline.Kline{k, k}))
	assert.ErrorIs(t, UnrecognisedSetting("x", 1), ErrInvalidCustomSettings)
	assert.Equal(t, "1.2500", FormatFloat(1.25))
}
