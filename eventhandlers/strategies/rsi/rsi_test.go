package rsi

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventhandlers/strategies/base"
	"github.com/tradebench/barsim/eventtypes/kline"
)

func TestName(t *testing.T) {
	t.Parallel()
	d := Strategy{}
	assert.Equal(t, Name, d.Name())
	assert.NotEmpty(t, d.Description())
}

func TestSetCustomSettings(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	s.SetDefaults()
	assert.NoError(t, s.SetCustomSettings(nil))

	settings := map[string]any{
		rsiPeriodKey: float64(10),
		rsiLowKey:    float64(20),
		rsiHighKey:   float64(80),
	}
	require.NoError(t, s.SetCustomSettings(settings))
	assert.Equal(t, 10, s.rsiPeriod)
	assert.True(t, s.rsiLow.Equal(decimal.NewFromInt(20)))

	settings[rsiPeriodKey] = "fourteen"
	assert.ErrorIs(t, s.SetCustomSettings(settings), base.ErrInvalidCustomSettings)

	settings[rsiPeriodKey] = float64(14)
	settings[rsiLowKey] = float64(101)
	assert.ErrorIs(t, s.SetCustomSettings(settings), base.ErrInvalidCustomSettings)

	settings[rsiLowKey] = float64(90)
	assert.ErrorIs(t, s.SetCustomSettings(settings), base.ErrInvalidCustomSettings, "low above high")

	settings[rsiLowKey] = float64(30)
	settings["lol"] = float64(14)
	assert.ErrorIs(t, s.SetCustomSettings(settings), base.ErrInvalidCustomSettings)
}

func bars(closes ...float64) []*kline.Kline {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	resp := make([]*kline.Kline, len(closes))
	for i := range closes {
		c := decimal.NewFromFloat(closes[i])
		resp[i] = kline.New("AAPL", time.Hour, start.Add(time.Duration(i)*time.Hour), c, c, c, c, decimal.NewFromInt(100))
		resp[i].Offset = int64(i)
	}
	return resp
}

func TestOnBar(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	s.SetDefaults()
	require.NoError(t, s.SetCustomSettings(map[string]any{rsiPeriodKey: 3.0}))

	_, err := s.OnBar(nil)
	assert.ErrorIs(t, err, common.ErrNilArguments)

	sig, err := s.OnBar(bars(10, 11, 12))
	require.NoError(t, err)
	assert.Equal(t, common.DoNothing, sig.GetDirection())
	assert.Contains(t, sig.GetReason(), "Not enough data")

	sig, err = s.OnBar(bars(10, 11, 12, 13, 14, 15, 16))
	require.NoError(t, err)
	assert.Equal(t, common.Sell, sig.GetDirection(), "rising closes are overbought")

	sig, err = s.OnBar(bars(16, 15, 14, 13, 12, 11, 10))
	require.NoError(t, err)
	assert.Equal(t, common.Buy, sig.GetDirection(), "falling closes are oversold")
	assert.Contains(t, sig.GetReason(), "RSI at")
}
