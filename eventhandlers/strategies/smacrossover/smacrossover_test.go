package smacrossover

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

func bars(closes ...float64) []*kline.Kline {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	resp := make([]*kline.Kline, len(closes))
	for i := range closes {
		c := decimal.NewFromFloat(closes[i])
		resp[i] = kline.New("AAPL", time.Hour, start.Add(time.Duration(i)*time.Hour), c, c, c, c, decimal.NewFromInt(100))
	}
	return resp
}

func TestName(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	assert.Equal(t, Name, s.Name())
	assert.NotEmpty(t, s.Description())
}

func TestSetCustomSettings(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	s.SetDefaults()
	require.NoError(t, s.SetCustomSettings(map[string]any{fastPeriodKey: 2, slowPeriodKey: 4, maTypeKey: "EMA"}))
	assert.Equal(t, 2, s.fastPeriod)
	assert.Equal(t, 4, s.slowPeriod)
	assert.Equal(t, exponential, s.maType)

	assert.ErrorIs(t, s.SetCustomSettings(map[string]any{maTypeKey: "wma"}), base.ErrInvalidCustomSettings)
	assert.ErrorIs(t, s.SetCustomSettings(map[string]any{maTypeKey: 1}), base.ErrInvalidCustomSettings)
	assert.ErrorIs(t, s.SetCustomSettings(map[string]any{fastPeriodKey: 5}), base.ErrInvalidCustomSettings, "fast must be shorter")
	assert.ErrorIs(t, s.SetCustomSettings(map[string]any{"lol": 5}), base.ErrInvalidCustomSettings)
}

func TestOnBar(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	s.SetDefaults()
	require.NoError(t, s.SetCustomSettings(map[string]any{fastPeriodKey: 2, slowPeriodKey: 3}))

	_, err := s.OnBar(nil)
	assert.ErrorIs(t, err, common.ErrNilArguments)

	sig, err := s.OnBar(bars(10, 10, 10))
	require.NoError(t, err)
	assert.Equal(t, common.DoNothing, sig.GetDirection())

	// fast 10 vs slow 10, then fast 15 vs slow 13.33
	sig, err = s.OnBar(bars(10, 10, 10, 10, 20))
	require.NoError(t, err)
	assert.Equal(t, common.Buy, sig.GetDirection())

	sig, err = s.OnBar(bars(10, 10, 10, 10, 20, 21))
	require.NoError(t, err)
	assert.Equal(t, common.DoNothing, sig.GetDirection(), "no cross while trending")

	sig, err = s.OnBar(bars(20, 20, 20, 20, 10))
	require.NoError(t, err)
	assert.Equal(t, common.Sell, sig.GetDirection())
	assert.Contains(t, sig.GetReason(), "SMA")
}
