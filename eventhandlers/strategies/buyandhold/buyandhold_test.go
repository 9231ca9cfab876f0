package buyandhold

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
	s := Strategy{}
	assert.Equal(t, Name, s.Name())
	assert.NotEmpty(t, s.Description())
}

func TestSetCustomSettings(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	assert.NoError(t, s.SetCustomSettings(nil))
	assert.NoError(t, s.SetCustomSettings(map[string]any{base.AmountKey: 10.0}))
	assert.True(t, s.GetAmount().Equal(decimal.NewFromInt(10)))
	assert.ErrorIs(t, s.SetCustomSettings(map[string]any{"lol": 1.0}), base.ErrInvalidCustomSettings)
}

func TestOnBar(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	_, err := s.OnBar(nil)
	assert.ErrorIs(t, err, common.ErrNilArguments)

	p := decimal.NewFromInt(100)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	history := []*kline.Kline{kline.New("AAPL", time.Hour, start, p, p, p, p, p)}
	sig, err := s.OnBar(history)
	require.NoError(t, err)
	assert.Equal(t, common.Buy, sig.GetDirection())

	history = append(history, kline.New("AAPL", time.Hour, start.Add(time.Hour), p, p, p, p, p))
	sig, err = s.OnBar(history)
	require.NoError(t, err)
	assert.Equal(t, common.DoNothing, sig.GetDirection())
}
