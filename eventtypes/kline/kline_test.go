package kline

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradebench/barsim/eventtypes/event"
)

var tt = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

func bar(o, h, l, c, v int64) *Kline {
	return New("AAPL", time.Minute, tt,
		decimal.NewFromInt(o), decimal.NewFromInt(h), decimal.NewFromInt(l), decimal.NewFromInt(c), decimal.NewFromInt(v))
}

func TestGetters(t *testing.T) {
	t.Parallel()
	k := bar(10, 12, 9, 11, 100)
	assert.True(t, k.IsKline())
	assert.True(t, k.GetOpenPrice().Equal(decimal.NewFromInt(10)))
	assert.True(t, k.GetHighPrice().Equal(decimal.NewFromInt(12)))
	assert.True(t, k.GetLowPrice().Equal(decimal.NewFromInt(9)))
	assert.True(t, k.GetClosePrice().Equal(decimal.NewFromInt(11)))
	assert.True(t, k.GetVolume().Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "AAPL", k.GetSymbol())
	assert.Equal(t, tt, k.GetTime())
}

func TestRange(t *testing.T) {
	t.Parallel()
	k := bar(10, 12, 9, 10, 100)
	assert.True(t, k.Range().Equal(decimal.NewFromFloat(0.3)))
	k.Close = decimal.Zero
	assert.True(t, k.Range().IsZero())
}

func TestValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, bar(10, 12, 9, 11, 100).Validate())
	require.NoError(t, bar(10, 10, 10, 10, 0).Validate(), "flat zero volume bar is valid")

	for _, tc := range []struct {
		name string
		k    *Kline
		err  error
	}{
		{"nil base", &Kline{}, errNilBase},
		{"zero time", &Kline{Base: &event.Base{Symbol: "AAPL"}}, errMissingTime},
		{"zero price", bar(0, 12, 9, 11, 100), errNonPositivePrice},
		{"negative volume", bar(10, 12, 9, 11, -1), errNegativeVolume},
		{"high below close", bar(10, 10, 9, 11, 100), errHighBelowRange},
		{"low above open", bar(10, 12, 11, 11, 100), errLowAboveRange},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.k.Validate()
			assert.True(t, errors.Is(err, ErrInvalidBar))
			assert.ErrorContains(t, err, tc.err.Error())
		})
	}
}
