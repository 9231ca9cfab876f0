package csv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradebench/barsim/data"
)

const headerless = `1704153600,1000,150,151,149,150
1704240000,1100,150,152,150,151
not-a-time,1,1,1,1,1
1704326400,900,151,153,bad,152
1704412800,1200,152,153,150,150.5
`

const withHeader = `date,open,high,low,close,volume
2024-01-02,150,151,149,150,1000
2024-01-03,150,152,150,151,1100
2024-01-04,151,153
`

func TestParseHeaderless(t *testing.T) {
	t.Parallel()
	bars, issues, err := Parse(context.Background(), strings.NewReader(headerless), "AAPL", 24*time.Hour, nil)
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Time)
	assert.True(t, bars[0].Volume.Equal(decimal.NewFromInt(1000)))
	assert.True(t, bars[2].Close.Equal(decimal.RequireFromString("150.5")))
	assert.Equal(t, "AAPL", bars[1].Symbol)

	require.Len(t, issues, 2)
	assert.Equal(t, 3, issues[0].Row)
	assert.Equal(t, data.UnparsableRow, issues[0].Kind)
	assert.Contains(t, issues[0].Message, errInvalidTime.Error())
	assert.Equal(t, 4, issues[1].Row)
}

func TestParseWithHeader(t *testing.T) {
	t.Parallel()
	bars, issues, err := Parse(context.Background(), strings.NewReader(withHeader), "AAPL", 24*time.Hour, time.UTC)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, bars[1].Open.Equal(decimal.NewFromInt(150)))
	assert.True(t, bars[1].Volume.Equal(decimal.NewFromInt(1100)))
	require.Len(t, issues, 1)
	assert.Equal(t, 4, issues[0].Row)

	_, _, err = Parse(context.Background(), strings.NewReader("date,open,close\n"), "AAPL", time.Hour, nil)
	assert.ErrorIs(t, err, errMissingColumns)
	assert.ErrorContains(t, err, "high, low")
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	ts, err := ParseTimestamp("1704153600", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1704153600), ts.Unix())

	ts, err = ParseTimestamp("1704153600000", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1704153600), ts.Unix())

	ts, err = ParseTimestamp("2024-01-02 09:30:00", ny)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC), ts.UTC())

	ts, err = ParseTimestamp("2024-01-02T09:30:00Z", ny)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC), ts.UTC())

	_, err = ParseTimestamp("yesterday", nil)
	assert.ErrorIs(t, err, errInvalidTime)
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL.csv"), []byte(headerless), 0o600))

	s := New(dir, nil)
	bars, err := s.Load(context.Background(), "AAPL", 24*time.Hour, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), time.Time{})
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Len(t, s.Issues(), 2)

	_, err = s.Load(context.Background(), "MSFT", 24*time.Hour, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, data.ErrNoData)

	_, err = s.Load(context.Background(), "AAPL", 24*time.Hour, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), time.Time{})
	assert.ErrorIs(t, err, data.ErrNoData)

	single := New(filepath.Join(dir, "AAPL.csv"), nil)
	bars, err = single.Load(context.Background(), "AAPL", 24*time.Hour, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, bars, 3)

	_, err = New("", nil).Load(context.Background(), "AAPL", time.Hour, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, errNoPath)
}
