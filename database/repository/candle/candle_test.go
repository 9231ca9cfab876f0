package candle

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradebench/barsim/database"
)

var tt = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func testDB(t *testing.T) *database.Instance {
	t.Helper()
	db, err := database.Connect(context.Background(), &database.Config{
		Enabled:  true,
		Driver:   database.DBSQLite3,
		Database: "candle.db",
	}, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.CloseConnection())
	})
	return db
}

func genCandles(closes ...string) []Candle {
	resp := make([]Candle, len(closes))
	for i := range closes {
		c := decimal.RequireFromString(closes[i])
		resp[i] = Candle{
			Timestamp: tt.AddDate(0, 0, i),
			Open:      c,
			High:      c.Add(decimal.NewFromInt(1)),
			Low:       c.Sub(decimal.NewFromInt(1)),
			Close:     c,
			Volume:    decimal.NewFromInt(1000),
		}
	}
	return resp
}

func TestInsertAndSeries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testDB(t)

	_, err := Insert(ctx, db, nil)
	assert.ErrorIs(t, err, errNoCandleData)
	_, err = Insert(ctx, db, &Item{Interval: time.Hour, Candles: genCandles("1")})
	assert.ErrorIs(t, err, errInvalidInput)

	n, err := Insert(ctx, db, &Item{Symbol: "aapl", Interval: 24 * time.Hour, Candles: genCandles("150", "151", "152", "150.5", "153")})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)

	_, err = Series(ctx, db, "AAPL", 0, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, errInvalidInput)
	_, err = Series(ctx, db, "AAPL", time.Hour, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrNoCandleDataFound)

	out, err := Series(ctx, db, "AAPL", 24*time.Hour, tt.AddDate(0, 0, 1), tt.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, out.Candles, 3)
	assert.Equal(t, tt.AddDate(0, 0, 1), out.Candles[0].Timestamp)
	assert.True(t, out.Candles[2].Close.Equal(decimal.RequireFromString("150.5")), "prices are stored exactly")
	assert.NotEmpty(t, out.Candles[0].ID)

	// replacing a stored candle updates its prices in place
	replacement := genCandles("160")
	_, err = Insert(ctx, db, &Item{Symbol: "AAPL", Interval: 24 * time.Hour, Candles: replacement})
	require.NoError(t, err)
	out, err = Series(ctx, db, "aapl", 24*time.Hour, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, out.Candles, 5)
	assert.True(t, out.Candles[0].Close.Equal(decimal.NewFromInt(160)))

	deleted, err := DeleteCandles(ctx, db, "AAPL", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)
	_, err = Series(ctx, db, "AAPL", 24*time.Hour, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrNoCandleDataFound)
}

func TestInsertFromCSV(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testDB(t)
	file := filepath.Join(t.TempDir(), "aapl.csv")
	require.NoError(t, os.WriteFile(file, []byte(`1704153600,1000,150,151,149,150
1704240000,1100,150,152,150,151
1704326400,900,151,153,155,152
garbage
`), 0o600))

	_, err := InsertFromCSV(ctx, db, "", time.Hour, file, nil)
	assert.ErrorIs(t, err, errInvalidInput)
	_, err = InsertFromCSV(ctx, db, "AAPL", 24*time.Hour, filepath.Join(t.TempDir(), "missing.csv"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	n, err := InsertFromCSV(ctx, db, "AAPL", 24*time.Hour, file, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n, "invalid and unparsable rows are skipped")

	out, err := Series(ctx, db, "AAPL", 24*time.Hour, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, out.Candles, 2)
	assert.True(t, out.Candles[1].Volume.Equal(decimal.NewFromInt(1100)))
}

func TestNotConnected(t *testing.T) {
	t.Parallel()
	_, err := Series(context.Background(), &database.Instance{}, "AAPL", time.Hour, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, database.ErrNotConnected)
}
