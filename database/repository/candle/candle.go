package candle

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/tradebench/barsim/data/csv"
	"github.com/tradebench/barsim/database"
	"github.com/tradebench/barsim/log"
)

const timeFormat = time.RFC3339

// Series returns the stored candles of symbol within [start, end] ordered by
// time. Zero start or end leaves that side of the range open.
func Series(ctx context.Context, db *database.Instance, symbol string, interval time.Duration, start, end time.Time) (out Item, err error) {
	if symbol == "" || interval <= 0 {
		return out, errInvalidInput
	}
	con, err := db.GetSQL()
	if err != nil {
		return out, err
	}
	sqlite := db.Dialect() == database.DBSQLite3
	query := "SELECT id, bar_time, open, high, low, close, volume FROM candle WHERE symbol = ? AND interval_seconds = ?"
	args := []any{strings.ToUpper(symbol), int64(interval / time.Second)}
	if !start.IsZero() {
		query += " AND bar_time >= ?"
		args = append(args, timeArg(start, sqlite))
	}
	if !end.IsZero() {
		query += " AND bar_time <= ?"
		args = append(args, timeArg(end, sqlite))
	}
	query = db.Rebind(query + " ORDER BY bar_time")
	db.LogQuery(query, args...)

	rows, err := con.QueryContext(ctx, query, args...)
	if err != nil {
		return out, err
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Errorln(log.Database, errClose)
		}
	}()

	out.Symbol = strings.ToUpper(symbol)
	out.Interval = interval
	for rows.Next() {
		var (
			c  Candle
			ts any
		)
		if err = rows.Scan(&c.ID, &ts, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return out, err
		}
		c.Timestamp, err = scanTime(ts)
		if err != nil {
			return out, fmt.Errorf("candle %v: %w", c.ID, err)
		}
		out.Candles = append(out.Candles, c)
	}
	if err = rows.Err(); err != nil {
		return out, err
	}
	if len(out.Candles) == 0 {
		return out, fmt.Errorf("%w for %v %v between %v and %v", ErrNoCandleDataFound, symbol, interval, start, end)
	}
	return out, nil
}

// Insert stores the item's candles, replacing the prices of any candle
// already stored for the same symbol, interval and time. It returns the
// number of candles written.
func Insert(ctx context.Context, db *database.Instance, in *Item) (uint64, error) {
	if in == nil || len(in.Candles) == 0 {
		return 0, errNoCandleData
	}
	if in.Symbol == "" || in.Interval <= 0 {
		return 0, errInvalidInput
	}
	con, err := db.GetSQL()
	if err != nil {
		return 0, err
	}
	sqlite := db.Dialect() == database.DBSQLite3
	query := db.Rebind(`INSERT INTO candle (id, symbol, interval_seconds, bar_time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, interval_seconds, bar_time) DO UPDATE SET
		open = excluded.open, high = excluded.high, low = excluded.low, close = excluded.close, volume = excluded.volume`)
	db.LogQuery(query)

	tx, err := con.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if errRB := tx.Rollback(); errRB != nil {
				log.Errorf(log.Database, "Insert tx.Rollback %v", errRB)
			}
		}
	}()
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer func() {
		if errClose := stmt.Close(); errClose != nil {
			log.Errorln(log.Database, errClose)
		}
	}()

	symbol := strings.ToUpper(in.Symbol)
	seconds := int64(in.Interval / time.Second)
	var count uint64
	for x := range in.Candles {
		c := &in.Candles[x]
		var id uuid.UUID
		id, err = uuid.NewV4()
		if err != nil {
			return 0, err
		}
		if _, err = stmt.ExecContext(ctx, id.String(), symbol, seconds, timeArg(c.Timestamp, sqlite),
			c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			return 0, fmt.Errorf("candle %v %v: %w", symbol, c.Timestamp, err)
		}
		count++
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteCandles removes every stored candle of symbol and interval
func DeleteCandles(ctx context.Context, db *database.Instance, symbol string, interval time.Duration) (int64, error) {
	if symbol == "" || interval <= 0 {
		return 0, errInvalidInput
	}
	con, err := db.GetSQL()
	if err != nil {
		return 0, err
	}
	query := db.Rebind("DELETE FROM candle WHERE symbol = ? AND interval_seconds = ?")
	db.LogQuery(query)
	res, err := con.ExecContext(ctx, query, strings.ToUpper(symbol), int64(interval/time.Second))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// InsertFromCSV reads candles from a CSV file and stores them. Rows which
// cannot be parsed or fail bar validation are logged and skipped.
func InsertFromCSV(ctx context.Context, db *database.Instance, symbol string, interval time.Duration, file string, loc *time.Location) (uint64, error) {
	if symbol == "" || interval <= 0 {
		return 0, errInvalidInput
	}
	f, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer func() {
		if errClose := f.Close(); errClose != nil {
			log.Errorln(log.Database, errClose)
		}
	}()

	bars, issues, err := csv.Parse(ctx, f, symbol, interval, loc)
	if err != nil {
		return 0, err
	}
	for x := range issues {
		log.Warnf(log.Database, "%v: skipping %v", file, issues[x])
	}
	item := &Item{Symbol: symbol, Interval: interval}
	for x := range bars {
		if err = bars[x].Validate(); err != nil {
			log.Warnf(log.Database, "%v: skipping row %d: %v", file, x+1, err)
			continue
		}
		item.Candles = append(item.Candles, Candle{
			Timestamp: bars[x].Time,
			Open:      bars[x].Open,
			High:      bars[x].High,
			Low:       bars[x].Low,
			Close:     bars[x].Close,
			Volume:    bars[x].Volume,
		})
	}
	return Insert(ctx, db, item)
}

func timeArg(t time.Time, sqlite bool) any {
	if sqlite {
		return t.UTC().Format(timeFormat)
	}
	return t.UTC()
}

func scanTime(v any) (time.Time, error) {
	switch ts := v.(type) {
	case time.Time:
		return ts.UTC(), nil
	case string:
		return time.Parse(timeFormat, ts)
	case []byte:
		return time.Parse(timeFormat, string(ts))
	}
	return time.Time{}, fmt.Errorf("%w %T", errUnsupportedTimestamp, v)
}
