// Package database loads bars from the SQL candle store
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tradebench/barsim/data"
	candlestore "github.com/tradebench/barsim/database"
	"github.com/tradebench/barsim/database/repository/candle"
	"github.com/tradebench/barsim/eventtypes/kline"
	"github.com/tradebench/barsim/log"
)

var (
	errNilDatabase     = errors.New("database instance is nil")
	errInvalidInterval = errors.New("interval must be greater than zero")
)

// Source is a data.Source over a connected candle store
type Source struct {
	db *candlestore.Instance
}

// New returns a source reading from db
func New(db *candlestore.Instance) (*Source, error) {
	if db == nil {
		return nil, errNilDatabase
	}
	return &Source{db: db}, nil
}

// Load retrieves the stored candles of symbol within [start, end]
func (s *Source) Load(ctx context.Context, symbol string, interval time.Duration, start, end time.Time) ([]*kline.Kline, error) {
	if err := data.ValidateRequest(symbol, start, end); err != nil {
		return nil, err
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %v", data.ErrInvalidRequest, errInvalidInterval)
	}
	series, err := candle.Series(ctx, s.db, symbol, interval, start, end)
	if err != nil {
		if errors.Is(err, candle.ErrNoCandleDataFound) {
			return nil, fmt.Errorf("%w: %w", data.ErrNoData, err)
		}
		return nil, err
	}
	resp := make([]*kline.Kline, len(series.Candles))
	for i := range series.Candles {
		c := &series.Candles[i]
		resp[i] = kline.New(symbol, interval, c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume)
	}
	log.Debugf(log.Data, "loaded %d bars for %v from %v database", len(resp), symbol, s.db.Dialect())
	return resp, nil
}
