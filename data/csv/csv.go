package csv

import (
	"context"
	gocsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/data"
	"github.com/tradebench/barsim/eventtypes/kline"
	"github.com/tradebench/barsim/log"
)

// New returns a CSV source reading path
func New(path string, loc *time.Location) *Source {
	return &Source{Path: path, Location: loc}
}

// Load reads the symbol's file and returns the parsed bars within
// [start, end]. Rows which cannot be parsed are skipped and reported via
// Issues.
func (s *Source) Load(ctx context.Context, symbol string, interval time.Duration, start, end time.Time) ([]*kline.Kline, error) {
	if err := data.ValidateRequest(symbol, start, end); err != nil {
		return nil, err
	}
	if s.Path == "" {
		return nil, errNoPath
	}
	file, err := s.filePath(symbol)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer func() {
		if errClose := f.Close(); errClose != nil {
			log.Errorln(log.Data, errClose)
		}
	}()

	bars, issues, err := Parse(ctx, f, symbol, interval, s.Location)
	s.m.Lock()
	s.issues = issues
	s.m.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%v: %w", file, err)
	}
	resp := bars[:0]
	for _, k := range bars {
		if data.InRange(k.Time, start, end) {
			resp = append(resp, k)
		}
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("%w for %v in %v between %v and %v", data.ErrNoData, symbol, file, start, end)
	}
	log.Debugf(log.Data, "loaded %d bars for %v from %v, skipped %d rows", len(resp), symbol, file, len(issues))
	return resp, nil
}

// Issues returns the rows skipped by the latest Load
func (s *Source) Issues() []data.Issue {
	s.m.Lock()
	defer s.m.Unlock()
	resp := make([]data.Issue, len(s.issues))
	copy(resp, s.issues)
	return resp
}

func (s *Source) filePath(symbol string) (string, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return s.Path, nil
	}
	candidates := []string{symbol + ".csv", strings.ToUpper(symbol) + ".csv", strings.ToLower(symbol) + ".csv"}
	for i := range candidates {
		p := filepath.Join(s.Path, candidates[i])
		if _, err = os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: no csv file for %v in %v", data.ErrNoData, symbol, s.Path)
}

// Parse reads bars from r. When the first row is a header its names decide
// the column order, otherwise rows are read as timestamp, volume, open, high,
// low, close. Timestamps are unix seconds, unix milliseconds or a date time
// string. Unparsable rows become issues while a malformed file is an error.
func Parse(ctx context.Context, r io.Reader, symbol string, interval time.Duration, loc *time.Location) ([]*kline.Kline, []data.Issue, error) {
	if loc == nil {
		loc = time.UTC
	}
	reader := gocsv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	cols := columns{colTimestamp, colVolume, colOpen, colHigh, colLow, colClose}
	var (
		bars   []*kline.Kline
		issues []data.Issue
	)
	for row := 1; ; row++ {
		if row%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, issues, err
			}
		}
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, issues, err
		}
		if row == 1 && isHeader(record) {
			cols, err = parseHeader(record)
			if err != nil {
				return nil, nil, err
			}
			continue
		}
		k, err := parseRow(record, cols, symbol, interval, loc)
		if err != nil {
			issues = append(issues, data.Issue{
				Kind:    data.UnparsableRow,
				Row:     row,
				Symbol:  symbol,
				Message: err.Error(),
			})
			continue
		}
		bars = append(bars, k)
	}
	return bars, issues, nil
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	_, ok := headerAliases[strings.ToLower(strings.TrimSpace(record[0]))]
	return ok
}

func parseHeader(record []string) (columns, error) {
	var cols columns
	for i := range cols {
		cols[i] = -1
	}
	for i := range record {
		if idx, ok := headerAliases[strings.ToLower(strings.TrimSpace(record[i]))]; ok && cols[idx] == -1 {
			cols[idx] = i
		}
	}
	var missing []string
	for name, idx := range map[string]int{"time": colTimestamp, "open": colOpen, "high": colHigh, "low": colLow, "close": colClose} {
		if cols[idx] == -1 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return cols, fmt.Errorf("%w: %v", errMissingColumns, strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRow(record []string, cols columns, symbol string, interval time.Duration, loc *time.Location) (*kline.Kline, error) {
	maxIdx := 0
	for i := range cols {
		if cols[i] > maxIdx {
			maxIdx = cols[i]
		}
	}
	if len(record) <= maxIdx {
		return nil, fmt.Errorf("%w: got %d", errShortRow, len(record))
	}
	ts, err := ParseTimestamp(record[cols[colTimestamp]], loc)
	if err != nil {
		return nil, err
	}
	var prices [headerlessColumns]decimal.Decimal
	for _, idx := range []int{colOpen, colHigh, colLow, colClose, colVolume} {
		if cols[idx] == -1 {
			continue
		}
		prices[idx], err = decimal.NewFromString(strings.TrimSpace(record[cols[idx]]))
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", cols[idx]+1, err)
		}
	}
	return kline.New(symbol, interval, ts,
		prices[colOpen], prices[colHigh], prices[colLow], prices[colClose], prices[colVolume]), nil
}

// ParseTimestamp reads a unix timestamp in seconds or milliseconds, or a date
// time string. Strings without a zone are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v > 1e11 || v < -1e11 {
			return time.UnixMilli(v).UTC(), nil
		}
		return time.Unix(v, 0).UTC(), nil
	}
	for i := range timeLayouts {
		if t, err := time.ParseInLocation(timeLayouts[i], s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w '%v'", errInvalidTime, s)
}
