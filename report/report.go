package report

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/config"
	"github.com/tradebench/barsim/engine"
	"github.com/tradebench/barsim/eventhandlers/portfolio"
	"github.com/tradebench/barsim/eventhandlers/portfolio/holdings"
	"github.com/tradebench/barsim/eventhandlers/statistics"
	"github.com/tradebench/barsim/eventtypes/fill"
	"github.com/tradebench/barsim/eventtypes/order"
	"github.com/tradebench/barsim/log"
	"github.com/tradebench/barsim/optimiser"
)

// Save writes the result file to the configured output path, along with the
// trade and equity CSV exports when enabled. It returns the written paths.
func Save(res *engine.Result, s *config.ReportSettings) ([]string, error) {
	if res == nil || s == nil {
		return nil, errNilResult
	}
	if s.OutputPath == "" {
		return nil, errNoOutputPath
	}
	if err := os.MkdirAll(s.OutputPath, 0o755); err != nil {
		return nil, err
	}
	name, err := common.GenerateFileName(fmt.Sprintf("%v-%v-%v", res.MetaData.Strategy, res.Symbol, res.MetaData.ID), resultExtension)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(name, "."+resultExtension)

	resp := []string{filepath.Join(s.OutputPath, name)}
	if err = writeFile(resp[0], func(w io.Writer) error {
		return Write(w, res)
	}); err != nil {
		return nil, err
	}
	if s.WriteCSV {
		tradesPath := filepath.Join(s.OutputPath, base+"-trades.csv")
		if err = writeFile(tradesPath, func(w io.Writer) error {
			return WriteTradesCSV(w, res.Trades)
		}); err != nil {
			return resp, err
		}
		equityPath := filepath.Join(s.OutputPath, base+"-equity.csv")
		if err = writeFile(equityPath, func(w io.Writer) error {
			return WriteEquityCSV(w, res.EquityCurve)
		}); err != nil {
			return resp, err
		}
		resp = append(resp, tradesPath, equityPath)
	}
	for i := range resp {
		log.Infof(log.Report, "Wrote %v", resp[i])
	}
	return resp, nil
}

// SaveOptimisation writes a grid search result as an indented JSON document
func SaveOptimisation(res *optimiser.Result, s *config.ReportSettings) (string, error) {
	if res == nil || s == nil {
		return "", errNilResult
	}
	if s.OutputPath == "" {
		return "", errNoOutputPath
	}
	if err := os.MkdirAll(s.OutputPath, 0o755); err != nil {
		return "", err
	}
	name, err := common.GenerateFileName(fmt.Sprintf("%v-%v-optimisation", res.Strategy, res.Symbol), "json")
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.OutputPath, name)
	err = writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", " ")
		return enc.Encode(res)
	})
	if err != nil {
		return "", err
	}
	log.Infof(log.Report, "Wrote %v", path)
	return path, nil
}

func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = common.AppendError(err, f.Close())
	}()
	w := bufio.NewWriter(f)
	if err = fn(w); err != nil {
		return err
	}
	return w.Flush()
}

// Write encodes a result as JSON lines. Each line is a self describing
// record, starting with the run's meta record.
func Write(w io.Writer, res *engine.Result) error {
	if res == nil {
		return errNilResult
	}
	enc := json.NewEncoder(w)
	write := func(kind string, v any) error {
		if err := enc.Encode(record{Type: kind, Data: v}); err != nil {
			return fmt.Errorf("writing %v record: %w", kind, err)
		}
		return nil
	}
	err := write(RecordMeta, meta{
		Version:          FileVersion,
		MetaData:         res.MetaData,
		Symbol:           res.Symbol,
		Interval:         res.Interval,
		State:            res.State,
		Bars:             res.Bars,
		DiagnosticCounts: res.Diagnostics.Counts,
	})
	if err != nil {
		return err
	}
	if res.Config != nil {
		cfg := res.Config.Copy()
		if cfg.Data.Database != nil {
			cfg.Data.Database.Config.Password = ""
		}
		if err = write(RecordConfig, cfg); err != nil {
			return err
		}
	}
	for i := range res.Trades {
		if err = write(RecordTrade, res.Trades[i]); err != nil {
			return err
		}
	}
	for i := range res.EquityCurve {
		if err = write(RecordEquity, res.EquityCurve[i]); err != nil {
			return err
		}
	}
	for i := range res.Orders {
		if err = write(RecordOrder, res.Orders[i]); err != nil {
			return err
		}
	}
	for i := range res.Fills {
		if err = write(RecordFill, res.Fills[i]); err != nil {
			return err
		}
	}
	if res.Metrics != nil {
		if err = write(RecordMetrics, res.Metrics); err != nil {
			return err
		}
	}
	for i := range res.Diagnostics.Entries {
		if err = write(RecordDiagnostic, res.Diagnostics.Entries[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadResult loads a result file written by Save
func ReadResult(path string) (*engine.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a result written by Write
func Read(r io.Reader) (*engine.Result, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	resp := &engine.Result{}
	var line int
	var seenMeta bool
	for s.Scan() {
		line++
		b := bytes.TrimSpace(s.Bytes())
		if len(b) == 0 {
			continue
		}
		var rec rawRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("%w: line %v: %w", ErrMalformedResult, line, err)
		}
		switch {
		case !seenMeta && rec.Type != RecordMeta:
			return nil, fmt.Errorf("%w: %w", ErrMalformedResult, errMissingMeta)
		case seenMeta && rec.Type == RecordMeta:
			return nil, fmt.Errorf("%w: line %v: duplicate meta record", ErrMalformedResult, line)
		}
		seenMeta = true
		if err := decodeRecord(resp, &rec); err != nil {
			return nil, fmt.Errorf("%w: line %v: %w", ErrMalformedResult, line, err)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if !seenMeta {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResult, errMissingMeta)
	}
	return resp, nil
}

func decodeRecord(resp *engine.Result, rec *rawRecord) error {
	switch rec.Type {
	case RecordMeta:
		var m meta
		if err := json.Unmarshal(rec.Data, &m); err != nil {
			return err
		}
		if m.Version != FileVersion {
			return fmt.Errorf("%w %v", errUnsupportedVersion, m.Version)
		}
		resp.MetaData = m.MetaData
		resp.Symbol = m.Symbol
		resp.Interval = m.Interval
		resp.State = m.State
		resp.Bars = m.Bars
		resp.Diagnostics.Counts = m.DiagnosticCounts
	case RecordConfig:
		resp.Config = &config.Config{}
		return json.Unmarshal(rec.Data, resp.Config)
	case RecordTrade:
		var t holdings.Trade
		if err := json.Unmarshal(rec.Data, &t); err != nil {
			return err
		}
		resp.Trades = append(resp.Trades, t)
	case RecordEquity:
		var e portfolio.EquitySample
		if err := json.Unmarshal(rec.Data, &e); err != nil {
			return err
		}
		resp.EquityCurve = append(resp.EquityCurve, e)
	case RecordOrder:
		var o order.Order
		if err := json.Unmarshal(rec.Data, &o); err != nil {
			return err
		}
		resp.Orders = append(resp.Orders, o)
	case RecordFill:
		var f fill.Fill
		if err := json.Unmarshal(rec.Data, &f); err != nil {
			return err
		}
		resp.Fills = append(resp.Fills, f)
	case RecordMetrics:
		resp.Metrics = &statistics.Metrics{}
		return json.Unmarshal(rec.Data, resp.Metrics)
	case RecordDiagnostic:
		var d engine.Diagnostic
		if err := json.Unmarshal(rec.Data, &d); err != nil {
			return err
		}
		resp.Diagnostics.Entries = append(resp.Diagnostics.Entries, d)
	default:
		return fmt.Errorf("%w '%v'", errUnknownRecord, rec.Type)
	}
	return nil
}

var tradeHeader = []string{
	"id", "symbol", "side", "quantity", "entry-time", "exit-time",
	"entry-price", "exit-price", "gross-pnl", "commission", "pnl",
	"return-percent", "holding",
}

// WriteTradesCSV writes one row per closed trade
func WriteTradesCSV(w io.Writer, trades []holdings.Trade) error {
	c := csv.NewWriter(w)
	if err := c.Write(tradeHeader); err != nil {
		return err
	}
	for i := range trades {
		t := &trades[i]
		err := c.Write([]string{
			t.ID,
			t.Symbol,
			string(t.Direction),
			t.Quantity.String(),
			t.EntryTime.Format(time.RFC3339),
			t.ExitTime.Format(time.RFC3339),
			t.EntryPrice.String(),
			t.ExitPrice.String(),
			t.GrossPNL.String(),
			t.Commission.String(),
			t.PNL.String(),
			t.ReturnPercent().StringFixed(4),
			t.Holding().String(),
		})
		if err != nil {
			return err
		}
	}
	c.Flush()
	return c.Error()
}

var equityHeader = []string{
	"offset", "time", "cash", "market-value", "unrealised-pnl", "equity", "quantity",
}

// WriteEquityCSV writes one row per equity sample
func WriteEquityCSV(w io.Writer, curve []portfolio.EquitySample) error {
	c := csv.NewWriter(w)
	if err := c.Write(equityHeader); err != nil {
		return err
	}
	for i := range curve {
		e := &curve[i]
		err := c.Write([]string{
			strconv.FormatInt(e.Offset, 10),
			e.Time.Format(time.RFC3339),
			e.Cash.String(),
			e.MarketValue.String(),
			e.UnrealisedPNL.String(),
			e.Equity.String(),
			e.Quantity.String(),
		})
		if err != nil {
			return err
		}
	}
	c.Flush()
	return c.Error()
}
