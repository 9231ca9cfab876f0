package report

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/tradebench/barsim/engine"
)

// FileVersion is written to the meta record of every result file
const FileVersion = 1

// Record types of a result file
const (
	RecordMeta       = "meta"
	RecordConfig     = "config"
	RecordTrade      = "trade"
	RecordEquity     = "equity"
	RecordOrder      = "order"
	RecordFill       = "fill"
	RecordMetrics    = "metrics"
	RecordDiagnostic = "diagnostic"
)

const (
	resultExtension = "jsonl"
	maxLineSize     = 16 * 1024 * 1024
)

var (
	// ErrMalformedResult is returned when a result file cannot be read back
	ErrMalformedResult = errors.New("malformed result file")

	errNilResult          = errors.New("result is nil")
	errNoOutputPath       = errors.New("report output path is empty")
	errUnknownRecord      = errors.New("unknown record type")
	errMissingMeta        = errors.New("result file does not start with a meta record")
	errUnsupportedVersion = errors.New("unsupported result file version")
)

// record is one line of a result file
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type rawRecord struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// meta holds the run level fields of a result
type meta struct {
	Version int `json:"version"`
	engine.MetaData
	Symbol           string                          `json:"symbol"`
	Interval         time.Duration                   `json:"interval"`
	State            engine.State                    `json:"state"`
	Bars             int64                           `json:"bars"`
	DiagnosticCounts map[engine.DiagnosticKind]int64 `json:"diagnostic-counts"`
}
