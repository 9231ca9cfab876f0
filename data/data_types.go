package data

import (
	"context"
	"errors"
	"time"

	"github.com/tradebench/barsim/eventtypes/kline"
)

// IssueKind classifies a recovered data error
type IssueKind string

// Data issue kinds
const (
	InvalidBar     IssueKind = "invalid-bar"
	DuplicateBar   IssueKind = "duplicate-bar"
	SymbolMismatch IssueKind = "symbol-mismatch"
	OutsideRange   IssueKind = "outside-range"
	UnparsableRow  IssueKind = "unparsable-row"
)

var (
	// ErrNoData is returned when a source has no bars for a request
	ErrNoData = errors.New("no data found")
	// ErrInvalidRequest is returned for a load request missing its symbol or
	// with an inverted date range
	ErrInvalidRequest = errors.New("invalid data request")
)

// Source loads an ordered bar sequence for a symbol. Implementations should
// return bars in ascending time order without duplicates; Sanitise enforces
// this regardless.
type Source interface {
	Load(ctx context.Context, symbol string, interval time.Duration, start, end time.Time) ([]*kline.Kline, error)
}

// IssueReporter is implemented by sources that skip malformed input while
// loading so the skipped rows reach the run's diagnostics
type IssueReporter interface {
	Issues() []Issue
}

// Issue is a data error that was recovered from by excluding the bar
type Issue struct {
	Kind   IssueKind `json:"kind"`
	Time   time.Time `json:"time"`
	Symbol string    `json:"symbol"`
	// Row is the position of the bar in the loaded input, starting at 1
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Memory is a Source over bars already held in memory. The bars are never
// modified, so a Memory may be shared between concurrent runs.
type Memory struct {
	bars []*kline.Kline
}
