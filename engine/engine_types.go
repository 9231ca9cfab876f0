package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/tradebench/barsim/config"
	"github.com/tradebench/barsim/data"
	"github.com/tradebench/barsim/eventhandlers/clock"
	"github.com/tradebench/barsim/eventhandlers/exchange"
	"github.com/tradebench/barsim/eventhandlers/exchange/commission"
	"github.com/tradebench/barsim/eventhandlers/portfolio"
	"github.com/tradebench/barsim/eventhandlers/portfolio/holdings"
	"github.com/tradebench/barsim/eventhandlers/portfolio/risk"
	"github.com/tradebench/barsim/eventhandlers/portfolio/size"
	"github.com/tradebench/barsim/eventhandlers/statistics"
	"github.com/tradebench/barsim/eventhandlers/strategies"
	"github.com/tradebench/barsim/eventtypes/fill"
	"github.com/tradebench/barsim/eventtypes/kline"
	"github.com/tradebench/barsim/eventtypes/order"
)

// State is the lifecycle of a run
type State string

// Run states
const (
	Initialising State = "INITIALISING"
	Running      State = "RUNNING"
	Completed    State = "COMPLETED"
	Failed       State = "FAILED"
)

var (
	// ErrStopped is returned when a run is aborted with Stop
	ErrStopped = errors.New("backtest stopped")

	errAlreadyRan   = errors.New("run already ran")
	errRunIsRunning = errors.New("run is already running")
	errNilConfig    = errors.New("config is nil")
	errNilSource    = errors.New("data source is nil")
	errNoBars       = errors.New("no valid bars to replay")
)

// DiagnosticKind names a recovered problem
type DiagnosticKind string

// Diagnostic kinds raised by the data package
const (
	InvalidBar     = DiagnosticKind(data.InvalidBar)
	DuplicateBar   = DiagnosticKind(data.DuplicateBar)
	SymbolMismatch = DiagnosticKind(data.SymbolMismatch)
	OutsideRange   = DiagnosticKind(data.OutsideRange)
	UnparsableRow  = DiagnosticKind(data.UnparsableRow)
)

// Diagnostic kinds raised during the replay
const (
	Gap                   DiagnosticKind = "gap"
	OutsideSession        DiagnosticKind = "outside-session"
	RiskRejection         DiagnosticKind = "risk-rejection"
	PreconditionRejection DiagnosticKind = "precondition-rejection"
	SizingRejection       DiagnosticKind = "sizing-rejection"
	InvalidSignal         DiagnosticKind = "invalid-signal"
	CancelledOrder        DiagnosticKind = "cancelled-order"
	StrategyError         DiagnosticKind = "strategy-error"
	// StrategyNoOp is counted but not recorded
	StrategyNoOp DiagnosticKind = "strategy-no-op"
)

// Diagnostic is a single recovered problem
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Time    time.Time      `json:"time"`
	Symbol  string         `json:"symbol"`
	Offset  int64          `json:"offset,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Diagnostics counts every recovered problem of a run
type Diagnostics struct {
	Entries []Diagnostic             `json:"entries"`
	Counts  map[DiagnosticKind]int64 `json:"counts"`
}

// MetaData describes a run. It is not part of the deterministic payload.
type MetaData struct {
	ID          uuid.UUID `json:"id"`
	Strategy    string    `json:"strategy"`
	Nickname    string    `json:"nickname,omitempty"`
	DateLoaded  time.Time `json:"date-loaded"`
	DateStarted time.Time `json:"date-started"`
	DateEnded   time.Time `json:"date-ended"`
}

// Result is everything a run produced
type Result struct {
	MetaData    MetaData                 `json:"meta"`
	Config      *config.Config           `json:"config"`
	Symbol      string                   `json:"symbol"`
	Interval    time.Duration            `json:"interval"`
	State       State                    `json:"state"`
	Trades      []holdings.Trade         `json:"trades"`
	EquityCurve []portfolio.EquitySample `json:"equity-curve"`
	Orders      []order.Order            `json:"orders"`
	Fills       []fill.Fill              `json:"fills"`
	Metrics     *statistics.Metrics      `json:"metrics"`
	Diagnostics Diagnostics              `json:"diagnostics"`
	Bars        int64                    `json:"bars"`
}

// Option customises a BackTest
type Option func(*BackTest)

// BackTest replays the bars of one symbol through a strategy. Each run owns
// its portfolio, order book and strategy instance.
type BackTest struct {
	MetaData MetaData

	cfg        *config.Config
	source     data.Source
	strategy   strategies.Handler
	clock      *clock.Clock
	exchange   exchange.ExecutionHandler
	portfolio  *portfolio.Portfolio
	risk       risk.Checker
	sizer      *size.Size
	commission commission.Model
	statistics statistics.Settings
	timeNow    func() time.Time

	idNamespace uuid.UUID
	symbol      string
	interval    time.Duration

	// run state
	history     []*kline.Kline
	pending     []*order.Order
	orders      []*order.Order
	fills       []fill.Fill
	diagnostics Diagnostics
	orderCount  int64

	m        sync.Mutex
	state    State
	shutdown chan struct{}
	stopOnce sync.Once
}
