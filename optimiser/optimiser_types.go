package optimiser

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/config"
	"github.com/tradebench/barsim/data"
	"github.com/tradebench/barsim/eventhandlers/statistics"
)

// Ranking metrics
const (
	Sharpe           = "sharpe"
	Sortino          = "sortino"
	Calmar           = "calmar"
	TotalReturn      = "total-return"
	AnnualisedReturn = "annualised-return"
	ProfitFactor     = "profit-factor"
	WinRate          = "win-rate"
	Expectancy       = "expectancy"
	// MaxDrawdown ranks lower values first
	MaxDrawdown = "max-drawdown"
)

// Segment names the part of the data a trial ran on
type Segment string

// Segments
const (
	InSample    Segment = "in-sample"
	OutOfSample Segment = "out-of-sample"
)

var (
	errNilConfig       = errors.New("config is nil")
	errNilSource       = errors.New("data source is nil")
	errEmptyGrid       = errors.New("parameter grid is empty")
	errNoValues        = errors.New("grid parameter has no values")
	errDuplicateValue  = errors.New("grid parameter has duplicate values")
	errUnknownMetric   = errors.New("unknown ranking metric")
	errInvalidRatio    = errors.New("in sample ratio must be between 0 and 1")
	errNotEnoughBars   = errors.New("not enough bars to split into in and out of sample segments")
	errNoSuccessfulRun = errors.New("every trial failed")
)

// Grid maps a strategy setting to the values to try
type Grid map[string][]any

// Combination is one point of a grid. Index is its position in the
// enumeration order and breaks ranking ties.
type Combination struct {
	Index      int            `json:"index"`
	Parameters map[string]any `json:"parameters"`
}

// Trial is a single engine run of a combination
type Trial struct {
	Combination
	Segment Segment             `json:"segment"`
	Bars    int64               `json:"bars"`
	Trades  int                 `json:"trades"`
	Metrics *statistics.Metrics `json:"metrics,omitempty"`
	Score   decimal.Decimal     `json:"score"`
	Error   string              `json:"error,omitempty"`
}

// Candidate is a top ranked combination re-run on the out of sample segment
type Candidate struct {
	Rank        int   `json:"rank"`
	InSample    Trial `json:"in-sample"`
	OutOfSample Trial `json:"out-of-sample"`
	// Ratio is the in sample score over the out of sample score, inverted
	// for metrics where lower is better
	Ratio   decimal.Decimal `json:"ratio"`
	Overfit bool            `json:"overfit"`
}

// Result holds every trial of a grid search along with the ranked candidates
type Result struct {
	Strategy         string      `json:"strategy"`
	Symbol           string      `json:"symbol"`
	RankBy           string      `json:"rank-by"`
	InSampleBars     int         `json:"in-sample-bars"`
	OutOfSampleBars  int         `json:"out-of-sample-bars"`
	OutOfSampleStart time.Time   `json:"out-of-sample-start"`
	Trials           []Trial     `json:"trials"`
	Failed           int         `json:"failed"`
	Candidates       []Candidate `json:"candidates"`
	// Issues lists the bars excluded before the data was split
	Issues []data.Issue `json:"issues,omitempty"`
}

// Optimiser runs a grid search over the configured strategy. Trials share
// the loaded bars read only; each builds its own engine, portfolio and
// strategy.
type Optimiser struct {
	cfg          *config.Config
	source       data.Source
	combinations []Combination
	rankBy       string
	workers      int
}
