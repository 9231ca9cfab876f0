package config

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/database"
	"github.com/tradebench/barsim/eventhandlers/exchange/liquidity"
	"github.com/tradebench/barsim/eventhandlers/exchange/slippage"
	"github.com/tradebench/barsim/log"
)

// EnvPrefix prefixes every environment variable override, for example
// BARSIM_PORTFOLIO_INITIAL_CAPITAL
const EnvPrefix = "BARSIM"

// Data sources
const (
	CSVSource      = "csv"
	DatabaseSource = "database"
)

const day = 24 * time.Hour

var (
	// ErrInvalidConfig wraps every configuration error
	ErrInvalidConfig = errors.New("invalid config")

	errFileNotFound          = errors.New("file not found")
	errNoStrategy            = errors.New("strategy name not set")
	errSymbolUnset           = errors.New("data symbol not set")
	errStartEndUnset         = errors.New("data start and end dates must be set")
	errBadDate               = errors.New("start date must be before end date")
	errInvalidInterval       = errors.New("invalid interval")
	errUnknownDataSource     = errors.New("unknown data source")
	errDataPathUnset         = errors.New("data path not set")
	errBadInitialFunds       = errors.New("initial capital must be greater than zero")
	errInvalidSessionTime    = errors.New("invalid session time, expected HH:MM")
	errInvalidWeekday        = errors.New("invalid weekday")
	errInvalidHoliday        = errors.New("invalid holiday date, expected YYYY-MM-DD")
	errInvalidRatio          = errors.New("in sample ratio must be between 0 and 1")
	errInvalidThreshold      = errors.New("overfit threshold must be greater than 1")
	errInvalidTopN           = errors.New("top n must be at least 1")
	errInvalidWorkers        = errors.New("workers cannot be negative")
	errInvalidAverageVolume  = errors.New("average volume bars cannot be negative")
	errUnsupportedConfigType = errors.New("unsupported config type")
)

// Config defines a single backtest run and optionally the grid search around
// it. A Config is read once and passed into each run; nothing in it is global.
type Config struct {
	Nickname   string             `json:"nickname"`
	Goal       string             `json:"goal"`
	Strategy   StrategySettings   `json:"strategy"`
	Data       DataSettings       `json:"data"`
	Session    SessionSettings    `json:"session"`
	Portfolio  PortfolioSettings  `json:"portfolio"`
	Exchange   ExchangeSettings   `json:"exchange"`
	Statistics StatisticsSettings `json:"statistics"`
	Optimiser  OptimiserSettings  `json:"optimiser"`
	Report     ReportSettings     `json:"report"`
	Logging    log.Config         `json:"logging"`
}

// StrategySettings names the strategy and its parameters
type StrategySettings struct {
	Name           string         `json:"name"`
	CustomSettings map[string]any `json:"custom-settings,omitempty"`
}

// DataSettings defines the bars a run replays
type DataSettings struct {
	Symbol    string    `json:"symbol"`
	Interval  Interval  `json:"interval"`
	StartDate time.Time `json:"start-date"`
	EndDate   time.Time `json:"end-date"`
	// Source is csv or database
	Source   string        `json:"source"`
	CSV      *CSVData      `json:"csv,omitempty"`
	Database *DatabaseData `json:"database,omitempty"`
}

// CSVData points to a CSV file or a directory of <symbol>.csv files
type CSVData struct {
	Path string `json:"path"`
}

// DatabaseData defines the candle store to read from
type DatabaseData struct {
	Config   database.Config `json:"config"`
	DataPath string          `json:"data-path"`
}

// SessionSettings describes the exchange calendar. Times are HH:MM in
// Timezone; equal open and close times describe a 24 hour session.
type SessionSettings struct {
	Timezone string `json:"timezone"`
	Open     string `json:"open"`
	Close    string `json:"close"`
	// Weekend lists non trading weekdays, Saturday and Sunday when empty
	Weekend       []string `json:"weekend,omitempty"`
	TradeWeekends bool     `json:"trade-weekends"`
	Holidays      []string `json:"holidays,omitempty"`
}

// PortfolioSettings holds the account and order sizing rules
type PortfolioSettings struct {
	InitialCapital decimal.Decimal `json:"initial-capital"`
	AllowShort     bool            `json:"allow-short"`
	AllowMargin    bool            `json:"allow-margin"`
	Sizing         SizingSettings  `json:"sizing"`
	Risk           RiskSettings    `json:"risk"`
}

// SizingSettings converts signals into quantities
type SizingSettings struct {
	Mode            string          `json:"mode"`
	FixedQuantity   decimal.Decimal `json:"fixed-quantity"`
	EquityPercent   decimal.Decimal `json:"equity-percent"`
	Precision       int32           `json:"precision"`
	MinimumQuantity decimal.Decimal `json:"minimum-quantity"`
}

// RiskSettings holds the default risk check limits, zero disables a limit
type RiskSettings struct {
	MaximumPositionSize decimal.Decimal `json:"maximum-position-size"`
	MaximumOrderValue   decimal.Decimal `json:"maximum-order-value"`
	MaximumExposure     decimal.Decimal `json:"maximum-exposure"`
}

// ExchangeSettings holds the execution cost models
type ExchangeSettings struct {
	Slippage   slippage.Model     `json:"slippage"`
	Commission CommissionSettings `json:"commission"`
	Liquidity  liquidity.Model    `json:"liquidity"`
	ClampToBar bool               `json:"clamp-to-bar"`
	// AverageVolumeBars is the trailing window feeding the size term of
	// slippage, zero disables the size term
	AverageVolumeBars int `json:"average-volume-bars"`
}

// CommissionSettings selects a commission policy
type CommissionSettings struct {
	Model   string          `json:"model"`
	Rate    decimal.Decimal `json:"rate"`
	Minimum decimal.Decimal `json:"minimum"`
}

// StatisticsSettings controls the performance metrics
type StatisticsSettings struct {
	RiskFreeRate   decimal.Decimal `json:"risk-free-rate"`
	ReturnPeriod   string          `json:"return-period"`
	PeriodsPerYear decimal.Decimal `json:"periods-per-year"`
}

// OptimiserSettings defines a grid search. Grid maps a strategy setting to
// the values to try.
type OptimiserSettings struct {
	Grid             map[string][]any `json:"grid,omitempty"`
	InSampleRatio    decimal.Decimal  `json:"in-sample-ratio"`
	RankBy           string           `json:"rank-by"`
	TopN             int              `json:"top-n"`
	OverfitThreshold decimal.Decimal  `json:"overfit-threshold"`
	Workers          int              `json:"workers"`
}

// ReportSettings decides where results are written
type ReportSettings struct {
	OutputPath   string `json:"output-path"`
	WriteCSV     bool   `json:"write-csv"`
	PrintSummary bool   `json:"print-summary"`
}

// Interval is a bar duration which reads from strings such as 5m, 1h or 1d
type Interval time.Duration
