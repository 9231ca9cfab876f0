package statistics

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ReturnPeriod selects the sampling of the return series
type ReturnPeriod string

// Return periods
const (
	// PerDay samples the last equity value of each calendar day
	PerDay ReturnPeriod = "day"
	// PerBar samples every equity value
	PerBar ReturnPeriod = "bar"
)

// TradingDaysPerYear is the annualisation convention
const TradingDaysPerYear = 252

var (
	errInvalidCapital  = errors.New("initial capital must be greater than zero")
	errInvalidPeriod   = errors.New("invalid return period")
	errInvalidSettings = errors.New("periods per year must be greater than zero")
)

// Settings controls how the return series is built and annualised
type Settings struct {
	// RiskFreeRate is an annual rate as a fraction
	RiskFreeRate decimal.Decimal `json:"risk-free-rate"`
	ReturnPeriod ReturnPeriod    `json:"return-period"`
	// PeriodsPerYear annualises per period figures. It defaults to 252,
	// which suits daily returns; per bar returns should set it to the
	// number of bars in a trading year.
	PeriodsPerYear decimal.Decimal `json:"periods-per-year"`
	// Location decides calendar day boundaries, UTC when unset
	Location *time.Location `json:"-"`
}

// ValueAtTime is an individual iteration of price at a time
type ValueAtTime struct {
	Time  time.Time       `json:"time"`
	Value decimal.Decimal `json:"value"`
}

// Swing holds a drawdown from a peak to its lowest point
type Swing struct {
	Highest ValueAtTime `json:"highest"`
	Lowest  ValueAtTime `json:"lowest"`
	// Drawdown is the decline as a fraction of the peak
	Drawdown decimal.Decimal `json:"drawdown"`
	// Bars counts samples from the peak to the trough
	Bars int64 `json:"bars"`
}

// Metrics is the full performance summary of a run
type Metrics struct {
	StartTime      time.Time       `json:"start-time"`
	EndTime        time.Time       `json:"end-time"`
	InitialCapital decimal.Decimal `json:"initial-capital"`
	FinalEquity    decimal.Decimal `json:"final-equity"`

	TotalReturn      decimal.Decimal `json:"total-return"`
	AnnualisedReturn decimal.Decimal `json:"annualised-return"`
	Volatility       decimal.Decimal `json:"volatility"`
	SharpeRatio      decimal.Decimal `json:"sharpe-ratio"`
	SortinoRatio     decimal.Decimal `json:"sortino-ratio"`
	CalmarRatio      decimal.Decimal `json:"calmar-ratio"`
	MaxDrawdown      Swing           `json:"max-drawdown"`
	// LongestDrawdownBars is the longest run of samples below a prior peak
	LongestDrawdownBars int64 `json:"longest-drawdown-bars"`
	ReturnSamples       int   `json:"return-samples"`

	TotalTrades          int64           `json:"total-trades"`
	WinningTrades        int64           `json:"winning-trades"`
	LosingTrades         int64           `json:"losing-trades"`
	WinRate              decimal.Decimal `json:"win-rate"`
	AverageWin           decimal.Decimal `json:"average-win"`
	AverageLoss          decimal.Decimal `json:"average-loss"`
	LargestWin           decimal.Decimal `json:"largest-win"`
	LargestLoss          decimal.Decimal `json:"largest-loss"`
	ProfitFactor         decimal.Decimal `json:"profit-factor"`
	Expectancy           decimal.Decimal `json:"expectancy"`
	MaxConsecutiveLosses int64           `json:"max-consecutive-losses"`
	TotalPNL             decimal.Decimal `json:"total-pnl"`
	TotalCommission      decimal.Decimal `json:"total-commission"`

	// Exposure is the fraction of samples with an open position
	Exposure decimal.Decimal `json:"exposure"`
	// MarketMovement is the buy and hold return of the traded symbol
	MarketMovement decimal.Decimal `json:"market-movement"`
	// Warnings lists metrics which could not be derived and were left at zero
	Warnings []string `json:"warnings,omitempty"`
}
