package statistics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	bmath "github.com/tradebench/barsim/common/math"
	"github.com/tradebench/barsim/eventhandlers/portfolio"
	"github.com/tradebench/barsim/eventhandlers/portfolio/holdings"
	"github.com/tradebench/barsim/eventtypes/kline"
	"github.com/tradebench/barsim/log"
)

// Calculate derives return, risk and trade statistics from a completed equity
// curve and trade log. It has no side effects. Trade metrics of an empty trade
// log are zero, as are return series metrics built from fewer than two
// samples.
func Calculate(curve []portfolio.EquitySample, trades []holdings.Trade, initialCapital decimal.Decimal, s Settings) (*Metrics, error) {
	if !initialCapital.IsPositive() {
		return nil, fmt.Errorf("%w: %v", errInvalidCapital, initialCapital)
	}
	if err := s.setDefaults(); err != nil {
		return nil, err
	}
	m := &Metrics{
		InitialCapital: initialCapital,
		FinalEquity:    initialCapital,
	}
	if len(curve) > 0 {
		m.StartTime = curve[0].Time
		m.EndTime = curve[len(curve)-1].Time
		m.FinalEquity = curve[len(curve)-1].Equity
	}
	m.TotalReturn = m.FinalEquity.Sub(initialCapital).Div(initialCapital)

	values := make([]ValueAtTime, len(curve))
	var exposed int64
	for i := range curve {
		values[i] = ValueAtTime{Time: curve[i].Time, Value: curve[i].Equity}
		if !curve[i].Quantity.IsZero() {
			exposed++
		}
	}
	if len(curve) > 0 {
		m.Exposure = decimal.NewFromInt(exposed).Div(decimal.NewFromInt(int64(len(curve))))
	}
	m.MaxDrawdown, m.LongestDrawdownBars = CalculateMaxDrawdown(values)

	m.calculateReturnMetrics(values, s)
	m.calculateTradeMetrics(trades)
	return m, nil
}

// Validate checks the settings without modifying them
func (s Settings) Validate() error {
	return s.setDefaults()
}

func (s *Settings) setDefaults() error {
	switch s.ReturnPeriod {
	case "":
		s.ReturnPeriod = PerDay
	case PerDay, PerBar:
	default:
		return fmt.Errorf("%w '%v'", errInvalidPeriod, s.ReturnPeriod)
	}
	if s.PeriodsPerYear.IsZero() {
		s.PeriodsPerYear = decimal.NewFromInt(TradingDaysPerYear)
	}
	if !s.PeriodsPerYear.IsPositive() {
		return fmt.Errorf("%w: %v", errInvalidSettings, s.PeriodsPerYear)
	}
	return nil
}

func (m *Metrics) calculateReturnMetrics(values []ValueAtTime, s Settings) {
	series := values
	if s.ReturnPeriod == PerDay {
		series = DailyCloses(values, s)
	}
	if len(series) < 2 {
		return
	}
	equity := make([]decimal.Decimal, len(series))
	for i := range series {
		equity[i] = series[i].Value
	}
	returns, err := bmath.Returns(equity)
	if err != nil {
		m.Warnings = append(m.Warnings, fmt.Sprintf("return series unavailable: %v", err))
		log.Warnf(log.Statistics, "cannot calculate return series: %v", err)
		return
	}
	m.ReturnSamples = len(returns)

	annualiser := bmath.Sqrt(s.PeriodsPerYear)
	riskFree := s.RiskFreeRate.Div(s.PeriodsPerYear)
	m.Volatility = bmath.SampleStandardDeviation(returns).Mul(annualiser)
	m.SharpeRatio = bmath.SharpeRatio(returns, riskFree).Mul(annualiser)
	m.SortinoRatio = bmath.SortinoRatio(returns, riskFree).Mul(annualiser)

	first, last := series[0].Value, series[len(series)-1].Value
	if first.IsPositive() && !last.IsNegative() {
		m.AnnualisedReturn, err = bmath.CompoundAnnualGrowthRate(first, last, s.PeriodsPerYear, decimal.NewFromInt(int64(len(returns))))
		if err != nil {
			// annualised return and calmar ratio are left at zero
			m.AnnualisedReturn = decimal.Zero
			m.Warnings = append(m.Warnings, fmt.Sprintf("annualised return unavailable: %v", err))
			log.Warnf(log.Statistics, "annualised return unavailable over %v returns: %v", len(returns), err)
		}
	}
	m.CalmarRatio = bmath.CalmarRatio(m.AnnualisedReturn, m.MaxDrawdown.Drawdown)
}

func (m *Metrics) calculateTradeMetrics(trades []holdings.Trade) {
	m.TotalTrades = int64(len(trades))
	if m.TotalTrades == 0 {
		return
	}
	var wins, losses decimal.Decimal
	var consecutive int64
	for i := range trades {
		pnl := trades[i].PNL
		m.TotalPNL = m.TotalPNL.Add(pnl)
		m.TotalCommission = m.TotalCommission.Add(trades[i].Commission)
		switch {
		case pnl.IsPositive():
			m.WinningTrades++
			wins = wins.Add(pnl)
			m.LargestWin = decimal.Max(m.LargestWin, pnl)
			consecutive = 0
		case pnl.IsNegative():
			m.LosingTrades++
			losses = losses.Add(pnl)
			m.LargestLoss = decimal.Min(m.LargestLoss, pnl)
			consecutive++
			if consecutive > m.MaxConsecutiveLosses {
				m.MaxConsecutiveLosses = consecutive
			}
		default:
			consecutive = 0
		}
	}
	m.WinRate = decimal.NewFromInt(m.WinningTrades).Div(decimal.NewFromInt(m.TotalTrades))
	if m.WinningTrades > 0 {
		m.AverageWin = wins.Div(decimal.NewFromInt(m.WinningTrades))
	}
	if m.LosingTrades > 0 {
		m.AverageLoss = losses.Div(decimal.NewFromInt(m.LosingTrades))
		m.ProfitFactor = wins.Div(losses.Abs())
	}
	m.Expectancy = m.TotalPNL.Div(decimal.NewFromInt(m.TotalTrades))
}

// CalculateMaxDrawdown returns the largest peak to trough decline of values as
// a fraction of the peak, along with the longest run of samples spent below a
// prior peak
func CalculateMaxDrawdown(values []ValueAtTime) (Swing, int64) {
	var resp Swing
	if len(values) == 0 {
		return resp, 0
	}
	peak, peakIndex := values[0], 0
	resp.Highest, resp.Lowest = peak, peak
	var longest, underwater int64
	for i := range values {
		if values[i].Value.GreaterThanOrEqual(peak.Value) {
			peak, peakIndex = values[i], i
			underwater = 0
			continue
		}
		underwater++
		if underwater > longest {
			longest = underwater
		}
		if !peak.Value.IsPositive() {
			continue
		}
		drawdown := peak.Value.Sub(values[i].Value).Div(peak.Value)
		if drawdown.GreaterThan(resp.Drawdown) {
			resp = Swing{
				Highest:  peak,
				Lowest:   values[i],
				Drawdown: drawdown,
				Bars:     int64(i - peakIndex),
			}
		}
	}
	return resp, longest
}

// DailyCloses returns the last value of each calendar day in the settings'
// location
func DailyCloses(values []ValueAtTime, s Settings) []ValueAtTime {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	var resp []ValueAtTime
	for i := range values {
		y, m, d := values[i].Time.In(loc).Date()
		if len(resp) > 0 {
			py, pm, pd := resp[len(resp)-1].Time.In(loc).Date()
			if py == y && pm == m && pd == d {
				resp[len(resp)-1] = values[i]
				continue
			}
		}
		resp = append(resp, values[i])
	}
	return resp
}

// MarketMovement returns the buy and hold return from the first to the last
// bar's close
func MarketMovement(bars []*kline.Kline) decimal.Decimal {
	if len(bars) < 2 || !bars[0].Close.IsPositive() {
		return decimal.Zero
	}
	return bars[len(bars)-1].Close.Sub(bars[0].Close).Div(bars[0].Close)
}

// DoesPerformanceBeatTheMarket reports whether the strategy outperformed
// buying and holding the symbol
func (m *Metrics) DoesPerformanceBeatTheMarket() bool {
	return m.TotalReturn.GreaterThan(m.MarketMovement)
}

// IsStrategyProfitable reports whether the run ended above its starting capital
func (m *Metrics) IsStrategyProfitable() bool {
	return m.FinalEquity.GreaterThan(m.InitialCapital)
}
