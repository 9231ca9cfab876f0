package report

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/engine"
	"github.com/tradebench/barsim/eventtypes/order"
	"github.com/tradebench/barsim/log"
	"github.com/tradebench/barsim/optimiser"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var hundred = decimal.NewFromInt(100)

// PrintSummary logs the human readable summary of a run
func PrintSummary(res *engine.Result) {
	lines := Summary(res)
	for i := range lines {
		log.Info(log.Report, lines[i])
	}
}

// Summary renders a run as human readable lines with grouped numbers
func Summary(res *engine.Result) []string {
	if res == nil {
		return nil
	}
	p := message.NewPrinter(language.English)
	resp := []string{
		"------------------Strategy-----------------------------------",
		p.Sprintf("Strategy Name: %v", res.MetaData.Strategy),
	}
	if res.MetaData.Nickname != "" {
		resp = append(resp, p.Sprintf("Strategy Nickname: %v", res.MetaData.Nickname))
	}
	resp = append(resp,
		p.Sprintf("Run ID: %v", res.MetaData.ID),
		p.Sprintf("Symbol: %v Interval: %v", res.Symbol, res.Interval),
		p.Sprintf("State: %v", res.State),
		p.Sprintf("Bars processed: %d", res.Bars),
	)

	if m := res.Metrics; m != nil {
		resp = append(resp,
			"------------------Total Results------------------------------",
			p.Sprintf("Initial capital: $%.2f", m.InitialCapital.InexactFloat64()),
			p.Sprintf("Final equity: $%.2f", m.FinalEquity.InexactFloat64()),
			p.Sprintf("Total PNL: $%.2f", m.TotalPNL.InexactFloat64()),
			p.Sprintf("Total commission: $%.2f", m.TotalCommission.InexactFloat64()),
			p.Sprintf("Total return: %.2f%%", m.TotalReturn.Mul(hundred).InexactFloat64()),
			p.Sprintf("Annualised return: %.2f%%", m.AnnualisedReturn.Mul(hundred).InexactFloat64()),
			p.Sprintf("Market movement: %.2f%%", m.MarketMovement.Mul(hundred).InexactFloat64()),
			p.Sprintf("Exposure: %.2f%%", m.Exposure.Mul(hundred).InexactFloat64()),
			p.Sprintf("Strategy profitable: %v", m.IsStrategyProfitable()),
			p.Sprintf("Beat the market: %v", m.DoesPerformanceBeatTheMarket()),
			"------------------Ratios-------------------------------------",
			p.Sprintf("Sharpe ratio: %.4f", m.SharpeRatio.InexactFloat64()),
			p.Sprintf("Sortino ratio: %.4f", m.SortinoRatio.InexactFloat64()),
			p.Sprintf("Calmar ratio: %.4f", m.CalmarRatio.InexactFloat64()),
			p.Sprintf("Volatility: %.4f", m.Volatility.InexactFloat64()),
			"------------------Trades-------------------------------------",
			p.Sprintf("Total trades: %d", m.TotalTrades),
			p.Sprintf("Winning trades: %d Losing trades: %d", m.WinningTrades, m.LosingTrades),
			p.Sprintf("Win rate: %.2f%%", m.WinRate.Mul(hundred).InexactFloat64()),
			p.Sprintf("Average win: $%.2f Average loss: $%.2f", m.AverageWin.InexactFloat64(), m.AverageLoss.InexactFloat64()),
			p.Sprintf("Profit factor: %.4f", m.ProfitFactor.InexactFloat64()),
			p.Sprintf("Expectancy: $%.2f", m.Expectancy.InexactFloat64()),
			p.Sprintf("Max consecutive losses: %d", m.MaxConsecutiveLosses),
			"------------------Biggest Drawdown---------------------------",
			p.Sprintf("Highest Equity: $%.2f at %v", m.MaxDrawdown.Highest.Value.InexactFloat64(), m.MaxDrawdown.Highest.Time),
			p.Sprintf("Lowest Equity: $%.2f at %v", m.MaxDrawdown.Lowest.Value.InexactFloat64(), m.MaxDrawdown.Lowest.Time),
			p.Sprintf("Calculated Drawdown: %.2f%%", m.MaxDrawdown.Drawdown.Mul(hundred).InexactFloat64()),
			p.Sprintf("Drawdown length: %d bars", m.MaxDrawdown.Bars),
			p.Sprintf("Longest drawdown: %d bars", m.LongestDrawdownBars),
		)
		if len(m.Warnings) > 0 {
			resp = append(resp, "------------------Warnings-----------------------------------")
			resp = append(resp, m.Warnings...)
		}
	}

	statuses := make(map[order.Status]int)
	for i := range res.Orders {
		statuses[res.Orders[i].Status]++
	}
	resp = append(resp,
		"------------------Orders-------------------------------------",
		p.Sprintf("Total orders: %d", len(res.Orders)),
		p.Sprintf("Total fills: %d", len(res.Fills)),
	)
	for _, s := range []order.Status{order.Filled, order.PartiallyFilled, order.Pending, order.Cancelled, order.Rejected} {
		if statuses[s] > 0 {
			resp = append(resp, p.Sprintf("%v: %d", s, statuses[s]))
		}
	}

	if len(res.Diagnostics.Counts) > 0 {
		kinds := make([]string, 0, len(res.Diagnostics.Counts))
		for k := range res.Diagnostics.Counts {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		resp = append(resp, "------------------Diagnostics--------------------------------")
		for _, k := range kinds {
			resp = append(resp, p.Sprintf("%v: %d", k, res.Diagnostics.Counts[engine.DiagnosticKind(k)]))
		}
	}
	return resp
}

// PrintOptimisation logs the ranked candidates of a grid search
func PrintOptimisation(res *optimiser.Result) {
	lines := OptimisationSummary(res)
	for i := range lines {
		log.Info(log.Report, lines[i])
	}
}

// OptimisationSummary renders the candidates of a grid search
func OptimisationSummary(res *optimiser.Result) []string {
	if res == nil {
		return nil
	}
	p := message.NewPrinter(language.English)
	resp := []string{
		"------------------Optimisation-------------------------------",
		p.Sprintf("Strategy Name: %v Symbol: %v", res.Strategy, res.Symbol),
		p.Sprintf("Ranked by: %v", res.RankBy),
		p.Sprintf("Combinations: %d Failed: %d", len(res.Trials), res.Failed),
		p.Sprintf("Excluded bars: %d", len(res.Issues)),
		p.Sprintf("In sample bars: %d Out of sample bars: %d from %v", res.InSampleBars, res.OutOfSampleBars, res.OutOfSampleStart),
		"------------------Candidates---------------------------------",
	}
	for i := range res.Candidates {
		c := &res.Candidates[i]
		resp = append(resp, p.Sprintf("#%d %v", c.Rank, c.InSample.Parameters))
		if c.OutOfSample.Error != "" {
			resp = append(resp, p.Sprintf("    in sample: %.4f out of sample failed: %v", c.InSample.Score.InexactFloat64(), c.OutOfSample.Error))
			continue
		}
		resp = append(resp, p.Sprintf("    in sample: %.4f out of sample: %.4f ratio: %.2f overfit: %v",
			c.InSample.Score.InexactFloat64(), c.OutOfSample.Score.InexactFloat64(), c.Ratio.InexactFloat64(), c.Overfit))
	}
	return resp
}
