package optimiser

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/config"
	"github.com/tradebench/barsim/data"
	"github.com/tradebench/barsim/engine"
	"github.com/tradebench/barsim/eventhandlers/statistics"
	"github.com/tradebench/barsim/eventtypes/kline"
	"github.com/tradebench/barsim/log"
	"golang.org/x/sync/errgroup"
)

// New validates the config and its grid
func New(cfg *config.Config, src data.Source) (*Optimiser, error) {
	if cfg == nil {
		return nil, errNilConfig
	}
	if src == nil {
		return nil, errNilSource
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	combinations, err := Grid(cfg.Optimiser.Grid).Combinations()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	rankBy := strings.ToLower(cfg.Optimiser.RankBy)
	if _, err = MetricValue(&statistics.Metrics{}, rankBy); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	workers := cfg.Optimiser.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Optimiser{
		cfg:          cfg,
		source:       src,
		combinations: combinations,
		rankBy:       rankBy,
		workers:      workers,
	}, nil
}

// Combinations enumerates the Cartesian product of the grid. Parameters are
// iterated in name order with the last name varying fastest, and each
// parameter's values keep their configured order.
func (g Grid) Combinations() ([]Combination, error) {
	if len(g) == 0 {
		return nil, errEmptyGrid
	}
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 1
	for _, name := range names {
		values := g[name]
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: %v", errNoValues, name)
		}
		for i := range values {
			for j := i + 1; j < len(values); j++ {
				if reflect.DeepEqual(values[i], values[j]) {
					return nil, fmt.Errorf("%w: %v %v", errDuplicateValue, name, values[i])
				}
			}
		}
		total *= len(values)
	}

	resp := make([]Combination, total)
	position := make([]int, len(names))
	for i := 0; i < total; i++ {
		params := make(map[string]any, len(names))
		for j, name := range names {
			params[name] = g[name][position[j]]
		}
		resp[i] = Combination{Index: i, Parameters: params}
		for j := len(names) - 1; j >= 0; j-- {
			position[j]++
			if position[j] < len(g[names[j]]) {
				break
			}
			position[j] = 0
		}
	}
	return resp, nil
}

// SplitBars returns the chronological in sample prefix and out of sample
// suffix of bars. Both segments need at least two bars.
func SplitBars(bars []*kline.Kline, ratio decimal.Decimal) (inSample, outOfSample []*kline.Kline, err error) {
	if !ratio.IsPositive() || ratio.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, nil, fmt.Errorf("%w: %v", errInvalidRatio, ratio)
	}
	split := int(decimal.NewFromInt(int64(len(bars))).Mul(ratio).IntPart())
	if split < 2 || len(bars)-split < 2 {
		return nil, nil, fmt.Errorf("%w: %v bars at ratio %v", errNotEnoughBars, len(bars), ratio)
	}
	return bars[:split], bars[split:], nil
}

// MetricValue returns the named metric
func MetricValue(m *statistics.Metrics, name string) (decimal.Decimal, error) {
	switch name {
	case Sharpe:
		return m.SharpeRatio, nil
	case Sortino:
		return m.SortinoRatio, nil
	case Calmar:
		return m.CalmarRatio, nil
	case TotalReturn:
		return m.TotalReturn, nil
	case AnnualisedReturn:
		return m.AnnualisedReturn, nil
	case ProfitFactor:
		return m.ProfitFactor, nil
	case WinRate:
		return m.WinRate, nil
	case Expectancy:
		return m.Expectancy, nil
	case MaxDrawdown:
		return m.MaxDrawdown.Drawdown, nil
	}
	return decimal.Zero, fmt.Errorf("%w '%v'", errUnknownMetric, name)
}

// Run loads the data once, runs every combination on the in sample segment
// and re-runs the best on the out of sample segment. Failed trials are
// recorded and left out of the ranking.
func (o *Optimiser) Run(ctx context.Context) (*Result, error) {
	start, end := o.cfg.DateRange()
	symbol := o.cfg.Data.Symbol
	bars, err := o.source.Load(ctx, symbol, o.cfg.Data.Interval.Duration(), start, end)
	if err != nil {
		return nil, err
	}
	var issues []data.Issue
	if r, ok := o.source.(data.IssueReporter); ok {
		issues = append(issues, r.Issues()...)
	}
	bars, excluded := data.Sanitise(bars, symbol, start, end)
	issues = append(issues, excluded...)
	if len(issues) > 0 {
		log.Warnf(log.Optimiser, "%v bars excluded from %v", len(issues), symbol)
	}
	inSample, outOfSample, err := SplitBars(bars, o.cfg.Optimiser.InSampleRatio)
	if err != nil {
		return nil, err
	}
	resp := &Result{
		Strategy:         o.cfg.Strategy.Name,
		Symbol:           symbol,
		RankBy:           o.rankBy,
		InSampleBars:     len(inSample),
		OutOfSampleBars:  len(outOfSample),
		OutOfSampleStart: outOfSample[0].Time,
		Issues:           issues,
	}
	log.Infof(log.Optimiser, "Running %v combinations of %v on %v with %v workers, %v in sample and %v out of sample bars",
		len(o.combinations), o.cfg.Strategy.Name, symbol, o.workers, len(inSample), len(outOfSample))

	resp.Trials, err = o.runTrials(ctx, inSample)
	if err != nil {
		return resp, err
	}
	ranked := Rank(resp.Trials, o.rankBy)
	resp.Failed = len(resp.Trials) - len(ranked)
	if len(ranked) == 0 {
		return resp, errNoSuccessfulRun
	}

	for i := 0; i < len(ranked) && i < o.cfg.Optimiser.TopN; i++ {
		if err = ctx.Err(); err != nil {
			return resp, err
		}
		c := Candidate{
			Rank:        i + 1,
			InSample:    ranked[i],
			OutOfSample: o.runTrial(ctx, ranked[i].Combination, OutOfSample, outOfSample),
		}
		if c.OutOfSample.Error == "" {
			c.Ratio, c.Overfit = IsOverfit(o.rankBy, c.InSample.Score, c.OutOfSample.Score, o.cfg.Optimiser.OverfitThreshold)
		} else {
			log.Warnf(log.Optimiser, "candidate %v out of sample run failed: %v", c.InSample.Index, c.OutOfSample.Error)
		}
		log.Infof(log.Optimiser, "#%v %v in sample %v %v, out of sample %v, overfit %v",
			c.Rank, c.InSample.Parameters, o.rankBy, c.InSample.Score.Round(4), c.OutOfSample.Score.Round(4), c.Overfit)
		resp.Candidates = append(resp.Candidates, c)
	}
	return resp, nil
}

// runTrials evaluates every combination concurrently. Results are gathered
// by a single collector and returned in combination order.
func (o *Optimiser) runTrials(ctx context.Context, bars []*kline.Kline) ([]Trial, error) {
	resp := make([]Trial, len(o.combinations))
	results := make(chan Trial)
	collected := make(chan struct{})
	go func() {
		for t := range results {
			resp[t.Index] = t
		}
		close(collected)
	}()

	var g errgroup.Group
	g.SetLimit(o.workers)
	for i := range o.combinations {
		c := o.combinations[i]
		g.Go(func() error {
			results <- o.runTrial(ctx, c, InSample, bars)
			return nil
		})
	}
	err := g.Wait()
	close(results)
	<-collected
	if err != nil {
		return resp, err
	}
	return resp, ctx.Err()
}

// runTrial runs one engine with the combination merged over the configured
// strategy settings. The segment's first and last bars bound the run.
func (o *Optimiser) runTrial(ctx context.Context, c Combination, segment Segment, bars []*kline.Kline) Trial {
	t := Trial{
		Combination: c,
		Segment:     segment,
	}
	cfg := o.cfg.Copy()
	if cfg.Strategy.CustomSettings == nil {
		cfg.Strategy.CustomSettings = make(map[string]any, len(c.Parameters))
	}
	for k, v := range c.Parameters {
		cfg.Strategy.CustomSettings[k] = v
	}
	loc := cfg.Session.Location()
	cfg.Data.StartDate = bars[0].Time.In(loc)
	cfg.Data.EndDate = bars[len(bars)-1].Time.In(loc)

	bt, err := engine.New(cfg, data.NewMemory(bars), nil)
	if err != nil {
		t.Error = err.Error()
		log.Debugf(log.Optimiser, "%v combination %v %v: %v", segment, c.Index, c.Parameters, err)
		return t
	}
	res, err := bt.Run(ctx)
	if err != nil {
		t.Error = err.Error()
		log.Debugf(log.Optimiser, "%v combination %v %v: %v", segment, c.Index, c.Parameters, err)
		return t
	}
	t.Bars = res.Bars
	t.Trades = len(res.Trades)
	t.Metrics = res.Metrics
	t.Score, err = MetricValue(res.Metrics, o.rankBy)
	if err != nil {
		t.Error = err.Error()
	}
	return t
}

// Rank returns the successful trials best first. Ties keep combination order.
func Rank(trials []Trial, metric string) []Trial {
	resp := make([]Trial, 0, len(trials))
	for i := range trials {
		if trials[i].Error == "" && trials[i].Metrics != nil {
			resp = append(resp, trials[i])
		}
	}
	sort.SliceStable(resp, func(i, j int) bool {
		a, b := resp[i].Score, resp[j].Score
		if !a.Equal(b) {
			if metric == MaxDrawdown {
				return a.LessThan(b)
			}
			return a.GreaterThan(b)
		}
		return resp[i].Index < resp[j].Index
	})
	return resp
}

// IsOverfit compares a candidate's in and out of sample scores. It is
// overfit when the in sample score exceeds the out of sample score by more
// than threshold times, or when only the in sample score is positive. For
// max drawdown the comparison is inverted.
func IsOverfit(metric string, in, out, threshold decimal.Decimal) (ratio decimal.Decimal, overfit bool) {
	if metric == MaxDrawdown {
		in, out = out, in
	}
	if !out.IsPositive() {
		return decimal.Zero, in.IsPositive()
	}
	ratio = in.Div(out)
	return ratio, ratio.GreaterThan(threshold)
}
