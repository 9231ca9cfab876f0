package optimiser

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradebench/barsim/config"
	"github.com/tradebench/barsim/data"
	"github.com/tradebench/barsim/eventhandlers/statistics"
	"github.com/tradebench/barsim/eventtypes/kline"
)

const gridConfigJSON = `{
	"strategy": {"name": "smacrossover"},
	"data": {
		"symbol": "WAVE",
		"interval": "1d",
		"start-date": "2024-01-01",
		"end-date": "2024-02-29",
		"source": "csv",
		"csv": {"path": "unused"}
	},
	"session": {"trade-weekends": true},
	"portfolio": {"initial-capital": 10000},
	"optimiser": {
		"grid": {"slow-period": [10, 3], "fast-period": [3, 5]},
		"rank-by": "total-return",
		"top-n": 2
	}
}`

func gridConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig([]byte(gridConfigJSON), "json")
	require.NoError(t, err)
	return cfg
}

// waveBars returns daily bars oscillating around 100
func waveBars(n int) []*kline.Kline {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	resp := make([]*kline.Kline, n)
	for i := 0; i < n; i++ {
		c := decimal.NewFromFloat(100 + math.Round(1000*math.Sin(float64(i)/4))/100)
		resp[i] = kline.New("WAVE", 24*time.Hour, start.AddDate(0, 0, i), c, c.Add(decimal.NewFromInt(1)), c.Sub(decimal.NewFromInt(1)), c, decimal.NewFromInt(10000))
	}
	return resp
}

func TestCombinations(t *testing.T) {
	t.Parallel()
	g := Grid{
		"slow-period": {20, 30},
		"fast-period": {5, 10},
		"ma-type":     {"ema"},
	}
	c, err := g.Combinations()
	require.NoError(t, err)
	require.Len(t, c, 4)
	expected := []map[string]any{
		{"fast-period": 5, "ma-type": "ema", "slow-period": 20},
		{"fast-period": 5, "ma-type": "ema", "slow-period": 30},
		{"fast-period": 10, "ma-type": "ema", "slow-period": 20},
		{"fast-period": 10, "ma-type": "ema", "slow-period": 30},
	}
	for i := range c {
		assert.Equal(t, i, c[i].Index)
		assert.Equal(t, expected[i], c[i].Parameters)
	}

	_, err = Grid{}.Combinations()
	assert.ErrorIs(t, err, errEmptyGrid)
	_, err = Grid{"fast-period": {}}.Combinations()
	assert.ErrorIs(t, err, errNoValues)
	_, err = Grid{"fast-period": {5, 10, 5}}.Combinations()
	assert.ErrorIs(t, err, errDuplicateValue)
}

func TestSplitBars(t *testing.T) {
	t.Parallel()
	bars := waveBars(10)
	in, out, err := SplitBars(bars, decimal.NewFromFloat(0.7))
	require.NoError(t, err)
	assert.Len(t, in, 7)
	assert.Len(t, out, 3)
	assert.True(t, in[len(in)-1].Time.Before(out[0].Time), "segments keep chronological order")

	_, _, err = SplitBars(bars, decimal.NewFromFloat(0.9))
	assert.ErrorIs(t, err, errNotEnoughBars)
	_, _, err = SplitBars(bars, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, errInvalidRatio)
}

func TestRank(t *testing.T) {
	t.Parallel()
	m := &statistics.Metrics{}
	trials := []Trial{
		{Combination: Combination{Index: 0}, Metrics: m, Score: decimal.NewFromFloat(0.1)},
		{Combination: Combination{Index: 1}, Metrics: m, Score: decimal.NewFromFloat(0.3)},
		{Combination: Combination{Index: 2}, Error: "failed"},
		{Combination: Combination{Index: 3}, Metrics: m, Score: decimal.NewFromFloat(0.3)},
	}
	ranked := Rank(trials, Sharpe)
	require.Len(t, ranked, 3)
	assert.Equal(t, []int{1, 3, 0}, []int{ranked[0].Index, ranked[1].Index, ranked[2].Index})

	ranked = Rank(trials, MaxDrawdown)
	assert.Equal(t, []int{0, 1, 3}, []int{ranked[0].Index, ranked[1].Index, ranked[2].Index})
}

func TestIsOverfit(t *testing.T) {
	t.Parallel()
	two := decimal.NewFromInt(2)
	for _, tc := range []struct {
		name    string
		metric  string
		in, out float64
		overfit bool
	}{
		{"holds up", Sharpe, 1.5, 1, false},
		{"decays", Sharpe, 3, 1, true},
		{"turns negative", Sharpe, 1, -0.5, true},
		{"both negative", Sharpe, -1, -2, false},
		{"drawdown holds", MaxDrawdown, 0.1, 0.15, false},
		{"drawdown blows out", MaxDrawdown, 0.1, 0.3, true},
		{"drawdown from nothing", MaxDrawdown, 0, 0.1, true},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, overfit := IsOverfit(tc.metric, decimal.NewFromFloat(tc.in), decimal.NewFromFloat(tc.out), two)
			assert.Equal(t, tc.overfit, overfit)
		})
	}
}

func TestMetricValue(t *testing.T) {
	t.Parallel()
	m := &statistics.Metrics{SharpeRatio: decimal.NewFromInt(2)}
	m.MaxDrawdown.Drawdown = decimal.NewFromFloat(0.25)
	v, err := MetricValue(m, Sharpe)
	require.NoError(t, err)
	assert.True(t, v.Equal(decimal.NewFromInt(2)))
	v, err = MetricValue(m, MaxDrawdown)
	require.NoError(t, err)
	assert.True(t, v.Equal(decimal.NewFromFloat(0.25)))
	_, err = MetricValue(m, "luck")
	assert.ErrorIs(t, err, errUnknownMetric)
}

func TestNew(t *testing.T) {
	t.Parallel()
	_, err := New(nil, data.NewMemory(nil))
	assert.ErrorIs(t, err, errNilConfig)

	cfg := gridConfig(t)
	_, err = New(cfg, nil)
	assert.ErrorIs(t, err, errNilSource)

	o, err := New(cfg, data.NewMemory(nil))
	require.NoError(t, err)
	assert.Len(t, o.combinations, 4)
	assert.Positive(t, o.workers)

	cfg = gridConfig(t)
	cfg.Optimiser.RankBy = "luck"
	_, err = New(cfg, data.NewMemory(nil))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.ErrorIs(t, err, errUnknownMetric)

	cfg = gridConfig(t)
	cfg.Optimiser.Grid = nil
	_, err = New(cfg, data.NewMemory(nil))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.ErrorIs(t, err, errEmptyGrid)
}

func TestRun(t *testing.T) {
	t.Parallel()
	bars := waveBars(60)
	run := func(workers int) *Result {
		cfg := gridConfig(t)
		cfg.Optimiser.Workers = workers
		o, err := New(cfg, data.NewMemory(bars))
		require.NoError(t, err)
		res, err := o.Run(context.Background())
		require.NoError(t, err)
		return res
	}
	res := run(4)
	assert.Equal(t, 42, res.InSampleBars)
	assert.Equal(t, 18, res.OutOfSampleBars)
	assert.Equal(t, bars[42].Time, res.OutOfSampleStart)

	require.Len(t, res.Trials, 4)
	// fast periods must be shorter than slow periods
	assert.NotEmpty(t, res.Trials[1].Error)
	assert.NotEmpty(t, res.Trials[3].Error)
	assert.Empty(t, res.Trials[0].Error)
	assert.Empty(t, res.Trials[2].Error)
	assert.Equal(t, 2, res.Failed)
	for i := range res.Trials {
		assert.Equal(t, i, res.Trials[i].Index)
		assert.Equal(t, InSample, res.Trials[i].Segment)
	}

	require.Len(t, res.Candidates, 2)
	assert.Equal(t, 1, res.Candidates[0].Rank)
	assert.Equal(t, OutOfSample, res.Candidates[0].OutOfSample.Segment)
	assert.EqualValues(t, 18, res.Candidates[0].OutOfSample.Bars)
	assert.True(t, res.Candidates[0].InSample.Score.GreaterThanOrEqual(res.Candidates[1].InSample.Score))

	sequential := run(1)
	assert.Equal(t, res.Trials, sequential.Trials, "worker count does not change results")
	assert.Equal(t, res.Candidates, sequential.Candidates)
}

func TestRunKeepsDataIssues(t *testing.T) {
	t.Parallel()
	bars := waveBars(60)
	dup := *bars[10]
	bars = append(bars, &dup)
	o, err := New(gridConfig(t), data.NewMemory(bars))
	require.NoError(t, err)
	res, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 60, res.InSampleBars+res.OutOfSampleBars)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, data.DuplicateBar, res.Issues[0].Kind)
	assert.Equal(t, 61, res.Issues[0].Row)
	assert.Equal(t, bars[10].Time, res.Issues[0].Time)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o, err := New(gridConfig(t), data.NewMemory(waveBars(60)))
	require.NoError(t, err)
	_, err = o.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
