package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/config"
	"github.com/tradebench/barsim/data"
	"github.com/tradebench/barsim/eventhandlers/clock"
	"github.com/tradebench/barsim/eventhandlers/exchange"
	"github.com/tradebench/barsim/eventhandlers/portfolio"
	"github.com/tradebench/barsim/eventhandlers/portfolio/risk"
	"github.com/tradebench/barsim/eventhandlers/statistics"
	"github.com/tradebench/barsim/eventhandlers/strategies"
	"github.com/tradebench/barsim/eventtypes/event"
	"github.com/tradebench/barsim/eventtypes/fill"
	"github.com/tradebench/barsim/eventtypes/kline"
	"github.com/tradebench/barsim/eventtypes/order"
	"github.com/tradebench/barsim/eventtypes/signal"
	"github.com/tradebench/barsim/log"
)

const day = 24 * time.Hour

// WithRiskChecker replaces the risk check built from config
func WithRiskChecker(r risk.Checker) Option {
	return func(bt *BackTest) {
		bt.risk = r
	}
}

// WithExchange replaces the fill simulator built from config
func WithExchange(e exchange.ExecutionHandler) Option {
	return func(bt *BackTest) {
		bt.exchange = e
	}
}

// WithIDNamespace sets the namespace order and trade identifiers derive from
func WithIDNamespace(ns uuid.UUID) Option {
	return func(bt *BackTest) {
		bt.idNamespace = ns
	}
}

// WithTimeNow sets the wall clock used for run metadata
func WithTimeNow(f func() time.Time) Option {
	return func(bt *BackTest) {
		bt.timeNow = f
	}
}

// New validates the config and builds every component of a run. When strat
// is nil the configured strategy is loaded and its custom settings applied,
// otherwise strat is used as is.
func New(cfg *config.Config, src data.Source, strat strategies.Handler, opts ...Option) (*BackTest, error) {
	if cfg == nil {
		return nil, errNilConfig
	}
	if src == nil {
		return nil, errNilSource
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var err error
	if strat == nil {
		strat, err = strategies.LoadStrategyByName(cfg.Strategy.Name)
		if err != nil {
			return nil, err
		}
		if len(cfg.Strategy.CustomSettings) > 0 {
			if err = strat.SetCustomSettings(cfg.Strategy.CustomSettings); err != nil {
				return nil, err
			}
		}
	}

	bt := &BackTest{
		cfg:      cfg,
		source:   src,
		strategy: strat,
		symbol:   cfg.Data.Symbol,
		interval: cfg.Data.Interval.Duration(),
		timeNow:  time.Now,
		state:    Initialising,
		shutdown: make(chan struct{}),
		diagnostics: Diagnostics{
			Counts: make(map[DiagnosticKind]int64),
		},
	}
	bt.idNamespace = uuid.NewV5(portfolio.DefaultIDNamespace, bt.symbol+"|"+strat.Name())

	cal, err := cfg.Session.Calendar()
	if err != nil {
		return nil, err
	}
	start, end := cfg.DateRange()
	bt.clock, err = clock.New(start, end, bt.interval, cal)
	if err != nil {
		return nil, err
	}
	settings, err := cfg.Exchange.Settings()
	if err != nil {
		return nil, err
	}
	exch, err := exchange.New(settings)
	if err != nil {
		return nil, err
	}
	bt.exchange = exch
	bt.commission = exch.GetSettings().Commission
	bt.portfolio, err = portfolio.Setup(cfg.Portfolio.InitialCapital, cfg.Portfolio.AllowShort, cfg.Portfolio.AllowMargin)
	if err != nil {
		return nil, err
	}
	bt.risk, err = cfg.Portfolio.Risk.Checker()
	if err != nil {
		return nil, err
	}
	bt.sizer, err = cfg.Sizer()
	if err != nil {
		return nil, err
	}
	bt.statistics = cfg.Statistics.Settings(cal.Location)

	for _, opt := range opts {
		opt(bt)
	}
	if bt.risk == nil || bt.exchange == nil || bt.timeNow == nil {
		return nil, common.ErrNilArguments
	}
	bt.portfolio.SetIDNamespace(bt.idNamespace)

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	bt.MetaData = MetaData{
		ID:         id,
		Strategy:   strat.Name(),
		Nickname:   cfg.Nickname,
		DateLoaded: bt.timeNow(),
	}
	return bt, nil
}

// State returns where the run is in its lifecycle
func (bt *BackTest) State() State {
	bt.m.Lock()
	defer bt.m.Unlock()
	return bt.state
}

// Stop requests the run aborts before its next bar
func (bt *BackTest) Stop() {
	bt.stopOnce.Do(func() {
		close(bt.shutdown)
	})
}

// Run replays every bar of the configured range. A run may only execute once.
// When the run fails or is aborted the result so far is returned alongside
// the error; its trades and equity curve are consistent up to the last bar
// processed.
func (bt *BackTest) Run(ctx context.Context) (*Result, error) {
	if err := bt.start(); err != nil {
		return nil, err
	}
	log.Infof(log.BackTester, "Running %v on %v %v", bt.strategy.Name(), bt.symbol, bt.interval)

	err := bt.replay(ctx)
	err = common.AppendError(err, bt.closeOut())
	resp, resultErr := bt.result()
	err = common.AppendError(err, resultErr)

	bt.m.Lock()
	bt.MetaData.DateEnded = bt.timeNow()
	bt.state = Completed
	if err != nil {
		bt.state = Failed
	}
	resp.State = bt.state
	resp.MetaData = bt.MetaData
	bt.m.Unlock()

	if err != nil {
		log.Errorf(log.BackTester, "%v run on %v failed after %v bars: %v", bt.strategy.Name(), bt.symbol, len(bt.history), err)
		return resp, err
	}
	log.Infof(log.BackTester, "%v run on %v completed: %v bars over %v clock ticks, %v trades, %v fills, %v commission, %v gross realised, %v diagnostics",
		bt.strategy.Name(), bt.symbol, len(bt.history), bt.clock.Ticks(), len(resp.Trades), bt.portfolio.FillCount(),
		bt.portfolio.TotalCommission(), bt.portfolio.RealisedPNL(), len(resp.Diagnostics.Entries))
	return resp, nil
}

func (bt *BackTest) start() error {
	bt.m.Lock()
	defer bt.m.Unlock()
	switch bt.state {
	case Running:
		return fmt.Errorf("%w %v", errRunIsRunning, bt.MetaData.ID)
	case Completed, Failed:
		return fmt.Errorf("%w %v", errAlreadyRan, bt.MetaData.ID)
	}
	bt.state = Running
	bt.MetaData.DateStarted = bt.timeNow()
	return nil
}

func (bt *BackTest) aborted(ctx context.Context) error {
	select {
	case <-bt.shutdown:
		return ErrStopped
	default:
	}
	return ctx.Err()
}

// replay walks the clock and hands each bar to processBar. Bars are matched
// to the clock tick whose interval contains their timestamp.
func (bt *BackTest) replay(ctx context.Context) error {
	bars, err := bt.load(ctx)
	if err != nil {
		return err
	}
	next := 0
	for {
		if err = bt.aborted(ctx); err != nil {
			return err
		}
		now := bt.clock.Now()
		for next < len(bars) && bars[next].Time.Before(now) {
			bt.addDiagnostic(OutsideSession, bars[next].Base, "bar is not on a trading tick")
			next++
		}
		if next >= len(bars) {
			return nil
		}
		until := bt.bucketEnd(now)
		if bars[next].Time.Before(until) {
			k := bars[next]
			next++
			for next < len(bars) && bars[next].Time.Before(until) {
				bt.addDiagnostic(DuplicateBar, bars[next].Base, fmt.Sprintf("tick %v already has a bar", now))
				next++
			}
			if err = bt.processBar(k); err != nil {
				return err
			}
		} else {
			bt.addDiagnostic(Gap, &event.Base{Time: now, Symbol: bt.symbol, Interval: bt.interval}, "no bar for tick")
		}
		if !bt.clock.Advance() {
			break
		}
	}
	for ; next < len(bars); next++ {
		bt.addDiagnostic(OutsideSession, bars[next].Base, "bar is after the last trading tick")
	}
	return nil
}

func (bt *BackTest) bucketEnd(t time.Time) time.Time {
	if bt.interval >= day && bt.interval%day == 0 {
		return t.AddDate(0, 0, int(bt.interval/day))
	}
	return t.Add(bt.interval)
}

// load fetches the whole range once and drops bars which cannot be replayed
func (bt *BackTest) load(ctx context.Context) ([]*kline.Kline, error) {
	start, end := bt.cfg.DateRange()
	bars, err := bt.source.Load(ctx, bt.symbol, bt.interval, start, end)
	if err != nil {
		return nil, err
	}
	if r, ok := bt.source.(data.IssueReporter); ok {
		bt.addIssues(r.Issues())
	}
	bars, issues := data.Sanitise(bars, bt.symbol, start, end)
	bt.addIssues(issues)
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w for %v between %v and %v", errNoBars, bt.symbol, start, end)
	}
	log.Debugf(log.BackTester, "%v bars loaded for %v, %v excluded", len(bars), bt.symbol, len(issues))
	return bars, nil
}

// processBar evaluates open orders against k, marks the portfolio and asks the
// strategy what to do next. Orders raised on k are first evaluated on the bar
// after it.
func (bt *BackTest) processBar(k *kline.Kline) error {
	m := &exchange.MarketContext{
		Bar:           k,
		AverageVolume: bt.averageVolume(),
	}
	if err := bt.executeOrders(m); err != nil {
		return err
	}
	bt.history = append(bt.history, k)
	if _, err := bt.portfolio.Update(k); err != nil {
		return err
	}

	sig, err := bt.strategy.OnBar(bt.history)
	if err != nil {
		bt.addDiagnostic(StrategyError, k.Base, err.Error())
		return nil
	}
	if sig == nil || !sig.Direction.IsBuyOrSell() {
		bt.diagnostics.Counts[StrategyNoOp]++
		return nil
	}
	return bt.placeOrder(k, sig)
}

// averageVolume is the mean volume of the bars before the current one
func (bt *BackTest) averageVolume() decimal.Decimal {
	n := bt.cfg.Exchange.AverageVolumeBars
	if n <= 0 || len(bt.history) == 0 {
		return decimal.Zero
	}
	window := bt.history
	if len(window) > n {
		window = window[len(window)-n:]
	}
	total := decimal.Zero
	for i := range window {
		total = total.Add(window[i].Volume)
	}
	return total.Div(decimal.NewFromInt(int64(len(window))))
}

func (bt *BackTest) executeOrders(m *exchange.MarketContext) error {
	if len(bt.pending) == 0 {
		return nil
	}
	open := make([]*order.Order, 0, len(bt.pending))
	for _, o := range bt.pending {
		f, err := bt.exchange.ExecuteOrder(o, m)
		if err != nil {
			return err
		}
		if f.IsEmpty() {
			open = append(open, o)
			continue
		}
		if err = o.ApplyFill(f.Amount); err != nil {
			return fmt.Errorf("%w %v at %v: %w", exchange.ErrExecution, o.Symbol, m.Bar.Time, err)
		}
		if o.Direction == common.Buy && o.AllocatedFunds.IsPositive() {
			o.AllocatedFunds = decimal.Max(o.AllocatedFunds.Sub(f.Total), decimal.Zero)
		}
		if _, err = bt.portfolio.OnFill(f); err != nil {
			return err
		}
		bt.fills = append(bt.fills, *f)
		log.Debugf(log.BackTester, "%v %v filled %v of %v at %v, %v", m.Bar.Time, o.Symbol, f.Amount, o.Amount, f.PurchasePrice, o.Status)
		if o.Status.IsOpen() {
			open = append(open, o)
		}
	}
	bt.pending = open
	return nil
}

// placeOrder sizes a signal into an order and queues it when every check
// passes. Rejected orders are kept for the result.
func (bt *BackTest) placeOrder(k *kline.Kline, sig *signal.Signal) error {
	if err := sig.Validate(); err != nil {
		bt.addDiagnostic(InvalidSignal, k.Base, err.Error())
		return nil
	}
	if sig.Base == nil {
		sig.Base = &event.Base{Offset: k.Offset, Time: k.Time, Symbol: k.Symbol, Interval: k.Interval}
	}
	if sig.ClosePrice.IsZero() {
		sig.ClosePrice = k.Close
	}
	reserved := bt.reservation()
	snap := bt.portfolio.Snapshot()
	snap.ReservedCash = reserved.Cash
	amount, err := bt.sizer.SizeOrder(sig, snap)
	if err != nil {
		bt.addDiagnostic(SizingRejection, k.Base, err.Error())
		return nil
	}

	bt.orderCount++
	o := &order.Order{
		Base: &event.Base{
			Offset:   k.Offset,
			Time:     k.Time,
			Symbol:   k.Symbol,
			Interval: k.Interval,
			Reasons:  sig.GetReasons(),
		},
		ID:         uuid.NewV5(bt.idNamespace, fmt.Sprintf("order:%d", bt.orderCount)).String(),
		Direction:  sig.Direction,
		Type:       sig.GetOrderType(),
		Status:     order.Created,
		Amount:     amount,
		ClosePrice: k.Close,
	}
	if o.Type != order.Market {
		o.Price = sig.Price
	}
	bt.orders = append(bt.orders, o)

	if o.Type == order.StopLimit {
		return bt.reject(o, InvalidSignal, exchange.ErrStopLimitUnsupported)
	}
	if err = o.Validate(); err != nil {
		return bt.reject(o, InvalidSignal, err)
	}
	reference := k.Close
	if o.Type != order.Market {
		reference = o.Price
	}
	err = bt.portfolio.PrepareOrder(o, reference, bt.commission, reserved)
	switch {
	case errors.Is(err, portfolio.ErrInsufficientFunds), errors.Is(err, portfolio.ErrShortSellingDisabled):
		return bt.reject(o, PreconditionRejection, err)
	case err != nil:
		return err
	}
	if err = bt.risk.EvaluateOrder(snap, o); err != nil {
		return bt.reject(o, RiskRejection, err)
	}
	if err = o.SetStatus(order.Pending); err != nil {
		return err
	}
	bt.pending = append(bt.pending, o)
	log.Debugf(log.BackTester, "%v queued %v", k.Time, o.Snapshot())
	return nil
}

func (bt *BackTest) reject(o *order.Order, kind DiagnosticKind, reason error) error {
	if err := o.SetStatus(order.Rejected); err != nil {
		return err
	}
	o.AppendReason(reason.Error())
	bt.addDiagnostic(kind, o.Base, fmt.Sprintf("order %v: %v", o.ID, reason))
	return nil
}

// reservation is the cash held by open buys and the quantity committed to
// open sells
func (bt *BackTest) reservation() portfolio.Reservation {
	var r portfolio.Reservation
	for _, o := range bt.pending {
		switch o.Direction {
		case common.Buy:
			r.Cash = r.Cash.Add(o.AllocatedFunds)
		case common.Sell:
			r.Quantity = r.Quantity.Sub(o.GetRemaining())
		}
	}
	return r
}

// closeOut cancels orders which never completed and checks the account
// still reconciles
func (bt *BackTest) closeOut() error {
	var errs error
	for _, o := range bt.pending {
		if err := o.SetStatus(order.Cancelled); err != nil {
			errs = common.AppendError(errs, err)
			continue
		}
		bt.addDiagnostic(CancelledOrder, o.Base, fmt.Sprintf("order %v open at end of data with %v remaining", o.ID, o.GetRemaining()))
	}
	bt.pending = nil
	return common.AppendError(errs, bt.portfolio.Reconcile())
}

func (bt *BackTest) result() (*Result, error) {
	resp := &Result{
		Config:      bt.cfg,
		Symbol:      bt.symbol,
		Interval:    bt.interval,
		Trades:      bt.portfolio.Trades(),
		EquityCurve: bt.portfolio.EquityCurve(),
		Orders:      make([]order.Order, len(bt.orders)),
		Fills:       make([]fill.Fill, len(bt.fills)),
		Bars:        int64(len(bt.history)),
		Diagnostics: Diagnostics{
			Entries: make([]Diagnostic, len(bt.diagnostics.Entries)),
			Counts:  make(map[DiagnosticKind]int64, len(bt.diagnostics.Counts)),
		},
	}
	for i := range bt.orders {
		resp.Orders[i] = *bt.orders[i]
	}
	copy(resp.Fills, bt.fills)
	copy(resp.Diagnostics.Entries, bt.diagnostics.Entries)
	for k, v := range bt.diagnostics.Counts {
		resp.Diagnostics.Counts[k] = v
	}

	metrics, err := statistics.Calculate(resp.EquityCurve, resp.Trades, bt.portfolio.InitialCapital(), bt.statistics)
	if err != nil {
		return resp, err
	}
	metrics.MarketMovement = statistics.MarketMovement(bt.history)
	resp.Metrics = metrics
	return resp, nil
}

func (bt *BackTest) addIssues(issues []data.Issue) {
	for i := range issues {
		msg := issues[i].Message
		if issues[i].Row > 0 {
			msg = fmt.Sprintf("row %v: %v", issues[i].Row, msg)
		}
		bt.addDiagnostic(DiagnosticKind(issues[i].Kind), &event.Base{
			Time:   issues[i].Time,
			Symbol: issues[i].Symbol,
		}, msg)
	}
}

func (bt *BackTest) addDiagnostic(kind DiagnosticKind, b *event.Base, msg string) {
	d := Diagnostic{Kind: kind, Message: msg}
	if b != nil {
		d.Time = b.Time
		d.Symbol = b.Symbol
		d.Offset = b.Offset
	}
	bt.diagnostics.Counts[kind]++
	bt.diagnostics.Entries = append(bt.diagnostics.Entries, d)
	switch kind {
	case Gap, OutsideSession, CancelledOrder:
		log.Debugf(log.BackTester, "%v %v %v: %v", d.Symbol, d.Time, kind, msg)
	default:
		log.Warnf(log.BackTester, "%v %v %v: %v", d.Symbol, d.Time, kind, msg)
	}
}
