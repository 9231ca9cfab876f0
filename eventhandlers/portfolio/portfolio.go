package portfolio

import (
	"fmt"
	"sort"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventhandlers/exchange/commission"
	"github.com/tradebench/barsim/eventhandlers/portfolio/holdings"
	"github.com/tradebench/barsim/eventtypes/fill"
	"github.com/tradebench/barsim/eventtypes/kline"
	"github.com/tradebench/barsim/eventtypes/order"
	"github.com/tradebench/barsim/log"
)

// Setup returns a portfolio holding only the initial capital in cash
func Setup(initialCapital decimal.Decimal, allowShort, allowMargin bool) (*Portfolio, error) {
	if !initialCapital.IsPositive() {
		return nil, fmt.Errorf("%w: %v", errInvalidInitialCapital, initialCapital)
	}
	return &Portfolio{
		initialCapital: initialCapital,
		cash:           initialCapital,
		allowShort:     allowShort,
		allowMargin:    allowMargin,
		idNamespace:    DefaultIDNamespace,
		positions:      make(map[string]*holdings.Position),
	}, nil
}

// SetIDNamespace sets the namespace trade identifiers are derived from.
// Identifiers are name based so identical runs produce identical trades.
func (p *Portfolio) SetIDNamespace(ns uuid.UUID) {
	p.idNamespace = ns
}

// PrepareOrder enforces the cash and short selling preconditions of an order
// before it is queued. Unless margin is allowed a buy must be affordable at
// the reference price from cash not reserved by other open orders, and the
// remaining cash is allocated to it so that slippage at fill time cannot take
// cash below zero. Unless shorting is allowed a sell may not exceed the long
// quantity not already committed to other sells.
func (p *Portfolio) PrepareOrder(o *order.Order, referencePrice decimal.Decimal, fee commission.Model, r Reservation) error {
	if o == nil || o.Base == nil {
		return common.ErrNilArguments
	}
	if !referencePrice.IsPositive() {
		return fmt.Errorf("%w: %v", errInvalidReferencePrice, referencePrice)
	}
	if fee == nil {
		fee = commission.Zero{}
	}
	switch o.Direction {
	case common.Buy:
		if p.allowMargin {
			return nil
		}
		available := p.cash.Sub(r.Cash)
		cost := o.Amount.Mul(referencePrice).Add(fee.Calculate(o.Amount, referencePrice))
		if cost.GreaterThan(available) {
			return fmt.Errorf("%w: %v %v costs %v with %v available", ErrInsufficientFunds, o.Amount, o.Symbol, cost, available)
		}
		o.AllocatedFunds = available
	case common.Sell:
		if p.allowShort {
			return nil
		}
		held := r.Quantity
		if pos, ok := p.positions[o.Symbol]; ok {
			held = held.Add(pos.Quantity)
		}
		if o.Amount.GreaterThan(held) {
			return fmt.Errorf("%w: selling %v %v with %v held", ErrShortSellingDisabled, o.Amount, o.Symbol, decimal.Max(held, decimal.Zero))
		}
	default:
		return fmt.Errorf("%w %v", common.ErrInvalidSide, o.Direction)
	}
	return nil
}

// OnFill applies a fill to cash and the position of its symbol. Cash moves by
// exactly the signed notional and commission. When the fill closes or flips
// the position the resulting trade is returned.
func (p *Portfolio) OnFill(f *fill.Fill) (*holdings.Trade, error) {
	if f == nil || f.Base == nil {
		return nil, common.ErrNilEvent
	}
	if f.IsEmpty() {
		return nil, nil
	}
	pos, ok := p.positions[f.Symbol]
	if !ok {
		pos = holdings.New(f.Symbol)
	}
	res, err := pos.ApplyFill(f, func() string { return p.nextTradeID(f.Symbol) })
	if err != nil {
		return nil, fmt.Errorf("%w %v at %v: %w", ErrAccounting, f.Symbol, f.Time, err)
	}

	p.cash = p.cash.Sub(f.SignedAmount().Mul(f.PurchasePrice)).Sub(f.Commission)
	p.realisedGross = p.realisedGross.Add(res.RealisedGross)
	p.totalCommission = p.totalCommission.Add(f.Commission)
	p.fills++
	if pos.IsOpen() {
		p.positions[f.Symbol] = pos
	} else {
		delete(p.positions, f.Symbol)
	}
	if res.Trade != nil {
		p.trades = append(p.trades, *res.Trade)
		log.Debugf(log.Portfolio, "%v %v closed %v %v pnl %v", f.Time, f.Symbol, res.Trade.Direction, res.Trade.Quantity, res.Trade.PNL)
	}

	if !p.allowShort && pos.Quantity.IsNegative() {
		return res.Trade, fmt.Errorf("%w %v at %v: %w, position %v", ErrAccounting, f.Symbol, f.Time, ErrShortSellingDisabled, pos.Quantity)
	}
	if !p.allowMargin && !p.allowShort && p.cash.IsNegative() {
		return res.Trade, fmt.Errorf("%w %v at %v: %w, cash %v", ErrAccounting, f.Symbol, f.Time, ErrInsufficientFunds, p.cash)
	}
	return res.Trade, nil
}

func (p *Portfolio) nextTradeID(symbol string) string {
	p.tradeSequence++
	return uuid.NewV5(p.idNamespace, fmt.Sprintf("%s:%d", symbol, p.tradeSequence)).String()
}

// Update marks the position in the bar's symbol to its close and appends one
// sample to the equity curve
func (p *Portfolio) Update(k *kline.Kline) (EquitySample, error) {
	if k == nil || k.Base == nil {
		return EquitySample{}, common.ErrNilEvent
	}
	quantity := decimal.Zero
	if pos, ok := p.positions[k.Symbol]; ok {
		pos.UpdateValue(k.Close, k.Time)
		quantity = pos.Quantity
	}
	p.lastUpdate = k.Time
	marketValue, unrealised := p.valuation()
	sample := EquitySample{
		Offset:        k.Offset,
		Time:          k.Time,
		Cash:          p.cash,
		MarketValue:   marketValue,
		UnrealisedPNL: unrealised,
		Equity:        p.cash.Add(marketValue),
		Quantity:      quantity,
	}
	p.equityCurve = append(p.equityCurve, sample)
	return sample, nil
}

// valuation sums market value and unrealised profit in symbol order
func (p *Portfolio) valuation() (marketValue, unrealised decimal.Decimal) {
	for _, sym := range p.symbols() {
		pos := p.positions[sym]
		marketValue = marketValue.Add(pos.MarketValue())
		unrealised = unrealised.Add(pos.UnrealisedPNL)
	}
	return marketValue, unrealised
}

func (p *Portfolio) symbols() []string {
	resp := make([]string, 0, len(p.positions))
	for sym := range p.positions {
		resp = append(resp, sym)
	}
	sort.Strings(resp)
	return resp
}

// Reconcile verifies that the account closes: initial capital plus realised
// gross profit, less commission, plus unrealised profit must equal equity
func (p *Portfolio) Reconcile() error {
	marketValue, unrealised := p.valuation()
	equity := p.cash.Add(marketValue)
	expected := p.initialCapital.Add(p.realisedGross).Sub(p.totalCommission).Add(unrealised)
	if !expected.Equal(equity) {
		return fmt.Errorf("%w: equity %v does not reconcile to %v (realised %v commission %v unrealised %v)",
			ErrAccounting, equity, expected, p.realisedGross, p.totalCommission, unrealised)
	}
	return nil
}

// Snapshot returns a copy of the account state
func (p *Portfolio) Snapshot() Snapshot {
	marketValue, _ := p.valuation()
	s := Snapshot{
		Time:           p.lastUpdate,
		InitialCapital: p.initialCapital,
		Cash:           p.cash,
		MarketValue:    marketValue,
		Equity:         p.cash.Add(marketValue),
		AllowShort:     p.allowShort,
		AllowMargin:    p.allowMargin,
	}
	for _, sym := range p.symbols() {
		s.Positions = append(s.Positions, *p.positions[sym])
	}
	return s
}

// Position returns a copy of the open position in symbol
func (p *Portfolio) Position(symbol string) (holdings.Position, bool) {
	pos, ok := p.positions[symbol]
	if !ok {
		return holdings.Position{Symbol: symbol}, false
	}
	return *pos, true
}

// Trades returns the closed trades in the order they closed
func (p *Portfolio) Trades() []holdings.Trade {
	resp := make([]holdings.Trade, len(p.trades))
	copy(resp, p.trades)
	return resp
}

// EquityCurve returns every equity sample recorded
func (p *Portfolio) EquityCurve() []EquitySample {
	resp := make([]EquitySample, len(p.equityCurve))
	copy(resp, p.equityCurve)
	return resp
}

// Cash returns the cash balance
func (p *Portfolio) Cash() decimal.Decimal {
	return p.cash
}

// Equity returns cash plus the market value of open positions
func (p *Portfolio) Equity() decimal.Decimal {
	marketValue, _ := p.valuation()
	return p.cash.Add(marketValue)
}

// InitialCapital returns the starting cash
func (p *Portfolio) InitialCapital() decimal.Decimal {
	return p.initialCapital
}

// TotalCommission returns every commission paid
func (p *Portfolio) TotalCommission() decimal.Decimal {
	return p.totalCommission
}

// RealisedPNL returns gross realised profit before commission
func (p *Portfolio) RealisedPNL() decimal.Decimal {
	return p.realisedGross
}

// FillCount returns the number of non empty fills applied
func (p *Portfolio) FillCount() int64 {
	return p.fills
}

// Position returns the open position in symbol, or a flat one
func (s *Snapshot) Position(symbol string) holdings.Position {
	for i := range s.Positions {
		if s.Positions[i].Symbol == symbol {
			return s.Positions[i]
		}
	}
	return holdings.Position{Symbol: symbol}
}

// AvailableCash returns cash not reserved by open buy orders
func (s *Snapshot) AvailableCash() decimal.Decimal {
	return s.Cash.Sub(s.ReservedCash)
}
