package holdings

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventtypes/fill"
)

// New returns a flat position for the symbol
func New(symbol string) *Position {
	return &Position{Symbol: symbol}
}

// IsOpen reports whether any quantity is held
func (p *Position) IsOpen() bool {
	return !p.Quantity.IsZero()
}

// IsLong reports whether the position is long
func (p *Position) IsLong() bool {
	return p.Quantity.IsPositive()
}

// MarketValue returns the signed value of the position at the latest mark
func (p *Position) MarketValue() decimal.Decimal {
	return p.Quantity.Mul(p.MarkPrice)
}

// UpdateValue marks the position to price and recomputes unrealised profit
func (p *Position) UpdateValue(price decimal.Decimal, t time.Time) {
	p.MarkPrice = price
	p.MarkTime = t
	p.UnrealisedPNL = p.Quantity.Mul(price).Sub(p.CostBasis)
}

// ApplyFill updates the position with a fill. Fills on the side of the
// position, or against a flat position, add to it at a volume weighted entry
// price. Opposing fills reduce it; when the quantity reaches zero the round
// trip is returned as a Trade, and any excess opens a new position in the
// other direction with the fill's commission split pro rata between the two.
// newTradeID is only called when a trade is produced.
func (p *Position) ApplyFill(f *fill.Fill, newTradeID func() string) (FillResult, error) {
	var resp FillResult
	if f == nil || f.Base == nil {
		return resp, common.ErrNilEvent
	}
	if f.Symbol != p.Symbol {
		return resp, fmt.Errorf("%w: %v %v", errSymbolMismatch, f.Symbol, p.Symbol)
	}
	if !f.Amount.IsPositive() {
		return resp, errEmptyFill
	}
	if !f.PurchasePrice.IsPositive() {
		return resp, fmt.Errorf("%w: %v", errNonPositive, f.PurchasePrice)
	}
	signed := f.SignedAmount()
	price := f.PurchasePrice
	if !p.IsOpen() || p.Quantity.Sign() == signed.Sign() {
		p.open(signed, price, f.Commission, f.Time)
		p.remark(price, f.Time)
		return resp, nil
	}

	wasLong := p.IsLong()
	held := p.Quantity.Abs()
	closing := decimal.Min(f.Amount, held)
	closingCommission := f.Commission
	if f.Amount.GreaterThan(held) {
		closingCommission = f.Commission.Mul(held).Div(f.Amount)
	}
	resp.RealisedGross = p.reduce(closing, price, closingCommission)
	if !p.IsOpen() {
		resp.Trade = p.closeTrade(newTradeID(), wasLong, f.Time)
	}
	if excess := f.Amount.Sub(closing); excess.IsPositive() {
		if signed.IsNegative() {
			excess = excess.Neg()
		}
		p.open(excess, price, f.Commission.Sub(closingCommission), f.Time)
	}
	p.remark(price, f.Time)
	return resp, nil
}

func (p *Position) open(signed, price, commission decimal.Decimal, t time.Time) {
	if !p.IsOpen() {
		p.EntryTime = t
	}
	p.Quantity = p.Quantity.Add(signed)
	p.CostBasis = p.CostBasis.Add(signed.Mul(price))
	p.EntryCommission = p.EntryCommission.Add(commission)
	p.EntryPrice = p.CostBasis.Div(p.Quantity)
}

// reduce closes part of the position and returns the gross realised profit.
// Cost basis and entry commission leave the position in proportion to the
// closed quantity.
func (p *Position) reduce(closing, price, commission decimal.Decimal) decimal.Decimal {
	held := p.Quantity.Abs()
	removed, entryCommission := p.CostBasis, p.EntryCommission
	if !closing.Equal(held) {
		removed = p.CostBasis.Mul(closing).Div(held)
		entryCommission = p.EntryCommission.Mul(closing).Div(held)
	}
	direction := decimal.NewFromInt(int64(p.Quantity.Sign()))
	gross := closing.Mul(price).Mul(direction).Sub(removed)

	p.Quantity = p.Quantity.Sub(closing.Mul(direction))
	p.CostBasis = p.CostBasis.Sub(removed)
	p.EntryCommission = p.EntryCommission.Sub(entryCommission)
	if p.IsOpen() {
		p.EntryPrice = p.CostBasis.Div(p.Quantity)
	} else {
		p.EntryPrice = decimal.Zero
	}

	p.closed.quantity = p.closed.quantity.Add(closing)
	p.closed.entryValue = p.closed.entryValue.Add(removed.Abs())
	p.closed.exitValue = p.closed.exitValue.Add(closing.Mul(price))
	p.closed.gross = p.closed.gross.Add(gross)
	p.closed.commission = p.closed.commission.Add(entryCommission).Add(commission)
	return gross
}

func (p *Position) closeTrade(id string, wasLong bool, at time.Time) *Trade {
	t := &Trade{
		ID:         id,
		Symbol:     p.Symbol,
		Direction:  common.Sell,
		Quantity:   p.closed.quantity,
		EntryTime:  p.EntryTime,
		ExitTime:   at,
		EntryPrice: p.closed.entryValue.Div(p.closed.quantity),
		ExitPrice:  p.closed.exitValue.Div(p.closed.quantity),
		GrossPNL:   p.closed.gross,
		Commission: p.closed.commission,
		PNL:        p.closed.gross.Sub(p.closed.commission),
	}
	if wasLong {
		t.Direction = common.Buy
	}
	p.closed = closingTally{}
	p.CostBasis = decimal.Zero
	p.EntryCommission = decimal.Zero
	p.EntryTime = time.Time{}
	return t
}

func (p *Position) remark(price decimal.Decimal, t time.Time) {
	if p.MarkPrice.IsZero() || p.MarkTime.Before(t) {
		p.UpdateValue(price, t)
		return
	}
	p.UpdateValue(p.MarkPrice, p.MarkTime)
}

// IsWin reports whether the trade made money after commission
func (t *Trade) IsWin() bool {
	return t.PNL.IsPositive()
}

// ReturnPercent is the net profit relative to the entry notional
func (t *Trade) ReturnPercent() decimal.Decimal {
	entry := t.EntryPrice.Mul(t.Quantity)
	if entry.IsZero() {
		return decimal.Zero
	}
	return t.PNL.Div(entry).Mul(decimal.NewFromInt(100))
}

// Holding returns the duration between entry and exit
func (t *Trade) Holding() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}
