package holdings

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/common"
)

var (
	errSymbolMismatch = errors.New("fill symbol does not match position")
	errEmptyFill      = errors.New("fill has no quantity")
	errNonPositive    = errors.New("fill price must be positive")
)

// Position is the signed holding of a single symbol. Quantity is positive when
// long and negative when short. CostBasis is the signed cost of the open
// quantity, so the volume weighted entry price is CostBasis / Quantity.
type Position struct {
	Symbol          string          `json:"symbol"`
	Quantity        decimal.Decimal `json:"quantity"`
	CostBasis       decimal.Decimal `json:"cost-basis"`
	EntryPrice      decimal.Decimal `json:"entry-price"`
	EntryTime       time.Time       `json:"entry-time"`
	MarkPrice       decimal.Decimal `json:"mark-price"`
	MarkTime        time.Time       `json:"mark-time"`
	UnrealisedPNL   decimal.Decimal `json:"unrealised-pnl"`
	EntryCommission decimal.Decimal `json:"entry-commission"`

	// accumulated across partial reductions until the round trip closes
	closed closingTally
}

type closingTally struct {
	quantity   decimal.Decimal
	entryValue decimal.Decimal
	exitValue  decimal.Decimal
	gross      decimal.Decimal
	commission decimal.Decimal
}

// Trade is a closed round trip. Direction is Buy for a long round trip and
// Sell for a short one.
type Trade struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Direction  common.Side     `json:"side"`
	Quantity   decimal.Decimal `json:"quantity"`
	EntryTime  time.Time       `json:"entry-time"`
	ExitTime   time.Time       `json:"exit-time"`
	EntryPrice decimal.Decimal `json:"entry-price"`
	ExitPrice  decimal.Decimal `json:"exit-price"`
	GrossPNL   decimal.Decimal `json:"gross-pnl"`
	Commission decimal.Decimal `json:"commission"`
	PNL        decimal.Decimal `json:"pnl"`
}

// FillResult describes what applying one fill did to a position
type FillResult struct {
	// RealisedGross is the gross profit or loss realised by the closing part
	// of the fill, before commission
	RealisedGross decimal.Decimal
	// Trade is set when the fill returned the position to zero or flipped it
	Trade *Trade
}
